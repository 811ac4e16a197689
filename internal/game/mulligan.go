package game

import "github.com/lcrane/manacore/internal/log"

// London mulligan: each mulligan redraws to seven, and a kept hand bottoms
// one card per mulligan taken. Bottoming is limited to the first four hand
// indices per decision by the action encoding.

// takeMulligan shuffles the hand back and draws a fresh seven.
func (e *Env) takeMulligan(player int) bool {
	g := e.Game
	pl := g.Players[player]
	if !pl.Deciding || pl.MulliganCount >= StartingHand {
		return false
	}
	for _, c := range pl.Hand {
		c.Zone = ZoneLibrary
		pl.Library = append(pl.Library, c)
	}
	pl.Hand = nil
	e.ShuffleLibraryDeterministic(player)
	for i := 0; i < StartingHand; i++ {
		pl.Draw()
	}
	pl.MulliganCount++
	e.log(log.NewMulliganEvent(g.Turn, player, pl.MulliganCount))
	return true
}

// ShuffleLibraryDeterministic shuffles using the game RNG (stable under
// replay with the same seed).
func (e *Env) ShuffleLibraryDeterministic(player int) {
	e.Game.ShuffleLibrary(player)
	e.log(log.GameEvent{Turn: e.Game.Turn, Phase: "Mulligan", Player: player,
		Type: log.EventShuffle, Details: "library shuffled"})
}

// keepHand locks the hand; the player must now bottom one card per
// mulligan taken (invariant 5).
func (e *Env) keepHand(player int) bool {
	g := e.Game
	pl := g.Players[player]
	if !pl.Deciding {
		return false
	}
	pl.Deciding = false
	pl.Bottoming = pl.MulliganCount
	e.log(log.NewKeepHandEvent(g.Turn, player, pl.Bottoming))
	e.maybeFinishMulligan()
	return true
}

// bottomCard puts the chosen hand card on the bottom of the library.
func (e *Env) bottomCard(player, handIdx int) bool {
	g := e.Game
	pl := g.Players[player]
	if pl.Bottoming <= 0 || handIdx >= len(pl.Hand) {
		return false
	}
	card := pl.Hand[handIdx]
	pl.RemoveFromHand(card)
	card.Zone = ZoneLibrary
	pl.Library = append([]*CardInstance{card}, pl.Library...)
	pl.Bottoming--
	g.Mulligan.Bottomed[player]++
	e.log(log.GameEvent{Turn: g.Turn, Phase: "Mulligan", Player: player,
		Type: log.EventBottomCard, Card: card.Card.Name,
		Details: card.Card.Name + " put on the bottom"})
	e.maybeFinishMulligan()
	return true
}

// maybeFinishMulligan starts turn 1 once both players have kept and
// finished bottoming.
func (e *Env) maybeFinishMulligan() {
	g := e.Game
	for p := 0; p < 2; p++ {
		if g.Players[p].Deciding || g.Players[p].Bottoming > 0 {
			return
		}
	}
	e.beginFirstTurn()
}
