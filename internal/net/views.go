package net

import (
	"github.com/lcrane/manacore/internal/game"
	"github.com/lcrane/manacore/internal/log"
)

// BuildStateView creates a StateView from the perspective of one player.
// Hidden information (opponent hand, face-down permanents, libraries) stays
// hidden.
func BuildStateView(e *game.Env, player int) *StateView {
	g := e.Game
	opp := g.Opponent(player)

	sv := &StateView{
		Turn:       g.Turn,
		Phase:      g.Phase.String(),
		IsYourTurn: g.ActivePlayer == player,
		StackSize:  len(g.Stack),
	}
	for _, it := range g.Stack {
		name := "ability"
		if it.Card != nil {
			name = it.Card.Card.Name
		}
		sv.Stack = append(sv.Stack, name)
	}

	sv.You = buildPlayerView(g, player, true)
	sv.Opponent = buildPlayerView(g, opp, false)
	return sv
}

func buildPlayerView(g *game.Game, player int, isOwner bool) PlayerView {
	pl := g.Players[player]
	pv := PlayerView{
		Life:           pl.Life,
		HandCount:      len(pl.Hand),
		GraveyardCount: len(pl.Graveyard),
		ExileCount:     len(pl.Exile),
		LibraryCount:   pl.LibraryCount(),
		Pool:           pl.Pool.String(),
	}
	if isOwner {
		for _, c := range pl.Hand {
			pv.Hand = append(pv.Hand, c.Card.Name)
		}
	}
	for i := len(pl.Graveyard) - 1; i >= 0 && len(pv.GraveyardTop) < game.GraveIndexLimit; i-- {
		pv.GraveyardTop = append(pv.GraveyardTop, pl.Graveyard[i].Card.Name)
	}
	for _, perm := range pl.Battlefield {
		pv.Battlefield = append(pv.Battlefield, permView(perm, isOwner))
	}
	return pv
}

func permView(perm *game.CardInstance, isOwner bool) PermView {
	if perm.FaceDown && !isOwner {
		return PermView{FaceDown: true, Tapped: perm.Tapped, Power: 2, Toughness: 2}
	}
	c := perm.EffectiveCard()
	v := PermView{
		Name:     c.Name,
		FaceDown: perm.FaceDown,
		Tapped:   perm.Tapped,
		Damage:   perm.Damage,
	}
	if c.Is(game.TypeCreature) {
		v.Power = perm.CurrentPower()
		v.Toughness = perm.CurrentToughness()
	}
	if c.Is(game.TypePlaneswalker) {
		v.Loyalty = perm.Counters[game.CounterLoyalty]
	}
	return v
}

// BuildActionViews converts a mask into the numbered action list shown to
// clients.
func BuildActionViews(m *game.Mask) []ActionView {
	var out []ActionView
	for _, idx := range m.LegalIndices() {
		r := m.Reasons[idx]
		out = append(out, ActionView{
			Index:  idx,
			Name:   game.ActionName(idx),
			Reason: r.Reason,
			Ctx:    r.Context,
		})
	}
	return out
}

// EventToView converts a log event for the wire.
func EventToView(ev log.GameEvent) EventView {
	return EventView{
		Turn:    ev.Turn,
		Phase:   ev.Phase,
		Player:  ev.Player,
		Type:    ev.Type.String(),
		Card:    ev.Card,
		Details: ev.Details,
	}
}
