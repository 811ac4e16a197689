package game

import (
	"testing"

	"github.com/lcrane/manacore/internal/log"
)

// --- Test card helpers ---

func testCreature(name string, power, tough int, kws ...Keyword) *Card {
	return &Card{
		Name:     name,
		Types:    []CardType{TypeCreature},
		ManaCost: ManaCost{Generic: 1, Pips: pips(ColorGreen, 1)},
		Power:    power, Toughness: tough,
		Keywords: kws,
	}
}

func filler() *Card { return Forest() }

// stackedDeck builds a deck whose first draws are topCards in order
// (topCards[0] is drawn first), padded with filler to minSize.
func stackedDeck(topCards []*Card, minSize int) []*Card {
	deck := make([]*Card, 0, minSize)
	for i := 0; i < minSize-len(topCards); i++ {
		deck = append(deck, filler())
	}
	for i := len(topCards) - 1; i >= 0; i-- {
		deck = append(deck, topCards[i])
	}
	return deck
}

// newTestEnv builds a deterministic env: no shuffle, no mulligan, both
// opening hands exactly the first seven cards of each deck slice.
func newTestEnv(t *testing.T, hand0, hand1 []*Card) (*Env, *log.MemoryLogger) {
	t.Helper()
	for len(hand0) < StartingHand {
		hand0 = append(hand0, filler())
	}
	for len(hand1) < StartingHand {
		hand1 = append(hand1, filler())
	}
	logger := log.NewMemoryLogger()
	env := NewEnv(Config{
		Deck0:        stackedDeck(hand0, 30),
		Deck1:        stackedDeck(hand1, 30),
		Logger:       logger,
		NoShuffle:    true,
		SkipMulligan: true,
	})
	return env, logger
}

// putOnBattlefield places a card directly onto a player's battlefield,
// ready to act (no summoning sickness).
func putOnBattlefield(e *Env, player int, card *Card) *CardInstance {
	ci := e.Game.CreateCardInstance(card, player)
	ci.Zone = ZoneStack
	e.MoveCard(ci, ZoneStack, ZoneBattlefield)
	ci.EnteredThisTurn = false
	e.Game.TriggerQueue = nil // direct placement, not an ETB event
	return ci
}

// putInHand places a card into a player's hand and returns its hand index.
func putInHand(e *Env, player int, card *Card) int {
	ci := e.Game.CreateCardInstance(card, player)
	ci.Zone = ZoneHand
	e.Game.Players[player].Hand = append(e.Game.Players[player].Hand, ci)
	return len(e.Game.Players[player].Hand) - 1
}

// apply asserts the index is legal for the actor and applies it.
func apply(t *testing.T, e *Env, index int, ctx ActionContext) float64 {
	t.Helper()
	actor := e.ToAct()
	mask := e.GenerateMask(actor)
	if !mask.Legal(index) {
		t.Fatalf("action %s (%d) not legal for P%d in %s; legal: %v",
			ActionName(index), index, actor+1, e.Game.Phase, legalNames(mask))
	}
	r, _, _, _ := e.Apply(index, ctx)
	return r
}

func legalNames(m *Mask) []string {
	var out []string
	for _, idx := range m.LegalIndices() {
		out = append(out, ActionName(idx))
	}
	return out
}

// passBoth passes priority for both players once each.
func passBoth(t *testing.T, e *Env) {
	t.Helper()
	apply(t, e, IdxPassPriority, ActionContext{})
	if e.Game.Over {
		return
	}
	apply(t, e, IdxPassPriority, ActionContext{})
}

// toPhase pass-passes until the game reaches the wanted phase.
func toPhase(t *testing.T, e *Env, want Phase) {
	t.Helper()
	for i := 0; i < 60; i++ {
		if e.Game.Phase == want {
			return
		}
		apply(t, e, IdxPassPriority, ActionContext{})
	}
	t.Fatalf("never reached %s (stuck in %s)", want, e.Game.Phase)
}

// findOnBattlefieldIdx returns the battlefield slice index of an instance.
func findOnBattlefieldIdx(e *Env, player int, id int) int {
	for i, c := range e.Game.Players[player].Battlefield {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func wantEvent(t *testing.T, logger *log.MemoryLogger, typ log.EventType) {
	t.Helper()
	if len(logger.EventsOfType(typ)) == 0 {
		t.Fatalf("expected at least one %s event", typ)
	}
}
