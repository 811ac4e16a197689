package game

import (
	"testing"

	"github.com/lcrane/manacore/internal/log"
)

// S4 — one mulligan keeps a seven-card hand and bottoms one card, with
// bottoming limited to the first four hand indices.
func TestMulliganBottomsOne(t *testing.T) {
	logger := log.NewMemoryLogger()
	e := NewEnv(Config{
		Deck0:     stackedDeck(nil, 30),
		Deck1:     stackedDeck(nil, 30),
		Logger:    logger,
		NoShuffle: true,
	})

	if e.Game.Phase != PhaseMulligan || !e.Game.Mulligan.Active {
		t.Fatalf("game should start in the mulligan flow, phase %s", e.Game.Phase)
	}
	if e.ToAct() != 0 {
		t.Fatalf("P1 decides first, to-act %d", e.ToAct())
	}

	apply(t, e, IdxMulligan, ActionContext{})
	if got := len(e.Game.Players[0].Hand); got != StartingHand {
		t.Fatalf("London mulligan redraws to seven, got %d", got)
	}
	if e.Game.Players[0].MulliganCount != 1 {
		t.Fatalf("mulligan count should be 1, got %d", e.Game.Players[0].MulliganCount)
	}

	apply(t, e, IdxKeepHand, ActionContext{})
	if e.Game.Players[0].Bottoming != 1 {
		t.Fatalf("keeping after one mulligan bottoms one, got %d", e.Game.Players[0].Bottoming)
	}

	mask := e.GenerateMask(0)
	for i := 0; i < 4; i++ {
		if !mask.Legal(IdxBottomCardBase + i) {
			t.Fatalf("BOTTOM_CARD(%d) should be legal", i)
		}
	}
	if mask.Legal(IdxBottomCardBase + 4) {
		t.Fatal("bottoming is limited to the first four hand indices")
	}

	apply(t, e, IdxBottomCardBase, ActionContext{})
	if got := len(e.Game.Players[0].Hand); got != StartingHand-1 {
		t.Fatalf("hand should be six after bottoming, got %d", got)
	}
	if e.Game.Players[0].Bottoming != 0 {
		t.Fatal("bottoming requirement should be met")
	}

	// P2 keeps at seven; the game starts.
	apply(t, e, IdxKeepHand, ActionContext{})
	if e.Game.Mulligan.Active {
		t.Fatal("mulligan flow should be finished")
	}
	if e.Game.Turn != 1 {
		t.Fatalf("turn 1 should begin, got %d", e.Game.Turn)
	}
}

// The waiting player only sees NO_OP during the opponent's decision.
func TestMulliganWaitingMask(t *testing.T) {
	e := NewEnv(Config{
		Deck0:     stackedDeck(nil, 30),
		Deck1:     stackedDeck(nil, 30),
		NoShuffle: true,
	})

	mask := e.GenerateMask(1)
	if !mask.Legal(IdxNoOp) {
		t.Fatal("waiting player should see NO_OP")
	}
	if mask.Legal(IdxKeepHand) || mask.Legal(IdxMulligan) {
		t.Fatal("waiting player must not act during P1's decision")
	}
}

// A player may not mulligan below zero cards.
func TestMulliganLimit(t *testing.T) {
	e := NewEnv(Config{
		Deck0:     stackedDeck(nil, 60),
		Deck1:     stackedDeck(nil, 60),
		NoShuffle: true,
	})
	for i := 0; i < StartingHand; i++ {
		apply(t, e, IdxMulligan, ActionContext{})
	}
	mask := e.GenerateMask(0)
	if mask.Legal(IdxMulligan) {
		t.Fatal("eighth mulligan must not be offered")
	}
	if !mask.Legal(IdxKeepHand) {
		t.Fatal("keeping must stay legal")
	}
}
