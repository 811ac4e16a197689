package game

import (
	"testing"

	"github.com/lcrane/manacore/internal/log"
)

// S1 — Land + pass: playing a land consumes the land drop and two passes
// advance the phase.
func TestPlayLandAndPass(t *testing.T) {
	hand := []*Card{Forest(), EmberBolt(), EmberBolt(), InsightDraught(), InsightDraught(), ScryingLens(), TidalRefusal()}
	e, logger := newTestEnv(t, hand, nil)

	toPhase(t, e, PhaseMainPre)

	apply(t, e, IdxPlayLandBase, ActionContext{HandIdx: 0})

	if len(e.Game.Players[0].Lands()) != 1 {
		t.Fatalf("expected Forest on battlefield, got %d lands", len(e.Game.Players[0].Lands()))
	}
	if !e.Game.Players[0].LandPlayed {
		t.Fatal("land_played flag not set")
	}

	mask := e.GenerateMask(0)
	for i := IdxPlayLandBase; i <= 19; i++ {
		if mask.Legal(i) {
			t.Fatalf("PLAY_LAND(%d) still legal after the land drop", i)
		}
	}
	wantEvent(t, logger, log.EventPlayLand)

	passBoth(t, e)
	if e.Game.Phase != PhaseBeginCombat {
		t.Fatalf("expected Begin Combat after double pass, got %s", e.Game.Phase)
	}
}

// S2 — Counter sequence: LIFO resolution sends the countered creature to
// the graveyard with life totals untouched.
func TestCounterSequence(t *testing.T) {
	e, _ := newTestEnv(t,
		[]*Card{GladeSentinel()},
		[]*Card{TidalRefusal()},
	)
	putOnBattlefield(e, 0, Forest())
	putOnBattlefield(e, 0, Forest())
	putOnBattlefield(e, 1, Island())
	putOnBattlefield(e, 1, Island())

	toPhase(t, e, PhaseMainPre)

	apply(t, e, IdxPlaySpellBase, ActionContext{HandIdx: 0}) // cast Glade Sentinel
	if len(e.Game.Stack) != 1 {
		t.Fatalf("expected creature on stack, stack size %d", len(e.Game.Stack))
	}

	apply(t, e, IdxPassPriority, ActionContext{}) // P1 passes, priority to P2
	apply(t, e, IdxCounterSpell, ActionContext{HandIdx: 0, TargetStackIdx: 0})
	if len(e.Game.Stack) != 2 {
		t.Fatalf("expected two stack items, got %d", len(e.Game.Stack))
	}

	passBoth(t, e) // counter resolves first (LIFO)

	if len(e.Game.Stack) != 0 {
		t.Fatalf("stack should be empty, got %d items", len(e.Game.Stack))
	}
	gy := e.Game.Players[0].Graveyard
	if len(gy) != 1 || gy[0].Card.Name != "Glade Sentinel" {
		t.Fatalf("Glade Sentinel should be in P1's graveyard, got %v", gy)
	}
	if len(e.Game.Players[0].Creatures()) != 0 {
		t.Fatal("countered creature must not resolve to the battlefield")
	}
	if e.Game.Players[0].Life != StartingLife || e.Game.Players[1].Life != StartingLife {
		t.Fatal("life totals must be unchanged")
	}
}

// S6 — Turn-limit truncation: higher life wins at the limit.
func TestTurnLimitTruncation(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	e.Game.MaxTurns = 3
	e.Game.Players[1].Life = 15

	policy := GreedyPolicy{}
	for i := 0; i < 5000 && !e.Game.Over; i++ {
		actor := e.ToAct()
		mask := e.GenerateMask(actor)
		idx, ctx := policy.Choose(e, actor, mask)
		e.Apply(idx, ctx)
	}

	if !e.Game.Truncated {
		t.Fatal("expected truncation at the turn limit")
	}
	if got := e.Result(0); got != ResultWin {
		t.Fatalf("P1 has higher life and should win, got %s", got)
	}
	if got := e.Result(1); got != ResultLoss {
		t.Fatalf("P2 should lose, got %s", got)
	}
}

// Property 2 — an action whose mask bit is false changes nothing except
// reward and mask regeneration.
func TestIllegalActionLeavesStateUnchanged(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	toPhase(t, e, PhaseMainPre)

	before, err := e.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	mask := e.GenerateMask(e.ToAct())
	illegal := -1
	for i := 0; i < NumActions; i++ {
		if !mask.Legal(i) {
			illegal = i
			break
		}
	}
	reward, done, _, info := e.Apply(illegal, ActionContext{})
	if reward >= 0 {
		t.Fatalf("mask miss must carry a penalty, got %f", reward)
	}
	if done {
		t.Fatal("mask miss must not end the game")
	}
	if _, ok := info["action_mask"]; !ok {
		t.Fatal("info must contain a fresh action_mask")
	}

	after, err := e.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("observable state changed on an illegal action")
	}
}

// Property 6 — game-end flags are monotone.
func TestGameEndMonotone(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	toPhase(t, e, PhaseMainPre)

	e.setLoss(0, "concession")
	if !e.Game.Over {
		t.Fatal("game should be over")
	}
	for i := 0; i < 3; i++ {
		_, done, _, _ := e.Apply(IdxPassPriority, ActionContext{})
		if !done {
			t.Fatal("done must stay true after game end")
		}
	}
	if e.Game.Players[0].LostGame == false && e.Game.Players[1].LostGame == false && !e.Game.GameDraw {
		t.Fatal("a loss flag must persist")
	}
}

// Property 8 — replaying the recorded action sequence reproduces the same
// mask and reward sequence.
func TestReplayRoundTrip(t *testing.T) {
	build := func() *Env {
		return NewEnv(Config{
			Deck0:        stackedDeck([]*Card{Forest(), GladeSentinel(), EmberBolt()}, 30),
			Deck1:        stackedDeck([]*Card{Island(), TidalRefusal()}, 30),
			NoShuffle:    true,
			SkipMulligan: true,
			Seed:         7,
			MaxTurns:     8,
		})
	}

	e1 := build()
	policy := GreedyPolicy{}
	var rewards []float64
	for i := 0; i < 500 && !e1.Game.Over; i++ {
		actor := e1.ToAct()
		idx, ctx := policy.Choose(e1, actor, e1.GenerateMask(actor))
		r, _, _, _ := e1.Apply(idx, ctx)
		rewards = append(rewards, r)
	}

	e2 := build()
	for i, a := range e1.History() {
		r, _, _, _ := e2.Apply(a.Index, a.Ctx)
		if r != rewards[i] {
			t.Fatalf("step %d: reward %f != %f on replay", i, r, rewards[i])
		}
	}
	if e2.Game.Turn != e1.Game.Turn || e2.Game.Phase != e1.Game.Phase {
		t.Fatalf("replay diverged: turn %d/%s vs %d/%s",
			e2.Game.Turn, e2.Game.Phase, e1.Game.Turn, e1.Game.Phase)
	}
	m1 := e1.GenerateMask(0)
	m2 := e2.GenerateMask(0)
	if m1.Bits != m2.Bits {
		t.Fatal("final masks differ between original and replay")
	}
}

// Property 1 — every reachable state has at least one legal action for
// both players.
func TestMaskNeverEmpty(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	e.Game.MaxTurns = 6
	policy := GreedyPolicy{}
	for i := 0; i < 3000 && !e.Game.Over; i++ {
		for p := 0; p < 2; p++ {
			if !e.GenerateMask(p).Any() {
				t.Fatalf("empty mask for P%d in %s", p+1, e.Game.Phase)
			}
		}
		actor := e.ToAct()
		idx, ctx := policy.Choose(e, actor, e.GenerateMask(actor))
		e.Apply(idx, ctx)
	}
}

// Property 4 — mana pools empty at phase boundaries.
func TestManaPoolEmptiesAtBoundary(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	putOnBattlefield(e, 0, Forest())
	toPhase(t, e, PhaseMainPre)

	apply(t, e, IdxTapLandBase, ActionContext{BattlefieldIdx: 0})
	if e.Game.Players[0].Pool.Total() != 1 {
		t.Fatalf("expected 1 mana floating, got %d", e.Game.Players[0].Pool.Total())
	}

	passBoth(t, e)
	if e.Game.Players[0].Pool.Total() != 0 {
		t.Fatal("mana pool must empty at the phase boundary")
	}
}
