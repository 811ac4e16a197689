package game

import "testing"

// The generator is a pure function: two consecutive calls agree and leave
// no trace on the state.
func TestMaskIsPure(t *testing.T) {
	e, _ := newTestEnv(t, []*Card{Forest(), EmberBolt()}, nil)
	toPhase(t, e, PhaseMainPre)

	before, err := e.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	m1 := e.GenerateMask(0)
	m2 := e.GenerateMask(0)
	after, err := e.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	if m1.Bits != m2.Bits {
		t.Fatal("mask generation must be deterministic")
	}
	if string(before) != string(after) {
		t.Fatal("mask generation must not mutate state")
	}
}

// Every set bit carries a reason record.
func TestMaskReasonsParallelBits(t *testing.T) {
	e, _ := newTestEnv(t, []*Card{Forest(), EmberBolt()}, nil)
	toPhase(t, e, PhaseMainPre)

	m := e.GenerateMask(0)
	for _, idx := range m.LegalIndices() {
		if _, ok := m.Reasons[idx]; !ok {
			t.Fatalf("set bit %d (%s) has no reason record", idx, ActionName(idx))
		}
	}
}

// Without priority a player sees NO_OP plus mana abilities only.
func TestMaskWithoutPriority(t *testing.T) {
	e, _ := newTestEnv(t, nil, []*Card{EmberBolt()})
	putOnBattlefield(e, 1, Mountain())
	toPhase(t, e, PhaseMainPre) // P1 holds priority

	m := e.GenerateMask(1)
	if !m.Legal(IdxNoOp) {
		t.Fatal("non-priority player should see NO_OP")
	}
	if !m.Legal(IdxTapLandBase) {
		t.Fatal("mana abilities are available without priority")
	}
	if m.Legal(IdxPlaySpellBase) {
		t.Fatal("spells require priority")
	}
	if m.Legal(IdxPassPriority) {
		t.Fatal("cannot pass a priority you do not hold")
	}
}

// Sorcery-speed actions disappear once the stack is occupied.
func TestSorcerySpeedGating(t *testing.T) {
	e, _ := newTestEnv(t, []*Card{GladeSentinel(), GladeSentinel()}, nil)
	putOnBattlefield(e, 0, Forest())
	putOnBattlefield(e, 0, Forest())
	putOnBattlefield(e, 0, Forest())
	putOnBattlefield(e, 0, Forest())
	toPhase(t, e, PhaseMainPre)

	m := e.GenerateMask(0)
	if !m.Legal(IdxPlaySpellBase) {
		t.Fatal("creature castable at sorcery speed")
	}

	apply(t, e, IdxPlaySpellBase, ActionContext{HandIdx: 0})
	m = e.GenerateMask(0)
	if m.Legal(IdxPlaySpellBase) {
		t.Fatal("sorcery-speed cast must be illegal with a non-empty stack")
	}
}

// Split second: only mana abilities (and pass) remain while a split-second
// spell is on the stack.
func TestSplitSecondLocksStack(t *testing.T) {
	sudden := &Card{
		Name:     "Sudden End",
		Types:    []CardType{TypeInstant},
		ManaCost: ManaCost{Generic: 1, Pips: pips(ColorBlack, 1)},
		Keywords: []Keyword{KwSplitSecond},
		Effect:   "damage", Amount: 2,
	}
	e, _ := newTestEnv(t, []*Card{sudden}, []*Card{EmberBolt()})
	putOnBattlefield(e, 0, Swamp())
	putOnBattlefield(e, 0, Swamp())
	putOnBattlefield(e, 1, Mountain())
	toPhase(t, e, PhaseMainPre)

	apply(t, e, IdxPlaySpellBase, ActionContext{HandIdx: 0})
	if !e.Game.SplitSecond {
		t.Fatal("split-second flag should be set")
	}

	apply(t, e, IdxPassPriority, ActionContext{}) // priority to P2
	m := e.GenerateMask(1)
	if m.Legal(IdxPlaySpellBase) {
		t.Fatal("no spells under split second")
	}
	if !m.Legal(IdxTapLandBase) {
		t.Fatal("mana abilities stay legal under split second")
	}
	if !m.Legal(IdxPassPriority) {
		t.Fatal("passing stays legal under split second")
	}

	apply(t, e, IdxPassPriority, ActionContext{}) // resolves
	if e.Game.SplitSecond {
		t.Fatal("split-second flag should clear after resolution")
	}
}

// Cleanup discard: over-full hands are discarded through the mask.
func TestCleanupDiscard(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	for i := 0; i < 3; i++ {
		putInHand(e, 0, EmberBolt())
	}
	toPhase(t, e, PhaseEndStep)
	passBoth(t, e) // into cleanup

	if e.Game.Phase != PhaseCleanup {
		t.Fatalf("expected Cleanup, got %s", e.Game.Phase)
	}
	m := e.GenerateMask(0)
	if !m.Legal(IdxDiscardBase) {
		t.Fatal("discard actions should be offered over the hand limit")
	}

	for len(e.Game.Players[0].Hand) > MaxHandSize {
		apply(t, e, IdxDiscardBase, ActionContext{})
	}
	if e.Game.Turn != 2 {
		t.Fatalf("turn should roll after discards, got turn %d", e.Game.Turn)
	}
}
