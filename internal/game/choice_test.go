package game

import "testing"

// S5 — scry 2: top card kept, second card bottomed.
func TestScryTwo(t *testing.T) {
	e, _ := newTestEnv(t, []*Card{ScryingLens()}, nil)
	putOnBattlefield(e, 0, Island())

	// Name the two library cards we are about to scry.
	pl := e.Game.Players[0]
	x := e.Game.CreateCardInstance(testCreature("X", 1, 1), 0)
	y := e.Game.CreateCardInstance(testCreature("Y", 1, 1), 0)
	pl.Library = append(pl.Library, y, x) // x on top

	toPhase(t, e, PhaseMainPre)
	apply(t, e, IdxPlaySpellBase, ActionContext{HandIdx: 0})
	passBoth(t, e) // resolve Scrying Lens

	if e.Game.Choice == nil || e.Game.Choice.Kind != ChoiceScry {
		t.Fatalf("expected a scry context, phase %s", e.Game.Phase)
	}
	if e.Game.Phase != PhaseChoose {
		t.Fatalf("phase should mirror the choice context, got %s", e.Game.Phase)
	}

	apply(t, e, IdxPutOnTop, ActionContext{})    // X stays on top
	apply(t, e, IdxPutOnBottom, ActionContext{}) // Y to the bottom

	if e.Game.Choice != nil {
		t.Fatal("scry context should be closed")
	}
	if top := pl.Library[len(pl.Library)-1]; top.ID != x.ID {
		t.Fatalf("X should be on top, got %s", top.Card.Name)
	}
	if bottom := pl.Library[0]; bottom.ID != y.ID {
		t.Fatalf("Y should be on the bottom, got %s", bottom.Card.Name)
	}
}

// Targeting: a burn spell walks through the targeting sub-phase and the
// chosen target takes the damage on resolution.
func TestTargetedBurn(t *testing.T) {
	e, _ := newTestEnv(t, []*Card{EmberBolt()}, nil)
	putOnBattlefield(e, 0, Mountain())

	toPhase(t, e, PhaseMainPre)
	apply(t, e, IdxPlaySpellBase, ActionContext{HandIdx: 0})

	if e.Game.Phase != PhaseTargeting || e.Game.Targeting == nil {
		t.Fatalf("expected targeting sub-phase, got %s", e.Game.Phase)
	}
	if e.Game.ActiveChoiceCount() != 1 {
		t.Fatal("exactly one choice context may be active")
	}

	// Candidate 0 is self, candidate 1 the opponent.
	apply(t, e, IdxSelectTargetBase+1, ActionContext{})
	if len(e.Game.Stack) != 1 {
		t.Fatalf("spell should be on the stack after targets lock, stack %d", len(e.Game.Stack))
	}

	passBoth(t, e)
	if got := e.Game.Players[1].Life; got != StartingLife-3 {
		t.Fatalf("opponent should take 3, life %d", got)
	}
}

// X spells: X is chosen, paid at selection time, and sized to the pool.
func TestChooseXValue(t *testing.T) {
	e, _ := newTestEnv(t, []*Card{CinderSurge()}, nil)
	for i := 0; i < 4; i++ {
		putOnBattlefield(e, 0, Mountain())
	}

	toPhase(t, e, PhaseMainPre)
	apply(t, e, IdxPlaySpellBase, ActionContext{HandIdx: 0})

	if e.Game.Choice == nil || e.Game.Choice.Kind != ChoiceX {
		t.Fatalf("expected X choice, phase %s", e.Game.Phase)
	}

	mask := e.GenerateMask(0)
	if !mask.Legal(IdxChooseXBase + 2) { // X=3 affordable: {R} + X=3 from 4 mountains
		t.Fatal("X=3 should be affordable with four mountains")
	}
	if mask.Legal(IdxChooseXBase + 9) {
		t.Fatal("X=10 must not be affordable")
	}

	apply(t, e, IdxChooseXBase+2, ActionContext{}) // X=3 → targeting
	apply(t, e, IdxSelectTargetBase+1, ActionContext{})
	passBoth(t, e)

	if got := e.Game.Players[1].Life; got != StartingLife-3 {
		t.Fatalf("X=3 should deal 3, opponent at %d", got)
	}
}

// Modal spells: modes accumulate, then finalise on pass.
func TestModalSelection(t *testing.T) {
	e, _ := newTestEnv(t, []*Card{TorchlightRaid()}, nil)
	putOnBattlefield(e, 0, Mountain())
	putOnBattlefield(e, 0, Mountain())

	toPhase(t, e, PhaseMainPre)
	apply(t, e, IdxPlaySpellBase, ActionContext{HandIdx: 0})

	// Escalate question comes first (declaration order), decline via pass.
	if e.Game.Pending == nil || !e.Game.Pending.NeedsEscalate {
		t.Fatal("escalate question should be pending")
	}
	apply(t, e, IdxPassPriority, ActionContext{})

	if e.Game.Choice == nil || e.Game.Choice.Kind != ChoiceModes {
		t.Fatalf("expected mode choice, phase %s", e.Game.Phase)
	}
	apply(t, e, IdxChooseModeBase+1, ActionContext{}) // "draw"
	apply(t, e, IdxPassPriority, ActionContext{})     // finalise with one mode

	handBefore := len(e.Game.Players[0].Hand)
	passBoth(t, e)
	if got := len(e.Game.Players[0].Hand); got != handBefore+1 {
		t.Fatalf("draw mode should add a card, hand %d → %d", handBefore, got)
	}
}

// Kicker: paying the kicker makes the creature arrive bigger.
func TestKicker(t *testing.T) {
	e, _ := newTestEnv(t, []*Card{AerieInterceptor()}, nil)
	for i := 0; i < 5; i++ {
		putOnBattlefield(e, 0, Plains())
	}

	toPhase(t, e, PhaseMainPre)
	apply(t, e, IdxPlaySpellBase, ActionContext{HandIdx: 0})

	if e.Game.Pending == nil || !e.Game.Pending.NeedsKicker {
		t.Fatal("kicker question should be pending")
	}
	apply(t, e, IdxPayKicker, ActionContext{})
	passBoth(t, e) // resolve

	creatures := e.Game.Players[0].Creatures()
	if len(creatures) != 1 {
		t.Fatalf("creature should resolve, got %d", len(creatures))
	}
	if got := creatures[0].CurrentPower(); got != 4 {
		t.Fatalf("kicked 3/3 should be 4/4, power %d", got)
	}
}

// Sacrifice flow: the additional-cost question opens the sacrifice
// sub-phase and the chosen permanent is paid.
func TestAdditionalCostSacrifice(t *testing.T) {
	e, _ := newTestEnv(t, []*Card{WayfarersTale()}, nil)
	putOnBattlefield(e, 0, Forest())
	putOnBattlefield(e, 0, Forest())
	fodder := putOnBattlefield(e, 0, testCreature("Fodder", 1, 1))

	toPhase(t, e, PhaseMainPre)
	apply(t, e, IdxPlaySpellBase, ActionContext{HandIdx: 0})

	// Kicker declared first, decline; then the additional cost.
	apply(t, e, IdxDontPayKicker, ActionContext{})
	if e.Game.Pending == nil || !e.Game.Pending.NeedsAdditional {
		t.Fatal("additional-cost question should be pending")
	}
	apply(t, e, IdxPayAdditional, ActionContext{})

	if e.Game.Sacrifice == nil || e.Game.Phase != PhaseSacrifice {
		t.Fatalf("expected sacrifice sub-phase, got %s", e.Game.Phase)
	}
	apply(t, e, IdxSacrificeBase, ActionContext{})

	if fodder.Zone != ZoneGraveyard {
		t.Fatalf("sacrificed creature should be in the graveyard, zone %s", fodder.Zone)
	}
	if len(e.Game.Stack) != 1 {
		t.Fatalf("spell should be on the stack, got %d items", len(e.Game.Stack))
	}
}

// Flashback: cast from the graveyard, exile afterwards.
func TestFlashback(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	pl := e.Game.Players[0]
	spell := e.Game.CreateCardInstance(InsightDraught(), 0)
	spell.Zone = ZoneGraveyard
	pl.Graveyard = append(pl.Graveyard, spell)
	for i := 0; i < 5; i++ {
		putOnBattlefield(e, 0, Island())
	}

	toPhase(t, e, PhaseMainPre)
	apply(t, e, 398, ActionContext{GyIdx: 0}) // flashback
	passBoth(t, e)

	if spell.Zone != ZoneExile {
		t.Fatalf("flashbacked spell should be exiled, zone %s", spell.Zone)
	}
	if got := len(pl.Hand); got != StartingHand+2 {
		t.Fatalf("draw 2 should resolve, hand %d", got)
	}
}
