package game

import (
	"testing"

	"github.com/lcrane/manacore/internal/log"
)

// Property 7 — LIFO: the later push resolves first.
func TestStackLIFO(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	a := e.Game.CreateCardInstance(testCreature("First", 1, 1), 0)
	b := e.Game.CreateCardInstance(testCreature("Second", 2, 2), 0)
	a.Zone, b.Zone = ZoneStack, ZoneStack

	e.pushStack(&StackItem{Kind: ItemSpell, Card: a, Controller: 0, Ctx: SpellContext{SourceZone: ZoneHand}})
	e.pushStack(&StackItem{Kind: ItemSpell, Card: b, Controller: 0, Ctx: SpellContext{SourceZone: ZoneHand}})

	e.resolveTop()
	bf := e.Game.Players[0].Creatures()
	if len(bf) != 1 || bf[0].Card.Name != "Second" {
		t.Fatalf("the later push must resolve first, battlefield %v", bf)
	}
	e.resolveTop()
	if len(e.Game.Players[0].Creatures()) != 2 {
		t.Fatal("both spells should eventually resolve")
	}
}

// Triggers drain in APNAP order: active player's triggers go on the stack
// first, so the non-active player's trigger resolves first.
func TestTriggerAPNAPOrder(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	src0 := putOnBattlefield(e, 0, testCreature("Mine", 1, 1))
	src1 := putOnBattlefield(e, 1, testCreature("Theirs", 1, 1))

	e.Game.TriggerQueue = []QueuedTrigger{
		{Source: src1, Controller: 1, Effect: "draw", Amount: 1, Desc: "theirs"},
		{Source: src0, Controller: 0, Effect: "draw", Amount: 1, Desc: "mine"},
	}
	if !e.drainTriggers() {
		t.Fatal("triggers should have been pushed")
	}
	if len(e.Game.Stack) != 2 {
		t.Fatalf("expected 2 stack items, got %d", len(e.Game.Stack))
	}
	// Active player's trigger was pushed first, so it is at the bottom.
	if top := e.Game.topItem(); top.Controller != 1 {
		t.Fatal("non-active player's trigger must sit on top")
	}
	if e.Game.Priority != e.Game.ActivePlayer {
		t.Fatal("priority returns to the active player after triggers land")
	}
}

// A spell whose only target disappears fizzles with no effect.
func TestResolutionFizzlesWithoutTargets(t *testing.T) {
	e, logger := newTestEnv(t, []*Card{ThicketBlessing()}, nil)
	putOnBattlefield(e, 0, Forest())
	victim := putOnBattlefield(e, 0, testCreature("Victim", 1, 1))

	toPhase(t, e, PhaseMainPre)
	apply(t, e, IdxPlaySpellBase, ActionContext{HandIdx: 0})
	// Target our own creature (candidate list: own creature only).
	apply(t, e, IdxSelectTargetBase, ActionContext{})

	// Remove the target before resolution.
	e.MoveCard(victim, ZoneBattlefield, ZoneGraveyard)
	passBoth(t, e)

	wantEvent(t, logger, log.EventFizzle)
	if victim.Counters[CounterPlusOne] != 0 {
		t.Fatal("a fizzled pump spell must not apply counters")
	}
	gy := e.Game.Players[0].Graveyard
	found := false
	for _, c := range gy {
		if c.Card.Name == "Thicket Blessing" {
			found = true
		}
	}
	if !found {
		t.Fatal("fizzled spell still goes to the graveyard")
	}
}

// ETB and dies triggers fire through MoveCard.
func TestZoneChangeTriggers(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	warden := e.Game.CreateCardInstance(BoughWarden(), 0)
	warden.Zone = ZoneStack
	e.MoveCard(warden, ZoneStack, ZoneBattlefield)
	e.Game.TriggerQueue = nil // ignore any ETB bookkeeping

	hand := len(e.Game.Players[0].Hand)
	e.MoveCard(warden, ZoneBattlefield, ZoneGraveyard)
	if len(e.Game.TriggerQueue) != 1 {
		t.Fatalf("dies trigger should queue, queue %d", len(e.Game.TriggerQueue))
	}
	e.drainTriggers()
	e.resolveTop()
	if got := len(e.Game.Players[0].Hand); got != hand+1 {
		t.Fatalf("dies trigger should draw a card, hand %d → %d", hand, got)
	}
}

// SBA: the legend rule keeps only the newest copy.
func TestLegendRuleSBA(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	first := putOnBattlefield(e, 0, SporeTyrant())
	second := putOnBattlefield(e, 0, SporeTyrant())

	e.runSBA()
	if first.Zone != ZoneGraveyard {
		t.Fatalf("older legend should go to the graveyard, zone %s", first.Zone)
	}
	if second.Zone != ZoneBattlefield {
		t.Fatal("newer legend stays")
	}
}

// SBA: lethal damage and zero toughness both remove creatures; players at
// zero life lose.
func TestSBADeathAndLoss(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	c := putOnBattlefield(e, 0, testCreature("Fragile", 2, 2))
	c.Damage = 2
	shrunk := putOnBattlefield(e, 0, testCreature("Shrunk", 2, 2))
	shrunk.AddCounter(CounterMinusOne, 2)
	e.Game.Players[1].Life = 0

	e.runSBA()
	if c.Zone != ZoneGraveyard {
		t.Fatal("lethal damage should kill")
	}
	if shrunk.Zone != ZoneGraveyard {
		t.Fatal("zero toughness should kill")
	}
	if !e.Game.Players[1].LostGame || !e.Game.Over {
		t.Fatal("player at zero life loses")
	}
	if e.Result(0) != ResultWin || e.Result(1) != ResultLoss {
		t.Fatalf("results wrong: %s / %s", e.Result(0), e.Result(1))
	}
}

// Stuck-state recovery: a run of no-ops reassigns priority (L1).
func TestStuckRecoveryReassignsPriority(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	toPhase(t, e, PhaseMainPre)

	e.Game.Priority = -1 // simulate a lost priority holder
	e.Game.NoOpStreak = 4
	e.recoverStuckState()

	if e.Game.Priority != e.Game.ActivePlayer {
		t.Fatal("L1 recovery should hand priority to the active player")
	}
}
