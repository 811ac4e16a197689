package game

import "testing"

// S3 — first strike: the 2/2 first striker damages the 3/3 before taking
// lethal damage back in the normal combat damage step.
func TestFirstStrikeCombat(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	striker := putOnBattlefield(e, 0, testCreature("Striker", 2, 2, KwFirstStrike))
	wall := putOnBattlefield(e, 1, testCreature("Wall", 3, 3))

	toPhase(t, e, PhaseDeclareAttackers)

	ai := findOnBattlefieldIdx(e, 0, striker.ID)
	apply(t, e, IdxAttackBase+ai, ActionContext{})
	apply(t, e, IdxDeclareAtkDone, ActionContext{})

	if e.Game.Phase != PhaseDeclareBlockers {
		t.Fatalf("expected Declare Blockers, got %s", e.Game.Phase)
	}
	if !striker.Tapped {
		t.Fatal("non-vigilant attacker should be tapped")
	}

	bi := findOnBattlefieldIdx(e, 1, wall.ID)
	apply(t, e, IdxBlockBase+bi, ActionContext{AttackerID: striker.ID})
	apply(t, e, IdxDeclareBlkDone, ActionContext{})

	toPhase(t, e, PhaseFirstStrikeDamage)
	if wall.Damage != 2 {
		t.Fatalf("wall should have 2 first-strike damage, has %d", wall.Damage)
	}
	if striker.Damage != 0 {
		t.Fatalf("striker must not take damage in the first-strike step, has %d", striker.Damage)
	}
	if striker.Zone != ZoneBattlefield || wall.Zone != ZoneBattlefield {
		t.Fatal("nothing should die in the first-strike step")
	}

	toPhase(t, e, PhaseCombatDamage)
	if striker.Zone != ZoneGraveyard {
		t.Fatalf("striker should die to the 3-power block, zone %s", striker.Zone)
	}
	if wall.Zone != ZoneBattlefield {
		t.Fatal("wall should survive at 3/3 with 2 damage")
	}
	if e.Game.Players[0].Life != StartingLife || e.Game.Players[1].Life != StartingLife {
		t.Fatal("no combat damage should reach either player")
	}
}

// Trample overflow past a chump blocker passes excess damage to the defending player.
func TestTrampleOverflow(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	crusher := putOnBattlefield(e, 0, testCreature("Crusher", 6, 6, KwTrample))
	chump := putOnBattlefield(e, 1, testCreature("Chump", 1, 1))

	toPhase(t, e, PhaseDeclareAttackers)
	apply(t, e, IdxAttackBase+findOnBattlefieldIdx(e, 0, crusher.ID), ActionContext{})
	apply(t, e, IdxDeclareAtkDone, ActionContext{})
	apply(t, e, IdxBlockBase+findOnBattlefieldIdx(e, 1, chump.ID), ActionContext{AttackerID: crusher.ID})
	apply(t, e, IdxDeclareBlkDone, ActionContext{})
	toPhase(t, e, PhaseEndOfCombat)

	if chump.Zone != ZoneGraveyard {
		t.Fatal("blocker should die")
	}
	if got := e.Game.Players[1].Life; got != StartingLife-5 {
		t.Fatalf("5 trample damage should carry over, life %d", got)
	}
}

// Summoning-sick and tapped creatures cannot be declared as attackers.
func TestAttackEligibility(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	sick := putOnBattlefield(e, 0, testCreature("Sick", 2, 2))
	sick.EnteredThisTurn = true
	tapped := putOnBattlefield(e, 0, testCreature("Tapped", 2, 2))
	tapped.Tapped = true
	hasty := putOnBattlefield(e, 0, testCreature("Hasty", 2, 2, KwHaste))
	hasty.EnteredThisTurn = true

	toPhase(t, e, PhaseDeclareAttackers)
	mask := e.GenerateMask(0)

	if mask.Legal(IdxAttackBase + findOnBattlefieldIdx(e, 0, sick.ID)) {
		t.Fatal("summoning-sick creature must not attack")
	}
	if mask.Legal(IdxAttackBase + findOnBattlefieldIdx(e, 0, tapped.ID)) {
		t.Fatal("tapped creature must not attack")
	}
	if !mask.Legal(IdxAttackBase + findOnBattlefieldIdx(e, 0, hasty.ID)) {
		t.Fatal("hasty creature should be able to attack the turn it arrived")
	}
}

// Flying attackers are blockable only by flying or reach.
func TestBlockLegality(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	flyer := putOnBattlefield(e, 0, testCreature("Flyer", 2, 2, KwFlying))
	ground := putOnBattlefield(e, 1, testCreature("Ground", 2, 2))
	spider := putOnBattlefield(e, 1, testCreature("Spider", 1, 3, KwReach))

	toPhase(t, e, PhaseDeclareAttackers)
	apply(t, e, IdxAttackBase+findOnBattlefieldIdx(e, 0, flyer.ID), ActionContext{})
	apply(t, e, IdxDeclareAtkDone, ActionContext{})

	mask := e.GenerateMask(1)
	if mask.Legal(IdxBlockBase + findOnBattlefieldIdx(e, 1, ground.ID)) {
		t.Fatal("ground creature must not block a flyer")
	}
	if !mask.Legal(IdxBlockBase + findOnBattlefieldIdx(e, 1, spider.ID)) {
		t.Fatal("reach creature should block a flyer")
	}
}

// Menace: a lone blocker is an illegal assignment and is removed when
// blocks are committed; two blockers stand.
func TestMenaceNeedsTwoBlockers(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	menacer := putOnBattlefield(e, 0, testCreature("Menacer", 3, 3, KwMenace))
	b1 := putOnBattlefield(e, 1, testCreature("B1", 2, 2))
	b2 := putOnBattlefield(e, 1, testCreature("B2", 2, 2))

	toPhase(t, e, PhaseDeclareAttackers)
	apply(t, e, IdxAttackBase+findOnBattlefieldIdx(e, 0, menacer.ID), ActionContext{})
	apply(t, e, IdxDeclareAtkDone, ActionContext{})

	apply(t, e, IdxBlockBase+findOnBattlefieldIdx(e, 1, b1.ID), ActionContext{AttackerID: menacer.ID})
	apply(t, e, 383, ActionContext{BlockerID: b2.ID}) // second blocker on attacker 0
	apply(t, e, IdxDeclareBlkDone, ActionContext{})

	if len(e.Game.Combat.blockersOf(menacer.ID)) != 2 {
		t.Fatalf("expected 2 blockers, got %d", len(e.Game.Combat.blockersOf(menacer.ID)))
	}
}

// A lone blocker against menace is stripped at commit time.
func TestMenaceLoneBlockerStripped(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	menacer := putOnBattlefield(e, 0, testCreature("Menacer", 3, 3, KwMenace))
	b1 := putOnBattlefield(e, 1, testCreature("B1", 2, 2))

	toPhase(t, e, PhaseDeclareAttackers)
	apply(t, e, IdxAttackBase+findOnBattlefieldIdx(e, 0, menacer.ID), ActionContext{})
	apply(t, e, IdxDeclareAtkDone, ActionContext{})
	apply(t, e, IdxBlockBase+findOnBattlefieldIdx(e, 1, b1.ID), ActionContext{AttackerID: menacer.ID})
	apply(t, e, IdxDeclareBlkDone, ActionContext{})

	if len(e.Game.Combat.blockersOf(menacer.ID)) != 0 {
		t.Fatal("lone blocker against menace must be removed")
	}
	toPhase(t, e, PhaseEndOfCombat)
	if got := e.Game.Players[1].Life; got != StartingLife-3 {
		t.Fatalf("unblocked menace attacker should connect for 3, life %d", got)
	}
}

// Multi-block damage uses the locked order, lethal-first.
func TestMultiBlockDamageOrder(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	attacker := putOnBattlefield(e, 0, testCreature("Attacker", 4, 4))
	small := putOnBattlefield(e, 1, testCreature("Small", 1, 1))
	big := putOnBattlefield(e, 1, testCreature("Big", 2, 5))

	toPhase(t, e, PhaseDeclareAttackers)
	apply(t, e, IdxAttackBase+findOnBattlefieldIdx(e, 0, attacker.ID), ActionContext{})
	apply(t, e, IdxDeclareAtkDone, ActionContext{})
	apply(t, e, IdxBlockBase+findOnBattlefieldIdx(e, 1, small.ID), ActionContext{AttackerID: attacker.ID})
	apply(t, e, 383, ActionContext{BlockerID: big.ID})
	apply(t, e, IdxDeclareBlkDone, ActionContext{})

	toPhase(t, e, PhaseCombatDamage)
	// Ordering action is required before damage happens.
	apply(t, e, IdxAssignCombatDmg, ActionContext{Order: map[int][]int{attacker.ID: {small.ID, big.ID}}})

	if small.Zone != ZoneGraveyard {
		t.Fatal("first blocker in order should take lethal damage")
	}
	if big.Zone != ZoneBattlefield || big.Damage != 3 {
		t.Fatalf("second blocker should soak 3, has %d in zone %s", big.Damage, big.Zone)
	}
	if attacker.Zone != ZoneBattlefield || attacker.Damage != 3 {
		t.Fatalf("attacker should survive with 3 damage, has %d in zone %s", attacker.Damage, attacker.Zone)
	}
}

// Ninjutsu swaps an unblocked attacker for the ninja, tapped and attacking.
func TestNinjutsu(t *testing.T) {
	e, _ := newTestEnv(t, []*Card{ShadowfootNinja()}, nil)
	runner := putOnBattlefield(e, 0, testCreature("Runner", 1, 1))
	putOnBattlefield(e, 0, Swamp())
	putOnBattlefield(e, 0, Swamp())

	toPhase(t, e, PhaseDeclareAttackers)
	apply(t, e, IdxAttackBase+findOnBattlefieldIdx(e, 0, runner.ID), ActionContext{})
	apply(t, e, IdxDeclareAtkDone, ActionContext{})
	apply(t, e, IdxDeclareBlkDone, ActionContext{}) // no blocks

	apply(t, e, IdxNinjutsu, ActionContext{HandIdx: 0, AttackerID: runner.ID})

	if runner.Zone != ZoneHand {
		t.Fatalf("unblocked attacker should return to hand, zone %s", runner.Zone)
	}
	ninja := e.Game.Players[0].Creatures()
	if len(ninja) != 1 || ninja[0].Card.Name != "Shadowfoot Ninja" {
		t.Fatalf("ninja should be on the battlefield, got %v", ninja)
	}
	if !ninja[0].Tapped {
		t.Fatal("ninja enters tapped and attacking")
	}
	if !e.Game.Combat.isAttacking(ninja[0].ID) {
		t.Fatal("ninja should inherit the attack")
	}
}

// Deathtouch makes any damage lethal; lifelink gains its controller life.
func TestDeathtouchAndLifelink(t *testing.T) {
	e, _ := newTestEnv(t, nil, nil)
	toucher := putOnBattlefield(e, 0, testCreature("Toucher", 1, 1, KwDeathtouch, KwLifelink))
	giant := putOnBattlefield(e, 1, testCreature("Giant", 5, 5))

	toPhase(t, e, PhaseDeclareAttackers)
	apply(t, e, IdxAttackBase+findOnBattlefieldIdx(e, 0, toucher.ID), ActionContext{})
	apply(t, e, IdxDeclareAtkDone, ActionContext{})
	apply(t, e, IdxBlockBase+findOnBattlefieldIdx(e, 1, giant.ID), ActionContext{AttackerID: toucher.ID})
	apply(t, e, IdxDeclareBlkDone, ActionContext{})
	toPhase(t, e, PhaseEndOfCombat)

	if giant.Zone != ZoneGraveyard {
		t.Fatal("deathtouch damage should be lethal to the 5/5")
	}
	if got := e.Game.Players[0].Life; got != StartingLife+1 {
		t.Fatalf("lifelink should gain 1 life, got %d", got)
	}
}
