package game

import (
	"fmt"

	"github.com/lcrane/manacore/internal/log"
)

// AttackDecl records one declared attacker and what it attacks. The default
// target is the defending player.
type AttackDecl struct {
	AttackerID int       `json:"attacker_id"`
	Target     TargetRef `json:"target"`
}

// CombatState tracks a single combat from declaration through damage.
type CombatState struct {
	Attackers []AttackDecl `json:"attackers,omitempty"`
	// Blockers maps attacker ID to its blockers in damage-assignment order.
	Blockers map[int][]int `json:"blockers,omitempty"`
	// OrderLocked marks multi-blocked attackers whose order is final.
	OrderLocked map[int]bool `json:"order_locked,omitempty"`

	AttackersDone    bool `json:"attackers_done"`
	BlockersDone     bool `json:"blockers_done"`
	FirstStrikeDealt bool `json:"first_strike_dealt"`
	DamageDealt      bool `json:"damage_dealt"`
}

// declFor returns the declaration for an attacker ID, or nil.
func (cs *CombatState) declFor(id int) *AttackDecl {
	for i := range cs.Attackers {
		if cs.Attackers[i].AttackerID == id {
			return &cs.Attackers[i]
		}
	}
	return nil
}

// isAttacking reports whether the permanent is a declared attacker.
func (cs *CombatState) isAttacking(id int) bool { return cs.declFor(id) != nil }

// isBlocking reports whether the permanent blocks anything.
func (cs *CombatState) isBlocking(id int) bool {
	for _, bs := range cs.Blockers {
		for _, b := range bs {
			if b == id {
				return true
			}
		}
	}
	return false
}

// blockersOf returns the blockers assigned to an attacker.
func (cs *CombatState) blockersOf(attackerID int) []int {
	if cs.Blockers == nil {
		return nil
	}
	return cs.Blockers[attackerID]
}

// addBlock assigns a blocker to an attacker.
func (cs *CombatState) addBlock(attackerID, blockerID int) {
	if cs.Blockers == nil {
		cs.Blockers = map[int][]int{}
	}
	cs.Blockers[attackerID] = append(cs.Blockers[attackerID], blockerID)
}

// needsOrder reports whether any multi-blocked attacker lacks a locked
// damage-assignment order.
func (cs *CombatState) needsOrder() bool {
	for id, bs := range cs.Blockers {
		if len(bs) > 1 && !cs.OrderLocked[id] {
			return true
		}
	}
	return false
}

// --- Eligibility ---

// canAttack applies invariants 3 and 4: untapped, not summoning-sick
// (unless hasty), and not a defender.
func (e *Env) canAttack(perm *CardInstance) bool {
	if !perm.EffectiveCard().Is(TypeCreature) {
		return false
	}
	if perm.Tapped {
		return false
	}
	if perm.EnteredThisTurn && !e.Abilities.HasKeyword(perm, KwHaste) {
		return false
	}
	if e.Abilities.HasKeyword(perm, KwDefender) {
		return false
	}
	return true
}

// canBlock composes keyword checks through the AbilityHandler: can't-block,
// unblockable, and flying (needs flying/reach). Menace's two-blocker minimum
// is not checked here; stripIllegalBlocks enforces it.
func (e *Env) canBlock(blocker, attacker *CardInstance) bool {
	if !blocker.EffectiveCard().Is(TypeCreature) || blocker.Tapped {
		return false
	}
	if e.Abilities.HasKeyword(blocker, KwCantBlock) {
		return false
	}
	if e.Abilities.HasKeyword(attacker, KwUnblockable) {
		return false
	}
	if e.Abilities.HasKeyword(attacker, KwFlying) &&
		!e.Abilities.HasKeyword(blocker, KwFlying) && !e.Abilities.HasKeyword(blocker, KwReach) {
		return false
	}
	return true
}

// stripIllegalBlocks removes block assignments that violate menace's
// two-blocker minimum; the attacker becomes unblocked.
func (e *Env) stripIllegalBlocks() {
	g := e.Game
	for id, bs := range g.Combat.Blockers {
		attacker := g.FindInstance(id)
		if attacker == nil {
			continue
		}
		if e.Abilities.HasKeyword(attacker, KwMenace) && len(bs) == 1 {
			delete(g.Combat.Blockers, id)
			e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: attacker.Controller,
				Type: log.EventBlockDeclare, Card: attacker.Card.Name,
				Details: attacker.Card.Name + " needs two or more blockers; block removed"})
		}
	}
}

// --- Declaration ---

// declareAttacker toggles an attacker declaration for the permanent.
func (e *Env) declareAttacker(perm *CardInstance) {
	g := e.Game
	if d := g.Combat.declFor(perm.ID); d != nil {
		// Toggle off an already-declared attacker.
		for i := range g.Combat.Attackers {
			if g.Combat.Attackers[i].AttackerID == perm.ID {
				g.Combat.Attackers = append(g.Combat.Attackers[:i], g.Combat.Attackers[i+1:]...)
				break
			}
		}
		return
	}
	def := g.Opponent(g.ActivePlayer)
	g.Combat.Attackers = append(g.Combat.Attackers, AttackDecl{
		AttackerID: perm.ID,
		Target:     TargetRef{Kind: TargetPlayer, Player: def},
	})
	e.log(log.NewAttackDeclareEvent(g.Turn, g.ActivePlayer, perm.Card.Name, fmt.Sprintf("P%d", def+1)))
}

// retargetLastAttacker points the most recent declaration at a planeswalker
// or battle.
func (e *Env) retargetLastAttacker(t TargetRef) bool {
	g := e.Game
	if len(g.Combat.Attackers) == 0 {
		return false
	}
	d := &g.Combat.Attackers[len(g.Combat.Attackers)-1]
	d.Target = t
	if perm := g.FindInstance(d.AttackerID); perm != nil {
		e.log(log.NewAttackDeclareEvent(g.Turn, g.ActivePlayer, perm.Card.Name, t.String()))
	}
	return true
}

// commitAttackers taps non-vigilant attackers and moves to blockers.
func (e *Env) commitAttackers() {
	g := e.Game
	for _, d := range g.Combat.Attackers {
		perm := g.FindInstance(d.AttackerID)
		if perm == nil {
			continue
		}
		if !e.Abilities.HasKeyword(perm, KwVigilance) {
			perm.Tapped = true
		}
		e.queueCardTriggers(perm, "attack")
	}
	g.Combat.AttackersDone = true
	e.advance() // → DeclareBlockers (or straight past when no attackers)
}

// commitBlockers locks blocks and opens the post-declaration priority
// window (ninjutsu lives here); damage follows once both players pass.
func (e *Env) commitBlockers() {
	g := e.Game
	e.stripIllegalBlocks()
	g.Combat.BlockersDone = true
	e.assignPriority(g.ActivePlayer)
}

// combatHasFirstStrike reports whether any participant strikes first.
func (e *Env) combatHasFirstStrike() bool {
	g := e.Game
	check := func(id int) bool {
		perm := g.FindInstance(id)
		return perm != nil && perm.Zone == ZoneBattlefield &&
			(e.Abilities.HasKeyword(perm, KwFirstStrike) || e.Abilities.HasKeyword(perm, KwDoubleStrike))
	}
	for _, d := range g.Combat.Attackers {
		if check(d.AttackerID) {
			return true
		}
		for _, b := range g.Combat.blockersOf(d.AttackerID) {
			if check(b) {
				return true
			}
		}
	}
	return false
}

// lockDamageOrders finalises multi-block orders. An explicit order (attacker
// ID → blocker IDs) overrides; otherwise the declared order stands.
func (e *Env) lockDamageOrders(explicit map[int][]int) {
	g := e.Game
	if g.Combat.OrderLocked == nil {
		g.Combat.OrderLocked = map[int]bool{}
	}
	for id, bs := range g.Combat.Blockers {
		if len(bs) <= 1 {
			continue
		}
		if ord, ok := explicit[id]; ok && len(ord) == len(bs) {
			g.Combat.Blockers[id] = ord
		}
		g.Combat.OrderLocked[id] = true
	}
}

// --- Damage ---

// strikesNow reports whether a creature deals damage in this sub-step.
func (e *Env) strikesNow(perm *CardInstance, firstStrikePhase bool) bool {
	fs := e.Abilities.HasKeyword(perm, KwFirstStrike)
	ds := e.Abilities.HasKeyword(perm, KwDoubleStrike)
	if firstStrikePhase {
		return fs || ds
	}
	return !fs || ds
}

// dealCombatDamage assigns and deals all combat damage for one sub-step.
// Multi-blocked attackers assign lethal-first down the locked order, with
// trample overflow to the attack target.
func (e *Env) dealCombatDamage(firstStrikePhase bool) {
	g := e.Game
	phase := g.Phase.String()

	for _, d := range g.Combat.Attackers {
		attacker := g.FindInstance(d.AttackerID)
		if attacker == nil || attacker.Zone != ZoneBattlefield {
			continue
		}
		blockers := g.Combat.blockersOf(d.AttackerID)

		// Attacker's damage.
		if e.strikesNow(attacker, firstStrikePhase) {
			power := attacker.CurrentPower()
			if len(blockers) == 0 {
				e.dealToAttackTarget(attacker, d.Target, power)
			} else {
				remaining := power
				trample := e.Abilities.HasKeyword(attacker, KwTrample)
				deathtouch := e.Abilities.HasKeyword(attacker, KwDeathtouch)
				for _, bid := range blockers {
					blocker := g.FindInstance(bid)
					if blocker == nil || blocker.Zone != ZoneBattlefield {
						continue
					}
					if remaining <= 0 {
						break
					}
					lethal := blocker.CurrentToughness() - blocker.Damage
					if deathtouch {
						lethal = 1
					}
					assign := lethal
					if assign > remaining {
						assign = remaining
					}
					if !trample {
						// Last blocker in the order soaks the rest.
						if bid == blockers[len(blockers)-1] {
							assign = remaining
						}
					}
					e.combatDamageToCreature(attacker, blocker, assign, phase)
					remaining -= assign
				}
				if trample && remaining > 0 {
					e.dealToAttackTarget(attacker, d.Target, remaining)
				}
			}
		}

		// Blockers' damage back at the attacker.
		for _, bid := range blockers {
			blocker := g.FindInstance(bid)
			if blocker == nil || blocker.Zone != ZoneBattlefield {
				continue
			}
			if !e.strikesNow(blocker, firstStrikePhase) {
				continue
			}
			if attacker.Zone == ZoneBattlefield {
				e.combatDamageToCreature(blocker, attacker, blocker.CurrentPower(), phase)
			}
		}
	}

	if firstStrikePhase {
		g.Combat.FirstStrikeDealt = true
	} else {
		g.Combat.DamageDealt = true
	}
}

// dealToAttackTarget routes unblocked/trample damage at the declared target.
func (e *Env) dealToAttackTarget(attacker *CardInstance, target TargetRef, amount int) {
	if amount <= 0 {
		return
	}
	g := e.Game
	switch target.Kind {
	case TargetPermanent:
		if perm := g.FindInstance(target.ID); perm != nil && perm.Zone == ZoneBattlefield {
			e.damagePermanent(perm, amount)
		} else {
			// Target left: damage falls through to the defending player.
			e.changeLife(g.Opponent(attacker.Controller), -amount, "combat damage from "+attacker.Card.Name)
		}
	default:
		e.changeLife(target.Player, -amount, "combat damage from "+attacker.Card.Name)
	}
	if e.Abilities.HasKeyword(attacker, KwLifelink) {
		e.changeLife(attacker.Controller, amount, "lifelink")
	}
	e.queueCardTriggers(attacker, "combat_damage")
}

// combatDamageToCreature marks creature combat damage, honouring deathtouch
// and lifelink.
func (e *Env) combatDamageToCreature(source, target *CardInstance, amount int, phase string) {
	if amount <= 0 {
		return
	}
	g := e.Game
	target.Damage += amount
	if e.Abilities.HasKeyword(source, KwDeathtouch) {
		// Any deathtouch damage is lethal; SBAs read the full toughness.
		target.Damage += target.CurrentToughness()
	}
	if e.Abilities.HasKeyword(source, KwLifelink) {
		e.changeLife(source.Controller, amount, "lifelink")
	}
	e.log(log.GameEvent{Turn: g.Turn, Phase: phase, Player: source.Controller,
		Type: log.EventCombatDamage,
		Details: fmt.Sprintf("%s deals %d to %s", source.Card.Name, amount, target.Card.Name)})
}

// --- Ninjutsu ---

// ninjutsuSwap returns an unblocked attacker to hand and puts the ninja onto
// the battlefield tapped and attacking, inheriting the attack target.
func (e *Env) ninjutsuSwap(ninja *CardInstance, attackerID int) bool {
	g := e.Game
	d := g.Combat.declFor(attackerID)
	if d == nil || len(g.Combat.blockersOf(attackerID)) > 0 {
		return false
	}
	attacker := g.FindInstance(attackerID)
	if attacker == nil || attacker.Zone != ZoneBattlefield {
		return false
	}
	cost := ninja.Card.MechanicCost(MechNinjutsu)
	e.autoTap(ninja.Owner, cost)
	if !e.Mana.CanPay(g, ninja.Owner, cost) {
		return false
	}
	if err := e.Mana.Pay(g, ninja.Owner, cost); err != nil {
		return false
	}
	e.MoveCard(attacker, ZoneBattlefield, ZoneHand)
	g.Players[ninja.Owner].RemoveFromHand(ninja)
	ninja.Zone = ZoneStack
	e.MoveCard(ninja, ZoneStack, ZoneBattlefield)
	ninja.Tapped = true
	d.AttackerID = ninja.ID
	e.log(log.NewAttackDeclareEvent(g.Turn, ninja.Owner, ninja.Card.Name, d.Target.String()+" (ninjutsu)"))
	return true
}
