package game

import (
	"fmt"

	"github.com/lcrane/manacore/internal/log"
)

// The phase machine owns the turn structure and priority. Transitions are
// legal only when the stack is empty and both players have passed, or when
// the current phase is non-interactive.

// enterPhase performs a phase's turn-based actions and opens priority.
func (e *Env) enterPhase(p Phase) {
	g := e.Game
	e.emptyManaPools()
	g.Phase = p
	g.PassCount = 0
	e.log(log.NewPhaseChangeEvent(g.Turn, p.String()))

	switch p {
	case PhaseUntap:
		ap := g.Players[g.ActivePlayer]
		for _, perm := range ap.Battlefield {
			if perm.Tapped {
				perm.Tapped = false
			}
			perm.EnteredThisTurn = false
			perm.Exerted = false
			perm.BoastUsed = false
		}
		ap.LandPlayed = false
		// No priority in Untap; proceed straight to Upkeep.
		e.enterPhase(PhaseUpkeep)
		return

	case PhaseUpkeep:
		for p2 := 0; p2 < 2; p2++ {
			for _, perm := range g.Players[p2].Battlefield {
				e.queueCardTriggers(perm, "upkeep")
			}
		}
		e.tickSuspend()

	case PhaseDraw:
		if g.Turn > 1 || g.ActivePlayer == 1 || g.FirstTurnDraw {
			e.drawCard(g.ActivePlayer)
		}

	case PhaseDeclareAttackers:
		g.Combat = CombatState{}

	case PhaseDeclareBlockers:
		if len(g.Combat.Attackers) == 0 {
			// Nothing attacked; skip the rest of combat.
			e.enterPhase(PhaseEndOfCombat)
			return
		}

	case PhaseFirstStrikeDamage:
		if !e.combatHasFirstStrike() {
			e.enterPhase(PhaseCombatDamage)
			return
		}
		if !g.Combat.needsOrder() {
			e.dealCombatDamage(true)
			e.runSBA()
			if g.Over {
				return
			}
		}

	case PhaseCombatDamage:
		if !g.Combat.needsOrder() {
			e.dealCombatDamage(false)
			e.runSBA()
			if g.Over {
				return
			}
		}

	case PhaseEndOfCombat:
		for _, a := range g.Combat.Attackers {
			if perm := g.FindInstance(a.AttackerID); perm != nil {
				e.queueCardTriggers(perm, "end_of_combat")
			}
		}

	case PhaseCleanup:
		e.cleanupStep()
		return
	}

	if p.Interactive() {
		g.Priority = g.ActivePlayer
		e.log(log.NewPriorityEvent(g.Turn, p.String(), g.Priority))
	} else {
		g.Priority = -1
	}
	e.postAction()
}

// cleanupStep discards to hand size, wipes damage, and rolls the turn.
func (e *Env) cleanupStep() {
	g := e.Game
	ap := g.Players[g.ActivePlayer]

	if len(ap.Hand) > MaxHandSize {
		// Discards are mask-driven: stay in Cleanup until resolved.
		g.Priority = g.ActivePlayer
		return
	}

	for p := 0; p < 2; p++ {
		for _, perm := range g.Players[p].Battlefield {
			perm.Damage = 0
		}
	}
	e.emptyManaPools()

	// Pending triggers would open priority here; otherwise the turn ends.
	if len(g.TriggerQueue) > 0 {
		g.Priority = g.ActivePlayer
		e.postAction()
		return
	}

	e.nextTurn()
}

// nextTurn hands the turn to the other player, truncating at the limit.
func (e *Env) nextTurn() {
	g := e.Game
	g.ActivePlayer = g.Opponent(g.ActivePlayer)
	g.Turn++
	if g.Turn > g.MaxTurns {
		g.Truncated = true
		e.truncateByLife()
		return
	}
	e.log(log.NewTurnBeginEvent(g.Turn, g.ActivePlayer))
	e.enterPhase(PhaseUntap)
}

// truncateByLife ends a turn-limited game: higher life wins, equal draws.
func (e *Env) truncateByLife() {
	g := e.Game
	l0, l1 := g.Players[0].Life, g.Players[1].Life
	switch {
	case l0 > l1:
		e.setLoss(1, fmt.Sprintf("turn limit (%d) — lower life", g.MaxTurns))
	case l1 > l0:
		e.setLoss(0, fmt.Sprintf("turn limit (%d) — lower life", g.MaxTurns))
	default:
		e.setDraw(fmt.Sprintf("turn limit (%d) — equal life", g.MaxTurns))
	}
}

// advance moves to the next phase in the fixed order.
func (e *Env) advance() {
	g := e.Game
	if g.Over {
		return
	}
	cur := -1
	for i, p := range phaseOrder {
		if p == g.Phase {
			cur = i
			break
		}
	}
	if cur == -1 || cur == len(phaseOrder)-1 {
		e.enterPhase(PhaseCleanup)
		return
	}
	e.enterPhase(phaseOrder[cur+1])
}

// passPriority implements spec priority semantics: on the second consecutive
// pass either the top of the stack resolves or the phase advances.
func (e *Env) passPriority(player int) {
	g := e.Game
	e.log(log.NewPassPriorityEvent(g.Turn, g.Phase.String(), player))
	g.PassCount++
	if g.PassCount >= 2 {
		g.PassCount = 0
		if len(g.Stack) > 0 {
			e.resolveTop()
			return
		}
		e.advance()
		return
	}
	g.Priority = g.Opponent(player)
	e.log(log.NewPriorityEvent(g.Turn, g.Phase.String(), g.Priority))
}

// assignPriority forces priority, used on trigger/SBA insertion and on
// stuck-state recovery.
func (e *Env) assignPriority(player int) {
	g := e.Game
	g.Priority = player
	g.PassCount = 0
	e.log(log.NewPriorityEvent(g.Turn, g.Phase.String(), player))
}

// recoverStuckState applies the escalating L1→L3 recovery ladder based on
// the current no-op streak. Returns true if the game was flagged done.
func (e *Env) recoverStuckState() bool {
	g := e.Game
	n := g.NoOpStreak
	switch {
	case n > 12:
		e.log(log.NewStuckRecoveryEvent(g.Turn, g.Phase.String(), 3, "forcing phase advance"))
		before := g.Phase
		e.advance()
		if g.Phase == before {
			g.recoveryFails++
			if g.recoveryFails >= 2 {
				e.setDraw("stuck state unrecoverable")
				return true
			}
		} else {
			g.recoveryFails = 0
		}
		g.NoOpStreak = 0
	case n > 6:
		e.log(log.NewStuckRecoveryEvent(g.Turn, g.Phase.String(), 2, "forcing pass sequence"))
		e.passPriority(e.ToAct())
		e.passPriority(e.ToAct())
	case n > 3:
		e.log(log.NewStuckRecoveryEvent(g.Turn, g.Phase.String(), 1, "reassigning priority"))
		e.assignPriority(g.ActivePlayer)
	}
	return g.Over
}

// tickSuspend removes a time counter from each suspended card at upkeep and
// casts any that reach zero.
func (e *Env) tickSuspend() {
	g := e.Game
	ap := g.Players[g.ActivePlayer]
	var ready []*CardInstance
	for _, c := range ap.Exile {
		if c.ExiledWith == MechSuspend && c.Counters[CounterTime] > 0 {
			c.AddCounter(CounterTime, -1)
			if c.Counters[CounterTime] == 0 {
				ready = append(ready, c)
			}
		}
	}
	for _, c := range ready {
		ap.Exile = removeFrom(ap.Exile, c)
		c.Zone = ZoneStack
		e.pushStack(&StackItem{Kind: ItemSpell, Card: c, Controller: c.Owner,
			Ctx: SpellContext{SourceZone: ZoneExile, AltCost: MechSuspend}})
	}
}

// postAction runs the spec's post-action loop: SBAs → trigger drain →
// resolve-on-double-pass, bounded at 20 iterations.
func (e *Env) postAction() {
	g := e.Game
	for i := 0; i < 20; i++ {
		if g.Over {
			return
		}
		e.runSBA()
		if g.Over {
			return
		}
		if e.drainTriggers() {
			continue
		}
		if g.PassCount >= 2 && len(g.Stack) > 0 && !g.SplitSecond {
			g.PassCount = 0
			e.resolveTop()
			continue
		}
		// Interactive phase with nobody holding priority: hand it to the
		// active player (stuck-state guard from §4.1).
		if g.Priority < 0 && g.Phase.Interactive() && !g.Mulligan.Active && g.ActiveChoiceCount() == 0 {
			e.assignPriority(g.ActivePlayer)
		}
		return
	}
	e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Type: log.EventSBA,
		Details: "post-action loop bound reached"})
}
