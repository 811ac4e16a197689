package game

import (
	"fmt"

	"github.com/lcrane/manacore/internal/log"
)

// ActionContext carries the parameters an action requires. The vocabulary
// table (§ mask reasons) declares which fields each action reads; the
// dispatcher validates them against live state before mutating anything.
type ActionContext struct {
	HandIdx        int            `json:"hand_idx,omitempty"`
	BattlefieldIdx int            `json:"battlefield_idx,omitempty"`
	AbilityIdx     int            `json:"ability_idx,omitempty"`
	GyIdx          int            `json:"gy_idx,omitempty"`
	ExileIdx       int            `json:"exile_idx,omitempty"`
	StackIdx       int            `json:"stack_idx,omitempty"`
	TargetStackIdx int            `json:"target_stack_idx,omitempty"`
	AttackerID     int            `json:"attacker_id,omitempty"`
	BlockerID      int            `json:"blocker_id,omitempty"`
	TargetID       int            `json:"target_id,omitempty"`
	DefenderID     int            `json:"defender_id,omitempty"`
	BattleID       int            `json:"battle_id,omitempty"`
	PWID           int            `json:"pw_id,omitempty"`
	EquipID        int            `json:"equip_id,omitempty"`
	FortID         int            `json:"fort_id,omitempty"`
	CardID         int            `json:"card_id,omitempty"`
	Mode           int            `json:"mode,omitempty"`
	DiscardIdx     int            `json:"discard_idx,omitempty"`
	NumExtraModes  int            `json:"num_extra_modes,omitempty"`
	CounterType    CounterType    `json:"counter_type,omitempty"`
	Order          map[int][]int  `json:"order,omitempty"` // attacker ID → blocker IDs
}

// Reward shaping scalars (§4.4): fixed within a run.
const (
	rewardMaskMiss     = -0.1
	rewardInvalidIndex = -0.15
	rewardLifeScale    = 0.02
	rewardHandScale    = 0.05
	rewardBoardScale   = 0.08
	rewardPowerScale   = 0.03
	rewardWin          = 10.0
)

// stateScalars captures the reward-shaping observables.
type stateScalars struct {
	life  [2]int
	hand  [2]int
	board [2]int
	power [2]int
}

func (e *Env) scalars() stateScalars {
	var s stateScalars
	for p := 0; p < 2; p++ {
		pl := e.Game.Players[p]
		s.life[p] = pl.Life
		s.hand[p] = len(pl.Hand)
		s.board[p] = len(pl.Battlefield)
		s.power[p] = pl.TotalPower()
	}
	return s
}

// shapedDelta scores the change from the acting player's perspective.
func shapedDelta(before, after stateScalars, actor int) float64 {
	opp := 1 - actor
	d := 0.0
	d += rewardLifeScale * float64((after.life[actor]-before.life[actor])-(after.life[opp]-before.life[opp]))
	d += rewardHandScale * float64((after.hand[actor]-before.hand[actor])-(after.hand[opp]-before.hand[opp]))
	d += rewardBoardScale * float64((after.board[actor]-before.board[actor])-(after.board[opp]-before.board[opp]))
	d += rewardPowerScale * float64((after.power[actor]-before.power[actor])-(after.power[opp]-before.power[opp]))
	return d
}

// autoTap taps the player's untapped lands until the cost is payable from
// the pool (or no land can help). Payment itself stays in the ManaSystem.
func (e *Env) autoTap(player int, cost ManaCost) {
	g := e.Game
	for i := 0; i < FieldIndexLimit+1; i++ {
		if e.Mana.CanPay(g, player, cost) {
			return
		}
		tapped := false
		for _, perm := range g.Players[player].Battlefield {
			c := perm.EffectiveCard()
			if c.Is(TypeLand) && !perm.Tapped {
				e.tapForMana(player, perm)
				tapped = true
				break
			}
		}
		if !tapped {
			return
		}
	}
}

// Apply validates and executes one action for the player expected to act,
// runs the post-action loop, and returns (reward, done, truncated, info).
// Panics in handlers are caught here; the state rolls back to the pre-action
// snapshot when possible (§7 CriticalError).
func (e *Env) Apply(index int, ctx ActionContext) (reward float64, done, truncated bool, info Info) {
	g := e.Game
	actor := e.ToAct()
	info = Info{}

	finish := func(r float64) (float64, bool, bool, Info) {
		if g.Over {
			info["game_result"] = string(e.Result(actor))
			if e.Result(actor) == ResultWin {
				r += rewardWin
			} else if e.Result(actor) == ResultLoss {
				r -= rewardWin
			}
		}
		info["action_mask"] = e.GenerateMask(e.ToAct())
		info["to_act"] = e.ToAct()
		return r, g.Over, g.Truncated, info
	}

	if g.Over {
		return finish(0)
	}

	if index < 0 || index >= NumActions {
		info["error"] = fmt.Sprintf("action index %d out of range", index)
		return finish(rewardInvalidIndex)
	}

	mask := e.GenerateMask(actor)
	if !mask.Legal(index) {
		e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: actor,
			Type: log.EventMaskMiss, Details: fmt.Sprintf("illegal action %s (%d)", ActionName(index), index)})
		info["error"] = fmt.Sprintf("action %s not legal", ActionName(index))
		return finish(rewardMaskMiss)
	}

	before := e.scalars()
	snapshot, snapErr := e.Snapshot()

	defer func() {
		if r := recover(); r != nil {
			if snapErr == nil {
				var restored Game
				if jsonErr := unmarshalGame(snapshot, &restored); jsonErr == nil {
					restored.rng = g.rng
					restored.nextID = g.nextID
					*g = restored
				} else {
					e.setDraw("critical error: unrecoverable state")
				}
			} else {
				e.setDraw("critical error: unrecoverable state")
			}
			info["error"] = fmt.Sprintf("critical error in handler: %v", r)
			info["game_result"] = string(ResultError)
			m := newMask()
			m.set(IdxPassPriority, "recovering from error", nil)
			m.set(IdxConcede, "concede", nil)
			info["action_mask"] = m
			reward, done, truncated = rewardMaskMiss, g.Over, g.Truncated
		}
	}()

	delta, ok := e.dispatch(index, actor, ctx)
	if !ok {
		info["error"] = fmt.Sprintf("action %s failed validation", ActionName(index))
		return finish(rewardMaskMiss)
	}
	e.history = append(e.history, AppliedAction{Index: index, Ctx: ctx})

	// Stuck-state accounting.
	t, _ := Decode(index)
	if t == ActNoOp || t == ActNoOpSearchFail {
		g.NoOpStreak++
		if g.NoOpStreak > 3 {
			if e.recoverStuckState() && g.recoveryFails >= 2 {
				r, d, tr, _ := finish(delta + shapedDelta(before, e.scalars(), actor))
				info["game_result"] = string(ResultError)
				return r, d, tr, info
			}
		}
	} else {
		g.NoOpStreak = 0
		g.recoveryFails = 0
	}

	e.postAction()

	return finish(delta + shapedDelta(before, e.scalars(), actor))
}

// dispatch routes a validated action index to its handler. Each handler
// returns (rewardDelta, ok); ok=false leaves the state unchanged.
func (e *Env) dispatch(index, actor int, ctx ActionContext) (float64, bool) {
	g := e.Game
	t, param := Decode(index)
	pl := g.Players[actor]

	handCard := func(i int) *CardInstance {
		if i < 0 || i >= len(pl.Hand) {
			return nil
		}
		return pl.Hand[i]
	}
	bfCard := func(i int) *CardInstance {
		if i < 0 || i >= len(pl.Battlefield) {
			return nil
		}
		return pl.Battlefield[i]
	}

	switch t {
	case ActNoOp, ActNoOpSearchFail:
		return 0, true

	case ActConcede:
		e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: actor,
			Type: log.EventConcede, Details: fmt.Sprintf("P%d concedes", actor+1)})
		e.setLoss(actor, "concession")
		return 0, true

	case ActPassPriority:
		return 0, e.handlePass(actor)

	case ActEndTurn:
		start := g.Turn
		for i := 0; i < 40 && g.Turn == start && !g.Over; i++ {
			if g.Phase == PhaseCleanup && len(pl.Hand) > MaxHandSize {
				break // discards must happen first
			}
			e.advance()
		}
		return 0, true

	case ActUntapNext, ActDrawNext, ActMainPhaseEnd, ActUpkeepPass,
		ActBeginCombatEnd, ActEndCombat, ActEndStep:
		e.advance()
		return 0, true

	case ActMulligan:
		return 0, e.takeMulligan(actor)
	case ActKeepHand:
		return 0, e.keepHand(actor)
	case ActBottomCard:
		return 0, e.bottomCard(actor, param)

	case ActPlayLand:
		card := handCard(param)
		if card == nil {
			return 0, false
		}
		return 0.05, e.playLand(actor, card)

	case ActPlaySpell:
		card := handCard(param)
		if card == nil {
			return 0, false
		}
		return 0, e.castFromHand(actor, card)

	case ActPlayMDFCLandBack:
		card := handCard(param)
		if card == nil || len(card.Card.Faces) == 0 || pl.LandPlayed {
			return 0, false
		}
		pl.RemoveFromHand(card)
		card.Transformed = true
		card.Zone = ZoneStack
		e.MoveCard(card, ZoneStack, ZoneBattlefield)
		pl.LandPlayed = true
		e.log(log.NewPlayLandEvent(g.Turn, g.Phase.String(), actor, card.Card.Faces[0].Name))
		return 0.05, true

	case ActPlayMDFCBack, ActPlayAdventure:
		card := handCard(param)
		if card == nil {
			return 0, false
		}
		return 0, e.castHalf(actor, card, 2)

	case ActCastLeftHalf:
		card := handCard(ctx.HandIdx)
		if card == nil {
			return 0, false
		}
		return 0, e.castHalf(actor, card, 1)
	case ActCastRightHalf:
		card := handCard(ctx.HandIdx)
		if card == nil {
			return 0, false
		}
		return 0, e.castHalf(actor, card, 2)
	case ActCastFuse:
		card := handCard(ctx.HandIdx)
		if card == nil {
			return 0, false
		}
		return 0, e.castHalf(actor, card, 3)
	case ActAftermathCast:
		if ctx.GyIdx >= len(pl.Graveyard) {
			return 0, false
		}
		card := pl.Graveyard[ctx.GyIdx]
		if !card.Card.HasMechanic(MechAftermath) {
			return 0, false
		}
		return 0, e.beginCast(actor, card, SpellContext{SourceZone: ZoneGraveyard, AltCost: MechAftermath, Half: 2})

	case ActCastForImpending:
		card := handCard(ctx.HandIdx)
		if card == nil || !card.Card.HasMechanic(MechImpending) {
			return 0, false
		}
		return 0, e.beginCast(actor, card, SpellContext{SourceZone: ZoneHand, Impending: true})

	case ActAltCast:
		return 0, e.handleAltCast(actor, altCastMechanics[param], ctx)
	case ActAltCast2:
		return 0, e.handleAltCast(actor, altCastMechanics2[param], ctx)

	case ActCastFromExile:
		if param >= len(pl.Exile) {
			return 0, false
		}
		card := pl.Exile[param]
		if card.ExiledWith != MechForetell {
			return 0, false
		}
		return 0, e.castAlt(actor, card, MechForetell, ZoneExile)

	case ActTapLandForMana:
		land := bfCard(param)
		if land == nil {
			return 0, false
		}
		return 0, e.tapForMana(actor, land)

	case ActTapLandForEffect:
		land := bfCard(param)
		if land == nil || land.Tapped {
			return 0, false
		}
		abs := e.Abilities.ActivatedAbilities(g, land)
		for i, ab := range abs {
			if !ab.IsMana {
				return 0, e.activateAbility(actor, land, i)
			}
		}
		return 0, false

	case ActActivateAbility:
		perm := bfCard(param / 3)
		if perm == nil {
			return 0, false
		}
		return 0, e.activateAbility(actor, perm, param%3)

	case ActTransform:
		perm := bfCard(param)
		if perm == nil || len(perm.Card.Faces) == 0 {
			return 0, false
		}
		perm.Transformed = !perm.Transformed
		e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: actor,
			Type: log.EventTransform, Card: perm.Card.Name,
			Details: fmt.Sprintf("%s transforms", perm.Card.Name)})
		return 0, true

	case ActMorph:
		perm := bfCard(ctx.BattlefieldIdx)
		if perm == nil {
			return 0, false
		}
		return 0, e.turnFaceUp(actor, perm)

	case ActManifest:
		if len(pl.Library) == 0 {
			return 0, false
		}
		top := pl.Library[len(pl.Library)-1]
		pl.Library = pl.Library[:len(pl.Library)-1]
		top.FaceDown = true
		top.Manifested = true
		top.Zone = ZoneStack
		e.MoveCard(top, ZoneStack, ZoneBattlefield)
		return 0, true

	case ActFlipCard:
		perm := bfCard(ctx.BattlefieldIdx)
		if perm == nil || perm.Flipped {
			return 0, false
		}
		perm.Flipped = true
		e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: actor,
			Type: log.EventTransform, Card: perm.Card.Name,
			Details: fmt.Sprintf("%s flips", perm.Card.Name)})
		return 0, true

	case ActUnlockDoor:
		perm := bfCard(param)
		if perm == nil || perm.DoorsUnlocked >= 2 {
			return 0, false
		}
		perm.DoorsUnlocked++
		e.queueCardTriggers(perm, "door_unlocked")
		return 0, true

	case ActLevelUpClass:
		perm := bfCard(param)
		if perm == nil || perm.Level >= 3 {
			return 0, false
		}
		cost := perm.Card.MechanicCost(MechLevelUp)
		e.autoTap(actor, cost)
		if !e.Mana.CanPay(g, actor, cost) {
			return 0, false
		}
		if err := e.Mana.Pay(g, actor, cost); err != nil {
			return 0, false
		}
		perm.Level++
		perm.AddCounter(CounterLevel, 1)
		return 0, true

	// --- Combat ---

	case ActAttack:
		perm := bfCard(param)
		if perm == nil || g.Phase != PhaseDeclareAttackers {
			return 0, false
		}
		if !g.Combat.isAttacking(perm.ID) && !e.canAttack(perm) {
			return 0, false
		}
		e.declareAttacker(perm)
		return 0, true

	case ActAttackPlaneswalker:
		pws := g.Players[g.Opponent(actor)].Planeswalkers()
		if param >= len(pws) {
			return 0, false
		}
		return 0, e.retargetLastAttacker(TargetRef{Kind: TargetPermanent, Player: g.Opponent(actor), ID: pws[param].ID})

	case ActAttackBattle:
		battles := pl.Battles()
		if param >= len(battles) {
			return 0, false
		}
		return 0, e.retargetLastAttacker(TargetRef{Kind: TargetPermanent, Player: actor, ID: battles[param].ID})

	case ActDeclareAttackersDone:
		if g.Phase != PhaseDeclareAttackers || g.Combat.AttackersDone {
			return 0, false
		}
		e.commitAttackers()
		return 0, true

	case ActBlock:
		perm := bfCard(param)
		if perm == nil || g.Phase != PhaseDeclareBlockers || g.Combat.BlockersDone {
			return 0, false
		}
		attackerID := ctx.AttackerID
		if attackerID == 0 {
			for _, d := range g.Combat.Attackers {
				if len(g.Combat.blockersOf(d.AttackerID)) == 0 {
					attackerID = d.AttackerID
					break
				}
			}
			if attackerID == 0 && len(g.Combat.Attackers) > 0 {
				attackerID = g.Combat.Attackers[0].AttackerID
			}
		}
		attacker := g.FindInstance(attackerID)
		if attacker == nil || !g.Combat.isAttacking(attackerID) || !e.canBlock(perm, attacker) {
			return 0, false
		}
		g.Combat.addBlock(attackerID, perm.ID)
		e.log(log.NewBlockDeclareEvent(g.Turn, actor, perm.Card.Name, attacker.Card.Name))
		return 0, true

	case ActAssignMultipleBlockers:
		if param >= len(g.Combat.Attackers) || g.Combat.BlockersDone {
			return 0, false
		}
		d := g.Combat.Attackers[param]
		attacker := g.FindInstance(d.AttackerID)
		if attacker == nil {
			return 0, false
		}
		blocker := g.FindInstance(ctx.BlockerID)
		if blocker == nil {
			for _, perm := range pl.Battlefield {
				if !g.Combat.isBlocking(perm.ID) && e.canBlock(perm, attacker) {
					blocker = perm
					break
				}
			}
		}
		if blocker == nil || g.Combat.isBlocking(blocker.ID) || !e.canBlock(blocker, attacker) {
			return 0, false
		}
		g.Combat.addBlock(d.AttackerID, blocker.ID)
		e.log(log.NewBlockDeclareEvent(g.Turn, actor, blocker.Card.Name, attacker.Card.Name))
		return 0, true

	case ActDeclareBlockersDone:
		if g.Phase != PhaseDeclareBlockers || g.Combat.BlockersDone {
			return 0, false
		}
		e.commitBlockers()
		return 0, true

	case ActDefendBattle, ActProtectPlaneswalker:
		attacker := g.FindInstance(ctx.AttackerID)
		if attacker == nil || !g.Combat.isAttacking(ctx.AttackerID) {
			return 0, false
		}
		blocker := g.FindInstance(ctx.DefenderID)
		if blocker == nil {
			for _, perm := range pl.Battlefield {
				if !g.Combat.isBlocking(perm.ID) && e.canBlock(perm, attacker) {
					blocker = perm
					break
				}
			}
		}
		if blocker == nil || !e.canBlock(blocker, attacker) {
			return 0, false
		}
		g.Combat.addBlock(attacker.ID, blocker.ID)
		e.log(log.NewBlockDeclareEvent(g.Turn, actor, blocker.Card.Name, attacker.Card.Name))
		return 0, true

	case ActNinjutsu:
		ninja := handCard(ctx.HandIdx)
		if ninja == nil || !ninja.Card.HasMechanic(MechNinjutsu) {
			return 0, false
		}
		return 0, e.ninjutsuSwap(ninja, ctx.AttackerID)

	case ActFirstStrikeOrder:
		if g.Phase != PhaseFirstStrikeDamage || g.Combat.FirstStrikeDealt {
			return 0, false
		}
		e.lockDamageOrders(ctx.Order)
		e.dealCombatDamage(true)
		e.runSBA()
		return 0, true

	case ActAssignCombatDamage:
		if g.Phase != PhaseCombatDamage || g.Combat.DamageDealt {
			return 0, false
		}
		e.lockDamageOrders(ctx.Order)
		e.dealCombatDamage(false)
		e.runSBA()
		return 0, true

	// --- Loyalty ---

	case ActLoyaltyPlus, ActLoyaltyMinus, ActLoyaltyZero, ActLoyaltyUltimate:
		perm := bfCard(ctx.BattlefieldIdx)
		if perm == nil || !perm.EffectiveCard().Is(TypePlaneswalker) {
			// Fall back to the first planeswalker with a matching ability.
			for _, p := range pl.Planeswalkers() {
				perm = p
				break
			}
		}
		if perm == nil {
			return 0, false
		}
		for _, ab := range e.Abilities.ActivatedAbilities(g, perm) {
			match := (t == ActLoyaltyPlus && ab.Loyalty > 0) ||
				(t == ActLoyaltyZero && ab.Loyalty == 0) ||
				(t == ActLoyaltyUltimate && ab.Loyalty < 0 && ab.Effect == "ultimate") ||
				(t == ActLoyaltyMinus && ab.Loyalty < 0 && ab.Effect != "ultimate")
			if match {
				return 0, e.activateLoyalty(actor, perm, ab)
			}
		}
		return 0, false

	// --- Choices ---

	case ActSelectTarget:
		tc := g.Targeting
		if tc == nil {
			return 0, false
		}
		cands := e.Abilities.LegalTargets(g, tc.Spec, tc.Controller)
		if param >= len(cands) {
			return 0, false
		}
		tc.Selected = append(tc.Selected, cands[param])
		if len(tc.Selected) >= tc.Spec.Max {
			e.finalizeTargeting()
		}
		return 0, true

	case ActSacrificePermanent:
		sc := g.Sacrifice
		if sc == nil {
			return 0, false
		}
		cands := e.sacrificeCandidates(sc)
		if param >= len(cands) {
			return 0, false
		}
		sc.Selected = append(sc.Selected, cands[param].ID)
		if len(sc.Selected) >= sc.RequiredCount {
			e.finalizeSacrifice()
		}
		return 0, true

	case ActChooseMode:
		cc := g.Choice
		if cc == nil || cc.Kind != ChoiceModes {
			return 0, false
		}
		cc.Selected = append(cc.Selected, param)
		if len(cc.Selected) >= cc.MaxModes {
			e.finalizeModes()
		}
		return 0, true

	case ActChooseX:
		cc := g.Choice
		if cc == nil || cc.Kind != ChoiceX {
			return 0, false
		}
		return 0, e.finalizeX(param + 1)

	case ActChooseColor:
		cc := g.Choice
		if cc == nil || cc.Kind != ChoiceColor {
			return 0, false
		}
		e.finalizeColor(Color(param))
		return 0, true

	case ActPutOnTop:
		return 0, e.scryStep(0)
	case ActPutOnBottom:
		cc := g.Choice
		if cc == nil || cc.Kind != ChoiceScry {
			return 0, false
		}
		return 0, e.scryStep(1)
	case ActPutToGraveyard:
		cc := g.Choice
		if cc == nil || cc.Kind != ChoiceSurveil {
			return 0, false
		}
		return 0, e.scryStep(2)

	case ActSelectSpreeMode:
		ps := g.Pending
		if ps == nil || !ps.NeedsSpree {
			return 0, false
		}
		mode := param % 2
		ps.Ctx.SpreeModes = append(ps.Ctx.SpreeModes, mode)
		ps.Ctx.Modes = append(ps.Ctx.Modes, mode)
		return 0, true

	// --- Pending-spell cost decisions ---

	case ActPayKicker:
		ps := g.Pending
		if ps == nil || !ps.NeedsKicker {
			return 0, false
		}
		ps.Ctx.Kicked = true
		ps.NeedsKicker = false
		e.continuePending()
		return 0, true
	case ActDontPayKicker:
		ps := g.Pending
		if ps == nil || !ps.NeedsKicker {
			return 0, false
		}
		ps.NeedsKicker = false
		e.continuePending()
		return 0, true

	case ActPayAdditional:
		ps := g.Pending
		if ps == nil || !ps.NeedsAdditional {
			return 0, false
		}
		if len(pl.Creatures()) == 0 {
			return 0, false
		}
		e.openSacrifice(actor, TypeCreature, 1)
		return 0, true
	case ActDontPayAdditional:
		ps := g.Pending
		if ps == nil || !ps.NeedsAdditional {
			return 0, false
		}
		e.abortPending("additional cost declined")
		return 0, true

	case ActPayEscalate:
		ps := g.Pending
		if ps == nil || !ps.NeedsEscalate {
			return 0, false
		}
		n := ctx.NumExtraModes
		if n <= 0 {
			n = 1
		}
		ps.Ctx.Escalated = n
		ps.NeedsEscalate = false
		e.continuePending()
		return 0, true

	case ActPayOffspring:
		ps := g.Pending
		if ps == nil || !ps.NeedsOffspring {
			return 0, false
		}
		ps.Ctx.Offspring = true
		ps.NeedsOffspring = false
		e.continuePending()
		return 0, true

	// --- Library / graveyard / exile surfaces ---

	case ActSearchLibrary:
		return 0, e.searchLibrary(actor, param)

	case ActDredge:
		if ctx.GyIdx >= len(pl.Graveyard) {
			return 0, false
		}
		card := pl.Graveyard[ctx.GyIdx]
		n := card.Card.MechanicCost(MechDredge).Generic
		if !card.Card.HasMechanic(MechDredge) || len(pl.Library) < n {
			return 0, false
		}
		for i := 0; i < n; i++ {
			top := pl.Library[len(pl.Library)-1]
			pl.Library = pl.Library[:len(pl.Library)-1]
			top.Zone = ZoneGraveyard
			pl.Graveyard = append(pl.Graveyard, top)
		}
		pl.Graveyard = removeFrom(pl.Graveyard, card)
		card.Zone = ZoneHand
		pl.Hand = append(pl.Hand, card)
		return 0, true

	case ActDiscardCard:
		if param >= len(pl.Hand) {
			return 0, false
		}
		e.discardCard(actor, pl.Hand[param])
		if g.Phase == PhaseCleanup && len(pl.Hand) <= MaxHandSize {
			e.cleanupStep()
		}
		return 0, true

	case ActReturnFromGraveyard:
		if param >= len(pl.Graveyard) {
			return 0, false
		}
		card := pl.Graveyard[param]
		e.MoveCard(card, ZoneGraveyard, ZoneHand)
		return 0, true

	case ActReanimate:
		if param >= len(pl.Graveyard) {
			return 0, false
		}
		card := pl.Graveyard[param]
		if !card.Card.Is(TypeCreature) {
			return 0, false
		}
		card.Controller = actor
		e.MoveCard(card, ZoneGraveyard, ZoneBattlefield)
		return 0, true

	case ActReturnFromExile:
		if param >= len(pl.Exile) {
			return 0, false
		}
		card := pl.Exile[param]
		e.MoveCard(card, ZoneExile, ZoneHand)
		return 0, true

	// --- Counters and tokens ---

	case ActAddCounter, ActRemoveCounter:
		perm := e.exposedPermanent(actor, param)
		if perm == nil {
			return 0, false
		}
		ct := ctx.CounterType
		if ct == "" {
			ct = CounterPlusOne
		}
		n := 1
		if t == ActRemoveCounter {
			if perm.Counters[ct] == 0 {
				return 0, false
			}
			n = -1
		}
		perm.AddCounter(ct, n)
		e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: actor,
			Type: log.EventCounterChange, Card: perm.Card.Name,
			Details: fmt.Sprintf("%s: %+d %s counter", perm.Card.Name, n, ct)})
		return 0, true

	case ActProliferate:
		for p := 0; p < 2; p++ {
			for _, perm := range g.Players[p].Battlefield {
				for ct, n := range perm.Counters {
					if n > 0 {
						perm.AddCounter(ct, 1)
						break
					}
				}
			}
		}
		return 0, true

	case ActCreateToken:
		if param >= len(tokenTable) {
			return 0, false
		}
		e.createToken(actor, tokenTable[param])
		return 0, true

	case ActCopyPermanent:
		src := g.FindInstance(ctx.TargetID)
		if src == nil || src.Zone != ZoneBattlefield {
			return 0, false
		}
		e.createToken(actor, src.Card)
		return 0, true

	case ActCopySpell, ActConspire:
		if ctx.StackIdx >= len(g.Stack) {
			return 0, false
		}
		e.copySpell(ctx.StackIdx, actor)
		return 0, true

	case ActPopulate:
		for _, perm := range pl.Battlefield {
			if perm.Card.Token && (ctx.TargetID == 0 || perm.ID == ctx.TargetID) {
				e.createToken(actor, perm.Card)
				return 0, true
			}
		}
		return 0, false

	// --- Responses ---

	case ActCounterSpell, ActCounterAbility, ActStifle:
		card := handCard(ctx.HandIdx)
		if card == nil || card.Card.Effect != "counter" && card.Card.Effect != "stifle" {
			return 0, false
		}
		si := ctx.TargetStackIdx
		if si >= len(g.Stack) {
			return 0, false
		}
		return 0, e.beginCast(actor, card, SpellContext{
			SourceZone: ZoneHand,
			Targets:    []TargetRef{{Kind: TargetStackItem, Index: si}},
		})

	case ActPreventDamage, ActRedirectDamage:
		card := handCard(ctx.HandIdx)
		if card == nil {
			return 0, false
		}
		return 0, e.castFromHand(actor, card)

	// --- Attachments ---

	case ActEquip:
		src := g.FindInstance(ctx.EquipID)
		if src == nil {
			return 0, false
		}
		targetID := ctx.TargetID
		if targetID == 0 && len(pl.Creatures()) > 0 {
			targetID = pl.Creatures()[0].ID
		}
		return 0, e.attach(actor, src, targetID, MechEquip)
	case ActFortify:
		src := g.FindInstance(ctx.FortID)
		if src == nil {
			return 0, false
		}
		targetID := ctx.TargetID
		if targetID == 0 && len(pl.Lands()) > 0 {
			targetID = pl.Lands()[0].ID
		}
		return 0, e.attach(actor, src, targetID, MechFortify)
	case ActReconfigure:
		src := g.FindInstance(ctx.CardID)
		if src == nil {
			return 0, false
		}
		if src.AttachedTo != 0 {
			cost := src.Card.MechanicCost(MechReconfigure)
			e.autoTap(actor, cost)
			if e.Mana.Pay(g, actor, cost) != nil {
				return 0, false
			}
			src.AttachedTo = 0
			return 0, true
		}
		targetID := ctx.TargetID
		if targetID == 0 && len(pl.Creatures()) > 0 {
			targetID = pl.Creatures()[0].ID
		}
		return 0, e.attach(actor, src, targetID, MechReconfigure)

	// --- Named mechanics ---

	case ActMechanic:
		return e.handleMechanic(actor, mechanicActions[param], ctx)

	case ActGrandeur:
		card := handCard(ctx.HandIdx)
		if card == nil || !card.Card.HasMechanic(MechGrandeur) {
			return 0, false
		}
		e.discardCard(actor, card)
		g.TriggerQueue = append(g.TriggerQueue, QueuedTrigger{
			Source: card, Controller: actor, Effect: card.Card.Effect,
			Amount: card.Card.Amount, Desc: card.Card.Name + " (grandeur)",
		})
		return 0, true

	case ActClash:
		return 0, e.handleClash(actor, ctx)
	}

	return 0, false
}

// handlePass routes PASS_PRIORITY through whichever sub-protocol is open.
func (e *Env) handlePass(actor int) bool {
	g := e.Game

	if g.Targeting != nil {
		if g.Targeting.Controller != actor || !g.Targeting.complete() {
			return false
		}
		e.finalizeTargeting()
		return true
	}
	if g.Choice != nil && g.Choice.Kind == ChoiceModes {
		if g.Choice.Controller != actor || len(g.Choice.Selected) < g.Choice.MinModes {
			return false
		}
		e.finalizeModes()
		return true
	}
	if ps := g.Pending; ps != nil && ps.Controller == actor {
		switch {
		case ps.NeedsSpree:
			if len(ps.Ctx.SpreeModes) == 0 {
				return false
			}
			ps.NeedsSpree = false
			e.continuePending()
			return true
		case ps.NeedsEscalate:
			ps.NeedsEscalate = false
			e.continuePending()
			return true
		case ps.NeedsOffspring:
			ps.NeedsOffspring = false
			e.continuePending()
			return true
		}
	}

	// Stuck-state guard: a pass with no defined priority holder hands
	// priority back to the active player.
	if g.Priority < 0 && g.Phase.Interactive() {
		e.assignPriority(g.ActivePlayer)
		return true
	}

	e.passPriority(actor)
	return true
}

// handleAltCast resolves the source zone and begins an alternative cast.
func (e *Env) handleAltCast(actor int, mech Mechanic, ctx ActionContext) bool {
	g := e.Game
	pl := g.Players[actor]
	src := altSourceZone(mech)
	var card *CardInstance
	switch src {
	case ZoneGraveyard:
		if ctx.GyIdx < len(pl.Graveyard) && pl.Graveyard[ctx.GyIdx].Card.HasMechanic(mech) {
			card = pl.Graveyard[ctx.GyIdx]
		} else {
			for _, c := range pl.Graveyard {
				if c.Card.HasMechanic(mech) {
					card = c
					break
				}
			}
		}
	case ZoneExile:
		if ctx.ExileIdx < len(pl.Exile) {
			card = pl.Exile[ctx.ExileIdx]
		}
	default:
		if ctx.HandIdx < len(pl.Hand) && pl.Hand[ctx.HandIdx].Card.HasMechanic(mech) {
			card = pl.Hand[ctx.HandIdx]
		} else {
			for _, c := range pl.Hand {
				if c.Card.HasMechanic(mech) {
					card = c
					break
				}
			}
		}
	}
	if card == nil {
		return false
	}

	// Jump-start's additional discard.
	if mech == MechJumpStart {
		if len(pl.Hand) == 0 {
			return false
		}
		di := ctx.DiscardIdx
		if di >= len(pl.Hand) {
			di = 0
		}
		e.discardCard(actor, pl.Hand[di])
	}
	if mech == MechSuspend {
		// Suspend exiles the card with time counters instead of casting.
		cost := card.Card.MechanicCost(MechSuspend)
		e.autoTap(actor, cost)
		if e.Mana.Pay(e.Game, actor, cost) != nil {
			return false
		}
		pl.RemoveFromHand(card)
		card.Zone = ZoneExile
		card.ExiledWith = MechSuspend
		card.AddCounter(CounterTime, 3)
		pl.Exile = append(pl.Exile, card)
		return true
	}
	return e.castAlt(actor, card, mech, src)
}

// handleMechanic implements the 418-429 mechanic surface.
func (e *Env) handleMechanic(actor int, mech Mechanic, ctx ActionContext) (float64, bool) {
	g := e.Game
	pl := g.Players[actor]
	switch mech {
	case MechInvestigate:
		e.createToken(actor, tokenTable[3]) // Clue
		return 0, true
	case MechForetell:
		if ctx.HandIdx >= len(pl.Hand) {
			return 0, false
		}
		card := pl.Hand[ctx.HandIdx]
		if !card.Card.HasMechanic(MechForetell) {
			return 0, false
		}
		cost := ManaCost{Generic: 2}
		e.autoTap(actor, cost)
		if e.Mana.Pay(g, actor, cost) != nil {
			return 0, false
		}
		pl.RemoveFromHand(card)
		card.Zone = ZoneExile
		card.ExiledFaceDown = true
		card.ExiledWith = MechForetell
		pl.Exile = append(pl.Exile, card)
		return 0, true
	case MechAmass:
		for _, perm := range pl.Battlefield {
			if hasSubtype(perm.EffectiveCard(), "Army") {
				perm.AddCounter(CounterPlusOne, 1)
				return 0, true
			}
		}
		tok := e.createToken(actor, tokenTable[1]) // Zombie
		tok.Card.Subtypes = append(tok.Card.Subtypes, "Army")
		return 0, true
	case MechLearn:
		e.drawCard(actor)
		return 0, true
	case MechVenture:
		e.drawCard(actor) // venturing rewards abstracted to a draw
		return 0, true
	case MechExert:
		perm := g.FindInstance(ctx.AttackerID)
		if perm == nil || perm.Exerted || !g.Combat.isAttacking(perm.ID) {
			return 0, false
		}
		perm.Exerted = true
		perm.AddCounter(CounterPlusOne, 1)
		return 0, true
	case MechExplore:
		if len(pl.Library) == 0 {
			return 0, false
		}
		top := pl.Library[len(pl.Library)-1]
		if top.Card.Is(TypeLand) {
			pl.Library = pl.Library[:len(pl.Library)-1]
			top.Zone = ZoneHand
			pl.Hand = append(pl.Hand, top)
		} else if len(pl.Creatures()) > 0 {
			pl.Creatures()[0].AddCounter(CounterPlusOne, 1)
		}
		return 0, true
	case MechAdapt:
		for _, perm := range pl.Creatures() {
			if perm.Counters[CounterPlusOne] == 0 {
				perm.AddCounter(CounterPlusOne, 1)
				return 0, true
			}
		}
		return 0, false
	case MechMutate:
		if ctx.HandIdx >= len(pl.Hand) {
			return 0, false
		}
		return 0, e.castFromHand(actor, pl.Hand[ctx.HandIdx])
	case MechCycling:
		if ctx.HandIdx >= len(pl.Hand) {
			return 0, false
		}
		card := pl.Hand[ctx.HandIdx]
		if !card.Card.HasMechanic(MechCycling) {
			return 0, false
		}
		cost := card.Card.MechanicCost(MechCycling)
		e.autoTap(actor, cost)
		if e.Mana.Pay(g, actor, cost) != nil {
			return 0, false
		}
		e.discardCard(actor, card)
		e.drawCard(actor)
		return 0, true
	case MechGoad:
		perm := g.FindInstance(ctx.TargetID)
		if perm == nil || perm.Zone != ZoneBattlefield {
			return 0, false
		}
		perm.Goaded = true
		return 0, true
	case MechBoast:
		perm := g.FindInstance(ctx.TargetID)
		if perm == nil || perm.BoastUsed || !g.Combat.isAttacking(perm.ID) {
			return 0, false
		}
		perm.BoastUsed = true
		for i, ab := range e.Abilities.ActivatedAbilities(g, perm) {
			_ = ab
			return 0, e.activateAbility(actor, perm, i)
		}
		return 0, false
	}
	return 0, false
}

// searchLibrary fetches the first card matching the category, shuffles, and
// puts it in hand. Categories: basic land, creature, instant, sorcery,
// artifact.
func (e *Env) searchLibrary(actor, category int) bool {
	g := e.Game
	pl := g.Players[actor]
	want := []CardType{TypeLand, TypeCreature, TypeInstant, TypeSorcery, TypeArtifact}
	if category >= len(want) {
		return false
	}
	for i := len(pl.Library) - 1; i >= 0; i-- {
		c := pl.Library[i]
		if c.Card.Is(want[category]) && (category != 0 || hasSubtype(c.Card, "Basic")) {
			pl.Library = append(pl.Library[:i], pl.Library[i+1:]...)
			c.Zone = ZoneHand
			pl.Hand = append(pl.Hand, c)
			e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: actor,
				Type: log.EventSearch, Card: c.Card.Name,
				Details: fmt.Sprintf("P%d searches out %s", actor+1, c.Card.Name)})
			e.ShuffleLibraryDeterministic(actor)
			return true
		}
	}
	return false
}

// handleClash compares the mana values of both players' top cards; the acting
// player draws a card when its own is higher. Both cards stay where they are.
func (e *Env) handleClash(actor int, ctx ActionContext) bool {
	g := e.Game
	opp := g.Opponent(actor)
	var mine, theirs *CardInstance
	if n := len(g.Players[actor].Library); n > 0 {
		mine = g.Players[actor].Library[n-1]
	}
	if n := len(g.Players[opp].Library); n > 0 {
		theirs = g.Players[opp].Library[n-1]
	}
	myCMC, theirCMC := 0, 0
	if mine != nil {
		myCMC = mine.Card.ManaCost.CMC()
	}
	if theirs != nil {
		theirCMC = theirs.Card.ManaCost.CMC()
	}
	e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: actor,
		Type: log.EventScry, Details: fmt.Sprintf("clash: %d vs %d", myCMC, theirCMC)})
	if myCMC > theirCMC {
		e.drawCard(actor)
	}
	return true
}

// exposedPermanent maps an exposed target index (0-9) across both
// battlefields: own first, then opponent's.
func (e *Env) exposedPermanent(actor, idx int) *CardInstance {
	g := e.Game
	own := g.Players[actor].Battlefield
	if idx < len(own) {
		return own[idx]
	}
	idx -= len(own)
	opp := g.Players[g.Opponent(actor)].Battlefield
	if idx < len(opp) {
		return opp[idx]
	}
	return nil
}
