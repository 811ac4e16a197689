package game

import "fmt"

// Reason explains why a mask bit is set and what context Apply expects.
type Reason struct {
	Reason  string         `json:"reason"`
	Context map[string]any `json:"context,omitempty"`
}

// Mask is the 480-bit legality bitmap plus its parallel reason map.
type Mask struct {
	Bits    [NumActions]bool `json:"bits"`
	Reasons map[int]Reason   `json:"reasons"`
}

func newMask() *Mask {
	return &Mask{Reasons: map[int]Reason{}}
}

// set marks an index legal with a reason and context record.
func (m *Mask) set(idx int, reason string, ctx map[string]any) {
	if idx < 0 || idx >= NumActions {
		return
	}
	m.Bits[idx] = true
	m.Reasons[idx] = Reason{Reason: reason, Context: ctx}
}

// Any reports whether at least one bit is set.
func (m *Mask) Any() bool {
	for _, b := range m.Bits {
		if b {
			return true
		}
	}
	return false
}

// Legal reports a single bit.
func (m *Mask) Legal(idx int) bool {
	return idx >= 0 && idx < NumActions && m.Bits[idx]
}

// LegalIndices returns all set indices in order.
func (m *Mask) LegalIndices() []int {
	var out []int
	for i, b := range m.Bits {
		if b {
			out = append(out, i)
		}
	}
	return out
}

// GenerateMask computes the legality mask for a perspective player. It is a
// pure function of the observable state; Apply invalidates nothing because
// nothing is cached.
func (e *Env) GenerateMask(perspective int) *Mask {
	m := newMask()
	g := e.Game

	// Player sanity.
	if g.Players[0] == nil || g.Players[1] == nil {
		m.set(IdxConcede, "no opponent", nil)
		return m
	}

	if g.Over {
		m.set(IdxNoOp, "game over", nil)
		return m
	}

	// Mulligan phase.
	if g.Mulligan.Active {
		e.maskMulligan(m, perspective)
		e.ensureFallback(m)
		return m
	}

	// Choice sub-phases.
	if g.ActiveChoiceCount() > 0 {
		e.maskChoice(m, perspective)
		e.ensureFallback(m)
		return m
	}

	// Pending-spell cost questions.
	if g.Pending != nil {
		if g.Pending.Controller == perspective {
			e.maskPending(m)
		} else {
			m.set(IdxNoOp, "opponent finalising a spell", nil)
		}
		e.ensureFallback(m)
		return m
	}

	// Cleanup discard.
	if g.Phase == PhaseCleanup {
		if perspective == g.ActivePlayer && len(g.Players[perspective].Hand) > MaxHandSize {
			for i := 0; i < len(g.Players[perspective].Hand) && i < 10; i++ {
				m.set(IdxDiscardBase+i, "discard to hand size", map[string]any{"hand_idx": i})
			}
		} else {
			m.set(IdxNoOp, "cleanup", nil)
		}
		e.ensureFallback(m)
		return m
	}

	// Blocker declaration belongs to the defending player without priority.
	if g.Phase == PhaseDeclareBlockers && !g.Combat.BlockersDone {
		if perspective == g.Opponent(g.ActivePlayer) {
			e.maskBlockers(m, perspective)
		} else {
			m.set(IdxNoOp, "waiting for blockers", nil)
		}
		e.ensureFallback(m)
		return m
	}

	// Priority check. Mana abilities stay available without priority.
	if g.Priority != perspective {
		m.set(IdxNoOp, "no priority", nil)
		e.maskManaAbilities(m, perspective)
		e.ensureFallback(m)
		return m
	}

	// Priority holder.
	m.set(IdxPassPriority, "pass priority", nil)
	if g.SplitSecond {
		e.maskManaAbilities(m, perspective)
		e.ensureFallback(m)
		return m
	}

	e.maskManaAbilities(m, perspective)
	e.maskInstantSpeed(m, perspective)
	if e.sorcerySpeed(perspective) {
		e.maskSorcerySpeed(m, perspective)
	}
	e.maskCombat(m, perspective)
	e.maskPhaseAdvance(m, perspective)

	e.ensureFallback(m)
	return m
}

// ensureFallback adds CONCEDE iff no other action is legal.
func (e *Env) ensureFallback(m *Mask) {
	if !m.Any() {
		m.set(IdxConcede, "no legal actions", nil)
	}
}

// --- Sections ---

func (e *Env) maskMulligan(m *Mask, perspective int) {
	g := e.Game
	pl := g.Players[perspective]
	if pl.Bottoming > 0 {
		limit := len(pl.Hand)
		if limit > 4 {
			limit = 4
		}
		for i := 0; i < limit; i++ {
			m.set(IdxBottomCardBase+i, fmt.Sprintf("bottom %d more", pl.Bottoming),
				map[string]any{"hand_idx": i})
		}
		return
	}
	if pl.Deciding {
		if e.ToAct() != perspective {
			m.set(IdxNoOp, "waiting for opponent's mulligan decision", nil)
			return
		}
		m.set(IdxKeepHand, "keep hand", nil)
		if pl.MulliganCount < StartingHand {
			m.set(IdxMulligan, "mulligan", nil)
		}
		return
	}
	m.set(IdxNoOp, "waiting for opponent's mulligan", nil)
}

func (e *Env) maskChoice(m *Mask, perspective int) {
	g := e.Game
	switch {
	case g.Targeting != nil:
		tc := g.Targeting
		if tc.Controller != perspective {
			m.set(IdxNoOp, "opponent is targeting", nil)
			return
		}
		cands := e.Abilities.LegalTargets(g, tc.Spec, tc.Controller)
		for i, t := range cands {
			if i >= 10 {
				break
			}
			if len(tc.Selected) >= tc.Spec.Max {
				break
			}
			m.set(IdxSelectTargetBase+i, "select target "+t.String(),
				map[string]any{"target": t})
		}
		if tc.complete() {
			m.set(IdxPassPriority, "finalise targets", nil)
		}
	case g.Sacrifice != nil:
		sc := g.Sacrifice
		if sc.Controller != perspective {
			m.set(IdxNoOp, "opponent is sacrificing", nil)
			return
		}
		for i, perm := range e.sacrificeCandidates(sc) {
			if i >= 10 {
				break
			}
			m.set(IdxSacrificeBase+i, "sacrifice "+perm.Card.Name,
				map[string]any{"id": perm.ID})
		}
	case g.Choice != nil:
		cc := g.Choice
		if cc.Controller != perspective {
			m.set(IdxNoOp, "opponent is choosing", nil)
			return
		}
		switch cc.Kind {
		case ChoiceModes:
			card := e.pendingCard()
			n := 10
			if card != nil && len(card.Modes) < n {
				n = len(card.Modes)
			}
			for i := 0; i < n; i++ {
				chosen := false
				for _, s := range cc.Selected {
					if s == i {
						chosen = true
						break
					}
				}
				if !chosen && len(cc.Selected) < cc.MaxModes {
					m.set(IdxChooseModeBase+i, "choose mode", map[string]any{"mode": i})
				}
			}
			if len(cc.Selected) >= cc.MinModes {
				m.set(IdxPassPriority, "finalise modes", nil)
			}
		case ChoiceX:
			for x := 1; x <= 10; x++ {
				if e.canAffordSoon(perspective, ManaCost{Generic: x}) {
					m.set(IdxChooseXBase+x-1, fmt.Sprintf("X=%d", x), map[string]any{"x": x})
				}
			}
		case ChoiceColor:
			for c := 0; c < 5; c++ {
				m.set(IdxChooseColorBase+c, "choose "+Color(c).String(), map[string]any{"color": c})
			}
		case ChoiceScry:
			m.set(IdxPutOnTop, "keep on top", nil)
			m.set(IdxPutOnBottom, "put on bottom", nil)
		case ChoiceSurveil:
			m.set(IdxPutOnTop, "keep on top", nil)
			m.set(IdxPutToGraveyard, "put in graveyard", nil)
		}
	}
}

// pendingCard returns the card whose pending cast drives the open choice.
func (e *Env) pendingCard() *Card {
	if e.Game.Pending != nil {
		return e.Game.Pending.Card.Card
	}
	return nil
}

func (e *Env) maskPending(m *Mask) {
	g := e.Game
	ps := g.Pending
	card := ps.Card.Card
	switch {
	case ps.NeedsSpree:
		for i := range card.Modes {
			if i >= 2 {
				break
			}
			chosen := false
			for _, s := range ps.Ctx.SpreeModes {
				if s == i {
					chosen = true
					break
				}
			}
			if !chosen {
				// param = hand_idx*2 + mode_idx; the pending card's hand
				// position selects the row.
				hi := e.handIndexOf(ps.Controller, ps.Card)
				if hi >= 0 && hi < 8 {
					m.set(258+hi*2+i, "select spree mode", map[string]any{"mode": i})
				}
			}
		}
		if len(ps.Ctx.SpreeModes) > 0 {
			m.set(IdxPassPriority, "finalise spree modes", nil)
		}
	case ps.NeedsKicker:
		if e.canAffordSoon(ps.Controller, card.MechanicCost(MechKicker)) {
			m.set(IdxPayKicker, "pay kicker", nil)
		}
		m.set(IdxDontPayKicker, "decline kicker", nil)
	case ps.NeedsAdditional:
		if len(g.Players[ps.Controller].Creatures()) > 0 {
			m.set(IdxPayAdditional, "pay additional cost", nil)
		}
		m.set(IdxDontPayAdditional, "decline additional cost", nil)
	case ps.NeedsEscalate:
		if e.canAffordSoon(ps.Controller, card.MechanicCost(MechEscalate)) {
			m.set(IdxPayEscalate, "pay escalate", map[string]any{"num_extra_modes": 1})
		}
		m.set(IdxPassPriority, "no escalate", nil)
	case ps.NeedsOffspring:
		if e.canAffordSoon(ps.Controller, card.MechanicCost(MechOffspring)) {
			m.set(295, "pay offspring cost", nil)
		}
		m.set(IdxPassPriority, "decline offspring", nil)
	}
}

// handIndexOf returns a card's current hand index, or -1.
func (e *Env) handIndexOf(player int, card *CardInstance) int {
	for i, c := range e.Game.Players[player].Hand {
		if c.ID == card.ID {
			return i
		}
	}
	return -1
}

// maskManaAbilities emits land taps and other mana abilities; these do not
// use the stack and ignore priority and split second.
func (e *Env) maskManaAbilities(m *Mask, perspective int) {
	g := e.Game
	for i, perm := range g.Players[perspective].Battlefield {
		if i >= FieldIndexLimit {
			break
		}
		if perm.EffectiveCard().Is(TypeLand) && !perm.Tapped {
			m.set(IdxTapLandBase+i, "tap "+perm.Card.Name+" for mana",
				map[string]any{"battlefield_idx": i})
		}
		for ai, ab := range e.Abilities.ActivatedAbilities(g, perm) {
			if ai >= 3 || !ab.IsMana || perm.EffectiveCard().Is(TypeLand) {
				continue
			}
			if ab.TapCost && perm.Tapped {
				continue
			}
			m.set(IdxActivateBase+i*3+ai, "mana ability of "+perm.Card.Name,
				map[string]any{"battlefield_idx": i, "ability_idx": ai})
		}
	}
}

// maskInstantSpeed emits actions legal any time the player holds priority
// outside Untap/Cleanup.
func (e *Env) maskInstantSpeed(m *Mask, perspective int) {
	g := e.Game
	if g.Phase == PhaseUntap || g.Phase == PhaseCleanup {
		return
	}
	pl := g.Players[perspective]

	for i, card := range pl.Hand {
		if i >= HandIndexLimit {
			break
		}
		c := card.Card
		if c.Is(TypeInstant) && e.canAffordSoon(perspective, c.ManaCost) {
			m.set(IdxPlaySpellBase+i, "cast "+c.Name, map[string]any{"hand_idx": i})
			// Responses: counterspells target the stack explicitly.
			if c.Effect == "counter" && len(g.Stack) > 0 {
				top := g.topItem()
				if top.Kind == ItemSpell {
					m.set(IdxCounterSpell, "counter "+top.describe(),
						map[string]any{"hand_idx": i, "target_stack_idx": len(g.Stack) - 1})
				} else {
					m.set(431, "counter "+top.describe(),
						map[string]any{"hand_idx": i, "target_stack_idx": len(g.Stack) - 1})
				}
			}
			if c.Effect == "prevent_damage" {
				m.set(432, "prevent damage", map[string]any{"hand_idx": i})
			}
			if c.Effect == "redirect_damage" {
				m.set(433, "redirect damage", map[string]any{"hand_idx": i})
			}
			if c.Effect == "stifle" && len(g.Stack) > 0 && g.topItem().Kind != ItemSpell {
				m.set(434, "stifle "+g.topItem().describe(),
					map[string]any{"hand_idx": i, "target_stack_idx": len(g.Stack) - 1})
			}
		}
	}

	// Instant-speed alternative casts from the graveyard/exile.
	e.maskAltCasts(m, perspective, true)

	// Non-mana activated abilities.
	for i, perm := range pl.Battlefield {
		if i >= FieldIndexLimit {
			break
		}
		for ai, ab := range e.Abilities.ActivatedAbilities(g, perm) {
			if ai >= 3 || ab.IsMana || ab.Loyalty != 0 {
				continue
			}
			if ab.TapCost && perm.Tapped {
				continue
			}
			if !e.canAffordSoon(perspective, ab.Cost) {
				continue
			}
			m.set(IdxActivateBase+i*3+ai, "activate "+perm.Card.Name,
				map[string]any{"battlefield_idx": i, "ability_idx": ai})
		}
		// Lands with a non-mana activated ability expose the effect tap.
		if i < 12 && perm.EffectiveCard().Is(TypeLand) && !perm.Tapped {
			for ai, ab := range e.Abilities.ActivatedAbilities(g, perm) {
				if ai < 3 && !ab.IsMana && e.canAffordSoon(perspective, ab.Cost) {
					m.set(88+i, "activate "+perm.Card.Name,
						map[string]any{"battlefield_idx": i, "ability_idx": ai})
					break
				}
			}
		}
		// Morphs may be turned face up at instant speed.
		if perm.FaceDown && perm.Controller == perspective {
			cost := perm.Card.MechanicCost(MechMorph)
			if perm.Manifested {
				cost = perm.Card.ManaCost
			}
			if e.canAffordSoon(perspective, cost) {
				m.set(455, "turn "+perm.Card.Name+" face up", map[string]any{"battlefield_idx": i})
			}
		}
	}
}

// maskSorcerySpeed emits main-phase-only actions.
func (e *Env) maskSorcerySpeed(m *Mask, perspective int) {
	g := e.Game
	pl := g.Players[perspective]

	for i, card := range pl.Hand {
		c := card.Card
		if c.Is(TypeLand) && !pl.LandPlayed && i < 7 {
			m.set(IdxPlayLandBase+i, "play "+c.Name, map[string]any{"hand_idx": i})
		}
		if i >= HandIndexLimit {
			continue
		}
		if !c.Is(TypeLand) && !c.Is(TypeInstant) && e.canAffordSoon(perspective, c.ManaCost) {
			m.set(IdxPlaySpellBase+i, "cast "+c.Name, map[string]any{"hand_idx": i})
		}
		// MDFC backs and adventures.
		if len(c.Faces) > 0 {
			back := c.Faces[0]
			backIsLand := false
			for _, t := range back.Types {
				if t == TypeLand {
					backIsLand = true
				}
			}
			if backIsLand && !pl.LandPlayed {
				m.set(180+i, "play "+back.Name, map[string]any{"hand_idx": i})
			} else if !backIsLand && c.HasMechanic(MechAdventure) && e.canAffordSoon(perspective, back.ManaCost) {
				m.set(196+i, "cast adventure "+back.Name, map[string]any{"hand_idx": i})
			} else if !backIsLand && !c.HasMechanic(MechAdventure) && e.canAffordSoon(perspective, back.ManaCost) {
				m.set(188+i, "cast "+back.Name, map[string]any{"hand_idx": i})
			}
			// Split halves.
			if c.Effect != "" && back.Effect != "" && !c.HasMechanic(MechAdventure) {
				if e.canAffordSoon(perspective, c.ManaCost) {
					m.set(445, "cast left half", map[string]any{"hand_idx": i})
				}
				if e.canAffordSoon(perspective, back.ManaCost) {
					m.set(446, "cast right half", map[string]any{"hand_idx": i})
				}
			}
		}
		if c.HasMechanic(MechImpending) && e.canAffordSoon(perspective, c.MechanicCost(MechImpending)) {
			m.set(294, "cast for impending", map[string]any{"hand_idx": i})
		}
		if c.HasMechanic(MechCycling) && e.canAffordSoon(perspective, c.MechanicCost(MechCycling)) {
			m.set(427, "cycle "+c.Name, map[string]any{"hand_idx": i})
		}
		if c.HasMechanic(MechForetell) && e.canAffordSoon(perspective, ManaCost{Generic: 2}) {
			m.set(419, "foretell "+c.Name, map[string]any{"hand_idx": i})
		}
	}

	// Sorcery-speed alternative casts.
	e.maskAltCasts(m, perspective, false)

	// Cast foretold/suspended cards from exile.
	for i, card := range pl.Exile {
		if i >= ExileIndexLimit {
			break
		}
		if card.ExiledWith == MechForetell && e.canAffordSoon(perspective, card.Card.MechanicCost(MechForetell)) {
			m.set(230+i, "cast foretold "+card.Card.Name, map[string]any{"exile_idx": i})
		}
	}

	// Battlefield sorcery-speed surfaces.
	for i, perm := range pl.Battlefield {
		if i >= FieldIndexLimit {
			break
		}
		c := perm.EffectiveCard()
		if len(perm.Card.Faces) > 0 && !perm.Card.HasMechanic(MechAdventure) && !perm.FaceDown && !c.Is(TypeInstant) {
			m.set(IdxTransformBase+i, "transform "+perm.Card.Name, map[string]any{"battlefield_idx": i})
		}
		if i < 5 {
			if hasSubtype(c, "Room") && perm.DoorsUnlocked < 2 {
				m.set(248+i, "unlock door", map[string]any{"battlefield_idx": i})
			}
			if hasSubtype(c, "Class") && perm.Level < 3 && perm.Card.HasMechanic(MechLevelUp) &&
				e.canAffordSoon(perspective, perm.Card.MechanicCost(MechLevelUp)) {
				m.set(253+i, "level up "+perm.Card.Name, map[string]any{"battlefield_idx": i})
			}
		}
		// Loyalty abilities, sorcery speed, once per turn.
		if c.Is(TypePlaneswalker) && !perm.Exerted {
			for _, ab := range e.Abilities.ActivatedAbilities(g, perm) {
				idx := -1
				switch {
				case ab.Loyalty > 0:
					idx = 440
				case ab.Loyalty < 0 && ab.Effect == "ultimate":
					idx = 443
				case ab.Loyalty < 0:
					idx = 441
				case ab.Loyalty == 0:
					idx = 442
				}
				if ab.Loyalty < 0 && perm.Counters[CounterLoyalty] < -ab.Loyalty {
					continue
				}
				m.set(idx, "loyalty ability of "+perm.Card.Name,
					map[string]any{"battlefield_idx": i, "ability_idx": ab.Index})
			}
		}
		// Equipment and fortifications.
		if perm.Card.HasMechanic(MechEquip) && len(pl.Creatures()) > 0 &&
			e.canAffordSoon(perspective, perm.Card.MechanicCost(MechEquip)) {
			m.set(450, "equip "+perm.Card.Name, map[string]any{"equip_id": perm.ID})
		}
		if perm.Card.HasMechanic(MechFortify) && len(pl.Lands()) > 0 &&
			e.canAffordSoon(perspective, perm.Card.MechanicCost(MechFortify)) {
			m.set(453, "fortify "+perm.Card.Name, map[string]any{"fort_id": perm.ID})
		}
		if perm.Card.HasMechanic(MechReconfigure) &&
			e.canAffordSoon(perspective, perm.Card.MechanicCost(MechReconfigure)) {
			m.set(454, "reconfigure "+perm.Card.Name, map[string]any{"card_id": perm.ID})
		}
		if perm.Card.Effect == "flip" && !perm.Flipped {
			m.set(449, "flip "+perm.Card.Name, map[string]any{"bf_idx": i})
		}
	}

	// Dredge replaces a main-phase draw effect; offered when a dredge card
	// sits in the graveyard and the library can feed it.
	for gi, card := range pl.Graveyard {
		if card.Card.HasMechanic(MechDredge) && len(pl.Library) >= card.Card.MechanicCost(MechDredge).Generic {
			m.set(308, "dredge "+card.Card.Name, map[string]any{"gy_idx": gi})
			break
		}
	}

	// Grandeur: discard a copy of a legendary permanent you control.
	for hi, card := range pl.Hand {
		if !card.Card.HasMechanic(MechGrandeur) || hi >= HandIndexLimit {
			continue
		}
		for _, perm := range pl.Battlefield {
			if perm.Card.Name == card.Card.Name {
				m.set(460, "grandeur "+card.Card.Name, map[string]any{"hand_idx": hi})
				break
			}
		}
	}

	if len(pl.Hand) > 0 {
		// Clash is exposed whenever a clash card could be played; the
		// baseline pool gates it on the effect key.
		for hi, card := range pl.Hand {
			if card.Card.Effect == "clash" && hi < HandIndexLimit &&
				e.canAffordSoon(perspective, card.Card.ManaCost) {
				m.set(457, "clash", map[string]any{"hand_idx": hi})
				break
			}
		}
	}
}

// maskAltCasts emits alternative-cost casting actions from their source
// zones. instantOnly limits to instants; otherwise instants are skipped,
// since the instant-speed pass already emitted them.
func (e *Env) maskAltCasts(m *Mask, perspective int, instantOnly bool) {
	g := e.Game
	pl := g.Players[perspective]

	emit := func(idx int, card *CardInstance, mech Mechanic, where string, ctx map[string]any) {
		c := card.Card
		if instantOnly && !c.Is(TypeInstant) {
			return
		}
		if !instantOnly && c.Is(TypeInstant) {
			return // already emitted at instant speed
		}
		if !e.canAffordSoon(perspective, c.MechanicCost(mech)) && mech != MechDelve {
			return
		}
		m.set(idx, fmt.Sprintf("cast %s with %s from %s", c.Name, mech, where), ctx)
	}

	for gi, card := range pl.Graveyard {
		if gi >= GraveIndexLimit {
			break
		}
		ctx := map[string]any{"gy_idx": gi}
		for i, mech := range altCastMechanics2 {
			if card.Card.HasMechanic(mech) && altSourceZone(mech) == ZoneGraveyard {
				emit(398+i, card, mech, "graveyard", ctx)
			}
		}
		for i, mech := range altCastMechanics {
			if card.Card.HasMechanic(mech) && altSourceZone(mech) == ZoneGraveyard {
				emit(205+i, card, mech, "graveyard", ctx)
			}
		}
		if card.Card.HasMechanic(MechAftermath) && !instantOnly {
			m.set(448, "aftermath cast "+card.Card.Name, ctx)
		}
	}

	for hi, card := range pl.Hand {
		if hi >= HandIndexLimit {
			break
		}
		ctx := map[string]any{"hand_idx": hi}
		for i, mech := range altCastMechanics {
			if card.Card.HasMechanic(mech) && altSourceZone(mech) == ZoneHand {
				emit(205+i, card, mech, "hand", ctx)
			}
		}
		for i, mech := range altCastMechanics2 {
			if card.Card.HasMechanic(mech) && altSourceZone(mech) == ZoneHand {
				emit(398+i, card, mech, "hand", ctx)
			}
		}
	}
}

// maskCombat emits combat declaration and sub-step actions.
func (e *Env) maskCombat(m *Mask, perspective int) {
	g := e.Game
	switch g.Phase {
	case PhaseDeclareAttackers:
		if perspective != g.ActivePlayer || g.Combat.AttackersDone {
			return
		}
		pl := g.Players[perspective]
		for i, perm := range pl.Battlefield {
			if i >= FieldIndexLimit {
				break
			}
			if e.canAttack(perm) || g.Combat.isAttacking(perm.ID) {
				m.set(IdxAttackBase+i, "attack with "+perm.Card.Name,
					map[string]any{"battlefield_idx": i})
			}
		}
		if len(g.Combat.Attackers) > 0 {
			opp := g.Players[g.Opponent(perspective)]
			for i, pw := range opp.Planeswalkers() {
				if i >= 5 {
					break
				}
				m.set(IdxAttackPWBase+i, "attack "+pw.Card.Name, map[string]any{"pw_idx": i})
			}
			for i, b := range pl.Battles() {
				if i >= 5 {
					break
				}
				m.set(IdxAttackBattleBase+i, "attack "+b.Card.Name, map[string]any{"battle_idx": i})
			}
			// Exert the most recent attacker on commit.
			last := g.Combat.Attackers[len(g.Combat.Attackers)-1]
			if perm := g.FindInstance(last.AttackerID); perm != nil && perm.Card.HasMechanic(MechExert) && !perm.Exerted {
				m.set(423, "exert "+perm.Card.Name, map[string]any{"attacker_id": perm.ID})
			}
		}
		m.set(IdxDeclareAtkDone, "declare attackers done", nil)

	case PhaseDeclareBlockers:
		if !g.Combat.BlockersDone {
			return // handled by maskBlockers for the defender
		}
		if perspective != g.ActivePlayer {
			return
		}
		// Ninjutsu window: blockers are in, damage has not happened.
		for hi, card := range g.Players[perspective].Hand {
			if hi >= HandIndexLimit || !card.Card.HasMechanic(MechNinjutsu) {
				continue
			}
			if !e.canAffordSoon(perspective, card.Card.MechanicCost(MechNinjutsu)) {
				continue
			}
			for _, d := range g.Combat.Attackers {
				if len(g.Combat.blockersOf(d.AttackerID)) == 0 {
					m.set(IdxNinjutsu, "ninjutsu "+card.Card.Name,
						map[string]any{"hand_idx": hi, "attacker_id": d.AttackerID})
					break
				}
			}
		}

	case PhaseFirstStrikeDamage:
		if perspective == g.ActivePlayer && g.Combat.needsOrder() && !g.Combat.FirstStrikeDealt {
			m.set(IdxFirstStrikeOrder, "lock first-strike damage order", nil)
		}
	case PhaseCombatDamage:
		if perspective == g.ActivePlayer && g.Combat.needsOrder() && !g.Combat.DamageDealt {
			m.set(IdxAssignCombatDmg, "lock damage assignment order", nil)
		}
	}
}

// maskBlockers emits the defending player's declaration actions.
func (e *Env) maskBlockers(m *Mask, perspective int) {
	g := e.Game
	pl := g.Players[perspective]

	for i, perm := range pl.Battlefield {
		if i >= FieldIndexLimit {
			break
		}
		if g.Combat.isBlocking(perm.ID) {
			continue
		}
		for _, d := range g.Combat.Attackers {
			attacker := g.FindInstance(d.AttackerID)
			if attacker == nil {
				continue
			}
			if e.canBlock(perm, attacker) {
				m.set(IdxBlockBase+i, "block with "+perm.Card.Name,
					map[string]any{"battlefield_idx": i, "attacker_id": d.AttackerID})
				break
			}
		}
	}

	// Multi-block: add a blocker to the i-th declared attacker.
	for ai, d := range g.Combat.Attackers {
		if ai >= 10 {
			break
		}
		if len(g.Combat.blockersOf(d.AttackerID)) == 0 {
			continue
		}
		attacker := g.FindInstance(d.AttackerID)
		if attacker == nil {
			continue
		}
		for _, perm := range pl.Battlefield {
			if !g.Combat.isBlocking(perm.ID) && e.canBlock(perm, attacker) {
				m.set(383+ai, "add blocker to "+attacker.Card.Name,
					map[string]any{"attacker_id": d.AttackerID})
				break
			}
		}
	}

	// Battle defence and planeswalker protection.
	for _, d := range g.Combat.Attackers {
		if d.Target.Kind != TargetPermanent {
			continue
		}
		tgt := g.FindInstance(d.Target.ID)
		if tgt == nil {
			continue
		}
		attacker := g.FindInstance(d.AttackerID)
		if attacker == nil {
			continue
		}
		hasBlocker := false
		for _, perm := range pl.Battlefield {
			if !g.Combat.isBlocking(perm.ID) && e.canBlock(perm, attacker) {
				hasBlocker = true
				break
			}
		}
		if !hasBlocker {
			continue
		}
		if tgt.EffectiveCard().Is(TypeBattle) {
			m.set(204, "defend "+tgt.Card.Name,
				map[string]any{"battle_id": tgt.ID, "attacker_id": d.AttackerID})
		}
		if tgt.EffectiveCard().Is(TypePlaneswalker) && tgt.Controller == perspective {
			m.set(444, "protect "+tgt.Card.Name,
				map[string]any{"pw_id": tgt.ID, "attacker_id": d.AttackerID})
		}
	}

	m.set(IdxDeclareBlkDone, "declare blockers done", nil)
}

// maskPhaseAdvance emits the phase-advance shortcut actions for the active
// player with an empty stack.
func (e *Env) maskPhaseAdvance(m *Mask, perspective int) {
	g := e.Game
	if perspective != g.ActivePlayer || len(g.Stack) > 0 {
		return
	}
	switch g.Phase {
	case PhaseUpkeep:
		m.set(7, "end upkeep", nil)
	case PhaseDraw:
		m.set(2, "end draw step", nil)
	case PhaseMainPre, PhaseMainPost:
		m.set(3, "end main phase", nil)
		m.set(IdxEndTurn, "end turn", nil)
	case PhaseBeginCombat:
		m.set(8, "end begin combat", nil)
	case PhaseEndOfCombat:
		m.set(9, "end combat", nil)
	case PhaseEndStep:
		m.set(10, "end step", nil)
		m.set(IdxEndTurn, "end turn", nil)
	}
}

// canAffordSoon reports whether a cost is payable from the current pool
// plus one activation of each untapped mana source. Exact colour routing
// is left to payment time.
func (e *Env) canAffordSoon(player int, cost ManaCost) bool {
	g := e.Game
	pool := g.Players[player].Pool
	for _, perm := range g.Players[player].Battlefield {
		c := perm.EffectiveCard()
		if c.Is(TypeLand) && !perm.Tapped {
			col := ColorColorless
			if len(c.Produces) > 0 {
				col = c.Produces[0]
			}
			pool[col]++
		}
	}
	for c := 0; c < 6; c++ {
		if pool[c] < cost.Pips[c] {
			return false
		}
		pool[c] -= cost.Pips[c]
	}
	return pool.Total() >= cost.Generic
}
