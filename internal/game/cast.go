package game

import (
	"fmt"

	"github.com/lcrane/manacore/internal/log"
)

// Casting runs as a mask-driven pipeline: beginCast builds a PendingSpell,
// continuePending walks its unanswered cost questions in declaration order,
// and commitCast pays mana and pushes the spell. The card stays in its
// source zone until commit, so an aborted cast never needs rollback.

// sorcerySpeed reports whether the player may act at sorcery speed.
func (e *Env) sorcerySpeed(player int) bool {
	g := e.Game
	return player == g.ActivePlayer &&
		(g.Phase == PhaseMainPre || g.Phase == PhaseMainPost) &&
		len(g.Stack) == 0 && g.Priority == player
}

// playLand puts a land from hand onto the battlefield. One per turn.
func (e *Env) playLand(player int, card *CardInstance) bool {
	g := e.Game
	pl := g.Players[player]
	if pl.LandPlayed || !card.Card.Is(TypeLand) {
		return false
	}
	pl.RemoveFromHand(card)
	card.Zone = ZoneStack
	e.MoveCard(card, ZoneStack, ZoneBattlefield)
	pl.LandPlayed = true
	e.log(log.NewPlayLandEvent(g.Turn, g.Phase.String(), player, card.Card.Name))
	return true
}

// castCost returns the mana cost for the pending spell's casting mode.
func (ps *PendingSpell) castCost() ManaCost {
	card := ps.Card.Card
	cost := card.ManaCost
	switch {
	case ps.Ctx.AltCost != "":
		cost = card.MechanicCost(ps.Ctx.AltCost)
	case ps.Ctx.Half == 1 && len(card.Faces) > 0:
		cost = card.ManaCost
	case ps.Ctx.Half == 2 && len(card.Faces) > 0:
		cost = card.Faces[0].ManaCost
	case ps.Ctx.Half == 3 && len(card.Faces) > 0:
		c := card.ManaCost
		f := card.Faces[0].ManaCost
		for i := range c.Pips {
			c.Pips[i] += f.Pips[i]
		}
		c.Generic += f.Generic
		cost = c
	case ps.Ctx.Impending:
		cost = card.MechanicCost(MechImpending)
	}
	if ps.Ctx.Kicked {
		k := card.MechanicCost(MechKicker)
		for i := range cost.Pips {
			cost.Pips[i] += k.Pips[i]
		}
		cost.Generic += k.Generic
	}
	if ps.Ctx.Offspring {
		o := card.MechanicCost(MechOffspring)
		for i := range cost.Pips {
			cost.Pips[i] += o.Pips[i]
		}
		cost.Generic += o.Generic
	}
	if ps.Ctx.Escalated > 0 {
		esc := card.MechanicCost(MechEscalate)
		cost.Generic += esc.Generic * ps.Ctx.Escalated
		for i := range cost.Pips {
			cost.Pips[i] += esc.Pips[i] * ps.Ctx.Escalated
		}
	}
	return cost
}

// beginCast opens a pending-spell context for a card in a source zone.
func (e *Env) beginCast(player int, card *CardInstance, ctx SpellContext) bool {
	g := e.Game
	if g.Pending != nil || g.ActiveChoiceCount() > 0 {
		return false
	}
	c := card.Card
	ps := &PendingSpell{Card: card, Controller: player, Ctx: ctx}

	if ctx.AltCost == "" && ctx.Half == 0 {
		ps.NeedsSpree = c.HasMechanic(MechSpree)
		ps.NeedsKicker = c.HasMechanic(MechKicker)
		ps.NeedsEscalate = c.HasMechanic(MechEscalate)
		ps.NeedsOffspring = c.HasMechanic(MechOffspring)
	}
	ps.NeedsAdditional = c.Additional != ""
	ps.NeedsX = c.ManaCost.HasX
	ps.NeedsModes = !ps.NeedsSpree && len(c.Modes) > 0
	ps.NeedsTargets = c.Target != nil && c.Target.Min > 0 && len(ctx.Targets) == 0
	ps.NeedsColor = c.Effect == "choose_color"

	g.Pending = ps
	e.continuePending()
	return true
}

// continuePending advances the pending spell to its next unanswered
// question, or commits the cast when none remain. Mask-driven questions
// (kicker, additional, escalate, offspring, spree) leave no sub-context;
// the mask exposes their action indices while Pending is set.
func (e *Env) continuePending() {
	g := e.Game
	ps := g.Pending
	if ps == nil {
		return
	}
	switch {
	case ps.NeedsSpree, ps.NeedsKicker, ps.NeedsAdditional, ps.NeedsEscalate, ps.NeedsOffspring:
		return // answered through the mask
	case ps.NeedsModes:
		min, max := ps.Card.Card.MinModes, ps.Card.Card.MaxModes
		if max == 0 {
			max = 1
		}
		if min == 0 {
			min = 1
		}
		e.openModes(ps.Controller, min, max)
	case ps.NeedsX:
		e.openX(ps.Controller)
	case ps.NeedsColor:
		e.openColor(ps.Controller)
	case ps.NeedsTargets:
		e.openTargeting(ps.Controller, *ps.Card.Card.Target)
	default:
		e.commitCast()
	}
}

// abortPending cancels the cast, refunding any X already paid.
func (e *Env) abortPending(reason string) {
	g := e.Game
	ps := g.Pending
	if ps == nil {
		return
	}
	if ps.Ctx.X > 0 {
		e.Mana.Refund(g, ps.Controller, ManaCost{Generic: ps.Ctx.X})
	}
	g.Pending = nil
	e.log(log.NewFizzleEvent(g.Turn, g.Phase.String(), ps.Card.Card.Name+": "+reason))
}

// commitCast pays the cost and moves the spell onto the stack.
func (e *Env) commitCast() {
	g := e.Game
	ps := g.Pending
	cost := ps.castCost()

	// Delve exiles graveyard cards to shrink the generic portion.
	if ps.Ctx.AltCost == MechDelve {
		pl := g.Players[ps.Controller]
		for cost.Generic > 0 && len(pl.Graveyard) > 0 {
			top := pl.Graveyard[len(pl.Graveyard)-1]
			pl.Graveyard = pl.Graveyard[:len(pl.Graveyard)-1]
			top.Zone = ZoneExile
			pl.Exile = append(pl.Exile, top)
			cost.Generic--
		}
	}

	e.autoTap(ps.Controller, cost)
	if !e.Mana.CanPay(g, ps.Controller, cost) {
		e.abortPending("cost payment failed")
		e.postAction()
		return
	}
	if err := e.Mana.Pay(g, ps.Controller, cost); err != nil {
		e.abortPending(err.Error())
		e.postAction()
		return
	}

	card := ps.Card
	src := ps.Ctx.SourceZone
	pl := g.Players[card.Owner]
	switch src {
	case ZoneHand:
		pl.RemoveFromHand(card)
	case ZoneGraveyard:
		pl.Graveyard = removeFrom(pl.Graveyard, card)
	case ZoneExile:
		pl.Exile = removeFrom(pl.Exile, card)
	}
	card.Zone = ZoneStack

	how := string(ps.Ctx.AltCost)
	e.log(log.NewCastEvent(g.Turn, g.Phase.String(), ps.Controller, card.Card.Name, how))

	item := &StackItem{Kind: ItemSpell, Card: card, Controller: ps.Controller, Ctx: ps.Ctx}
	g.Pending = nil
	e.pushStack(item)
	e.queueCardTriggers(card, "cast")
	e.postAction()
}

// castFromHand begins a plain cast of a hand card at the right speed.
func (e *Env) castFromHand(player int, card *CardInstance) bool {
	c := card.Card
	if c.Is(TypeLand) {
		return false
	}
	if !c.Is(TypeInstant) && !e.sorcerySpeed(player) {
		return false
	}
	return e.beginCast(player, card, SpellContext{SourceZone: ZoneHand})
}

// castAlt begins an alternative-cost cast from the mechanic's source zone.
func (e *Env) castAlt(player int, card *CardInstance, mech Mechanic, src ZoneType) bool {
	if !card.Card.HasMechanic(mech) {
		return false
	}
	ctx := SpellContext{SourceZone: src, AltCost: mech}
	return e.beginCast(player, card, ctx)
}

// castHalf begins a split-card cast: 1 left, 2 right, 3 fused.
func (e *Env) castHalf(player int, card *CardInstance, half int) bool {
	if len(card.Card.Faces) == 0 {
		return false
	}
	return e.beginCast(player, card, SpellContext{SourceZone: ZoneHand, Half: half})
}

// altSourceZone maps a mechanic to the zone it casts from.
func altSourceZone(m Mechanic) ZoneType {
	switch m {
	case MechFlashback, MechJumpStart, MechEscape, MechAftermath, MechDisturb,
		MechUnearth, MechEmbalm, MechEternalize, MechEncore, MechMadness, MechDredge:
		return ZoneGraveyard
	case MechForetell, MechSuspend, MechImpending:
		return ZoneExile
	default:
		return ZoneHand
	}
}

// --- Activated abilities ---

// activateAbility pays an ability's costs and either resolves it (mana
// abilities bypass the stack) or pushes it.
func (e *Env) activateAbility(player int, perm *CardInstance, abilityIdx int) bool {
	g := e.Game
	abilities := e.Abilities.ActivatedAbilities(g, perm)
	if abilityIdx >= len(abilities) {
		return false
	}
	ab := abilities[abilityIdx]

	if ab.TapCost {
		if perm.Tapped {
			return false
		}
		if perm.EnteredThisTurn && perm.EffectiveCard().Is(TypeCreature) && !e.Abilities.HasKeyword(perm, KwHaste) {
			return false
		}
	}
	if ab.Loyalty != 0 || ab.Effect == "ultimate" {
		return e.activateLoyalty(player, perm, ab)
	}
	e.autoTap(player, ab.Cost)
	if !e.Mana.CanPay(g, player, ab.Cost) {
		return false
	}
	if err := e.Mana.Pay(g, player, ab.Cost); err != nil {
		return false
	}
	if ab.TapCost {
		perm.Tapped = true
	}

	if ab.IsMana {
		g.Players[player].Pool[ab.Produces]++
		e.log(log.NewManaAddedEvent(g.Turn, g.Phase.String(), player, "{"+ab.Produces.String()+"}"))
		return true
	}

	e.log(log.NewActivateEvent(g.Turn, g.Phase.String(), player, perm.Card.Name))
	e.pushStack(&StackItem{Kind: ItemAbility, Card: perm, Controller: player, AbilityIdx: abilityIdx})
	return true
}

// activateLoyalty handles planeswalker loyalty abilities: one per turn per
// walker, cost paid in loyalty counters.
func (e *Env) activateLoyalty(player int, perm *CardInstance, ab AbilitySpec) bool {
	g := e.Game
	if perm.Exerted { // reused as the once-per-turn loyalty marker
		return false
	}
	if ab.Loyalty < 0 && perm.Counters[CounterLoyalty] < -ab.Loyalty {
		return false
	}
	perm.AddCounter(CounterLoyalty, ab.Loyalty)
	perm.Exerted = true
	e.log(log.NewActivateEvent(g.Turn, g.Phase.String(), player, perm.Card.Name))
	e.pushStack(&StackItem{Kind: ItemAbility, Card: perm, Controller: player, AbilityIdx: ab.Index})
	return true
}

// tapForMana taps a land for its first produced colour.
func (e *Env) tapForMana(player int, land *CardInstance) bool {
	g := e.Game
	c := land.EffectiveCard()
	if !c.Is(TypeLand) || land.Tapped {
		return false
	}
	land.Tapped = true
	col := ColorColorless
	if len(c.Produces) > 0 {
		col = c.Produces[0]
	}
	g.Players[player].Pool[col]++
	e.log(log.NewManaAddedEvent(g.Turn, g.Phase.String(), player, "{"+col.String()+"}"))
	return true
}

// turnFaceUp pays a morph/manifest cost and flips the permanent face up.
func (e *Env) turnFaceUp(player int, perm *CardInstance) bool {
	g := e.Game
	if !perm.FaceDown {
		return false
	}
	var cost ManaCost
	if perm.Manifested {
		cost = perm.Card.ManaCost
		if !perm.Card.Is(TypeCreature) {
			return false
		}
	} else {
		cost = perm.Card.MechanicCost(MechMorph)
	}
	e.autoTap(player, cost)
	if !e.Mana.CanPay(g, player, cost) {
		return false
	}
	if err := e.Mana.Pay(g, player, cost); err != nil {
		return false
	}
	perm.FaceDown = false
	perm.Manifested = false
	e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: player,
		Type: log.EventTransform, Card: perm.Card.Name,
		Details: fmt.Sprintf("%s is turned face up", perm.Card.Name)})
	e.queueCardTriggers(perm, "turned_face_up")
	return true
}

// attach pays an attach-style cost (equip/fortify/reconfigure) and moves the
// attachment. Sorcery speed only.
func (e *Env) attach(player int, source *CardInstance, targetID int, mech Mechanic) bool {
	g := e.Game
	if !e.sorcerySpeed(player) {
		return false
	}
	target := g.FindInstance(targetID)
	if target == nil || target.Zone != ZoneBattlefield || target.Controller != player {
		return false
	}
	cost := source.Card.MechanicCost(mech)
	e.autoTap(player, cost)
	if !e.Mana.CanPay(g, player, cost) {
		return false
	}
	if err := e.Mana.Pay(g, player, cost); err != nil {
		return false
	}
	source.AttachedTo = target.ID
	e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: player,
		Type: log.EventActivate, Card: source.Card.Name,
		Details: fmt.Sprintf("%s attached to %s", source.Card.Name, target.Card.Name)})
	return true
}
