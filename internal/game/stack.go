package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lcrane/manacore/internal/log"
)

// StackItemKind tags the variant of a stack item.
type StackItemKind int

const (
	ItemSpell StackItemKind = iota
	ItemAbility
	ItemTrigger
)

func (k StackItemKind) String() string {
	switch k {
	case ItemSpell:
		return "Spell"
	case ItemAbility:
		return "Ability"
	default:
		return "Trigger"
	}
}

// SpellContext carries every decision attached to a stack item. One typed
// struct instead of a free-form map so the dispatcher cannot be handed a
// syntactically invalid context.
type SpellContext struct {
	Targets    []TargetRef `json:"targets,omitempty"`
	Modes      []int       `json:"modes,omitempty"`
	X          int         `json:"x,omitempty"`
	Sacrificed []int       `json:"sacrificed,omitempty"` // instance IDs paid as costs
	Kicked     bool        `json:"kicked,omitempty"`
	Escalated  int         `json:"escalated,omitempty"`
	Offspring  bool        `json:"offspring,omitempty"`
	Impending  bool        `json:"impending,omitempty"`
	IsCopy     bool        `json:"is_copy,omitempty"`
	NeedsNewTargets bool   `json:"needs_new_targets,omitempty"`
	AltCost    Mechanic    `json:"alt_cost,omitempty"`
	SourceZone ZoneType    `json:"source_zone"`
	SpreeModes []int       `json:"spree_modes,omitempty"`
	Half       int         `json:"half,omitempty"` // split cards: 0 none, 1 left, 2 right, 3 fused
	Fortifying bool        `json:"fortifying,omitempty"`
	AttachTo   int         `json:"attach_to,omitempty"` // bestow/equip resolution target
	ConspiredWith []int    `json:"conspired_with,omitempty"`
}

// StackItem is one object on the stack.
type StackItem struct {
	UUID       uuid.UUID     `json:"uuid"`
	Kind       StackItemKind `json:"kind"`
	Card       *CardInstance `json:"card,omitempty"`   // spell card, or ability/trigger source
	Controller int           `json:"controller"`
	AbilityIdx int           `json:"ability_idx,omitempty"`
	TriggerID  string        `json:"trigger_id,omitempty"` // effect key for triggers
	Amount     int           `json:"amount,omitempty"`     // trigger payload
	Ctx        SpellContext  `json:"ctx"`
}

func (it *StackItem) describe() string {
	switch it.Kind {
	case ItemSpell:
		return it.Card.Card.Name
	case ItemAbility:
		return fmt.Sprintf("%s ability #%d", it.Card, it.AbilityIdx)
	default:
		return fmt.Sprintf("%s trigger (%s)", it.Card, it.TriggerID)
	}
}

// sourceCard returns the card whose text governs this item.
func (it *StackItem) sourceCard() *Card {
	if it.Card == nil {
		return nil
	}
	return it.Card.Card
}

// effectKey returns the effect key and amount the AbilityHandler resolves.
func (it *StackItem) effectKey() (string, int) {
	switch it.Kind {
	case ItemTrigger:
		return it.TriggerID, it.Amount
	case ItemAbility:
		card := it.sourceCard()
		if card == nil || it.AbilityIdx >= len(card.Abilities) {
			return "", 0
		}
		ab := card.Abilities[it.AbilityIdx]
		return ab.Effect, ab.Amount
	default:
		card := it.sourceCard()
		if card == nil {
			return "", 0
		}
		amount := card.Amount
		if card.ManaCost.HasX {
			amount = it.Ctx.X
		}
		if it.Ctx.Kicked {
			amount += card.Amount // kicker doubles the base payload
		}
		if it.Ctx.Half == 2 && len(card.Faces) > 0 {
			return card.Faces[0].Effect, card.Faces[0].Amount
		}
		return card.Effect, amount
	}
}

// hasSplitSecond reports whether the item locks down the stack.
func (e *Env) hasSplitSecond(it *StackItem) bool {
	return it.Kind == ItemSpell && it.Card != nil && e.Abilities.HasKeyword(it.Card, KwSplitSecond)
}

// pushStack appends an item to the top of the stack, reassigns priority to
// the active player, and resets the pass counter.
func (e *Env) pushStack(it *StackItem) {
	g := e.Game
	if it.UUID == (uuid.UUID{}) {
		it.UUID = uuid.New()
	}
	g.Stack = append(g.Stack, it)
	if e.hasSplitSecond(it) {
		g.SplitSecond = true
	}
	e.log(log.NewStackPushEvent(g.Turn, g.Phase.String(), it.Controller, it.describe()))
	g.Priority = g.ActivePlayer
	g.PassCount = 0
	e.log(log.NewPriorityEvent(g.Turn, g.Phase.String(), g.Priority))
}

// topItem returns the top of the stack, or nil.
func (g *Game) topItem() *StackItem {
	if len(g.Stack) == 0 {
		return nil
	}
	return g.Stack[len(g.Stack)-1]
}

// recomputeSplitSecond rescans the stack for split-second items.
func (e *Env) recomputeSplitSecond() {
	g := e.Game
	g.SplitSecond = false
	for _, it := range g.Stack {
		if e.hasSplitSecond(it) {
			g.SplitSecond = true
			return
		}
	}
}

// resolveTop pops and resolves the top stack item.
func (e *Env) resolveTop() {
	g := e.Game
	it := g.topItem()
	if it == nil {
		return
	}
	g.Stack = g.Stack[:len(g.Stack)-1]
	e.recomputeSplitSecond()

	e.log(log.NewStackResolveEvent(g.Turn, g.Phase.String(), it.Controller, it.describe()))

	if it.Kind == ItemSpell && !e.targetsStillLegal(it) {
		// All targets gone: the spell does nothing (ResolutionFailed).
		e.log(log.NewFizzleEvent(g.Turn, g.Phase.String(), it.describe()))
		e.spellAftermath(it, true)
	} else {
		switch it.Kind {
		case ItemSpell:
			e.resolveSpell(it)
		default:
			if err := e.Abilities.ResolveItem(e, it); err != nil {
				e.log(log.NewFizzleEvent(g.Turn, g.Phase.String(), it.describe()+": "+err.Error()))
			}
		}
	}

	// After each resolution priority returns to the active player.
	if !g.Over {
		g.Priority = g.ActivePlayer
		g.PassCount = 0
		e.log(log.NewPriorityEvent(g.Turn, g.Phase.String(), g.Priority))
	}
}

// targetsStillLegal reports whether at least one chosen target remains valid.
func (e *Env) targetsStillLegal(it *StackItem) bool {
	if len(it.Ctx.Targets) == 0 {
		return true
	}
	g := e.Game
	for _, t := range it.Ctx.Targets {
		switch t.Kind {
		case TargetPlayer:
			return true
		case TargetStackItem:
			if t.Index < len(g.Stack) {
				return true
			}
		case TargetPermanent:
			if c := g.FindInstance(t.ID); c != nil && c.Zone == ZoneBattlefield {
				return true
			}
		case TargetGraveyardCard:
			if c := g.FindInstance(t.ID); c != nil && c.Zone == ZoneGraveyard {
				return true
			}
		}
	}
	return false
}

// resolveSpell moves a resolving spell to its destination zone and applies
// its effect.
func (e *Env) resolveSpell(it *StackItem) {
	g := e.Game
	card := it.Card

	if it.Ctx.IsCopy {
		// Copies exist only on the stack: permanents become tokens, others
		// simply apply their effect and cease.
		if card.Card.IsPermanentType() {
			e.createToken(it.Controller, card.Card)
		} else {
			_ = e.Abilities.ResolveItem(e, it)
		}
		return
	}

	if card.Card.IsPermanentType() && it.Ctx.Half == 0 {
		card.Controller = it.Controller
		if it.Ctx.Impending {
			card.AddCounter(CounterTime, 4)
		}
		e.MoveCard(card, ZoneStack, ZoneBattlefield)
		if it.Ctx.AttachTo != 0 {
			card.AttachedTo = it.Ctx.AttachTo
		}
		if it.Ctx.Offspring {
			e.createToken(it.Controller, card.Card)
		}
		if it.Ctx.X > 0 {
			card.AddCounter(CounterPlusOne, it.Ctx.X)
		}
		if it.Ctx.Kicked && card.Card.Amount > 0 {
			card.AddCounter(CounterPlusOne, card.Card.Amount)
		}
		return
	}

	// Non-permanent: apply effect, then send to the post-resolution zone.
	if err := e.Abilities.ResolveItem(e, it); err != nil {
		e.log(log.NewFizzleEvent(g.Turn, g.Phase.String(), it.describe()+": "+err.Error()))
	}
	e.spellAftermath(it, false)
}

// spellAftermath sends a resolved or fizzled non-permanent spell to the zone
// its casting mode dictates.
func (e *Env) spellAftermath(it *StackItem, fizzled bool) {
	card := it.Card
	if card == nil || it.Ctx.IsCopy {
		return
	}
	if fizzled && card.Card.IsPermanentType() {
		e.MoveCard(card, ZoneStack, ZoneGraveyard)
		return
	}
	switch it.Ctx.AltCost {
	case MechFlashback, MechJumpStart, MechEscape, MechEmbalm, MechEternalize,
		MechEvoke, MechEncore, MechAftermath:
		// Exile replaces the default graveyard destination.
		e.MoveCard(card, ZoneStack, ZoneExile)
	default:
		if it.Ctx.Half == 1 && card.Card.HasMechanic(MechAftermath) {
			// Front half of an aftermath card stays castable from the yard.
			e.MoveCard(card, ZoneStack, ZoneGraveyard)
			return
		}
		e.MoveCard(card, ZoneStack, ZoneGraveyard)
	}
}

// counterStackIndex counters the stack item at the given index.
func (e *Env) counterStackIndex(idx int) {
	g := e.Game
	if idx < 0 || idx >= len(g.Stack) {
		return
	}
	it := g.Stack[idx]
	g.Stack = append(g.Stack[:idx], g.Stack[idx+1:]...)
	e.recomputeSplitSecond()
	e.log(log.NewCounteredEvent(g.Turn, g.Phase.String(), it.Controller, it.describe()))
	if it.Kind == ItemSpell && !it.Ctx.IsCopy {
		e.MoveCard(it.Card, ZoneStack, ZoneGraveyard)
	}
}

// copySpell pushes a copy of the stack item at idx; targets may be re-chosen
// on resolution.
func (e *Env) copySpell(idx int, controller int) {
	g := e.Game
	if idx < 0 || idx >= len(g.Stack) {
		return
	}
	src := g.Stack[idx]
	cp := *src
	cp.UUID = uuid.New()
	cp.Controller = controller
	cp.Ctx.IsCopy = true
	cp.Ctx.NeedsNewTargets = true
	e.pushStack(&cp)
}

// QueuedTrigger is a triggered ability waiting to be put onto the stack.
type QueuedTrigger struct {
	Source     *CardInstance `json:"source"`
	Controller int           `json:"controller"`
	Effect     string        `json:"effect"`
	Amount     int           `json:"amount"`
	Desc       string        `json:"desc"`
}
