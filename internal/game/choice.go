package game

import (
	"fmt"

	"github.com/lcrane/manacore/internal/log"
)

// Exactly one choice context may be active at a time (data-model invariant
// 1); the Phase mirrors which one.

// TargetingContext collects targets for the item at the top of the stack or
// for a pending spell.
type TargetingContext struct {
	Controller int         `json:"controller"`
	Spec       TargetSpec  `json:"spec"`
	Selected   []TargetRef `json:"selected"`
	// Candidates are resolved at open time and refreshed by the mask.
	Candidates []TargetRef `json:"candidates"`
}

// SacrificeContext collects sacrifices demanded by a cost or resolution.
type SacrificeContext struct {
	Controller    int    `json:"controller"`
	RequiredType  CardType `json:"required_type"`
	RequiredCount int    `json:"required_count"`
	Selected      []int  `json:"selected"` // instance IDs
}

// ChoiceKind discriminates the ChoiceContext subtypes.
type ChoiceKind int

const (
	ChoiceModes ChoiceKind = iota
	ChoiceX
	ChoiceColor
	ChoiceScry
	ChoiceSurveil
)

// ChoiceContext covers modal, X, colour and scry/surveil decisions.
type ChoiceContext struct {
	Kind       ChoiceKind `json:"kind"`
	Controller int        `json:"controller"`

	// Modal
	MinModes int   `json:"min_modes,omitempty"`
	MaxModes int   `json:"max_modes,omitempty"`
	Selected []int `json:"selected,omitempty"`

	// Scry/surveil: cards revealed off the top, processed one at a time.
	Revealed []*CardInstance `json:"revealed,omitempty"`
	KeepTop  []*CardInstance `json:"keep_top,omitempty"`
	Bottom   []*CardInstance `json:"bottom,omitempty"`
}

// PendingSpell holds a spell whose cost decisions are not yet finalised.
// It enters the stack only once every optional-cost question is answered
// (declaration order, per the Spree/Kicker open question).
type PendingSpell struct {
	Card       *CardInstance `json:"card"`
	Controller int           `json:"controller"`
	Ctx        SpellContext  `json:"ctx"`

	// Unanswered optional-cost questions, in declaration order.
	NeedsKicker     bool `json:"needs_kicker,omitempty"`
	NeedsAdditional bool `json:"needs_additional,omitempty"`
	NeedsEscalate   bool `json:"needs_escalate,omitempty"`
	NeedsSpree      bool `json:"needs_spree,omitempty"`
	NeedsX          bool `json:"needs_x,omitempty"`
	NeedsModes      bool `json:"needs_modes,omitempty"`
	NeedsTargets    bool `json:"needs_targets,omitempty"`
	NeedsColor      bool `json:"needs_color,omitempty"`
	NeedsOffspring  bool `json:"needs_offspring,omitempty"`
}

// openTargeting starts the targeting sub-phase for a pending spell.
func (e *Env) openTargeting(controller int, spec TargetSpec) {
	g := e.Game
	g.Targeting = &TargetingContext{
		Controller: controller,
		Spec:       spec,
		Candidates: e.Abilities.LegalTargets(g, spec, controller),
	}
	g.EnterChoicePhase(PhaseTargeting)
}

// complete reports whether the selection can be finalised.
func (tc *TargetingContext) complete() bool {
	return len(tc.Selected) >= tc.Spec.Min && len(tc.Selected) <= tc.Spec.Max
}

// finalizeTargeting writes targets into the pending spell and continues the
// cast, or into the top stack item when retargeting a copy.
func (e *Env) finalizeTargeting() {
	g := e.Game
	tc := g.Targeting
	g.Targeting = nil
	g.LeaveChoicePhase()
	if g.Pending != nil {
		g.Pending.Ctx.Targets = tc.Selected
		g.Pending.NeedsTargets = false
		e.continuePending()
		return
	}
	if top := g.topItem(); top != nil && top.Ctx.NeedsNewTargets {
		top.Ctx.Targets = tc.Selected
		top.Ctx.NeedsNewTargets = false
	}
	e.postAction()
}

// openSacrifice starts the sacrifice sub-phase.
func (e *Env) openSacrifice(controller int, required CardType, count int) {
	g := e.Game
	g.Sacrifice = &SacrificeContext{
		Controller:    controller,
		RequiredType:  required,
		RequiredCount: count,
	}
	g.EnterChoicePhase(PhaseSacrifice)
}

// sacrificeCandidates lists currently legal sacrifices.
func (e *Env) sacrificeCandidates(sc *SacrificeContext) []*CardInstance {
	var out []*CardInstance
	for _, perm := range e.Game.Players[sc.Controller].Battlefield {
		if sc.RequiredType >= 0 && !perm.EffectiveCard().Is(sc.RequiredType) {
			continue
		}
		already := false
		for _, id := range sc.Selected {
			if id == perm.ID {
				already = true
				break
			}
		}
		if !already {
			out = append(out, perm)
		}
	}
	return out
}

// finalizeSacrifice performs the selected sacrifices and continues.
func (e *Env) finalizeSacrifice() {
	g := e.Game
	sc := g.Sacrifice
	g.Sacrifice = nil
	g.LeaveChoicePhase()
	for _, id := range sc.Selected {
		if perm := g.FindInstance(id); perm != nil && perm.Zone == ZoneBattlefield {
			e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: sc.Controller,
				Type: log.EventSacrifice, Card: perm.Card.Name,
				Details: fmt.Sprintf("P%d sacrifices %s", sc.Controller+1, perm.Card.Name)})
			e.MoveCard(perm, ZoneBattlefield, ZoneGraveyard)
		}
	}
	if g.Pending != nil {
		g.Pending.Ctx.Sacrificed = sc.Selected
		g.Pending.NeedsAdditional = false
		e.continuePending()
		return
	}
	e.postAction()
}

// openModes starts a modal choice for the pending spell.
func (e *Env) openModes(controller, min, max int) {
	g := e.Game
	g.Choice = &ChoiceContext{Kind: ChoiceModes, Controller: controller, MinModes: min, MaxModes: max}
	g.EnterChoicePhase(PhaseChoose)
}

// openX starts an X-value choice for the pending spell.
func (e *Env) openX(controller int) {
	g := e.Game
	g.Choice = &ChoiceContext{Kind: ChoiceX, Controller: controller}
	g.EnterChoicePhase(PhaseChoose)
}

// openColor starts a colour choice.
func (e *Env) openColor(controller int) {
	g := e.Game
	g.Choice = &ChoiceContext{Kind: ChoiceColor, Controller: controller}
	g.EnterChoicePhase(PhaseChoose)
}

// openScry reveals the top n cards for scry (or surveil) processing, one
// card at a time.
func (e *Env) openScry(controller, n int, surveil bool) {
	g := e.Game
	pl := g.Players[controller]
	var revealed []*CardInstance
	for i := 0; i < n && len(pl.Library) > 0; i++ {
		top := pl.Library[len(pl.Library)-1]
		pl.Library = pl.Library[:len(pl.Library)-1]
		revealed = append(revealed, top)
	}
	if len(revealed) == 0 {
		return
	}
	kind := ChoiceScry
	ev := log.NewScryEvent(g.Turn, g.Phase.String(), controller, fmt.Sprintf("P%d scries %d", controller+1, len(revealed)))
	if surveil {
		kind = ChoiceSurveil
		ev.Type = log.EventSurveil
		ev.Details = fmt.Sprintf("P%d surveils %d", controller+1, len(revealed))
	}
	e.log(ev)
	g.Choice = &ChoiceContext{Kind: kind, Controller: controller, Revealed: revealed}
	g.EnterChoicePhase(PhaseChoose)
}

// scryStep processes the current revealed card. dest: 0 top, 1 bottom,
// 2 graveyard. Completes the context when the last card is placed.
func (e *Env) scryStep(dest int) bool {
	g := e.Game
	cc := g.Choice
	if cc == nil || len(cc.Revealed) == 0 {
		return false
	}
	card := cc.Revealed[0]
	cc.Revealed = cc.Revealed[1:]
	switch dest {
	case 0:
		cc.KeepTop = append(cc.KeepTop, card)
	case 1:
		cc.Bottom = append(cc.Bottom, card)
	case 2:
		card.Zone = ZoneGraveyard
		g.Players[cc.Controller].Graveyard = append(g.Players[cc.Controller].Graveyard, card)
	}
	if len(cc.Revealed) == 0 {
		e.finishScry()
	}
	return true
}

// finishScry re-layers kept cards on top (first-kept ends up on top) and
// appends bottomed cards in selection order.
func (e *Env) finishScry() {
	g := e.Game
	cc := g.Choice
	pl := g.Players[cc.Controller]
	for i := len(cc.KeepTop) - 1; i >= 0; i-- {
		cc.KeepTop[i].Zone = ZoneLibrary
		pl.Library = append(pl.Library, cc.KeepTop[i])
	}
	for _, c := range cc.Bottom {
		c.Zone = ZoneLibrary
		pl.Library = append([]*CardInstance{c}, pl.Library...)
	}
	g.Choice = nil
	g.LeaveChoicePhase()
	e.postAction()
}

// finalizeModes writes modes to the pending spell and continues.
func (e *Env) finalizeModes() {
	g := e.Game
	cc := g.Choice
	g.Choice = nil
	g.LeaveChoicePhase()
	if g.Pending != nil {
		g.Pending.Ctx.Modes = cc.Selected
		g.Pending.NeedsModes = false
		e.continuePending()
		return
	}
	e.postAction()
}

// finalizeX locks X, pays for it immediately (costs are paid at this step),
// and continues the cast.
func (e *Env) finalizeX(x int) bool {
	g := e.Game
	if g.Pending == nil {
		return false
	}
	xCost := ManaCost{Generic: x}
	e.autoTap(g.Pending.Controller, xCost)
	if !e.Mana.CanPay(g, g.Pending.Controller, xCost) {
		return false
	}
	if err := e.Mana.Pay(g, g.Pending.Controller, xCost); err != nil {
		return false
	}
	g.Pending.Ctx.X = x
	g.Pending.NeedsX = false
	g.Choice = nil
	g.LeaveChoicePhase()
	e.continuePending()
	return true
}

// finalizeColor records a colour choice on the pending spell.
func (e *Env) finalizeColor(c Color) {
	g := e.Game
	g.Choice = nil
	g.LeaveChoicePhase()
	if g.Pending != nil {
		g.Pending.NeedsColor = false
		e.continuePending()
		return
	}
	e.postAction()
}

// tokenTable is the predefined CREATE_TOKEN table (indices 410-414).
var tokenTable = []*Card{
	{Name: "Soldier", Types: []CardType{TypeCreature}, Power: 1, Toughness: 1, Token: true},
	{Name: "Zombie", Types: []CardType{TypeCreature}, Power: 2, Toughness: 2, Token: true},
	{Name: "Goblin", Types: []CardType{TypeCreature}, Power: 1, Toughness: 1, Keywords: []Keyword{KwHaste}, Token: true},
	{Name: "Clue", Types: []CardType{TypeArtifact}, Token: true,
		Abilities: []AbilitySpec{{Cost: ManaCost{Generic: 2}, Effect: "draw", Amount: 1}}},
	{Name: "Treasure", Types: []CardType{TypeArtifact}, Token: true,
		Abilities: []AbilitySpec{{TapCost: true, IsMana: true, Produces: ColorColorless}}},
}
