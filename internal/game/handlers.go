package game

import (
	"fmt"

	"github.com/lcrane/manacore/internal/log"
)

// The core consults three external collaborators through narrow contracts.
// Baseline implementations live below so the repo runs standalone; real
// deployments substitute their own.

// AbilityHandler interprets card rules text: keyword checks, activated
// ability listing, target enumeration, and stack-item resolution.
type AbilityHandler interface {
	// ActivatedAbilities lists the activated abilities of a permanent.
	ActivatedAbilities(g *Game, perm *CardInstance) []AbilitySpec

	// HasKeyword reports whether the instance currently has the keyword.
	HasKeyword(ci *CardInstance, kw Keyword) bool

	// LegalTargets enumerates current valid targets for a spec.
	LegalTargets(g *Game, spec TargetSpec, controller int) []TargetRef

	// ResolveItem applies a stack item's effect. The env is passed so
	// resolution can move cards, deal damage and queue triggers.
	ResolveItem(e *Env, item *StackItem) error

	// ReplaceZoneChange lets replacement effects redirect a zone change.
	// Returns the (possibly unchanged) destination.
	ReplaceZoneChange(g *Game, card *CardInstance, from, to ZoneType) ZoneType
}

// ManaSystem parses and pays mana costs against a player's pool.
type ManaSystem interface {
	CanPay(g *Game, player int, cost ManaCost) bool
	Pay(g *Game, player int, cost ManaCost) error
	Refund(g *Game, player int, cost ManaCost)
}

// CardEvaluator scores cards for heuristic decisions. The Env carries one
// (CMCEvaluator by default); the core's damage ordering and discards do not
// consult it.
type CardEvaluator interface {
	Score(g *Game, c *Card) float64
}

// --- Baseline AbilityHandler ---

// KeywordAbilityHandler reads keywords and ability specs straight off the
// card data and resolves a fixed set of effect keys.
type KeywordAbilityHandler struct{}

func (KeywordAbilityHandler) ActivatedAbilities(g *Game, perm *CardInstance) []AbilitySpec {
	if perm.FaceDown {
		return nil
	}
	return perm.EffectiveCard().Abilities
}

func (KeywordAbilityHandler) HasKeyword(ci *CardInstance, kw Keyword) bool {
	return ci.EffectiveCard().HasKeywordStatic(kw)
}

func (KeywordAbilityHandler) LegalTargets(g *Game, spec TargetSpec, controller int) []TargetRef {
	var out []TargetRef
	switch spec.Kind {
	case TargetPlayer:
		out = append(out, TargetRef{Kind: TargetPlayer, Player: controller},
			TargetRef{Kind: TargetPlayer, Player: g.Opponent(controller)})
	case TargetPermanent:
		for p := 0; p < 2; p++ {
			for _, perm := range g.Players[p].Battlefield {
				if spec.Type >= 0 && !perm.EffectiveCard().Is(spec.Type) {
					continue
				}
				out = append(out, TargetRef{Kind: TargetPermanent, Player: p, ID: perm.ID})
			}
		}
	case TargetStackItem:
		for i := range g.Stack {
			out = append(out, TargetRef{Kind: TargetStackItem, Index: i})
		}
	case TargetGraveyardCard:
		for p := 0; p < 2; p++ {
			for _, c := range g.Players[p].Graveyard {
				if spec.Type >= 0 && !c.Card.Is(spec.Type) {
					continue
				}
				out = append(out, TargetRef{Kind: TargetGraveyardCard, Player: p, ID: c.ID})
			}
		}
	}
	return out
}

func (h KeywordAbilityHandler) ReplaceZoneChange(g *Game, card *CardInstance, from, to ZoneType) ZoneType {
	// Escape and similar post-resolution replacements are handled by the
	// stack engine via the item's alt-cost tag; nothing to do here.
	return to
}

// ResolveItem dispatches on the item's effect key.
func (h KeywordAbilityHandler) ResolveItem(e *Env, item *StackItem) error {
	g := e.Game
	effect, amount := item.effectKey()

	switch effect {
	case "":
		// Modal-only spells have no base effect key.
	case "damage":
		for _, t := range item.Ctx.Targets {
			e.dealEffectDamage(item.Controller, t, amount)
		}
		if len(item.Ctx.Targets) == 0 {
			e.dealEffectDamage(item.Controller, TargetRef{Kind: TargetPlayer, Player: g.Opponent(item.Controller)}, amount)
		}
	case "draw":
		for i := 0; i < amount; i++ {
			e.drawCard(item.Controller)
		}
	case "gain_life":
		e.changeLife(item.Controller, amount, item.describe())
	case "counter":
		for _, t := range item.Ctx.Targets {
			if t.Kind == TargetStackItem {
				e.counterStackIndex(t.Index)
			}
		}
	case "destroy":
		for _, t := range item.Ctx.Targets {
			if perm := g.FindInstance(t.ID); perm != nil && perm.Zone == ZoneBattlefield {
				e.destroyPermanent(perm, item.describe())
			}
		}
	case "pump":
		for _, t := range item.Ctx.Targets {
			if perm := g.FindInstance(t.ID); perm != nil && perm.Zone == ZoneBattlefield {
				perm.AddCounter(CounterPlusOne, amount)
			}
		}
	case "discard":
		opp := g.Opponent(item.Controller)
		for i := 0; i < amount && len(g.Players[opp].Hand) > 0; i++ {
			e.discardCard(opp, g.Players[opp].Hand[0])
		}
	case "prevent_damage":
		g.Players[item.Controller].PreventNext += amount
	case "redirect_damage":
		g.Players[item.Controller].RedirectNext = true
	case "scry":
		e.openScry(item.Controller, amount, false)
	case "surveil":
		e.openScry(item.Controller, amount, true)
	case "token":
		for i := 0; i < amount; i++ {
			e.createToken(item.Controller, tokenTable[0])
		}
	case "bounce":
		for _, t := range item.Ctx.Targets {
			if perm := g.FindInstance(t.ID); perm != nil && perm.Zone == ZoneBattlefield {
				e.MoveCard(perm, ZoneBattlefield, ZoneHand)
			}
		}
	case "reanimate":
		for _, t := range item.Ctx.Targets {
			if c := g.FindInstance(t.ID); c != nil && c.Zone == ZoneGraveyard {
				c.Controller = item.Controller
				e.MoveCard(c, ZoneGraveyard, ZoneBattlefield)
			}
		}
	default:
		return fmt.Errorf("unknown effect key %q", effect)
	}

	// Modal spells resolve each chosen mode's effect key in order.
	for _, m := range item.Ctx.Modes {
		card := item.sourceCard()
		if card == nil || m >= len(card.Modes) {
			continue
		}
		switch card.Modes[m] {
		case "draw":
			e.drawCard(item.Controller)
		case "damage":
			e.dealEffectDamage(item.Controller, TargetRef{Kind: TargetPlayer, Player: g.Opponent(item.Controller)}, amount)
		case "gain_life":
			e.changeLife(item.Controller, amount, "mode")
		}
	}
	return nil
}

// --- Baseline ManaSystem ---

// PoolManaSystem pays costs greedily from the six-bucket pool: colored pips
// exactly, generic from colorless first then the deepest bucket.
type PoolManaSystem struct{}

func (PoolManaSystem) CanPay(g *Game, player int, cost ManaCost) bool {
	pool := g.Players[player].Pool
	for c := 0; c < 6; c++ {
		if pool[c] < cost.Pips[c] {
			return false
		}
		pool[c] -= cost.Pips[c]
	}
	return pool.Total() >= cost.Generic
}

func (m PoolManaSystem) Pay(g *Game, player int, cost ManaCost) error {
	if !m.CanPay(g, player, cost) {
		return fmt.Errorf("cannot pay %s from %s", cost, g.Players[player].Pool)
	}
	pool := &g.Players[player].Pool
	for c := 0; c < 6; c++ {
		pool[c] -= cost.Pips[c]
	}
	generic := cost.Generic
	// Colorless first
	for generic > 0 && pool[ColorColorless] > 0 {
		pool[ColorColorless]--
		generic--
	}
	for generic > 0 {
		best := -1
		for c := 0; c < 6; c++ {
			if pool[c] > 0 && (best == -1 || pool[c] > pool[best]) {
				best = c
			}
		}
		if best == -1 {
			return fmt.Errorf("pool exhausted paying %s", cost)
		}
		pool[best]--
		generic--
	}
	return nil
}

func (PoolManaSystem) Refund(g *Game, player int, cost ManaCost) {
	pool := &g.Players[player].Pool
	for c := 0; c < 6; c++ {
		pool[c] += cost.Pips[c]
	}
	pool[ColorColorless] += cost.Generic
}

// --- Baseline CardEvaluator ---

// CMCEvaluator scores a card by its mana value plus its body.
type CMCEvaluator struct{}

func (CMCEvaluator) Score(g *Game, c *Card) float64 {
	s := float64(c.ManaCost.CMC())
	if c.Is(TypeCreature) {
		s += float64(c.Power+c.Toughness) * 0.5
	}
	return s
}

// logTrigger is a small helper used by trigger queuing paths.
func (e *Env) logTrigger(player int, desc string) {
	g := e.Game
	e.log(log.NewTriggerQueuedEvent(g.Turn, g.Phase.String(), player, desc))
}
