package game

import (
	"fmt"

	"github.com/lcrane/manacore/internal/log"
)

// runSBA applies all state-based actions repeatedly until none fire, then
// checks game end. SBAs never use the stack.
func (e *Env) runSBA() {
	for i := 0; i < 20; i++ {
		if !e.runSBAOnce() {
			break
		}
	}
	e.checkGameEnd()
}

// runSBAOnce performs a single SBA sweep. Returns true if anything changed.
func (e *Env) runSBAOnce() bool {
	g := e.Game
	changed := false

	for p := 0; p < 2; p++ {
		pl := g.Players[p]

		// Players at zero or less life, or who drew from an empty library.
		if pl.Life <= 0 && !pl.LostGame {
			e.log(log.NewSBAEvent(g.Turn, g.Phase.String(), fmt.Sprintf("P%d at %d life", p+1, pl.Life)))
			e.setLoss(p, "life total reached 0")
			changed = true
		}
		if pl.DrewFromEmpty && !pl.LostGame {
			e.log(log.NewSBAEvent(g.Turn, g.Phase.String(), fmt.Sprintf("P%d drew from empty library", p+1)))
			e.setLoss(p, "drew from an empty library")
			changed = true
		}

		// Snapshot: the battlefield may shrink while we act on it.
		perms := make([]*CardInstance, len(pl.Battlefield))
		copy(perms, pl.Battlefield)

		seen := map[string]*CardInstance{}
		for _, perm := range perms {
			if perm.Zone != ZoneBattlefield {
				continue
			}
			c := perm.EffectiveCard()

			if c.Is(TypeCreature) {
				tough := perm.CurrentToughness()
				if tough <= 0 {
					e.log(log.NewSBAEvent(g.Turn, g.Phase.String(), perm.Card.Name+" has toughness 0"))
					e.MoveCard(perm, ZoneBattlefield, ZoneGraveyard)
					changed = true
					continue
				}
				if perm.Damage >= tough {
					e.log(log.NewSBAEvent(g.Turn, g.Phase.String(), perm.Card.Name+" has lethal damage"))
					e.destroyPermanent(perm, "lethal damage")
					changed = true
					continue
				}
			}

			if c.Is(TypePlaneswalker) && perm.Counters[CounterLoyalty] <= 0 {
				e.log(log.NewSBAEvent(g.Turn, g.Phase.String(), perm.Card.Name+" has no loyalty"))
				e.MoveCard(perm, ZoneBattlefield, ZoneGraveyard)
				changed = true
				continue
			}

			if c.Is(TypeBattle) && perm.Counters[CounterDefense] <= 0 {
				e.log(log.NewSBAEvent(g.Turn, g.Phase.String(), perm.Card.Name+" has no defense"))
				e.MoveCard(perm, ZoneBattlefield, ZoneGraveyard)
				changed = true
				continue
			}

			// Auras and equipment with an illegal or missing attachment.
			if perm.AttachedTo != 0 {
				host := g.FindInstance(perm.AttachedTo)
				if host == nil || host.Zone != ZoneBattlefield {
					if c.Is(TypeEnchantment) {
						e.log(log.NewSBAEvent(g.Turn, g.Phase.String(), perm.Card.Name+" has nothing to enchant"))
						e.MoveCard(perm, ZoneBattlefield, ZoneGraveyard)
						changed = true
						continue
					}
					perm.AttachedTo = 0
					changed = true
				}
			}

			// Legend rule: same name, same controller — keep the newest.
			if !perm.FaceDown && hasSubtype(c, "Legendary") {
				if prev, ok := seen[c.Name]; ok {
					e.log(log.NewSBAEvent(g.Turn, g.Phase.String(), "legend rule: "+c.Name))
					e.MoveCard(prev, ZoneBattlefield, ZoneGraveyard)
					changed = true
				}
				seen[c.Name] = perm
			}

			// +1/+1 and -1/-1 counters annihilate in pairs.
			if n := min(perm.Counters[CounterPlusOne], perm.Counters[CounterMinusOne]); n > 0 {
				perm.AddCounter(CounterPlusOne, -n)
				perm.AddCounter(CounterMinusOne, -n)
				changed = true
			}
		}
	}
	return changed
}

func hasSubtype(c *Card, st string) bool {
	for _, s := range c.Subtypes {
		if s == st {
			return true
		}
	}
	return false
}

// checkGameEnd folds loss flags into the terminal state.
func (e *Env) checkGameEnd() {
	g := e.Game
	if g.Players[0].LostGame || g.Players[1].LostGame {
		g.Over = true
	}
}
