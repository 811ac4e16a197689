package game

// Policy picks one legal action index from a mask. Used by the rollout CLI,
// the MCP opponent, and the web observer's self-play demo.
type Policy interface {
	Choose(e *Env, player int, m *Mask) (int, ActionContext)
}

// GreedyPolicy plays the highest-value legal action by a fixed preference
// order, falling back to pass. Deliberately simple; strategy is out of
// scope for the core.
type GreedyPolicy struct{}

// preference ranks action types from most to least proactive.
var preference = []ActionType{
	ActPlayLand, ActPlaySpell, ActAttack, ActDeclareAttackersDone,
	ActBlock, ActDeclareBlockersDone, ActFirstStrikeOrder, ActAssignCombatDamage,
	ActSelectTarget, ActSacrificePermanent, ActChooseMode, ActChooseX,
	ActChooseColor, ActPutOnTop, ActKeepHand, ActBottomCard, ActDiscardCard,
	ActActivateAbility, ActLoyaltyPlus, ActEndTurn, ActPassPriority,
}

func (GreedyPolicy) Choose(e *Env, player int, m *Mask) (int, ActionContext) {
	for _, want := range preference {
		for _, idx := range m.LegalIndices() {
			t, _ := Decode(idx)
			if t != want {
				continue
			}
			// Lowest X keeps greedy self-play affordable.
			if t == ActChooseX {
				return IdxChooseXBase, ActionContext{}
			}
			return idx, contextFor(m, idx)
		}
	}
	legal := m.LegalIndices()
	if len(legal) == 0 {
		return IdxConcede, ActionContext{}
	}
	return legal[0], contextFor(m, legal[0])
}

// contextFor reconstructs the minimal ActionContext from a mask reason.
func contextFor(m *Mask, idx int) ActionContext {
	var ctx ActionContext
	r, ok := m.Reasons[idx]
	if !ok || r.Context == nil {
		return ctx
	}
	geti := func(k string) int {
		if v, ok := r.Context[k]; ok {
			switch n := v.(type) {
			case int:
				return n
			case float64:
				return int(n)
			}
		}
		return 0
	}
	ctx.HandIdx = geti("hand_idx")
	ctx.BattlefieldIdx = geti("battlefield_idx")
	ctx.AbilityIdx = geti("ability_idx")
	ctx.GyIdx = geti("gy_idx")
	ctx.ExileIdx = geti("exile_idx")
	ctx.AttackerID = geti("attacker_id")
	ctx.TargetStackIdx = geti("target_stack_idx")
	ctx.BattleID = geti("battle_id")
	ctx.PWID = geti("pw_id")
	ctx.EquipID = geti("equip_id")
	ctx.FortID = geti("fort_id")
	ctx.CardID = geti("card_id")
	ctx.Mode = geti("mode")
	return ctx
}
