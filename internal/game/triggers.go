package game

// drainTriggers puts queued triggered abilities onto the stack in APNAP
// order: the active player's triggers first (each player orders their own;
// queue order stands in for that ordering here), then the non-active
// player's. Returns true if anything was pushed.
func (e *Env) drainTriggers() bool {
	g := e.Game
	if len(g.TriggerQueue) == 0 {
		return false
	}
	queue := g.TriggerQueue
	g.TriggerQueue = nil

	pushed := false
	for _, side := range []int{g.ActivePlayer, g.Opponent(g.ActivePlayer)} {
		for _, tr := range queue {
			if tr.Controller != side {
				continue
			}
			e.pushStack(&StackItem{
				Kind:       ItemTrigger,
				Card:       tr.Source,
				Controller: tr.Controller,
				TriggerID:  tr.Effect,
				Amount:     tr.Amount,
			})
			pushed = true
		}
	}
	if pushed {
		e.assignPriority(g.ActivePlayer)
	}
	return pushed
}
