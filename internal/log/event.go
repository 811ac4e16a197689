package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventTurnBegin
	EventDraw
	EventPlayLand
	EventCast
	EventActivate
	EventTriggerQueued
	EventStackPush
	EventStackResolve
	EventCountered
	EventFizzle
	EventAttackDeclare
	EventBlockDeclare
	EventDamage
	EventCombatDamage
	EventDestroy
	EventSacrifice
	EventDiscard
	EventToGraveyard
	EventExile
	EventReturnToHand
	EventETB
	EventLTB
	EventLifeChange
	EventCounterChange
	EventTap
	EventUntap
	EventTransform
	EventScry
	EventSurveil
	EventSearch
	EventShuffle
	EventMulligan
	EventKeepHand
	EventBottomCard
	EventTokenCreated
	EventPriority
	EventPassPriority
	EventSBA
	EventStuckRecovery
	EventConcede
	EventGameOver
	EventMaskMiss
	EventManaAdded
	EventManaEmptied
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventTurnBegin:
		return "TurnBegin"
	case EventDraw:
		return "Draw"
	case EventPlayLand:
		return "PlayLand"
	case EventCast:
		return "Cast"
	case EventActivate:
		return "Activate"
	case EventTriggerQueued:
		return "TriggerQueued"
	case EventStackPush:
		return "StackPush"
	case EventStackResolve:
		return "StackResolve"
	case EventCountered:
		return "Countered"
	case EventFizzle:
		return "Fizzle"
	case EventAttackDeclare:
		return "AttackDeclare"
	case EventBlockDeclare:
		return "BlockDeclare"
	case EventDamage:
		return "Damage"
	case EventCombatDamage:
		return "CombatDamage"
	case EventDestroy:
		return "Destroy"
	case EventSacrifice:
		return "Sacrifice"
	case EventDiscard:
		return "Discard"
	case EventToGraveyard:
		return "ToGraveyard"
	case EventExile:
		return "Exile"
	case EventReturnToHand:
		return "ReturnToHand"
	case EventETB:
		return "EntersBattlefield"
	case EventLTB:
		return "LeavesBattlefield"
	case EventLifeChange:
		return "LifeChange"
	case EventCounterChange:
		return "CounterChange"
	case EventTap:
		return "Tap"
	case EventUntap:
		return "Untap"
	case EventTransform:
		return "Transform"
	case EventScry:
		return "Scry"
	case EventSurveil:
		return "Surveil"
	case EventSearch:
		return "Search"
	case EventShuffle:
		return "Shuffle"
	case EventMulligan:
		return "Mulligan"
	case EventKeepHand:
		return "KeepHand"
	case EventBottomCard:
		return "BottomCard"
	case EventTokenCreated:
		return "TokenCreated"
	case EventPriority:
		return "Priority"
	case EventPassPriority:
		return "PassPriority"
	case EventSBA:
		return "StateBasedAction"
	case EventStuckRecovery:
		return "StuckRecovery"
	case EventConcede:
		return "Concede"
	case EventGameOver:
		return "GameOver"
	case EventMaskMiss:
		return "MaskMiss"
	case EventManaAdded:
		return "ManaAdded"
	case EventManaEmptied:
		return "ManaEmptied"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a game.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based)
	Phase   string    // current phase name (e.g. "Precombat Main")
	Player  int       // acting player (0 or 1)
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Details string    // human-readable detail string
}
