package log

import (
	"fmt"
	"io"
	"strings"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// playerName returns "P1" or "P2" for display.
func playerName(p int) string {
	return fmt.Sprintf("P%d", p+1)
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	// Pad phase to 18 chars for alignment
	for len(phase) < 18 {
		phase += " "
	}
	return fmt.Sprintf("T%-2d %s| %s", e.Turn, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewPhaseChangeEvent(turn int, phase string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Type: EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase)}
}

func NewTurnBeginEvent(turn, player int) GameEvent {
	return GameEvent{Turn: turn, Phase: "Untap", Player: player, Type: EventTurnBegin,
		Details: fmt.Sprintf("=== Turn %d (%s) ===", turn, playerName(player))}
}

func NewDrawEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventDraw, Card: cardName,
		Details: fmt.Sprintf("%s draws %s", playerName(player), cardName)}
}

func NewPlayLandEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventPlayLand, Card: cardName,
		Details: fmt.Sprintf("%s plays %s", playerName(player), cardName)}
}

func NewCastEvent(turn int, phase string, player int, cardName, how string) GameEvent {
	d := fmt.Sprintf("%s casts %s", playerName(player), cardName)
	if how != "" {
		d += " (" + how + ")"
	}
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventCast, Card: cardName, Details: d}
}

func NewActivateEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventActivate, Card: cardName,
		Details: fmt.Sprintf("%s activates %s", playerName(player), cardName)}
}

func NewStackPushEvent(turn int, phase string, player int, desc string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventStackPush,
		Details: fmt.Sprintf("Stack ← %s", desc)}
}

func NewStackResolveEvent(turn int, phase string, player int, desc string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventStackResolve,
		Details: fmt.Sprintf("Resolves: %s", desc)}
}

func NewCounteredEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventCountered, Card: cardName,
		Details: fmt.Sprintf("%s is countered", cardName)}
}

func NewFizzleEvent(turn int, phase string, desc string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Type: EventFizzle,
		Details: fmt.Sprintf("Fizzles: %s", desc)}
}

func NewAttackDeclareEvent(turn, player int, attacker, target string) GameEvent {
	return GameEvent{Turn: turn, Phase: "Declare Attackers", Player: player, Type: EventAttackDeclare, Card: attacker,
		Details: fmt.Sprintf("%s attacks %s with %s", playerName(player), target, attacker)}
}

func NewBlockDeclareEvent(turn, player int, blocker, attacker string) GameEvent {
	return GameEvent{Turn: turn, Phase: "Declare Blockers", Player: player, Type: EventBlockDeclare, Card: blocker,
		Details: fmt.Sprintf("%s blocks %s with %s", playerName(player), attacker, blocker)}
}

func NewDamageEvent(turn int, phase string, player int, details string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventDamage, Details: details}
}

func NewLifeChangeEvent(turn int, phase string, player, from, to int, reason string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventLifeChange,
		Details: fmt.Sprintf("%s life %d → %d (%s)", playerName(player), from, to, reason)}
}

func NewToGraveyardEvent(turn int, phase string, player int, cardName, reason string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventToGraveyard, Card: cardName,
		Details: fmt.Sprintf("%s → %s's graveyard (%s)", cardName, playerName(player), reason)}
}

func NewExileEvent(turn int, phase string, player int, cardName, reason string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventExile, Card: cardName,
		Details: fmt.Sprintf("%s exiled (%s)", cardName, reason)}
}

func NewETBEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventETB, Card: cardName,
		Details: fmt.Sprintf("%s enters the battlefield under %s", cardName, playerName(player))}
}

func NewSBAEvent(turn int, phase string, details string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Type: EventSBA, Details: "SBA: " + details}
}

func NewTriggerQueuedEvent(turn int, phase string, player int, desc string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventTriggerQueued,
		Details: fmt.Sprintf("Trigger: %s", desc)}
}

func NewPriorityEvent(turn int, phase string, player int) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventPriority,
		Details: fmt.Sprintf("Priority to %s", playerName(player))}
}

func NewPassPriorityEvent(turn int, phase string, player int) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventPassPriority,
		Details: fmt.Sprintf("%s passes priority", playerName(player))}
}

func NewStuckRecoveryEvent(turn int, phase string, level int, details string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Type: EventStuckRecovery,
		Details: fmt.Sprintf("Recovery L%d: %s", level, details)}
}

func NewGameOverEvent(turn int, phase string, details string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Type: EventGameOver, Details: details}
}

func NewMulliganEvent(turn, player, count int) GameEvent {
	return GameEvent{Turn: turn, Phase: "Mulligan", Player: player, Type: EventMulligan,
		Details: fmt.Sprintf("%s mulligans to %d", playerName(player), 7-count)}
}

func NewKeepHandEvent(turn, player, bottoming int) GameEvent {
	return GameEvent{Turn: turn, Phase: "Mulligan", Player: player, Type: EventKeepHand,
		Details: fmt.Sprintf("%s keeps (must bottom %d)", playerName(player), bottoming)}
}

func NewTokenCreatedEvent(turn int, phase string, player int, name string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventTokenCreated, Card: name,
		Details: fmt.Sprintf("%s creates a %s token", playerName(player), name)}
}

func NewManaAddedEvent(turn int, phase string, player int, mana string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventManaAdded,
		Details: fmt.Sprintf("%s adds %s", playerName(player), mana)}
}

func NewScryEvent(turn int, phase string, player int, details string) GameEvent {
	return GameEvent{Turn: turn, Phase: phase, Player: player, Type: EventScry, Details: details}
}
