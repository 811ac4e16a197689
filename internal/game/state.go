package game

import (
	"fmt"
	"math/rand"

	"github.com/lcrane/manacore/internal/log"
)

const (
	StartingLife    = 20
	StartingHand    = 7
	MaxHandSize     = 7
	HandIndexLimit  = 8  // hand slots addressable by the action vocabulary
	FieldIndexLimit = 20 // battlefield slots addressable by the action vocabulary
	GraveIndexLimit = 6
	ExileIndexLimit = 8
)

// PlayerState is one player's entire state.
type PlayerState struct {
	Life        int             `json:"life"`
	Library     []*CardInstance `json:"library"` // top of library is last element (pop from end)
	Hand        []*CardInstance `json:"hand"`
	Battlefield []*CardInstance `json:"battlefield"`
	Graveyard   []*CardInstance `json:"graveyard"` // top of graveyard is last element
	Exile       []*CardInstance `json:"exile"`

	Pool           ManaPool `json:"pool"`
	LandPlayed     bool     `json:"land_played"`
	MulliganCount  int      `json:"mulligan_count"`
	Deciding       bool     `json:"deciding"`  // mulligan keep/mull decision pending
	Bottoming      int      `json:"bottoming"` // cards still to bottom after keeping
	LostGame       bool     `json:"lost_game"`
	DrewFromEmpty  bool     `json:"drew_from_empty"`

	// Damage interaction flags set by prevention/redirection spells.
	PreventNext  int  `json:"prevent_next,omitempty"`
	RedirectNext bool `json:"redirect_next,omitempty"`
}

// LibraryCount returns the number of cards remaining in the library.
func (p *PlayerState) LibraryCount() int { return len(p.Library) }

// Draw removes the top card from the library and adds it to the hand.
// Returns the drawn card, or nil if the library is empty (the empty-draw
// flag is set for the next SBA pass).
func (p *PlayerState) Draw() *CardInstance {
	if len(p.Library) == 0 {
		p.DrewFromEmpty = true
		return nil
	}
	card := p.Library[len(p.Library)-1]
	p.Library = p.Library[:len(p.Library)-1]
	card.Zone = ZoneHand
	p.Hand = append(p.Hand, card)
	return card
}

// removeFrom removes a card from a zone slice by instance ID.
func removeFrom(zone []*CardInstance, card *CardInstance) []*CardInstance {
	for i, c := range zone {
		if c.ID == card.ID {
			return append(zone[:i], zone[i+1:]...)
		}
	}
	return zone
}

// RemoveFromHand removes a card from the hand by instance ID.
func (p *PlayerState) RemoveFromHand(card *CardInstance) {
	p.Hand = removeFrom(p.Hand, card)
}

// Creatures returns all creatures on the battlefield.
func (p *PlayerState) Creatures() []*CardInstance {
	var result []*CardInstance
	for _, c := range p.Battlefield {
		if c.EffectiveCard().Is(TypeCreature) {
			result = append(result, c)
		}
	}
	return result
}

// Lands returns all lands on the battlefield.
func (p *PlayerState) Lands() []*CardInstance {
	var result []*CardInstance
	for _, c := range p.Battlefield {
		if c.EffectiveCard().Is(TypeLand) {
			result = append(result, c)
		}
	}
	return result
}

// Planeswalkers returns all planeswalkers on the battlefield.
func (p *PlayerState) Planeswalkers() []*CardInstance {
	var result []*CardInstance
	for _, c := range p.Battlefield {
		if c.EffectiveCard().Is(TypePlaneswalker) {
			result = append(result, c)
		}
	}
	return result
}

// Battles returns all battles on the battlefield.
func (p *PlayerState) Battles() []*CardInstance {
	var result []*CardInstance
	for _, c := range p.Battlefield {
		if c.EffectiveCard().Is(TypeBattle) {
			result = append(result, c)
		}
	}
	return result
}

// TotalPower sums the power of all creatures.
func (p *PlayerState) TotalPower() int {
	t := 0
	for _, c := range p.Creatures() {
		t += c.CurrentPower()
	}
	return t
}

// FindOnBattlefield returns the permanent with the given instance ID, or nil.
func (p *PlayerState) FindOnBattlefield(id int) *CardInstance {
	for _, c := range p.Battlefield {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ShuffleLibrary randomizes the library order using the game's RNG.
func (g *Game) ShuffleLibrary(player int) {
	p := g.Players[player]
	g.rng.Shuffle(len(p.Library), func(i, j int) {
		p.Library[i], p.Library[j] = p.Library[j], p.Library[i]
	})
}

// GameResult is the terminal outcome from a perspective player's view.
type GameResult string

const (
	ResultUndetermined GameResult = "undetermined"
	ResultWin          GameResult = "win"
	ResultLoss         GameResult = "loss"
	ResultDraw         GameResult = "draw"
	ResultError        GameResult = "error"
)

// MulliganState tracks the pre-game mulligan flow.
type MulliganState struct {
	Active bool `json:"active"`
	// Bottomed counts cards already bottomed this decision, per player.
	Bottomed [2]int `json:"bottomed"`
}

// Game holds the complete state of one game.
type Game struct {
	Players [2]*PlayerState `json:"players"`
	Stack   []*StackItem    `json:"stack"` // top of stack is last element

	Phase     Phase `json:"phase"`
	prevPhase Phase // phase to restore after a choice sub-phase

	Turn         int `json:"turn"` // 1-based turn counter
	MaxTurns     int `json:"max_turns"`
	ActivePlayer int `json:"active_player"`

	Priority  int `json:"priority"`   // player holding priority, -1 none
	PassCount int `json:"pass_count"` // consecutive priority passes

	SplitSecond bool `json:"split_second"`

	Targeting *TargetingContext `json:"targeting,omitempty"`
	Sacrifice *SacrificeContext `json:"sacrifice,omitempty"`
	Choice    *ChoiceContext    `json:"choice,omitempty"`
	Pending   *PendingSpell     `json:"pending,omitempty"`

	Mulligan MulliganState `json:"mulligan"`
	Combat   CombatState   `json:"combat"`

	// TriggerQueue holds triggers raised since the last drain.
	TriggerQueue []QueuedTrigger `json:"trigger_queue,omitempty"`

	Over      bool `json:"over"`
	GameDraw  bool `json:"game_draw"`
	Truncated bool `json:"truncated"`

	// NoOpStreak counts consecutive decisions where the only chosen action
	// was a no-op; drives stuck-state recovery.
	NoOpStreak    int `json:"noop_streak"`
	recoveryFails int

	nextID int
	rng    *rand.Rand

	// FirstTurnDraw lets the play-first player draw on turn 1.
	FirstTurnDraw bool `json:"first_turn_draw"`
}

// NewGame creates a fresh game state. Seed 0 uses a fixed default.
func NewGame(seed int64) *Game {
	if seed == 0 {
		seed = 1
	}
	return &Game{
		Players: [2]*PlayerState{
			{Life: StartingLife},
			{Life: StartingLife},
		},
		Phase:    PhaseNone,
		Priority: -1,
		MaxTurns: 200,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// NextID generates a unique card instance ID.
func (g *Game) NextID() int {
	g.nextID++
	return g.nextID
}

// Opponent returns the index of the other player.
func (g *Game) Opponent(player int) int { return 1 - player }

// CreateCardInstance creates a CardInstance from a Card definition.
func (g *Game) CreateCardInstance(card *Card, owner int) *CardInstance {
	return &CardInstance{
		Card:       card,
		ID:         g.NextID(),
		Owner:      owner,
		Controller: owner,
		Zone:       ZoneLibrary,
	}
}

// FindInstance locates a card instance by ID in any zone of either player.
func (g *Game) FindInstance(id int) *CardInstance {
	for p := 0; p < 2; p++ {
		pl := g.Players[p]
		for _, zone := range [][]*CardInstance{pl.Battlefield, pl.Hand, pl.Graveyard, pl.Exile, pl.Library} {
			for _, c := range zone {
				if c.ID == id {
					return c
				}
			}
		}
	}
	return nil
}

// zoneSlice returns a pointer to the slice backing a player's zone.
func (p *PlayerState) zoneSlice(z ZoneType) *[]*CardInstance {
	switch z {
	case ZoneLibrary:
		return &p.Library
	case ZoneHand:
		return &p.Hand
	case ZoneBattlefield:
		return &p.Battlefield
	case ZoneGraveyard:
		return &p.Graveyard
	case ZoneExile:
		return &p.Exile
	}
	return nil
}

// ActiveChoiceCount returns how many choice contexts are open. The data
// model allows at most one; callers assert through this.
func (g *Game) ActiveChoiceCount() int {
	n := 0
	if g.Targeting != nil {
		n++
	}
	if g.Sacrifice != nil {
		n++
	}
	if g.Choice != nil {
		n++
	}
	return n
}

// EnterChoicePhase switches to a choice sub-phase, remembering the phase
// to return to.
func (g *Game) EnterChoicePhase(p Phase) {
	if !g.Phase.IsChoice() {
		g.prevPhase = g.Phase
	}
	g.Phase = p
}

// LeaveChoicePhase restores the phase that was active before the choice.
func (g *Game) LeaveChoicePhase() {
	g.Phase = g.prevPhase
}

// emptyManaPools clears floating mana for both players (step boundary).
func (e *Env) emptyManaPools() {
	g := e.Game
	for p := 0; p < 2; p++ {
		if g.Players[p].Pool.Total() > 0 {
			g.Players[p].Pool.Empty()
			e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: p,
				Type: log.EventManaEmptied, Details: fmt.Sprintf("P%d's mana pool empties", p+1)})
		}
	}
}
