package game

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lcrane/manacore/internal/log"
)

// Config holds configuration for creating a new environment.
type Config struct {
	Deck0         []*Card // player 0's deck (card definitions)
	Deck1         []*Card // player 1's deck (card definitions)
	Logger        log.EventLogger
	Seed          int64 // RNG seed (0 for fixed default)
	NoShuffle     bool  // skip deck shuffle (for deterministic tests)
	MaxTurns      int   // truncate after this many turns (0 = 200)
	FirstTurnDraw bool  // play-first player draws on turn 1
	SkipMulligan  bool  // start directly at turn 1 with opening hands kept
}

// Env owns a Game plus its collaborators and exposes the agent surface:
// Mask() and Apply(). All mutation happens on the caller's goroutine.
type Env struct {
	ID     uuid.UUID
	Game   *Game
	Logger log.EventLogger

	Abilities AbilityHandler
	Mana      ManaSystem
	Evaluator CardEvaluator

	// actions replayed for the round-trip property
	history []AppliedAction
}

// AppliedAction records one Apply call for replay.
type AppliedAction struct {
	Index int           `json:"index"`
	Ctx   ActionContext `json:"ctx"`
}

// Info is the auxiliary data returned by Apply.
type Info map[string]any

// NewEnv builds an environment and deals opening hands.
func NewEnv(cfg Config) *Env {
	g := NewGame(cfg.Seed)
	if cfg.MaxTurns > 0 {
		g.MaxTurns = cfg.MaxTurns
	}
	g.FirstTurnDraw = cfg.FirstTurnDraw

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}

	e := &Env{
		ID:        uuid.New(),
		Game:      g,
		Logger:    logger,
		Abilities: KeywordAbilityHandler{},
		Mana:      PoolManaSystem{},
		Evaluator: CMCEvaluator{},
	}

	for _, card := range cfg.Deck0 {
		g.Players[0].Library = append(g.Players[0].Library, g.CreateCardInstance(card, 0))
	}
	for _, card := range cfg.Deck1 {
		g.Players[1].Library = append(g.Players[1].Library, g.CreateCardInstance(card, 1))
	}
	if !cfg.NoShuffle {
		e.Game.ShuffleLibrary(0)
		e.Game.ShuffleLibrary(1)
	}

	for p := 0; p < 2; p++ {
		for i := 0; i < StartingHand; i++ {
			g.Players[p].Draw()
		}
	}

	if cfg.SkipMulligan {
		e.beginFirstTurn()
	} else {
		g.Mulligan.Active = true
		g.Phase = PhaseMulligan
		g.Players[0].Deciding = true
		g.Players[1].Deciding = true
	}
	return e
}

// beginFirstTurn transitions out of the mulligan flow into turn 1.
func (e *Env) beginFirstTurn() {
	g := e.Game
	g.Mulligan.Active = false
	g.Turn = 1
	g.ActivePlayer = 0
	e.log(log.NewTurnBeginEvent(g.Turn, g.ActivePlayer))
	e.enterPhase(PhaseUntap)
}

// ToAct returns the player expected to act right now.
func (e *Env) ToAct() int {
	g := e.Game
	if g.Mulligan.Active {
		// P1 decides first; a bottoming player acts before a deciding one.
		for p := 0; p < 2; p++ {
			if g.Players[p].Bottoming > 0 {
				return p
			}
		}
		for p := 0; p < 2; p++ {
			if g.Players[p].Deciding {
				return p
			}
		}
		return 0
	}
	if g.Targeting != nil {
		return g.Targeting.Controller
	}
	if g.Sacrifice != nil {
		return g.Sacrifice.Controller
	}
	if g.Choice != nil {
		return g.Choice.Controller
	}
	if g.Pending != nil {
		return g.Pending.Controller
	}
	if g.Phase == PhaseDeclareBlockers && !g.Combat.BlockersDone {
		return g.Opponent(g.ActivePlayer)
	}
	if g.Priority >= 0 {
		return g.Priority
	}
	return g.ActivePlayer
}

// log emits a game event through the logger.
func (e *Env) log(event log.GameEvent) {
	e.Logger.Log(event)
}

// --- Zone movement ---

// MoveCard is the single gateway for zone changes. It honours replacement
// effects, fires ETB/LTB triggers, and erases tokens that leave the
// battlefield.
func (e *Env) MoveCard(card *CardInstance, from, to ZoneType) {
	g := e.Game
	to = e.Abilities.ReplaceZoneChange(g, card, from, to)

	// Detach anything attached to a permanent that is leaving.
	if from == ZoneBattlefield {
		for p := 0; p < 2; p++ {
			for _, other := range g.Players[p].Battlefield {
				if other.AttachedTo == card.ID {
					other.AttachedTo = 0
				}
			}
		}
		card.AttachedTo = 0
	}

	// Remove from the source zone's slice.
	switch from {
	case ZoneBattlefield:
		owner := g.Players[card.Controller]
		owner.Battlefield = removeFrom(owner.Battlefield, card)
	case ZoneStack:
		// the stack slice is managed by the stack engine
	default:
		owner := g.Players[card.Owner]
		if zs := owner.zoneSlice(from); zs != nil {
			*zs = removeFrom(*zs, card)
		}
	}

	if from == ZoneBattlefield {
		e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: card.Controller,
			Type: log.EventLTB, Card: card.Card.Name,
			Details: fmt.Sprintf("%s leaves the battlefield", card)})
		if to == ZoneGraveyard {
			e.queueCardTriggers(card, "dies")
		}
	}

	// Tokens cease to exist anywhere but the battlefield.
	if card.Card.Token && to != ZoneBattlefield {
		card.Zone = ZoneExile
		return
	}

	// Reset per-battlefield state on departure.
	if from == ZoneBattlefield {
		card.Tapped = false
		card.Damage = 0
		card.FaceDown = false
		card.Counters = nil
		card.EnteredThisTurn = false
	}

	card.Zone = to
	switch to {
	case ZoneBattlefield:
		pl := g.Players[card.Controller]
		pl.Battlefield = append(pl.Battlefield, card)
		card.EnteredThisTurn = true
		card.Damage = 0
		if c := card.EffectiveCard(); c.Is(TypePlaneswalker) {
			card.AddCounter(CounterLoyalty, c.Loyalty)
		} else if c.Is(TypeBattle) {
			card.AddCounter(CounterDefense, c.Defense)
		}
		e.log(log.NewETBEvent(g.Turn, g.Phase.String(), card.Controller, card.Card.Name))
		e.queueCardTriggers(card, "etb")
	case ZoneGraveyard:
		pl := g.Players[card.Owner]
		pl.Graveyard = append(pl.Graveyard, card)
		e.log(log.NewToGraveyardEvent(g.Turn, g.Phase.String(), card.Owner, card.Card.Name, from.String()))
	case ZoneExile:
		pl := g.Players[card.Owner]
		pl.Exile = append(pl.Exile, card)
		e.log(log.NewExileEvent(g.Turn, g.Phase.String(), card.Owner, card.Card.Name, from.String()))
	case ZoneHand:
		g.Players[card.Owner].Hand = append(g.Players[card.Owner].Hand, card)
	case ZoneLibrary:
		g.Players[card.Owner].Library = append(g.Players[card.Owner].Library, card)
	}
}

// queueCardTriggers queues a card's triggers matching the given event.
func (e *Env) queueCardTriggers(card *CardInstance, when string) {
	for _, tr := range card.Card.Triggers {
		if tr.When != when {
			continue
		}
		e.Game.TriggerQueue = append(e.Game.TriggerQueue, QueuedTrigger{
			Source:     card,
			Controller: card.Controller,
			Effect:     tr.Effect,
			Amount:     tr.Amount,
			Desc:       fmt.Sprintf("%s (%s)", card.Card.Name, when),
		})
		e.logTrigger(card.Controller, fmt.Sprintf("%s: %s", card.Card.Name, tr.Effect))
	}
}

// --- Common mutations ---

func (e *Env) drawCard(player int) *CardInstance {
	g := e.Game
	card := g.Players[player].Draw()
	if card == nil {
		return nil
	}
	e.log(log.NewDrawEvent(g.Turn, g.Phase.String(), player, card.Card.Name))
	return card
}

func (e *Env) changeLife(player, delta int, reason string) {
	g := e.Game
	p := g.Players[player]
	if delta < 0 {
		if p.RedirectNext {
			p.RedirectNext = false
			e.changeLife(g.Opponent(player), delta, reason+" (redirected)")
			return
		}
		if p.PreventNext > 0 {
			prevented := -delta
			if prevented > p.PreventNext {
				prevented = p.PreventNext
			}
			p.PreventNext -= prevented
			delta += prevented
			if delta == 0 {
				return
			}
		}
	}
	from := p.Life
	p.Life += delta
	e.log(log.NewLifeChangeEvent(g.Turn, g.Phase.String(), player, from, p.Life, reason))
}

// dealEffectDamage routes non-combat damage to a player or permanent.
func (e *Env) dealEffectDamage(source int, target TargetRef, amount int) {
	if amount <= 0 {
		return
	}
	g := e.Game
	switch target.Kind {
	case TargetPlayer:
		e.changeLife(target.Player, -amount, "damage")
	case TargetPermanent:
		if perm := g.FindInstance(target.ID); perm != nil && perm.Zone == ZoneBattlefield {
			e.damagePermanent(perm, amount)
		}
	}
}

// damagePermanent marks damage or removes loyalty/defense counters.
func (e *Env) damagePermanent(perm *CardInstance, amount int) {
	g := e.Game
	c := perm.EffectiveCard()
	switch {
	case c.Is(TypePlaneswalker):
		perm.AddCounter(CounterLoyalty, -amount)
	case c.Is(TypeBattle):
		perm.AddCounter(CounterDefense, -amount)
	default:
		perm.Damage += amount
	}
	e.log(log.NewDamageEvent(g.Turn, g.Phase.String(), perm.Controller,
		fmt.Sprintf("%d damage to %s", amount, perm)))
}

func (e *Env) discardCard(player int, card *CardInstance) {
	g := e.Game
	g.Players[player].RemoveFromHand(card)
	card.Zone = ZoneGraveyard
	g.Players[player].Graveyard = append(g.Players[player].Graveyard, card)
	e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: player,
		Type: log.EventDiscard, Card: card.Card.Name,
		Details: fmt.Sprintf("P%d discards %s", player+1, card.Card.Name)})
}

// createToken puts a token copy of the given card onto the battlefield.
func (e *Env) createToken(player int, def *Card) *CardInstance {
	g := e.Game
	tok := *def
	tok.Token = true
	ci := g.CreateCardInstance(&tok, player)
	ci.Zone = ZoneStack // transient; MoveCard handles arrival
	e.MoveCard(ci, ZoneStack, ZoneBattlefield)
	e.log(log.NewTokenCreatedEvent(g.Turn, g.Phase.String(), player, tok.Name))
	return ci
}

// destroyPermanent sends a permanent to its owner's graveyard unless it is
// indestructible.
func (e *Env) destroyPermanent(perm *CardInstance, reason string) {
	if e.Abilities.HasKeyword(perm, KwIndestruct) {
		return
	}
	g := e.Game
	e.log(log.GameEvent{Turn: g.Turn, Phase: g.Phase.String(), Player: perm.Controller,
		Type: log.EventDestroy, Card: perm.Card.Name,
		Details: fmt.Sprintf("%s is destroyed (%s)", perm, reason)})
	e.MoveCard(perm, ZoneBattlefield, ZoneGraveyard)
}

// --- Game end ---

// setLoss marks a player as having lost. Monotone: never cleared.
func (e *Env) setLoss(player int, reason string) {
	g := e.Game
	if g.Players[player].LostGame || g.Over {
		g.Players[player].LostGame = true
		return
	}
	g.Players[player].LostGame = true
	g.Over = true
	e.log(log.NewGameOverEvent(g.Turn, g.Phase.String(),
		fmt.Sprintf("P%d loses: %s", player+1, reason)))
}

// setDraw marks the game as a mutual draw.
func (e *Env) setDraw(reason string) {
	g := e.Game
	if g.Over {
		g.GameDraw = true
		return
	}
	g.GameDraw = true
	g.Over = true
	e.log(log.NewGameOverEvent(g.Turn, g.Phase.String(), "draw: "+reason))
}

// Result reports the outcome from one player's perspective.
func (e *Env) Result(perspective int) GameResult {
	g := e.Game
	if !g.Over {
		return ResultUndetermined
	}
	opp := g.Opponent(perspective)
	switch {
	case g.GameDraw, g.Players[perspective].LostGame && g.Players[opp].LostGame:
		return ResultDraw
	case g.Players[opp].LostGame:
		return ResultWin
	case g.Players[perspective].LostGame:
		return ResultLoss
	default:
		return ResultDraw
	}
}

// --- Snapshot / replay ---

// unmarshalGame restores a Game from a Snapshot payload.
func unmarshalGame(data []byte, g *Game) error {
	return json.Unmarshal(data, g)
}

// Snapshot serialises the Game to JSON.
func (e *Env) Snapshot() ([]byte, error) {
	return json.Marshal(e.Game)
}

// History returns the applied actions so far, for replay.
func (e *Env) History() []AppliedAction {
	out := make([]AppliedAction, len(e.history))
	copy(out, e.history)
	return out
}
