package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/lcrane/manacore/internal/game"
	"github.com/lcrane/manacore/internal/log"
	gamenet "github.com/lcrane/manacore/internal/net"
)

// GameSession wraps one Env for the MCP surface. The agent controls one
// player; the other side is driven by the built-in greedy policy, so every
// tool call is synchronous.
type GameSession struct {
	env         *game.Env
	logger      *log.MemoryLogger
	agentPlayer int
	opponent    game.Policy
	seenEvents  int
}

// NewGameSession loads decks and builds a fresh environment.
func NewGameSession(decksFile string, agentDeck, opponentDeck, agentPlayer int, seed int64) (*GameSession, error) {
	_, d0, err := game.DeckByNumber(decksFile, agentDeck)
	if err != nil {
		return nil, fmt.Errorf("load agent deck: %w", err)
	}
	_, d1, err := game.DeckByNumber(decksFile, opponentDeck)
	if err != nil {
		return nil, fmt.Errorf("load opponent deck: %w", err)
	}
	if agentPlayer == 1 {
		d0, d1 = d1, d0
	}

	logger := log.NewMemoryLogger()
	env := game.NewEnv(game.Config{Deck0: d0, Deck1: d1, Logger: logger, Seed: seed})

	s := &GameSession{
		env:         env,
		logger:      logger,
		agentPlayer: agentPlayer,
		opponent:    game.GreedyPolicy{},
	}
	s.advanceOpponent()
	return s, nil
}

// advanceOpponent lets the built-in policy act until the agent must decide
// or the game ends.
func (s *GameSession) advanceOpponent() {
	for i := 0; i < 10000; i++ {
		if s.env.Game.Over || s.env.ToAct() == s.agentPlayer {
			return
		}
		p := s.env.Game.Opponent(s.agentPlayer)
		mask := s.env.GenerateMask(p)
		idx, ctx := s.opponent.Choose(s.env, p, mask)
		s.env.Apply(idx, ctx)
	}
}

// ToolResponse is the JSON payload returned by every tool.
type ToolResponse struct {
	State    *gamenet.StateView   `json:"state,omitempty"`
	Actions  []gamenet.ActionView `json:"actions,omitempty"`
	Events   []gamenet.EventView  `json:"events"`
	Reward   float64              `json:"reward,omitempty"`
	GameOver bool                 `json:"game_over"`
	Result   string               `json:"result,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// snapshot builds the response for the current decision point.
func (s *GameSession) snapshot(reward float64, errMsg string) *ToolResponse {
	resp := &ToolResponse{
		Events:   []gamenet.EventView{},
		Reward:   reward,
		GameOver: s.env.Game.Over,
		Error:    errMsg,
	}
	events := s.logger.Events()
	for _, ev := range events[s.seenEvents:] {
		resp.Events = append(resp.Events, gamenet.EventToView(ev))
	}
	s.seenEvents = len(events)

	resp.State = gamenet.BuildStateView(s.env, s.agentPlayer)
	if s.env.Game.Over {
		resp.Result = string(s.env.Result(s.agentPlayer))
	} else if s.env.ToAct() == s.agentPlayer {
		resp.Actions = gamenet.BuildActionViews(s.env.GenerateMask(s.agentPlayer))
	}
	return resp
}

// apply performs the agent's action and advances the opponent.
func (s *GameSession) apply(index int, ctx game.ActionContext) *ToolResponse {
	reward, _, _, info := s.env.Apply(index, ctx)
	errMsg := ""
	if e, ok := info["error"].(string); ok {
		errMsg = e
	}
	s.advanceOpponent()
	return s.snapshot(reward, errMsg)
}

// respondJSON marshals a tool response, falling back to an error string.
func respondJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}
