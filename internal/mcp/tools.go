package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lcrane/manacore/internal/game"
)

// activeSession is the singleton game session (one per stdio process).
var activeSession *GameSession

// decksFile is the path to the decks YAML file, set by main.
var decksFile string

// SetDecksFile sets the path to the decks YAML file.
func SetDecksFile(path string) {
	decksFile = path
}

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startGameTool(), handleStartGame)
	s.AddTool(applyActionTool(), handleApplyAction)
	s.AddTool(getStateTool(), handleGetState)
}

// --- Tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new game. The agent controls one player; the other is a built-in "+
			"greedy policy. Returns the initial state and the agent's legal actions."),
		mcp.WithNumber("agent_deck", mcp.Required(), mcp.Description("Deck number for the agent (1-indexed from decks.yaml)")),
		mcp.WithNumber("opponent_deck", mcp.Required(), mcp.Description("Deck number for the opponent")),
		mcp.WithNumber("agent_player", mcp.Description("Which seat the agent takes: 0 = goes first (default), 1 = goes second")),
		mcp.WithNumber("seed", mcp.Description("RNG seed (0 for default)")),
	)
}

func applyActionTool() mcp.Tool {
	return mcp.NewTool("apply_action",
		mcp.WithDescription("Apply one action by its vocabulary index (from the actions list). "+
			"Optional context fields go in ctx as JSON."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Action vocabulary index (0-479)")),
		mcp.WithString("ctx", mcp.Description("JSON-encoded action context, e.g. {\"hand_idx\": 2}")),
	)
}

func getStateTool() mcp.Tool {
	return mcp.NewTool("get_state",
		mcp.WithDescription("Get the current state, new events, and pending legal actions. Read-only."),
	)
}

// --- Tool handlers ---

func handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentDeck := request.GetInt("agent_deck", 0)
	oppDeck := request.GetInt("opponent_deck", 0)
	agentPlayer := request.GetInt("agent_player", 0)
	seed := request.GetInt("seed", 0)

	if agentDeck < 1 || oppDeck < 1 {
		return mcp.NewToolResultError("deck numbers must be >= 1"), nil
	}
	if agentPlayer != 0 && agentPlayer != 1 {
		return mcp.NewToolResultError("agent_player must be 0 or 1"), nil
	}

	sess, err := NewGameSession(decksFile, agentDeck, oppDeck, agentPlayer, int64(seed))
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	activeSession = sess

	return mcp.NewToolResultText(respondJSON(sess.snapshot(0, ""))), nil
}

func handleApplyAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= game.NumActions {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, game.NumActions-1), nil
	}

	var actx game.ActionContext
	if raw := request.GetString("ctx", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &actx); err != nil {
			return mcp.NewToolResultErrorf("Invalid ctx JSON: %v", err), nil
		}
	}

	resp := activeSession.apply(index, actx)
	if resp.GameOver {
		activeSession = nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	return mcp.NewToolResultText(respondJSON(activeSession.snapshot(0, ""))), nil
}
