package net

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/lcrane/manacore/internal/game"
	"github.com/lcrane/manacore/internal/log"
)

// Server hosts a game between the local terminal (player 0) and one TCP
// client (player 1). The core is driven synchronously through Mask/Apply;
// all I/O lives here.
type Server struct {
	DeckFile string
	Port     string
	HostDeck int // host's deck number (1-indexed)
}

// Run starts the server, waits for a client to join, then runs the game.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()

	fmt.Printf("Waiting for opponent on port %s...\n", s.Port)

	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	fmt.Printf("Opponent connected from %s\n", conn.RemoteAddr())

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	var joinMsg ClientMessage
	if err := dec.Decode(&joinMsg); err != nil {
		return fmt.Errorf("read join message: %w", err)
	}
	joinerDeck := joinMsg.DeckNumber
	if joinerDeck == 0 {
		joinerDeck = 2
	}

	_, hostCards, err := game.DeckByNumber(s.DeckFile, s.HostDeck)
	if err != nil {
		return fmt.Errorf("load host deck: %w", err)
	}
	_, joinerCards, err := game.DeckByNumber(s.DeckFile, joinerDeck)
	if err != nil {
		return fmt.Errorf("load joiner deck: %w", err)
	}

	logger := log.NewMemoryLogger()
	env := game.NewEnv(game.Config{Deck0: hostCards, Deck1: joinerCards, Logger: logger})

	reader := bufio.NewReader(os.Stdin)
	seen := 0

	notify := func() error {
		events := logger.Events()
		for _, ev := range events[seen:] {
			fmt.Println(log.FormatEvent(ev))
			v := EventToView(ev)
			if err := enc.Encode(ServerMessage{Type: "notify", Event: &v}); err != nil {
				return err
			}
		}
		seen = len(events)
		return nil
	}

	for !env.Game.Over {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := notify(); err != nil {
			return err
		}

		actor := env.ToAct()
		mask := env.GenerateMask(actor)
		actions := BuildActionViews(mask)

		var index int
		var actx game.ActionContext
		if actor == 0 {
			renderState(os.Stdout, BuildStateView(env, 0))
			renderActions(os.Stdout, actions)
			index, actx = readLocalChoice(reader, actions)
		} else {
			msg := ServerMessage{Type: "decision", State: BuildStateView(env, 1), Actions: actions}
			if err := enc.Encode(msg); err != nil {
				return fmt.Errorf("send decision: %w", err)
			}
			var resp ClientMessage
			if err := dec.Decode(&resp); err != nil {
				return fmt.Errorf("recv action: %w", err)
			}
			index, actx = resp.Index, resp.Ctx
		}

		env.Apply(index, actx)
	}

	if err := notify(); err != nil {
		return err
	}
	result := env.Result(1)
	_ = enc.Encode(ServerMessage{Type: "game_over", Result: string(result)})
	fmt.Printf("Game over: %s (from host's view: %s)\n", result, env.Result(0))
	return nil
}

// renderState prints a one-screen summary of the acting player's view.
func renderState(w *os.File, sv *StateView) {
	fmt.Fprintf(w, "\n== Turn %d — %s (your turn: %v) ==\n", sv.Turn, sv.Phase, sv.IsYourTurn)
	fmt.Fprintf(w, "You: %d life, %d cards, pool %s | Opp: %d life, %d cards\n",
		sv.You.Life, sv.You.HandCount, sv.You.Pool, sv.Opponent.Life, sv.Opponent.HandCount)
	if len(sv.You.Hand) > 0 {
		fmt.Fprintf(w, "Hand: %s\n", strings.Join(sv.You.Hand, ", "))
	}
	renderSide := func(label string, pv PlayerView) {
		var perms []string
		for _, p := range pv.Battlefield {
			s := p.Name
			if p.FaceDown {
				s = "face-down"
			}
			if p.Tapped {
				s += " (T)"
			}
			perms = append(perms, s)
		}
		if len(perms) > 0 {
			fmt.Fprintf(w, "%s battlefield: %s\n", label, strings.Join(perms, ", "))
		}
	}
	renderSide("You", sv.You)
	renderSide("Opp", sv.Opponent)
	if sv.StackSize > 0 {
		fmt.Fprintf(w, "Stack: %s\n", strings.Join(sv.Stack, " ← "))
	}
}

// renderActions prints the numbered legal actions.
func renderActions(w *os.File, actions []ActionView) {
	for i, a := range actions {
		fmt.Fprintf(w, "  [%d] %s — %s\n", i, a.Name, a.Reason)
	}
}

// readLocalChoice reads a list position from stdin and returns the chosen
// vocabulary index plus its context.
func readLocalChoice(reader *bufio.Reader, actions []ActionView) (int, game.ActionContext) {
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return actions[len(actions)-1].Index, ctxFromView(actions[len(actions)-1])
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || n < 0 || n >= len(actions) {
			fmt.Printf("Enter a number 0-%d\n", len(actions)-1)
			continue
		}
		return actions[n].Index, ctxFromView(actions[n])
	}
}

// ctxFromView rebuilds an ActionContext from a view's context record.
func ctxFromView(a ActionView) game.ActionContext {
	data, err := json.Marshal(a.Ctx)
	if err != nil {
		return game.ActionContext{}
	}
	var ctx game.ActionContext
	_ = json.Unmarshal(data, &ctx)
	return ctx
}
