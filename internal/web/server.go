package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/coder/websocket"

	"github.com/lcrane/manacore/internal/game"
	gamelog "github.com/lcrane/manacore/internal/log"
	gamenet "github.com/lcrane/manacore/internal/net"
)

//go:embed static
var staticFiles embed.FS

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	Name      string `json:"name"`
	CardType  string `json:"cardType"`
	ManaCost  string `json:"manaCost,omitempty"`
	Power     int    `json:"power,omitempty"`
	Toughness int    `json:"toughness,omitempty"`
	Text      string `json:"text,omitempty"`
}

// DeckInfo is the JSON representation of a deck for the /api/decks endpoint.
type DeckInfo struct {
	Number int      `json:"number"`
	Name   string   `json:"name"`
	Cards  []string `json:"cards"`
}

// Frame is one step of an observed self-play game.
type Frame struct {
	Type    string               `json:"type"`
	Action  string               `json:"action,omitempty"`
	Reward  float64              `json:"reward,omitempty"`
	State   *gamenet.StateView   `json:"state,omitempty"`
	Events  []gamenet.EventView  `json:"events,omitempty"`
	Result  string               `json:"result,omitempty"`
}

// Server is the manacore web observer.
type Server struct {
	decksFile string
	mux       *http.ServeMux
}

// NewServer creates a new web server.
func NewServer(decksFile string) (*Server, error) {
	s := &Server{
		decksFile: decksFile,
		mux:       http.NewServeMux(),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	staticFS, _ := fs.Sub(staticFiles, "static")

	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f.(io.Reader))
	})

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/decks", s.handleDecks)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	var cards []CardInfo
	for name, ctor := range game.CardRegistry {
		c := ctor()
		ci := CardInfo{
			Name:     name,
			ManaCost: c.ManaCost.String(),
			Text:     c.Text,
		}
		if len(c.Types) > 0 {
			ci.CardType = c.Types[0].String()
		}
		if c.Is(game.TypeCreature) {
			ci.Power = c.Power
			ci.Toughness = c.Toughness
		}
		cards = append(cards, ci)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cards)
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.decksFile)
	if err != nil {
		http.Error(w, "could not read decks file", http.StatusInternalServerError)
		return
	}

	df, err := parseDeckFileYAML(data)
	if err != nil {
		http.Error(w, "could not parse decks file", http.StatusInternalServerError)
		return
	}

	var decks []DeckInfo
	for i, d := range df.Decks {
		di := DeckInfo{Number: i + 1, Name: d.Name}
		seen := make(map[string]bool)
		for _, c := range d.Cards {
			if !seen[c.Name] {
				di.Cards = append(di.Cards, c.Name)
				seen[c.Name] = true
			}
		}
		decks = append(decks, di)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(decks)
}

// handleWebSocket streams a greedy-vs-greedy self-play game frame by frame.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // local observer, any origin
	})
	if err != nil {
		log.Printf("WebSocket accept error: %v", err)
		return
	}
	defer wsConn.CloseNow()
	ctx := r.Context()

	var connectMsg struct {
		Type  string `json:"type"`
		Deck0 int    `json:"deck0"`
		Deck1 int    `json:"deck1"`
		Seed  int64  `json:"seed"`
	}
	_, data, err := wsConn.Read(ctx)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, &connectMsg); err != nil || connectMsg.Type != "watch" {
		wsConn.Close(websocket.StatusPolicyViolation, "expected watch message")
		return
	}
	if connectMsg.Deck0 == 0 {
		connectMsg.Deck0 = 1
	}
	if connectMsg.Deck1 == 0 {
		connectMsg.Deck1 = 2
	}

	_, d0, err := game.DeckByNumber(s.decksFile, connectMsg.Deck0)
	if err != nil {
		wsConn.Close(websocket.StatusInternalError, "bad deck")
		return
	}
	_, d1, err := game.DeckByNumber(s.decksFile, connectMsg.Deck1)
	if err != nil {
		wsConn.Close(websocket.StatusInternalError, "bad deck")
		return
	}

	logger := gamelog.NewMemoryLogger()
	env := game.NewEnv(game.Config{Deck0: d0, Deck1: d1, Logger: logger, Seed: connectMsg.Seed, MaxTurns: 50})
	policy := game.GreedyPolicy{}
	seen := 0

	send := func(f Frame) error {
		events := logger.Events()
		for _, ev := range events[seen:] {
			f.Events = append(f.Events, gamenet.EventToView(ev))
		}
		seen = len(events)
		payload, err := json.Marshal(f)
		if err != nil {
			return err
		}
		return wsConn.Write(ctx, websocket.MessageText, payload)
	}

	for i := 0; i < 20000 && !env.Game.Over; i++ {
		actor := env.ToAct()
		mask := env.GenerateMask(actor)
		idx, actx := policy.Choose(env, actor, mask)
		reward, _, _, _ := env.Apply(idx, actx)

		f := Frame{
			Type:   "step",
			Action: fmt.Sprintf("P%d %s", actor+1, game.ActionName(idx)),
			Reward: reward,
			State:  gamenet.BuildStateView(env, 0),
		}
		if err := send(f); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(50 * time.Millisecond):
		}
	}

	_ = send(Frame{Type: "game_over", Result: string(env.Result(0)), State: gamenet.BuildStateView(env, 0)})
	wsConn.Close(websocket.StatusNormalClosure, "game ended")
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}
