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
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn net.Conn
}

// Connect connects to a server, sends the deck choice, and runs the REPL.
func Connect(ctx context.Context, addr string, deckNumber int) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	enc := json.NewEncoder(conn)
	if err := enc.Encode(ClientMessage{Type: "join", DeckNumber: deckNumber}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Println("Connected! Waiting for game to start...")

	client := &Client{conn: conn}
	return client.RunREPL(ctx)
}

// RunREPL reads server messages and handles them interactively.
func (c *Client) RunREPL(ctx context.Context) error {
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)
	reader := bufio.NewReader(os.Stdin)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case "notify":
			if msg.Event != nil {
				fmt.Printf("T%-2d %-18s| %s\n", msg.Event.Turn, msg.Event.Phase, msg.Event.Details)
			}

		case "decision":
			renderState(os.Stdout, msg.State)
			for i, a := range msg.Actions {
				fmt.Printf("  [%d] %s — %s\n", i, a.Name, a.Reason)
			}
			idx := c.readChoice(reader, len(msg.Actions))
			chosen := msg.Actions[idx]
			if err := enc.Encode(ClientMessage{Type: "action", Index: chosen.Index, Ctx: ctxFromView(chosen)}); err != nil {
				return fmt.Errorf("send action: %w", err)
			}

		case "game_over":
			fmt.Printf("\nGame over: %s\n", msg.Result)
			return nil
		}
	}
}

// readChoice reads a valid list position from stdin.
func (c *Client) readChoice(reader *bufio.Reader, n int) int {
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return n - 1
		}
		v, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || v < 0 || v >= n {
			fmt.Printf("Enter a number 0-%d\n", n-1)
			continue
		}
		return v
	}
}
