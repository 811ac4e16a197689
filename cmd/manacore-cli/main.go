package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/lcrane/manacore/internal/game"
	gamelog "github.com/lcrane/manacore/internal/log"
	gamenet "github.com/lcrane/manacore/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "host":
		runHost(os.Args[2:])
	case "join":
		runJoin(os.Args[2:])
	case "rollout":
		runRollout(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  manacore host [--deck N] [--port P] [--decks FILE]")
	fmt.Println("  manacore join [--deck N] [--addr ADDR]")
	fmt.Println("  manacore rollout [--deck0 N] [--deck1 N] [--seed S] [--turns T] [--decks FILE]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  host     Start a game server and play as Player 1")
	fmt.Println("  join     Connect to a game server and play as Player 2")
	fmt.Println("  rollout  Run a greedy self-play game and print the event log")
}

func runHost(args []string) {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	deck := fs.Int("deck", 1, "deck number to use (from decks.yaml)")
	port := fs.String("port", "9000", "TCP port to listen on")
	decksFile := fs.String("decks", "decks.yaml", "path to decks file")
	fs.Parse(args)

	srv := &gamenet.Server{
		DeckFile: *decksFile,
		Port:     *port,
		HostDeck: *deck,
	}

	if err := srv.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runJoin(args []string) {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	deck := fs.Int("deck", 2, "deck number to use (from decks.yaml)")
	addr := fs.String("addr", "localhost:9000", "server address to connect to")
	fs.Parse(args)

	if err := gamenet.Connect(context.Background(), *addr, *deck); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runRollout(args []string) {
	fs := flag.NewFlagSet("rollout", flag.ExitOnError)
	deck0 := fs.Int("deck0", 1, "player 1's deck number")
	deck1 := fs.Int("deck1", 2, "player 2's deck number")
	seed := fs.Int64("seed", 0, "RNG seed")
	turns := fs.Int("turns", 50, "max turns before truncation")
	decksFile := fs.String("decks", "decks.yaml", "path to decks file")
	fs.Parse(args)

	_, d0, err := game.DeckByNumber(*decksFile, *deck0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	_, d1, err := game.DeckByNumber(*decksFile, *deck1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := gamelog.NewTextLogger(os.Stdout)
	env := game.NewEnv(game.Config{Deck0: d0, Deck1: d1, Logger: logger, Seed: *seed, MaxTurns: *turns})
	policy := game.GreedyPolicy{}

	for i := 0; i < 100000 && !env.Game.Over; i++ {
		actor := env.ToAct()
		mask := env.GenerateMask(actor)
		idx, ctx := policy.Choose(env, actor, mask)
		env.Apply(idx, ctx)
	}

	fmt.Printf("\nResult (P1 view): %s after %d turns\n", env.Result(0), env.Game.Turn)
}
