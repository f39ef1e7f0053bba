package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/arbengine"
	"github.com/joho/godotenv"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

func main() {
	loadEnv()

	mode := flag.String("mode", "simulate", "simulate | execute")
	home := flag.String("home", "", "base58 home account (holds the asset the path starts and ends in)")
	path := flag.String("path", "", "comma-separated venue names in execution order")
	amt := flag.Uint64("amt", 0, "initial amount in raw token units")
	minProfit := flag.Uint64("min-profit", 0, "extra margin the round trip must clear (raw units)")
	flag.Parse()

	if *home == "" {
		fmt.Println("missing -home")
		os.Exit(2)
	}
	if *path == "" {
		fmt.Println("missing -path (e.g. amm-sol-usdc,desk-usdc-sol)")
		os.Exit(2)
	}
	if *amt == 0 {
		fmt.Println("missing -amt (must be > 0)")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	engine, err := arbengine.NewEngineFromEnv(ctx)
	if err != nil {
		fmt.Println("failed to init engine:", err)
		os.Exit(1)
	}
	defer engine.Close()

	venues := strings.Split(*path, ",")
	for i := range venues {
		venues[i] = strings.TrimSpace(venues[i])
	}

	intent := &arbengine.PathIntent{
		Home:     *home,
		AmountIn: *amt,
		Venues:   venues,
	}
	if *minProfit > 0 {
		intent.MinProfit = minProfit
	}

	var outcome *arbengine.Outcome
	switch *mode {
	case "simulate":
		outcome, err = engine.Simulate(ctx, intent)
	case "execute":
		outcome, err = engine.Execute(ctx, intent)
	default:
		fmt.Println("invalid -mode (use simulate|execute)")
		os.Exit(2)
	}

	// Aborted units still carry an outcome worth printing.
	if outcome == nil {
		fmt.Println(*mode, "failed:", err)
		os.Exit(1)
	}

	fmt.Printf("unit=%s state=%s init=%d final=%d profit=%d deltas=%v\n",
		outcome.UnitID, outcome.State, outcome.InitBalance, outcome.FinalBalance, outcome.Profit, outcome.HopDeltas)
	if outcome.State == arbengine.StateAborted {
		fmt.Printf("abort kind=%s err=%s\n", outcome.ErrorKind, outcome.Error)
		os.Exit(1)
	}
}
