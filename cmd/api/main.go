package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/advisor"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/arbengine"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/config"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/jupiter"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/mirror"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/rpc"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/server"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the API server
// It initializes all dependencies and starts the HTTP server with graceful shutdown
func main() {
	// Initialize structured logger with custom formatting
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	// Load and validate configuration from environment variables
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown (Ctrl+C, SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Initialize the engine: venue registry, ledger book, Redis-backed trade
	// cache and kill switches, ClickHouse trade history
	engine, err := arbengine.NewEngine(ctx, arbengine.EngineConfig{
		VenueConfigPath:    cfg.VenueConfigPath,
		BookConfigPath:     cfg.BookConfigPath,
		RedisAddr:          cfg.RedisAddr,
		ClickHouseAddr:     cfg.ClickHouseAddr,
		ClickHouseDatabase: cfg.ClickHouseDatabase,
		ClickHouseUsername: cfg.ClickHouseUsername,
		ClickHousePassword: cfg.ClickHousePassword,
		MinProfit:          cfg.MinProfit,
		Logger:             logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create engine")
	}
	defer engine.Close()

	// Optionally keep the ledger book refreshed from on-chain balances
	if cfg.MirrorEnabled {
		rpcClient := rpc.NewClient(rpc.ClientConfig{
			BaseURL:      cfg.RPCUrl,
			Timeout:      cfg.HTTPTimeout,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
			Logger:       logger,
		})
		poller, err := mirror.NewPoller(mirror.PollerConfig{
			RPCClient:    rpcClient,
			Book:         engine.Book(),
			Accounts:     engine.Registry().Accounts(),
			PollInterval: cfg.PollInterval,
			RequestsPerS: cfg.MirrorRPS,
			Logger:       logger,
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to create balance mirror")
		}
		go func() {
			if err := poller.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("balance mirror stopped")
			}
		}()
	}

	// Initialize advisor for natural language queries (optional)
	var agent *advisor.Agent
	aiBase := advisor.AgentConfig{
		ClickHouseAddr:     cfg.ClickHouseAddr,
		ClickHouseDatabase: cfg.ClickHouseDatabase,
		ClickHouseUsername: cfg.ClickHouseUsername,
		ClickHousePassword: cfg.ClickHousePassword,
		OpenRouterAPIKey:   cfg.OpenRouterAPIKey,
		Model:              cfg.OpenRouterModel,
		Logger:             logger,
	}

	// Only initialize the advisor if an OpenRouter API key is provided
	if cfg.OpenRouterAPIKey != "" {
		a, err := advisor.NewAgent(ctx, aiBase)
		if err != nil {
			logger.WithError(err).Warn("failed to initialize advisor")
		} else {
			agent = a
			defer func() {
				_ = agent.Close() // Clean up advisor resources on shutdown
			}()
		}
	}

	// Create handlers with all dependencies injected
	h := &server.Handlers{
		Engine:       engine,              // Unit builder and executor
		Cache:        engine.TradeCache(), // Redis-backed trade cache (nil without Redis)
		Kill:         engine.Killswitch(), // Venue kill switches (nil without Redis)
		AI:           agent,               // Optional advisor (can be nil)
		AIBaseConfig: aiBase,              // Base advisor configuration for model overrides
		DevMode:      cfg.DevMode,         // Enable detailed error responses in development
		Logger:       logger,              // Structured logger
		Jupiter:      jupiter.NewClient(cfg.JupiterBaseURL, cfg.JupiterAPIKey),
	}

	// Create HTTP server with configuration and handlers
	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr, // Server bind address (e.g., ":8090")
			DevMode: cfg.DevMode, // Development mode flag
			APIKey:  cfg.APIKey,  // Optional API key for authentication
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	// Setup graceful shutdown in a separate goroutine
	go func() {
		<-sigCh // Wait for shutdown signal
		logger.Info("shutting down")
		cancel()                               // Cancel context to stop ongoing operations
		_ = srv.Shutdown(context.Background()) // Gracefully shutdown HTTP server
	}()

	// Start the HTTP server
	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("api server failed")
	}

	// Wait for server to be fully shut down
	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
