package arbengine

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/cache"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/killswitch"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/ledger"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/models"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/storage"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/venue"
	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Engine wires the ledger, venue registry, kill switches, and trade
// publishing around unit execution.
type Engine struct {
	book     *ledger.Book
	registry *venue.Registry

	kill       *killswitch.Store
	tradeCache storage.TradeCache
	tradeStore storage.TradeStore

	minProfit uint64
	logger    *logrus.Logger
}

// EngineConfig holds configuration for the arbitrage engine.
type EngineConfig struct {
	// Venue and ledger seed configs
	VenueConfigPath string
	BookConfigPath  string

	// Storage (all optional; empty disables the integration)
	RedisAddr          string
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// MinProfit is the default margin a unit must clear beyond strict
	// profitability, in raw home-asset units.
	MinProfit uint64

	Logger *logrus.Logger
}

// DefaultEngineConfig returns sensible defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		VenueConfigPath: "internal/config/venues.json",
		BookConfigPath:  "internal/config/book.json",
	}
}

// NewEngine creates an engine with all dependencies.
func NewEngine(ctx context.Context, cfg EngineConfig) (*Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	registry, err := venue.NewRegistry(cfg.VenueConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load venue registry: %w", err)
	}

	book, err := ledger.LoadBookFromJSON(cfg.BookConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger book: %w", err)
	}

	e := &Engine{
		book:      book,
		registry:  registry,
		minProfit: cfg.MinProfit,
		logger:    cfg.Logger,
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		e.tradeCache = cache.NewRedisCacheFromClient(client, cfg.Logger)
		kill, err := killswitch.NewStore(client)
		if err != nil {
			return nil, fmt.Errorf("failed to create killswitch store: %w", err)
		}
		e.kill = kill
	}

	if cfg.ClickHouseAddr != "" && cfg.ClickHouseDatabase != "" {
		store, err := cache.NewClickHouseStore(ctx, cache.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
			Logger:   cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		e.tradeStore = store
	}

	return e, nil
}

// NewEngineFromEnv creates an engine using environment variables.
func NewEngineFromEnv(ctx context.Context) (*Engine, error) {
	cfg := DefaultEngineConfig()

	if v := os.Getenv("VENUE_CONFIG_PATH"); v != "" {
		cfg.VenueConfigPath = v
	}
	if v := os.Getenv("BOOK_CONFIG_PATH"); v != "" {
		cfg.BookConfigPath = v
	}
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.ClickHouseAddr = os.Getenv("CLICKHOUSE_ADDR")
	cfg.ClickHouseDatabase = os.Getenv("CLICKHOUSE_DATABASE")
	cfg.ClickHouseUsername = os.Getenv("CLICKHOUSE_USERNAME")
	cfg.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")

	if v := os.Getenv("MIN_PROFIT"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MIN_PROFIT: %w", err)
		}
		cfg.MinProfit = n
	}

	return NewEngine(ctx, cfg)
}

// BuildUnit resolves a path intent against the registry and kill switches
// into an executable unit.
func (e *Engine) BuildUnit(ctx context.Context, intent *PathIntent) (*Unit, error) {
	if intent == nil {
		return nil, fmt.Errorf("intent is nil")
	}

	home, err := solana.PublicKeyFromBase58(intent.Home)
	if err != nil {
		return nil, fmt.Errorf("invalid home account: %w", err)
	}

	hops := make([]venue.Backend, 0, len(intent.Venues))
	for _, name := range intent.Venues {
		if e.kill != nil {
			disabled, err := e.kill.IsDisabled(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("killswitch check for %s: %w", name, err)
			}
			if disabled {
				return nil, fmt.Errorf("venue %s is disabled", name)
			}
		}
		b, err := e.registry.Lookup(name)
		if err != nil {
			return nil, err
		}
		hops = append(hops, b)
	}

	minProfit := e.minProfit
	if intent.MinProfit != nil {
		minProfit = *intent.MinProfit
	}

	return NewUnit(UnitParams{
		Home:          home,
		InitialAmount: intent.AmountIn,
		Hops:          hops,
		MinProfit:     minProfit,
	})
}

// Execute runs a path intent against the live book and records the result.
// The outcome is returned for Aborted units too; err is non-nil whenever the
// unit did not commit.
func (e *Engine) Execute(ctx context.Context, intent *PathIntent) (*Outcome, error) {
	unit, err := e.BuildUnit(ctx, intent)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	outcome, execErr := unit.Execute(ctx, e.book)

	e.logger.WithFields(logrus.Fields{
		"unit":   unit.ID(),
		"path":   strings.Join(unit.Path(), ">"),
		"state":  outcome.State,
		"profit": outcome.Profit,
	}).Info("unit finished")

	e.recordTrade(ctx, intent, unit, outcome, time.Since(start))
	return outcome, execErr
}

// Simulate runs a path intent against a clone of the live book. The live
// book never sees any effect.
func (e *Engine) Simulate(ctx context.Context, intent *PathIntent) (*Outcome, error) {
	unit, err := e.BuildUnit(ctx, intent)
	if err != nil {
		return nil, err
	}
	return unit.Execute(ctx, e.book.Clone())
}

// recordTrade publishes the unit to Redis and ClickHouse, best-effort.
func (e *Engine) recordTrade(ctx context.Context, intent *PathIntent, unit *Unit, outcome *Outcome, took time.Duration) {
	ev := &models.TradeEvent{
		UnitID:      outcome.UnitID,
		Timestamp:   time.Now().UTC(),
		Path:        strings.Join(unit.Path(), ">"),
		HomeAccount: intent.Home,
		AmountIn:    intent.AmountIn,
		InitBalance: outcome.InitBalance,
		FinalBal:    outcome.FinalBalance,
		Profit:      outcome.Profit,
		HopCount:    uint8(len(intent.Venues)),
		Committed:   outcome.Committed(),
		ErrorKind:   string(outcome.ErrorKind),
		DurationMS:  took.Milliseconds(),
	}

	if e.tradeCache != nil {
		if err := e.tradeCache.AddRecentTrade(ctx, ev); err != nil {
			e.logger.WithError(err).Warn("failed to cache trade")
		}
		if err := e.tradeCache.PublishTrade(ctx, ev); err != nil {
			e.logger.WithError(err).Warn("failed to publish trade")
		}
	}
	if e.tradeStore != nil {
		if err := e.tradeStore.InsertTrade(ctx, ev); err != nil {
			e.logger.WithError(err).Warn("failed to store trade")
		}
	}
}

// Book exposes the live ledger (mirror refresh, balance endpoints).
func (e *Engine) Book() *ledger.Book { return e.book }

// Registry exposes the venue registry.
func (e *Engine) Registry() *venue.Registry { return e.registry }

// Killswitch exposes the killswitch store; nil when Redis is not configured.
func (e *Engine) Killswitch() *killswitch.Store { return e.kill }

// TradeCache exposes the trade cache; nil when Redis is not configured.
func (e *Engine) TradeCache() storage.TradeCache { return e.tradeCache }

// Venues lists registered venue names.
func (e *Engine) Venues() []string { return e.registry.Names() }

// Close cleans up storage connections.
func (e *Engine) Close() error {
	var errs []error
	if e.tradeCache != nil {
		if err := e.tradeCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trade cache close: %w", err))
		}
	}
	if e.tradeStore != nil {
		if err := e.tradeStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trade store close: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
