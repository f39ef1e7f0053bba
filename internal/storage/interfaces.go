package storage

import (
	"context"
	"io"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/models"
)

// TradeCache is the hot-path view of executed units: a capped recent list
// plus live pub/sub fan-out.
type TradeCache interface {
	// AddRecentTrade pushes a trade onto the recent-trades list.
	AddRecentTrade(ctx context.Context, trade *models.TradeEvent) error

	// GetRecentTrades returns the most recent trades, newest first.
	GetRecentTrades(ctx context.Context, limit int64) ([]*models.TradeEvent, error)

	// PublishTrade broadcasts a trade to live subscribers.
	PublishTrade(ctx context.Context, trade *models.TradeEvent) error

	// SubscribeTrades returns a channel of live trade events.
	SubscribeTrades(ctx context.Context) (<-chan *models.TradeEvent, error)

	// Ping checks if the cache is reachable.
	Ping(ctx context.Context) error

	io.Closer
}

// TradeStore is the durable history of every unit the engine ran, committed
// or aborted.
type TradeStore interface {
	// InsertTrade appends a trade row.
	InsertTrade(ctx context.Context, trade *models.TradeEvent) error

	// Ping checks if the store is reachable.
	Ping(ctx context.Context) error

	io.Closer
}
