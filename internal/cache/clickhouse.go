package cache

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/models"
	"github.com/sirupsen/logrus"
)

// ClickHouseStore is the durable append-only trade history.
type ClickHouseStore struct {
	conn   driver.Conn
	logger *logrus.Logger
}

// ClickHouseConfig holds connection settings for the trade store.
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
	Logger   *logrus.Logger
}

// NewClickHouseStore connects and pings before returning.
func NewClickHouseStore(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	cfg.Logger.WithFields(logrus.Fields{
		"addr":     cfg.Addr,
		"database": cfg.Database,
	}).Info("connected to ClickHouse")

	return &ClickHouseStore{conn: conn, logger: cfg.Logger}, nil
}

// InsertTrade appends one trade row to arb.trades.
func (c *ClickHouseStore) InsertTrade(ctx context.Context, trade *models.TradeEvent) error {
	query := `
		INSERT INTO trades (
			unit_id, timestamp, path, home_account,
			amount_in, init_balance, final_balance, profit,
			hop_count, committed, error_kind, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		trade.UnitID,
		trade.Timestamp,
		trade.Path,
		trade.HomeAccount,
		trade.AmountIn,
		trade.InitBalance,
		trade.FinalBal,
		trade.Profit,
		trade.HopCount,
		trade.Committed,
		trade.ErrorKind,
		trade.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close releases the connection.
func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
