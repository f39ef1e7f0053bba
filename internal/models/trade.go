package models

import "time"

// TradeEvent is one executed (or aborted) arbitrage unit as published to
// Redis and stored in ClickHouse.
type TradeEvent struct {
	UnitID      string    `json:"unit_id"`
	Timestamp   time.Time `json:"timestamp"`
	Path        string    `json:"path"` // venue names joined with ">"
	HomeAccount string    `json:"home_account"`
	AmountIn    uint64    `json:"amount_in"`
	InitBalance uint64    `json:"init_balance"`
	FinalBal    uint64    `json:"final_balance"`
	Profit      uint64    `json:"profit"`
	HopCount    uint8     `json:"hop_count"`
	Committed   bool      `json:"committed"`
	ErrorKind   string    `json:"error_kind"` // empty when committed
	DurationMS  int64     `json:"duration_ms"`
}
