package constants

// Redis keys
const (
	RedisKeyRecentTrades = "trades:recent"
)

// Redis Pub/Sub channels
const (
	PubSubChannelTrades = "trades:live"
)

// Limits
const (
	MaxRecentTrades = 100
)
