package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Venue and ledger seed configs
	VenueConfigPath string
	BookConfigPath  string

	// RPC settings (balance mirror)
	RPCUrl        string
	PollInterval  time.Duration
	MirrorRPS     float64
	MirrorEnabled bool

	// Redis settings
	RedisAddr string

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// API server settings
	APIAddr string
	APIKey  string
	DevMode bool

	// Advisor settings
	OpenRouterAPIKey string
	OpenRouterModel  string

	// Jupiter reference quotes
	JupiterBaseURL string
	JupiterAPIKey  string

	// MinProfit is the default margin in raw home-asset units a unit must
	// clear beyond strict profitability.
	MinProfit uint64
}

func Load() *Config {
	return &Config{
		// Venues and ledger
		VenueConfigPath: getEnv("VENUE_CONFIG_PATH", "internal/config/venues.json"),
		BookConfigPath:  getEnv("BOOK_CONFIG_PATH", "internal/config/book.json"),

		// RPC
		RPCUrl:        getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		PollInterval:  getDurationEnv("POLL_INTERVAL", 5*time.Second),
		MirrorRPS:     getFloatEnv("MIRROR_RPS", 10),
		MirrorEnabled: getBoolEnv("MIRROR_ENABLED", false),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "arb"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// HTTP
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 5),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 2*time.Second),

		// API server
		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		// Advisor
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:  getEnv("OPENROUTER_MODEL", "openai/gpt-4.1-mini"),

		// Jupiter
		JupiterBaseURL: getEnv("JUPITER_BASE_URL", ""),
		JupiterAPIKey:  getEnv("JUPITER_API_KEY", ""),

		// Guard margin
		MinProfit: getUint64Env("MIN_PROFIT", 0),
	}
}

// Validate checks settings that have no usable fallback.
func (c *Config) Validate() error {
	if c.VenueConfigPath == "" {
		return fmt.Errorf("VENUE_CONFIG_PATH must not be empty")
	}
	if c.BookConfigPath == "" {
		return fmt.Errorf("BOOK_CONFIG_PATH must not be empty")
	}
	if c.APIAddr == "" {
		return fmt.Errorf("API_ADDR must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.MirrorRPS <= 0 {
		return fmt.Errorf("MIRROR_RPS must be positive")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getUint64Env(key string, defaultVal uint64) uint64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseUint(val, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
