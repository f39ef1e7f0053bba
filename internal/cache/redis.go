package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/constants"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisCache keeps the capped recent-trades list and fans executed units out
// over pub/sub.
type RedisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

// RedisConfig holds connection settings for the trade cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Logger   *logrus.Logger
}

// NewRedisCache connects and pings before returning.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisCacheFromClient(client, cfg.Logger), nil
}

// NewRedisCacheFromClient wraps an existing client (shared with other redis
// consumers like the killswitch store).
func NewRedisCacheFromClient(client *redis.Client, logger *logrus.Logger) *RedisCache {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisCache{client: client, logger: logger}
}

// AddRecentTrade pushes the trade and trims the list to its cap.
func (r *RedisCache) AddRecentTrade(ctx context.Context, trade *models.TradeEvent) error {
	data, err := json.Marshal(trade)
	if err != nil {
		return fmt.Errorf("marshal trade: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, constants.RedisKeyRecentTrades, data)
	pipe.LTrim(ctx, constants.RedisKeyRecentTrades, 0, constants.MaxRecentTrades-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push recent trade: %w", err)
	}
	return nil
}

// GetRecentTrades returns up to limit trades, newest first.
func (r *RedisCache) GetRecentTrades(ctx context.Context, limit int64) ([]*models.TradeEvent, error) {
	if limit <= 0 || limit > constants.MaxRecentTrades {
		limit = constants.MaxRecentTrades
	}

	vals, err := r.client.LRange(ctx, constants.RedisKeyRecentTrades, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent trades: %w", err)
	}

	out := make([]*models.TradeEvent, 0, len(vals))
	for _, v := range vals {
		var t models.TradeEvent
		if err := json.Unmarshal([]byte(v), &t); err != nil {
			r.logger.WithError(err).Warn("skipping malformed trade entry")
			continue
		}
		out = append(out, &t)
	}
	return out, nil
}

// PublishTrade broadcasts the trade on the live channel.
func (r *RedisCache) PublishTrade(ctx context.Context, trade *models.TradeEvent) error {
	data, err := json.Marshal(trade)
	if err != nil {
		return fmt.Errorf("marshal trade: %w", err)
	}
	if err := r.client.Publish(ctx, constants.PubSubChannelTrades, data).Err(); err != nil {
		return fmt.Errorf("publish trade: %w", err)
	}
	return nil
}

// SubscribeTrades returns a channel of live trades. The channel closes when
// ctx is cancelled.
func (r *RedisCache) SubscribeTrades(ctx context.Context) (<-chan *models.TradeEvent, error) {
	pubsub := r.client.Subscribe(ctx, constants.PubSubChannelTrades)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe trades: %w", err)
	}

	out := make(chan *models.TradeEvent)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var t models.TradeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &t); err != nil {
					r.logger.WithError(err).Warn("skipping malformed trade message")
					continue
				}
				select {
				case out <- &t:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Ping checks connectivity.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
