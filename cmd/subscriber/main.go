package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/cache"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/config"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

// main tails live trade events published by the engine over Redis pub/sub.
func main() {
	loadEnv()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down subscriber")
		cancel()
	}()

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	tradeCache := cache.NewRedisCacheFromClient(client, logger)
	defer tradeCache.Close()

	trades, err := tradeCache.SubscribeTrades(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to subscribe to trades")
	}

	logger.Info("subscriber running")

	for trade := range trades {
		entry := logger.WithFields(logrus.Fields{
			"unit":   trade.UnitID,
			"path":   trade.Path,
			"profit": trade.Profit,
			"took":   trade.DurationMS,
		})
		if trade.Committed {
			entry.Info("unit committed")
		} else {
			entry.WithField("kind", trade.ErrorKind).Warn("unit aborted")
		}
	}
}
