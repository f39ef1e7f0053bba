package mirror

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/ledger"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/rpc"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Poller periodically refreshes a ledger book from on-chain token account
// balances. Individual RPC reads are throttled through a token-bucket
// limiter so a large account set does not trip provider rate limits.
type Poller struct {
	client       *rpc.Client
	book         *ledger.Book
	accounts     []solana.PublicKey
	pollInterval time.Duration
	limiter      *rate.Limiter
	logger       *logrus.Logger

	mu      sync.Mutex
	running bool
}

// PollerConfig holds configuration for the balance poller
type PollerConfig struct {
	RPCClient    *rpc.Client
	Book         *ledger.Book
	Accounts     []solana.PublicKey
	PollInterval time.Duration
	RequestsPerS float64
	Logger       *logrus.Logger
}

// NewPoller creates a new balance mirror poller
func NewPoller(cfg PollerConfig) (*Poller, error) {
	if cfg.RPCClient == nil {
		return nil, fmt.Errorf("rpc client is required")
	}
	if cfg.Book == nil {
		return nil, fmt.Errorf("ledger book is required")
	}
	if len(cfg.Accounts) == 0 {
		return nil, fmt.Errorf("at least one account to mirror is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.RequestsPerS == 0 {
		cfg.RequestsPerS = 10
	}

	return &Poller{
		client:       cfg.RPCClient,
		book:         cfg.Book,
		accounts:     cfg.Accounts,
		pollInterval: cfg.PollInterval,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerS), 1),
		logger:       cfg.Logger,
	}, nil
}

// Start begins the refresh loop and blocks until the context is cancelled
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}
	p.running = true
	p.mu.Unlock()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.logger.WithFields(logrus.Fields{
		"interval": p.pollInterval,
		"accounts": len(p.accounts),
	}).Info("starting balance mirror")

	// Populate once before the first tick so the book is usable immediately.
	if err := p.refresh(ctx); err != nil {
		p.logger.WithError(err).Error("initial refresh failed")
	}

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.running = false
			p.mu.Unlock()
			return ctx.Err()

		case <-ticker.C:
			if err := p.refresh(ctx); err != nil {
				p.logger.WithError(err).Error("refresh error")
			}
		}
	}
}

// Stop stops the poller
func (p *Poller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	return nil
}

// refresh reads every mirrored account and writes its balance into the book
func (p *Poller) refresh(ctx context.Context) error {
	var failed int

	for _, account := range p.accounts {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}

		balance, err := p.client.GetTokenAccountBalance(ctx, account)
		if err != nil {
			failed++
			p.logger.WithError(err).WithField("account", account.String()[:8]).Warn("balance read failed")
			continue
		}

		p.book.SetBalance(account, balance)
	}

	p.logger.WithFields(logrus.Fields{
		"refreshed": len(p.accounts) - failed,
		"failed":    failed,
	}).Debug("mirror refresh complete")

	if failed == len(p.accounts) {
		return fmt.Errorf("all %d balance reads failed", failed)
	}
	return nil
}
