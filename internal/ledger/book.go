package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrUnknownAccount    = errors.New("unknown account")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Book is an in-memory token ledger: account -> raw balance.
//
// A Book is the atomic-unit boundary for the arbitrage core. All hop effects
// happen inside Atomic; if the callback errors, every balance is restored to
// its pre-unit value. A single mutex serializes units, so exactly one unit
// owns the book for its whole duration.
type Book struct {
	mu       sync.Mutex
	balances map[solana.PublicKey]uint64
}

func NewBook() *Book {
	return &Book{balances: make(map[solana.PublicKey]uint64)}
}

// SetBalance creates or overwrites an account balance. Used for seeding and
// for mirroring on-chain state; never called from inside a unit.
func (b *Book) SetBalance(account solana.PublicKey, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[account] = amount
}

// Balance reads an account balance outside any atomic scope.
func (b *Book) Balance(account solana.PublicKey) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balance(account)
}

// Clone returns an independent copy of the book. Simulations run against a
// clone so the live book never sees their effects.
func (b *Book) Clone() *Book {
	b.mu.Lock()
	defer b.mu.Unlock()

	balances := make(map[solana.PublicKey]uint64, len(b.balances))
	for acc, amt := range b.balances {
		balances[acc] = amt
	}
	return &Book{balances: balances}
}

// Accounts returns all known account keys.
func (b *Book) Accounts() []solana.PublicKey {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]solana.PublicKey, 0, len(b.balances))
	for acc := range b.balances {
		out = append(out, acc)
	}
	return out
}

// Atomic runs fn as one all-or-nothing unit. The book lock is held for the
// entire call: no other unit (or external reader) can observe intermediate
// state. If fn returns an error, every balance is rolled back.
func (b *Book) Atomic(ctx context.Context, fn func(tx *Tx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := make(map[solana.PublicKey]uint64, len(b.balances))
	for acc, amt := range b.balances {
		snapshot[acc] = amt
	}

	if err := fn(&Tx{book: b}); err != nil {
		b.balances = snapshot
		return err
	}
	return nil
}

// Tx is a handle into an in-flight atomic scope. It is only valid for the
// duration of the Atomic callback that produced it.
type Tx struct {
	book *Book
}

// Balance reads an account balance inside the atomic scope.
func (t *Tx) Balance(account solana.PublicKey) (uint64, error) {
	return t.book.balance(account)
}

// Credit adds amount to an account, creating it if needed.
func (t *Tx) Credit(account solana.PublicKey, amount uint64) error {
	cur := t.book.balances[account]
	if cur > math.MaxUint64-amount {
		return fmt.Errorf("credit %d to %s: balance overflow", amount, account)
	}
	t.book.balances[account] = cur + amount
	return nil
}

// Debit removes amount from an account.
func (t *Tx) Debit(account solana.PublicKey, amount uint64) error {
	cur, ok := t.book.balances[account]
	if !ok {
		return fmt.Errorf("debit from %s: %w", account, ErrUnknownAccount)
	}
	if cur < amount {
		return fmt.Errorf("debit %d from %s (balance %d): %w", amount, account, cur, ErrInsufficientFunds)
	}
	t.book.balances[account] = cur - amount
	return nil
}

func (b *Book) balance(account solana.PublicKey) (uint64, error) {
	amt, ok := b.balances[account]
	if !ok {
		return 0, fmt.Errorf("balance of %s: %w", account, ErrUnknownAccount)
	}
	return amt, nil
}
