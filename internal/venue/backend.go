package venue

import (
	"context"
	"errors"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/ledger"
	"github.com/gagliardetto/solana-go"
)

// Failure modes a backend may signal. Anything a backend returns aborts the
// unit that invoked it; nothing here is retried in place.
var (
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrStaleState            = errors.New("stale venue state")
	ErrAccountMismatch       = errors.New("account mismatch")
)

// Backend executes one swap against one venue's accounts.
//
// The contract is deliberately narrow: consume amountIn from the configured
// source account, leave the destination account's balance reflecting the
// trade, and return nil or an error. A backend never reports its output
// amount; the caller measures it as a balance delta, so venue-internal
// rounding and fee models cannot skew the sequenced amounts.
//
// Adding a venue means adding a new type that satisfies this interface and a
// registry entry for it. Nothing upstream changes.
type Backend interface {
	// Name is the configured instance name, e.g. "orca-sol-usdc".
	Name() string

	// Kind identifies the backend variant, e.g. "constant_product".
	Kind() string

	// Source is the trader account the input amount is consumed from.
	Source() solana.PublicKey

	// Destination is the trader account whose balance delta is the hop's
	// measured output.
	Destination() solana.PublicKey

	// Swap executes the trade inside the unit's atomic scope.
	Swap(ctx context.Context, tx *ledger.Tx, amountIn uint64) error
}
