package venue

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/ledger"
	"github.com/gagliardetto/solana-go"
)

const KindRateDesk = "rate_desk"

// RateDesk is an RFQ-style venue: a desk quotes a fixed num/den rate with a
// bps fee and fills from a finite inventory account. It has a completely
// different account layout and arithmetic than the AMM backend; upstream
// code only ever sees the Backend interface.
type RateDesk struct {
	name string

	sink      solana.PublicKey // desk account receiving the input asset
	inventory solana.PublicKey // desk account paying the output asset

	source      solana.PublicKey
	destination solana.PublicKey

	rateNumerator   uint64
	rateDenominator uint64
	feeBps          uint16
}

// NewRateDesk validates the account set and quote and returns the backend.
func NewRateDesk(
	name string,
	sink, inventory, source, destination solana.PublicKey,
	rateNumerator, rateDenominator uint64,
	feeBps uint16,
) (*RateDesk, error) {
	for _, acc := range []struct {
		key  solana.PublicKey
		what string
	}{
		{sink, "sink"},
		{inventory, "inventory"},
		{source, "source"},
		{destination, "destination"},
	} {
		if acc.key.IsZero() {
			return nil, fmt.Errorf("desk %s: %s is zero: %w", name, acc.what, ErrAccountMismatch)
		}
	}
	if source.Equals(destination) {
		return nil, fmt.Errorf("desk %s: source and destination must differ: %w", name, ErrAccountMismatch)
	}
	if feeBps >= 10000 {
		return nil, fmt.Errorf("desk %s: fee %d bps", name, feeBps)
	}

	return &RateDesk{
		name:            name,
		sink:            sink,
		inventory:       inventory,
		source:          source,
		destination:     destination,
		rateNumerator:   rateNumerator,
		rateDenominator: rateDenominator,
		feeBps:          feeBps,
	}, nil
}

func (d *RateDesk) Name() string                  { return d.name }
func (d *RateDesk) Kind() string                  { return KindRateDesk }
func (d *RateDesk) Source() solana.PublicKey      { return d.source }
func (d *RateDesk) Destination() solana.PublicKey { return d.destination }

// Swap fills amountIn at the quoted rate out of the desk's inventory.
func (d *RateDesk) Swap(ctx context.Context, tx *ledger.Tx, amountIn uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if d.rateNumerator == 0 || d.rateDenominator == 0 {
		return fmt.Errorf("desk %s has no live quote: %w", d.name, ErrStaleState)
	}

	out, err := rateDeskOutput(amountIn, d.rateNumerator, d.rateDenominator, d.feeBps)
	if err != nil {
		return fmt.Errorf("desk %s: %w", d.name, err)
	}

	inv, err := tx.Balance(d.inventory)
	if err != nil {
		return fmt.Errorf("desk %s inventory: %w", d.name, ErrAccountMismatch)
	}
	if out == 0 || out > inv {
		return fmt.Errorf("desk %s cannot fill %d (inventory %d): %w", d.name, amountIn, inv, ErrInsufficientLiquidity)
	}

	if err := tx.Debit(d.source, amountIn); err != nil {
		return fmt.Errorf("desk %s: %w", d.name, err)
	}
	if err := tx.Credit(d.sink, amountIn); err != nil {
		return fmt.Errorf("desk %s: %w", d.name, err)
	}
	if err := tx.Debit(d.inventory, out); err != nil {
		return fmt.Errorf("desk %s: %w", d.name, err)
	}
	if err := tx.Credit(d.destination, out); err != nil {
		return fmt.Errorf("desk %s: %w", d.name, err)
	}
	return nil
}
