package venue

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/ledger"
	"github.com/gagliardetto/solana-go"
)

const KindConstantProduct = "constant_product"

// ConstProductPool is a constant-product AMM venue (Orca legacy / SPL token
// swap style). The pool's two vaults live on the same ledger as the trader
// accounts, so a swap is two transfers: input into vaultIn, output out of
// vaultOut.
type ConstProductPool struct {
	name      string
	authority solana.PublicKey

	vaultIn  solana.PublicKey // pool vault receiving the input asset
	vaultOut solana.PublicKey // pool vault paying the output asset

	source      solana.PublicKey // trader account debited by amountIn
	destination solana.PublicKey // trader account credited with the output

	feeNumerator   uint64
	feeDenominator uint64
}

// NewConstProductPool validates the account set and returns the backend.
func NewConstProductPool(
	name string,
	authority, vaultIn, vaultOut, source, destination solana.PublicKey,
	feeNumerator, feeDenominator uint64,
) (*ConstProductPool, error) {
	for _, acc := range []struct {
		key  solana.PublicKey
		what string
	}{
		{authority, "authority"},
		{vaultIn, "vault_in"},
		{vaultOut, "vault_out"},
		{source, "source"},
		{destination, "destination"},
	} {
		if acc.key.IsZero() {
			return nil, fmt.Errorf("pool %s: %s is zero: %w", name, acc.what, ErrAccountMismatch)
		}
	}
	if vaultIn.Equals(vaultOut) {
		return nil, fmt.Errorf("pool %s: vaults must differ: %w", name, ErrAccountMismatch)
	}
	if source.Equals(destination) {
		return nil, fmt.Errorf("pool %s: source and destination must differ: %w", name, ErrAccountMismatch)
	}
	if feeDenominator == 0 || feeNumerator >= feeDenominator {
		return nil, fmt.Errorf("pool %s: invalid fee %d/%d", name, feeNumerator, feeDenominator)
	}

	return &ConstProductPool{
		name:           name,
		authority:      authority,
		vaultIn:        vaultIn,
		vaultOut:       vaultOut,
		source:         source,
		destination:    destination,
		feeNumerator:   feeNumerator,
		feeDenominator: feeDenominator,
	}, nil
}

func (p *ConstProductPool) Name() string                  { return p.name }
func (p *ConstProductPool) Kind() string                  { return KindConstantProduct }
func (p *ConstProductPool) Source() solana.PublicKey      { return p.source }
func (p *ConstProductPool) Destination() solana.PublicKey { return p.destination }

// Swap moves amountIn from the trader source into vaultIn and pays the
// constant-product output from vaultOut to the trader destination.
func (p *ConstProductPool) Swap(ctx context.Context, tx *ledger.Tx, amountIn uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	reserveIn, err := tx.Balance(p.vaultIn)
	if err != nil {
		return fmt.Errorf("pool %s vault_in: %w", p.name, ErrAccountMismatch)
	}
	reserveOut, err := tx.Balance(p.vaultOut)
	if err != nil {
		return fmt.Errorf("pool %s vault_out: %w", p.name, ErrAccountMismatch)
	}
	if reserveIn == 0 || reserveOut == 0 {
		return fmt.Errorf("pool %s reserves %d/%d: %w", p.name, reserveIn, reserveOut, ErrStaleState)
	}

	out, err := constProductOutput(amountIn, reserveIn, reserveOut, p.feeNumerator, p.feeDenominator)
	if err != nil {
		return fmt.Errorf("pool %s: %w", p.name, err)
	}
	if out == 0 || out >= reserveOut {
		return fmt.Errorf("pool %s cannot fill %d: %w", p.name, amountIn, ErrInsufficientLiquidity)
	}

	if err := tx.Debit(p.source, amountIn); err != nil {
		return fmt.Errorf("pool %s: %w", p.name, err)
	}
	if err := tx.Credit(p.vaultIn, amountIn); err != nil {
		return fmt.Errorf("pool %s: %w", p.name, err)
	}
	if err := tx.Debit(p.vaultOut, out); err != nil {
		return fmt.Errorf("pool %s: %w", p.name, err)
	}
	if err := tx.Credit(p.destination, out); err != nil {
		return fmt.Errorf("pool %s: %w", p.name, err)
	}
	return nil
}
