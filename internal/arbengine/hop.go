package arbengine

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/ledger"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/venue"
)

// runHop executes one hop: read the state, measure the destination balance
// around the backend call, and commit the measured delta. This is the same
// algorithm for every venue; only the backend dispatched in the middle
// varies.
//
// Measuring the delta instead of trusting anything the backend could report
// makes every hop slippage-correct regardless of the venue's internal
// rounding or fee model.
func runHop(ctx context.Context, tx *ledger.Tx, state *SwapState, index int, backend venue.Backend) (uint64, error) {
	amountIn := state.Read()
	dest := backend.Destination()

	pre, err := tx.Balance(dest)
	if err != nil {
		return 0, &HopError{Index: index, Venue: backend.Name(), Err: fmt.Errorf("destination balance: %w", err)}
	}

	if err := backend.Swap(ctx, tx, amountIn); err != nil {
		return 0, &HopError{Index: index, Venue: backend.Name(), Err: err}
	}

	post, err := tx.Balance(dest)
	if err != nil {
		return 0, &HopError{Index: index, Venue: backend.Name(), Err: fmt.Errorf("destination balance: %w", err)}
	}

	if post <= pre {
		return 0, &HopError{
			Index: index,
			Venue: backend.Name(),
			Err:   fmt.Errorf("%w: balance %d -> %d", ErrNonPositiveOutput, pre, post),
		}
	}

	delta := post - pre
	if err := state.Commit(delta); err != nil {
		return 0, &HopError{Index: index, Venue: backend.Name(), Err: err}
	}
	return delta, nil
}
