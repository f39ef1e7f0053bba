package arbengine

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/ledger"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/venue"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// UnitState is the terminal state of an atomic unit. A unit reaches exactly
// one of these, never both and never partially.
type UnitState string

const (
	StateCommitted UnitState = "committed"
	StateAborted   UnitState = "aborted"
)

// MinHops is the smallest path a unit accepts. Zero- and one-hop paths have
// no round trip to guard, so they are rejected at construction.
const MinHops = 2

// UnitParams fixes a unit at construction time. The hop order is
// caller-supplied and never reordered or retried.
type UnitParams struct {
	// Home is the account holding the asset that begins and ends the path;
	// profitability is judged on its balance.
	Home solana.PublicKey

	// InitialAmount is the quoted size for hop 1. Only hop 1 ever sees it.
	InitialAmount uint64

	// Hops are the venue backends in execution order. The last hop must pay
	// into Home.
	Hops []venue.Backend

	// MinProfit is an additional margin the round trip must clear beyond
	// strict profitability. Zero means strict inequality only.
	MinProfit uint64
}

// Unit is one atomic arbitrage attempt: an ordered hop sequence plus the
// trailing profitability guard, committed or discarded as a whole.
type Unit struct {
	id     string
	params UnitParams
}

// NewUnit validates the path shape and returns an executable unit.
func NewUnit(params UnitParams) (*Unit, error) {
	if params.Home.IsZero() {
		return nil, fmt.Errorf("home account is required")
	}
	if params.InitialAmount == 0 {
		return nil, fmt.Errorf("initial amount must be > 0")
	}
	if len(params.Hops) < MinHops {
		return nil, fmt.Errorf("path needs at least %d hops, got %d", MinHops, len(params.Hops))
	}
	for i, h := range params.Hops {
		if h == nil {
			return nil, fmt.Errorf("hop %d is nil", i)
		}
	}
	last := params.Hops[len(params.Hops)-1]
	if !last.Destination().Equals(params.Home) {
		return nil, fmt.Errorf("last hop (%s) must pay into the home account", last.Name())
	}

	return &Unit{id: newUnitID(), params: params}, nil
}

// ID returns the unit's identifier.
func (u *Unit) ID() string { return u.id }

// Path returns the venue names in execution order.
func (u *Unit) Path() []string {
	out := make([]string, len(u.params.Hops))
	for i, h := range u.params.Hops {
		out[i] = h.Name()
	}
	return out
}

// Outcome is the single result a unit produces: its terminal state plus, on
// failure, the error kind. Hop deltas are carried for observability.
type Outcome struct {
	UnitID       string    `json:"unit_id"`
	State        UnitState `json:"state"`
	InitBalance  uint64    `json:"init_balance"`
	FinalBalance uint64    `json:"final_balance"`
	Profit       uint64    `json:"profit"`
	HopDeltas    []uint64  `json:"hop_deltas"`
	ErrorKind    ErrorKind `json:"error_kind,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Committed reports whether the unit reached its success state.
func (o *Outcome) Committed() bool { return o.State == StateCommitted }

// Execute runs the unit inside the book's atomic scope. The home balance is
// snapshotted strictly before hop 1 and read again strictly after the last
// hop; the guard requires the final balance to strictly exceed the initial
// one. Any hop failure or a failed guard aborts the unit and the book
// discards every effect.
func (u *Unit) Execute(ctx context.Context, book *ledger.Book) (*Outcome, error) {
	outcome := &Outcome{UnitID: u.id, State: StateAborted}

	err := book.Atomic(ctx, func(tx *ledger.Tx) error {
		initBalance, err := tx.Balance(u.params.Home)
		if err != nil {
			return fmt.Errorf("home balance: %w", err)
		}
		outcome.InitBalance = initBalance

		state := NewSwapState(u.params.InitialAmount)
		for i, backend := range u.params.Hops {
			delta, err := runHop(ctx, tx, state, i, backend)
			if err != nil {
				return err
			}
			outcome.HopDeltas = append(outcome.HopDeltas, delta)
		}

		finalBalance, err := tx.Balance(u.params.Home)
		if err != nil {
			return fmt.Errorf("home balance: %w", err)
		}
		outcome.FinalBalance = finalBalance

		if finalBalance <= initBalance {
			return fmt.Errorf("%w: final %d <= initial %d", ErrUnprofitable, finalBalance, initBalance)
		}
		profit := finalBalance - initBalance
		if profit < u.params.MinProfit {
			return fmt.Errorf("%w: profit %d below margin %d", ErrUnprofitable, profit, u.params.MinProfit)
		}
		outcome.Profit = profit
		return nil
	})
	if err != nil {
		outcome.ErrorKind = KindOf(err)
		outcome.Error = err.Error()
		return outcome, err
	}

	outcome.State = StateCommitted
	return outcome, nil
}

func newUnitID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return "unit_" + base58.Encode(buf)
}
