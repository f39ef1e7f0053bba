package arbengine

import (
	"context"
	"errors"
	"testing"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/ledger"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/venue"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acct() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

// scriptedVenue is a test backend that debits its source by the input and
// credits its destination with a fixed payout, recording what it saw.
type scriptedVenue struct {
	name   string
	source solana.PublicKey
	dest   solana.PublicKey
	payout uint64
	fail   error

	calls      int
	seenInputs []uint64
}

func (v *scriptedVenue) Name() string                  { return v.name }
func (v *scriptedVenue) Kind() string                  { return "scripted" }
func (v *scriptedVenue) Source() solana.PublicKey      { return v.source }
func (v *scriptedVenue) Destination() solana.PublicKey { return v.dest }

func (v *scriptedVenue) Swap(ctx context.Context, tx *ledger.Tx, amountIn uint64) error {
	v.calls++
	v.seenInputs = append(v.seenInputs, amountIn)
	if v.fail != nil {
		return v.fail
	}
	if err := tx.Debit(v.source, amountIn); err != nil {
		return err
	}
	if v.payout == 0 {
		return nil // leaves the destination untouched
	}
	return tx.Credit(v.dest, v.payout)
}

// altVenue is a second backend variant with identical behavior, for the
// substitutability property.
type altVenue struct {
	scriptedVenue
}

func (v *altVenue) Kind() string { return "scripted_alt" }

func seedBook(accounts map[solana.PublicKey]uint64) *ledger.Book {
	book := ledger.NewBook()
	for acc, bal := range accounts {
		book.SetBalance(acc, bal)
	}
	return book
}

func TestUnit_DeltaPropagation(t *testing.T) {
	home, mid := acct(), acct()
	book := seedBook(map[solana.PublicKey]uint64{home: 10_000, mid: 0})

	// Quoted size 1000, but hop 1 actually yields 900. Hop 2 must consume
	// 900, never the quote.
	hop1 := &scriptedVenue{name: "v1", source: home, dest: mid, payout: 900}
	hop2 := &scriptedVenue{name: "v2", source: mid, dest: home, payout: 1100}

	unit, err := NewUnit(UnitParams{
		Home:          home,
		InitialAmount: 1000,
		Hops:          []venue.Backend{hop1, hop2},
	})
	require.NoError(t, err)

	outcome, err := unit.Execute(context.Background(), book)
	require.NoError(t, err)

	assert.Equal(t, []uint64{1000}, hop1.seenInputs)
	assert.Equal(t, []uint64{900}, hop2.seenInputs)
	assert.Equal(t, []uint64{900, 1100}, outcome.HopDeltas)
	assert.Equal(t, StateCommitted, outcome.State)
	assert.Equal(t, uint64(100), outcome.Profit) // -1000 +1100 on home
}

func TestUnit_EqualityAborts(t *testing.T) {
	home, mid := acct(), acct()
	book := seedBook(map[solana.PublicKey]uint64{home: 1000, mid: 0})

	// Round trip returns exactly what it spent: equality is not profit.
	hop1 := &scriptedVenue{name: "v1", source: home, dest: mid, payout: 400}
	hop2 := &scriptedVenue{name: "v2", source: mid, dest: home, payout: 500}

	unit, err := NewUnit(UnitParams{
		Home:          home,
		InitialAmount: 500,
		Hops:          []venue.Backend{hop1, hop2},
	})
	require.NoError(t, err)

	outcome, err := unit.Execute(context.Background(), book)
	assert.ErrorIs(t, err, ErrUnprofitable)
	assert.Equal(t, StateAborted, outcome.State)
	assert.Equal(t, KindUnprofitable, outcome.ErrorKind)

	homeBal, _ := book.Balance(home)
	midBal, _ := book.Balance(mid)
	assert.Equal(t, uint64(1000), homeBal)
	assert.Equal(t, uint64(0), midBal)
}

func TestUnit_AllOrNothing(t *testing.T) {
	home, b, c := acct(), acct(), acct()
	book := seedBook(map[solana.PublicKey]uint64{home: 5000, b: 777, c: 42})

	venueErr := errors.New("authority mismatch")
	hop1 := &scriptedVenue{name: "v1", source: home, dest: b, payout: 600}
	hop2 := &scriptedVenue{name: "v2", source: b, dest: c, payout: 700}
	hop3 := &scriptedVenue{name: "v3", source: c, dest: home, fail: venueErr}

	unit, err := NewUnit(UnitParams{
		Home:          home,
		InitialAmount: 500,
		Hops:          []venue.Backend{hop1, hop2, hop3},
	})
	require.NoError(t, err)

	outcome, err := unit.Execute(context.Background(), book)
	assert.ErrorIs(t, err, venueErr)
	assert.Equal(t, StateAborted, outcome.State)
	assert.Equal(t, KindBackendExecutionFailed, outcome.ErrorKind)

	var hopErr *HopError
	require.ErrorAs(t, err, &hopErr)
	assert.Equal(t, 2, hopErr.Index)
	assert.Equal(t, "v3", hopErr.Venue)

	// No balance touched by the unit differs from its pre-unit value.
	for acc, want := range map[solana.PublicKey]uint64{home: 5000, b: 777, c: 42} {
		got, _ := book.Balance(acc)
		assert.Equal(t, want, got)
	}
}

func TestUnit_ThreeHopCycleCommits(t *testing.T) {
	// A -> B -> C -> A with measured outputs 99, 150, 41000. The home
	// account starts at 40000, spends all of it on hop 1, and receives
	// 41000 on hop 3: strictly profitable.
	home, b, c := acct(), acct(), acct()
	book := seedBook(map[solana.PublicKey]uint64{home: 40_000, b: 0, c: 0})

	hop1 := &scriptedVenue{name: "a-b", source: home, dest: b, payout: 99}
	hop2 := &scriptedVenue{name: "b-c", source: b, dest: c, payout: 150}
	hop3 := &scriptedVenue{name: "c-a", source: c, dest: home, payout: 41_000}

	unit, err := NewUnit(UnitParams{
		Home:          home,
		InitialAmount: 40_000,
		Hops:          []venue.Backend{hop1, hop2, hop3},
	})
	require.NoError(t, err)

	outcome, err := unit.Execute(context.Background(), book)
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, outcome.State)
	assert.Equal(t, uint64(40_000), outcome.InitBalance)
	assert.Equal(t, uint64(41_000), outcome.FinalBalance)
	assert.Equal(t, uint64(1_000), outcome.Profit)
	assert.Equal(t, []uint64{99, 150, 41_000}, outcome.HopDeltas)

	// Hops ran exactly once each, in order of their inputs.
	assert.Equal(t, []uint64{40_000}, hop1.seenInputs)
	assert.Equal(t, []uint64{99}, hop2.seenInputs)
	assert.Equal(t, []uint64{150}, hop3.seenInputs)
}

func TestUnit_NonPositiveOutputAborts(t *testing.T) {
	home, mid := acct(), acct()
	book := seedBook(map[solana.PublicKey]uint64{home: 1000, mid: 50})

	// Hop 1 consumes the input but pays nothing out.
	hop1 := &scriptedVenue{name: "v1", source: home, dest: mid, payout: 0}
	hop2 := &scriptedVenue{name: "v2", source: mid, dest: home, payout: 9999}

	unit, err := NewUnit(UnitParams{
		Home:          home,
		InitialAmount: 500,
		Hops:          []venue.Backend{hop1, hop2},
	})
	require.NoError(t, err)

	outcome, err := unit.Execute(context.Background(), book)
	assert.ErrorIs(t, err, ErrNonPositiveOutput)
	assert.Equal(t, StateAborted, outcome.State)
	assert.Equal(t, KindNonPositiveOutput, outcome.ErrorKind)

	// Later hops never ran.
	assert.Equal(t, 0, hop2.calls)

	homeBal, _ := book.Balance(home)
	assert.Equal(t, uint64(1000), homeBal)
}

func TestUnit_BackendSubstitutability(t *testing.T) {
	run := func(mk func(name string, src, dst solana.PublicKey, payout uint64) venue.Backend) *Outcome {
		home, mid := acct(), acct()
		book := seedBook(map[solana.PublicKey]uint64{home: 10_000, mid: 0})

		unit, err := NewUnit(UnitParams{
			Home:          home,
			InitialAmount: 1000,
			Hops: []venue.Backend{
				mk("h1", home, mid, 950),
				mk("h2", mid, home, 1200),
			},
		})
		require.NoError(t, err)

		outcome, err := unit.Execute(context.Background(), book)
		require.NoError(t, err)
		return outcome
	}

	a := run(func(name string, src, dst solana.PublicKey, payout uint64) venue.Backend {
		return &scriptedVenue{name: name, source: src, dest: dst, payout: payout}
	})
	b := run(func(name string, src, dst solana.PublicKey, payout uint64) venue.Backend {
		return &altVenue{scriptedVenue{name: name, source: src, dest: dst, payout: payout}}
	})

	// Identical deltas => identical sequencer and guard behavior, whatever
	// variant executed the hops.
	assert.Equal(t, a.State, b.State)
	assert.Equal(t, a.Profit, b.Profit)
	assert.Equal(t, a.HopDeltas, b.HopDeltas)
}

func TestUnit_MinProfitMargin(t *testing.T) {
	home, mid := acct(), acct()
	book := seedBook(map[solana.PublicKey]uint64{home: 10_000, mid: 0})

	hop1 := &scriptedVenue{name: "v1", source: home, dest: mid, payout: 900}
	hop2 := &scriptedVenue{name: "v2", source: mid, dest: home, payout: 1010}

	unit, err := NewUnit(UnitParams{
		Home:          home,
		InitialAmount: 1000,
		Hops:          []venue.Backend{hop1, hop2},
		MinProfit:     50, // profit is only 10
	})
	require.NoError(t, err)

	outcome, err := unit.Execute(context.Background(), book)
	assert.ErrorIs(t, err, ErrUnprofitable)
	assert.Equal(t, StateAborted, outcome.State)

	homeBal, _ := book.Balance(home)
	assert.Equal(t, uint64(10_000), homeBal)
}

func TestNewUnit_Validation(t *testing.T) {
	home, mid := acct(), acct()
	hop1 := &scriptedVenue{name: "v1", source: home, dest: mid, payout: 1}
	hop2 := &scriptedVenue{name: "v2", source: mid, dest: home, payout: 1}

	_, err := NewUnit(UnitParams{Home: home, InitialAmount: 1, Hops: []venue.Backend{hop1, hop2}})
	assert.NoError(t, err)

	// Too short: no round trip to guard.
	_, err = NewUnit(UnitParams{Home: home, InitialAmount: 1, Hops: []venue.Backend{hop2}})
	assert.ErrorContains(t, err, "at least 2 hops")

	_, err = NewUnit(UnitParams{Home: home, InitialAmount: 0, Hops: []venue.Backend{hop1, hop2}})
	assert.ErrorContains(t, err, "initial amount")

	_, err = NewUnit(UnitParams{Home: home, InitialAmount: 1, Hops: []venue.Backend{hop2, hop1}})
	assert.ErrorContains(t, err, "home account")

	_, err = NewUnit(UnitParams{InitialAmount: 1, Hops: []venue.Backend{hop1, hop2}})
	assert.ErrorContains(t, err, "home account is required")
}
