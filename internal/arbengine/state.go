package arbengine

// SwapState carries the amount flowing between hops. It performs no
// arithmetic: each hop reads the previous hop's measured output as its input
// and overwrites it with its own measured output. Read-then-commit ordering
// is enforced; committing without a read is a contract violation.
//
// A SwapState belongs to exactly one unit execution and is never shared.
type SwapState struct {
	amount uint64
	read   bool
}

// NewSwapState seeds the state with the quoted initial trade size. The
// estimate is only ever used as hop 1's input; everything after that is
// measured.
func NewSwapState(initial uint64) *SwapState {
	return &SwapState{amount: initial}
}

// Read consumes the current amount as the next hop's input.
func (s *SwapState) Read() uint64 {
	s.read = true
	return s.amount
}

// Commit overwrites the amount with a hop's measured output. The prior value
// must have been consumed by Read first.
func (s *SwapState) Commit(amount uint64) error {
	if !s.read {
		return ErrStateMisuse
	}
	s.amount = amount
	s.read = false
	return nil
}

// Amount returns the current amount without consuming it.
func (s *SwapState) Amount() uint64 {
	return s.amount
}
