package arbengine

import (
	"errors"
	"fmt"
)

// Unit-fatal error conditions. Any of these aborts the whole unit; there is
// no per-hop recovery or retry.
var (
	// ErrNonPositiveOutput: a hop's measured balance delta was zero or the
	// destination balance did not grow. No forward progress is possible.
	ErrNonPositiveOutput = errors.New("non-positive hop output")

	// ErrUnprofitable: the final home balance did not strictly exceed the
	// initial one (equality counts as unprofitable).
	ErrUnprofitable = errors.New("unprofitable")

	// ErrStateMisuse: SwapState commit without a preceding read. Indicates a
	// broken step implementation, never a market condition.
	ErrStateMisuse = errors.New("swap state misuse")
)

// ErrorKind classifies a unit failure for the outcome signal.
type ErrorKind string

const (
	KindNone                   ErrorKind = ""
	KindBackendExecutionFailed ErrorKind = "backend_execution_failed"
	KindNonPositiveOutput      ErrorKind = "non_positive_output"
	KindUnprofitable           ErrorKind = "unprofitable"
)

// KindOf maps a unit error to its kind. Hop errors that are not
// non-positive-output are by definition backend failures.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNonPositiveOutput):
		return KindNonPositiveOutput
	case errors.Is(err, ErrUnprofitable):
		return KindUnprofitable
	default:
		return KindBackendExecutionFailed
	}
}

// HopError wraps a failure at a specific hop with its position and venue.
type HopError struct {
	Index int
	Venue string
	Err   error
}

func (e *HopError) Error() string {
	return fmt.Sprintf("hop %d (%s): %v", e.Index, e.Venue, e.Err)
}

func (e *HopError) Unwrap() error { return e.Err }
