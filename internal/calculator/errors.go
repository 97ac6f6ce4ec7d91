package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/settleup/internal/money"
)

var (
	// ErrInvalidInput marks arguments rejected before any computation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDataConsistency marks a balance set that does not sum to zero.
	ErrDataConsistency = errors.New("data consistency fault")
)

// ImbalanceError reports that a set of balances drawn from one ledger does
// not net to zero within the allowed tolerance.
type ImbalanceError struct {
	Sum       money.Cents
	Tolerance money.Cents
}

func (e *ImbalanceError) Error() string {
	return fmt.Sprintf("%s: balances sum to %s (tolerance %s)", ErrDataConsistency, e.Sum, e.Tolerance)
}

// Is lets errors.Is match ErrDataConsistency.
func (e *ImbalanceError) Is(target error) bool {
	return target == ErrDataConsistency
}

// RoundingViolationError means a distribution lost or duplicated a cent.
// It indicates a bug and is never expected in practice.
type RoundingViolationError struct {
	Total money.Cents
	Sum   money.Cents
}

func (e *RoundingViolationError) Error() string {
	return fmt.Sprintf("rounding violation: distributed %s of %s", e.Sum, e.Total)
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
