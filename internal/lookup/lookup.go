// Package lookup implements the per-node neighbor table of the skip graph:
// one left and one right slot for each of Levels levels.
package lookup

import (
	"errors"
	"fmt"

	"skipgraph/internal/model"
)

const (
	// Levels is the height of every lookup table. It bounds the overlay to
	// 2^Levels nodes, far beyond any realistic deployment.
	Levels = 32

	// HopLimit caps the number of forwards a single search may take.
	HopLimit = 2 * Levels
)

// Entry is one populated slot of a table, as reported by Neighbors.
type Entry struct {
	Level     int
	Direction model.Direction
	Identity  model.Identity
}

// Table is the neighbor table contract. Implementations are safe for
// concurrent use; handles are shared, not copied.
type Table interface {
	// Owner returns the identity the table was built for.
	Owner() model.Identity

	// GetEntry returns the neighbor at (level, direction), if any.
	GetEntry(level int, dir model.Direction) (model.Identity, bool, error)

	// UpdateEntry replaces the slot at (level, direction) with n. It fails
	// with an InvariantViolationError when n is the owner itself, when the
	// membership vector prefix is too short for the level, or when n sits on
	// the wrong side of the owner.
	UpdateEntry(level int, dir model.Direction, n model.Identity) error

	// RemoveEntry clears the slot at (level, direction) and returns the
	// previous neighbor, if any.
	RemoveEntry(level int, dir model.Direction) (model.Identity, bool, error)

	// Neighbors returns a point-in-time snapshot of all populated slots,
	// lowest level first, left before right.
	Neighbors() ([]Entry, error)

	// Equal reports structural equality of the two tables. Test use only.
	Equal(other Table) bool
}

// InvariantViolationError reports a rejected table mutation.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("lookup table invariant violation: %s", e.Reason)
}

func invariantViolation(format string, args ...interface{}) error {
	return &InvariantViolationError{Reason: fmt.Sprintf(format, args...)}
}

// IsInvariantViolation reports whether err is an InvariantViolationError.
func IsInvariantViolation(err error) bool {
	var iv *InvariantViolationError
	return errors.As(err, &iv)
}
