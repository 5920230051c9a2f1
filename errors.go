package squill

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by every operation on a connection that has
// been closed, either explicitly or after a connection-fatal backend
// error.
var ErrClosed = errors.New("squill: connection is closed")

// ErrNoRows is returned by QueryRow when the query produced no rows.
var ErrNoRows = errors.New("squill: no rows in result set")

// OutOfBoundsError is returned when a column index is outside the row's
// schema. It never affects connection or statement state.
type OutOfBoundsError struct {
	Index int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("squill: column index %d out of bounds", e.Index)
}

// ColumnNotFoundError is returned when a column name does not appear in
// the row's schema. It never affects connection or statement state.
type ColumnNotFoundError struct {
	Name string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("squill: column %q not found", e.Name)
}
