package table

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidColumnReference is returned when an operation names a column
	// that is absent from the table.
	ErrInvalidColumnReference = errors.New("invalid column reference")

	// ErrEmptyTable is returned when a table has no rows or no columns.
	ErrEmptyTable = errors.New("empty table")

	// ErrIncomparableValue is returned when a cell value cannot be hashed or
	// stringified deterministically.
	ErrIncomparableValue = errors.New("incomparable value")
)

// ColumnError reports an operation on a column the table does not have.
type ColumnError struct {
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("invalid column reference: %q", e.Column)
}

func (e *ColumnError) Unwrap() error {
	return ErrInvalidColumnReference
}

// ValueError reports a cell that cannot take part in equality grouping or
// composite synthesis.
type ValueError struct {
	Column string
	Row    int
	Value  any
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("incomparable value %v (%T) in column %q at row %d", e.Value, e.Value, e.Column, e.Row)
}

func (e *ValueError) Unwrap() error {
	return ErrIncomparableValue
}
