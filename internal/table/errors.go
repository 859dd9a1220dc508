package table

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownColumn indicates a requested column is absent from the table.
	// This is a caller configuration error and fails fast.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrMalformedTimestamp indicates a timestamp field that cannot be parsed
	// where chronological ordering is required. Rows with malformed timestamps
	// are excluded from time-ordered computations, never coerced.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrInsufficientData indicates fewer rows than the requested window or
	// fold configuration needs.
	ErrInsufficientData = errors.New("insufficient data")
)

// UnknownColumnError wraps ErrUnknownColumn with the offending column name.
func UnknownColumnError(column string) error {
	return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
}
