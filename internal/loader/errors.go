package loader

import (
	"errors"
	"fmt"
)

// ErrLoadFailure marks an input table that cannot be read at all.
// Callers treat it as fatal.
var ErrLoadFailure = errors.New("load failure")

// MalformedRowError describes one rejected input row.
type MalformedRowError struct {
	Row    int    `json:"row"` // 1-based data row, header excluded
	Column string `json:"column"`
	Value  string `json:"value"`
	Err    error  `json:"-"`
	Reason string `json:"reason"`
}

func (e *MalformedRowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("row %d: column %q value %q: %s", e.Row, e.Column, e.Value, e.Reason)
}

func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

func malformed(row int, column, value string, err error) MalformedRowError {
	return MalformedRowError{Row: row, Column: column, Value: value, Err: err, Reason: err.Error()}
}

// loadFailure wraps err as a fatal load error.
func loadFailure(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrLoadFailure, path, err)
}
