package csvfile

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat indicates that a CSV file has an invalid or corrupted format.
type ErrInvalidFormat struct {
	Path    string // File path, if known
	Line    int    // 1-based line number, 0 if not applicable
	Details string // What was wrong
	Err     error  // Underlying error, if any
}

func (e *ErrInvalidFormat) Error() string {
	msg := "invalid CSV"
	if e.Path != "" {
		msg += fmt.Sprintf(" %q", e.Path)
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ErrInvalidFormat) Unwrap() error {
	return e.Err
}

// IsFormatError returns true if the error is a format error.
func IsFormatError(err error) bool {
	var formatErr *ErrInvalidFormat
	return errors.As(err, &formatErr)
}
