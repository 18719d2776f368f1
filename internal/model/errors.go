package model

import (
	"errors"
	"fmt"
)

// ErrUsage indicates an invalid combination of options, detected before any I/O.
type ErrUsage struct {
	Details string
}

func (e *ErrUsage) Error() string {
	return "usage: " + e.Details
}

// ErrInvalidRecord indicates a record that cannot be written to the store.
type ErrInvalidRecord struct {
	Name string
	Err  error
}

func (e *ErrInvalidRecord) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid record: %v", e.Err)
	}
	return fmt.Sprintf("invalid record %q: %v", e.Name, e.Err)
}

func (e *ErrInvalidRecord) Unwrap() error {
	return e.Err
}

// IsUsageError returns true if the error is a usage error.
func IsUsageError(err error) bool {
	var usageErr *ErrUsage
	return errors.As(err, &usageErr)
}

// IsInvalidRecord returns true if the error is an invalid record error.
func IsInvalidRecord(err error) bool {
	var invalidErr *ErrInvalidRecord
	return errors.As(err, &invalidErr)
}
