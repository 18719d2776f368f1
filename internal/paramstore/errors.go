package paramstore

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/nvinuesa/paramcsv/internal/model"
)

// ErrNotFound indicates that a source spec matched no parameters.
type ErrNotFound struct {
	Spec string
	Mode Mode
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found.", e.Spec)
}

// ErrAlreadyExists indicates a non-overwriting write collided with an
// existing parameter.
type ErrAlreadyExists struct {
	Name string
	Err  error
}

func (e *ErrAlreadyExists) Error() string {
	return fmt.Sprintf("parameter %q already exists", e.Name)
}

func (e *ErrAlreadyExists) Unwrap() error {
	return e.Err
}

// ErrRemote wraps any other failure reported by the parameter store.
type ErrRemote struct {
	Op   string // API operation, e.g. PutParameter
	Name string // Parameter name or spec, if any
	Err  error
}

func (e *ErrRemote) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *ErrRemote) Unwrap() error {
	return e.Err
}

// Message returns the store's own error message, without the SDK's
// operation and request ID decoration.
func (e *ErrRemote) Message() string {
	var apiErr smithy.APIError
	if errors.As(e.Err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorMessage()
	}
	return e.Err.Error()
}

// Code returns the store's error code, or "" when the failure did not come
// from the API.
func (e *ErrRemote) Code() string {
	var apiErr smithy.APIError
	if errors.As(e.Err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// Kind classifies an error for the callers' recovery policies.
type Kind int

const (
	KindNone Kind = iota
	KindNotFound
	KindAlreadyExists
	KindRemote
	KindUsage
	KindInvalidRecord
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotFound:
		return "not-found"
	case KindAlreadyExists:
		return "already-exists"
	case KindRemote:
		return "remote"
	case KindUsage:
		return "usage"
	case KindInvalidRecord:
		return "invalid-record"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of err. Errors of no known type are remote errors.
func KindOf(err error) Kind {
	var (
		notFound *ErrNotFound
		exists   *ErrAlreadyExists
	)
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &notFound):
		return KindNotFound
	case errors.As(err, &exists):
		return KindAlreadyExists
	case model.IsUsageError(err):
		return KindUsage
	case model.IsInvalidRecord(err):
		return KindInvalidRecord
	default:
		return KindRemote
	}
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsAlreadyExists returns true if the error is an already-exists error.
func IsAlreadyExists(err error) bool {
	return KindOf(err) == KindAlreadyExists
}

// Message returns the user-facing message for err: the store's message for
// remote errors, the error text otherwise.
func Message(err error) string {
	var remote *ErrRemote
	if errors.As(err, &remote) {
		return remote.Message()
	}
	var invalid *model.ErrInvalidRecord
	if errors.As(err, &invalid) {
		return invalid.Err.Error()
	}
	return err.Error()
}
