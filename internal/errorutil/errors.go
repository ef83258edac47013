// Package errorutil holds the error kinds shared by the address packages.
package errorutil

//go:generate errtrace -w .

import (
	"errors"
	"fmt"
)

// Error is a string type that implements the error interface.
type Error string

func (s Error) Error() string { return string(s) }

func Errorf(format string, args ...any) error {
	return Error(fmt.Sprintf(format, args...)) //errtrace:skip
}

// NewWrapperError creates or wraps an error with a sentinel error.
// It supports multiple argument patterns:
//   - No args: returns sentinel
//   - error arg: wraps with sentinel (unless already wrapped)
//   - string arg: formats as message with sentinel
//   - string + args: formats with Sprintf then wraps with sentinel
func NewWrapperError(sentinel error, args ...any) error {
	if len(args) == 0 {
		return sentinel //errtrace:skip
	}
	switch v := args[0].(type) {
	case error:
		if errors.Is(v, sentinel) {
			return v //errtrace:skip
		}
		return fmt.Errorf("%w: %w", sentinel, v) //errtrace:skip
	case string:
		if len(args) == 1 {
			return fmt.Errorf("%w: %s", sentinel, v) //errtrace:skip
		}
		return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(v, args[1:]...)) //errtrace:skip
	default:
		return sentinel //errtrace:skip
	}
}

const (
	// ErrInvalidArgument is returned when a required argument is missing.
	ErrInvalidArgument Error = "invalid argument"
	// ErrMalformedValue is returned when an argument is present but fails a format or range check.
	ErrMalformedValue Error = "malformed value"
	// ErrWrongState is returned when an operation requires a precondition on another field.
	ErrWrongState Error = "wrong state"
)

// ErrCrossImplementation is returned when a value comes from a foreign implementation.
// It matches [ErrInvalidArgument] with [errors.Is].
var ErrCrossImplementation error = crossImplError{}

type crossImplError struct{}

func (crossImplError) Error() string { return "address from another implementation" }

func (crossImplError) Is(target error) bool { return target == ErrInvalidArgument } //nolint:errorlint

// NewInvalidArgumentError creates a new error with [ErrInvalidArgument] or
// wraps provided error with [ErrInvalidArgument].
func NewInvalidArgumentError(args ...any) error {
	return NewWrapperError(ErrInvalidArgument, args...) //errtrace:skip
}

// NewMalformedValueError creates a new error with [ErrMalformedValue] or
// wraps provided error with [ErrMalformedValue].
func NewMalformedValueError(args ...any) error {
	return NewWrapperError(ErrMalformedValue, args...) //errtrace:skip
}

// NewWrongStateError creates a new error with [ErrWrongState] or
// wraps provided error with [ErrWrongState].
func NewWrongStateError(args ...any) error {
	return NewWrapperError(ErrWrongState, args...) //errtrace:skip
}

// NewCrossImplementationError wraps [ErrCrossImplementation] with the offending type.
func NewCrossImplementationError(v any) error {
	return fmt.Errorf("%w: %T", ErrCrossImplementation, v) //errtrace:skip
}
