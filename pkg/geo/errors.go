package geo

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched by every caller-side error returned from this
// package.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNilCoordinate is returned when a required coordinate operand is missing.
var ErrNilCoordinate = fmt.Errorf("%w: coordinate must not be nil", ErrInvalidArgument)

// FieldError reports a rejected component value.
type FieldError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidArgument
}

// InvariantError is the panic value raised when a coordinate's own state or a
// computed result breaks its declared bounds. It indicates a bug, not bad input.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "geo: invariant violated: " + e.Msg
}

func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
	}
}
