package services

import (
	"context"
	"errors"
)

// Cause explains why a best-effort operation produced no value.
type Cause int

const (
	CauseNone Cause = iota
	CauseNotFound
	CauseTimeout
	CauseProcessFailure
	CauseUnparsable
	CauseCanceled
)

func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseNotFound:
		return "not_found"
	case CauseTimeout:
		return "timeout"
	case CauseProcessFailure:
		return "process_failure"
	case CauseUnparsable:
		return "unparsable"
	case CauseCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Outcome is the result of a best-effort operation. OK reports whether Value
// is meaningful; when it is not, Cause says why and Err carries the underlying
// failure, if any.
type Outcome[T any] struct {
	Value T
	OK    bool
	Cause Cause
	Err   error
}

// Found wraps a successful value.
func Found[T any](value T) Outcome[T] {
	return Outcome[T]{Value: value, OK: true}
}

// Missing builds an empty outcome with the given cause.
func Missing[T any](cause Cause, err error) Outcome[T] {
	return Outcome[T]{Cause: cause, Err: err}
}

// CauseOf maps an execution error onto a Cause.
func CauseOf(err error) Cause {
	switch {
	case err == nil:
		return CauseNone
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CauseTimeout
	case errors.Is(err, context.Canceled):
		return CauseCanceled
	default:
		return CauseProcessFailure
	}
}
