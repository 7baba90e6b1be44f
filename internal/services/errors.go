package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrUnsupportedValue     = errors.New("unsupported value")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrProcessFailure       = errors.New("process failure")
	ErrInvalidOperation     = errors.New("invalid operation")
	ErrTimeout              = errors.New("timeout")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrProcessFailure
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Invalid is shorthand for an ErrInvalidRequest with no underlying cause.
func Invalid(component, operation, message string) error {
	return Wrap(ErrInvalidRequest, component, operation, message, nil)
}

// Classify returns the marker carried by err, or nil when err carries none.
func Classify(err error) error {
	for _, marker := range []error{
		ErrInvalidRequest,
		ErrUnsupportedOperation,
		ErrUnsupportedValue,
		ErrTypeMismatch,
		ErrInvalidOperation,
		ErrTimeout,
		ErrProcessFailure,
	} {
		if errors.Is(err, marker) {
			return marker
		}
	}
	return nil
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failed"
	}
	return strings.Join(parts, ": ")
}
