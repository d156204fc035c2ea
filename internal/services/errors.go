package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrSelfMerge   = errors.New("source and target are the same entity")
	ErrValidation  = errors.New("validation error")
	ErrTransaction = errors.New("transaction failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransaction
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRetryable reports whether the caller may usefully retry the failed
// operation. Only transaction failures qualify; not-found, self-merge, and
// validation errors will fail the same way every time.
func IsRetryable(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrSelfMerge), errors.Is(err, ErrValidation):
		return false
	default:
		return err != nil
	}
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
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
