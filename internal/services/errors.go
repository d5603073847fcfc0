package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSandbox marks a sandbox containment violation. Always fatal to the
	// call and never retried.
	ErrSandbox = errors.New("sandbox violation")
	// ErrNotFound marks a missing input path.
	ErrNotFound = errors.New("not found")
	// ErrNotDirectory marks an input path that is a file where a directory
	// was required.
	ErrNotDirectory = errors.New("not a directory")
	// ErrConflict marks an already-existing destination. Recorded per item,
	// not fatal to the batch.
	ErrConflict = errors.New("destination conflict")
	// ErrIO marks a permission or transient OS failure on one entry.
	ErrIO = errors.New("io failure")
	// ErrConfiguration marks invalid engine configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorType maps an engine error to the wire-level errorType string used in
// structured error payloads.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, ErrSandbox):
		return "SecurityError"
	case errors.Is(err, ErrNotFound):
		return "NotFoundError"
	case errors.Is(err, ErrNotDirectory):
		return "NotADirectoryError"
	case errors.Is(err, ErrConflict):
		return "Conflict"
	case errors.Is(err, ErrConfiguration):
		return "ConfigurationError"
	default:
		return "IOFailure"
	}
}

// Fatal reports whether err should abort the whole call rather than be
// recorded against a single plan item.
func Fatal(err error) bool {
	return errors.Is(err, ErrSandbox) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrNotDirectory) ||
		errors.Is(err, ErrConfiguration)
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
		return "engine failure"
	}
	return strings.Join(parts, ": ")
}
