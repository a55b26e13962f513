package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat marks a malformed or unsupported record stream.
	ErrFormat = errors.New("format error")
	// ErrIO marks a file that could not be opened, created, or stat'ed.
	ErrIO = errors.New("io error")
	// ErrTranscription marks a failure of the upstream transcription step.
	ErrTranscription = errors.New("transcription failure")
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	// ErrFatal aborts a whole batch instead of a single file.
	ErrFatal = errors.New("fatal error")
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

// IsFatal reports whether err should stop a batch rather than a single item.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
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
