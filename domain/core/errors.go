package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrMalformedInput = errors.New("malformed input")
	ErrMissingStat    = fmt.Errorf("%w: missing stat", ErrMalformedInput)
	ErrDepthMismatch  = fmt.Errorf("%w: grouping depth mismatch", ErrMalformedInput)
	ErrNegativeCount  = fmt.Errorf("%w: negative count", ErrMalformedInput)
	ErrMissingField   = fmt.Errorf("%w: missing field", ErrMalformedInput)
	ErrDuplicateTable = fmt.Errorf("%w: duplicate table name", ErrMalformedInput)

	// Output errors
	ErrExportFailed = errors.New("export failed")
)

// KeyPath renders a grouping path the way it appears in error messages.
func KeyPath(labels []string) string {
	if len(labels) == 0 {
		return "()"
	}
	return "(" + strings.Join(labels, ", ") + ")"
}

// Error constructors with context
func NewMissingStatError(labels []string) error {
	return fmt.Errorf("%w at %s", ErrMissingStat, KeyPath(labels))
}

func NewDepthMismatchError(labels []string, want int) error {
	return fmt.Errorf("%w at %s: expected %d levels", ErrDepthMismatch, KeyPath(labels), want)
}

func NewNegativeCountError(labels []string, field string, value int) error {
	return fmt.Errorf("%w at %s: %s=%d", ErrNegativeCount, KeyPath(labels), field, value)
}

func NewMissingFieldError(path string, field string) error {
	return fmt.Errorf("%w %q at %s", ErrMissingField, field, path)
}

func NewDuplicateTableError(name, first, second string) error {
	return fmt.Errorf("%w %q: produced by both %s and %s", ErrDuplicateTable, name, first, second)
}

func NewExportError(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrExportFailed, name, err)
}

// Error checking helpers
func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

func IsExportFailure(err error) bool {
	return errors.Is(err, ErrExportFailed)
}
