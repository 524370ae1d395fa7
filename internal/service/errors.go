package service

import (
	"errors"
	"fmt"
	"strings"

	"pedidos/m/internal/validation"
)

// ErrNotFound is returned by operations addressing a row by id or name that does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is returned when a staff login does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError reports caller input that was rejected before touching the store.
type ValidationError struct {
	Message    string
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Violations))
	for _, f := range e.Violations.Fields() {
		parts = append(parts, f+": "+e.Violations[f])
	}
	return e.Message + " (" + strings.Join(parts, ", ") + ")"
}

func invalid(message string, v validation.Violations) error {
	return &ValidationError{Message: message, Violations: v}
}

// MissingColumnsError rejects a catalog source lacking required columns.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// RowError wraps the failure of a single catalog row. Line is the 1-based
// line of the source, or the 1-based row index when rows do not come from a file.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// IsValidation reports whether err was caused by rejected input rather than the store.
func IsValidation(err error) bool {
	var ve *ValidationError
	var mc *MissingColumnsError
	var re *RowError
	return errors.As(err, &ve) || errors.As(err, &mc) || errors.As(err, &re)
}
