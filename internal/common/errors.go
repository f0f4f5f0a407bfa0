// Package common defines the error kinds shared by every planner layer.
// Callers should match them with errors.Is (sentinels) or errors.As (typed
// errors carrying the offending field, id or storage operation).
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad input to a mutating operation.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a reference to an id absent from the target collection.
	ErrNotFound = errors.New("not found")

	// ErrImport marks a malformed or structurally invalid import document.
	ErrImport = errors.New("import error")

	// ErrPersistence marks a failure of the underlying durable store.
	ErrPersistence = errors.New("persistence error")

	// ErrWrongPassphrase is returned when a sealed store cannot be unlocked.
	ErrWrongPassphrase = errors.New("wrong passphrase")
)

// ValidationError names the field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError is a shorthand for &ValidationError{...}.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports which kind of object was missing.
type NotFoundError struct {
	Kind string // "plan" or "item"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ImportError points at the part of an import document that was rejected.
type ImportError struct {
	Path   string // e.g. "plans[2].time"
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	msg := "import rejected"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrImport, e.Err}
	}
	return []error{ErrImport}
}

// PersistenceKind classifies store failures.
type PersistenceKind string

const (
	PersistenceUnavailable PersistenceKind = "unavailable"
	PersistenceWrite       PersistenceKind = "write"
	PersistenceCorrupt     PersistenceKind = "corrupt"
	PersistenceLocked      PersistenceKind = "locked"
)

// PersistenceError wraps a store failure with the operation that hit it.
type PersistenceError struct {
	Kind PersistenceKind
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: storage %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: storage %s: %v", e.Op, e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrPersistence, e.Err}
	}
	return []error{ErrPersistence}
}

// IsCorrupt reports whether err is a PersistenceError caused by unreadable data.
func IsCorrupt(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Kind == PersistenceCorrupt
}
