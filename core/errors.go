/*
errors.go - Centralized error types for the absence engine

PURPOSE:
  All domain error types in one place for consistency and discoverability.
  Packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Precondition violations - illegal state transitions, fail fast
  2. Missing entities - usually resolved as absent results, hard errors only
     where the operation cannot proceed without the entity
  3. Validation errors - malformed input (periods, hours, comments)

External side-effect failures (mail, calendar) are NOT represented here:
they are logged and swallowed at the port boundary, never surfaced to the
caller of a lifecycle operation.

USAGE:
  if errors.Is(err, core.ErrAccountNotFound) { ... }

  var stateErr *core.StateTransitionError
  if errors.As(err, &stateErr) { ... }
*/
package core

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAccountNotFound is returned when an operation requires a holidays
	// account for a year where none exists and none can be auto-created.
	ErrAccountNotFound = errors.New("holidays account not found")

	// ErrPersonNotFound is returned when a referenced person doesn't exist.
	ErrPersonNotFound = errors.New("person not found")

	// ErrApplicationNotFound is returned when a referenced application doesn't exist.
	ErrApplicationNotFound = errors.New("application not found")

	// ErrSickNoteNotFound is returned when a referenced sick note doesn't exist.
	ErrSickNoteNotFound = errors.New("sick note not found")

	// ErrDepartmentNotFound is returned when deleting or updating a department
	// that does not exist. Unlike account lookups this is a hard failure.
	ErrDepartmentNotFound = errors.New("department not found")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidStateTransition is the sentinel wrapped by StateTransitionError.
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StateTransitionError reports a lifecycle operation invoked on an entity in
// the wrong state, e.g. allowing an application that is not WAITING.
type StateTransitionError struct {
	Operation string // "allow", "reject", "cancel", ...
	Current   string // status the entity actually had
	Required  string // status(es) the operation expects
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s: status is %s, requires %s", e.Operation, e.Current, e.Required)
}

func (e *StateTransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}

// ValidationError collects per-field validation messages for user input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// Add records a message for a field, keeping only the first one per field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrPersonNotFound) ||
		errors.Is(err, ErrApplicationNotFound) ||
		errors.Is(err, ErrSickNoteNotFound) ||
		errors.Is(err, ErrDepartmentNotFound)
}

// IsClientError returns true if the error is due to invalid client input
// rather than an internal failure.
func IsClientError(err error) bool {
	var vErr *ValidationError
	return errors.Is(err, ErrInvalidStateTransition) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.As(err, &vErr)
}
