/*
errors.go - Centralized error types for the schedule engine

PURPOSE:
  All error types in one place. The engine itself almost never errors:
  missing documents, missing rules and malformed records fall through to
  the next precedence layer. Errors here belong to the edges - parsing
  client input and talking to the stores.

ERROR CATEGORIES:
  1. Input errors - bad date keys, inverted ranges (client errors)
  2. Store errors - missing or duplicate records on the write path
  3. Fetch errors - provider failures, which the Service degrades to
     empty collections rather than propagating to views

SEE ALSO:
  - service.go: degradation on fetch failure
  - store/sqlite: wraps these on the write path
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDateKey is returned when a date string is not YYYY-MM-DD.
	ErrInvalidDateKey = errors.New("invalid date key")

	// ErrInvalidRange is returned when a range ends before it starts.
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrPersonNotFound is returned when a referenced person doesn't exist.
	ErrPersonNotFound = errors.New("person not found")

	// ErrRuleNotFound is returned when a referenced rule doesn't exist.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrDayNotFound is returned by the write path when deleting a day
	// document that doesn't exist. Read-side lookups never error on
	// absence; a missing document is a normal condition.
	ErrDayNotFound = errors.New("day document not found")

	// ErrDuplicatePerson is returned when creating a person whose ID
	// already exists on the roster.
	ErrDuplicatePerson = errors.New("person already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FetchError records which provider failed during a snapshot load.
// The Service logs these and substitutes an empty collection; the
// resulting snapshot is still structurally valid.
type FetchError struct {
	Layer string // "roster", "rules", "overrides"
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Layer, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPersonNotFound) ||
		errors.Is(err, ErrRuleNotFound) ||
		errors.Is(err, ErrDayNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDateKey) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrDuplicatePerson)
}
