package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across ports.
var (
	// ErrNotFound is a confirmed absence reported by a store.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks input rejected locally, before any network call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoResults means the geocoding provider answered successfully with
	// zero candidates. Not a fault: there is simply no coordinate for the
	// given text, and retrying will not change that.
	ErrNoResults = errors.New("no geocoding candidates")

	// ErrForbidden means the viewer does not own the marker being mutated.
	ErrForbidden = errors.New("viewer is not the marker owner")

	// ErrEditInFlight means a geocode-then-save sequence is already running
	// for the same marker id in this session.
	ErrEditInFlight = errors.New("edit already in flight for this marker")
)

// ValidationError reports bad local input that was never sent over the wire.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ResolutionError is a geocoding transport or parse failure, distinct from
// ErrNoResults so callers may retry transport faults but not empty results.
type ResolutionError struct {
	Op  string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("geocode %s: %v", e.Op, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// BackendError carries a backend-reported HTTP status from an external
// collaborator (media service, etc.).
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend status %d: %s", e.Status, e.Message)
}
