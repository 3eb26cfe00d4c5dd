package booking

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("booking not found")

	// ErrSlotTaken means another blocking booking holds the target
	// instant; the caller should recompute availability and offer a
	// different time.
	ErrSlotTaken = errors.New("slot is no longer available")

	// ErrSlotBeingBooked means the per-slot lock is held by a
	// concurrent attempt; the caller may retry shortly.
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
)

// ValidationError reports malformed booking input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid booking input: " + e.Reason
}

// InvalidTransitionError names the current and requested status of a
// rejected lifecycle transition.
type InvalidTransitionError struct {
	Current   Status
	Requested Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.Current, e.Requested)
}

// PersistenceError wraps a collaborator I/O failure, including bounded
// timeout expiry. The core never retries; callers may, a bounded number
// of times.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// TransitionFailedError reports that a status transition's write failed.
// The update and its history row share one transaction, so no partial
// state is left behind.
type TransitionFailedError struct {
	Err error
}

func (e *TransitionFailedError) Error() string {
	return fmt.Sprintf("status transition failed: %v", e.Err)
}

func (e *TransitionFailedError) Unwrap() error { return e.Err }
