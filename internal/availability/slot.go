package availability

import (
	"time"

	"github.com/google/uuid"
)

// SlotStatus is the exhaustive availability state of a slot. A slot is
// either bookable or unavailable for exactly one reason; the resolver
// assigns the first matching state in the order Booked > Break > Past >
// Available.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBooked    SlotStatus = "booked"
	SlotOnBreak   SlotStatus = "break"
	SlotPast      SlotStatus = "past"
)

// Slot is one fixed-duration bookable unit. StartsAt and EndsAt are
// canonical instants; Status is empty until conflict resolution runs.
type Slot struct {
	ProviderID uuid.UUID
	StartsAt   time.Time
	EndsAt     time.Time
	Status     SlotStatus
}

// Bookable reports whether the slot survived conflict resolution.
func (s Slot) Bookable() bool { return s.Status == SlotAvailable }

// Day groups the slots generated for one calendar date. Date is midnight
// UTC of that day. Skipped days (outside validity, vacation, non-working)
// carry an empty slot list.
type Day struct {
	Date  time.Time
	Slots []Slot
}

// Canonical normalizes an instant to the single representation used for
// storage, comparison and lock keys: UTC, truncated to the minute. Two
// instants refer to the same slot exactly when their canonical forms are
// equal.
func Canonical(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}

// DateOf returns midnight UTC of the instant's calendar day.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
