package booking

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusChecked    Status = "checked"
	StatusCancelled  Status = "cancelled"
)

// Blocking reports whether the status occupies its slot for conflict
// purposes. InProgress blocks exactly like Scheduled.
func (s Status) Blocking() bool {
	return s == StatusScheduled || s == StatusInProgress
}

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusChecked || s == StatusCancelled
}

// BlockingStatuses is the set used by conflict queries and by the partial
// unique index guarding (provider, instant) in persistence.
var BlockingStatuses = []Status{StatusScheduled, StatusInProgress}

type Booking struct {
	ID                 uuid.UUID
	ProviderID         uuid.UUID
	SubjectID          uuid.UUID
	StartsAt           time.Time // canonical instant
	Status             Status
	StatusChangedAt    time.Time
	StatusChangedBy    uuid.UUID
	CancellationReason *string
	CompletionNotes    *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// StatusHistoryEntry is one append-only audit row. Entries are never
// mutated or deleted.
type StatusHistoryEntry struct {
	ID        int64
	BookingID uuid.UUID
	OldStatus Status
	NewStatus Status
	ActorID   uuid.UUID
	Note      *string
	CreatedAt time.Time
}
