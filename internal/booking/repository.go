package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DateRange is a half-open window [From, To).
type DateRange struct {
	From time.Time
	To   time.Time
}

// Repository contains all bookings-store interactions needed by the
// validator and the lifecycle manager. Implementations must bound every
// call with a timeout and surface failures as *PersistenceError.
type Repository interface {
	// Insert persists a new booking in its initial status together with
	// the opening history row. It returns ErrSlotTaken when another
	// blocking booking already holds (provider, instant); the store's
	// uniqueness constraint makes this hold even for racing writers.
	Insert(ctx context.Context, b *Booking) (*Booking, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// GetBlockingAt is the commit-time conflict read. It must always go
	// straight to the store, never through a cache.
	GetBlockingAt(ctx context.Context, providerID uuid.UUID, at time.Time) (*Booking, error)

	ListByProvider(ctx context.Context, providerID uuid.UUID, r DateRange) ([]Booking, error)
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]Booking, error)

	// TransitionStatus compare-and-swaps the booking's status from
	// "from" to "to", stamps changed-at/changed-by and the
	// status-specific payload, and appends the audit row, all in one
	// transaction. ErrNotFound covers both an unknown id and a status
	// that no longer equals "from".
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, actorID uuid.UUID, note *string) (*Booking, error)

	ListHistory(ctx context.Context, bookingID uuid.UUID) ([]StatusHistoryEntry, error)
}
