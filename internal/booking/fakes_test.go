package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memRepo is an in-memory Repository that enforces the same blocking-slot
// uniqueness the partial unique index does, so racing inserts behave like
// the real store.
type memRepo struct {
	mu            sync.Mutex
	bookings      map[uuid.UUID]Booking
	history       []StatusHistoryEntry
	transitionErr error
	onTransition  func() // runs once, before the CAS write
	blockingReads int
}

func newMemRepo() *memRepo {
	return &memRepo{bookings: make(map[uuid.UUID]Booking)}
}

func (r *memRepo) Insert(ctx context.Context, b *Booking) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.bookings {
		if existing.ProviderID == b.ProviderID && existing.StartsAt.Equal(b.StartsAt) && existing.Status.Blocking() {
			return nil, ErrSlotTaken
		}
	}

	now := time.Now().UTC()
	stored := *b
	stored.ID = uuid.New()
	stored.StatusChangedAt = now
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.bookings[stored.ID] = stored

	r.history = append(r.history, StatusHistoryEntry{
		ID:        int64(len(r.history) + 1),
		BookingID: stored.ID,
		NewStatus: stored.Status,
		ActorID:   stored.StatusChangedBy,
		CreatedAt: now,
	})

	out := stored
	return &out, nil
}

func (r *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := b
	return &out, nil
}

func (r *memRepo) GetBlockingAt(ctx context.Context, providerID uuid.UUID, at time.Time) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.blockingReads++
	for _, b := range r.bookings {
		if b.ProviderID == providerID && b.StartsAt.Equal(at) && b.Status.Blocking() {
			out := b
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) ListByProvider(ctx context.Context, providerID uuid.UUID, dr DateRange) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Booking
	for _, b := range r.bookings {
		if b.ProviderID == providerID && !b.StartsAt.Before(dr.From) && b.StartsAt.Before(dr.To) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memRepo) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Booking
	for _, b := range r.bookings {
		if b.SubjectID == subjectID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, actorID uuid.UUID, note *string) (*Booking, error) {
	if r.onTransition != nil {
		hook := r.onTransition
		r.onTransition = nil
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.transitionErr != nil {
		return nil, r.transitionErr
	}

	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	b.Status = to
	b.StatusChangedAt = now
	b.StatusChangedBy = actorID
	b.UpdatedAt = now
	switch to {
	case StatusCancelled:
		b.CancellationReason = note
	case StatusChecked:
		b.CompletionNotes = note
	}
	r.bookings[id] = b

	r.history = append(r.history, StatusHistoryEntry{
		ID:        int64(len(r.history) + 1),
		BookingID: id,
		OldStatus: from,
		NewStatus: to,
		ActorID:   actorID,
		Note:      note,
		CreatedAt: now,
	})

	out := b
	return &out, nil
}

func (r *memRepo) ListHistory(ctx context.Context, bookingID uuid.UUID) ([]StatusHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []StatusHistoryEntry
	for _, e := range r.history {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memRepo) historyLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

// lockerFunc adapts a function to the redis Locker interface.
type lockerFunc func(ctx context.Context, slotKey string, fn func(ctx context.Context) error) error

func (f lockerFunc) WithSlotLock(ctx context.Context, slotKey string, fn func(ctx context.Context) error) error {
	return f(ctx, slotKey, fn)
}

// passthroughLocker runs the critical section without any serialization,
// leaving conflict handling entirely to the repository, like a lock that
// always wins.
var passthroughLocker = lockerFunc(func(ctx context.Context, slotKey string, fn func(ctx context.Context) error) error {
	return fn(ctx)
})

type notifierEvent struct {
	bookingID uuid.UUID
	newStatus string
}

type fakeNotifier struct {
	mu     sync.Mutex
	err    error
	events []notifierEvent
}

func (n *fakeNotifier) PublishStatusChange(ctx context.Context, bookingID uuid.UUID, newStatus string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, notifierEvent{bookingID: bookingID, newStatus: newStatus})
	return nil
}
