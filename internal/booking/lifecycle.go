package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicdesk/booking-engine/internal/cache"
)

// Notifier is the live-update collaborator. The lifecycle manager
// publishes {booking_id, new_status} after each committed transition;
// the presentation layer consumes it.
type Notifier interface {
	PublishStatusChange(ctx context.Context, bookingID uuid.UUID, newStatus string) error
}

// allowedTransitions is the whole state machine. Scheduled is initial,
// Checked and Cancelled are terminal; InProgress behaves like Scheduled.
var allowedTransitions = map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusChecked, StatusCancelled},
	StatusInProgress: {StatusChecked, StatusCancelled},
}

func transitionAllowed(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionRequest carries one lifecycle change. Reason is required for
// a cancellation; Notes accompany a completed check.
type TransitionRequest struct {
	BookingID uuid.UUID
	NewStatus Status
	ActorID   uuid.UUID
	Reason    string
	Notes     string
}

// Lifecycle enforces the booking status state machine. A successful
// transition updates the booking, appends the audit row (both inside one
// repository transaction), publishes the live update and invalidates the
// affected cache scopes before returning.
type Lifecycle struct {
	repo     Repository
	notifier Notifier
	cache    *cache.Cache
	logger   *zap.Logger
}

func NewLifecycle(repo Repository, notifier Notifier, c *cache.Cache, logger *zap.Logger) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lifecycle{
		repo:     repo,
		notifier: notifier,
		cache:    c,
		logger:   logger,
	}
}

func (l *Lifecycle) Transition(ctx context.Context, req TransitionRequest) (*Booking, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	current, err := l.repo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(current.Status, req.NewStatus) {
		return nil, &InvalidTransitionError{Current: current.Status, Requested: req.NewStatus}
	}

	updated, err := l.repo.TransitionStatus(ctx, req.BookingID, current.Status, req.NewStatus, req.ActorID, notePayload(req))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// The compare-and-swap lost to a concurrent transition.
			// Re-read so the rejection names the real current status.
			if fresh, readErr := l.repo.GetByID(ctx, req.BookingID); readErr == nil {
				return nil, &InvalidTransitionError{Current: fresh.Status, Requested: req.NewStatus}
			}
			return nil, ErrNotFound
		}
		return nil, &TransitionFailedError{Err: err}
	}

	if err := l.notifier.PublishStatusChange(ctx, updated.ID, string(updated.Status)); err != nil {
		l.logger.Warn("live update publish failed",
			zap.String("booking_id", updated.ID.String()), zap.Error(err))
	}

	l.invalidate(updated)

	l.logger.Info("booking status changed",
		zap.String("booking_id", updated.ID.String()),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("actor_id", req.ActorID.String()),
	)

	return updated, nil
}

// History returns the booking's append-only audit trail.
func (l *Lifecycle) History(ctx context.Context, bookingID uuid.UUID) ([]StatusHistoryEntry, error) {
	if _, err := l.repo.GetByID(ctx, bookingID); err != nil {
		return nil, err
	}
	return l.repo.ListHistory(ctx, bookingID)
}

func validateRequest(req TransitionRequest) error {
	if req.BookingID == uuid.Nil {
		return &ValidationError{Reason: "booking id is required"}
	}
	if req.ActorID == uuid.Nil {
		return &ValidationError{Reason: "actor id is required"}
	}
	switch req.NewStatus {
	case StatusScheduled, StatusInProgress, StatusChecked:
		// Known targets; whether the transition is legal from the
		// current status is the transition table's call.
	case StatusCancelled:
		if strings.TrimSpace(req.Reason) == "" {
			return &ValidationError{Reason: "cancellation requires a reason"}
		}
	default:
		return &ValidationError{Reason: "unknown target status " + string(req.NewStatus)}
	}
	return nil
}

func notePayload(req TransitionRequest) *string {
	var note string
	switch req.NewStatus {
	case StatusCancelled:
		note = req.Reason
	case StatusChecked:
		note = req.Notes
	}
	if note == "" {
		return nil
	}
	return &note
}

func (l *Lifecycle) invalidate(b *Booking) {
	if l.cache == nil {
		return
	}
	l.cache.InvalidateScope(b.ProviderID.String())
	l.cache.InvalidateScope(b.SubjectID.String())
	l.cache.InvalidateScope(b.ID.String())
}
