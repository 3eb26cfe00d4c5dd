package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicdesk/booking-engine/internal/availability"
	"github.com/clinicdesk/booking-engine/internal/cache"
	redisclient "github.com/clinicdesk/booking-engine/internal/redis"
)

// Validator guards the moment of commit. It re-reads persistence directly
// (never through the cache) for a blocking booking at the target instant
// before inserting. The per-slot lock narrows the race window; the
// store's uniqueness constraint closes it, so two validators racing past
// the check cannot both succeed.
type Validator struct {
	repo   Repository
	locker redisclient.Locker
	cache  *cache.Cache
	now    func() time.Time
	logger *zap.Logger
}

func NewValidator(repo Repository, locker redisclient.Locker, c *cache.Cache, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		repo:   repo,
		locker: locker,
		cache:  c,
		now:    time.Now,
		logger: logger,
	}
}

// Book reserves the slot at startsAt for the subject. ErrSlotTaken tells
// the caller the displayed list was stale and availability must be
// recomputed.
func (v *Validator) Book(ctx context.Context, providerID, subjectID uuid.UUID, startsAt time.Time) (*Booking, error) {
	if providerID == uuid.Nil {
		return nil, &ValidationError{Reason: "provider id is required"}
	}
	if subjectID == uuid.Nil {
		return nil, &ValidationError{Reason: "subject id is required"}
	}

	at := availability.Canonical(startsAt)
	if at.Before(availability.Canonical(v.now())) {
		return nil, &ValidationError{Reason: "instant is in the past"}
	}

	var created *Booking

	lockKey := fmt.Sprintf("%s:%d", providerID, at.Unix())
	err := v.locker.WithSlotLock(ctx, lockKey, func(lockCtx context.Context) error {
		existing, err := v.repo.GetBlockingAt(lockCtx, providerID, at)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("check blocking booking: %w", err)
		}
		if existing != nil {
			return ErrSlotTaken
		}

		b, err := v.repo.Insert(lockCtx, &Booking{
			ProviderID:      providerID,
			SubjectID:       subjectID,
			StartsAt:        at,
			Status:          StatusScheduled,
			StatusChangedBy: subjectID,
		})
		if err != nil {
			return err
		}

		created = b
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	v.invalidate(created)

	v.logger.Info("booking created",
		zap.String("booking_id", created.ID.String()),
		zap.String("provider_id", providerID.String()),
		zap.Time("starts_at", at),
	)

	return created, nil
}

// invalidate drops cache entries for every scope the write affects,
// synchronously, before Book returns.
func (v *Validator) invalidate(b *Booking) {
	if v.cache == nil {
		return
	}
	v.cache.InvalidateScope(b.ProviderID.String())
	v.cache.InvalidateScope(b.SubjectID.String())
	v.cache.InvalidateScope(b.ID.String())
}
