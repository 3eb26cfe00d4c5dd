package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicdesk/booking-engine/internal/availability"
	"github.com/clinicdesk/booking-engine/internal/cache"
)

// CachedReader serves the display-path booking queries through the
// appointment cache. Commit-time validation never goes through here.
type CachedReader struct {
	repo   Repository
	cache  *cache.Cache
	logger *zap.Logger
}

func NewCachedReader(repo Repository, c *cache.Cache, logger *zap.Logger) *CachedReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedReader{repo: repo, cache: c, logger: logger}
}

// BlockedInstants returns the canonical instants of blocking bookings for
// the provider inside [from, to). It feeds conflict resolution.
func (r *CachedReader) BlockedInstants(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	key := cache.Key{
		Kind:  "blocked-instants",
		Scope: providerID.String(),
		Range: from.Format(time.RFC3339) + "/" + to.Format(time.RFC3339),
	}

	load := func(ctx context.Context) (any, error) {
		bookings, err := r.repo.ListByProvider(ctx, providerID, DateRange{From: from, To: to})
		if err != nil {
			return nil, err
		}
		instants := make([]time.Time, 0, len(bookings))
		for _, b := range bookings {
			if b.Status.Blocking() {
				instants = append(instants, availability.Canonical(b.StartsAt))
			}
		}
		return instants, nil
	}

	v, err := r.cache.GetOrLoad(ctx, key, load)
	if err != nil {
		return nil, err
	}

	instants, ok := v.([]time.Time)
	if !ok {
		r.logger.Warn("unexpected cached instants payload, falling back to direct read",
			zap.String("provider_id", providerID.String()))
		r.cache.InvalidateScope(providerID.String())
		raw, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return raw.([]time.Time), nil
	}
	return instants, nil
}

// BySubject returns the subject's bookings, newest first, through the
// cache.
func (r *CachedReader) BySubject(ctx context.Context, subjectID uuid.UUID) ([]Booking, error) {
	key := cache.Key{Kind: "subject-bookings", Scope: subjectID.String()}

	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return r.repo.ListBySubject(ctx, subjectID)
	})
	if err != nil {
		return nil, err
	}

	bookings, ok := v.([]Booking)
	if !ok {
		r.logger.Warn("unexpected cached bookings payload, falling back to direct read",
			zap.String("subject_id", subjectID.String()))
		r.cache.InvalidateScope(subjectID.String())
		return r.repo.ListBySubject(ctx, subjectID)
	}
	return bookings, nil
}
