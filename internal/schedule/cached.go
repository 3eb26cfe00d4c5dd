package schedule

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicdesk/booking-engine/internal/cache"
)

// CachedRepository reads schedule snapshots through the appointment cache.
// Cache trouble degrades to a direct read and is logged, never surfaced.
type CachedRepository struct {
	inner  Repository
	cache  *cache.Cache
	logger *zap.Logger
}

func NewCachedRepository(inner Repository, c *cache.Cache, logger *zap.Logger) *CachedRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRepository{inner: inner, cache: c, logger: logger}
}

func (r *CachedRepository) GetSchedule(ctx context.Context, providerID uuid.UUID) (*Config, error) {
	key := cache.Key{Kind: "schedule", Scope: providerID.String()}

	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return r.inner.GetSchedule(ctx, providerID)
	})
	if err != nil {
		return nil, err
	}

	cfg, ok := v.(*Config)
	if !ok {
		r.logger.Warn("unexpected cached schedule payload, falling back to direct read",
			zap.String("provider_id", providerID.String()))
		r.cache.InvalidateScope(providerID.String())
		return r.inner.GetSchedule(ctx, providerID)
	}
	return cfg, nil
}

func (r *CachedRepository) ListProviderIDs(ctx context.Context) ([]uuid.UUID, error) {
	return r.inner.ListProviderIDs(ctx)
}
