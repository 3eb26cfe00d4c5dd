package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProviderLister enumerates the providers with a configured schedule.
type ProviderLister interface {
	ListProviderIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Refresher recomputes availability on a fixed interval so that displayed
// horizons are re-warmed after cache entries expire or are invalidated.
// Its staleness bound is the interval; it is a freshness aid only and has
// no bearing on booking correctness.
type Refresher struct {
	service   *Service
	providers ProviderLister
	interval  time.Duration
	logger    *zap.Logger
}

func NewRefresher(service *Service, providers ProviderLister, interval time.Duration, logger *zap.Logger) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		service:   service,
		providers: providers,
		interval:  interval,
		logger:    logger,
	}
}

// Run refreshes once immediately and then on every tick until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	r.refreshOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("availability refresher stopping")
			return
		case <-ticker.C:
			r.refreshOnce(ctx)
		}
	}
}

func (r *Refresher) refreshOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()

	start := time.Now()

	ids, err := r.providers.ListProviderIDs(runCtx)
	if err != nil {
		r.logger.Warn("availability refresh: list providers failed", zap.Error(err))
		return
	}

	refreshed := 0
	for _, id := range ids {
		if runCtx.Err() != nil {
			return
		}
		if _, err := r.service.Horizon(runCtx, id, 0); err != nil {
			r.logger.Warn("availability refresh failed",
				zap.String("provider_id", id.String()), zap.Error(err))
			continue
		}
		refreshed++
	}

	r.logger.Debug("availability refresh complete",
		zap.Int("providers", refreshed),
		zap.Duration("took", time.Since(start)),
	)
}
