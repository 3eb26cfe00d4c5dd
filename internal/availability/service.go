package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicdesk/booking-engine/internal/schedule"
)

// ScheduleSource yields immutable schedule snapshots, one per computation.
type ScheduleSource interface {
	GetSchedule(ctx context.Context, providerID uuid.UUID) (*schedule.Config, error)
}

// BookingSource yields the instants of blocking bookings inside a window.
// The production implementation reads through the appointment cache;
// staleness here is acceptable because commit-time validation re-reads
// persistence directly.
type BookingSource interface {
	BlockedInstants(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]time.Time, error)
}

// Service computes resolved availability horizons for display.
type Service struct {
	schedules   ScheduleSource
	bookings    BookingSource
	defaultDays int
	now         func() time.Time
	logger      *zap.Logger
}

func NewService(schedules ScheduleSource, bookings BookingSource, defaultDays int, logger *zap.Logger) *Service {
	if defaultDays <= 0 {
		defaultDays = 14
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		schedules:   schedules,
		bookings:    bookings,
		defaultDays: defaultDays,
		now:         time.Now,
		logger:      logger,
	}
}

// Horizon generates and resolves the provider's slots for the next days
// calendar days. days <= 0 selects the configured default.
func (s *Service) Horizon(ctx context.Context, providerID uuid.UUID, days int) (*Result, error) {
	if days <= 0 {
		days = s.defaultDays
	}

	now := s.now()

	cfg, err := s.schedules.GetSchedule(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	raw, err := GenerateSlots(cfg, now, days)
	if err != nil {
		return nil, err
	}

	from := DateOf(now)
	to := from.AddDate(0, 0, days)
	blocked, err := s.bookings.BlockedInstants(ctx, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load blocking bookings: %w", err)
	}

	res := Resolve(cfg, raw, blocked, now)

	s.logger.Debug("availability horizon computed",
		zap.String("provider_id", providerID.String()),
		zap.Int("days", days),
		zap.Int("available_days", len(res.AvailableDays)),
	)

	return &res, nil
}
