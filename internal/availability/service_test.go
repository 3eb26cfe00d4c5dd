package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/booking-engine/internal/schedule"
)

type fakeScheduleSource struct {
	cfg   *schedule.Config
	err   error
	calls int
}

func (f *fakeScheduleSource) GetSchedule(ctx context.Context, providerID uuid.UUID) (*schedule.Config, error) {
	f.calls++
	return f.cfg, f.err
}

type fakeBookingSource struct {
	instants []time.Time
	err      error
	gotFrom  time.Time
	gotTo    time.Time
}

func (f *fakeBookingSource) BlockedInstants(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	f.gotFrom, f.gotTo = from, to
	return f.instants, f.err
}

func newTestService(cfg *schedule.Config, bookings *fakeBookingSource, now time.Time) *Service {
	svc := NewService(&fakeScheduleSource{cfg: cfg}, bookings, 14, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestServiceHorizon_ResolvesBlockedSlots(t *testing.T) {
	cfg := workingWeekConfig(30 * time.Minute)
	bookings := &fakeBookingSource{instants: []time.Time{monday.Add(10 * time.Hour)}}
	svc := newTestService(cfg, bookings, monday.Add(-12*time.Hour))

	res, err := svc.Horizon(context.Background(), cfg.ProviderID, 2)
	require.NoError(t, err)
	require.Len(t, res.Days, 2)

	assert.Equal(t, SlotBooked, slotAt(t, res.Days[1], monday.Add(10*time.Hour)).Status)
	assert.Equal(t, DateOf(monday.Add(-12*time.Hour)), bookings.gotFrom)
	assert.Equal(t, DateOf(monday.Add(-12*time.Hour)).AddDate(0, 0, 2), bookings.gotTo)
}

func TestServiceHorizon_DefaultsHorizonLength(t *testing.T) {
	cfg := workingWeekConfig(30 * time.Minute)
	svc := newTestService(cfg, &fakeBookingSource{}, monday)

	res, err := svc.Horizon(context.Background(), cfg.ProviderID, 0)
	require.NoError(t, err)
	assert.Len(t, res.Days, 14)
}

func TestServiceHorizon_PropagatesScheduleErrors(t *testing.T) {
	svc := NewService(&fakeScheduleSource{err: schedule.ErrScheduleNotFound}, &fakeBookingSource{}, 14, nil)

	_, err := svc.Horizon(context.Background(), uuid.New(), 7)
	require.ErrorIs(t, err, schedule.ErrScheduleNotFound)
}

func TestServiceHorizon_PropagatesValidationErrors(t *testing.T) {
	cfg := workingWeekConfig(0)
	svc := newTestService(cfg, &fakeBookingSource{}, monday)

	_, err := svc.Horizon(context.Background(), cfg.ProviderID, 7)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}
