package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/booking-engine/internal/schedule"
)

func resolveOneDay(t *testing.T, cfg *schedule.Config, blocked []time.Time, now time.Time) Day {
	t.Helper()
	raw, err := GenerateSlots(cfg, monday, 1)
	require.NoError(t, err)
	res := Resolve(cfg, raw, blocked, now)
	require.Len(t, res.Days, 1)
	return res.Days[0]
}

func slotAt(t *testing.T, day Day, at time.Time) Slot {
	t.Helper()
	for _, s := range day.Slots {
		if s.StartsAt.Equal(at) {
			return s
		}
	}
	t.Fatalf("no slot at %s", at)
	return Slot{}
}

func TestResolve_ScenarioMondayMorning(t *testing.T) {
	// Mon-Fri 09:00-17:00, no breaks, 30-minute slots, one blocking
	// booking Monday 10:00, queried the day before.
	cfg := workingWeekConfig(30 * time.Minute)
	sunday := monday.AddDate(0, 0, -1).Add(12 * time.Hour)
	booked := []time.Time{monday.Add(10 * time.Hour)}

	day := resolveOneDay(t, cfg, booked, sunday)

	require.Len(t, day.Slots, 16)
	for _, s := range day.Slots {
		if s.StartsAt.Equal(monday.Add(10 * time.Hour)) {
			assert.Equal(t, SlotBooked, s.Status)
			assert.False(t, s.Bookable())
		} else {
			assert.Equal(t, SlotAvailable, s.Status)
			assert.True(t, s.Bookable())
		}
	}
}

func TestResolve_PrecedenceIsBookedBreakPastAvailable(t *testing.T) {
	cfg := workingWeekConfig(30 * time.Minute)
	cfg.Weekdays[time.Monday].Breaks = []schedule.BreakInterval{
		{Start: schedule.NewTimeOfDay(12, 0), End: schedule.NewTimeOfDay(13, 0)},
	}

	// Query mid-Monday so morning slots lie in the past, with bookings
	// on a break slot and on a past slot.
	now := monday.Add(14*time.Hour + 10*time.Minute)
	booked := []time.Time{
		monday.Add(12 * time.Hour),                 // inside the break
		monday.Add(9*time.Hour + 30*time.Minute),   // in the past
		monday.Add(15 * time.Hour),                 // plain future slot
	}

	day := resolveOneDay(t, cfg, booked, now)

	assert.Equal(t, SlotBooked, slotAt(t, day, monday.Add(12*time.Hour)).Status, "Booked beats Break")
	assert.Equal(t, SlotBooked, slotAt(t, day, monday.Add(9*time.Hour+30*time.Minute)).Status, "Booked beats Past")
	assert.Equal(t, SlotBooked, slotAt(t, day, monday.Add(15*time.Hour)).Status)
	assert.Equal(t, SlotOnBreak, slotAt(t, day, monday.Add(12*time.Hour+30*time.Minute)).Status)
	assert.Equal(t, SlotPast, slotAt(t, day, monday.Add(9*time.Hour)).Status)
	assert.Equal(t, SlotPast, slotAt(t, day, monday.Add(14*time.Hour)).Status, "slot started before now")
	assert.Equal(t, SlotAvailable, slotAt(t, day, monday.Add(16*time.Hour)).Status)
}

func TestResolve_BreakOverlapIsHalfOpen(t *testing.T) {
	cfg := workingWeekConfig(30 * time.Minute)
	cfg.Weekdays[time.Monday].Breaks = []schedule.BreakInterval{
		{Start: schedule.NewTimeOfDay(12, 15), End: schedule.NewTimeOfDay(12, 45)},
	}

	day := resolveOneDay(t, cfg, nil, monday.Add(-12*time.Hour))

	assert.Equal(t, SlotOnBreak, slotAt(t, day, monday.Add(12*time.Hour)).Status, "slot 12:00-12:30 overlaps break start")
	assert.Equal(t, SlotOnBreak, slotAt(t, day, monday.Add(12*time.Hour+30*time.Minute)).Status, "slot 12:30-13:00 overlaps break end")
	assert.Equal(t, SlotAvailable, slotAt(t, day, monday.Add(11*time.Hour+30*time.Minute)).Status, "slot ending at break start does not overlap")
	assert.Equal(t, SlotAvailable, slotAt(t, day, monday.Add(13*time.Hour)).Status)
}

func TestResolve_BookingMatchesAtMinuteGranularity(t *testing.T) {
	cfg := workingWeekConfig(30 * time.Minute)

	// The stored instant carries stray seconds; it still hits the slot.
	booked := []time.Time{monday.Add(10*time.Hour + 42*time.Second)}
	day := resolveOneDay(t, cfg, booked, monday.Add(-time.Hour))

	assert.Equal(t, SlotBooked, slotAt(t, day, monday.Add(10*time.Hour)).Status)
}

func TestResolve_PastOnlyAppliesToToday(t *testing.T) {
	cfg := workingWeekConfig(30 * time.Minute)

	raw, err := GenerateSlots(cfg, monday, 2) // Monday, Tuesday
	require.NoError(t, err)

	now := monday.Add(23 * time.Hour)
	res := Resolve(cfg, raw, nil, now)

	for _, s := range res.Days[0].Slots {
		assert.Equal(t, SlotPast, s.Status, "all of today is over")
	}
	for _, s := range res.Days[1].Slots {
		assert.Equal(t, SlotAvailable, s.Status, "tomorrow is untouched")
	}

	require.Len(t, res.AvailableDays, 1)
	assert.Equal(t, res.Days[1].Date, res.AvailableDays[0])
}

func TestResolve_AvailableDaysSkipsFullyBlockedDays(t *testing.T) {
	cfg := workingWeekConfig(4 * time.Hour)

	raw, err := GenerateSlots(cfg, monday, 2)
	require.NoError(t, err)
	require.Len(t, raw[0].Slots, 2)

	booked := []time.Time{raw[0].Slots[0].StartsAt, raw[0].Slots[1].StartsAt}
	res := Resolve(cfg, raw, booked, monday.Add(-24*time.Hour))

	require.Len(t, res.AvailableDays, 1)
	assert.Equal(t, raw[1].Date, res.AvailableDays[0])
}
