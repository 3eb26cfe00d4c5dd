package availability

import (
	"fmt"
	"time"

	"github.com/clinicdesk/booking-engine/internal/schedule"
)

// GenerateSlots walks a provider's weekly schedule and emits the raw
// candidate slots for horizonDays calendar days starting at now's day.
// Days outside the validity window, inside a vacation range, or whose
// weekday template is not working are skipped (their Day keeps an empty
// slot list). Within a working day the walk steps from start to end in
// increments of the slot duration and drops a trailing partial step.
// Availability is not assigned here; see Resolve.
func GenerateSlots(cfg *schedule.Config, now time.Time, horizonDays int) ([]Day, error) {
	if horizonDays <= 0 {
		return nil, &ValidationError{Reason: fmt.Sprintf("horizon must be positive, got %d days", horizonDays)}
	}

	d := cfg.SlotDuration
	switch {
	case d <= 0:
		return nil, &ValidationError{Reason: "slot duration must be positive"}
	case d%time.Minute != 0:
		return nil, &ValidationError{Reason: "slot duration must be whole minutes"}
	case d >= 24*time.Hour:
		return nil, &ValidationError{Reason: "slot duration must be shorter than a day"}
	}

	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		tpl := cfg.Weekdays[wd]
		if tpl.Working && tpl.Start >= tpl.End {
			return nil, &ValidationError{
				Reason: fmt.Sprintf("%s: start %s is not before end %s", wd, tpl.Start, tpl.End),
			}
		}
	}

	first := DateOf(now)
	days := make([]Day, 0, horizonDays)

	for i := 0; i < horizonDays; i++ {
		date := first.AddDate(0, 0, i)
		day := Day{Date: date}

		tpl := cfg.Weekdays[date.Weekday()]
		if !tpl.Working || !cfg.CoversDate(date) || cfg.OnVacation(date) {
			days = append(days, day)
			continue
		}

		end := date.Add(tpl.End.Duration())
		for t := date.Add(tpl.Start.Duration()); !t.Add(d).After(end); t = t.Add(d) {
			day.Slots = append(day.Slots, Slot{
				ProviderID: cfg.ProviderID,
				StartsAt:   t,
				EndsAt:     t.Add(d),
			})
		}

		days = append(days, day)
	}

	return days, nil
}
