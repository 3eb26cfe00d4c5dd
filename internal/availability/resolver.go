package availability

import (
	"time"

	"github.com/clinicdesk/booking-engine/internal/schedule"
)

// Result is a resolved availability horizon. AvailableDays lists the
// dates that still hold at least one bookable slot, for day navigation.
type Result struct {
	Days          []Day
	AvailableDays []time.Time
}

// Resolve merges raw slots with the provider's blocking bookings and
// assigns each slot its final state. Precedence is fixed and total:
// a blocking booking at the slot's canonical minute wins over a break
// overlap, which wins over the slot lying in today's past, which wins
// over available. blocked holds the instants of bookings in a blocking
// status for the same provider and horizon.
func Resolve(cfg *schedule.Config, days []Day, blocked []time.Time, now time.Time) Result {
	taken := make(map[time.Time]struct{}, len(blocked))
	for _, t := range blocked {
		taken[Canonical(t)] = struct{}{}
	}

	today := DateOf(now)
	res := Result{Days: make([]Day, len(days))}

	for i, day := range days {
		out := Day{Date: day.Date, Slots: make([]Slot, len(day.Slots))}
		breaks := cfg.Weekdays[day.Date.Weekday()].Breaks
		hasAvailable := false

		for j, slot := range day.Slots {
			switch {
			case isTaken(taken, slot):
				slot.Status = SlotBooked
			case overlapsBreak(breaks, day.Date, slot):
				slot.Status = SlotOnBreak
			case day.Date.Equal(today) && slot.StartsAt.Before(now):
				slot.Status = SlotPast
			default:
				slot.Status = SlotAvailable
			}
			if slot.Bookable() {
				hasAvailable = true
			}
			out.Slots[j] = slot
		}

		res.Days[i] = out
		if hasAvailable {
			res.AvailableDays = append(res.AvailableDays, day.Date)
		}
	}

	return res
}

func isTaken(taken map[time.Time]struct{}, slot Slot) bool {
	_, ok := taken[Canonical(slot.StartsAt)]
	return ok
}

// overlapsBreak uses the half-open interval test: the slot collides with
// a break when slot-start < break-end and slot-end > break-start.
func overlapsBreak(breaks []schedule.BreakInterval, date time.Time, slot Slot) bool {
	for _, br := range breaks {
		brStart := date.Add(br.Start.Duration())
		brEnd := date.Add(br.End.Duration())
		if slot.StartsAt.Before(brEnd) && slot.EndsAt.After(brStart) {
			return true
		}
	}
	return false
}
