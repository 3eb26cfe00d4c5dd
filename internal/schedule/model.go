package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeOfDay is a clock time expressed as minutes since midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t) * time.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// BreakInterval is a non-bookable window inside a working day.
type BreakInterval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Weekday is the template for one day of the week.
type Weekday struct {
	Working bool
	Start   TimeOfDay
	End     TimeOfDay
	Breaks  []BreakInterval
}

// VacationRange is an inclusive range of dates the provider is away.
type VacationRange struct {
	From time.Time
	To   time.Time
}

// Config is a provider's weekly schedule. It is read once per availability
// computation and treated as an immutable snapshot.
type Config struct {
	ProviderID   uuid.UUID
	SlotDuration time.Duration
	ValidFrom    time.Time
	ValidTo      time.Time
	Weekdays     [7]Weekday // indexed by time.Weekday
	Vacations    []VacationRange
	UpdatedAt    time.Time
}

// CoversDate reports whether date falls inside the validity window.
// Bounds are inclusive and compared at date granularity.
func (c *Config) CoversDate(date time.Time) bool {
	d := dateOnly(date)
	return !d.Before(dateOnly(c.ValidFrom)) && !d.After(dateOnly(c.ValidTo))
}

// OnVacation reports whether date falls inside any vacation range.
func (c *Config) OnVacation(date time.Time) bool {
	d := dateOnly(date)
	for _, v := range c.Vacations {
		if !d.Before(dateOnly(v.From)) && !d.After(dateOnly(v.To)) {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
