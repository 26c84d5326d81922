package config

import "time"

// Calendar holds the attendance arithmetic settings shared by every
// capacity computation.
type Calendar struct {
	WeekendDays     []time.Weekday
	HoursPerDay     float64
	DefaultLocation string
}

// DefaultCalendar returns Saturday/Sunday weekends, 8 hours per day and the
// Global location.
func DefaultCalendar() Calendar {
	return Calendar{
		WeekendDays:     []time.Weekday{time.Sunday, time.Saturday},
		HoursPerDay:     8,
		DefaultLocation: "Global",
	}
}

// IsWeekend reports whether d is one of the configured weekend days.
func (c Calendar) IsWeekend(d time.Weekday) bool {
	for _, w := range c.WeekendDays {
		if w == d {
			return true
		}
	}
	return false
}
