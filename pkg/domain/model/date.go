package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// MaxRangeDays is the longest range, in days, a computation accepts.
const MaxRangeDays = 731

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid date", goerr.V("date", s))
	}
	return t, nil
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange truncates both bounds to days.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// Validate rejects zero bounds and ranges that end before they start.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return goerr.New("start and end dates are required")
	}
	if r.End.Before(r.Start) {
		return goerr.New("end date is before start date",
			goerr.V("start", r.Start.Format(DateLayout)),
			goerr.V("end", r.End.Format(DateLayout)))
	}
	return nil
}

// Days is the number of calendar days in the range, 0 when it is reversed.
// Durations beyond the time.Duration range saturate.
func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return int(r.End.Sub(r.Start)/(24*time.Hour)) + 1
}

// Contains reports whether t's day falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Overlaps reports whether [start, end] intersects the range.
func (r DateRange) Overlaps(start, end time.Time) bool {
	return !Day(start).After(r.End) && !Day(end).Before(r.Start)
}
