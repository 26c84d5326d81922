package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

// GlobalLocation marks a holiday observed at every location.
const GlobalLocation = "Global"

// DefaultHolidayHours is used when a holiday record has no duration.
const DefaultHolidayHours = 8.0

type HolidayID string

func NewHolidayID() HolidayID {
	return HolidayID(uuid.New().String())
}

// Holiday is a company holiday at a location. Hours nil means a full day.
type Holiday struct {
	ID        HolidayID `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Location  string    `json:"location"`
	Hours     *float64  `json:"hours,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HoursOrDefault returns Hours, or DefaultHolidayHours when unset.
func (h *Holiday) HoursOrDefault() float64 {
	if h.Hours == nil {
		return DefaultHolidayHours
	}
	return *h.Hours
}

// AppliesTo reports whether the holiday is observed at location.
func (h *Holiday) AppliesTo(location string) bool {
	return h.Location == location || h.Location == GlobalLocation
}

func (h *Holiday) Validate() error {
	if h.Date.IsZero() {
		return goerr.New("holiday date is required")
	}
	if h.Location == "" {
		return goerr.New("holiday location is required")
	}
	if h.Hours != nil && (*h.Hours < 0 || *h.Hours > 24) {
		return goerr.New("holiday hours must be between 0 and 24", goerr.V("hours", *h.Hours))
	}
	return nil
}

type LeaveID string

func NewLeaveID() LeaveID {
	return LeaveID(uuid.New().String())
}

// Leave is a paid-time-off record. Duration is the number of hours it
// consumes and is not derived from the interval.
type Leave struct {
	ID        LeaveID           `json:"id"`
	MemberID  types.MemberID    `json:"memberId"`
	Start     time.Time         `json:"start"`
	End       time.Time         `json:"end"`
	Duration  float64           `json:"duration"`
	Status    types.LeaveStatus `json:"status"`
	Reason    string            `json:"reason,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Overlaps applies the test start <= r.End && end >= r.Start.
func (l *Leave) Overlaps(r DateRange) bool {
	return r.Overlaps(l.Start, l.End)
}

func (l *Leave) Validate() error {
	if err := l.MemberID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid leave member")
	}
	if l.Start.IsZero() || l.End.IsZero() {
		return goerr.New("leave start and end are required")
	}
	if l.End.Before(l.Start) {
		return goerr.New("leave ends before it starts", goerr.V("leave_id", l.ID))
	}
	if l.Duration < 0 {
		return goerr.New("leave duration must not be negative", goerr.V("duration", l.Duration))
	}
	if !l.Status.IsValid() {
		return goerr.New("invalid leave status", goerr.V("status", l.Status))
	}
	return nil
}
