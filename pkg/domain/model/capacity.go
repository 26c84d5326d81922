package model

import (
	"time"

	"github.com/secmon-lab/moirai/pkg/domain/types"
)

// AssignedWork is the work assigned to one member in a window.
type AssignedWork struct {
	IssueCount       int     `json:"issueCount"`
	StoryPoints      float64 `json:"storyPoints"`
	TimeSpent        float64 `json:"timeSpent"`
	OriginalEstimate float64 `json:"originalEstimate"`
}

// MemberCapacity is the capacity of one member for a date range. It is
// computed per request and never stored.
type MemberCapacity struct {
	MemberID    types.MemberID `json:"memberId"`
	TeamID      types.TeamID   `json:"teamId"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Designation string         `json:"designation"`
	Location    string         `json:"location"`

	BusinessHours float64 `json:"businessHours"`
	WorkingHours  float64 `json:"workingHours"`
	PTOHours      float64 `json:"ptoHours"`
	HolidayHours  float64 `json:"holidayHours"`

	IssueCount       int     `json:"issueCount"`
	OriginalEstimate float64 `json:"originalEstimate"`
	TimeSpent        float64 `json:"timeSpent"`
	TimeRemaining    float64 `json:"timeRemaining"`
	StoryPoints      float64 `json:"storyPoints"`

	AvailableHours        float64              `json:"availableHours"`
	RemainingBandwidth    float64              `json:"remainingBandwidth"`
	UtilizationPercentage float64              `json:"utilizationPercentage"`
	Status                types.CapacityStatus `json:"status"`
}

// CapacityTotals sums the numeric fields of every member.
type CapacityTotals struct {
	WorkingHours     float64 `json:"workingHours"`
	AvailableHours   float64 `json:"availableHours"`
	PTOHours         float64 `json:"ptoHours"`
	HolidayHours     float64 `json:"holidayHours"`
	OriginalEstimate float64 `json:"originalEstimate"`
	TimeSpent        float64 `json:"timeSpent"`
	TimeRemaining    float64 `json:"timeRemaining"`
	StoryPoints      float64 `json:"storyPoints"`
}

// Add accumulates m into the totals.
func (t *CapacityTotals) Add(m *MemberCapacity) {
	t.WorkingHours = Round2(t.WorkingHours + m.WorkingHours)
	t.AvailableHours = Round2(t.AvailableHours + m.AvailableHours)
	t.PTOHours = Round2(t.PTOHours + m.PTOHours)
	t.HolidayHours = Round2(t.HolidayHours + m.HolidayHours)
	t.OriginalEstimate = Round2(t.OriginalEstimate + m.OriginalEstimate)
	t.TimeSpent = Round2(t.TimeSpent + m.TimeSpent)
	t.TimeRemaining = Round2(t.TimeRemaining + m.TimeRemaining)
	t.StoryPoints = Round2(t.StoryPoints + m.StoryPoints)
}

// TeamCapacity aggregates member capacities for a team.
type TeamCapacity struct {
	TeamID   types.TeamID      `json:"teamId"`
	TeamName string            `json:"teamName"`
	Location string            `json:"location"`
	Start    time.Time         `json:"start"`
	End      time.Time         `json:"end"`
	Members  []*MemberCapacity `json:"members"`
	Totals   CapacityTotals    `json:"totals"`
}
