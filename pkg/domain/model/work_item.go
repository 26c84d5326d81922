package model

import (
	"time"

	"github.com/secmon-lab/moirai/pkg/domain/types"
)

const secondsPerHour = 3600.0

// RawAssignee is the assignee block of a tracker issue.
type RawAssignee struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"emailAddress"`
}

// RawWorkItem is a tracker issue as returned by a search. Numeric fields
// keep their absent/null state until Normalize.
type RawWorkItem struct {
	ID                      string
	Key                     string
	Summary                 string
	Description             string
	Status                  string
	Priority                string
	Assignee                *RawAssignee
	TimeSpentSeconds        OptionalFloat
	OriginalEstimateSeconds OptionalFloat
	// StoryPointSlots holds the configured story point custom fields in
	// lookup order.
	StoryPointSlots []OptionalFloat
	Labels          []string
	DueDate         *time.Time
	Created         time.Time
	Updated         time.Time
}

// Assignee identifies the owner of a normalized work item.
type Assignee struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// WorkItem is the normalized, immutable form of a tracker issue. Hours are
// rounded with Round2.
type WorkItem struct {
	ID                    string           `json:"id"`
	Key                   string           `json:"key"`
	Summary               string           `json:"summary"`
	Description           string           `json:"description,omitempty"`
	Status                string           `json:"status"`
	StatusCategory        types.WorkStatus `json:"statusCategory"`
	Priority              string           `json:"priority,omitempty"`
	Assignee              *Assignee        `json:"assignee"`
	StoryPoints           float64          `json:"storyPoints"`
	TimeSpentHours        float64          `json:"timeSpent"`
	OriginalEstimateHours float64          `json:"originalEstimate"`
	TimeRemainingHours    float64          `json:"timeRemaining"`
	DueDate               *time.Time       `json:"dueDate,omitempty"`
	Labels                []string         `json:"labels"`
	Created               time.Time        `json:"created"`
	Updated               time.Time        `json:"updated"`
}

// Normalize converts a raw tracker record. Story points come from the first
// slot holding a non-zero value. Negative inputs are treated as zero.
func Normalize(raw *RawWorkItem) *WorkItem {
	spent := Round2(nonNegative(raw.TimeSpentSeconds.OrZero()) / secondsPerHour)
	estimate := Round2(nonNegative(raw.OriginalEstimateSeconds.OrZero()) / secondsPerHour)

	var points float64
	for _, slot := range raw.StoryPointSlots {
		if slot.IsSet() {
			points = nonNegative(slot.Value)
			break
		}
	}

	var assignee *Assignee
	if raw.Assignee != nil && raw.Assignee.AccountID != "" {
		assignee = &Assignee{
			ID:          raw.Assignee.AccountID,
			DisplayName: raw.Assignee.DisplayName,
			Email:       raw.Assignee.Email,
		}
	}

	labels := make([]string, len(raw.Labels))
	copy(labels, raw.Labels)

	return &WorkItem{
		ID:                    raw.ID,
		Key:                   raw.Key,
		Summary:               raw.Summary,
		Description:           raw.Description,
		Status:                raw.Status,
		StatusCategory:        types.NormalizeStatus(raw.Status),
		Priority:              raw.Priority,
		Assignee:              assignee,
		StoryPoints:           points,
		TimeSpentHours:        spent,
		OriginalEstimateHours: estimate,
		TimeRemainingHours:    RemainingHours(estimate, spent),
		DueDate:               raw.DueDate,
		Labels:                labels,
		Created:               raw.Created,
		Updated:               raw.Updated,
	}
}

// NormalizeAll normalizes every raw record in order.
func NormalizeAll(raws []*RawWorkItem) []*WorkItem {
	items := make([]*WorkItem, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		items = append(items, Normalize(raw))
	}
	return items
}

// RemainingHours is max(0, estimate - spent), rounded.
func RemainingHours(estimate, spent float64) float64 {
	return Round2(nonNegative(estimate - spent))
}

// AssigneeKey returns the grouping key of the item.
func (w *WorkItem) AssigneeKey() types.AssigneeKey {
	if w.Assignee == nil {
		return types.Unassigned()
	}
	return types.Assigned(w.Assignee.ID)
}

func nonNegative(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
