package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

// ReportID is a UUID-based identifier for Report
type ReportID string

// NewReportID generates a new UUID v4 ReportID
func NewReportID() ReportID {
	return ReportID(uuid.New().String())
}

// NarrativeState is the terminal state of narrative generation
type NarrativeState string

const (
	NarrativeSucceeded         NarrativeState = "succeeded"
	NarrativeExhaustedFallback NarrativeState = "exhausted_fallback"
	NarrativeSkipped           NarrativeState = "skipped"
)

// Report is a generated team report kept for history.
type Report struct {
	ID             ReportID       `json:"id"`
	TeamID         types.TeamID   `json:"teamId"`
	Start          time.Time      `json:"start"`
	End            time.Time      `json:"end"`
	Summary        TeamSummary    `json:"summary"`
	Risks          []Risk         `json:"risks"`
	BurnRate       BurnRate       `json:"burnRate"`
	Trend          types.Trend    `json:"trend"`
	Prediction     Prediction     `json:"prediction"`
	Narrative      string         `json:"narrative"`
	NarrativeState NarrativeState `json:"narrativeState"`
	ArchiveURL     string         `json:"archiveUrl,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}
