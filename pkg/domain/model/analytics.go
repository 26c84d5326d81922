package model

import (
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

// BottleneckKind labels a bottleneck entry
type BottleneckKind string

const (
	BottleneckOverallocated BottleneckKind = "Overallocated"
	BottleneckNearCapacity  BottleneckKind = "Near capacity"
	BottleneckUnderutilized BottleneckKind = "Underutilized"
)

// Bottleneck flags a member whose utilization is outside the healthy band.
type Bottleneck struct {
	MemberID           types.MemberID `json:"memberId"`
	Name               string         `json:"name"`
	Utilization        float64        `json:"utilization"`
	Issue              BottleneckKind `json:"issue"`
	Severity           types.Severity `json:"severity"`
	ExcessHours        *float64       `json:"excessHours,omitempty"`
	AvailableBandwidth *float64       `json:"availableBandwidth,omitempty"`
}

type SuggestionType string

const (
	SuggestionReallocation     SuggestionType = "reallocation"
	SuggestionResourceShortage SuggestionType = "resource_shortage"
)

type Feasibility string

const (
	FeasibilityPossible Feasibility = "possible"
	FeasibilityPartial  Feasibility = "partial"
)

// Suggestion proposes moving work between members.
type Suggestion struct {
	Type           SuggestionType `json:"type"`
	Severity       types.Severity `json:"severity"`
	Feasibility    Feasibility    `json:"feasibility,omitempty"`
	Message        string         `json:"message"`
	From           []string       `json:"from"`
	To             []string       `json:"to"`
	ExcessHours    float64        `json:"excessHours"`
	AvailableHours float64        `json:"availableHours"`
}

type RiskType string

const (
	RiskOverallocation     RiskType = "overallocation"
	RiskBlockedIssues      RiskType = "blocked_issues"
	RiskUnbalancedWorkload RiskType = "unbalanced_workload"
)

// Risk is one entry of a risk assessment.
type Risk struct {
	Type     RiskType       `json:"type"`
	Severity types.Severity `json:"severity"`
	Message  string         `json:"message"`
}

// StatusBreakdown counts work items per normalized status.
type StatusBreakdown struct {
	ToDo       int `json:"toDo"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Blocked    int `json:"blocked"`
	Done       int `json:"done"`
	Other      int `json:"other"`
}

// Add counts one item of status s.
func (b *StatusBreakdown) Add(s types.WorkStatus) {
	switch s {
	case types.WorkStatusToDo:
		b.ToDo++
	case types.WorkStatusOpen:
		b.Open++
	case types.WorkStatusInProgress:
		b.InProgress++
	case types.WorkStatusBlocked:
		b.Blocked++
	case types.WorkStatusDone:
		b.Done++
	default:
		b.Other++
	}
}

// BlockedPercentage is blocked / (in-progress + to-do + open + blocked) * 100,
// or 0 when there is no active work.
func (b StatusBreakdown) BlockedPercentage() float64 {
	active := b.InProgress + b.ToDo + b.Open + b.Blocked
	if active == 0 {
		return 0
	}
	return Round2(float64(b.Blocked) / float64(active) * 100)
}

// TeamSummary aggregates items and member capacities.
type TeamSummary struct {
	TotalIssues           int     `json:"totalIssues"`
	TotalStoryPoints      float64 `json:"totalStoryPoints"`
	TotalOriginalEstimate float64 `json:"totalOriginalEstimate"`
	TotalTimeSpent        float64 `json:"totalTimeSpent"`
	TotalTimeRemaining    float64 `json:"totalTimeRemaining"`
	TotalWorkingHours     float64 `json:"totalWorkingHours"`
	TotalAvailableHours   float64 `json:"totalAvailableHours"`
	TotalPTOHours         float64 `json:"totalPtoHours"`
	AverageUtilization    float64 `json:"averageUtilization"`
	TeamCapacityUsed      float64 `json:"teamCapacityUsed"`
}

// BurnRate is story points completed per hour spent on completed items.
type BurnRate struct {
	CompletedIssues      int     `json:"completedIssues"`
	StoryPointsCompleted float64 `json:"storyPointsCompleted"`
	HoursSpent           float64 `json:"hoursSpent"`
	Rate                 float64 `json:"rate"`
	EstimateAccuracy     float64 `json:"estimateAccuracy"`
}

// MemberBurnRate is the burn rate of one assignee.
type MemberBurnRate struct {
	Assignee types.AssigneeKey `json:"assigneeId"`
	MemberID types.MemberID    `json:"memberId,omitempty"`
	Name     string            `json:"name"`
	BurnRate
}

// Prediction estimates hours from historical actuals.
type Prediction struct {
	PredictedHours float64          `json:"predictedHours"`
	Variance       float64          `json:"variance"`
	SampleSize     int              `json:"sampleSize"`
	Confidence     types.Confidence `json:"confidence"`
}

// TeamAnalytics bundles every analysis of a team for a window.
type TeamAnalytics struct {
	Capacity        *TeamCapacity     `json:"capacity"`
	Summary         TeamSummary       `json:"summary"`
	StatusBreakdown StatusBreakdown   `json:"statusBreakdown"`
	Bottlenecks     []Bottleneck      `json:"bottlenecks"`
	Suggestions     []Suggestion      `json:"suggestions"`
	Risks           []Risk            `json:"risks"`
	BurnRate        BurnRate          `json:"burnRate"`
	MemberBurnRates []MemberBurnRate  `json:"memberBurnRates"`
	Workload        []*AssigneeBucket `json:"workload"`
}
