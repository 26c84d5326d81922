package model

import (
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

// AssigneeBucket accumulates the work items of one assignee.
type AssigneeBucket struct {
	Key         types.AssigneeKey `json:"assigneeId"`
	MemberID    types.MemberID    `json:"memberId,omitempty"`
	DisplayName string            `json:"displayName"`
	Email       string            `json:"email"`

	IssueCount       int     `json:"issueCount"`
	StoryPoints      float64 `json:"storyPoints"`
	TimeSpent        float64 `json:"timeSpent"`
	OriginalEstimate float64 `json:"originalEstimate"`
	TimeRemaining    float64 `json:"timeRemaining"`

	Items []*WorkItem `json:"-"`
}

// AssignedWork returns the contribution of the bucket to a capacity
// calculation.
func (b *AssigneeBucket) AssignedWork() AssignedWork {
	if b == nil {
		return AssignedWork{}
	}
	return AssignedWork{
		IssueCount:       b.IssueCount,
		StoryPoints:      b.StoryPoints,
		TimeSpent:        b.TimeSpent,
		OriginalEstimate: b.OriginalEstimate,
	}
}

// EnrichedIssue is a display-ready work item.
type EnrichedIssue struct {
	*WorkItem
	PercentComplete int            `json:"percentComplete"`
	URL             string         `json:"url"`
	MemberID        types.MemberID `json:"memberId,omitempty"`
	AssigneeName    string         `json:"assigneeName"`
	AssigneeEmail   string         `json:"assigneeEmail"`
}
