package types

import "strings"

// WorkStatus is a tracker status folded into the buckets used by analytics
type WorkStatus string

const (
	WorkStatusToDo       WorkStatus = "to-do"
	WorkStatusOpen       WorkStatus = "open"
	WorkStatusInProgress WorkStatus = "in-progress"
	WorkStatusBlocked    WorkStatus = "blocked"
	WorkStatusDone       WorkStatus = "done"
	WorkStatusOther      WorkStatus = "other"
)

// NormalizeStatus maps a raw tracker status name onto a WorkStatus.
// Matching is case-insensitive and ignores surrounding whitespace.
func NormalizeStatus(raw string) WorkStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "to do", "todo", "to-do", "backlog", "selected for development":
		return WorkStatusToDo
	case "open", "reopened", "new":
		return WorkStatusOpen
	case "in progress", "in-progress", "in review", "review", "in development":
		return WorkStatusInProgress
	case "blocked", "on hold", "impeded":
		return WorkStatusBlocked
	case "done", "closed", "resolved", "complete", "completed":
		return WorkStatusDone
	default:
		return WorkStatusOther
	}
}

// IsDone reports whether the status counts as completed work.
func (s WorkStatus) IsDone() bool {
	return s == WorkStatusDone
}

func (s WorkStatus) String() string {
	return string(s)
}
