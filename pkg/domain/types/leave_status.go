package types

import "github.com/m-mizutani/goerr/v2"

// LeaveStatus is the approval state of a paid-time-off record
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// IsValid checks if the leave status is valid
func (s LeaveStatus) IsValid() bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a leave record may move to next. Only
// pending records can be decided.
func (s LeaveStatus) CanTransitionTo(next LeaveStatus) bool {
	return s == LeaveStatusPending && (next == LeaveStatusApproved || next == LeaveStatusRejected)
}

func (s LeaveStatus) String() string {
	return string(s)
}

// ParseLeaveStatus parses a string into a LeaveStatus
func ParseLeaveStatus(s string) (LeaveStatus, error) {
	status := LeaveStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid leave status", goerr.V("status", s))
	}
	return status, nil
}
