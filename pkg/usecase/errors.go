package usecase

import (
	"errors"
	"fmt"
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrTeamNotFound    = errors.New("team not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrQueryNotFound   = errors.New("saved query not found")
	ErrReportNotFound  = errors.New("report not found")
	ErrHolidayNotFound = errors.New("holiday not found")
	ErrLeaveNotFound   = errors.New("leave not found")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidRange is an unusable date range; it is also ErrInvalidInput
	ErrInvalidRange = fmt.Errorf("invalid date range: %w", ErrInvalidInput)

	// Collaborator errors
	ErrTrackerUnavailable   = errors.New("work tracker unavailable")
	ErrNarrativeUnavailable = errors.New("narrative generator unavailable")
)

// Context keys for error values
const (
	TeamIDKey    = "team_id"
	MemberIDKey  = "member_id"
	ReportIDKey  = "report_id"
	HolidayIDKey = "holiday_id"
	LeaveIDKey   = "leave_id"
)
