package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound    = goerr.New("configuration file not found")
	ErrInvalidConfig     = goerr.New("invalid configuration")
	ErrDuplicatePriority = goerr.New("duplicate priority")
	ErrInvalidWeekday    = goerr.New("invalid weekend day")
	ErrInvalidSchedule   = goerr.New("invalid report schedule")
	ErrMissingFlag       = goerr.New("required flag is missing")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	PriorityKey   = "priority"
	WeekdayKey    = "weekday"
	ScheduleKey   = "schedule"
	FlagKey       = "flag"
)
