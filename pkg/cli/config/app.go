package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	domainConfig "github.com/secmon-lab/moirai/pkg/domain/model/config"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// DefaultReportSchedule runs reports every Monday at 09:00
const DefaultReportSchedule = "0 9 * * 1"

// AppConfig represents the application configuration file
type AppConfig struct {
	Calendar   Calendar   `toml:"calendar"`
	Tracker    Tracker    `toml:"tracker"`
	Priorities []Priority `toml:"priority"`
	Report     Report     `toml:"report"`
}

// Calendar holds attendance settings. Weekend days use time.Weekday
// numbering (0 is Sunday).
type Calendar struct {
	WeekendDays     []int   `toml:"weekend_days"`
	HoursPerDay     float64 `toml:"hours_per_day"`
	DefaultLocation string  `toml:"default_location"`
}

// Tracker holds presentation and decoding settings of the work tracker
type Tracker struct {
	BaseURL          string   `toml:"base_url"`
	StoryPointFields []string `toml:"story_point_fields"`
}

// Priority is one row of the issue sort table
type Priority struct {
	Name string `toml:"name"`
	Rank int    `toml:"rank"`
}

// Report configures scheduled report generation. An empty schedule
// disables the worker.
type Report struct {
	Schedule               string   `toml:"schedule"`
	Timezone               string   `toml:"timezone"`
	Teams                  []string `toml:"teams"`
	Concurrency            int      `toml:"concurrency"`
	NarrativeMaxAttempts   int      `toml:"narrative_max_attempts"`
	NarrativeContextWindow int      `toml:"narrative_context_window"`
	NarrativeTemperature   *float64 `toml:"narrative_temperature"`
	NarrativeMaxTokens     int      `toml:"narrative_max_tokens"`
}

// DefaultAppConfig is used when no configuration file is given
func DefaultAppConfig() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}

func (a *AppConfig) applyDefaults() {
	def := domainConfig.DefaultCalendar()
	if a.Calendar.WeekendDays == nil {
		for _, d := range def.WeekendDays {
			a.Calendar.WeekendDays = append(a.Calendar.WeekendDays, int(d))
		}
	}
	if a.Calendar.HoursPerDay == 0 {
		a.Calendar.HoursPerDay = def.HoursPerDay
	}
	if a.Calendar.DefaultLocation == "" {
		a.Calendar.DefaultLocation = def.DefaultLocation
	}
	if a.Report.Timezone == "" {
		a.Report.Timezone = "UTC"
	}
}

func (c *Calendar) Validate() error {
	for _, d := range c.WeekendDays {
		if d < int(time.Sunday) || d > int(time.Saturday) {
			return goerr.Wrap(ErrInvalidWeekday, "weekend day must be between 0 and 6", goerr.V(WeekdayKey, d))
		}
	}
	if c.HoursPerDay <= 0 || c.HoursPerDay > 24 {
		return goerr.Wrap(ErrInvalidConfig, "hours_per_day must be in (0, 24]", goerr.V("hours_per_day", c.HoursPerDay))
	}
	return nil
}

func (t *Tracker) Validate() error {
	if len(t.StoryPointFields) > 2 {
		return goerr.Wrap(ErrInvalidConfig, "at most two story point fields are supported",
			goerr.V("story_point_fields", t.StoryPointFields))
	}
	return nil
}

func (r *Report) Validate() error {
	if r.Schedule != "" {
		if _, err := cron.ParseStandard(r.Schedule); err != nil {
			return goerr.Wrap(ErrInvalidSchedule, err.Error(), goerr.V(ScheduleKey, r.Schedule))
		}
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "unknown report timezone", goerr.V("timezone", r.Timezone))
	}
	for _, id := range r.Teams {
		if err := types.TeamID(id).Validate(); err != nil {
			return goerr.Wrap(ErrInvalidConfig, "invalid report team", goerr.V("team_id", id))
		}
	}
	if r.Concurrency < 0 || r.NarrativeMaxAttempts < 0 || r.NarrativeContextWindow < 0 || r.NarrativeMaxTokens < 0 {
		return goerr.Wrap(ErrInvalidConfig, "report limits must not be negative")
	}
	if t := r.NarrativeTemperature; t != nil && (*t < 0 || *t > 2) {
		return goerr.Wrap(ErrInvalidConfig, "narrative_temperature must be in [0, 2]",
			goerr.V("narrative_temperature", *t))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if err := a.Calendar.Validate(); err != nil {
		return goerr.Wrap(err, "invalid calendar")
	}
	if err := a.Tracker.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tracker")
	}

	names := make(map[string]bool)
	ranks := make(map[int]bool)
	for _, p := range a.Priorities {
		if p.Name == "" {
			return goerr.Wrap(ErrInvalidConfig, "priority name is required", goerr.V("rank", p.Rank))
		}
		if names[p.Name] {
			return goerr.Wrap(ErrDuplicatePriority, "duplicate priority name", goerr.V(PriorityKey, p.Name))
		}
		if ranks[p.Rank] {
			return goerr.Wrap(ErrDuplicatePriority, "duplicate priority rank", goerr.V(PriorityKey, p.Name), goerr.V("rank", p.Rank))
		}
		names[p.Name] = true
		ranks[p.Rank] = true
	}

	if err := a.Report.Validate(); err != nil {
		return goerr.Wrap(err, "invalid report")
	}
	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// ToCalendar converts the calendar section to the domain settings
func (a *AppConfig) ToCalendar() domainConfig.Calendar {
	days := make([]time.Weekday, len(a.Calendar.WeekendDays))
	for i, d := range a.Calendar.WeekendDays {
		days[i] = time.Weekday(d)
	}
	return domainConfig.Calendar{
		WeekendDays:     days,
		HoursPerDay:     a.Calendar.HoursPerDay,
		DefaultLocation: a.Calendar.DefaultLocation,
	}
}

// ToWorkload converts tracker and priority settings. trackerURL is used
// for deep links when the file does not set base_url.
func (a *AppConfig) ToWorkload(trackerURL string) domainConfig.Workload {
	priorities := domainConfig.DefaultPriorities()
	if len(a.Priorities) > 0 {
		priorities = make([]domainConfig.Priority, len(a.Priorities))
		for i, p := range a.Priorities {
			priorities[i] = domainConfig.Priority{Name: p.Name, Rank: p.Rank}
		}
	}

	baseURL := a.Tracker.BaseURL
	if baseURL == "" {
		baseURL = trackerURL
	}
	return domainConfig.Workload{
		TrackerBaseURL: baseURL,
		Priorities:     priorities,
	}
}

// ReportSchedule returns the configured schedule or DefaultReportSchedule
func (a *AppConfig) ReportSchedule() string {
	if a.Report.Schedule == "" {
		return DefaultReportSchedule
	}
	return a.Report.Schedule
}

// ReportLocation returns the time zone the report schedule runs in
func (a *AppConfig) ReportLocation() *time.Location {
	loc, err := time.LoadLocation(a.Report.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ReportTeams returns the configured report teams
func (a *AppConfig) ReportTeams() []types.TeamID {
	ids := make([]types.TeamID, len(a.Report.Teams))
	for i, id := range a.Report.Teams {
		ids[i] = types.TeamID(id)
	}
	return ids
}

// App holds the CLI flag selecting the configuration file
type App struct {
	path string
}

func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML configuration file",
			Sources:     cli.EnvVars("MOIRAI_CONFIG"),
			Destination: &x.path,
		},
	}
}

func (x *App) Path() string {
	return x.path
}

// Configure loads the file, or returns the defaults when no path is set
func (x *App) Configure() (*AppConfig, error) {
	if x.path == "" {
		return DefaultAppConfig(), nil
	}
	return LoadAppConfiguration(x.path)
}
