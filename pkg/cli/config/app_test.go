package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/moirai/pkg/cli/config"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moirai.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	t.Run("full configuration", func(t *testing.T) {
		path := writeConfig(t, `
[calendar]
weekend_days = [5, 6]
hours_per_day = 7.5
default_location = "Tokyo"

[tracker]
base_url = "https://example.atlassian.net"
story_point_fields = ["customfield_10016"]

[[priority]]
name = "Urgent"
rank = 1

[[priority]]
name = "Normal"
rank = 2

[report]
schedule = "0 9 * * 1"
timezone = "Asia/Tokyo"
teams = ["platform", "data"]
narrative_max_attempts = 2
narrative_temperature = 0.3
narrative_max_tokens = 2048
`)
		cfg, err := config.LoadAppConfiguration(path)
		gt.NoError(t, err).Required()

		cal := cfg.ToCalendar()
		gt.B(t, cal.IsWeekend(time.Friday)).True()
		gt.B(t, cal.IsWeekend(time.Sunday)).False()
		gt.Value(t, cal.HoursPerDay).Equal(7.5)
		gt.String(t, cal.DefaultLocation).Equal("Tokyo")

		workload := cfg.ToWorkload("https://ignored.example.com")
		gt.String(t, workload.IssueURL("PLAT-1")).Equal("https://example.atlassian.net/browse/PLAT-1")
		rank, ok := workload.PriorityRank("urgent")
		gt.B(t, ok).True()
		gt.Number(t, rank).Equal(1)

		gt.String(t, cfg.ReportLocation().String()).Equal("Asia/Tokyo")
		gt.Value(t, cfg.ReportTeams()).Equal([]types.TeamID{"platform", "data"})
		gt.Number(t, cfg.Report.NarrativeMaxAttempts).Equal(2)
		gt.Value(t, cfg.Report.NarrativeTemperature).NotNil().Required()
		gt.Number(t, *cfg.Report.NarrativeTemperature).Equal(0.3)
		gt.Number(t, cfg.Report.NarrativeMaxTokens).Equal(2048)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.LoadAppConfiguration(writeConfig(t, ``))
		gt.NoError(t, err).Required()

		cal := cfg.ToCalendar()
		gt.B(t, cal.IsWeekend(time.Saturday)).True()
		gt.B(t, cal.IsWeekend(time.Sunday)).True()
		gt.Value(t, cal.HoursPerDay).Equal(8.0)
		gt.String(t, cal.DefaultLocation).Equal("Global")
		gt.String(t, cfg.ReportLocation().String()).Equal("UTC")

		workload := cfg.ToWorkload("https://jira.example.com")
		gt.String(t, workload.IssueURL("OPS-2")).Equal("https://jira.example.com/browse/OPS-2")
		_, ok := workload.PriorityRank("Highest")
		gt.B(t, ok).True()
		gt.Value(t, cfg.Report.NarrativeTemperature).Nil()
	})

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "weekend day out of range",
			content: "[calendar]\nweekend_days = [7]\n",
			wantErr: config.ErrInvalidWeekday,
		},
		{
			name:    "hours per day above 24",
			content: "[calendar]\nhours_per_day = 25.0\n",
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "three story point fields",
			content: "[tracker]\nstory_point_fields = [\"a\", \"b\", \"c\"]\n",
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "duplicate priority name",
			content: "[[priority]]\nname = \"High\"\nrank = 1\n\n[[priority]]\nname = \"High\"\nrank = 2\n",
			wantErr: config.ErrDuplicatePriority,
		},
		{
			name:    "duplicate priority rank",
			content: "[[priority]]\nname = \"High\"\nrank = 1\n\n[[priority]]\nname = \"Low\"\nrank = 1\n",
			wantErr: config.ErrDuplicatePriority,
		},
		{
			name:    "invalid schedule",
			content: "[report]\nschedule = \"every monday\"\n",
			wantErr: config.ErrInvalidSchedule,
		},
		{
			name:    "unknown timezone",
			content: "[report]\ntimezone = \"Mars/Olympus\"\n",
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "temperature above 2",
			content: "[report]\nnarrative_temperature = 2.5\n",
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "negative max tokens",
			content: "[report]\nnarrative_max_tokens = -1\n",
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "malformed toml",
			content: "[calendar\n",
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadAppConfiguration(writeConfig(t, tt.content))
			gt.Error(t, err).Is(tt.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(filepath.Join(t.TempDir(), "none.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})
}

func TestApp_Configure(t *testing.T) {
	t.Run("no path uses defaults", func(t *testing.T) {
		cfg, err := config.NewAppForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.ToCalendar().HoursPerDay).Equal(8.0)
	})

	t.Run("path is loaded", func(t *testing.T) {
		path := writeConfig(t, "[calendar]\nhours_per_day = 6.0\n")
		cfg, err := config.NewAppForTest(path).Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.ToCalendar().HoursPerDay).Equal(6.0)
	})
}
