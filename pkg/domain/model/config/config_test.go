package config_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/moirai/pkg/domain/model/config"
)

func TestCalendar_IsWeekend(t *testing.T) {
	cal := config.DefaultCalendar()
	gt.B(t, cal.IsWeekend(time.Saturday)).True()
	gt.B(t, cal.IsWeekend(time.Sunday)).True()
	gt.B(t, cal.IsWeekend(time.Friday)).False()

	fridaySaturday := config.Calendar{WeekendDays: []time.Weekday{time.Friday, time.Saturday}}
	gt.B(t, fridaySaturday.IsWeekend(time.Friday)).True()
	gt.B(t, fridaySaturday.IsWeekend(time.Sunday)).False()
}

func TestWorkload(t *testing.T) {
	w := config.Workload{TrackerBaseURL: "https://example.atlassian.net/", Priorities: config.DefaultPriorities()}

	rank, ok := w.PriorityRank("high")
	gt.B(t, ok).True()
	gt.Number(t, rank).Equal(2)

	_, ok = w.PriorityRank("Critical")
	gt.B(t, ok).False()

	gt.String(t, w.IssueURL("OPS-1")).Equal("https://example.atlassian.net/browse/OPS-1")
	gt.String(t, config.Workload{}.IssueURL("OPS-1")).Equal("")
}
