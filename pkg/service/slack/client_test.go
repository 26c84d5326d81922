package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"github.com/secmon-lab/moirai/pkg/service/slack"
)

func TestNew(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := slack.New("", "C001")
		gt.Value(t, err).NotNil()
	})

	t.Run("returns error when channel is empty", func(t *testing.T) {
		_, err := slack.New("xoxb-test", "")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates service when token is provided", func(t *testing.T) {
		svc, err := slack.New("xoxb-test", "C001")
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func testReport() (*model.Team, *model.Report) {
	team := &model.Team{ID: "platform", Name: "Platform"}
	report := &model.Report{
		ID:     "r-1",
		TeamID: "platform",
		Start:  time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Summary: model.TeamSummary{
			TotalIssues:         12,
			TotalTimeRemaining:  64,
			TotalAvailableHours: 80,
			TeamCapacityUsed:    80,
		},
		Risks: []model.Risk{
			{Type: model.RiskOverallocation, Severity: types.SeverityHigh, Message: "Alice is over capacity"},
		},
		Narrative:  "## Summary\nAll good",
		ArchiveURL: "gs://reports/platform/r-1.json",
	}
	return team, report
}

func TestNotifyReport(t *testing.T) {
	var posted atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/chat.postMessage")
		gt.NoError(t, r.ParseForm()).Required()
		gt.Value(t, r.PostForm.Get("channel")).Equal("C001")
		gt.String(t, r.PostForm.Get("text")).Contains("Capacity report: Platform")
		gt.String(t, r.PostForm.Get("blocks")).Contains("Alice is over capacity")
		posted.Add(1)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "channel": "C001", "ts": "1700000000.000100"})
	}))
	defer srv.Close()

	svc, err := slack.New("xoxb-test", "C001", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	team, report := testReport()
	gt.NoError(t, svc.NotifyReport(context.Background(), team, report)).Required()
	gt.Number(t, int(posted.Load())).Equal(1)
}

func TestNotifyReport_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "channel_not_found"})
	}))
	defer srv.Close()

	svc, err := slack.New("xoxb-test", "C404", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	team, report := testReport()
	gt.Value(t, svc.NotifyReport(context.Background(), team, report)).NotNil()
}

func TestGetChannelNames_Caches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gt.NoError(t, r.ParseForm()).Required()
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("channel") == "CMISSING" {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "channel_not_found"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":      true,
			"channel": map[string]any{"id": "C001", "name": "team-capacity"},
		})
	}))
	defer srv.Close()

	svc, err := slack.New("xoxb-test", "C001", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	ctx := context.Background()
	names, err := svc.GetChannelNames(ctx, []string{"C001", "CMISSING"})
	gt.NoError(t, err).Required()
	gt.Value(t, names["C001"]).Equal("team-capacity")
	_, ok := names["CMISSING"]
	gt.Bool(t, ok).False()

	_, err = svc.GetChannelNames(ctx, []string{"C001"})
	gt.NoError(t, err).Required()
	gt.Number(t, int(calls.Load())).Equal(2)
}

func TestTruncateToMaxBytes(t *testing.T) {
	gt.Value(t, slack.TruncateToMaxBytes("short", 10)).Equal("short")

	s := slack.TruncateToMaxBytes("稼働率の報告書です", 10)
	gt.Bool(t, utf8.ValidString(s)).True()
	gt.Bool(t, len(s) <= 10).True()
}

func TestBuildReportBlocks(t *testing.T) {
	team, report := testReport()
	blocks, text := slack.BuildReportBlocks(team, report)
	gt.Value(t, text).Equal("Capacity report: Platform (2025-01-06 to 2025-01-10)")
	// header, fields, risks, divider, narrative, archive context
	gt.Array(t, blocks).Length(6)

	report.Risks = nil
	report.Narrative = ""
	report.ArchiveURL = ""
	blocks, _ = slack.BuildReportBlocks(team, report)
	gt.Array(t, blocks).Length(2)
}

func TestIntegration(t *testing.T) {
	token := os.Getenv("TEST_SLACK_BOT_TOKEN")
	channel := os.Getenv("TEST_SLACK_CHANNEL_ID")
	if token == "" || channel == "" {
		t.Skip("TEST_SLACK_BOT_TOKEN or TEST_SLACK_CHANNEL_ID is not set")
	}

	svc, err := slack.New(token, channel)
	gt.NoError(t, err).Required()

	team, report := testReport()
	gt.NoError(t, svc.NotifyReport(context.Background(), team, report)).Required()
}
