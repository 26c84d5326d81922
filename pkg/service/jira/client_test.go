package jira_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/moirai/pkg/service/jira"
)

func issueJSON(n int, assignee string, points any) map[string]any {
	fields := map[string]any{
		"summary":  fmt.Sprintf("Issue %d", n),
		"status":   map[string]any{"name": "In Progress"},
		"priority": map[string]any{"name": "High"},
		"timetracking": map[string]any{
			"timeSpentSeconds":        7200,
			"originalEstimateSeconds": 18000,
		},
		"labels":            []string{"backend"},
		"duedate":           "2025-01-10",
		"created":           "2025-01-02T09:30:00.000+0900",
		"customfield_10016": points,
	}
	if assignee != "" {
		fields["assignee"] = map[string]any{
			"accountId":    assignee,
			"displayName":  "User " + assignee,
			"emailAddress": assignee + "@example.com",
		}
	} else {
		fields["assignee"] = nil
	}
	return map[string]any{
		"id":     fmt.Sprint(10000 + n),
		"key":    fmt.Sprintf("OPS-%d", n),
		"fields": fields,
	}
}

func TestClient_Search_V3Pagination(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gt.Value(t, r.Method).Equal(http.MethodPost)
		gt.Value(t, r.URL.Path).Equal("/rest/api/3/search")
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer secret-token")

		var req struct {
			JQL        string   `json:"jql"`
			StartAt    int      `json:"startAt"`
			MaxResults int      `json:"maxResults"`
			Fields     []string `json:"fields"`
		}
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&req)).Required()
		gt.Value(t, req.JQL).Equal("project = OPS")
		gt.Value(t, req.MaxResults).Equal(2)

		var issues []map[string]any
		switch req.StartAt {
		case 0:
			issues = []map[string]any{issueJSON(1, "acc-1", 3), issueJSON(2, "", nil)}
		case 2:
			issues = []map[string]any{issueJSON(3, "acc-2", 5)}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"startAt":    req.StartAt,
			"maxResults": 2,
			"total":      3,
			"issues":     issues,
		})
	}))
	defer srv.Close()

	client, err := jira.New(srv.URL, jira.WithBearerToken("secret-token"), jira.WithPageSize(2))
	gt.NoError(t, err).Required()

	items, err := client.Search(context.Background(), "project = OPS")
	gt.NoError(t, err).Required()
	gt.Array(t, items).Length(3)
	gt.Number(t, int(calls.Load())).Equal(2)

	first := items[0]
	gt.Value(t, first.Key).Equal("OPS-1")
	gt.Value(t, first.Status).Equal("In Progress")
	gt.Value(t, first.Priority).Equal("High")
	gt.Value(t, first.Assignee.AccountID).Equal("acc-1")
	gt.Value(t, first.Assignee.Email).Equal("acc-1@example.com")
	gt.Value(t, first.TimeSpentSeconds.OrZero()).Equal(7200.0)
	gt.Value(t, first.OriginalEstimateSeconds.OrZero()).Equal(18000.0)
	gt.Array(t, first.StoryPointSlots).Length(2)
	gt.Value(t, first.StoryPointSlots[0].OrZero()).Equal(3.0)
	gt.Bool(t, first.StoryPointSlots[1].Valid).False()
	gt.Value(t, first.DueDate.Format("2006-01-02")).Equal("2025-01-10")
	gt.Bool(t, first.Created.Equal(time.Date(2025, 1, 2, 0, 30, 0, 0, time.UTC))).True()

	gt.Value(t, items[1].Assignee).Nil()
	gt.Bool(t, items[1].StoryPointSlots[0].Valid).False()
}

func TestClient_Search_V2UsesGETAndBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodGet)
		gt.Value(t, r.URL.Path).Equal("/rest/api/2/search")
		gt.Value(t, r.URL.Query().Get("jql")).Equal("project = OPS")
		gt.String(t, r.URL.Query().Get("fields")).Contains("customfield_20000")

		user, pass, ok := r.BasicAuth()
		gt.Bool(t, ok).True()
		gt.Value(t, user).Equal("bot@example.com")
		gt.Value(t, pass).Equal("api-token")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"total": 1,
			"issues": []map[string]any{{
				"id":  "1",
				"key": "OPS-1",
				"fields": map[string]any{
					"summary":              "Server issue",
					"description":          "plain text",
					"status":               map[string]any{"name": "Done"},
					"assignee":             map[string]any{"name": "jdoe", "displayName": "J Doe"},
					"timespent":            3600,
					"timeoriginalestimate": 7200,
					"customfield_20000":    8,
				},
			}},
		})
	}))
	defer srv.Close()

	client, err := jira.New(srv.URL,
		jira.WithAPIVersion("2"),
		jira.WithBasicAuth("bot@example.com", "api-token"),
		jira.WithStoryPointFields("customfield_20000"),
	)
	gt.NoError(t, err).Required()

	items, err := client.Search(context.Background(), "project = OPS")
	gt.NoError(t, err).Required()
	gt.Array(t, items).Length(1)
	gt.Value(t, items[0].Description).Equal("plain text")
	gt.Value(t, items[0].Assignee.AccountID).Equal("jdoe")
	gt.Value(t, items[0].TimeSpentSeconds.OrZero()).Equal(3600.0)
	gt.Value(t, items[0].OriginalEstimateSeconds.OrZero()).Equal(7200.0)
	gt.Value(t, items[0].StoryPointSlots[0].OrZero()).Equal(8.0)
}

func TestClient_Search_Retry(t *testing.T) {
	t.Run("retries on 503 then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"total": 0, "issues": []any{}})
		}))
		defer srv.Close()

		client, err := jira.New(srv.URL, jira.WithRetryBackoff(time.Millisecond))
		gt.NoError(t, err).Required()

		items, err := client.Search(context.Background(), "project = OPS")
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(0)
		gt.Number(t, int(calls.Load())).Equal(3)
	})

	t.Run("gives up after three attempts", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client, err := jira.New(srv.URL, jira.WithRetryBackoff(time.Millisecond))
		gt.NoError(t, err).Required()

		_, err = client.Search(context.Background(), "project = OPS")
		gt.Value(t, err).NotNil()
		gt.B(t, errors.Is(err, jira.ErrRequestFailed)).True()
		gt.Number(t, int(calls.Load())).Equal(3)
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errorMessages":["bad jql"]}`))
		}))
		defer srv.Close()

		client, err := jira.New(srv.URL, jira.WithRetryBackoff(time.Millisecond))
		gt.NoError(t, err).Required()

		_, err = client.Search(context.Background(), "project = ")
		gt.B(t, errors.Is(err, jira.ErrRequestFailed)).True()
		gt.Number(t, int(calls.Load())).Equal(1)
	})
}

func TestNew(t *testing.T) {
	_, err := jira.New("not a url")
	gt.B(t, errors.Is(err, jira.ErrInvalidBaseURL)).True()

	_, err = jira.New("https://example.atlassian.net", jira.WithAPIVersion("4"))
	gt.Value(t, err).NotNil()

	client, err := jira.New("https://example.atlassian.net/")
	gt.NoError(t, err).Required()
	_, err = client.Search(context.Background(), "  ")
	gt.Value(t, err).NotNil()
}
