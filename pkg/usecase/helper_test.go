package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"github.com/secmon-lab/moirai/pkg/repository/memory"
)

var (
	// Monday to Friday
	weekStart = time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	weekEnd   = time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
)

func day(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// mockTracker is a mock implementation of interfaces.WorkTracker
type mockTracker struct {
	items   []*model.RawWorkItem
	err     error
	queries []string
}

func (m *mockTracker) Search(ctx context.Context, query string) ([]*model.RawWorkItem, error) {
	m.queries = append(m.queries, query)
	return m.items, m.err
}

type mockNarrative struct {
	result *interfaces.NarrativeResult
	err    error
	req    interfaces.NarrativeRequest
}

func (m *mockNarrative) Generate(ctx context.Context, req interfaces.NarrativeRequest) (*interfaces.NarrativeResult, error) {
	m.req = req
	return m.result, m.err
}

type mockNotifier struct {
	reports []*model.Report
	err     error
}

func (m *mockNotifier) NotifyReport(ctx context.Context, team *model.Team, report *model.Report) error {
	m.reports = append(m.reports, report)
	return m.err
}

type mockArchiver struct {
	url string
	err error
}

func (m *mockArchiver) Archive(ctx context.Context, report *model.Report) (string, error) {
	return m.url, m.err
}

// brokenRepository fails every holiday and leave lookup
type brokenRepository struct {
	interfaces.Repository
}

type brokenHolidays struct {
	interfaces.HolidayRepository
}

func (brokenHolidays) FindByLocation(ctx context.Context, location string, start, end time.Time) ([]*model.Holiday, error) {
	return nil, errors.New("calendar store unavailable")
}

type brokenLeaves struct {
	interfaces.LeaveRepository
}

func (brokenLeaves) FindByMember(ctx context.Context, memberID types.MemberID, status types.LeaveStatus, start, end time.Time) ([]*model.Leave, error) {
	return nil, errors.New("leave store unavailable")
}

func (r brokenRepository) Holiday() interfaces.HolidayRepository {
	return brokenHolidays{r.Repository.Holiday()}
}

func (r brokenRepository) Leave() interfaces.LeaveRepository {
	return brokenLeaves{r.Repository.Leave()}
}

func hoursPtr(h float64) *float64 {
	return &h
}

func testTeam() *model.Team {
	return &model.Team{
		ID:       "platform",
		Name:     "Platform",
		Location: "Tokyo",
		Members: []model.Member{
			{ID: "alice", Name: "Alice", Email: "alice@example.com", ExternalAccountID: "acc-alice"},
			{ID: "bob", Name: "Bob", Email: "bob@example.com", ExternalAccountID: "acc-bob"},
			{ID: "carol", Name: "Carol", Email: "carol@example.com", ExternalAccountID: "acc-carol", Location: "London"},
		},
	}
}

func hours(h float64) model.OptionalFloat {
	return model.Some(h * 3600)
}

func rawItem(key, status, account string, estimate, spent, points float64) *model.RawWorkItem {
	raw := &model.RawWorkItem{
		ID:                      key,
		Key:                     key,
		Summary:                 "Work on " + key,
		Status:                  status,
		OriginalEstimateSeconds: hours(estimate),
		TimeSpentSeconds:        hours(spent),
		StoryPointSlots:         []model.OptionalFloat{model.Some(points)},
	}
	if account != "" {
		raw.Assignee = &model.RawAssignee{AccountID: account, DisplayName: "Tracker " + account}
	}
	return raw
}

// seedTeam stores testTeam and its saved query
func seedTeam(t *testing.T, repo interfaces.Repository) *model.Team {
	t.Helper()
	ctx := context.Background()

	team, err := repo.Team().Put(ctx, testTeam())
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Query().Put(ctx, &model.SavedQuery{
		TeamID: team.ID,
		Name:   "sprint",
		JQL:    "project = PLAT AND sprint in openSprints()",
	})).Required()
	return team
}

func newRepo() interfaces.Repository {
	return memory.New()
}
