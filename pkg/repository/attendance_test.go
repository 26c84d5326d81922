package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

func date(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func hours(h float64) *float64 {
	return &h
}

func runHolidayRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	seed := func(t *testing.T, repo interfaces.Repository) {
		holidays := []*model.Holiday{
			{ID: "h1", Name: "New Year", Date: date("2025-01-01"), Location: model.GlobalLocation},
			{ID: "h2", Name: "Coming of Age Day", Date: date("2025-01-13"), Location: "Tokyo"},
			{ID: "h3", Name: "Bank Holiday", Date: date("2025-01-06"), Location: "London", Hours: hours(4)},
			{ID: "h4", Name: "Outside", Date: date("2025-02-11"), Location: "Tokyo"},
		}
		for _, h := range holidays {
			gt.NoError(t, repo.Holiday().Put(context.Background(), h)).Required()
		}
	}

	t.Run("List returns holidays in range ordered by date", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		got, err := repo.Holiday().List(context.Background(), date("2025-01-01"), date("2025-01-31"))
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(3)
		gt.Value(t, got[0].ID).Equal(model.HolidayID("h1"))
		gt.Value(t, got[1].ID).Equal(model.HolidayID("h3"))
		gt.Value(t, got[2].ID).Equal(model.HolidayID("h2"))
	})

	t.Run("FindByLocation includes Global holidays", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		got, err := repo.Holiday().FindByLocation(context.Background(), "Tokyo", date("2025-01-01"), date("2025-01-31"))
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2)
		gt.Value(t, got[0].ID).Equal(model.HolidayID("h1"))
		gt.Value(t, got[1].ID).Equal(model.HolidayID("h2"))
	})

	t.Run("Hours survive round trip", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		got, err := repo.Holiday().FindByLocation(context.Background(), "London", date("2025-01-06"), date("2025-01-06"))
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(1)
		gt.Value(t, got[0].HoursOrDefault()).Equal(4.0)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)
		ctx := context.Background()

		gt.NoError(t, repo.Holiday().Delete(ctx, "h1")).Required()
		gt.Value(t, repo.Holiday().Delete(ctx, "h1")).NotNil()

		got, err := repo.Holiday().List(ctx, date("2025-01-01"), date("2025-01-01"))
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(0)
	})
}

func runLeaveRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	seed := func(t *testing.T, repo interfaces.Repository) {
		leaves := []*model.Leave{
			{ID: "l1", MemberID: "alice", Start: date("2025-01-06"), End: date("2025-01-08"), Duration: 24, Status: types.LeaveStatusApproved},
			{ID: "l2", MemberID: "alice", Start: date("2025-01-10"), End: date("2025-01-10"), Duration: 8, Status: types.LeaveStatusPending},
			{ID: "l3", MemberID: "alice", Start: date("2024-12-30"), End: date("2025-01-02"), Duration: 16, Status: types.LeaveStatusApproved},
			{ID: "l4", MemberID: "bob", Start: date("2025-01-07"), End: date("2025-01-07"), Duration: 8, Status: types.LeaveStatusApproved},
			{ID: "l5", MemberID: "alice", Start: date("2025-02-03"), End: date("2025-02-04"), Duration: 16, Status: types.LeaveStatusApproved},
		}
		for _, l := range leaves {
			gt.NoError(t, repo.Leave().Put(context.Background(), l)).Required()
		}
	}

	t.Run("FindByMember filters member, status and overlap", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		got, err := repo.Leave().FindByMember(context.Background(), "alice", types.LeaveStatusApproved, date("2025-01-01"), date("2025-01-31"))
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2)
		gt.Value(t, got[0].ID).Equal(model.LeaveID("l3"))
		gt.Value(t, got[1].ID).Equal(model.LeaveID("l1"))
	})

	t.Run("List returns every overlapping record", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		got, err := repo.Leave().List(context.Background(), date("2025-01-07"), date("2025-01-10"))
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(3)
	})

	t.Run("Put updates status", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)
		ctx := context.Background()

		l, err := repo.Leave().Get(ctx, "l2")
		gt.NoError(t, err).Required()
		l.Status = types.LeaveStatusApproved
		gt.NoError(t, repo.Leave().Put(ctx, l)).Required()

		got, err := repo.Leave().Get(ctx, "l2")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.LeaveStatusApproved)
		gt.Bool(t, got.CreatedAt.Equal(l.CreatedAt)).True()
	})

	t.Run("Delete and Get of missing leave fail", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)
		ctx := context.Background()

		gt.NoError(t, repo.Leave().Delete(ctx, "l1")).Required()
		_, err := repo.Leave().Get(ctx, "l1")
		gt.Value(t, err).NotNil()
		gt.Value(t, repo.Leave().Delete(ctx, "l1")).NotNil()
	})
}

func TestHolidayRepository(t *testing.T) {
	runBothBackends(t, runHolidayRepositoryTest)
}

func TestLeaveRepository(t *testing.T) {
	runBothBackends(t, runLeaveRepositoryTest)
}
