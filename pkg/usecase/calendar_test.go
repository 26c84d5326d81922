package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/model/config"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"github.com/secmon-lab/moirai/pkg/usecase"
)

func TestCalendar_BusinessDays(t *testing.T) {
	cal := usecase.NewCalendarUseCase(newRepo(), config.DefaultCalendar())

	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"monday to friday", "2024-01-08", "2024-01-12", 5},
		{"full two weeks", "2024-01-08", "2024-01-21", 10},
		{"weekend only", "2024-01-13", "2024-01-14", 0},
		{"single weekday", "2024-01-10", "2024-01-10", 1},
		{"reversed range", "2024-01-12", "2024-01-08", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Number(t, cal.BusinessDays(day(tt.start), day(tt.end))).Equal(tt.want)
		})
	}
}

func TestCalendar_ConfiguredWeekend(t *testing.T) {
	cal := usecase.NewCalendarUseCase(newRepo(), config.Calendar{
		WeekendDays: []time.Weekday{time.Friday, time.Saturday},
		HoursPerDay: 7.5,
	})

	gt.B(t, cal.IsWeekendDay(day("2024-01-12"))).True()
	gt.B(t, cal.IsWeekendDay(day("2024-01-14"))).False()
	gt.Number(t, cal.BusinessDays(weekStart, day("2024-01-14"))).Equal(5)
	gt.Number(t, cal.BusinessHours(weekStart, day("2024-01-14"))).Equal(37.5)
	gt.String(t, cal.DefaultLocation()).Equal(model.GlobalLocation)
}

func TestCalendar_HolidayHours(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	cal := usecase.NewCalendarUseCase(repo, config.DefaultCalendar())

	for _, h := range []*model.Holiday{
		{ID: "h1", Name: "Founders day", Date: day("2024-01-08"), Location: "Tokyo"},
		{ID: "h2", Name: "Half day", Date: day("2024-01-09"), Location: model.GlobalLocation, Hours: hoursPtr(4)},
		{ID: "h3", Name: "Local", Date: day("2024-01-10"), Location: "London"},
		{ID: "h4", Name: "Same date", Date: day("2024-01-08"), Location: model.GlobalLocation},
		{ID: "h5", Name: "Out of range", Date: day("2024-01-15"), Location: "Tokyo"},
	} {
		gt.NoError(t, repo.Holiday().Put(ctx, h)).Required()
	}

	gt.Number(t, cal.HolidayHours(ctx, weekStart, weekEnd, "Tokyo")).Equal(20)
	gt.Number(t, cal.HolidayHours(ctx, weekStart, weekEnd, "London")).Equal(20)
	gt.Number(t, cal.HolidayHours(ctx, weekStart, weekEnd, "Paris")).Equal(12)
	gt.Number(t, cal.HolidayHours(ctx, weekEnd, weekStart, "Tokyo")).Equal(0)
}

func TestCalendar_PTOHours(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	cal := usecase.NewCalendarUseCase(repo, config.DefaultCalendar())

	for _, l := range []*model.Leave{
		{ID: "l1", MemberID: "alice", Start: day("2024-01-05"), End: day("2024-01-08"), Duration: 16, Status: types.LeaveStatusApproved},
		{ID: "l2", MemberID: "alice", Start: day("2024-01-10"), End: day("2024-01-10"), Duration: 8, Status: types.LeaveStatusPending},
		{ID: "l3", MemberID: "alice", Start: day("2024-01-12"), End: day("2024-01-16"), Duration: 24, Status: types.LeaveStatusApproved},
		{ID: "l4", MemberID: "alice", Start: day("2024-01-15"), End: day("2024-01-16"), Duration: 16, Status: types.LeaveStatusApproved},
		{ID: "l5", MemberID: "bob", Start: day("2024-01-09"), End: day("2024-01-09"), Duration: 8, Status: types.LeaveStatusApproved},
	} {
		gt.NoError(t, repo.Leave().Put(ctx, l)).Required()
	}

	// overlap counts the full duration of l1 and l3; pending l2 is excluded
	gt.Number(t, cal.PTOHours(ctx, "alice", weekStart, weekEnd)).Equal(40)
	gt.Number(t, cal.PTOHours(ctx, "bob", weekStart, weekEnd)).Equal(8)
	gt.Number(t, cal.PTOHours(ctx, "carol", weekStart, weekEnd)).Equal(0)
}

func TestCalendar_WorkingHours(t *testing.T) {
	ctx := context.Background()

	t.Run("full week without absences", func(t *testing.T) {
		cal := usecase.NewCalendarUseCase(newRepo(), config.DefaultCalendar())
		gt.Number(t, cal.WorkingHours(ctx, weekStart, weekEnd, "Tokyo", "alice")).Equal(40)
	})

	t.Run("three approved days off", func(t *testing.T) {
		repo := newRepo()
		gt.NoError(t, repo.Leave().Put(ctx, &model.Leave{
			ID:       "l1",
			MemberID: "alice",
			Start:    weekStart,
			End:      day("2024-01-10"),
			Duration: 24,
			Status:   types.LeaveStatusApproved,
		})).Required()

		cal := usecase.NewCalendarUseCase(repo, config.DefaultCalendar())
		gt.Number(t, cal.WorkingHours(ctx, weekStart, weekEnd, "Tokyo", "alice")).Equal(16)
		gt.Number(t, cal.WorkingHours(ctx, weekStart, weekEnd, "Tokyo", "")).Equal(40)
	})

	t.Run("holiday during leave is subtracted twice", func(t *testing.T) {
		repo := newRepo()
		gt.NoError(t, repo.Holiday().Put(ctx, &model.Holiday{ID: "h1", Date: weekStart, Location: "Tokyo"})).Required()
		gt.NoError(t, repo.Leave().Put(ctx, &model.Leave{
			ID:       "l1",
			MemberID: "alice",
			Start:    weekStart,
			End:      weekStart,
			Duration: 8,
			Status:   types.LeaveStatusApproved,
		})).Required()

		cal := usecase.NewCalendarUseCase(repo, config.DefaultCalendar())
		gt.Number(t, cal.WorkingHours(ctx, weekStart, weekEnd, "Tokyo", "alice")).Equal(24)
	})

	t.Run("floored at zero", func(t *testing.T) {
		repo := newRepo()
		gt.NoError(t, repo.Leave().Put(ctx, &model.Leave{
			ID:       "l1",
			MemberID: "alice",
			Start:    weekStart,
			End:      weekEnd,
			Duration: 80,
			Status:   types.LeaveStatusApproved,
		})).Required()

		cal := usecase.NewCalendarUseCase(repo, config.DefaultCalendar())
		gt.Number(t, cal.WorkingHours(ctx, weekStart, weekEnd, "Tokyo", "alice")).Equal(0)
	})

	t.Run("reversed range", func(t *testing.T) {
		cal := usecase.NewCalendarUseCase(newRepo(), config.DefaultCalendar())
		gt.Number(t, cal.WorkingHours(ctx, weekEnd, weekStart, "Tokyo", "alice")).Equal(0)
	})
}

func TestCalendar_LookupFailureUsesSafeDefaults(t *testing.T) {
	ctx := context.Background()
	repo := brokenRepository{newRepo()}
	cal := usecase.NewCalendarUseCase(repo, config.DefaultCalendar())

	gt.Number(t, cal.HolidayHours(ctx, weekStart, weekEnd, "Tokyo")).Equal(0)
	gt.Number(t, cal.PTOHours(ctx, "alice", weekStart, weekEnd)).Equal(0)
	gt.Number(t, cal.WorkingHours(ctx, weekStart, weekEnd, "Tokyo", "alice")).Equal(40)
}

func TestCalendar_Breakdown(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	gt.NoError(t, repo.Holiday().Put(ctx, &model.Holiday{ID: "h1", Date: day("2024-01-09"), Location: model.GlobalLocation})).Required()
	cal := usecase.NewCalendarUseCase(repo, config.DefaultCalendar())

	t.Run("location only", func(t *testing.T) {
		b, err := cal.Breakdown(ctx, weekStart, weekEnd, "", "")
		gt.NoError(t, err).Required()
		gt.String(t, b.Location).Equal(model.GlobalLocation)
		gt.Number(t, b.BusinessDays).Equal(5)
		gt.Number(t, b.BusinessHours).Equal(40)
		gt.Number(t, b.HolidayHours).Equal(8)
		gt.Number(t, b.PTOHours).Equal(0)
		gt.Number(t, b.WorkingHours).Equal(32)
	})

	t.Run("reversed range is invalid", func(t *testing.T) {
		_, err := cal.Breakdown(ctx, weekEnd, weekStart, "Tokyo", "")
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("range longer than the maximum is invalid", func(t *testing.T) {
		_, err := cal.Breakdown(ctx, day("1900-01-01"), day("9999-12-31"), "Tokyo", "")
		gt.Error(t, err).Is(usecase.ErrInvalidRange)
		gt.Error(t, err).Is(usecase.ErrInvalidInput)

		_, err = cal.Breakdown(ctx, day("2024-01-01"), day("2026-01-01"), "Tokyo", "")
		gt.Error(t, err).Is(usecase.ErrInvalidRange)
	})

	t.Run("maximum range is accepted", func(t *testing.T) {
		b, err := cal.Breakdown(ctx, day("2024-01-01"), day("2025-12-31"), "Tokyo", "")
		gt.NoError(t, err).Required()
		gt.Number(t, b.BusinessDays).Equal(523)
	})

	t.Run("missing date is invalid", func(t *testing.T) {
		_, err := cal.Breakdown(ctx, time.Time{}, weekEnd, "Tokyo", "")
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("malformed member is invalid", func(t *testing.T) {
		_, err := cal.Breakdown(ctx, weekStart, weekEnd, "Tokyo", "Not A Member")
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})
}
