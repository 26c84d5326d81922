package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/model/config"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"github.com/secmon-lab/moirai/pkg/usecase"
)

func newCapacity(repo interfaces.Repository) *usecase.CapacityUseCase {
	return usecase.NewCapacityUseCase(repo, usecase.NewCalendarUseCase(repo, config.DefaultCalendar()))
}

func TestCalculateMemberCapacity(t *testing.T) {
	ctx := context.Background()

	t.Run("full week with no work", func(t *testing.T) {
		c := newCapacity(newRepo()).CalculateMemberCapacity(ctx, usecase.MemberCapacityInput{
			MemberID: "alice",
			TeamID:   "platform",
			Start:    weekStart,
			End:      weekEnd,
			Location: "Tokyo",
		})
		gt.Number(t, c.BusinessHours).Equal(40)
		gt.Number(t, c.WorkingHours).Equal(40)
		gt.Number(t, c.AvailableHours).Equal(40)
		gt.Number(t, c.RemainingBandwidth).Equal(40)
		gt.Number(t, c.UtilizationPercentage).Equal(0)
		gt.Value(t, c.Status).Equal(types.CapacityStatusAvailable)
	})

	t.Run("approved leave and holiday are reported separately", func(t *testing.T) {
		repo := newRepo()
		gt.NoError(t, repo.Leave().Put(ctx, &model.Leave{
			ID:       "l1",
			MemberID: "alice",
			Start:    weekStart,
			End:      day("2024-01-10"),
			Duration: 24,
			Status:   types.LeaveStatusApproved,
		})).Required()
		gt.NoError(t, repo.Holiday().Put(ctx, &model.Holiday{ID: "h1", Date: weekEnd, Location: "Tokyo", Hours: hoursPtr(4)})).Required()

		c := newCapacity(repo).CalculateMemberCapacity(ctx, usecase.MemberCapacityInput{
			MemberID:     "alice",
			Start:        weekStart,
			End:          weekEnd,
			Location:     "Tokyo",
			AssignedWork: model.AssignedWork{OriginalEstimate: 12, TimeSpent: 3},
		})
		gt.Number(t, c.PTOHours).Equal(24)
		gt.Number(t, c.HolidayHours).Equal(4)
		gt.Number(t, c.BusinessHours).Equal(40)
		gt.Number(t, c.WorkingHours).Equal(12)
		gt.Number(t, c.TimeRemaining).Equal(9)
		gt.Number(t, c.UtilizationPercentage).Equal(75)
		gt.Number(t, c.RemainingBandwidth).Equal(3)
		gt.Value(t, c.Status).Equal(types.CapacityStatusAvailable)
	})

	t.Run("over spent work does not count as remaining", func(t *testing.T) {
		c := newCapacity(newRepo()).CalculateMemberCapacity(ctx, usecase.MemberCapacityInput{
			MemberID:     "alice",
			Start:        weekStart,
			End:          weekEnd,
			AssignedWork: model.AssignedWork{OriginalEstimate: 100, TimeSpent: 120},
		})
		gt.Number(t, c.AvailableHours).Equal(40)
		gt.Number(t, c.TimeRemaining).Equal(0)
		gt.Number(t, c.UtilizationPercentage).Equal(0)
		gt.Value(t, c.Status).Equal(types.CapacityStatusAvailable)
	})

	t.Run("remaining work far beyond availability", func(t *testing.T) {
		c := newCapacity(newRepo()).CalculateMemberCapacity(ctx, usecase.MemberCapacityInput{
			MemberID:     "alice",
			Start:        weekStart,
			End:          weekEnd,
			AssignedWork: model.AssignedWork{OriginalEstimate: 200, TimeSpent: 50},
		})
		gt.Number(t, c.TimeRemaining).Equal(150)
		gt.Number(t, c.UtilizationPercentage).Equal(375)
		gt.Number(t, c.RemainingBandwidth).Equal(-110)
		gt.Value(t, c.Status).Equal(types.CapacityStatusOverloaded)

		bottlenecks := usecase.IdentifyBottlenecks([]*model.MemberCapacity{c})
		gt.Array(t, bottlenecks).Length(1).Required()
		gt.Value(t, bottlenecks[0].Issue).Equal(model.BottleneckOverallocated)
		gt.Value(t, bottlenecks[0].Severity).Equal(types.SeverityHigh)
		gt.Value(t, bottlenecks[0].ExcessHours).NotNil().Required()
		gt.Number(t, *bottlenecks[0].ExcessHours).Equal(110)
	})

	t.Run("no working hours means zero utilization", func(t *testing.T) {
		c := newCapacity(newRepo()).CalculateMemberCapacity(ctx, usecase.MemberCapacityInput{
			MemberID:     "alice",
			Start:        day("2024-01-13"),
			End:          day("2024-01-14"),
			AssignedWork: model.AssignedWork{OriginalEstimate: 10},
		})
		gt.Number(t, c.AvailableHours).Equal(0)
		gt.Number(t, c.UtilizationPercentage).Equal(0)
		gt.Number(t, c.RemainingBandwidth).Equal(-10)
		gt.Value(t, c.Status).Equal(types.CapacityStatusAvailable)
	})

	t.Run("at limit", func(t *testing.T) {
		c := newCapacity(newRepo()).CalculateMemberCapacity(ctx, usecase.MemberCapacityInput{
			MemberID:     "alice",
			Start:        weekStart,
			End:          weekEnd,
			AssignedWork: model.AssignedWork{OriginalEstimate: 34},
		})
		gt.Number(t, c.UtilizationPercentage).Equal(85)
		gt.Value(t, c.Status).Equal(types.CapacityStatusAtLimit)
	})
}

func TestCalculateTeamCapacity(t *testing.T) {
	ctx := context.Background()

	t.Run("sums every member", func(t *testing.T) {
		repo := newRepo()
		seedTeam(t, repo)
		gt.NoError(t, repo.Holiday().Put(ctx, &model.Holiday{ID: "h1", Date: weekStart, Location: "London"})).Required()

		c, err := newCapacity(repo).CalculateTeamCapacity(ctx, "platform", weekStart, weekEnd, map[types.MemberID]model.AssignedWork{
			"alice": {IssueCount: 2, OriginalEstimate: 30, TimeSpent: 10, StoryPoints: 5},
			"carol": {IssueCount: 1, OriginalEstimate: 8, StoryPoints: 2},
		})
		gt.NoError(t, err).Required()
		gt.Array(t, c.Members).Length(3).Required()
		gt.String(t, c.TeamName).Equal("Platform")

		// bob has no assigned work, carol observes the London holiday
		gt.Number(t, c.Members[1].TimeRemaining).Equal(0)
		gt.Number(t, c.Members[2].HolidayHours).Equal(8)
		gt.Number(t, c.Members[2].WorkingHours).Equal(32)
		gt.String(t, c.Members[2].Location).Equal("London")
		gt.String(t, c.Members[0].Location).Equal("Tokyo")

		gt.Number(t, c.Totals.WorkingHours).Equal(112)
		gt.Number(t, c.Totals.AvailableHours).Equal(112)
		gt.Number(t, c.Totals.HolidayHours).Equal(8)
		gt.Number(t, c.Totals.OriginalEstimate).Equal(38)
		gt.Number(t, c.Totals.TimeSpent).Equal(10)
		gt.Number(t, c.Totals.TimeRemaining).Equal(28)
		gt.Number(t, c.Totals.StoryPoints).Equal(7)
	})

	t.Run("unknown team", func(t *testing.T) {
		_, err := newCapacity(newRepo()).CalculateTeamCapacity(ctx, "missing", weekStart, weekEnd, nil)
		gt.Error(t, err).Is(usecase.ErrTeamNotFound)
	})

	t.Run("reversed range", func(t *testing.T) {
		repo := newRepo()
		seedTeam(t, repo)
		_, err := newCapacity(repo).CalculateTeamCapacity(ctx, "platform", weekEnd, weekStart, nil)
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})
}
