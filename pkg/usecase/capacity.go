package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

type CapacityUseCase struct {
	repo     interfaces.Repository
	calendar *CalendarUseCase
}

func NewCapacityUseCase(repo interfaces.Repository, calendar *CalendarUseCase) *CapacityUseCase {
	return &CapacityUseCase{repo: repo, calendar: calendar}
}

// MemberCapacityInput is the input of CalculateMemberCapacity
type MemberCapacityInput struct {
	MemberID     types.MemberID
	TeamID       types.TeamID
	Start        time.Time
	End          time.Time
	AssignedWork model.AssignedWork
	Location     string
}

// CalculateMemberCapacity computes the capacity of one member. It never
// fails: attendance lookups degrade to their safe defaults.
func (uc *CapacityUseCase) CalculateMemberCapacity(ctx context.Context, in MemberCapacityInput) *model.MemberCapacity {
	working := uc.calendar.WorkingHours(ctx, in.Start, in.End, in.Location, in.MemberID)

	// reported separately from the subtraction folded into working hours
	pto := uc.calendar.PTOHours(ctx, in.MemberID, in.Start, in.End)
	holiday := uc.calendar.HolidayHours(ctx, in.Start, in.End, in.Location)

	business := uc.calendar.BusinessHours(in.Start, in.End)
	remaining := model.RemainingHours(in.AssignedWork.OriginalEstimate, in.AssignedWork.TimeSpent)
	available := working

	var utilization float64
	if available > 0 {
		utilization = model.Round2(remaining / available * 100)
	}

	return &model.MemberCapacity{
		MemberID:              in.MemberID,
		TeamID:                in.TeamID,
		Location:              uc.calendar.location(in.Location),
		BusinessHours:         business,
		WorkingHours:          working,
		PTOHours:              pto,
		HolidayHours:          holiday,
		IssueCount:            in.AssignedWork.IssueCount,
		OriginalEstimate:      model.Round2(in.AssignedWork.OriginalEstimate),
		TimeSpent:             model.Round2(in.AssignedWork.TimeSpent),
		TimeRemaining:         remaining,
		StoryPoints:           model.Round2(in.AssignedWork.StoryPoints),
		AvailableHours:        available,
		RemainingBandwidth:    model.Round2(available - remaining),
		UtilizationPercentage: utilization,
		Status:                types.ClassifyUtilization(utilization),
	}
}

// CalculateTeamCapacity loads the roster and computes every member's
// capacity. Members missing from assignedWork contribute no work.
func (uc *CapacityUseCase) CalculateTeamCapacity(ctx context.Context, teamID types.TeamID, start, end time.Time, assignedWork map[types.MemberID]model.AssignedWork) (*model.TeamCapacity, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	team, err := getTeam(ctx, uc.repo, teamID)
	if err != nil {
		return nil, err
	}

	return uc.teamCapacity(ctx, team, start, end, assignedWork), nil
}

func (uc *CapacityUseCase) teamCapacity(ctx context.Context, team *model.Team, start, end time.Time, assignedWork map[types.MemberID]model.AssignedWork) *model.TeamCapacity {
	result := &model.TeamCapacity{
		TeamID:   team.ID,
		TeamName: team.Name,
		Location: team.MemberLocation(nil, uc.calendar.DefaultLocation()),
		Start:    model.Day(start),
		End:      model.Day(end),
		Members:  make([]*model.MemberCapacity, 0, len(team.Members)),
	}

	for i := range team.Members {
		m := &team.Members[i]
		c := uc.memberCapacity(ctx, team, m, start, end, assignedWork[m.ID])
		result.Members = append(result.Members, c)
		result.Totals.Add(c)
	}
	return result
}

func (uc *CapacityUseCase) memberCapacity(ctx context.Context, team *model.Team, m *model.Member, start, end time.Time, work model.AssignedWork) *model.MemberCapacity {
	c := uc.CalculateMemberCapacity(ctx, MemberCapacityInput{
		MemberID:     m.ID,
		TeamID:       team.ID,
		Start:        start,
		End:          end,
		AssignedWork: work,
		Location:     team.MemberLocation(m, uc.calendar.DefaultLocation()),
	})
	c.Name = m.Name
	c.Email = m.Email
	c.Designation = m.Designation
	return c
}

func getTeam(ctx context.Context, repo interfaces.Repository, id types.TeamID) (*model.Team, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid team ID", goerr.V(TeamIDKey, id))
	}

	team, err := repo.Team().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTeamNotFound, "team not found", goerr.V(TeamIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get team", goerr.V(TeamIDKey, id))
	}
	return team, nil
}
