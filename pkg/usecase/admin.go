package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
)

// AdminUseCase maintains the roster, the attendance calendar and saved
// queries
type AdminUseCase struct {
	repo  interfaces.Repository
	cache interfaces.TrackerCache
	now   func() time.Time
}

// NewAdminUseCase creates the use case. cache may be nil when tracker
// results are not cached.
func NewAdminUseCase(repo interfaces.Repository, cache interfaces.TrackerCache, now func() time.Time) *AdminUseCase {
	if now == nil {
		now = time.Now
	}
	return &AdminUseCase{repo: repo, cache: cache, now: now}
}

func invalid(err error, msg string) error {
	return goerr.Wrap(ErrInvalidInput, msg, goerr.V("reason", err.Error()))
}

// PutTeam creates or replaces a team. The repository keeps CreatedAt of an
// existing team.
func (uc *AdminUseCase) PutTeam(ctx context.Context, team *model.Team) (*model.Team, error) {
	if team == nil {
		return nil, goerr.Wrap(ErrInvalidInput, "team is required")
	}
	if err := team.Validate(); err != nil {
		return nil, invalid(err, "invalid team")
	}

	saved, err := uc.repo.Team().Put(ctx, team)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save team", goerr.V(TeamIDKey, team.ID))
	}
	return saved, nil
}

func (uc *AdminUseCase) GetTeam(ctx context.Context, id types.TeamID) (*model.Team, error) {
	return getTeam(ctx, uc.repo, id)
}

func (uc *AdminUseCase) ListTeams(ctx context.Context) ([]*model.Team, error) {
	teams, err := uc.repo.Team().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list teams")
	}
	return teams, nil
}

func (uc *AdminUseCase) DeleteTeam(ctx context.Context, id types.TeamID) error {
	if err := id.Validate(); err != nil {
		return invalid(err, "invalid team ID")
	}
	if err := uc.repo.Team().Delete(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrTeamNotFound, "team not found", goerr.V(TeamIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete team", goerr.V(TeamIDKey, id))
	}
	return nil
}

// CreateHoliday stores a holiday dated at the day of holiday.Date
func (uc *AdminUseCase) CreateHoliday(ctx context.Context, holiday *model.Holiday) (*model.Holiday, error) {
	if holiday == nil {
		return nil, goerr.Wrap(ErrInvalidInput, "holiday is required")
	}
	if err := holiday.Validate(); err != nil {
		return nil, invalid(err, "invalid holiday")
	}

	if holiday.ID == "" {
		holiday.ID = model.NewHolidayID()
	}
	holiday.Date = model.Day(holiday.Date)
	holiday.CreatedAt = uc.now().UTC()

	if err := uc.repo.Holiday().Put(ctx, holiday); err != nil {
		return nil, goerr.Wrap(err, "failed to save holiday", goerr.V(HolidayIDKey, holiday.ID))
	}
	return holiday, nil
}

// ListHolidays returns holidays in [start, end]. A non-empty location
// also selects Global holidays.
func (uc *AdminUseCase) ListHolidays(ctx context.Context, start, end time.Time, location string) ([]*model.Holiday, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	from, to := model.Day(start), model.Day(end)
	var (
		holidays []*model.Holiday
		err      error
	)
	if location == "" {
		holidays, err = uc.repo.Holiday().List(ctx, from, to)
	} else {
		holidays, err = uc.repo.Holiday().FindByLocation(ctx, location, from, to)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list holidays", goerr.V("location", location))
	}
	return holidays, nil
}

func (uc *AdminUseCase) DeleteHoliday(ctx context.Context, id model.HolidayID) error {
	if err := uc.repo.Holiday().Delete(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrHolidayNotFound, "holiday not found", goerr.V(HolidayIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete holiday", goerr.V(HolidayIDKey, id))
	}
	return nil
}

// CreateLeave stores a leave record for a rostered member. Records
// without a status start pending.
func (uc *AdminUseCase) CreateLeave(ctx context.Context, leave *model.Leave) (*model.Leave, error) {
	if leave == nil {
		return nil, goerr.Wrap(ErrInvalidInput, "leave is required")
	}
	if leave.Status == "" {
		leave.Status = types.LeaveStatusPending
	}
	if err := leave.Validate(); err != nil {
		return nil, invalid(err, "invalid leave")
	}

	found, err := uc.memberExists(ctx, leave.MemberID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, goerr.Wrap(ErrMemberNotFound, "leave member is not on any team", goerr.V(MemberIDKey, leave.MemberID))
	}

	if leave.ID == "" {
		leave.ID = model.NewLeaveID()
	}
	leave.Start = model.Day(leave.Start)
	leave.End = model.Day(leave.End)
	leave.CreatedAt = uc.now().UTC()

	if err := uc.repo.Leave().Put(ctx, leave); err != nil {
		return nil, goerr.Wrap(err, "failed to save leave", goerr.V(LeaveIDKey, leave.ID))
	}
	return leave, nil
}

func (uc *AdminUseCase) memberExists(ctx context.Context, id types.MemberID) (bool, error) {
	teams, err := uc.repo.Team().List(ctx)
	if err != nil {
		return false, goerr.Wrap(err, "failed to list teams")
	}
	for _, t := range teams {
		if t.FindMember(id) != nil {
			return true, nil
		}
	}
	return false, nil
}

// ListLeaves returns leave records overlapping [start, end]
func (uc *AdminUseCase) ListLeaves(ctx context.Context, start, end time.Time) ([]*model.Leave, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	leaves, err := uc.repo.Leave().List(ctx, model.Day(start), model.Day(end))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list leaves")
	}
	return leaves, nil
}

func (uc *AdminUseCase) ApproveLeave(ctx context.Context, id model.LeaveID) (*model.Leave, error) {
	return uc.decideLeave(ctx, id, types.LeaveStatusApproved)
}

func (uc *AdminUseCase) RejectLeave(ctx context.Context, id model.LeaveID) (*model.Leave, error) {
	return uc.decideLeave(ctx, id, types.LeaveStatusRejected)
}

func (uc *AdminUseCase) decideLeave(ctx context.Context, id model.LeaveID, next types.LeaveStatus) (*model.Leave, error) {
	leave, err := uc.repo.Leave().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrLeaveNotFound, "leave not found", goerr.V(LeaveIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get leave", goerr.V(LeaveIDKey, id))
	}

	if !leave.Status.CanTransitionTo(next) {
		return nil, goerr.Wrap(ErrInvalidInput, "leave cannot change status",
			goerr.V(LeaveIDKey, id),
			goerr.V("from", leave.Status),
			goerr.V("to", next))
	}

	leave.Status = next
	if err := uc.repo.Leave().Put(ctx, leave); err != nil {
		return nil, goerr.Wrap(err, "failed to save leave", goerr.V(LeaveIDKey, id))
	}
	return leave, nil
}

func (uc *AdminUseCase) DeleteLeave(ctx context.Context, id model.LeaveID) error {
	if err := uc.repo.Leave().Delete(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrLeaveNotFound, "leave not found", goerr.V(LeaveIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete leave", goerr.V(LeaveIDKey, id))
	}
	return nil
}

// PutQuery sets the tracker query of an existing team
func (uc *AdminUseCase) PutQuery(ctx context.Context, query *model.SavedQuery) (*model.SavedQuery, error) {
	if query == nil {
		return nil, goerr.Wrap(ErrInvalidInput, "query is required")
	}
	if err := query.Validate(); err != nil {
		return nil, invalid(err, "invalid saved query")
	}
	if _, err := getTeam(ctx, uc.repo, query.TeamID); err != nil {
		return nil, err
	}
	previous, err := uc.currentQuery(ctx, query.TeamID)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Query().Put(ctx, query); err != nil {
		return nil, goerr.Wrap(err, "failed to save query", goerr.V(TeamIDKey, query.TeamID))
	}
	uc.invalidate(ctx, query.TeamID, previous, query.JQL)
	return uc.GetQuery(ctx, query.TeamID)
}

func (uc *AdminUseCase) GetQuery(ctx context.Context, teamID types.TeamID) (*model.SavedQuery, error) {
	query, err := uc.repo.Query().Get(ctx, teamID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrQueryNotFound, "saved query not found", goerr.V(TeamIDKey, teamID))
		}
		return nil, goerr.Wrap(err, "failed to get saved query", goerr.V(TeamIDKey, teamID))
	}
	return query, nil
}

func (uc *AdminUseCase) DeleteQuery(ctx context.Context, teamID types.TeamID) error {
	previous, err := uc.currentQuery(ctx, teamID)
	if err != nil {
		return err
	}

	if err := uc.repo.Query().Delete(ctx, teamID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrQueryNotFound, "saved query not found", goerr.V(TeamIDKey, teamID))
		}
		return goerr.Wrap(err, "failed to delete saved query", goerr.V(TeamIDKey, teamID))
	}
	uc.invalidate(ctx, teamID, previous)
	return nil
}

// currentQuery returns the stored query string of a team, empty when none
func (uc *AdminUseCase) currentQuery(ctx context.Context, teamID types.TeamID) (string, error) {
	query, err := uc.repo.Query().Get(ctx, teamID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to get saved query", goerr.V(TeamIDKey, teamID))
	}
	return query.JQL, nil
}

// invalidate drops cached tracker results of the given queries. Failures
// only leave stale entries until the TTL expires.
func (uc *AdminUseCase) invalidate(ctx context.Context, teamID types.TeamID, queries ...string) {
	if uc.cache == nil {
		return
	}
	seen := make(map[string]bool)
	for _, q := range queries {
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		if err := uc.cache.Invalidate(ctx, q); err != nil {
			logging.From(ctx).Warn("failed to invalidate tracker cache",
				TeamIDKey, teamID,
				"error", err.Error())
		}
	}
}
