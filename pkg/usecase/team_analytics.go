package usecase

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/model/config"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"github.com/secmon-lab/moirai/pkg/service/export"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
)

// AnalyticsUseCase correlates tracker work with attendance for a team
type AnalyticsUseCase struct {
	repo     interfaces.Repository
	capacity *CapacityUseCase
	tracker  interfaces.WorkTracker
	workload config.Workload
}

func NewAnalyticsUseCase(repo interfaces.Repository, capacity *CapacityUseCase, tracker interfaces.WorkTracker, workload config.Workload) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		repo:     repo,
		capacity: capacity,
		tracker:  tracker,
		workload: workload,
	}
}

// TeamAnalytics computes capacity and every analysis of a team for
// [start, end]. The range is validated before any lookup.
func (uc *AnalyticsUseCase) TeamAnalytics(ctx context.Context, teamID types.TeamID, start, end time.Time) (*model.TeamAnalytics, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	team, items, err := uc.loadWork(ctx, teamID)
	if err != nil {
		return nil, err
	}

	return uc.analyze(ctx, team, items, start, end), nil
}

// TeamCapacity computes the capacity of every member using the work the
// team's saved query returns
func (uc *AnalyticsUseCase) TeamCapacity(ctx context.Context, teamID types.TeamID, start, end time.Time) (*model.TeamCapacity, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	team, items, err := uc.loadWork(ctx, teamID)
	if err != nil {
		return nil, err
	}

	buckets := AggregateByAssignee(items, team.Members)
	return uc.capacity.teamCapacity(ctx, team, start, end, assignedWorkByMember(buckets)), nil
}

// MemberCapacity computes the capacity of a single team member
func (uc *AnalyticsUseCase) MemberCapacity(ctx context.Context, teamID types.TeamID, memberID types.MemberID, start, end time.Time) (*model.MemberCapacity, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	team, err := getTeam(ctx, uc.repo, teamID)
	if err != nil {
		return nil, err
	}
	member := team.FindMember(memberID)
	if member == nil {
		return nil, goerr.Wrap(ErrMemberNotFound, "member not found",
			goerr.V(TeamIDKey, teamID),
			goerr.V(MemberIDKey, memberID))
	}

	items, err := uc.search(ctx, team)
	if err != nil {
		return nil, err
	}

	var work model.AssignedWork
	if member.ExternalAccountID != "" {
		buckets := AggregateByAssignee(items, team.Members)
		work = buckets[types.Assigned(member.ExternalAccountID)].AssignedWork()
	}
	return uc.capacity.memberCapacity(ctx, team, member, start, end, work), nil
}

// TeamIssues returns the team's enriched issues in the requested order
func (uc *AnalyticsUseCase) TeamIssues(ctx context.Context, teamID types.TeamID, order types.IssueSortOrder) ([]*model.EnrichedIssue, error) {
	team, items, err := uc.loadWork(ctx, teamID)
	if err != nil {
		return nil, err
	}

	issues := EnrichIssues(items, team.Members, uc.workload)
	SortIssues(issues, order, uc.workload)
	return issues, nil
}

// ExportWorkbook renders the team analytics and issues into an XLSX
// workbook and returns it with its file name
func (uc *AnalyticsUseCase) ExportWorkbook(ctx context.Context, teamID types.TeamID, start, end time.Time) (*bytes.Buffer, string, error) {
	if err := validateRange(start, end); err != nil {
		return nil, "", err
	}

	team, items, err := uc.loadWork(ctx, teamID)
	if err != nil {
		return nil, "", err
	}

	analytics := uc.analyze(ctx, team, items, start, end)
	issues := EnrichIssues(items, team.Members, uc.workload)
	SortIssues(issues, types.IssueSortByAssignee, uc.workload)

	buf, name, err := export.Workbook(team, analytics, issues)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to export workbook", goerr.V(TeamIDKey, teamID))
	}
	return buf, name, nil
}

func (uc *AnalyticsUseCase) analyze(ctx context.Context, team *model.Team, items []*model.WorkItem, start, end time.Time) *model.TeamAnalytics {
	buckets := AggregateByAssignee(items, team.Members)
	sorted := SortedBuckets(buckets)

	capacity := uc.capacity.teamCapacity(ctx, team, start, end, assignedWorkByMember(buckets))
	breakdown := BuildStatusBreakdown(items)

	return &model.TeamAnalytics{
		Capacity:        capacity,
		Summary:         CalculateTeamSummary(items, capacity.Members),
		StatusBreakdown: breakdown,
		Bottlenecks:     IdentifyBottlenecks(capacity.Members),
		Suggestions:     SuggestReallocation(capacity.Members),
		Risks:           CalculateRiskAssessment(capacity.Members, breakdown),
		BurnRate:        CalculateBurnRate(items),
		MemberBurnRates: CalculateMemberBurnRates(sorted),
		Workload:        sorted,
	}
}

// loadWork resolves the team, its saved query and the normalized items
// the query returns, in that order
func (uc *AnalyticsUseCase) loadWork(ctx context.Context, teamID types.TeamID) (*model.Team, []*model.WorkItem, error) {
	team, err := getTeam(ctx, uc.repo, teamID)
	if err != nil {
		return nil, nil, err
	}

	items, err := uc.search(ctx, team)
	if err != nil {
		return nil, nil, err
	}
	return team, items, nil
}

func (uc *AnalyticsUseCase) search(ctx context.Context, team *model.Team) ([]*model.WorkItem, error) {
	query, err := uc.repo.Query().Get(ctx, team.ID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrQueryNotFound, "team has no saved query", goerr.V(TeamIDKey, team.ID))
		}
		return nil, goerr.Wrap(err, "failed to get saved query", goerr.V(TeamIDKey, team.ID))
	}

	if uc.tracker == nil {
		return nil, goerr.Wrap(ErrTrackerUnavailable, "work tracker is not configured", goerr.V(TeamIDKey, team.ID))
	}

	raws, err := uc.tracker.Search(ctx, query.JQL)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrTrackerUnavailable, err), "work tracker search failed",
			goerr.V(TeamIDKey, team.ID))
	}

	items := model.NormalizeAll(raws)
	logging.From(ctx).Debug("work items loaded",
		TeamIDKey, team.ID,
		"count", len(items))
	return items, nil
}

func assignedWorkByMember(buckets map[types.AssigneeKey]*model.AssigneeBucket) map[types.MemberID]model.AssignedWork {
	work := make(map[types.MemberID]model.AssignedWork, len(buckets))
	for _, b := range buckets {
		if b.MemberID != "" {
			work[b.MemberID] = b.AssignedWork()
		}
	}
	return work
}
