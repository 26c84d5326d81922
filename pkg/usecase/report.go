package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"github.com/secmon-lab/moirai/pkg/service/narrative"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
)

const (
	DefaultReportListLimit = 20

	// predictionHistory is how many past windows feed the hours prediction
	predictionHistory = 8
	// historyScan bounds the stored reports read to find those windows;
	// regenerated windows and overlapping reports are skipped
	historyScan = 4 * predictionHistory
)

type ReportUseCase struct {
	repo      interfaces.Repository
	analytics *AnalyticsUseCase
	narrative interfaces.NarrativeGenerator
	notifier  interfaces.Notifier
	archiver  interfaces.Archiver
	now       func() time.Time
}

func NewReportUseCase(
	repo interfaces.Repository,
	analytics *AnalyticsUseCase,
	gen interfaces.NarrativeGenerator,
	notifier interfaces.Notifier,
	archiver interfaces.Archiver,
	now func() time.Time,
) *ReportUseCase {
	if now == nil {
		now = time.Now
	}
	return &ReportUseCase{
		repo:      repo,
		analytics: analytics,
		narrative: gen,
		notifier:  notifier,
		archiver:  archiver,
		now:       now,
	}
}

// GenerateReport analyzes the team, writes the narrative, archives and
// stores the report, then notifies. Archive and notification failures are
// logged only.
func (uc *ReportUseCase) GenerateReport(ctx context.Context, teamID types.TeamID, start, end time.Time) (*model.Report, error) {
	logger := logging.From(ctx)

	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	team, items, err := uc.analytics.loadWork(ctx, teamID)
	if err != nil {
		return nil, err
	}
	analytics := uc.analytics.analyze(ctx, team, items, start, end)

	text, state, err := uc.writeNarrative(ctx, team, analytics)
	if err != nil {
		return nil, err
	}

	history := uc.history(ctx, team.ID, start)
	report := &model.Report{
		ID:             model.NewReportID(),
		TeamID:         team.ID,
		Start:          model.Day(start),
		End:            model.Day(end),
		Summary:        analytics.Summary,
		Risks:          analytics.Risks,
		BurnRate:       analytics.BurnRate,
		Trend:          trendOf(history, analytics.BurnRate),
		Prediction:     predictionOf(history),
		Narrative:      text,
		NarrativeState: state,
		CreatedAt:      uc.now().UTC(),
	}

	if uc.archiver != nil {
		url, err := uc.archiver.Archive(ctx, report)
		if err != nil {
			logger.Warn("failed to archive report",
				TeamIDKey, team.ID,
				ReportIDKey, report.ID,
				"error", err.Error())
		} else {
			report.ArchiveURL = url
		}
	}

	if err := uc.repo.Report().Create(ctx, report); err != nil {
		return nil, goerr.Wrap(err, "failed to save report",
			goerr.V(TeamIDKey, team.ID),
			goerr.V(ReportIDKey, report.ID))
	}

	if uc.notifier != nil {
		if err := uc.notifier.NotifyReport(ctx, team, report); err != nil {
			logger.Warn("failed to notify report",
				TeamIDKey, team.ID,
				ReportIDKey, report.ID,
				"error", err.Error())
		}
	}

	logger.Info("report generated",
		TeamIDKey, team.ID,
		ReportIDKey, report.ID,
		"narrative_state", report.NarrativeState)
	return report, nil
}

func (uc *ReportUseCase) writeNarrative(ctx context.Context, team *model.Team, analytics *model.TeamAnalytics) (string, model.NarrativeState, error) {
	if uc.narrative == nil {
		return narrative.Fallback(team, analytics), model.NarrativeSkipped, nil
	}

	result, err := uc.narrative.Generate(ctx, interfaces.NarrativeRequest{
		Prompt:   narrative.BuildPrompt(team, analytics),
		Validate: narrative.RequireSections(narrative.RequiredSections...),
	})
	if err != nil {
		return "", "", goerr.Wrap(errors.Join(ErrNarrativeUnavailable, err), "failed to generate narrative",
			goerr.V(TeamIDKey, team.ID))
	}
	return result.Text, result.State, nil
}

// history returns earlier reports of the team, newest first. Only reports
// whose window ended on or before start count, and each window once (the
// newest report of it), so regenerating a window never compares it with
// itself.
func (uc *ReportUseCase) history(ctx context.Context, teamID types.TeamID, start time.Time) []*model.Report {
	reports, err := uc.repo.Report().ListByTeam(ctx, teamID, historyScan)
	if err != nil {
		logging.From(ctx).Warn("failed to load previous reports", TeamIDKey, teamID, "error", err.Error())
		return nil
	}

	type window struct{ start, end time.Time }
	seen := make(map[window]bool)
	boundary := model.Day(start)

	var history []*model.Report
	for _, r := range reports {
		if r.End.After(boundary) {
			continue
		}
		w := window{start: r.Start.UTC(), end: r.End.UTC()}
		if seen[w] {
			continue
		}
		seen[w] = true
		history = append(history, r)
		if len(history) == predictionHistory {
			break
		}
	}
	return history
}

// trendOf compares the burn rate with the latest earlier window
func trendOf(history []*model.Report, current model.BurnRate) types.Trend {
	if len(history) == 0 {
		return types.TrendStable
	}
	return CalculateTrend(history[0].BurnRate.Rate, current.Rate)
}

// predictionOf estimates the hours of the next window from hours spent in past ones
func predictionOf(history []*model.Report) model.Prediction {
	hours := make([]float64, len(history))
	for i, r := range history {
		hours[i] = r.Summary.TotalTimeSpent
	}
	return PredictHours(hours)
}

// ListReports returns the latest reports of a team, newest first
func (uc *ReportUseCase) ListReports(ctx context.Context, teamID types.TeamID, limit int) ([]*model.Report, error) {
	if _, err := getTeam(ctx, uc.repo, teamID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultReportListLimit
	}

	reports, err := uc.repo.Report().ListByTeam(ctx, teamID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list reports", goerr.V(TeamIDKey, teamID))
	}
	return reports, nil
}

func (uc *ReportUseCase) GetReport(ctx context.Context, id model.ReportID) (*model.Report, error) {
	report, err := uc.repo.Report().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrReportNotFound, "report not found", goerr.V(ReportIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get report", goerr.V(ReportIDKey, id))
	}
	return report, nil
}

// ListTeams lets the report worker enumerate every team
func (uc *ReportUseCase) ListTeams(ctx context.Context) ([]*model.Team, error) {
	teams, err := uc.repo.Team().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list teams")
	}
	return teams, nil
}
