package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"github.com/secmon-lab/moirai/pkg/service/narrative"
	"github.com/secmon-lab/moirai/pkg/usecase"
)

func fixedNow() time.Time {
	return time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
}

func TestGenerateReport(t *testing.T) {
	ctx := context.Background()

	t.Run("narrative, archive and notification", func(t *testing.T) {
		repo := newRepo()
		seedTeam(t, repo)
		gen := &mockNarrative{result: &interfaces.NarrativeResult{
			Text:     "## Summary\nok\n## Risks\nnone\n## Recommendations\nnone",
			Attempts: 1,
			State:    model.NarrativeSucceeded,
		}}
		notifier := &mockNotifier{}
		archiver := &mockArchiver{url: "gs://reports/platform/report.json"}

		uc := usecase.New(repo,
			usecase.WithTracker(&mockTracker{items: sprintItems()}),
			usecase.WithNarrativeGenerator(gen),
			usecase.WithNotifier(notifier),
			usecase.WithArchiver(archiver),
			usecase.WithClock(fixedNow),
		)

		report, err := uc.Report.GenerateReport(ctx, "platform", weekStart, weekEnd)
		gt.NoError(t, err).Required()
		gt.Value(t, report.NarrativeState).Equal(model.NarrativeSucceeded)
		gt.String(t, report.ArchiveURL).Equal("gs://reports/platform/report.json")
		gt.Value(t, report.CreatedAt).Equal(fixedNow())
		gt.Value(t, report.Trend).Equal(types.TrendStable)
		gt.Number(t, report.Summary.TotalIssues).Equal(5)
		gt.Array(t, notifier.reports).Length(1)

		gt.B(t, strings.Contains(gen.req.Prompt, "Platform")).True()
		if gen.req.Validate == nil {
			t.Fatal("narrative request has no validator")
		}
		gt.Error(t, gen.req.Validate("## Summary\nonly")).Is(narrative.ErrMissingSection)

		stored, err := uc.Report.GetReport(ctx, report.ID)
		gt.NoError(t, err).Required()
		gt.String(t, stored.Narrative).Equal(report.Narrative)
		gt.String(t, stored.ArchiveURL).Equal(report.ArchiveURL)
	})

	t.Run("fallback narrative without a generator", func(t *testing.T) {
		repo := newRepo()
		seedTeam(t, repo)
		uc := usecase.New(repo, usecase.WithTracker(&mockTracker{items: sprintItems()}))

		report, err := uc.Report.GenerateReport(ctx, "platform", weekStart, weekEnd)
		gt.NoError(t, err).Required()
		gt.Value(t, report.NarrativeState).Equal(model.NarrativeSkipped)
		gt.NoError(t, narrative.RequireSections(narrative.RequiredSections...)(report.Narrative))
	})

	t.Run("exhausted fallback is kept", func(t *testing.T) {
		repo := newRepo()
		seedTeam(t, repo)
		uc := usecase.New(repo,
			usecase.WithTracker(&mockTracker{items: sprintItems()}),
			usecase.WithNarrativeGenerator(&mockNarrative{result: &interfaces.NarrativeResult{
				Text:     "partial text",
				Attempts: 3,
				State:    model.NarrativeExhaustedFallback,
			}}),
		)

		report, err := uc.Report.GenerateReport(ctx, "platform", weekStart, weekEnd)
		gt.NoError(t, err).Required()
		gt.String(t, report.Narrative).Equal("partial text")
		gt.Value(t, report.NarrativeState).Equal(model.NarrativeExhaustedFallback)
	})

	t.Run("narrative failure fails the report", func(t *testing.T) {
		repo := newRepo()
		seedTeam(t, repo)
		uc := usecase.New(repo,
			usecase.WithTracker(&mockTracker{items: sprintItems()}),
			usecase.WithNarrativeGenerator(&mockNarrative{err: narrative.ErrRetryExhausted}),
		)

		_, err := uc.Report.GenerateReport(ctx, "platform", weekStart, weekEnd)
		gt.Error(t, err).Is(usecase.ErrNarrativeUnavailable)
		gt.Error(t, err).Is(narrative.ErrRetryExhausted)

		reports, err := uc.Report.ListReports(ctx, "platform", 0)
		gt.NoError(t, err).Required()
		gt.Array(t, reports).Length(0)
	})

	t.Run("archive and notification failures are tolerated", func(t *testing.T) {
		repo := newRepo()
		seedTeam(t, repo)
		notifier := &mockNotifier{err: errors.New("slack down")}
		uc := usecase.New(repo,
			usecase.WithTracker(&mockTracker{items: sprintItems()}),
			usecase.WithNotifier(notifier),
			usecase.WithArchiver(&mockArchiver{err: errors.New("bucket missing")}),
		)

		report, err := uc.Report.GenerateReport(ctx, "platform", weekStart, weekEnd)
		gt.NoError(t, err).Required()
		gt.String(t, report.ArchiveURL).Equal("")
		gt.Array(t, notifier.reports).Length(1)
	})

	t.Run("trend compares with the previous report", func(t *testing.T) {
		repo := newRepo()
		seedTeam(t, repo)
		gt.NoError(t, repo.Report().Create(ctx, &model.Report{
			ID:        model.NewReportID(),
			TeamID:    "platform",
			BurnRate:  model.BurnRate{Rate: 1.5},
			CreatedAt: fixedNow().Add(-7 * 24 * time.Hour),
		})).Required()

		uc := usecase.New(repo,
			usecase.WithTracker(&mockTracker{items: sprintItems()}),
			usecase.WithClock(fixedNow),
		)
		report, err := uc.Report.GenerateReport(ctx, "platform", weekStart, weekEnd)
		gt.NoError(t, err).Required()
		// only PLAT-3 is done: 5 points over 8 hours
		gt.Number(t, report.BurnRate.Rate).Equal(0.63)
		gt.Value(t, report.Trend).Equal(types.TrendDeclining)

		reports, err := uc.Report.ListReports(ctx, "platform", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, reports).Length(2).Required()
		gt.Value(t, reports[0].ID).Equal(report.ID)
	})

	t.Run("prediction uses hours spent in past reports", func(t *testing.T) {
		repo := newRepo()
		seedTeam(t, repo)
		for i, spent := range []float64{10, 20, 30} {
			back := time.Duration(i+1) * 7 * 24 * time.Hour
			gt.NoError(t, repo.Report().Create(ctx, &model.Report{
				ID:        model.NewReportID(),
				TeamID:    "platform",
				Start:     weekStart.Add(-back),
				End:       weekEnd.Add(-back),
				Summary:   model.TeamSummary{TotalTimeSpent: spent},
				CreatedAt: fixedNow().Add(-back),
			})).Required()
		}

		uc := usecase.New(repo,
			usecase.WithTracker(&mockTracker{items: sprintItems()}),
			usecase.WithClock(fixedNow),
		)
		report, err := uc.Report.GenerateReport(ctx, "platform", weekStart, weekEnd)
		gt.NoError(t, err).Required()
		gt.Number(t, report.Prediction.SampleSize).Equal(3)
		gt.Number(t, report.Prediction.PredictedHours).Equal(20)
		gt.Number(t, report.Prediction.Variance).Equal(66.67)
		gt.Value(t, report.Prediction.Confidence).Equal(types.ConfidenceMedium)
	})

	t.Run("regenerating a window keeps the earlier window as baseline", func(t *testing.T) {
		repo := newRepo()
		seedTeam(t, repo)
		lastWeek := 7 * 24 * time.Hour
		gt.NoError(t, repo.Report().Create(ctx, &model.Report{
			ID:        model.NewReportID(),
			TeamID:    "platform",
			Start:     weekStart.Add(-lastWeek),
			End:       weekEnd.Add(-lastWeek),
			Summary:   model.TeamSummary{TotalTimeSpent: 12},
			BurnRate:  model.BurnRate{Rate: 1.5},
			CreatedAt: fixedNow().Add(-lastWeek),
		})).Required()

		uc := usecase.New(repo,
			usecase.WithTracker(&mockTracker{items: sprintItems()}),
			usecase.WithClock(fixedNow),
		)

		first, err := uc.Report.GenerateReport(ctx, "platform", weekStart, weekEnd)
		gt.NoError(t, err).Required()
		gt.Value(t, first.Trend).Equal(types.TrendDeclining)

		second, err := uc.Report.GenerateReport(ctx, "platform", weekStart, weekEnd)
		gt.NoError(t, err).Required()
		gt.Value(t, second.Trend).Equal(types.TrendDeclining)
		gt.Number(t, second.Prediction.SampleSize).Equal(1)
		gt.Number(t, second.Prediction.PredictedHours).Equal(12)
	})

	t.Run("later windows are not a baseline", func(t *testing.T) {
		repo := newRepo()
		seedTeam(t, repo)
		nextWeek := 7 * 24 * time.Hour
		gt.NoError(t, repo.Report().Create(ctx, &model.Report{
			ID:        model.NewReportID(),
			TeamID:    "platform",
			Start:     weekStart.Add(nextWeek),
			End:       weekEnd.Add(nextWeek),
			BurnRate:  model.BurnRate{Rate: 1.5},
			CreatedAt: fixedNow(),
		})).Required()

		uc := usecase.New(repo,
			usecase.WithTracker(&mockTracker{items: sprintItems()}),
			usecase.WithClock(fixedNow),
		)
		report, err := uc.Report.GenerateReport(ctx, "platform", weekStart, weekEnd)
		gt.NoError(t, err).Required()
		gt.Value(t, report.Trend).Equal(types.TrendStable)
		gt.Number(t, report.Prediction.SampleSize).Equal(0)
	})
}

func TestReportLookups(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(newRepo())

	_, err := uc.Report.GetReport(ctx, "missing")
	gt.Error(t, err).Is(usecase.ErrReportNotFound)

	_, err = uc.Report.ListReports(ctx, "missing", 0)
	gt.Error(t, err).Is(usecase.ErrTeamNotFound)

	teams, err := uc.Report.ListTeams(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, teams).Length(0)
}
