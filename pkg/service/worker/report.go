package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron/v3"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// ReportRunner generates and lists what the worker needs
type ReportRunner interface {
	GenerateReport(ctx context.Context, teamID types.TeamID, start, end time.Time) (*model.Report, error)
	ListTeams(ctx context.Context) ([]*model.Team, error)
}

const DefaultConcurrency = 4

// ReportWorker generates team reports for the previous business week on a
// cron schedule.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Running several instances produces one report per instance per run
type ReportWorker struct {
	runner      ReportRunner
	schedule    string
	loc         *time.Location
	teams       []types.TeamID
	concurrency int
	now         func() time.Time

	cron    *cron.Cron
	running atomic.Bool
}

type Option func(*ReportWorker)

// WithTeams restricts the worker to the given teams. By default every team
// in the repository is reported.
func WithTeams(ids ...types.TeamID) Option {
	return func(w *ReportWorker) {
		w.teams = ids
	}
}

func WithLocation(loc *time.Location) Option {
	return func(w *ReportWorker) {
		w.loc = loc
	}
}

func WithConcurrency(n int) Option {
	return func(w *ReportWorker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *ReportWorker) {
		w.now = now
	}
}

// NewReportWorker validates the 5-field cron schedule
func NewReportWorker(runner ReportRunner, schedule string, opts ...Option) (*ReportWorker, error) {
	w := &ReportWorker{
		runner:      runner,
		schedule:    schedule,
		loc:         time.UTC,
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}

	if _, err := parser().Parse(schedule); err != nil {
		return nil, goerr.Wrap(err, "invalid report schedule", goerr.V("schedule", schedule))
	}

	w.cron = cron.New(cron.WithLocation(w.loc), cron.WithParser(parser()))
	return w, nil
}

func parser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
}

// Start registers the schedule and returns without blocking
func (w *ReportWorker) Start(ctx context.Context) error {
	logging.Default().Info("Report worker starting",
		"schedule", w.schedule,
		"location", w.loc.String(),
		"teams", len(w.teams))

	if _, err := w.cron.AddFunc(w.schedule, func() {
		if err := w.RunOnce(ctx); err != nil {
			logging.Default().Error("Scheduled report run failed (will retry next schedule)",
				"error", err.Error())
		}
	}); err != nil {
		return goerr.Wrap(err, "failed to register report schedule", goerr.V("schedule", w.schedule))
	}

	w.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (w *ReportWorker) Stop() {
	logging.Default().Info("Report worker stopping")
	<-w.cron.Stop().Done()
	logging.Default().Info("Report worker stopped")
}

// RunOnce generates reports for the previous business week. A run that
// overlaps a running one is skipped. Failures of single teams are logged
// and counted; the run fails only when every team failed.
func (w *ReportWorker) RunOnce(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		logging.Default().Warn("Previous report run still in progress, skipping")
		return nil
	}
	defer w.running.Store(false)

	startTime := time.Now()
	start, end := PreviousBusinessWeek(w.now().In(w.loc))

	teams, err := w.targetTeams(ctx)
	if err != nil {
		return err
	}
	if len(teams) == 0 {
		logging.Default().Info("No teams to report")
		return nil
	}

	var failed atomic.Int32
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(w.concurrency)

	for _, id := range teams {
		eg.Go(func() error {
			report, err := w.runner.GenerateReport(egCtx, id, start, end)
			if err != nil {
				failed.Add(1)
				logging.Default().Error("Report generation failed",
					"team_id", id,
					"error", err.Error())
				return nil
			}
			logging.Default().Info("Report generated",
				"team_id", id,
				"report_id", report.ID,
				"narrative_state", report.NarrativeState)
			return nil
		})
	}
	_ = eg.Wait()

	logging.Default().Info("Report run completed",
		"teams", len(teams),
		"failed", failed.Load(),
		"start", start.Format(model.DateLayout),
		"end", end.Format(model.DateLayout),
		"duration", time.Since(startTime).String())

	if int(failed.Load()) == len(teams) {
		return goerr.New("every report in the run failed", goerr.V("teams", len(teams)))
	}
	return nil
}

func (w *ReportWorker) targetTeams(ctx context.Context) ([]types.TeamID, error) {
	if len(w.teams) > 0 {
		return w.teams, nil
	}

	teams, err := w.runner.ListTeams(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list teams")
	}
	ids := make([]types.TeamID, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	return ids, nil
}

// PreviousBusinessWeek returns Monday and Friday of the week before now,
// as UTC calendar days of now's location
func PreviousBusinessWeek(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	sinceMonday := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -sinceMonday-7)
	return monday, monday.AddDate(0, 0, 4)
}
