package cli

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/cli/config"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"github.com/secmon-lab/moirai/pkg/service/worker"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdReport(version string) *cli.Command {
	var teams []string
	var startDate string
	var endDate string
	var appCfg config.App
	var repoCfg config.Repository
	var sentryCfg config.Sentry
	var svcCfg services

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "team",
			Aliases:     []string{"t"},
			Usage:       "Team ID to report. Repeatable. Empty runs the configured report teams like the scheduler does",
			Destination: &teams,
		},
		&cli.StringFlag{
			Name:        "start",
			Usage:       "First day of the report window (YYYY-MM-DD). Defaults to Monday of the previous week",
			Destination: &startDate,
		},
		&cli.StringFlag{
			Name:        "end",
			Usage:       "Last day of the report window (YYYY-MM-DD). Defaults to Friday of the previous week",
			Destination: &endDate,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, svcCfg.Flags()...)

	return &cli.Command{
		Name:    "report",
		Aliases: []string{"r"},
		Usage:   "Generate team reports once",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc, cleanup, err := svcCfg.Configure(ctx, repo, app)
			defer cleanup()
			if err != nil {
				return goerr.Wrap(err, "failed to configure services")
			}

			if len(teams) == 0 {
				w, err := worker.NewReportWorker(uc.Report, app.ReportSchedule(),
					worker.WithTeams(app.ReportTeams()...),
					worker.WithLocation(app.ReportLocation()),
					worker.WithConcurrency(app.Report.Concurrency),
				)
				if err != nil {
					return goerr.Wrap(err, "failed to create report worker")
				}
				return w.RunOnce(ctx)
			}

			start, end, err := reportWindow(startDate, endDate, time.Now().In(app.ReportLocation()))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			for _, id := range teams {
				report, err := uc.Report.GenerateReport(ctx, types.TeamID(id), start, end)
				if err != nil {
					return goerr.Wrap(err, "failed to generate report", goerr.V("team_id", id))
				}
				if err := enc.Encode(report); err != nil {
					return goerr.Wrap(err, "failed to write report", goerr.V("team_id", id))
				}
			}
			return nil
		},
	}
}

// reportWindow parses the optional window flags. Both empty selects the
// previous business week of now.
func reportWindow(startDate, endDate string, now time.Time) (time.Time, time.Time, error) {
	if startDate == "" && endDate == "" {
		start, end := worker.PreviousBusinessWeek(now)
		return start, end, nil
	}
	if startDate == "" || endDate == "" {
		return time.Time{}, time.Time{}, goerr.New("both --start and --end are required when one is set")
	}

	start, err := model.ParseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, goerr.Wrap(err, "invalid --start")
	}
	end, err := model.ParseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, goerr.Wrap(err, "invalid --end")
	}
	return start, end, nil
}
