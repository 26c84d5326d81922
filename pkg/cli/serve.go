package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/cli/config"
	httpctrl "github.com/secmon-lab/moirai/pkg/controller/http"
	"github.com/secmon-lab/moirai/pkg/service/worker"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var reportTimeout time.Duration
	var appCfg config.App
	var repoCfg config.Repository
	var sentryCfg config.Sentry
	var svcCfg services

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MOIRAI_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "report-timeout",
			Usage:       "Deadline of reports generated in the background",
			Value:       httpctrl.DefaultReportTimeout,
			Sources:     cli.EnvVars("MOIRAI_REPORT_TIMEOUT"),
			Destination: &reportTimeout,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, svcCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
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

			// Initialize repository based on backend type
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

			var reportWorker *worker.ReportWorker
			if app.Report.Schedule != "" {
				reportWorker, err = worker.NewReportWorker(uc.Report, app.Report.Schedule,
					worker.WithTeams(app.ReportTeams()...),
					worker.WithLocation(app.ReportLocation()),
					worker.WithConcurrency(app.Report.Concurrency),
				)
				if err != nil {
					return goerr.Wrap(err, "failed to create report worker")
				}
				if err := reportWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start report worker")
				}
			} else {
				logging.Default().Info("Report schedule not configured, scheduled reports disabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpctrl.WithReportTimeout(reportTimeout)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop report worker first
				if reportWorker != nil {
					reportWorker.Stop()
				}

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// Attempt graceful shutdown
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
