package cli

import (
	"context"

	"github.com/secmon-lab/moirai/pkg/cli/config"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/usecase"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// services groups the flags of every external collaborator used by the
// use cases
type services struct {
	jira    config.Jira
	cache   config.Cache
	llm     config.LLM
	slack   config.Slack
	storage config.Storage
}

func (x *services) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.jira.Flags()...)
	flags = append(flags, x.cache.Flags()...)
	flags = append(flags, x.llm.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	flags = append(flags, x.storage.Flags()...)
	return flags
}

// Configure builds the use cases. The returned function releases every
// opened client and must be called even when an error is returned.
func (x *services) Configure(ctx context.Context, repo interfaces.Repository, app *config.AppConfig) (*usecase.UseCases, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	opts := []usecase.Option{
		usecase.WithCalendarConfig(app.ToCalendar()),
		usecase.WithWorkloadConfig(app.ToWorkload(x.jira.BaseURL())),
	}

	jiraClient, err := x.jira.Configure(app.Tracker)
	if err != nil {
		return nil, cleanup, err
	}
	if jiraClient != nil {
		tracker, closeCache, err := x.cache.Wrap(ctx, jiraClient)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, closeCache)
		opts = append(opts, usecase.WithTracker(tracker))
		logging.Default().Info("Work tracker enabled", "jira", x.jira, "cache", x.cache)
	} else {
		logging.Default().Warn("Jira URL not configured, team analytics are unavailable")
	}

	gen, err := x.llm.Configure(ctx, app.Report)
	if err != nil {
		return nil, cleanup, err
	}
	if gen != nil {
		opts = append(opts, usecase.WithNarrativeGenerator(gen))
		logging.Default().Info("Narrative generation enabled", "llm", x.llm)
	}

	notifier, err := x.slack.Configure()
	if err != nil {
		return nil, cleanup, err
	}
	if notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
		logging.Default().Info("Slack notification enabled", "slack", x.slack)
	}

	archiver, err := x.storage.Configure(ctx)
	if err != nil {
		return nil, cleanup, err
	}
	if archiver != nil {
		closers = append(closers, func() {
			if err := archiver.Close(); err != nil {
				logging.Default().Error("failed to close archive", "error", err.Error())
			}
		})
		opts = append(opts, usecase.WithArchiver(archiver))
		logging.Default().Info("Report archive enabled", "storage", x.storage)
	}

	return usecase.New(repo, opts...), cleanup, nil
}
