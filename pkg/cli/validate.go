package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/cli/config"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/service/slack"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

var (
	okMark   = color.New(color.FgGreen, color.Bold).SprintFunc()
	ngMark   = color.New(color.FgRed, color.Bold).SprintFunc()
	keyLabel = color.New(color.FgCyan).SprintFunc()
)

func cmdValidate() *cli.Command {
	var configPath string
	var checkDB, checkSlack bool
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML configuration file (required)",
			Required:    true,
			Sources:     cli.EnvVars("MOIRAI_CONFIG"),
			Destination: &configPath,
		},
		&cli.BoolFlag{
			Name:        "check-db",
			Usage:       "Check that the configured report teams exist in the repository",
			Destination: &checkDB,
		},
		&cli.BoolFlag{
			Name:        "check-slack",
			Usage:       "Check that the report channel is visible to the Slack bot",
			Destination: &checkSlack,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration file and optionally check report teams in the DB",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := config.LoadAppConfiguration(configPath)
			if err != nil {
				fmt.Printf("%s %s\n", ngMark("✗"), err.Error())
				return goerr.Wrap(err, "configuration validation failed")
			}
			printAppConfig(configPath, app)

			if checkSlack {
				svc, err := slackCfg.Configure()
				if err != nil {
					return goerr.Wrap(err, "failed to configure Slack")
				}
				if err := checkSlackChannel(ctx, svc, slackCfg.ChannelID()); err != nil {
					return err
				}
			}

			if !checkDB {
				logging.Default().Info("DB check not requested, skipping report team check")
				return nil
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			return checkReportTeams(ctx, repo, app)
		},
	}
}

func printAppConfig(path string, app *config.AppConfig) {
	fmt.Printf("%s %s\n", okMark("✓"), path)
	fmt.Printf("  %s weekend=%v hours_per_day=%.2f default_location=%s\n",
		keyLabel("calendar"), app.Calendar.WeekendDays, app.Calendar.HoursPerDay, app.Calendar.DefaultLocation)
	fmt.Printf("  %s base_url=%q story_point_fields=%v\n",
		keyLabel("tracker"), app.Tracker.BaseURL, app.Tracker.StoryPointFields)

	names := make([]string, len(app.Priorities))
	for i, p := range app.Priorities {
		names[i] = fmt.Sprintf("%s(%d)", p.Name, p.Rank)
	}
	fmt.Printf("  %s %s\n", keyLabel("priority"), strings.Join(names, " "))
	fmt.Printf("  %s schedule=%q timezone=%s teams=%v\n",
		keyLabel("report"), app.Report.Schedule, app.Report.Timezone, app.Report.Teams)
}

func checkSlackChannel(ctx context.Context, svc slack.Service, channelID string) error {
	if svc == nil {
		return goerr.Wrap(config.ErrMissingFlag, "Slack is not configured",
			goerr.V(config.FlagKey, "slack-bot-token/slack-channel"))
	}

	names, err := svc.GetChannelNames(ctx, []string{channelID})
	if err != nil {
		return goerr.Wrap(err, "failed to resolve Slack channel", goerr.V("channel_id", channelID))
	}
	name, ok := names[channelID]
	if !ok {
		fmt.Printf("%s channel %s not found\n", ngMark("✗"), channelID)
		return goerr.New("Slack channel not found", goerr.V("channel_id", channelID))
	}
	fmt.Printf("%s channel %s (#%s)\n", okMark("✓"), channelID, name)
	return nil
}

// checkReportTeams verifies that every configured report team exists
func checkReportTeams(ctx context.Context, repo interfaces.Repository, app *config.AppConfig) error {
	var missing int
	for _, id := range app.ReportTeams() {
		_, err := repo.Team().Get(ctx, id)
		switch {
		case err == nil:
			fmt.Printf("%s team %s\n", okMark("✓"), id)
		case errors.Is(err, interfaces.ErrNotFound):
			fmt.Printf("%s team %s not found\n", ngMark("✗"), id)
			missing++
		default:
			return goerr.Wrap(err, "failed to get team", goerr.V("team_id", id))
		}
	}

	if missing > 0 {
		return goerr.New("report teams are missing", goerr.V("missing", missing))
	}
	return nil
}
