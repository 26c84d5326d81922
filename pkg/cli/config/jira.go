package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/service/jira"
	"github.com/urfave/cli/v3"
)

// Jira holds connection settings of the work tracker
type Jira struct {
	baseURL    string
	user       string
	token      string
	apiVersion string
}

func (x *Jira) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jira-url",
			Usage:       "Jira base URL (e.g., https://example.atlassian.net)",
			Category:    "Jira",
			Sources:     cli.EnvVars("MOIRAI_JIRA_URL"),
			Destination: &x.baseURL,
		},
		&cli.StringFlag{
			Name:        "jira-user",
			Usage:       "Jira user for basic authentication. Empty uses the token as bearer token",
			Category:    "Jira",
			Sources:     cli.EnvVars("MOIRAI_JIRA_USER"),
			Destination: &x.user,
		},
		&cli.StringFlag{
			Name:        "jira-token",
			Usage:       "Jira API token",
			Category:    "Jira",
			Sources:     cli.EnvVars("MOIRAI_JIRA_TOKEN"),
			Destination: &x.token,
		},
		&cli.StringFlag{
			Name:        "jira-api-version",
			Usage:       "Jira REST API version [2|3]",
			Category:    "Jira",
			Value:       "3",
			Sources:     cli.EnvVars("MOIRAI_JIRA_API_VERSION"),
			Destination: &x.apiVersion,
		},
	}
}

func (x Jira) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", x.baseURL),
		slog.String("user", x.user),
		slog.Int("token.len", len(x.token)),
		slog.String("api_version", x.apiVersion),
	)
}

func (x *Jira) IsConfigured() bool {
	return x.baseURL != ""
}

func (x *Jira) BaseURL() string {
	return x.baseURL
}

// Configure creates the Jira client. Returns nil when no URL is set; team
// analytics then fail with a tracker-unavailable error.
func (x *Jira) Configure(tracker Tracker) (*jira.Client, error) {
	if !x.IsConfigured() {
		return nil, nil
	}

	opts := []jira.Option{jira.WithAPIVersion(x.apiVersion)}
	switch {
	case x.token == "":
	case x.user != "":
		opts = append(opts, jira.WithBasicAuth(x.user, x.token))
	default:
		opts = append(opts, jira.WithBearerToken(x.token))
	}
	if len(tracker.StoryPointFields) > 0 {
		opts = append(opts, jira.WithStoryPointFields(tracker.StoryPointFields...))
	}

	client, err := jira.New(x.baseURL, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Jira client")
	}
	return client, nil
}
