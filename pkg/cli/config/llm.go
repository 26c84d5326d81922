package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/secmon-lab/moirai/pkg/service/narrative"
	"github.com/urfave/cli/v3"
)

// LLM holds configuration for the narrative generator's LLM client
type LLM struct {
	provider       string
	geminiProject  string
	geminiLocation string
	openaiAPIKey   string
}

// Flags returns CLI flags for LLM configuration
func (x *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "LLM provider for report narratives [gemini|openai]. Empty disables narratives",
			Category:    "LLM",
			Sources:     cli.EnvVars("MOIRAI_LLM_PROVIDER"),
			Destination: &x.provider,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "LLM",
			Sources:     cli.EnvVars("MOIRAI_GEMINI_PROJECT"),
			Destination: &x.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Category:    "LLM",
			Value:       "us-central1",
			Sources:     cli.EnvVars("MOIRAI_GEMINI_LOCATION"),
			Destination: &x.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("MOIRAI_OPENAI_API_KEY"),
			Destination: &x.openaiAPIKey,
		},
	}
}

func (x LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", x.provider),
		slog.String("gemini_project", x.geminiProject),
		slog.String("gemini_location", x.geminiLocation),
		slog.Int("openai_api_key.len", len(x.openaiAPIKey)),
	)
}

// IsEnabled reports whether a provider is selected
func (x *LLM) IsEnabled() bool {
	return x.provider != ""
}

// client creates the LLM client of the selected provider
func (x *LLM) client(ctx context.Context) (gollem.LLMClient, error) {
	switch x.provider {
	case "gemini":
		if x.geminiProject == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "gemini-project is required for gemini provider",
				goerr.V(FlagKey, "gemini-project"))
		}
		client, err := gemini.New(ctx, x.geminiProject, x.geminiLocation)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		return client, nil

	case "openai":
		if x.openaiAPIKey == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "openai-api-key is required for openai provider",
				goerr.V(FlagKey, "openai-api-key"))
		}
		client, err := openai.New(ctx, x.openaiAPIKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		return client, nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "unknown LLM provider", goerr.V("provider", x.provider))
	}
}

// Configure creates the narrative generator. Returns nil when no provider
// is configured; reports then carry the deterministic fallback narrative.
func (x *LLM) Configure(ctx context.Context, report Report) (*narrative.Generator, error) {
	if !x.IsEnabled() {
		return nil, nil
	}

	client, err := x.client(ctx)
	if err != nil {
		return nil, err
	}

	var opts []narrative.Option
	if report.NarrativeMaxAttempts > 0 {
		opts = append(opts, narrative.WithMaxAttempts(report.NarrativeMaxAttempts))
	}
	if report.NarrativeContextWindow > 0 {
		opts = append(opts, narrative.WithContextWindow(report.NarrativeContextWindow))
	}
	if report.NarrativeTemperature != nil {
		opts = append(opts, narrative.WithTemperature(*report.NarrativeTemperature))
	}
	if report.NarrativeMaxTokens > 0 {
		opts = append(opts, narrative.WithMaxTokens(report.NarrativeMaxTokens))
	}

	gen, err := narrative.New(client, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create narrative generator")
	}
	return gen, nil
}
