package narrative

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
)

var (
	ErrRetryExhausted        = goerr.New("narrative generation retries exhausted")
	ErrEmptyResponse         = goerr.New("narrative generator returned no text")
	ErrContextWindowExceeded = goerr.New("narrative prompt exceeds context window")
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = time.Second
)

type state int

const (
	stateAttempting state = iota
	stateValidating
	stateSucceeded
	stateExhaustedFallback
	stateExhaustedFailed
)

func (s state) String() string {
	switch s {
	case stateAttempting:
		return "attempting"
	case stateValidating:
		return "validating"
	case stateSucceeded:
		return "succeeded"
	case stateExhaustedFallback:
		return "exhausted_fallback"
	case stateExhaustedFailed:
		return "exhausted_failed"
	default:
		return "unknown"
	}
}

// Generator produces report narratives with an LLM. A text that fails
// validation is regenerated up to the attempt bound.
type Generator struct {
	llm           gollem.LLMClient
	maxAttempts   int
	backoff       time.Duration
	contextWindow int
	systemPrompt  string
	temperature   *float64
	maxTokens     int
}

var _ interfaces.NarrativeGenerator = &Generator{}

type Option func(*Generator)

func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithBackoff sets the linear backoff unit. Attempt n+1 starts n*d after
// attempt n failed.
func WithBackoff(d time.Duration) Option {
	return func(g *Generator) {
		g.backoff = d
	}
}

// WithContextWindow rejects prompts whose token count exceeds n. Zero
// disables the check.
func WithContextWindow(n int) Option {
	return func(g *Generator) {
		g.contextWindow = n
	}
}

// WithTemperature sets the sampling temperature of every generation call.
// Unset leaves the provider default.
func WithTemperature(t float64) Option {
	return func(g *Generator) {
		g.temperature = &t
	}
}

// WithMaxTokens caps the output tokens of every generation call. Zero
// leaves the provider default.
func WithMaxTokens(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(g *Generator) {
		g.systemPrompt = prompt
	}
}

func New(llm gollem.LLMClient, opts ...Option) (*Generator, error) {
	if llm == nil {
		return nil, goerr.New("LLM client is required")
	}

	g := &Generator{
		llm:          llm,
		maxAttempts:  DefaultMaxAttempts,
		backoff:      DefaultBackoff,
		systemPrompt: defaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate runs the attempt/validate loop. When every attempt fails
// validation, the last produced text is returned with the
// exhausted-fallback state. When no attempt produced text at all,
// ErrRetryExhausted is returned.
func (g *Generator) Generate(ctx context.Context, req interfaces.NarrativeRequest) (*interfaces.NarrativeResult, error) {
	logger := logging.From(ctx)

	var (
		st       = stateAttempting
		attempt  int
		text     string
		lastText string
		lastErr  error
	)

	// after a failed attempt or validation, either wait and retry or stop
	next := func() state {
		if attempt >= g.maxAttempts {
			if lastText != "" {
				return stateExhaustedFallback
			}
			return stateExhaustedFailed
		}
		return stateAttempting
	}

	for {
		switch st {
		case stateAttempting:
			if attempt > 0 {
				if err := g.wait(ctx, attempt); err != nil {
					return nil, err
				}
			}
			attempt++

			out, err := g.attempt(ctx, req.Prompt)
			if err != nil {
				if errors.Is(err, ErrContextWindowExceeded) {
					return nil, err
				}
				logger.Warn("narrative attempt failed", "attempt", attempt, "error", err)
				lastErr = err
				st = next()
				continue
			}
			text = out
			st = stateValidating

		case stateValidating:
			lastText = text
			if req.Validate != nil {
				if err := req.Validate(text); err != nil {
					logger.Warn("narrative failed validation", "attempt", attempt, "error", err)
					lastErr = err
					st = next()
					continue
				}
			}
			st = stateSucceeded

		case stateSucceeded:
			return &interfaces.NarrativeResult{
				Text:     text,
				Attempts: attempt,
				State:    model.NarrativeSucceeded,
			}, nil

		case stateExhaustedFallback:
			logger.Warn("narrative validation did not pass, using last attempt",
				"attempts", attempt,
				"error", lastErr,
			)
			return &interfaces.NarrativeResult{
				Text:     lastText,
				Attempts: attempt,
				State:    model.NarrativeExhaustedFallback,
			}, nil

		case stateExhaustedFailed:
			return nil, goerr.Wrap(ErrRetryExhausted, "no narrative produced",
				goerr.V("attempts", attempt),
				goerr.V("last_error", errString(lastErr)))

		default:
			return nil, goerr.New("invalid narrative state", goerr.V("state", st.String()))
		}
	}
}

func (g *Generator) attempt(ctx context.Context, prompt string) (string, error) {
	session, err := g.llm.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeText),
		gollem.WithSessionSystemPrompt(g.systemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	if g.contextWindow > 0 {
		tokens, err := session.CountToken(ctx, gollem.Text(prompt))
		if err != nil {
			return "", goerr.Wrap(err, "failed to count prompt tokens")
		}
		if tokens > g.contextWindow {
			return "", goerr.Wrap(ErrContextWindowExceeded, "prompt too large",
				goerr.V("tokens", tokens),
				goerr.V("context_window", g.contextWindow))
		}
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(prompt)}, g.generateOptions()...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate narrative")
	}
	if resp == nil {
		return "", goerr.Wrap(ErrEmptyResponse, "nil response")
	}

	text := strings.TrimSpace(strings.Join(resp.Texts, ""))
	if text == "" {
		return "", goerr.Wrap(ErrEmptyResponse, "empty response")
	}
	return text, nil
}

func (g *Generator) generateOptions() []gollem.GenerateOption {
	var opts []gollem.GenerateOption
	if g.temperature != nil {
		opts = append(opts, gollem.WithTemperature(*g.temperature))
	}
	if g.maxTokens > 0 {
		opts = append(opts, gollem.WithMaxTokens(g.maxTokens))
	}
	return opts
}

func (g *Generator) wait(ctx context.Context, attempt int) error {
	d := g.backoff * time.Duration(attempt)
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "narrative generation canceled", goerr.V("attempt", attempt))
	case <-time.After(d):
		return nil
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
