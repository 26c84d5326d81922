package interfaces

import (
	"context"

	"github.com/secmon-lab/moirai/pkg/domain/model"
)

// WorkTracker executes a prepared tracker query
type WorkTracker interface {
	Search(ctx context.Context, query string) ([]*model.RawWorkItem, error)
}

// TrackerCache drops cached tracker results of a query
type TrackerCache interface {
	Invalidate(ctx context.Context, query string) error
}

// NarrativeRequest describes one narrative generation
type NarrativeRequest struct {
	Prompt string
	// Validate decides whether a produced text is acceptable. Nil accepts
	// any non-empty text.
	Validate func(text string) error
}

// NarrativeResult is the outcome of narrative generation
type NarrativeResult struct {
	Text     string
	Attempts int
	State    model.NarrativeState
}

// NarrativeGenerator turns an analytics prompt into prose
type NarrativeGenerator interface {
	Generate(ctx context.Context, req NarrativeRequest) (*NarrativeResult, error)
}

// Notifier delivers a finished report to people
type Notifier interface {
	NotifyReport(ctx context.Context, team *model.Team, report *model.Report) error
}

// Archiver stores a finished report outside the document store and returns
// its location
type Archiver interface {
	Archive(ctx context.Context, report *model.Report) (string, error)
}
