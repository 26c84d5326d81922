package slack

import (
	"context"

	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/slack-go/slack"
)

// Service provides the Slack operations used for report delivery
type Service interface {
	interfaces.Notifier

	// GetChannelNames retrieves channel names for the given IDs (with caching).
	// Unknown channels are omitted from the result.
	GetChannelNames(ctx context.Context, ids []string) (map[string]string, error)

	// PostMessage posts a Block Kit message to a channel and returns the message timestamp.
	// The text parameter is used as a fallback for notifications.
	PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error)
}
