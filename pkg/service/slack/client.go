package slack

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
	"github.com/slack-go/slack"
)

const (
	// DefaultCacheTTL is the default TTL for channel name cache
	DefaultCacheTTL = 5 * time.Minute
)

// cacheEntry holds a cached channel name with expiration
type cacheEntry struct {
	name      string
	expiresAt time.Time
}

// client implements Service interface
type client struct {
	api       *slack.Client
	channelID string
	cacheTTL  time.Duration
	baseURL   string

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// Option is a functional option for client configuration
type Option func(*client)

// WithCacheTTL sets the TTL for channel name cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.cacheTTL = ttl
	}
}

// WithAPIURL points the client at another Slack API endpoint
func WithAPIURL(url string) Option {
	return func(c *client) {
		c.baseURL = url
	}
}

// New creates a Slack service posting reports to channelID
func New(token, channelID string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	c := &client{
		channelID: channelID,
		cacheTTL:  DefaultCacheTTL,
		cache:     make(map[string]cacheEntry),
	}

	for _, opt := range opts {
		opt(c)
	}

	var apiOpts []slack.Option
	if c.baseURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(c.baseURL))
	}
	c.api = slack.New(token, apiOpts...)

	return c, nil
}

// NotifyReport posts the report summary to the configured channel
func (c *client) NotifyReport(ctx context.Context, team *model.Team, report *model.Report) error {
	blocks, text := buildReportBlocks(team, report)
	ts, err := c.PostMessage(ctx, c.channelID, blocks, text)
	if err != nil {
		return goerr.Wrap(err, "failed to notify report",
			goerr.V("team_id", team.ID),
			goerr.V("report_id", report.ID))
	}

	logging.From(ctx).Info("report posted to Slack",
		"team_id", team.ID,
		"report_id", report.ID,
		"channel", c.channelID,
		"ts", ts)
	return nil
}

// PostMessage posts a Block Kit message to a channel
func (c *client) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post message", goerr.V("channel_id", channelID))
	}
	return ts, nil
}

// GetChannelNames retrieves channel names for the given IDs with caching
func (c *client) GetChannelNames(ctx context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string)
	var missingIDs []string

	now := time.Now()

	c.mu.RLock()
	for _, id := range ids {
		if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
			result[id] = entry.name
		} else {
			missingIDs = append(missingIDs, id)
		}
	}
	c.mu.RUnlock()

	if len(missingIDs) > 0 {
		c.mu.Lock()
		defer c.mu.Unlock()

		for _, id := range missingIDs {
			// Double-check cache after acquiring write lock
			if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
				result[id] = entry.name
				continue
			}

			info, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
				ChannelID: id,
			})
			if err != nil {
				logging.From(ctx).Debug("channel lookup failed", "channel_id", id, "error", err)
				continue
			}

			result[id] = info.Name
			c.cache[id] = cacheEntry{
				name:      info.Name,
				expiresAt: now.Add(c.cacheTTL),
			}
		}
	}

	return result, nil
}
