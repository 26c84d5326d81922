package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
	"github.com/secmon-lab/moirai/pkg/utils/safe"
)

var (
	ErrRequestFailed  = goerr.New("jira request failed")
	ErrInvalidBaseURL = goerr.New("invalid jira base URL")
)

const (
	maxAttempts     = 3
	defaultPageSize = 100
	defaultTimeout  = 30 * time.Second
)

// Client searches issues through the Jira REST API
type Client struct {
	baseURL          string
	apiVersion       string
	token            string
	user             string
	password         string
	storyPointFields []string
	pageSize         int
	backoff          time.Duration
	http             *http.Client
}

var _ interfaces.WorkTracker = &Client{}

type Option func(*Client)

// WithBearerToken authenticates with a personal access token. It takes
// precedence over basic authentication.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithBasicAuth authenticates with a user and API token
func WithBasicAuth(user, password string) Option {
	return func(c *Client) {
		c.user = user
		c.password = password
	}
}

// WithAPIVersion selects "2" (GET search) or "3" (POST search, default)
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithStoryPointFields sets the custom field ids holding story points, in
// lookup order
func WithStoryPointFields(fields ...string) Option {
	return func(c *Client) {
		c.storyPointFields = fields
	}
}

func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRetryBackoff sets the base delay. Attempt n waits backoff * 2^n.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.backoff = d
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, goerr.Wrap(ErrInvalidBaseURL, "jira base URL must be absolute", goerr.V("base_url", baseURL))
	}

	c := &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		apiVersion:       "3",
		storyPointFields: []string{"customfield_10016", "customfield_10026"},
		pageSize:         defaultPageSize,
		backoff:          300 * time.Millisecond,
		http:             &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.apiVersion != "2" && c.apiVersion != "3" {
		return nil, goerr.New("unsupported jira API version", goerr.V("version", c.apiVersion))
	}
	return c, nil
}

// Search runs jql and returns every matching issue across all pages
func (c *Client) Search(ctx context.Context, jql string) ([]*model.RawWorkItem, error) {
	if strings.TrimSpace(jql) == "" {
		return nil, goerr.New("jira query is empty")
	}

	fields := append(append([]string{}, baseFields...), c.storyPointFields...)

	var items []*model.RawWorkItem
	startAt := 0
	for {
		page, err := c.searchPage(ctx, jql, fields, startAt)
		if err != nil {
			return nil, err
		}

		for i := range page.Issues {
			raw, err := page.Issues[i].toRaw(c.storyPointFields)
			if err != nil {
				return nil, err
			}
			items = append(items, raw)
		}

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}

	logging.From(ctx).Debug("jira search completed", "jql", jql, "count", len(items))
	return items, nil
}

func (c *Client) searchPage(ctx context.Context, jql string, fields []string, startAt int) (*searchResponse, error) {
	var resp searchResponse

	if c.apiVersion == "2" {
		q := url.Values{}
		q.Set("jql", jql)
		q.Set("startAt", strconv.Itoa(startAt))
		q.Set("maxResults", strconv.Itoa(c.pageSize))
		q.Set("fields", strings.Join(fields, ","))
		if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/rest/api/2/search?"+q.Encode(), nil, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}

	body := &searchRequest{
		JQL:        jql,
		StartAt:    startAt,
		MaxResults: c.pageSize,
		Fields:     fields,
	}
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/rest/api/3/search", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doJSON retries on 429 and 5xx responses and on transport errors. Other
// statuses fail immediately.
func (c *Client) doJSON(ctx context.Context, method, u string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal jira request")
		}
		payload = b
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(1<<(attempt-1))
			logging.From(ctx).Warn("retrying jira request", "attempt", attempt+1, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return goerr.Wrap(ctx.Err(), "jira request canceled")
			case <-time.After(wait):
			}
		}

		retry, err := c.do(ctx, method, u, payload, out)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}

	return goerr.Wrap(lastErr, "jira request retries exhausted", goerr.V("attempts", maxAttempts))
}

func (c *Client) do(ctx context.Context, method, u string, payload []byte, out any) (bool, error) {
	var r io.Reader
	if payload != nil {
		r = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return false, goerr.Wrap(err, "failed to build jira request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, goerr.Wrap(err, "jira request canceled")
		}
		return true, goerr.Wrap(err, "failed to send jira request", goerr.V("url", u))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := goerr.Wrap(ErrRequestFailed, "unexpected jira response",
			goerr.V("status", resp.StatusCode),
			goerr.V("url", u),
			goerr.V("body", strings.TrimSpace(string(b))))
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retry, err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, goerr.Wrap(err, "failed to decode jira response", goerr.V("url", u))
	}
	return false, nil
}
