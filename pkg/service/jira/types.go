package jira

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/model"
)

const (
	dateTimeLayout = "2006-01-02T15:04:05.000-0700"
	dateLayout     = "2006-01-02"
)

type searchRequest struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields"`
}

type searchResponse struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []issue `json:"issues"`
}

type issue struct {
	ID     string                     `json:"id"`
	Key    string                     `json:"key"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type namedField struct {
	Name string `json:"name"`
}

// user covers Jira Cloud (accountId) and Jira Server (key, name) payloads
type user struct {
	AccountID    string `json:"accountId"`
	Key          string `json:"key"`
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

func (u *user) toRaw() *model.RawAssignee {
	id := u.AccountID
	if id == "" {
		id = u.Key
	}
	if id == "" {
		id = u.Name
	}
	return &model.RawAssignee{
		AccountID:   id,
		DisplayName: u.DisplayName,
		Email:       u.EmailAddress,
	}
}

type timeTracking struct {
	TimeSpentSeconds        *float64 `json:"timeSpentSeconds"`
	OriginalEstimateSeconds *float64 `json:"originalEstimateSeconds"`
}

// baseFields are requested on every search in addition to the story point
// custom fields.
var baseFields = []string{
	"summary",
	"description",
	"status",
	"priority",
	"assignee",
	"timetracking",
	"timespent",
	"timeoriginalestimate",
	"labels",
	"duedate",
	"created",
	"updated",
}

func (x *issue) toRaw(storyPointFields []string) (*model.RawWorkItem, error) {
	raw := &model.RawWorkItem{
		ID:  x.ID,
		Key: x.Key,
	}

	if err := x.decode("summary", &raw.Summary); err != nil {
		return nil, err
	}
	raw.Description = x.description()

	var st namedField
	if err := x.decode("status", &st); err != nil {
		return nil, err
	}
	raw.Status = st.Name

	var pr namedField
	if err := x.decode("priority", &pr); err != nil {
		return nil, err
	}
	raw.Priority = pr.Name

	var assignee *user
	if err := x.decode("assignee", &assignee); err != nil {
		return nil, err
	}
	if assignee != nil {
		raw.Assignee = assignee.toRaw()
	}

	var tt timeTracking
	if err := x.decode("timetracking", &tt); err != nil {
		return nil, err
	}
	raw.TimeSpentSeconds = x.number(tt.TimeSpentSeconds, "timespent")
	raw.OriginalEstimateSeconds = x.number(tt.OriginalEstimateSeconds, "timeoriginalestimate")

	for _, f := range storyPointFields {
		raw.StoryPointSlots = append(raw.StoryPointSlots, x.number(nil, f))
	}

	if err := x.decode("labels", &raw.Labels); err != nil {
		return nil, err
	}

	var due string
	if err := x.decode("duedate", &due); err != nil {
		return nil, err
	}
	if due != "" {
		d, err := time.Parse(dateLayout, due)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid due date", goerr.V("key", x.Key), goerr.V("duedate", due))
		}
		raw.DueDate = &d
	}

	raw.Created = x.timestamp("created")
	raw.Updated = x.timestamp("updated")

	return raw, nil
}

// decode unmarshals a field into dst. Missing and null fields leave dst
// untouched.
func (x *issue) decode(name string, dst any) error {
	v, ok := x.Fields[name]
	if !ok || isNull(v) {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return goerr.Wrap(err, "failed to decode issue field", goerr.V("key", x.Key), goerr.V("field", name))
	}
	return nil
}

// number prefers primary and falls back to a numeric field. Non-numeric
// values are treated as absent.
func (x *issue) number(primary *float64, fallback string) model.OptionalFloat {
	if primary != nil {
		return model.Some(*primary)
	}
	v, ok := x.Fields[fallback]
	if !ok || isNull(v) {
		return model.OptionalFloat{}
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return model.OptionalFloat{}
	}
	return model.Some(f)
}

// description returns plain text for API v2. API v3 returns a document
// tree, which is not rendered.
func (x *issue) description() string {
	v, ok := x.Fields["description"]
	if !ok || isNull(v) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

func (x *issue) timestamp(name string) time.Time {
	var s string
	if err := x.decode(name, &s); err != nil || s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func isNull(v json.RawMessage) bool {
	return strings.TrimSpace(string(v)) == "null"
}
