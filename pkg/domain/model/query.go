package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

// SavedQuery is the tracker query that selects a team's work items. The
// query string is opaque to this service.
type SavedQuery struct {
	TeamID    types.TeamID `json:"teamId"`
	Name      string       `json:"name"`
	JQL       string       `json:"jql"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (q *SavedQuery) Validate() error {
	if err := q.TeamID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid query team")
	}
	if q.JQL == "" {
		return goerr.New("query string is required", goerr.V("team_id", q.TeamID))
	}
	return nil
}
