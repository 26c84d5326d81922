package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

// Team is a roster entry. Members are embedded in the team document.
type Team struct {
	ID        types.TeamID `json:"id"`
	Name      string       `json:"name"`
	Location  string       `json:"location"`
	Members   []Member     `json:"members"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Member is a person on a team. ExternalAccountID links the member to the
// assignee id used by the work tracker.
type Member struct {
	ID                types.MemberID `json:"id"`
	Name              string         `json:"name"`
	Email             string         `json:"email"`
	Designation       string         `json:"designation"`
	ExternalAccountID string         `json:"externalAccountId"`
	Location          string         `json:"location,omitempty"`
}

// Validate checks identifiers and member uniqueness
func (t *Team) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid team ID")
	}
	if t.Name == "" {
		return goerr.New("team name is required", goerr.V("id", t.ID))
	}

	seen := make(map[types.MemberID]bool, len(t.Members))
	accounts := make(map[string]bool, len(t.Members))
	for _, m := range t.Members {
		if err := m.ID.Validate(); err != nil {
			return goerr.Wrap(err, "invalid member ID", goerr.V("team_id", t.ID))
		}
		if m.Name == "" {
			return goerr.New("member name is required", goerr.V("member_id", m.ID))
		}
		if seen[m.ID] {
			return goerr.New("duplicate member ID", goerr.V("member_id", m.ID))
		}
		seen[m.ID] = true

		if m.ExternalAccountID != "" {
			if accounts[m.ExternalAccountID] {
				return goerr.New("duplicate external account ID", goerr.V("account_id", m.ExternalAccountID))
			}
			accounts[m.ExternalAccountID] = true
		}
	}
	return nil
}

// FindMember returns the member with id, or nil.
func (t *Team) FindMember(id types.MemberID) *Member {
	for i := range t.Members {
		if t.Members[i].ID == id {
			return &t.Members[i]
		}
	}
	return nil
}

// MemberLocation returns the member's own location, falling back to the
// team location and then to fallback.
func (t *Team) MemberLocation(m *Member, fallback string) string {
	if m != nil && m.Location != "" {
		return m.Location
	}
	if t.Location != "" {
		return t.Location
	}
	return fallback
}
