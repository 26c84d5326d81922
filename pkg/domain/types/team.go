package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// TeamID represents a unique identifier for a team
type TeamID string

// Validate checks if the TeamID is valid
func (t TeamID) Validate() error {
	if t == "" {
		return goerr.New("team ID cannot be empty")
	}
	if !idPattern.MatchString(string(t)) {
		return goerr.New("team ID must be lowercase alphanumeric with hyphens", goerr.V("id", t))
	}
	return nil
}

// String returns the string representation of TeamID
func (t TeamID) String() string {
	return string(t)
}

// MemberID identifies a team member inside the roster. It is independent of
// the account id used by the work tracker.
type MemberID string

// Validate checks if the MemberID is valid
func (m MemberID) Validate() error {
	if m == "" {
		return goerr.New("member ID cannot be empty")
	}
	if !idPattern.MatchString(string(m)) {
		return goerr.New("member ID must be lowercase alphanumeric with hyphens", goerr.V("id", m))
	}
	return nil
}

func (m MemberID) String() string {
	return string(m)
}
