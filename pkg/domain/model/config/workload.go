package config

import "strings"

// Priority is one row of the priority rank table. Lower rank sorts first.
type Priority struct {
	Name string
	Rank int
}

// Workload holds tracker presentation settings used when enriching and
// sorting issues.
type Workload struct {
	TrackerBaseURL string
	Priorities     []Priority
}

// DefaultPriorities mirrors the stock Jira priority scheme.
func DefaultPriorities() []Priority {
	return []Priority{
		{Name: "Highest", Rank: 1},
		{Name: "High", Rank: 2},
		{Name: "Medium", Rank: 3},
		{Name: "Low", Rank: 4},
		{Name: "Lowest", Rank: 5},
	}
}

// PriorityRank returns the rank of name (case-insensitive) and false when
// the priority is not in the table.
func (w Workload) PriorityRank(name string) (int, bool) {
	for _, p := range w.Priorities {
		if strings.EqualFold(p.Name, name) {
			return p.Rank, true
		}
	}
	return 0, false
}

// IssueURL builds the browse link of an issue key.
func (w Workload) IssueURL(key string) string {
	if w.TrackerBaseURL == "" || key == "" {
		return ""
	}
	return strings.TrimRight(w.TrackerBaseURL, "/") + "/browse/" + key
}
