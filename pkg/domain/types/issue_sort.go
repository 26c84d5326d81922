package types

import "github.com/m-mizutani/goerr/v2"

// IssueSortOrder selects how enriched issues are ordered
type IssueSortOrder string

const (
	IssueSortByAssignee      IssueSortOrder = "assignee"
	IssueSortByStatus        IssueSortOrder = "status"
	IssueSortByPriority      IssueSortOrder = "priority"
	IssueSortByDueDate       IssueSortOrder = "due_date"
	IssueSortByTimeRemaining IssueSortOrder = "time_remaining"
)

// AllIssueSortOrders returns all valid sort orders
func AllIssueSortOrders() []IssueSortOrder {
	return []IssueSortOrder{
		IssueSortByAssignee,
		IssueSortByStatus,
		IssueSortByPriority,
		IssueSortByDueDate,
		IssueSortByTimeRemaining,
	}
}

// ParseIssueSortOrder parses a query value. Empty selects IssueSortByAssignee.
func ParseIssueSortOrder(s string) (IssueSortOrder, error) {
	if s == "" {
		return IssueSortByAssignee, nil
	}
	for _, o := range AllIssueSortOrders() {
		if string(o) == s {
			return o, nil
		}
	}
	return "", goerr.New("invalid issue sort order", goerr.V("sort", s))
}
