package usecase

import (
	"cmp"
	"slices"
	"strings"

	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/model/config"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

// AggregateByAssignee groups items by assignee and sums their figures.
// Remaining hours are clamped per item before summation. Buckets whose
// account matches a member's ExternalAccountID take the member's name and
// email; the others keep the tracker's display name.
func AggregateByAssignee(items []*model.WorkItem, members []model.Member) map[types.AssigneeKey]*model.AssigneeBucket {
	directory := make(map[string]*model.Member, len(members))
	for i := range members {
		if members[i].ExternalAccountID != "" {
			directory[members[i].ExternalAccountID] = &members[i]
		}
	}

	buckets := make(map[types.AssigneeKey]*model.AssigneeBucket)
	for _, item := range items {
		key := item.AssigneeKey()
		b, ok := buckets[key]
		if !ok {
			b = newBucket(key, item, directory)
			buckets[key] = b
		}

		b.IssueCount++
		b.StoryPoints = model.Round2(b.StoryPoints + item.StoryPoints)
		b.TimeSpent = model.Round2(b.TimeSpent + item.TimeSpentHours)
		b.OriginalEstimate = model.Round2(b.OriginalEstimate + item.OriginalEstimateHours)
		b.TimeRemaining = model.Round2(b.TimeRemaining + model.RemainingHours(item.OriginalEstimateHours, item.TimeSpentHours))
		b.Items = append(b.Items, item)
	}
	return buckets
}

func newBucket(key types.AssigneeKey, item *model.WorkItem, directory map[string]*model.Member) *model.AssigneeBucket {
	b := &model.AssigneeBucket{Key: key}
	if !key.IsAssigned() {
		b.DisplayName = key.String()
		return b
	}

	if m, ok := directory[key.AccountID()]; ok {
		b.MemberID = m.ID
		b.DisplayName = m.Name
		b.Email = m.Email
		return b
	}

	b.DisplayName = item.Assignee.DisplayName
	b.Email = item.Assignee.Email
	return b
}

// SortedBuckets orders buckets by display name with the unassigned bucket
// last
func SortedBuckets(buckets map[types.AssigneeKey]*model.AssigneeBucket) []*model.AssigneeBucket {
	out := make([]*model.AssigneeBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *model.AssigneeBucket) int {
		if a.Key.IsAssigned() != b.Key.IsAssigned() {
			if a.Key.IsAssigned() {
				return -1
			}
			return 1
		}
		return cmp.Or(
			strings.Compare(a.DisplayName, b.DisplayName),
			strings.Compare(a.Key.AccountID(), b.Key.AccountID()),
		)
	})
	return out
}

// EnrichIssue adds percent complete, the browse URL and assignee details.
// member may be nil.
func EnrichIssue(item *model.WorkItem, member *model.Member, cfg config.Workload) *model.EnrichedIssue {
	issue := &model.EnrichedIssue{
		WorkItem: item,
		URL:      cfg.IssueURL(item.Key),
	}
	if item.OriginalEstimateHours > 0 {
		issue.PercentComplete = model.RoundInt(item.TimeSpentHours / item.OriginalEstimateHours * 100)
	}

	switch {
	case member != nil:
		issue.MemberID = member.ID
		issue.AssigneeName = member.Name
		issue.AssigneeEmail = member.Email
	case item.Assignee != nil:
		issue.AssigneeName = item.Assignee.DisplayName
		issue.AssigneeEmail = item.Assignee.Email
	default:
		issue.AssigneeName = types.Unassigned().String()
	}
	return issue
}

// EnrichIssues enriches every item, resolving members by ExternalAccountID
func EnrichIssues(items []*model.WorkItem, members []model.Member, cfg config.Workload) []*model.EnrichedIssue {
	directory := make(map[string]*model.Member, len(members))
	for i := range members {
		if members[i].ExternalAccountID != "" {
			directory[members[i].ExternalAccountID] = &members[i]
		}
	}

	issues := make([]*model.EnrichedIssue, 0, len(items))
	for _, item := range items {
		var member *model.Member
		if item.Assignee != nil {
			member = directory[item.Assignee.ID]
		}
		issues = append(issues, EnrichIssue(item, member, cfg))
	}
	return issues
}

// SortIssues sorts issues in place. The sort is stable so equal keys keep
// tracker order.
func SortIssues(issues []*model.EnrichedIssue, order types.IssueSortOrder, cfg config.Workload) {
	var compare func(a, b *model.EnrichedIssue) int

	switch order {
	case types.IssueSortByStatus:
		compare = func(a, b *model.EnrichedIssue) int {
			return strings.Compare(a.Status, b.Status)
		}

	case types.IssueSortByPriority:
		rank := func(i *model.EnrichedIssue) (int, bool) {
			return cfg.PriorityRank(i.Priority)
		}
		compare = func(a, b *model.EnrichedIssue) int {
			ra, oka := rank(a)
			rb, okb := rank(b)
			switch {
			case oka && okb:
				return cmp.Compare(ra, rb)
			case oka:
				return -1
			case okb:
				return 1
			default:
				return 0
			}
		}

	case types.IssueSortByDueDate:
		compare = func(a, b *model.EnrichedIssue) int {
			switch {
			case a.DueDate != nil && b.DueDate != nil:
				return a.DueDate.Compare(*b.DueDate)
			case a.DueDate != nil:
				return -1
			case b.DueDate != nil:
				return 1
			default:
				return 0
			}
		}

	case types.IssueSortByTimeRemaining:
		compare = func(a, b *model.EnrichedIssue) int {
			return cmp.Compare(b.TimeRemainingHours, a.TimeRemainingHours)
		}

	default:
		compare = func(a, b *model.EnrichedIssue) int {
			return cmp.Or(
				strings.Compare(a.AssigneeName, b.AssigneeName),
				strings.Compare(a.Status, b.Status),
			)
		}
	}

	slices.SortStableFunc(issues, compare)
}
