package usecase

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

const (
	overallocatedThreshold = 100.0
	nearCapacityThreshold  = 90.0
	underutilizedThreshold = 50.0

	reallocationSourceThreshold = 90.0
	reallocationTargetThreshold = 60.0

	blockedHighThreshold   = 20.0
	blockedMediumThreshold = 10.0
	imbalanceThreshold     = 50.0
)

// IdentifyBottlenecks flags members above 100% (high), above 90% (medium)
// and below 50% (low) utilization, in input order.
func IdentifyBottlenecks(members []*model.MemberCapacity) []model.Bottleneck {
	bottlenecks := []model.Bottleneck{}
	for _, m := range members {
		b := model.Bottleneck{
			MemberID:    m.MemberID,
			Name:        m.Name,
			Utilization: m.UtilizationPercentage,
		}

		switch u := m.UtilizationPercentage; {
		case u > overallocatedThreshold:
			excess := model.Round2(m.TimeRemaining - m.AvailableHours)
			b.Issue = model.BottleneckOverallocated
			b.Severity = types.SeverityHigh
			b.ExcessHours = &excess
		case u > nearCapacityThreshold:
			b.Issue = model.BottleneckNearCapacity
			b.Severity = types.SeverityMedium
		case u < underutilizedThreshold:
			bandwidth := m.RemainingBandwidth
			b.Issue = model.BottleneckUnderutilized
			b.Severity = types.SeverityLow
			b.AvailableBandwidth = &bandwidth
		default:
			continue
		}
		bottlenecks = append(bottlenecks, b)
	}
	return bottlenecks
}

// SuggestReallocation proposes moving work from members above 90% to
// members below 60% with spare bandwidth. It returns a resource shortage
// when nobody can take work, and nothing when nobody needs relief.
func SuggestReallocation(members []*model.MemberCapacity) []model.Suggestion {
	var overloaded, underutilized []*model.MemberCapacity
	for _, m := range members {
		switch {
		case m.UtilizationPercentage > reallocationSourceThreshold:
			overloaded = append(overloaded, m)
		case m.UtilizationPercentage < reallocationTargetThreshold && m.RemainingBandwidth > 0:
			underutilized = append(underutilized, m)
		}
	}

	var excess, spare float64
	for _, m := range overloaded {
		excess += max(0, m.TimeRemaining-m.AvailableHours)
	}
	for _, m := range underutilized {
		spare += m.RemainingBandwidth
	}
	excess, spare = model.Round2(excess), model.Round2(spare)

	suggestions := []model.Suggestion{}
	switch {
	case len(overloaded) > 0 && len(underutilized) > 0:
		s := model.Suggestion{
			Type:           model.SuggestionReallocation,
			From:           memberNames(overloaded),
			To:             memberNames(underutilized),
			ExcessHours:    excess,
			AvailableHours: spare,
		}
		if spare >= excess {
			s.Feasibility = model.FeasibilityPossible
			s.Severity = types.SeverityMedium
			s.Message = fmt.Sprintf("Move %.2f hours of work from %s to %s",
				excess, strings.Join(s.From, ", "), strings.Join(s.To, ", "))
		} else {
			s.Feasibility = model.FeasibilityPartial
			s.Severity = types.SeverityHigh
			s.Message = fmt.Sprintf("%s can absorb %.2f of the %.2f excess hours of %s",
				strings.Join(s.To, ", "), spare, excess, strings.Join(s.From, ", "))
		}
		suggestions = append(suggestions, s)

	case len(overloaded) > 0:
		suggestions = append(suggestions, model.Suggestion{
			Type:        model.SuggestionResourceShortage,
			Severity:    types.SeverityHigh,
			From:        memberNames(overloaded),
			To:          []string{},
			ExcessHours: excess,
			Message: fmt.Sprintf("No member has spare capacity for the %.2f excess hours of %s",
				excess, strings.Join(memberNames(overloaded), ", ")),
		})
	}
	return suggestions
}

// CalculateRiskAssessment runs the overallocation, blocked work and
// workload balance checks. Every check that fires adds a risk.
func CalculateRiskAssessment(members []*model.MemberCapacity, breakdown model.StatusBreakdown) []model.Risk {
	risks := []model.Risk{}

	var over []string
	for _, m := range members {
		if m.UtilizationPercentage > overallocatedThreshold {
			over = append(over, m.Name)
		}
	}
	if len(over) > 0 {
		risks = append(risks, model.Risk{
			Type:     model.RiskOverallocation,
			Severity: types.SeverityHigh,
			Message:  fmt.Sprintf("%d member(s) over capacity: %s", len(over), strings.Join(over, ", ")),
		})
	}

	blocked := breakdown.BlockedPercentage()
	var blockedSeverity types.Severity
	switch {
	case blocked > blockedHighThreshold:
		blockedSeverity = types.SeverityHigh
	case blocked > blockedMediumThreshold:
		blockedSeverity = types.SeverityMedium
	}
	if blockedSeverity != "" {
		risks = append(risks, model.Risk{
			Type:     model.RiskBlockedIssues,
			Severity: blockedSeverity,
			Message:  fmt.Sprintf("%.2f%% of active issues are blocked", blocked),
		})
	}

	if len(members) > 0 {
		lo, hi := members[0].UtilizationPercentage, members[0].UtilizationPercentage
		for _, m := range members[1:] {
			lo = min(lo, m.UtilizationPercentage)
			hi = max(hi, m.UtilizationPercentage)
		}
		if spread := model.Round2(hi - lo); spread > imbalanceThreshold {
			risks = append(risks, model.Risk{
				Type:     model.RiskUnbalancedWorkload,
				Severity: types.SeverityMedium,
				Message:  fmt.Sprintf("Utilization spread of %.2f points between members", spread),
			})
		}
	}

	return risks
}

// CalculateTeamSummary sums work across items and hours across members
func CalculateTeamSummary(items []*model.WorkItem, members []*model.MemberCapacity) model.TeamSummary {
	s := model.TeamSummary{TotalIssues: len(items)}

	for _, item := range items {
		s.TotalStoryPoints += item.StoryPoints
		s.TotalOriginalEstimate += item.OriginalEstimateHours
		s.TotalTimeSpent += item.TimeSpentHours
		s.TotalTimeRemaining += model.RemainingHours(item.OriginalEstimateHours, item.TimeSpentHours)
	}

	var utilization float64
	for _, m := range members {
		s.TotalWorkingHours += m.WorkingHours
		s.TotalAvailableHours += m.AvailableHours
		s.TotalPTOHours += m.PTOHours
		utilization += m.UtilizationPercentage
	}

	s.TotalStoryPoints = model.Round2(s.TotalStoryPoints)
	s.TotalOriginalEstimate = model.Round2(s.TotalOriginalEstimate)
	s.TotalTimeSpent = model.Round2(s.TotalTimeSpent)
	s.TotalTimeRemaining = model.Round2(s.TotalTimeRemaining)
	s.TotalWorkingHours = model.Round2(s.TotalWorkingHours)
	s.TotalAvailableHours = model.Round2(s.TotalAvailableHours)
	s.TotalPTOHours = model.Round2(s.TotalPTOHours)

	if len(members) > 0 {
		s.AverageUtilization = model.Round2(utilization / float64(len(members)))
	}
	if s.TotalAvailableHours > 0 {
		s.TeamCapacityUsed = model.Round2(s.TotalTimeRemaining / s.TotalAvailableHours * 100)
	}
	return s
}

// BuildStatusBreakdown counts items per normalized status
func BuildStatusBreakdown(items []*model.WorkItem) model.StatusBreakdown {
	var b model.StatusBreakdown
	for _, item := range items {
		b.Add(item.StatusCategory)
	}
	return b
}

func memberNames(members []*model.MemberCapacity) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
		if names[i] == "" {
			names[i] = m.MemberID.String()
		}
	}
	return names
}
