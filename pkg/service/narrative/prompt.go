package narrative

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/model"
)

// RequiredSections are the headings every report narrative must contain
var RequiredSections = []string{"Summary", "Risks", "Recommendations"}

var ErrMissingSection = goerr.New("narrative is missing a required section")

const defaultSystemPrompt = `You are an engineering operations analyst. You write concise weekly capacity reports for engineering managers.
Use only the figures you are given. Do not invent members, issues or numbers.
Write in markdown.`

// BuildPrompt renders team analytics into the narrative request
func BuildPrompt(team *model.Team, analytics *model.TeamAnalytics) string {
	var b strings.Builder

	c := analytics.Capacity
	fmt.Fprintf(&b, "Team: %s (%s)\n", team.Name, team.ID)
	if c != nil {
		fmt.Fprintf(&b, "Period: %s to %s\n", c.Start.Format(model.DateLayout), c.End.Format(model.DateLayout))
	}
	b.WriteString("\n")

	s := analytics.Summary
	b.WriteString("Team summary:\n")
	fmt.Fprintf(&b, "- issues: %d, story points: %.2f\n", s.TotalIssues, s.TotalStoryPoints)
	fmt.Fprintf(&b, "- estimate: %.2fh, spent: %.2fh, remaining: %.2fh\n", s.TotalOriginalEstimate, s.TotalTimeSpent, s.TotalTimeRemaining)
	fmt.Fprintf(&b, "- available: %.2fh, PTO: %.2fh\n", s.TotalAvailableHours, s.TotalPTOHours)
	fmt.Fprintf(&b, "- average utilization: %.2f%%, team capacity used: %.2f%%\n", s.AverageUtilization, s.TeamCapacityUsed)
	fmt.Fprintf(&b, "- burn rate: %.2f points/hour over %d completed issues\n", analytics.BurnRate.Rate, analytics.BurnRate.CompletedIssues)
	b.WriteString("\n")

	if c != nil && len(c.Members) > 0 {
		b.WriteString("Members:\n")
		for _, m := range c.Members {
			fmt.Fprintf(&b, "- %s: available %.2fh, remaining %.2fh, utilization %.2f%% (%s)\n",
				m.Name, m.AvailableHours, m.TimeRemaining, m.UtilizationPercentage, m.Status)
		}
		b.WriteString("\n")
	}

	sb := analytics.StatusBreakdown
	fmt.Fprintf(&b, "Status: to-do %d, open %d, in progress %d, blocked %d, done %d, other %d\n\n",
		sb.ToDo, sb.Open, sb.InProgress, sb.Blocked, sb.Done, sb.Other)

	if len(analytics.Bottlenecks) > 0 {
		b.WriteString("Bottlenecks:\n")
		for _, x := range analytics.Bottlenecks {
			fmt.Fprintf(&b, "- %s: %s (%s, %.2f%%)\n", x.Name, x.Issue, x.Severity, x.Utilization)
		}
		b.WriteString("\n")
	}

	if len(analytics.Risks) > 0 {
		b.WriteString("Risks:\n")
		for _, r := range analytics.Risks {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", r.Severity, r.Type, r.Message)
		}
		b.WriteString("\n")
	}

	if len(analytics.Suggestions) > 0 {
		b.WriteString("Reallocation suggestions:\n")
		for _, x := range analytics.Suggestions {
			fmt.Fprintf(&b, "- [%s] %s\n", x.Severity, x.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString("Write the report with exactly these markdown headings, in order: ")
	for i, s := range RequiredSections {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("## " + s)
	}
	b.WriteString(".\n")

	return b.String()
}

// RequireSections returns a validator that accepts a text only when each
// section appears as a markdown heading (case-insensitive)
func RequireSections(sections ...string) func(string) error {
	return func(text string) error {
		headings := make(map[string]bool)
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "#") {
				continue
			}
			h := strings.TrimSpace(strings.TrimLeft(line, "#"))
			h = strings.Trim(h, "*: ")
			headings[strings.ToLower(h)] = true
		}

		var missing []string
		for _, s := range sections {
			if !headings[strings.ToLower(s)] {
				missing = append(missing, s)
			}
		}
		if len(missing) > 0 {
			return goerr.Wrap(ErrMissingSection, "sections missing", goerr.V("missing", missing))
		}
		return nil
	}
}

// Fallback builds a plain narrative when no generator is configured
func Fallback(team *model.Team, analytics *model.TeamAnalytics) string {
	var b strings.Builder
	s := analytics.Summary

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "%s has %d issues with %.2fh remaining against %.2fh available (%.2f%% of capacity).\n\n",
		team.Name, s.TotalIssues, s.TotalTimeRemaining, s.TotalAvailableHours, s.TeamCapacityUsed)

	b.WriteString("## Risks\n")
	if len(analytics.Risks) == 0 {
		b.WriteString("- none\n")
	}
	for _, r := range analytics.Risks {
		fmt.Fprintf(&b, "- [%s] %s\n", r.Severity, r.Message)
	}
	b.WriteString("\n## Recommendations\n")
	if len(analytics.Suggestions) == 0 {
		b.WriteString("- none\n")
	}
	for _, x := range analytics.Suggestions {
		fmt.Fprintf(&b, "- %s\n", x.Message)
	}
	return b.String()
}
