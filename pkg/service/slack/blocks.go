package slack

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"github.com/slack-go/slack"
)

// maxSectionBytes keeps section text under the Block Kit limit of 3000 characters
const maxSectionBytes = 2900

func buildReportBlocks(team *model.Team, report *model.Report) ([]slack.Block, string) {
	period := fmt.Sprintf("%s to %s", report.Start.Format(model.DateLayout), report.End.Format(model.DateLayout))
	title := fmt.Sprintf("Capacity report: %s (%s)", team.Name, period)

	s := report.Summary
	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Issues*\n%d", s.TotalIssues), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Story points*\n%.2f", s.TotalStoryPoints), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Remaining*\n%.2fh", s.TotalTimeRemaining), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Available*\n%.2fh", s.TotalAvailableHours), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Capacity used*\n%.2f%%", s.TeamCapacityUsed), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Avg utilization*\n%.2f%%", s.AverageUtilization), false, false),
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, truncateToMaxBytes(title, 150), false, false)),
		slack.NewSectionBlock(nil, fields, nil),
	}

	if len(report.Risks) > 0 {
		var lines []string
		for _, r := range report.Risks {
			lines = append(lines, fmt.Sprintf("%s %s", severityEmoji(r.Severity), r.Message))
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes("*Risks*\n"+strings.Join(lines, "\n"), maxSectionBytes), false, false),
			nil, nil))
	}

	if report.Narrative != "" {
		blocks = append(blocks,
			slack.NewDividerBlock(),
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes(report.Narrative, maxSectionBytes), false, false),
				nil, nil))
	}

	if report.ArchiveURL != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("Archived at `%s`", report.ArchiveURL), false, false)))
	}

	return blocks, title
}

func severityEmoji(s types.Severity) string {
	switch s {
	case types.SeverityHigh:
		return ":red_circle:"
	case types.SeverityMedium:
		return ":large_orange_circle:"
	default:
		return ":white_circle:"
	}
}

// truncateToMaxBytes cuts s to at most n bytes without splitting a rune
func truncateToMaxBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - len("…")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
