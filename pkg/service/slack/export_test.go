package slack

var (
	TruncateToMaxBytes = truncateToMaxBytes
	BuildReportBlocks  = buildReportBlocks
)
