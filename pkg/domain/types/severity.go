package types

// Severity of a bottleneck, risk or reallocation suggestion
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

func (s Severity) String() string {
	return string(s)
}
