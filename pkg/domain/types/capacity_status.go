package types

// CapacityStatus classifies a member by utilization percentage
type CapacityStatus string

const (
	CapacityStatusAvailable  CapacityStatus = "available"
	CapacityStatusAtLimit    CapacityStatus = "at-limit"
	CapacityStatusOverloaded CapacityStatus = "overloaded"
)

const (
	atLimitThreshold    = 80.0
	overloadedThreshold = 100.0
)

// ClassifyUtilization returns overloaded above 100%, at-limit above 80%,
// and available otherwise.
func ClassifyUtilization(utilization float64) CapacityStatus {
	switch {
	case utilization > overloadedThreshold:
		return CapacityStatusOverloaded
	case utilization > atLimitThreshold:
		return CapacityStatusAtLimit
	default:
		return CapacityStatusAvailable
	}
}

// IsValid checks if the capacity status is valid
func (s CapacityStatus) IsValid() bool {
	switch s {
	case CapacityStatusAvailable, CapacityStatusAtLimit, CapacityStatusOverloaded:
		return true
	default:
		return false
	}
}

func (s CapacityStatus) String() string {
	return string(s)
}
