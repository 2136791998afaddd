package common

// Status is the outcome of a check, ordered by the monitoring-plugin exit code convention
type Status int

const (
	// StatusOk means every metric is inside its thresholds
	StatusOk Status = iota
	// StatusWarning means at least one metric raised its warning threshold
	StatusWarning
	// StatusCritical means at least one metric raised its critical threshold
	StatusCritical
	// StatusUnknown means at least one metric could not be evaluated
	StatusUnknown
)

// severity ranks the statuses when folding them, independently of their exit codes
var severity = map[Status]int{
	StatusOk:       0,
	StatusWarning:  1,
	StatusCritical: 2,
	StatusUnknown:  3,
}

// String returns the status label as printed by monitoring plugins
func (s Status) String() string {
	switch s {
	case StatusOk:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the process exit code tied to the status
func (s Status) ExitCode() int {
	switch s {
	case StatusOk:
		return 0
	case StatusWarning:
		return 1
	case StatusCritical:
		return 2
	default:
		return 3
	}
}

// IsWorseThan returns true if the status is strictly more severe than the other one
func (s Status) IsWorseThan(other Status) bool {
	return rank(s) > rank(other)
}

// Worst returns the more severe of the two statuses
func Worst(a Status, b Status) Status {
	if b.IsWorseThan(a) {
		return b
	}

	return a
}

// ParseStatus converts a status label back to its value
func ParseStatus(label string) (Status, bool) {
	for s := range severity {
		if s.String() == label {
			return s, true
		}
	}

	return StatusUnknown, false
}

func rank(s Status) int {
	r, found := severity[s]
	if !found {
		return severity[StatusUnknown]
	}

	return r
}
