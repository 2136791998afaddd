package common

// PerfdataValue is one measurement reported by a check
type PerfdataValue struct {
	Name     string   `json:"name"`
	Value    float64  `json:"value"`
	Uom      string   `json:"uom,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Warning  string   `json:"warning,omitempty"`
	Critical string   `json:"critical,omitempty"`
	Status   int      `json:"status"`
}

// Diagnostic explains why a metric of a check could not be evaluated
type Diagnostic struct {
	Metric  string `json:"metric"`
	Message string `json:"message"`
}

// CheckReport is the payload received on /api/report
type CheckReport struct {
	Check       string          `json:"check"`
	Host        string          `json:"host"`
	Status      string          `json:"status"`
	ExitCode    int             `json:"exitCode"`
	Output      string          `json:"output"`
	Metrics     []PerfdataValue `json:"metrics"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty"`
	Timestamp   int64           `json:"timestamp"`
}

// CheckRecord is one stored result of a check
type CheckRecord struct {
	Status      string          `json:"status"`
	ExitCode    int             `json:"exitCode"`
	Output      string          `json:"output"`
	Metrics     []PerfdataValue `json:"metrics"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty"`
	RecordedAt  int64           `json:"recordedAt"`
}

// CheckHistory encapsulates a check definition and its retained results, oldest first
type CheckHistory struct {
	Name    string        `json:"name"`
	Host    string        `json:"host"`
	History []CheckRecord `json:"history"`
}
