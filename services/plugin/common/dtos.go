package common

import (
	"github.com/iulianpascalau/device-health-check/services/plugin/compute"
	"github.com/iulianpascalau/device-health-check/services/plugin/config"
)

// Perfdata is one named measurement produced by a metric or an aggregation
type Perfdata struct {
	Name     string   `json:"name"`
	Value    float64  `json:"value"`
	Uom      string   `json:"uom,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Warning  string   `json:"warning,omitempty"`
	Critical string   `json:"critical,omitempty"`
	Status   Status   `json:"status"`
}

// Diagnostic records why a metric could not be evaluated
type Diagnostic struct {
	Metric  string `json:"metric"`
	Message string `json:"message"`
}

// CheckResult is the output of one pipeline run
type CheckResult struct {
	Status      Status
	Collect     *compute.Collect
	Metrics     []Perfdata
	Diagnostics []Diagnostic
	Output      config.OutputConfig
}

// ReportPayload is the payload sent to the monitor service after a check
type ReportPayload struct {
	Check       string       `json:"check"`
	Host        string       `json:"host"`
	Status      string       `json:"status"`
	ExitCode    int          `json:"exitCode"`
	Output      string       `json:"output"`
	Metrics     []Perfdata   `json:"metrics"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Timestamp   int64        `json:"timestamp"`
}
