package engine

import (
	"context"

	"github.com/iulianpascalau/device-health-check/services/plugin/common"
	"github.com/iulianpascalau/device-health-check/services/plugin/compute"
	"github.com/iulianpascalau/device-health-check/services/plugin/config"
)

// Collector defines the interface for reading the device values
type Collector interface {
	// Collect fetches all endpoints and returns the collect sequence the metrics are evaluated against.
	// Endpoints that fail are omitted, an error is returned only when nothing could be collected.
	Collect(ctx context.Context, endpoints []config.EndpointConfig) (*compute.Collect, error)

	IsInterfaceNil() bool
}

// Pipeline defines the interface for computing metrics out of the collected values
type Pipeline interface {
	Run(collect *compute.Collect) (*common.CheckResult, error)
	IsInterfaceNil() bool
}

// Formatter defines the interface for rendering a check result
type Formatter interface {
	Format(result *common.CheckResult) string
	IsInterfaceNil() bool
}

// Reporter defines the interface for pushing check results to the monitor service
type Reporter interface {
	// Report sends the check result. Reporting failures are logged and the result is not resent.
	Report(ctx context.Context, result *common.CheckResult, output string) error

	IsInterfaceNil() bool
}
