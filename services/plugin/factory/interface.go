package factory

import (
	"context"

	"github.com/iulianpascalau/device-health-check/services/plugin/engine"
)

// Engine defines the plugin's operations
type Engine interface {
	Check(ctx context.Context) engine.Outcome
	Process(ctx context.Context)
	IsInterfaceNil() bool
}

// LateBinder defines the operations able to attach thresholds to metrics declaring a threshold suffix
type LateBinder interface {
	AddWarning(suffix string, text string)
	AddCritical(suffix string, text string)
}
