package testsCommon

import (
	"context"

	"github.com/iulianpascalau/device-health-check/services/plugin/compute"
	"github.com/iulianpascalau/device-health-check/services/plugin/config"
)

// CollectorStub -
type CollectorStub struct {
	CollectHandler func(ctx context.Context, endpoints []config.EndpointConfig) (*compute.Collect, error)
}

// Collect -
func (stub *CollectorStub) Collect(ctx context.Context, endpoints []config.EndpointConfig) (*compute.Collect, error) {
	if stub.CollectHandler != nil {
		return stub.CollectHandler(ctx, endpoints)
	}

	return compute.NewCollect(), nil
}

// IsInterfaceNil -
func (stub *CollectorStub) IsInterfaceNil() bool {
	return stub == nil
}
