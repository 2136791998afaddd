package testsCommon

import (
	"github.com/iulianpascalau/device-health-check/services/plugin/common"
	"github.com/iulianpascalau/device-health-check/services/plugin/compute"
)

// PipelineStub -
type PipelineStub struct {
	RunHandler func(collect *compute.Collect) (*common.CheckResult, error)
}

// Run -
func (stub *PipelineStub) Run(collect *compute.Collect) (*common.CheckResult, error) {
	if stub.RunHandler != nil {
		return stub.RunHandler(collect)
	}

	return &common.CheckResult{
		Status:  common.StatusOk,
		Collect: collect,
	}, nil
}

// IsInterfaceNil -
func (stub *PipelineStub) IsInterfaceNil() bool {
	return stub == nil
}
