package testsCommon

import (
	"context"

	"github.com/iulianpascalau/device-health-check/services/plugin/common"
)

// ReporterStub -
type ReporterStub struct {
	ReportHandler func(ctx context.Context, result *common.CheckResult, output string) error
}

// Report -
func (stub *ReporterStub) Report(ctx context.Context, result *common.CheckResult, output string) error {
	if stub.ReportHandler != nil {
		return stub.ReportHandler(ctx, result, output)
	}

	return nil
}

// IsInterfaceNil -
func (stub *ReporterStub) IsInterfaceNil() bool {
	return stub == nil
}
