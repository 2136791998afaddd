package testsCommon

import (
	"context"

	"github.com/iulianpascalau/device-health-check/services/monitor/common"
)

// StoreStub -
type StoreStub struct {
	SaveReportHandler      func(ctx context.Context, report common.CheckReport, recordedAt int64) error
	GetLatestChecksHandler func(ctx context.Context) ([]common.CheckHistory, error)
	GetCheckHistoryHandler func(ctx context.Context, name string) (*common.CheckHistory, error)
	DeleteCheckHandler     func(ctx context.Context, name string) error
	CloseHandler           func() error
}

// SaveReport -
func (stub *StoreStub) SaveReport(ctx context.Context, report common.CheckReport, recordedAt int64) error {
	if stub.SaveReportHandler != nil {
		return stub.SaveReportHandler(ctx, report, recordedAt)
	}

	return nil
}

// GetLatestChecks -
func (stub *StoreStub) GetLatestChecks(ctx context.Context) ([]common.CheckHistory, error) {
	if stub.GetLatestChecksHandler != nil {
		return stub.GetLatestChecksHandler(ctx)
	}

	return make([]common.CheckHistory, 0), nil
}

// GetCheckHistory -
func (stub *StoreStub) GetCheckHistory(ctx context.Context, name string) (*common.CheckHistory, error) {
	if stub.GetCheckHistoryHandler != nil {
		return stub.GetCheckHistoryHandler(ctx, name)
	}

	return &common.CheckHistory{}, nil
}

// DeleteCheck -
func (stub *StoreStub) DeleteCheck(ctx context.Context, name string) error {
	if stub.DeleteCheckHandler != nil {
		return stub.DeleteCheckHandler(ctx, name)
	}

	return nil
}

// Close -
func (stub *StoreStub) Close() error {
	if stub.CloseHandler != nil {
		return stub.CloseHandler()
	}

	return nil
}

// IsInterfaceNil -
func (stub *StoreStub) IsInterfaceNil() bool {
	return stub == nil
}
