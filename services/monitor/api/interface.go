package api

import (
	"context"

	"github.com/iulianpascalau/device-health-check/services/monitor/common"
)

// Storage defines the interface for persisting and querying check results
type Storage interface {
	// SaveReport updates the check definition and appends a new result, trimming the check history
	SaveReport(ctx context.Context, report common.CheckReport, recordedAt int64) error

	// GetLatestChecks returns the single latest result for every known check
	GetLatestChecks(ctx context.Context) ([]common.CheckHistory, error)

	// GetCheckHistory returns the definition and all retained results for a specific check
	GetCheckHistory(ctx context.Context, name string) (*common.CheckHistory, error)

	// DeleteCheck removes a check definition and all associated results
	DeleteCheck(ctx context.Context, name string) error

	// Close shuts down the database connection
	Close() error

	IsInterfaceNil() bool
}
