package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/iulianpascalau/device-health-check/services/plugin/common"
	logger "github.com/multiversx/mx-chain-logger-go"
)

// APIKeyHeader is the header carrying the monitor service key
const APIKeyHeader = "X-Api-Key"

var log = logger.GetOrCreate("reporter")

// ArgsHTTPReporter is the DTO used to create a new HTTP reporter
type ArgsHTTPReporter struct {
	Endpoint  string
	APIKey    string
	CheckName string
	Host      string
	Timeout   time.Duration
}

type httpReporter struct {
	endpoint  string
	apiKey    string
	checkName string
	host      string
	client    *http.Client
	getTime   func() time.Time
}

// NewHTTPReporter creates a new reporter that pushes check results to the monitor service
func NewHTTPReporter(args ArgsHTTPReporter) (*httpReporter, error) {
	if len(args.Endpoint) == 0 {
		return nil, errors.New("empty report endpoint")
	}
	if len(args.CheckName) == 0 {
		return nil, errors.New("empty check name")
	}

	return &httpReporter{
		endpoint:  args.Endpoint,
		apiKey:    args.APIKey,
		checkName: args.CheckName,
		host:      args.Host,
		client: &http.Client{
			Timeout: args.Timeout,
		},
		getTime: time.Now,
	}, nil
}

// Report sends the check result along with its rendered output line
func (r *httpReporter) Report(ctx context.Context, result *common.CheckResult, output string) error {
	if result == nil {
		return errors.New("nil check result")
	}

	payload := common.ReportPayload{
		Check:       r.checkName,
		Host:        r.host,
		Status:      result.Status.String(),
		ExitCode:    result.Status.ExitCode(),
		Output:      output,
		Metrics:     reportableMetrics(result.Metrics),
		Diagnostics: result.Diagnostics,
		Timestamp:   r.getTime().Unix(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal report payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create report request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("network error sending report: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server rejected report with status code: %d", resp.StatusCode)
	}

	log.Debug("successfully sent check report", "endpoint", r.endpoint, "check", r.checkName,
		"status", payload.Status, "metrics_count", len(payload.Metrics))

	return nil
}

// reportableMetrics drops the values JSON can not carry: non-finite values remove the whole
// entry, non-finite bounds are cleared
func reportableMetrics(metrics []common.Perfdata) []common.Perfdata {
	out := make([]common.Perfdata, 0, len(metrics))
	for _, metric := range metrics {
		if !isFinite(metric.Value) {
			log.Debug("metric value can not be reported", "name", metric.Name, "value", metric.Value)
			continue
		}
		if metric.Min != nil && !isFinite(*metric.Min) {
			metric.Min = nil
		}
		if metric.Max != nil && !isFinite(*metric.Max) {
			metric.Max = nil
		}

		out = append(out, metric)
	}

	return out
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (r *httpReporter) IsInterfaceNil() bool {
	return r == nil
}
