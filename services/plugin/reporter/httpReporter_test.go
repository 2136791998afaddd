package reporter

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iulianpascalau/device-health-check/services/plugin/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createArgs(endpoint string) ArgsHTTPReporter {
	return ArgsHTTPReporter{
		Endpoint:  endpoint,
		APIKey:    "secret123",
		CheckName: "router1.cpu",
		Host:      "router1",
		Timeout:   2 * time.Second,
	}
}

func TestNewHTTPReporter(t *testing.T) {
	t.Parallel()

	t.Run("empty endpoint should error", func(t *testing.T) {
		t.Parallel()

		r, err := NewHTTPReporter(createArgs(""))
		assert.Nil(t, r)
		assert.Equal(t, "empty report endpoint", err.Error())
	})
	t.Run("empty check name should error", func(t *testing.T) {
		t.Parallel()

		args := createArgs("http://localhost")
		args.CheckName = ""
		r, err := NewHTTPReporter(args)
		assert.Nil(t, r)
		assert.Equal(t, "empty check name", err.Error())
	})
	t.Run("should work", func(t *testing.T) {
		t.Parallel()

		r, err := NewHTTPReporter(createArgs("http://localhost"))
		assert.Nil(t, err)
		assert.False(t, r.IsInterfaceNil())
	})
}

func TestHTTPReporter_Report(t *testing.T) {
	t.Parallel()

	var receivedPayload common.ReportPayload
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		receivedAuth = r.Header.Get(APIKeyHeader)
		err := json.NewDecoder(r.Body).Decode(&receivedPayload)
		assert.Nil(t, err)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r, err := NewHTTPReporter(createArgs(server.URL))
	require.Nil(t, err)
	r.getTime = func() time.Time {
		return time.Unix(1700000000, 0)
	}

	result := &common.CheckResult{
		Status: common.StatusWarning,
		Metrics: []common.Perfdata{
			{Name: "0#cpu", Value: 55, Uom: "%", Warning: "50", Status: common.StatusWarning},
		},
		Diagnostics: []common.Diagnostic{{Metric: "mem", Message: "unknown metric"}},
	}

	err = r.Report(context.Background(), result, "WARNING: 0#cpu: 55%")
	require.Nil(t, err)

	assert.Equal(t, "secret123", receivedAuth)
	assert.Equal(t, common.ReportPayload{
		Check:       "router1.cpu",
		Host:        "router1",
		Status:      "WARNING",
		ExitCode:    1,
		Output:      "WARNING: 0#cpu: 55%",
		Metrics:     result.Metrics,
		Diagnostics: result.Diagnostics,
		Timestamp:   1700000000,
	}, receivedPayload)
}

func TestHTTPReporter_ReportErrors(t *testing.T) {
	t.Parallel()

	t.Run("nil result", func(t *testing.T) {
		t.Parallel()

		r, _ := NewHTTPReporter(createArgs("http://localhost"))
		err := r.Report(context.Background(), nil, "")
		assert.NotNil(t, err)
	})
	t.Run("server rejects the report", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		r, _ := NewHTTPReporter(createArgs(server.URL))
		err := r.Report(context.Background(), &common.CheckResult{}, "")
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "status code: 401")
	})
	t.Run("network error", func(t *testing.T) {
		t.Parallel()

		r, _ := NewHTTPReporter(createArgs("http://localhost:59999"))
		err := r.Report(context.Background(), &common.CheckResult{}, "")
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "network error sending report")
	})
}

func TestReportableMetrics(t *testing.T) {
	t.Parallel()

	bound := 10.0
	inf := math.Inf(1)
	metrics := []common.Perfdata{
		{Name: "nan", Value: math.NaN()},
		{Name: "inf", Value: math.Inf(-1)},
		{Name: "bounds", Value: 5, Min: &bound, Max: &inf},
	}

	out := reportableMetrics(metrics)
	require.Len(t, out, 1)
	assert.Equal(t, "bounds", out[0].Name)
	assert.Equal(t, &bound, out[0].Min)
	assert.Nil(t, out[0].Max)
	assert.Equal(t, &inf, metrics[2].Max, "the input entries are not modified")

	_, err := json.Marshal(out)
	assert.Nil(t, err)
}
