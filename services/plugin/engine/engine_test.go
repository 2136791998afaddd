package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iulianpascalau/device-health-check/services/plugin/common"
	"github.com/iulianpascalau/device-health-check/services/plugin/compute"
	"github.com/iulianpascalau/device-health-check/services/plugin/config"
	"github.com/iulianpascalau/device-health-check/services/plugin/testsCommon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMockArgs() ArgsCheckEngine {
	return ArgsCheckEngine{
		Config: config.CommandConfig{
			Collect: config.CollectConfig{
				Endpoints: []config.EndpointConfig{{Name: "cpu", URL: "/api/cpu", Query: config.QueryWalk}},
			},
			Output: config.DefaultOutputConfig(),
		},
		Collector:      &testsCommon.CollectorStub{},
		Pipeline:       &testsCommon.PipelineStub{},
		Formatter:      &testsCommon.FormatterStub{},
		CollectTimeout: time.Second,
		ReportTimeout:  time.Second,
	}
}

func TestNewCheckEngine(t *testing.T) {
	t.Parallel()

	t.Run("nil collector should error", func(t *testing.T) {
		args := createMockArgs()
		args.Collector = nil
		engine, err := NewCheckEngine(args)

		assert.Nil(t, engine)
		assert.True(t, engine.IsInterfaceNil())
		assert.Contains(t, err.Error(), "nil collector")
	})
	t.Run("nil pipeline should error", func(t *testing.T) {
		args := createMockArgs()
		args.Pipeline = nil
		engine, err := NewCheckEngine(args)

		assert.Nil(t, engine)
		assert.Contains(t, err.Error(), "nil pipeline")
	})
	t.Run("nil formatter should error", func(t *testing.T) {
		args := createMockArgs()
		args.Formatter = nil
		engine, err := NewCheckEngine(args)

		assert.Nil(t, engine)
		assert.Contains(t, err.Error(), "nil formatter")
	})
	t.Run("invalid collect timeout should error", func(t *testing.T) {
		args := createMockArgs()
		args.CollectTimeout = 0
		engine, err := NewCheckEngine(args)

		assert.Nil(t, engine)
		assert.Contains(t, err.Error(), "invalid collect timeout")
	})
	t.Run("invalid report timeout should error", func(t *testing.T) {
		args := createMockArgs()
		args.Reporter = &testsCommon.ReporterStub{}
		args.ReportTimeout = 0
		engine, err := NewCheckEngine(args)

		assert.Nil(t, engine)
		assert.Contains(t, err.Error(), "invalid report timeout")
	})
	t.Run("nil reporter disables reporting", func(t *testing.T) {
		args := createMockArgs()
		var reporter *testsCommon.ReporterStub
		args.Reporter = reporter
		args.ReportTimeout = 0
		engine, err := NewCheckEngine(args)

		assert.Nil(t, err)
		assert.Nil(t, engine.reporter)
	})
	t.Run("should work", func(t *testing.T) {
		engine, err := NewCheckEngine(createMockArgs())

		assert.NotNil(t, engine)
		assert.False(t, engine.IsInterfaceNil())
		assert.Nil(t, err)
	})
}

func TestCheckEngine_Check(t *testing.T) {
	t.Parallel()

	t.Run("should chain the components", func(t *testing.T) {
		t.Parallel()

		collect := compute.NewCollect(compute.Namespace{Name: "cpu"})
		expected := &common.CheckResult{Status: common.StatusWarning, Collect: collect}
		reported := 0

		args := createMockArgs()
		args.Collector = &testsCommon.CollectorStub{
			CollectHandler: func(ctx context.Context, endpoints []config.EndpointConfig) (*compute.Collect, error) {
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline)
				assert.Equal(t, args.Config.Collect.Endpoints, endpoints)
				return collect, nil
			},
		}
		args.Pipeline = &testsCommon.PipelineStub{
			RunHandler: func(c *compute.Collect) (*common.CheckResult, error) {
				assert.Equal(t, collect, c)
				return expected, nil
			},
		}
		args.Formatter = &testsCommon.FormatterStub{
			FormatHandler: func(result *common.CheckResult) string {
				return "WARNING: 1#cpu: 55%"
			},
		}
		args.Reporter = &testsCommon.ReporterStub{
			ReportHandler: func(ctx context.Context, result *common.CheckResult, output string) error {
				reported++
				assert.Equal(t, expected, result)
				assert.Equal(t, "WARNING: 1#cpu: 55%", output)
				return errors.New("reporting errors are only logged")
			},
		}

		engine, err := NewCheckEngine(args)
		require.Nil(t, err)

		outcome := engine.Check(context.Background())
		assert.Equal(t, expected, outcome.Result)
		assert.Equal(t, "WARNING: 1#cpu: 55%", outcome.Output)
		assert.Equal(t, 1, reported)
	})
	t.Run("collection failure is unknown", func(t *testing.T) {
		t.Parallel()

		args := createMockArgs()
		args.Collector = &testsCommon.CollectorStub{
			CollectHandler: func(ctx context.Context, endpoints []config.EndpointConfig) (*compute.Collect, error) {
				return nil, errors.New("connection refused")
			},
		}
		args.Pipeline = &testsCommon.PipelineStub{
			RunHandler: func(c *compute.Collect) (*common.CheckResult, error) {
				assert.Fail(t, "should have not called the pipeline")
				return nil, nil
			},
		}

		engine, _ := NewCheckEngine(args)
		outcome := engine.Check(context.Background())

		assert.Equal(t, common.StatusUnknown, outcome.Result.Status)
		assert.Equal(t, []common.Diagnostic{{Metric: "collect", Message: "connection refused"}}, outcome.Result.Diagnostics)
		assert.Equal(t, config.DefaultOutputConfig(), outcome.Result.Output)
		assert.Equal(t, "UNKNOWN", outcome.Output)
	})
	t.Run("pipeline failure is unknown", func(t *testing.T) {
		t.Parallel()

		args := createMockArgs()
		args.Pipeline = &testsCommon.PipelineStub{
			RunHandler: func(c *compute.Collect) (*common.CheckResult, error) {
				return nil, nil
			},
		}

		engine, _ := NewCheckEngine(args)
		outcome := engine.Check(context.Background())

		assert.Equal(t, common.StatusUnknown, outcome.Result.Status)
		assert.Equal(t, "pipeline", outcome.Result.Diagnostics[0].Metric)
	})
	t.Run("process runs a check", func(t *testing.T) {
		t.Parallel()

		called := false
		args := createMockArgs()
		args.Pipeline = &testsCommon.PipelineStub{
			RunHandler: func(c *compute.Collect) (*common.CheckResult, error) {
				called = true
				return &common.CheckResult{}, nil
			},
		}

		engine, _ := NewCheckEngine(args)
		engine.Process(context.Background())
		assert.True(t, called)
	})
}
