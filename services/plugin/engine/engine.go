package engine

import (
	"context"
	"errors"
	"time"

	"github.com/iulianpascalau/device-health-check/services/plugin/common"
	"github.com/iulianpascalau/device-health-check/services/plugin/config"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const (
	collectDiagnostic  = "collect"
	pipelineDiagnostic = "pipeline"
)

var log = logger.GetOrCreate("engine")

// ArgsCheckEngine is the DTO used to create a new check engine
type ArgsCheckEngine struct {
	Config         config.CommandConfig
	Collector      Collector
	Pipeline       Pipeline
	Formatter      Formatter
	Reporter       Reporter
	CollectTimeout time.Duration
	ReportTimeout  time.Duration
}

// Outcome is the result of one check, ready to be printed
type Outcome struct {
	Result *common.CheckResult
	Output string
}

// checkEngine chains collection, computation, rendering and the optional reporting
type checkEngine struct {
	config         config.CommandConfig
	collector      Collector
	pipeline       Pipeline
	formatter      Formatter
	reporter       Reporter
	collectTimeout time.Duration
	reportTimeout  time.Duration
}

// NewCheckEngine creates a new engine instance. The reporter is optional
func NewCheckEngine(args ArgsCheckEngine) (*checkEngine, error) {
	if check.IfNil(args.Collector) {
		return nil, errors.New("nil collector")
	}
	if check.IfNil(args.Pipeline) {
		return nil, errors.New("nil pipeline")
	}
	if check.IfNil(args.Formatter) {
		return nil, errors.New("nil formatter")
	}
	if args.CollectTimeout <= 0 {
		return nil, errors.New("invalid collect timeout")
	}

	reporter := args.Reporter
	if check.IfNil(reporter) {
		reporter = nil
	}
	if reporter != nil && args.ReportTimeout <= 0 {
		return nil, errors.New("invalid report timeout")
	}

	return &checkEngine{
		config:         args.Config,
		collector:      args.Collector,
		pipeline:       args.Pipeline,
		formatter:      args.Formatter,
		reporter:       reporter,
		collectTimeout: args.CollectTimeout,
		reportTimeout:  args.ReportTimeout,
	}, nil
}

// Check runs one full check. Collection and pipeline failures turn into an UNKNOWN outcome
func (e *checkEngine) Check(ctx context.Context) Outcome {
	log.Debug("starting check", "endpoints", len(e.config.Collect.Endpoints))

	collectCtx, cancelCollect := context.WithTimeout(ctx, e.collectTimeout)
	defer cancelCollect()

	result, err := e.compute(collectCtx)
	if err != nil {
		log.Warn("check could not be computed", "error", err)
	}

	outcome := Outcome{
		Result: result,
		Output: e.formatter.Format(result),
	}
	log.Debug("check finished", "status", result.Status.String(), "metrics", len(result.Metrics))

	e.report(ctx, outcome)

	return outcome
}

func (e *checkEngine) compute(ctx context.Context) (*common.CheckResult, error) {
	collect, err := e.collector.Collect(ctx, e.config.Collect.Endpoints)
	if err != nil {
		return e.unknownResult(collectDiagnostic, err), err
	}

	result, err := e.pipeline.Run(collect)
	if err == nil && result == nil {
		err = errors.New("nil check result")
	}
	if err != nil {
		return e.unknownResult(pipelineDiagnostic, err), err
	}

	return result, nil
}

func (e *checkEngine) unknownResult(stage string, err error) *common.CheckResult {
	return &common.CheckResult{
		Status: common.StatusUnknown,
		Diagnostics: []common.Diagnostic{
			{
				Metric:  stage,
				Message: err.Error(),
			},
		},
		Output: e.config.Output,
	}
}

func (e *checkEngine) report(ctx context.Context, outcome Outcome) {
	if e.reporter == nil {
		return
	}

	reportCtx, cancelReport := context.WithTimeout(ctx, e.reportTimeout)
	defer cancelReport()

	err := e.reporter.Report(reportCtx, outcome.Result, outcome.Output)
	if err != nil {
		log.Warn("failed to report the check result, it will be discarded", "error", err)
	}
}

// Process runs one check and logs its outcome, used when checks run periodically
func (e *checkEngine) Process(ctx context.Context) {
	outcome := e.Check(ctx)
	log.Info("check", "status", outcome.Result.Status.String(), "output", outcome.Output)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *checkEngine) IsInterfaceNil() bool {
	return e == nil
}
