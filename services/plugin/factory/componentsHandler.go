package factory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iulianpascalau/device-health-check/commonGo"
	"github.com/iulianpascalau/device-health-check/services/plugin/collector"
	"github.com/iulianpascalau/device-health-check/services/plugin/config"
	pluginEngine "github.com/iulianpascalau/device-health-check/services/plugin/engine"
	"github.com/iulianpascalau/device-health-check/services/plugin/output"
	"github.com/iulianpascalau/device-health-check/services/plugin/pipeline"
	"github.com/iulianpascalau/device-health-check/services/plugin/reporter"
)

const (
	defaultCollectTimeout = 10 * time.Second
	defaultReportTimeout  = 10 * time.Second
)

// ArgsComponentsHandler is the DTO used to create a new components handler
type ArgsComponentsHandler struct {
	Config            config.CommandConfig
	BaseURL           string
	Host              string
	FilterIn          []string
	FilterOut         []string
	Strict            bool
	Warnings          map[string]string
	Criticals         map[string]string
	CheckName         string
	ReportEndpoint    string
	ReportAPIKey      string
	IntervalInSeconds uint32
}

type componentsHandler struct {
	collector pluginEngine.Collector
	pipeline  pluginEngine.Pipeline
	formatter pluginEngine.Formatter
	reporter  pluginEngine.Reporter
	engine    Engine
	mutCancel sync.Mutex
	cancel    func()
	interval  time.Duration
}

// NewComponentsHandler creates a new components handler
func NewComponentsHandler(args ArgsComponentsHandler) (*componentsHandler, error) {
	collectTimeout := defaultCollectTimeout
	if args.Config.Collect.TimeoutInSeconds > 0 {
		collectTimeout = time.Duration(args.Config.Collect.TimeoutInSeconds) * time.Second
	}

	coll := collector.NewHTTPCollector(args.BaseURL, collectTimeout)

	pipe, err := pipeline.NewPipeline(pipeline.ArgsPipeline{
		Compute:   args.Config.Compute,
		Output:    args.Config.Output,
		FilterIn:  args.FilterIn,
		FilterOut: args.FilterOut,
		Strict:    args.Strict,
	})
	if err != nil {
		return nil, err
	}
	bindThresholds(pipe, args.Warnings, args.Criticals)

	handler := &componentsHandler{
		collector: coll,
		pipeline:  pipe,
		formatter: output.NewFormatter(),
		interval:  time.Duration(args.IntervalInSeconds) * time.Second,
	}

	if len(args.ReportEndpoint) > 0 {
		handler.reporter, err = reporter.NewHTTPReporter(reporter.ArgsHTTPReporter{
			Endpoint:  args.ReportEndpoint,
			APIKey:    args.ReportAPIKey,
			CheckName: args.CheckName,
			Host:      args.Host,
			Timeout:   defaultReportTimeout,
		})
		if err != nil {
			return nil, err
		}
	}

	handler.engine, err = pluginEngine.NewCheckEngine(pluginEngine.ArgsCheckEngine{
		Config:         args.Config,
		Collector:      handler.collector,
		Pipeline:       handler.pipeline,
		Formatter:      handler.formatter,
		Reporter:       handler.reporter,
		CollectTimeout: collectTimeout,
		ReportTimeout:  defaultReportTimeout,
	})
	if err != nil {
		return nil, err
	}

	return handler, nil
}

func bindThresholds(binder LateBinder, warnings map[string]string, criticals map[string]string) {
	for suffix, text := range warnings {
		binder.AddWarning(suffix, text)
	}
	for suffix, text := range criticals {
		binder.AddCritical(suffix, text)
	}
}

// GetCollector returns the collector component
func (ch *componentsHandler) GetCollector() pluginEngine.Collector {
	return ch.collector
}

// GetPipeline returns the pipeline component
func (ch *componentsHandler) GetPipeline() pluginEngine.Pipeline {
	return ch.pipeline
}

// GetFormatter returns the formatter component
func (ch *componentsHandler) GetFormatter() pluginEngine.Formatter {
	return ch.formatter
}

// GetReporter returns the reporter component, nil when reporting is disabled
func (ch *componentsHandler) GetReporter() pluginEngine.Reporter {
	return ch.reporter
}

// GetEngine returns the engine component
func (ch *componentsHandler) GetEngine() Engine {
	return ch.engine
}

// RunOnce runs a single check
func (ch *componentsHandler) RunOnce(ctx context.Context) pluginEngine.Outcome {
	return ch.engine.Check(ctx)
}

// Start starts running the check periodically
func (ch *componentsHandler) Start() error {
	if ch.interval <= 0 {
		return errors.New("periodic checks require a positive interval")
	}

	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		return nil
	}

	var ctx context.Context
	ctx, ch.cancel = context.WithCancel(context.Background())

	commonGo.CronJobStarter(ctx, ch.engine.Process, ch.interval)

	return nil
}

// Close closes the inner components
func (ch *componentsHandler) Close() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel == nil {
		return
	}

	ch.cancel()
	ch.cancel = nil
}
