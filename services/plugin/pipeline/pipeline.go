package pipeline

import (
	"fmt"
	"regexp"

	"github.com/iulianpascalau/device-health-check/services/plugin/common"
	"github.com/iulianpascalau/device-health-check/services/plugin/compute"
	"github.com/iulianpascalau/device-health-check/services/plugin/config"
	"github.com/iulianpascalau/device-health-check/services/plugin/threshold"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const (
	metricsNamespace      = "metrics"
	aggregationsNamespace = "aggregations"
)

var log = logger.GetOrCreate("pipeline")

// ArgsPipeline is the DTO used to create a new pipeline
type ArgsPipeline struct {
	Compute   config.ComputeConfig
	Output    config.OutputConfig
	FilterIn  []string
	FilterOut []string
	Strict    bool
}

type metricsPipeline struct {
	metrics      []config.MetricConfig
	aggregations []config.MetricConfig
	output       config.OutputConfig
	filterIn     []*regexp.Regexp
	filterOut    []*regexp.Regexp
	evaluator    *compute.Evaluator
}

// runState is owned by a single Run call
type runState struct {
	collect *compute.Collect
	counter int
	result  *common.CheckResult
}

// NewPipeline creates a pipeline evaluating the configured metrics, then the aggregations
func NewPipeline(args ArgsPipeline) (*metricsPipeline, error) {
	filterIn, err := compileFilters(args.FilterIn)
	if err != nil {
		return nil, err
	}
	filterOut, err := compileFilters(args.FilterOut)
	if err != nil {
		return nil, err
	}

	evaluator := compute.NewEvaluator()
	evaluator.Strict = args.Strict

	return &metricsPipeline{
		metrics:      append([]config.MetricConfig(nil), args.Compute.Metrics...),
		aggregations: append([]config.MetricConfig(nil), args.Compute.Aggregations...),
		output:       args.Output,
		filterIn:     filterIn,
		filterOut:    filterOut,
		evaluator:    evaluator,
	}, nil
}

func compileFilters(patterns []string) ([]*regexp.Regexp, error) {
	filters := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid filter '%s': %w", pattern, err)
		}
		filters = append(filters, re)
	}

	return filters, nil
}

// AddWarning attaches a warning range to the first metric, then aggregation, declaring the suffix
func (p *metricsPipeline) AddWarning(suffix string, text string) {
	metric := p.findBySuffix(suffix)
	if metric == nil {
		log.Debug("no metric declares the threshold suffix, warning ignored", "suffix", suffix)
		return
	}

	log.Debug("adding warning", "metric", metric.Name, "warning", text)
	metric.Warning = text
}

// AddCritical attaches a critical range to the first metric, then aggregation, declaring the suffix
func (p *metricsPipeline) AddCritical(suffix string, text string) {
	metric := p.findBySuffix(suffix)
	if metric == nil {
		log.Debug("no metric declares the threshold suffix, critical ignored", "suffix", suffix)
		return
	}

	log.Debug("adding critical", "metric", metric.Name, "critical", text)
	metric.Critical = text
}

func (p *metricsPipeline) findBySuffix(suffix string) *config.MetricConfig {
	for _, list := range [][]config.MetricConfig{p.metrics, p.aggregations} {
		for i := range list {
			if len(list[i].ThresholdSuffix) > 0 && list[i].ThresholdSuffix == suffix {
				return &list[i]
			}
		}
	}

	return nil
}

// Run evaluates every metric against the collect sequence, publishing each value under
// metrics.<name> or aggregations.<name> for the expressions that follow
func (p *metricsPipeline) Run(collect *compute.Collect) (*common.CheckResult, error) {
	if collect == nil {
		return nil, ErrNilCollect
	}

	run := &runState{
		collect: collect,
		result: &common.CheckResult{
			Status:      common.StatusOk,
			Collect:     collect,
			Metrics:     make([]common.Perfdata, 0, len(p.metrics)+len(p.aggregations)),
			Diagnostics: make([]common.Diagnostic, 0),
			Output:      p.output,
		},
	}

	p.runPass(run, metricsNamespace, p.metrics)
	if len(p.aggregations) > 0 {
		p.runPass(run, aggregationsNamespace, p.aggregations)
	}

	log.Debug("pipeline finished", "status", run.result.Status.String(),
		"perfdata", len(run.result.Metrics), "diagnostics", len(run.result.Diagnostics))

	return run.result, nil
}

func (p *metricsPipeline) runPass(run *runState, namespace string, metrics []config.MetricConfig) {
	run.collect.Begin(namespace)
	defer run.collect.Seal()

	for _, metric := range metrics {
		value, err := p.evaluator.EvalExpr(metric.Value, run.collect)
		if err != nil {
			p.fail(run, metric, err)
			continue
		}

		err = p.emit(run, metric, value)
		if err != nil {
			p.fail(run, metric, err)
		}

		key := namespace + "." + metric.Name
		log.Trace("publishing", "key", key, "value", value.String())
		run.collect.Publish(key, value)
	}
}

func (p *metricsPipeline) fail(run *runState, metric config.MetricConfig, err error) {
	log.Warn("metric evaluation failed", "metric", metric.Name, "error", err)

	run.result.Status = common.Worst(run.result.Status, common.StatusUnknown)
	run.result.Diagnostics = append(run.result.Diagnostics, common.Diagnostic{
		Metric:  metric.Name,
		Message: err.Error(),
	})
}

func (p *metricsPipeline) emit(run *runState, metric config.MetricConfig, value compute.Result) error {
	var values []float64
	switch v := value.(type) {
	case compute.Number:
		values = []float64{float64(v)}
	case compute.Vector:
		values = v
	default:
		return fmt.Errorf("%w, got %s", ErrStringValue, value.Kind())
	}
	if len(values) == 0 {
		return nil
	}

	minBound, err := p.resolveBound(metric.MinExpr, metric.Min, run.collect)
	if err != nil {
		return fmt.Errorf("min: %w", err)
	}
	maxBound, err := p.resolveBound(metric.MaxExpr, metric.Max, run.collect)
	if err != nil {
		return fmt.Errorf("max: %w", err)
	}

	warning, critical, err := parseThresholds(metric)
	if err != nil {
		return err
	}

	names, err := p.elementNames(run, metric, len(values))
	if err != nil {
		return err
	}

	for i, item := range values {
		if !p.isSelected(names[i]) {
			log.Trace("metric filtered out", "name", names[i])
			continue
		}

		status := computeStatus(item, warning, critical)
		run.result.Status = common.Worst(run.result.Status, status)
		run.result.Metrics = append(run.result.Metrics, common.Perfdata{
			Name:     names[i],
			Value:    item,
			Uom:      metric.Uom,
			Min:      boundAt(minBound, i),
			Max:      boundAt(maxBound, i),
			Warning:  metric.Warning,
			Critical: metric.Critical,
			Status:   status,
		})
		log.Trace("new metric", "name", names[i], "value", item, "status", status.String())
	}

	return nil
}

// resolveBound prefers the expression over the literal; none of them yields Empty
func (p *metricsPipeline) resolveBound(expr string, literal *float64, collect *compute.Collect) (compute.Result, error) {
	if len(expr) > 0 {
		bound, err := p.evaluator.EvalExpr(expr, collect)
		if err != nil {
			return nil, err
		}
		switch bound.(type) {
		case compute.Number, compute.Vector:
			return bound, nil
		default:
			return nil, fmt.Errorf("%w, got %s", ErrStringBound, bound.Kind())
		}
	}
	if literal != nil {
		return compute.Number(*literal), nil
	}

	return compute.Empty{}, nil
}

func boundAt(bound compute.Result, idx int) *float64 {
	var value float64
	switch b := bound.(type) {
	case compute.Number:
		value = float64(b)
	case compute.Vector:
		if idx >= len(b) {
			return nil
		}
		value = b[idx]
	default:
		return nil
	}

	return &value
}

// elementNames labels each element with the prefix template when it yields one label per
// element, otherwise with <counter>#<name>
func (p *metricsPipeline) elementNames(run *runState, metric config.MetricConfig, count int) ([]string, error) {
	names := make([]string, 0, count)

	if len(metric.Prefix) > 0 {
		prefix, err := p.evaluator.EvalStr(metric.Prefix, run.collect)
		if err != nil {
			return nil, fmt.Errorf("prefix: %w", err)
		}

		switch labels := prefix.(type) {
		case compute.StrVector:
			if len(labels) == count {
				for _, label := range labels {
					names = append(names, label+metric.Name)
				}
				return names, nil
			}
		case compute.Str:
			if count == 1 {
				return append(names, string(labels)+metric.Name), nil
			}
		}

		log.Debug("prefix labels do not match the metric elements, using counters",
			"metric", metric.Name, "prefix", prefix.String(), "elements", count)
	}

	for i := 0; i < count; i++ {
		names = append(names, fmt.Sprintf("%d#%s", run.counter, metric.Name))
		run.counter++
	}

	return names, nil
}

func (p *metricsPipeline) isSelected(name string) bool {
	if len(p.filterIn) > 0 && !matchesAny(p.filterIn, name) {
		return false
	}

	return !matchesAny(p.filterOut, name)
}

func matchesAny(filters []*regexp.Regexp, name string) bool {
	for _, re := range filters {
		if re.MatchString(name) {
			return true
		}
	}

	return false
}

func parseThresholds(metric config.MetricConfig) (*threshold.Threshold, *threshold.Threshold, error) {
	var warning, critical *threshold.Threshold
	var err error

	if len(metric.Warning) > 0 {
		warning, err = threshold.Parse(metric.Warning)
		if err != nil {
			return nil, nil, fmt.Errorf("warning: %w", err)
		}
	}
	if len(metric.Critical) > 0 {
		critical, err = threshold.Parse(metric.Critical)
		if err != nil {
			return nil, nil, fmt.Errorf("critical: %w", err)
		}
	}

	return warning, critical, nil
}

// computeStatus checks the critical range before the warning one
func computeStatus(value float64, warning *threshold.Threshold, critical *threshold.Threshold) common.Status {
	if critical != nil && critical.InAlert(value) {
		return common.StatusCritical
	}
	if warning != nil && warning.InAlert(value) {
		return common.StatusWarning
	}

	return common.StatusOk
}

// IsInterfaceNil returns true if the value under the interface is nil
func (p *metricsPipeline) IsInterfaceNil() bool {
	return p == nil
}
