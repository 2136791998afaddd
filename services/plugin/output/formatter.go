package output

import (
	"strconv"
	"strings"

	"github.com/iulianpascalau/device-health-check/services/plugin/common"
	"github.com/iulianpascalau/device-health-check/services/plugin/compute"
	"github.com/iulianpascalau/device-health-check/services/plugin/config"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const perfdataSeparator = " | "

var log = logger.GetOrCreate("output")

type formatter struct {
	evaluator *compute.Evaluator
}

// NewFormatter creates the renderer of check results into the monitoring plugin output line
func NewFormatter() *formatter {
	return &formatter{
		evaluator: compute.NewEvaluator(),
	}
}

// Format renders the status text followed, when there are any, by the perfdata
func (f *formatter) Format(result *common.CheckResult) string {
	if result == nil {
		return common.StatusUnknown.String()
	}

	text := f.statusText(result)
	perfdata := FormatPerfdata(result.Metrics)
	if len(perfdata) == 0 {
		return text
	}

	return text + perfdataSeparator + perfdata
}

func (f *formatter) statusText(result *common.CheckResult) string {
	cfg := result.Output

	switch result.Status {
	case common.StatusOk:
		if cfg.DetailOk {
			return detail(cfg.Ok, result, cfg)
		}
		return f.okText(result)
	case common.StatusWarning:
		if cfg.DetailWarning {
			return detail(cfg.Warning, result, cfg)
		}
		return cfg.Warning
	case common.StatusCritical:
		if cfg.DetailCritical {
			return detail(cfg.Critical, result, cfg)
		}
		return cfg.Critical
	default:
		if cfg.DetailUnknown {
			return detail(cfg.Unknown, result, cfg)
		}
		return cfg.Unknown
	}
}

// okText evaluates the OK message as a template against the collected values
func (f *formatter) okText(result *common.CheckResult) string {
	collect := result.Collect
	if collect == nil {
		collect = compute.NewCollect()
	}

	res, err := f.evaluator.EvalStr(result.Output.Ok, collect)
	if err != nil {
		log.Error("error evaluating the OK output template", "template", result.Output.Ok, "error", err)
		return result.Output.Ok
	}

	switch value := res.(type) {
	case compute.Str:
		return string(value)
	case compute.StrVector:
		if len(value) == 1 {
			return value[0]
		}
		log.Error("OK output template evaluated to several strings, expected a single one",
			"template", result.Output.Ok, "count", len(value))
	default:
		log.Error("OK output template did not evaluate to a string", "template", result.Output.Ok, "kind", res.Kind())
	}

	return ""
}

// detail lists the metrics at fault, or all of them for an OK status, then the diagnostics
func detail(prefix string, result *common.CheckResult, cfg config.OutputConfig) string {
	metrics := make([]string, 0, len(result.Metrics))
	for _, m := range result.Metrics {
		if result.Status != common.StatusOk && m.Status == common.StatusOk {
			continue
		}
		metrics = append(metrics, m.Name+": "+compute.FormatFloat(m.Value)+m.Uom)
	}

	instances := make([]string, 0, len(result.Diagnostics)+1)
	if len(metrics) > 0 {
		instances = append(instances, strings.Join(metrics, cfg.MetricSeparator))
	}
	for _, d := range result.Diagnostics {
		instances = append(instances, d.Metric+": "+d.Message)
	}

	return prefix + strings.Join(instances, cfg.InstanceSeparator)
}

// FormatPerfdata renders the metrics as name=value[uom];warn;crit;min;max items separated by spaces
func FormatPerfdata(metrics []common.Perfdata) string {
	items := make([]string, 0, len(metrics))
	for _, m := range metrics {
		items = append(items, formatPerfdataItem(m))
	}

	return strings.Join(items, " ")
}

func formatPerfdataItem(m common.Perfdata) string {
	builder := strings.Builder{}
	builder.WriteString(quoteLabel(m.Name))
	builder.WriteString("=")
	builder.WriteString(formatNumber(m.Value))
	builder.WriteString(m.Uom)
	builder.WriteString(";")
	builder.WriteString(m.Warning)
	builder.WriteString(";")
	builder.WriteString(m.Critical)
	builder.WriteString(";")
	builder.WriteString(formatBound(m.Min))
	builder.WriteString(";")
	builder.WriteString(formatBound(m.Max))

	return builder.String()
}

func quoteLabel(name string) string {
	if strings.ContainsAny(name, " '=") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}

	return name
}

func formatBound(bound *float64) string {
	if bound == nil {
		return ""
	}

	return formatNumber(*bound)
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (f *formatter) IsInterfaceNil() bool {
	return f == nil
}
