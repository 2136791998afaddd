package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// QueryGet reads one value, all gets of a command are merged into a single namespace
	QueryGet = "get"
	// QueryWalk reads a table, each walk producing its own namespace
	QueryWalk = "walk"
)

// EndpointConfig defines a single collection rule
type EndpointConfig struct {
	Name   string            `json:"name" toml:"Name"`
	URL    string            `json:"url" toml:"URL"`
	Query  string            `json:"query" toml:"Query"`
	Value  string            `json:"value" toml:"Value"`
	Labels map[string]string `json:"labels,omitempty" toml:"Labels"`
}

// CollectConfig holds the collection rules of a command
type CollectConfig struct {
	TimeoutInSeconds uint32           `json:"timeout_in_seconds" toml:"TimeoutInSeconds"`
	Endpoints        []EndpointConfig `json:"endpoints" toml:"Endpoints"`
}

// MetricConfig defines one metric or aggregation
type MetricConfig struct {
	Name            string   `json:"name" toml:"Name"`
	Prefix          string   `json:"prefix,omitempty" toml:"Prefix"`
	Value           string   `json:"value" toml:"Value"`
	Uom             string   `json:"uom" toml:"Uom"`
	Min             *float64 `json:"min,omitempty" toml:"Min"`
	MinExpr         string   `json:"min_expr,omitempty" toml:"MinExpr"`
	Max             *float64 `json:"max,omitempty" toml:"Max"`
	MaxExpr         string   `json:"max_expr,omitempty" toml:"MaxExpr"`
	ThresholdSuffix string   `json:"threshold_suffix,omitempty" toml:"ThresholdSuffix"`
	Warning         string   `json:"warning,omitempty" toml:"Warning"`
	Critical        string   `json:"critical,omitempty" toml:"Critical"`
}

// ComputeConfig holds the base metrics and the aggregations computed over them
type ComputeConfig struct {
	Metrics      []MetricConfig `json:"metrics" toml:"Metrics"`
	Aggregations []MetricConfig `json:"aggregations,omitempty" toml:"Aggregations"`
}

// OutputConfig drives the rendering of a check result
type OutputConfig struct {
	Ok                string `json:"ok" toml:"Ok"`
	DetailOk          bool   `json:"detail_ok" toml:"DetailOk"`
	Warning           string `json:"warning" toml:"Warning"`
	DetailWarning     bool   `json:"detail_warning" toml:"DetailWarning"`
	Critical          string `json:"critical" toml:"Critical"`
	DetailCritical    bool   `json:"detail_critical" toml:"DetailCritical"`
	Unknown           string `json:"unknown" toml:"Unknown"`
	DetailUnknown     bool   `json:"detail_unknown" toml:"DetailUnknown"`
	InstanceSeparator string `json:"instance_separator" toml:"InstanceSeparator"`
	MetricSeparator   string `json:"metric_separator" toml:"MetricSeparator"`
}

// CommandConfig maps to one check command file
type CommandConfig struct {
	Collect CollectConfig `json:"collect" toml:"Collect"`
	Compute ComputeConfig `json:"compute" toml:"Compute"`
	Output  OutputConfig  `json:"output" toml:"Output"`
}

// DefaultOutputConfig returns the output settings used when a command file omits them
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Ok:                "Everything is OK",
		DetailOk:          false,
		Warning:           "WARNING: ",
		DetailWarning:     true,
		Critical:          "CRITICAL: ",
		DetailCritical:    true,
		Unknown:           "UNKNOWN: ",
		DetailUnknown:     true,
		InstanceSeparator: " - ",
		MetricSeparator:   ", ",
	}
}

// LoadConfig parses a command file. Files ending in .json are decoded as JSON, anything else as TOML
func LoadConfig(path string) (*CommandConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	isJSON := strings.EqualFold(filepath.Ext(path), ".json")

	return ParseConfig(data, isJSON)
}

// ParseConfig decodes a command from its raw content
func ParseConfig(data []byte, isJSON bool) (*CommandConfig, error) {
	cfg := CommandConfig{
		Output: DefaultOutputConfig(),
	}

	var err error
	if isJSON {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = toml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	err = cfg.Collect.validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *CollectConfig) validate() error {
	names := make(map[string]struct{}, len(cfg.Endpoints))
	for i := range cfg.Endpoints {
		endpoint := &cfg.Endpoints[i]
		if len(endpoint.Name) == 0 {
			return fmt.Errorf("%w at index %d", ErrEmptyEndpointName, i)
		}
		if _, found := names[endpoint.Name]; found {
			return fmt.Errorf("%w: %s", ErrDuplicateEndpointName, endpoint.Name)
		}
		names[endpoint.Name] = struct{}{}

		endpoint.Query = strings.ToLower(endpoint.Query)
		switch endpoint.Query {
		case "":
			endpoint.Query = QueryGet
		case QueryGet, QueryWalk:
		default:
			return fmt.Errorf("%w '%s' for endpoint %s", ErrUnknownQuery, endpoint.Query, endpoint.Name)
		}
	}

	return nil
}
