package collector

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iulianpascalau/device-health-check/services/plugin/compute"
	"github.com/iulianpascalau/device-health-check/services/plugin/config"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
)

// GetNamespace is the name of the namespace holding the merged results of all get queries
const GetNamespace = "get"

var log = logger.GetOrCreate("collector")

type fetchResult struct {
	body []byte
	err  error
}

type httpCollector struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCollector creates a collector reading JSON documents from the device. Relative endpoint
// URLs are resolved against baseURL
func NewHTTPCollector(baseURL string, timeout time.Duration) *httpCollector {
	return &httpCollector{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Collect fetches every distinct URL concurrently and builds the collect sequence: one namespace
// per walk, in declaration order, followed by one namespace merging all gets. Failed endpoints
// are omitted.
func (c *httpCollector) Collect(ctx context.Context, endpoints []config.EndpointConfig) (*compute.Collect, error) {
	bodies := c.fetchAll(ctx, endpoints)

	collect := compute.NewCollect()
	gets := compute.NewNamespace(GetNamespace)
	succeeded := 0
	var firstErr error

	for _, endpoint := range endpoints {
		fetched := bodies[c.resolveURL(endpoint.URL)]
		err := fetched.err
		if err == nil {
			err = c.extract(endpoint, fetched.body, collect, gets)
		}
		if err != nil {
			log.Warn("endpoint collection failed", "name", endpoint.Name, "url", endpoint.URL, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", endpoint.Name, err)
			}
			continue
		}

		succeeded++
	}

	if len(gets.Items) > 0 {
		collect.Append(gets)
	}
	if len(endpoints) > 0 && succeeded == 0 {
		return nil, fmt.Errorf("%w, first error: %v", ErrNothingCollected, firstErr)
	}

	log.Debug("finished collecting", "endpoints", len(endpoints), "successful", succeeded, "namespaces", collect.Len())

	return collect, nil
}

func (c *httpCollector) extract(endpoint config.EndpointConfig, body []byte, collect *compute.Collect, gets compute.Namespace) error {
	result := gjson.GetBytes(body, endpoint.Value)
	if !result.Exists() {
		return errPathNotFound(endpoint.Value)
	}

	if endpoint.Query != config.QueryWalk {
		if _, found := gets.Items[endpoint.Name]; found {
			log.Warn("get endpoint overwrites a previous value", "name", endpoint.Name)
		}
		gets.Items[endpoint.Name] = toResult(result)
		return nil
	}

	if !result.IsArray() {
		return errNotAnArray(endpoint.Value)
	}

	ns := compute.NewNamespace(endpoint.Name)
	rows := result.Array()
	if len(endpoint.Labels) == 0 {
		ns.Items[endpoint.Name] = column(rows)
		collect.Append(ns)
		return nil
	}

	for _, path := range sortedKeys(endpoint.Labels) {
		cells := make([]gjson.Result, 0, len(rows))
		for _, row := range rows {
			cells = append(cells, row.Get(path))
		}
		ns.Items[endpoint.Name+"."+endpoint.Labels[path]] = column(cells)
	}
	collect.Append(ns)

	return nil
}

func (c *httpCollector) fetchAll(ctx context.Context, endpoints []config.EndpointConfig) map[string]fetchResult {
	results := make(map[string]fetchResult)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, endpoint := range endpoints {
		url := c.resolveURL(endpoint.URL)
		mu.Lock()
		_, scheduled := results[url]
		if !scheduled {
			results[url] = fetchResult{}
		}
		mu.Unlock()
		if scheduled {
			continue
		}

		wg.Add(1)
		go func(url string) {
			defer wg.Done()

			body, err := c.fetch(ctx, url)

			mu.Lock()
			results[url] = fetchResult{body: body, err: err}
			mu.Unlock()
		}(url)
	}

	wg.Wait()
	return results
}

func (c *httpCollector) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errStatusNotOK(resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (c *httpCollector) resolveURL(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	if len(url) > 0 && !strings.HasPrefix(url, "/") {
		url = "/" + url
	}

	return c.baseURL + url
}

// toResult converts a single JSON value. Arrays become vectors, booleans become 0 or 1
func toResult(value gjson.Result) compute.Result {
	if value.IsArray() {
		return column(value.Array())
	}

	switch value.Type {
	case gjson.Number:
		return compute.Number(value.Float())
	case gjson.True:
		return compute.Number(1)
	case gjson.False:
		return compute.Number(0)
	case gjson.String:
		return compute.Str(value.String())
	default:
		return compute.Empty{}
	}
}

// column converts a list of JSON values into a Vector, or into a StrVector when any of them is a string.
// Missing cells become NaN in a Vector and the empty string in a StrVector
func column(cells []gjson.Result) compute.Result {
	isString := false
	for _, cell := range cells {
		if cell.Type == gjson.String {
			isString = true
			break
		}
	}

	if isString {
		strs := make(compute.StrVector, 0, len(cells))
		for _, cell := range cells {
			strs = append(strs, cell.String())
		}
		return strs
	}

	values := make(compute.Vector, 0, len(cells))
	for _, cell := range cells {
		switch cell.Type {
		case gjson.Number:
			values = append(values, cell.Float())
		case gjson.True:
			values = append(values, 1)
		case gjson.False:
			values = append(values, 0)
		default:
			values = append(values, math.NaN())
		}
	}

	return values
}

func sortedKeys(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

// IsInterfaceNil returns true if the value under the interface is nil
func (c *httpCollector) IsInterfaceNil() bool {
	return c == nil
}
