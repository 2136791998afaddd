package collector

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iulianpascalau/device-health-check/services/plugin/compute"
	"github.com/iulianpascalau/device-health-check/services/plugin/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const interfacesDocument = `{
  "interfaces": [
    {"name": "eth0", "in_octets": 100, "up": true},
    {"name": "eth1", "in_octets": 300, "up": false},
    {"name": "lo"}
  ]
}`

func createDeviceServer(t *testing.T, hits *int32) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/interfaces", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(interfacesDocument))
	})
	mux.HandleFunc("/api/cpu", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cores": [{"load": 10}, {"load": 50}, {"load": 95}]}`))
	})
	mux.HandleFunc("/api/system", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		_, _ = w.Write([]byte(`{"hostname": "router1", "memory": {"free": 29600, "total": 747712}, "ok": true}`))
	})
	mux.HandleFunc("/api/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func TestHTTPCollector_Collect(t *testing.T) {
	t.Parallel()

	hits := int32(0)
	server := createDeviceServer(t, &hits)

	endpoints := []config.EndpointConfig{
		{Name: "hostname", URL: "/api/system", Query: config.QueryGet, Value: "hostname"},
		{Name: "if", URL: "/api/interfaces", Query: config.QueryWalk, Value: "interfaces",
			Labels: map[string]string{"name": "name", "in_octets": "in", "up": "up"}},
		{Name: "mem.free", URL: "api/system", Query: config.QueryGet, Value: "memory.free"},
		{Name: "cpu", URL: server.URL + "/api/cpu", Query: config.QueryWalk, Value: "cores.#.load"},
		{Name: "ok", URL: "/api/system", Query: config.QueryGet, Value: "ok"},
		{Name: "missing", URL: "/api/system", Query: config.QueryGet, Value: "memory.used"},
		{Name: "flat", URL: "/api/system", Query: config.QueryWalk, Value: "hostname"},
		{Name: "broken", URL: "/api/broken", Query: config.QueryGet, Value: "x"},
	}

	c := NewHTTPCollector(server.URL+"/", time.Second)
	require.False(t, c.IsInterfaceNil())

	collect, err := c.Collect(context.Background(), endpoints)
	require.Nil(t, err)

	namespaces := collect.Namespaces()
	require.Len(t, namespaces, 3)

	assert.Equal(t, "if", namespaces[0].Name)
	assert.Equal(t, compute.StrVector{"eth0", "eth1", "lo"}, namespaces[0].Items["if.name"])
	up := namespaces[0].Items["if.up"].(compute.Vector)
	assert.Equal(t, 1.0, up[0])
	assert.Equal(t, 0.0, up[1])
	assert.True(t, math.IsNaN(up[2]))
	in := namespaces[0].Items["if.in"].(compute.Vector)
	require.Len(t, in, 3)
	assert.Equal(t, 300.0, in[1])

	assert.Equal(t, "cpu", namespaces[1].Name)
	assert.Equal(t, compute.Vector{10, 50, 95}, namespaces[1].Items["cpu"])

	assert.Equal(t, GetNamespace, namespaces[2].Name)
	assert.Equal(t, map[string]compute.Result{
		"hostname": compute.Str("router1"),
		"mem.free": compute.Number(29600),
		"ok":       compute.Number(1),
	}, namespaces[2].Items)

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "each distinct URL is fetched once")

	value, found := collect.Lookup("if.name")
	require.True(t, found)
	assert.Equal(t, compute.KindStrVector, value.Kind())
}

func TestHTTPCollector_CollectFailures(t *testing.T) {
	t.Parallel()

	t.Run("nothing collected should error", func(t *testing.T) {
		t.Parallel()

		hits := int32(0)
		server := createDeviceServer(t, &hits)
		c := NewHTTPCollector(server.URL, time.Second)

		collect, err := c.Collect(context.Background(), []config.EndpointConfig{
			{Name: "broken", URL: "/api/broken", Query: config.QueryGet, Value: "x"},
			{Name: "refused", URL: "http://localhost:59999", Query: config.QueryGet, Value: "x"},
		})
		assert.Nil(t, collect)
		assert.True(t, errors.Is(err, ErrNothingCollected))
		assert.Contains(t, err.Error(), "broken: non-2xx HTTP status code: Internal Server Error")
	})
	t.Run("timeout should omit the endpoint", func(t *testing.T) {
		t.Parallel()

		slowServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(2 * time.Second)
			_, _ = w.Write([]byte(`{"value": 1}`))
		}))
		defer slowServer.Close()

		hits := int32(0)
		server := createDeviceServer(t, &hits)
		c := NewHTTPCollector(server.URL, 500*time.Millisecond)

		collect, err := c.Collect(context.Background(), []config.EndpointConfig{
			{Name: "slow", URL: slowServer.URL, Query: config.QueryGet, Value: "value"},
			{Name: "hostname", URL: "/api/system", Query: config.QueryGet, Value: "hostname"},
		})
		require.Nil(t, err)

		_, found := collect.Lookup("slow")
		assert.False(t, found)
		_, found = collect.Lookup("hostname")
		assert.True(t, found)
	})
	t.Run("duplicate get names keep the last value", func(t *testing.T) {
		t.Parallel()

		hits := int32(0)
		server := createDeviceServer(t, &hits)
		c := NewHTTPCollector(server.URL, time.Second)

		collect, err := c.Collect(context.Background(), []config.EndpointConfig{
			{Name: "mem", URL: "/api/system", Query: config.QueryGet, Value: "memory.free"},
			{Name: "mem", URL: "/api/system", Query: config.QueryGet, Value: "memory.total"},
		})
		require.Nil(t, err)

		value, found := collect.Lookup("mem")
		require.True(t, found)
		assert.Equal(t, compute.Number(747712), value)
	})
	t.Run("no endpoints yields an empty sequence", func(t *testing.T) {
		t.Parallel()

		c := NewHTTPCollector("http://localhost", time.Second)
		collect, err := c.Collect(context.Background(), nil)
		require.Nil(t, err)
		assert.Equal(t, 0, collect.Len())
	})
}
