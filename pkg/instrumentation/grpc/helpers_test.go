// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package grpc

import (
	"bytes"
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gopkg.in/yaml.v3"
)

type testRequest struct {
	path         string
	major, minor int
	host         string
}

type testResponse struct {
	status int
}

type testAttrsGetter struct{}

func (testAttrsGetter) GetRoute(request testRequest) string { return request.path }

func (testAttrsGetter) GetNetworkProtocolVersion(request testRequest) (int, int) {
	return request.major, request.minor
}

func (testAttrsGetter) GetServerAddress(request testRequest) string { return request.host }

func (testAttrsGetter) GetErrorType(_ testRequest, response testResponse) string {
	return httpErrorType(response.status)
}

func newTestMeterProvider(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) []metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var metrics []metricdata.Metrics
	for _, sm := range rm.ScopeMetrics {
		metrics = append(metrics, sm.Metrics...)
	}
	return metrics
}

// histogramPoints returns the data points of the named histogram, or nil when
// nothing was recorded on it.
func histogramPoints(t *testing.T, reader *sdkmetric.ManualReader, name string) []metricdata.HistogramDataPoint[float64] {
	t.Helper()
	for _, m := range collectMetrics(t, reader) {
		if m.Name != name {
			continue
		}
		hist, ok := m.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "%s is not a float64 histogram", name)
		return hist.DataPoints
	}
	return nil
}

func totalCount(points []metricdata.HistogramDataPoint[float64]) uint64 {
	var n uint64
	for _, dp := range points {
		n += dp.Count
	}
	return n
}

func labels(dp metricdata.HistogramDataPoint[float64]) map[string]string {
	out := make(map[string]string, dp.Attributes.Len())
	for _, kv := range dp.Attributes.ToSlice() {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func labelSet(kvs ...attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

type histogramSnapshot struct {
	Name        string          `yaml:"name"`
	Unit        string          `yaml:"unit"`
	Description string          `yaml:"description"`
	Points      []pointSnapshot `yaml:"points"`
}

type pointSnapshot struct {
	Count      uint64            `yaml:"count"`
	Attributes map[string]string `yaml:"attributes"`
}

// snapshotMetrics renders every histogram with its counts and labels. Sums and
// bucket counts depend on timing and are left out.
func snapshotMetrics(t *testing.T, reader *sdkmetric.ManualReader) string {
	t.Helper()
	metrics := collectMetrics(t, reader)
	snapshots := make([]histogramSnapshot, 0, len(metrics))
	for _, m := range metrics {
		hist, ok := m.Data.(metricdata.Histogram[float64])
		if !ok {
			continue
		}
		s := histogramSnapshot{Name: m.Name, Unit: m.Unit, Description: m.Description}
		for _, dp := range hist.DataPoints {
			s.Points = append(s.Points, pointSnapshot{Count: dp.Count, Attributes: labels(dp)})
		}
		sort.Slice(s.Points, func(i, j int) bool {
			return s.Points[i].Attributes["rpc.method"] < s.Points[j].Attributes["rpc.method"]
		})
		snapshots = append(snapshots, s)
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Name < snapshots[j].Name })

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	require.NoError(t, enc.Encode(snapshots))
	require.NoError(t, enc.Close())
	return buf.String()
}
