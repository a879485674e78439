// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/collector/pdata/pmetric"
)

// TestFixture provides common setup for integration tests.
type TestFixture struct {
	t         *testing.T
	collector *Collector

	serviceName string
}

type TestFixtureOption func(*TestFixture)

func WithServiceName(name string) TestFixtureOption {
	return func(f *TestFixture) {
		f.serviceName = name
	}
}

// NewTestFixture creates a new test fixture.
// It automatically starts the collector and points the OTEL env vars at it.
// Tests can override env vars after calling this if needed.
func NewTestFixture(t *testing.T, opts ...TestFixtureOption) *TestFixture {
	f := &TestFixture{
		t:           t,
		serviceName: "test-service",
	}

	for _, opt := range opts {
		opt(f)
	}

	f.collector = StartCollector(t)

	// Clear the signal-specific endpoint so OTEL_EXPORTER_OTLP_ENDPOINT takes precedence
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")
	t.Setenv("OTEL_SERVICE_NAME", f.serviceName)
	t.Setenv("OTEL_METRICS_EXPORTER", "otlp")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", f.collector.URL)
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http/protobuf")
	t.Setenv("OTEL_INSTRUMENTATION_ENABLED", "")
	t.Setenv("OTEL_INSTRUMENTATION_GRPC_ENABLED", "")

	return f
}

// Collector returns the in-memory collector.
func (f *TestFixture) Collector() *Collector {
	return f.collector
}

// Metrics returns the collected metrics for assertions.
func (f *TestFixture) Metrics() pmetric.Metrics {
	return f.collector.GetMetrics()
}

// CollectorURL returns the collector endpoint URL.
func (f *TestFixture) CollectorURL() string {
	return f.collector.URL
}

// RequireHistogram asserts the named histogram was exported and returns its
// latest state.
func (f *TestFixture) RequireHistogram(name string) pmetric.Metric {
	f.t.Helper()
	m, ok := f.collector.LatestHistogram(name)
	require.True(f.t, ok, "histogram %s was not exported", name)
	return m
}

// RequireNoHistogram asserts the named histogram was never exported.
func (f *TestFixture) RequireNoHistogram(name string) {
	f.t.Helper()
	_, ok := f.collector.LatestHistogram(name)
	require.False(f.t, ok, "histogram %s was exported", name)
}

// RequireServiceName asserts every exported resource carries the fixture's
// service.name.
func (f *TestFixture) RequireServiceName() {
	f.t.Helper()
	rms := f.collector.GetMetrics().ResourceMetrics()
	require.Positive(f.t, rms.Len(), "no metrics exported")
	for i := 0; i < rms.Len(); i++ {
		RequireAttribute(f.t, rms.At(i).Resource().Attributes(), "service.name", f.serviceName)
	}
}
