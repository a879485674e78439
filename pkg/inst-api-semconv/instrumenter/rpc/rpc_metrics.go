// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

/**
RPC Metrics are defined following OpenTelemetry semantic conventions:
https://opentelemetry.io/docs/specs/semconv/rpc/rpc-metrics/
*/

const (
	RpcServerDuration = "rpc.server.duration"
	RpcClientDuration = "rpc.client.duration"

	durationUnit = "ms"
)

// MetricsRegistry registers float histograms on a meter by name and records
// observations against them. Registration is idempotent: the first
// registration of a name wins and later ones return the same instrument.
type MetricsRegistry struct {
	logger *slog.Logger
	meter  metric.Meter

	mu         sync.RWMutex
	histograms map[string]metric.Float64Histogram
}

func NewMetricsRegistry(logger *slog.Logger, meter metric.Meter) *MetricsRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricsRegistry{
		logger:     logger,
		meter:      meter,
		histograms: make(map[string]metric.Float64Histogram),
	}
}

// Float64Histogram registers a histogram with the given unit and description,
// or returns the one already registered under name.
func (r *MetricsRegistry) Float64Histogram(name, unit, description string) (metric.Float64Histogram, error) {
	r.mu.RLock()
	h, ok := r.histograms[name]
	r.mu.RUnlock()
	if ok {
		return h, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h, nil
	}
	h, err := r.meter.Float64Histogram(name, metric.WithUnit(unit), metric.WithDescription(description))
	if err != nil {
		return nil, err
	}
	r.histograms[name] = h
	return h, nil
}

// Record adds one observation to the histogram registered under name.
// Observations for unregistered names are dropped.
func (r *MetricsRegistry) Record(ctx context.Context, name string, value float64, attrs []attribute.KeyValue) {
	r.mu.RLock()
	h, ok := r.histograms[name]
	r.mu.RUnlock()
	if !ok {
		r.logger.Warn("dropping observation for unregistered histogram", "name", name)
		return
	}
	h.Record(ctx, value, metric.WithAttributeSet(attribute.NewSet(attrs...)))
}

// RpcServerMetric records rpc.server.duration observations.
type RpcServerMetric struct {
	registry *MetricsRegistry
}

// RpcClientMetric records rpc.client.duration observations.
type RpcClientMetric struct {
	registry *MetricsRegistry
}

// NewRpcServerMetric registers rpc.server.duration on the registry.
func (r *MetricsRegistry) NewRpcServerMetric() (*RpcServerMetric, error) {
	if _, err := r.Float64Histogram(RpcServerDuration, durationUnit, "Measures the duration of inbound RPC."); err != nil {
		r.logger.Error("failed to create serverRequestDuration", "error", err)
		return nil, err
	}
	return &RpcServerMetric{registry: r}, nil
}

// NewRpcClientMetric registers rpc.client.duration on the registry.
func (r *MetricsRegistry) NewRpcClientMetric() (*RpcClientMetric, error) {
	if _, err := r.Float64Histogram(RpcClientDuration, durationUnit, "Measures the duration of outbound RPC."); err != nil {
		r.logger.Error("failed to create clientRequestDuration", "error", err)
		return nil, err
	}
	return &RpcClientMetric{registry: r}, nil
}

// Record records the duration between startTime and endTime in whole milliseconds.
func (m *RpcServerMetric) Record(ctx context.Context, startTime, endTime time.Time, attrs []attribute.KeyValue) {
	m.registry.Record(ctx, RpcServerDuration, durationMillis(startTime, endTime), attrs)
}

// Record records the duration between startTime and endTime in whole milliseconds.
func (m *RpcClientMetric) Record(ctx context.Context, startTime, endTime time.Time, attrs []attribute.KeyValue) {
	m.registry.Record(ctx, RpcClientDuration, durationMillis(startTime, endTime), attrs)
}

// OnAfterEnd records a completed operation.
func (m *RpcServerMetric) OnAfterEnd(ctx context.Context, attrs []attribute.KeyValue, startTime, endTime time.Time) {
	m.Record(ctx, startTime, endTime, attrs)
}

// OnAfterEnd records a completed operation.
func (m *RpcClientMetric) OnAfterEnd(ctx context.Context, attrs []attribute.KeyValue, startTime, endTime time.Time) {
	m.Record(ctx, startTime, endTime, attrs)
}

func durationMillis(startTime, endTime time.Time) float64 {
	return float64(endTime.Sub(startTime).Milliseconds())
}
