// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.opentelemetry.io/collector/pdata/pmetric"
)

// Collector represents an in-memory OTLP collector for testing
type Collector struct {
	*httptest.Server
	mu      sync.Mutex
	metrics pmetric.Metrics
	exports int
}

// GetMetrics returns a copy of every metric batch received so far.
func (c *Collector) GetMetrics() pmetric.Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := pmetric.NewMetrics()
	c.metrics.CopyTo(out)
	return out
}

// Exports returns the number of export requests received.
func (c *Collector) Exports() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exports
}

// StartCollector starts an in-memory OTLP HTTP server that collects metrics
func StartCollector(t *testing.T) *Collector {
	c := &Collector{metrics: pmetric.NewMetrics()}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/metrics", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("Failed to read request body: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		defer r.Body.Close()

		var unmarshaler pmetric.ProtoUnmarshaler
		metrics, err := unmarshaler.UnmarshalMetrics(body)
		if err != nil {
			t.Errorf("Failed to unmarshal OTLP metrics: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		c.mu.Lock()
		metrics.ResourceMetrics().MoveAndAppendTo(c.metrics.ResourceMetrics())
		c.exports++
		c.mu.Unlock()

		w.WriteHeader(http.StatusOK)
	})

	c.Server = httptest.NewServer(mux)
	t.Cleanup(c.Close)

	return c
}

// LatestHistogram returns the data points of the most recent export of the
// named histogram. With cumulative temporality that is its current state.
func (c *Collector) LatestHistogram(name string) (pmetric.Metric, bool) {
	metrics := c.GetMetrics()
	var (
		latest pmetric.Metric
		found  bool
	)
	rms := metrics.ResourceMetrics()
	for i := 0; i < rms.Len(); i++ {
		sms := rms.At(i).ScopeMetrics()
		for j := 0; j < sms.Len(); j++ {
			ms := sms.At(j).Metrics()
			for k := 0; k < ms.Len(); k++ {
				if m := ms.At(k); m.Name() == name && m.Type() == pmetric.MetricTypeHistogram {
					latest, found = m, true
				}
			}
		}
	}
	return latest, found
}

// HistogramCount sums the observation counts of the latest export of the
// named histogram.
func (c *Collector) HistogramCount(name string) uint64 {
	m, ok := c.LatestHistogram(name)
	if !ok {
		return 0
	}
	var n uint64
	dps := m.Histogram().DataPoints()
	for i := 0; i < dps.Len(); i++ {
		n += dps.At(i).Count()
	}
	return n
}
