// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"net"
	"testing"
	"time"
)

const (
	defaultReadinessTimeout  = 10 * time.Second
	defaultReadinessInterval = 100 * time.Millisecond
)

// WaitForTCP waits until a TCP connection can be established.
func WaitForTCP(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(defaultReadinessTimeout)

	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, defaultReadinessInterval)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(defaultReadinessInterval)
	}
	t.Fatalf("timeout waiting for TCP readiness at %s", addr)
}

// Flusher is implemented by sdkmetric.MeterProvider.
type Flusher interface {
	ForceFlush(ctx context.Context) error
}

// WaitForHistogramCount flushes until the collector has seen at least want
// observations of the named histogram.
func WaitForHistogramCount(t *testing.T, c *Collector, flusher Flusher, name string, want uint64) {
	t.Helper()
	deadline := time.Now().Add(defaultReadinessTimeout)

	for time.Now().Before(deadline) {
		if err := flusher.ForceFlush(context.Background()); err != nil {
			t.Logf("force flush: %v", err)
		}
		if c.HistogramCount(name) >= want {
			return
		}
		time.Sleep(defaultReadinessInterval)
	}
	t.Fatalf("timeout waiting for %d observations of %s, got %d", want, name, c.HistogramCount(name))
}
