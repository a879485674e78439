// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/pmetric"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"
)

// RequireRPCServerDurationSemconv verifies that an rpc.server.duration metric
// follows semantic conventions and returns its single data point.
// Reference: https://opentelemetry.io/docs/specs/semconv/rpc/rpc-metrics/#metric-rpcserverduration
func RequireRPCServerDurationSemconv(t *testing.T, m pmetric.Metric, rpcService, rpcMethod string) pmetric.HistogramDataPoint {
	t.Helper()
	dp := requireDurationHistogram(t, m, "rpc.server.duration", "Measures the duration of inbound RPC.")
	requireRPCAttributes(t, dp.Attributes(), rpcService, rpcMethod)
	_, ok := dp.Attributes().Get(string(semconv.ServerAddressKey))
	require.False(t, ok, "server metrics must not carry %s", semconv.ServerAddressKey)
	return dp
}

// RequireRPCClientDurationSemconv verifies that an rpc.client.duration metric
// follows semantic conventions and returns its single data point.
// Reference: https://opentelemetry.io/docs/specs/semconv/rpc/rpc-metrics/#metric-rpcclientduration
func RequireRPCClientDurationSemconv(
	t *testing.T,
	m pmetric.Metric,
	rpcService, rpcMethod, serverAddress string,
) pmetric.HistogramDataPoint {
	t.Helper()
	dp := requireDurationHistogram(t, m, "rpc.client.duration", "Measures the duration of outbound RPC.")
	requireRPCAttributes(t, dp.Attributes(), rpcService, rpcMethod)
	RequireAttribute(t, dp.Attributes(), string(semconv.ServerAddressKey), serverAddress)
	return dp
}

func requireDurationHistogram(t *testing.T, m pmetric.Metric, name, description string) pmetric.HistogramDataPoint {
	t.Helper()
	require.Equal(t, name, m.Name())
	require.Equal(t, "ms", m.Unit())
	require.Equal(t, description, m.Description())
	require.Equal(t, pmetric.MetricTypeHistogram, m.Type())
	require.Equal(t, 1, m.Histogram().DataPoints().Len(), "expected a single label set")
	return m.Histogram().DataPoints().At(0)
}

func requireRPCAttributes(t *testing.T, attrs pcommon.Map, rpcService, rpcMethod string) {
	t.Helper()
	// Required attributes - all validated with exact values
	RequireAttribute(t, attrs, string(semconv.RPCSystemKey), "grpc")
	RequireAttribute(t, attrs, string(semconv.NetworkProtocolNameKey), "http")
	RequireAttribute(t, attrs, string(semconv.NetworkTransportKey), "tcp")
	RequireAttribute(t, attrs, string(semconv.RPCServiceKey), rpcService)
	RequireAttribute(t, attrs, string(semconv.RPCMethodKey), rpcMethod)
	// Recommended attributes
	RequireAttribute(t, attrs, string(semconv.NetworkProtocolVersionKey), "2")
}

// RequireAttribute verifies that attrs holds key with the expected string value.
func RequireAttribute(t *testing.T, attrs pcommon.Map, key, expected string) {
	t.Helper()
	v, ok := attrs.Get(key)
	require.True(t, ok, "attribute %s not found", key)
	require.Equal(t, expected, v.Str(), "attribute %s", key)
}
