// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

//go:build integration

package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/open-telemetry/opentelemetry-go-rpc-metrics/demo/grpc/echo"
	otelgrpc "github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/instrumentation/grpc"
	"github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/instrumentation/shared"
	"github.com/open-telemetry/opentelemetry-go-rpc-metrics/test/testutil"
)

// The SDK installed by SetupOTelSDK is process-wide, so this is the only
// test in the package that uses it.
func TestSetupOTelSDKExportsOverOTLP(t *testing.T) {
	f := testutil.NewTestFixture(t, testutil.WithServiceName("echo-service"))

	require.NoError(t, shared.SetupOTelSDK(t.Context()))

	// Instrumentation falls back to the global MeterProvider.
	addr := startNativeServer(t, otelgrpc.ServerOptions()...)
	client := dial(t, addr, otelgrpc.DialOptions()...)

	_, err := client.Echo(t.Context(), "hello")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, shared.ShutdownOTelSDK(ctx))

	f.RequireServiceName()
	testutil.RequireRPCServerDurationSemconv(t, f.RequireHistogram("rpc.server.duration"), echo.ServiceName, "Echo")
	testutil.RequireRPCClientDurationSemconv(t, f.RequireHistogram("rpc.client.duration"),
		echo.ServiceName, "Echo", "127.0.0.1")
}
