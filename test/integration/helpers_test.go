// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

//go:build integration

package test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/open-telemetry/opentelemetry-go-rpc-metrics/demo/grpc/echo"
	"github.com/open-telemetry/opentelemetry-go-rpc-metrics/test/testutil"
)

// newOTLPMeterProvider exports to the collector over OTLP/HTTP. The periodic
// interval is long so tests control exports through ForceFlush.
func newOTLPMeterProvider(t *testing.T, c *testutil.Collector) *sdkmetric.MeterProvider {
	t.Helper()
	exporter, err := otlpmetrichttp.New(t.Context(),
		otlpmetrichttp.WithEndpointURL(c.URL+"/v1/metrics"))
	require.NoError(t, err)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(
		sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(time.Hour))))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mp.Shutdown(ctx)
	})
	return mp
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return lis
}

// startNativeServer serves the echo service with grpc-go's own transport and
// returns its address.
func startNativeServer(t *testing.T, opts ...grpc.ServerOption) string {
	t.Helper()
	lis := listen(t)
	server := grpc.NewServer(opts...)
	echo.Register(server, &echo.Server{})
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)
	testutil.WaitForTCP(t, lis.Addr().String())
	return lis.Addr().String()
}

// startH2CServer serves the echo service through handler wrap over cleartext
// HTTP/2 and returns its address.
func startH2CServer(t *testing.T, wrap func(http.Handler) http.Handler) string {
	t.Helper()
	lis := listen(t)
	grpcServer := grpc.NewServer()
	echo.Register(grpcServer, &echo.Server{})
	server := &http.Server{
		Handler:           h2c.NewHandler(wrap(grpcServer), &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(func() {
		_ = server.Close()
		grpcServer.Stop()
	})
	testutil.WaitForTCP(t, lis.Addr().String())
	return lis.Addr().String()
}

func dial(t *testing.T, addr string, opts ...grpc.DialOption) *echo.Client {
	t.Helper()
	opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	conn, err := grpc.NewClient(addr, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return echo.NewClient(conn)
}
