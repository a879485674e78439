// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package main serves the echo service with rpc.server.duration recorded and
// exposes the histogram on a Prometheus endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/open-telemetry/opentelemetry-go-rpc-metrics/demo/grpc/echo"
	otelgrpc "github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/instrumentation/grpc"
	"github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/instrumentation/shared"
)

const (
	exitCodeFailure = 1

	modeNative = "native"
	modeH2C    = "h2c"

	shutdownTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "echo-server",
		Usage: "Serve the echo gRPC service with RPC duration metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":50051",
				Usage:   "gRPC listen address",
				Sources: cli.EnvVars("ECHO_ADDR"),
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Value:   ":9464",
				Usage:   "Prometheus scrape address",
				Sources: cli.EnvVars("ECHO_METRICS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "mode",
				Value:   modeNative,
				Usage:   "how requests are measured: native (gRPC interceptors) or h2c (HTTP handler)",
				Sources: cli.EnvVars("ECHO_MODE"),
				Validator: func(mode string) error {
					if mode != modeNative && mode != modeH2C {
						return fmt.Errorf("unknown mode %q", mode)
					}
					return nil
				},
			},
		},
		Action: run,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		shared.GetLogger().Error("server failed", "error", err)
		os.Exit(exitCodeFailure)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger := shared.GetLogger()

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("create prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to shut down meter provider", "error", err)
		}
	}()

	opts := []otelgrpc.Option{otelgrpc.WithMeterProvider(mp), otelgrpc.WithLogger(logger)}
	mode := cmd.String("mode")

	var serverOpts []grpc.ServerOption
	if mode == modeNative {
		serverOpts = otelgrpc.ServerOptions(opts...)
	}
	grpcServer := grpc.NewServer(serverOpts...)
	echo.Register(grpcServer, &echo.Server{Logger: logger})

	lis, err := net.Listen("tcp", cmd.String("addr"))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              cmd.String("metrics-addr"),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	switch mode {
	case modeH2C:
		h2cServer := &http.Server{
			Handler:           h2c.NewHandler(otelgrpc.NewHandler(grpcServer, opts...), &http2.Server{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error { return ignoreClosed(h2cServer.Serve(lis)) })
		g.Go(func() error {
			<-ctx.Done()
			return shutdownHTTP(h2cServer)
		})
	default:
		g.Go(func() error { return grpcServer.Serve(lis) })
		g.Go(func() error {
			<-ctx.Done()
			grpcServer.GracefulStop()
			return nil
		})
	}
	g.Go(func() error { return ignoreClosed(metricsServer.ListenAndServe()) })
	g.Go(func() error {
		<-ctx.Done()
		return shutdownHTTP(metricsServer)
	})

	logger.Info("server started",
		"address", lis.Addr().String(),
		"metrics_address", metricsServer.Addr,
		"mode", mode)
	return g.Wait()
}

func shutdownHTTP(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
