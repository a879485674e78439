// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package main calls the echo service and records rpc.client.duration through
// the SDK configured from OTEL_* environment variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/open-telemetry/opentelemetry-go-rpc-metrics/demo/grpc/echo"
	otelgrpc "github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/instrumentation/grpc"
	"github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/instrumentation/shared"
)

const (
	exitCodeFailure = 1
	shutdownTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "echo-client",
		Usage: "Call the echo gRPC service with RPC duration metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "target",
				Value:   "localhost:50051",
				Usage:   "gRPC dial target",
				Sources: cli.EnvVars("ECHO_TARGET"),
			},
			&cli.StringFlag{
				Name:  "server-address",
				Usage: "fixed server.address label; defaults to the host of --target",
			},
			&cli.StringFlag{
				Name:  "message",
				Value: "hello",
				Usage: "message to echo; \"" + echo.NotFoundValue + "\" yields NotFound",
			},
			&cli.StringFlag{
				Name:  "count",
				Value: "10",
				Usage: "number of unary calls",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Value: 500 * time.Millisecond,
				Usage: "pause between calls",
			},
			&cli.BoolFlag{
				Name:  "stream",
				Usage: "also send every message on one Chat stream",
			},
		},
		Action: run,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		shared.GetLogger().Error("client failed", "error", err)
		os.Exit(exitCodeFailure)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger := shared.GetLogger()

	if err := shared.SetupOTelSDK(ctx); err != nil {
		return fmt.Errorf("setup otel sdk: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shared.ShutdownOTelSDK(shutdownCtx); err != nil {
			logger.Warn("failed to shut down otel sdk", "error", err)
		}
	}()

	count, err := strconv.Atoi(cmd.String("count"))
	if err != nil || count < 0 {
		return cli.Exit(fmt.Sprintf("invalid --count %q", cmd.String("count")), exitCodeFailure)
	}

	opts := []otelgrpc.Option{otelgrpc.WithLogger(logger)}
	if addr := cmd.String("server-address"); addr != "" {
		opts = append(opts, otelgrpc.WithServerAddress(addr))
	}
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, otelgrpc.DialOptions(opts...)...)

	conn, err := grpc.NewClient(cmd.String("target"), dialOpts...)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cmd.String("target"), err)
	}
	defer conn.Close()
	client := echo.NewClient(conn)

	message := cmd.String("message")
	for i := 0; i < count; i++ {
		reply, err := client.Echo(ctx, message)
		switch {
		case err == nil:
			logger.Info("echo", "reply", reply)
		case status.Code(err) == codes.Canceled:
			return nil
		default:
			logger.Warn("echo failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(cmd.Duration("interval")):
		}
	}

	if cmd.Bool("stream") {
		messages := make([]string, count)
		for i := range messages {
			messages[i] = fmt.Sprintf("%s-%d", message, i)
		}
		replies, err := client.Chat(ctx, messages)
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}
		logger.Info("chat", "replies", len(replies))
	}
	return nil
}
