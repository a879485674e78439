// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/open-telemetry/opentelemetry-go-rpc-metrics/demo/grpc/echo"
)

const echoMethod = echo.EchoMethod

func newEchoServer(opts ...grpc.ServerOption) *grpc.Server {
	server := grpc.NewServer(opts...)
	echo.Register(server, &echo.Server{})
	return server
}

func callEcho(ctx context.Context, conn *grpc.ClientConn, value string) (string, error) {
	return echo.NewClient(conn).Echo(ctx, value)
}

func chat(ctx context.Context, conn *grpc.ClientConn, values ...string) ([]string, error) {
	return echo.NewClient(conn).Chat(ctx, values)
}
