// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package echo is a small gRPC service used by the demo binaries and the
// integration tests. Messages are wrapperspb.StringValue so no generated code
// is needed.
package echo

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "echo.Echo"
	EchoMethod  = "/echo.Echo/Echo"
	ChatMethod  = "/echo.Echo/Chat"

	// NotFoundValue makes Echo fail with codes.NotFound.
	NotFoundValue = "missing"
	// FailValue makes Echo fail with an error that carries no status.
	FailValue = "fail"
)

// EchoServer is the server API for the echo service.
type EchoServer interface {
	Echo(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Chat(grpc.ServerStream) error
}

// Server answers every message with the same message.
type Server struct {
	Logger *slog.Logger
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Server) Echo(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	s.logger().Debug("received request", "value", in.GetValue())
	switch in.GetValue() {
	case NotFoundValue:
		return nil, status.Error(codes.NotFound, "value not found")
	case FailValue:
		return nil, errors.New("echo failed")
	}
	return wrapperspb.String(in.GetValue()), nil
}

func (s *Server) Chat(stream grpc.ServerStream) error {
	for {
		in := new(wrapperspb.StringValue)
		if err := stream.RecvMsg(in); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		s.logger().Debug("received stream request", "value", in.GetValue())
		if err := stream.SendMsg(in); err != nil {
			return err
		}
	}
}

func echoHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EchoServer).Echo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EchoMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EchoServer).Echo(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func chatHandler(srv any, stream grpc.ServerStream) error {
	return srv.(EchoServer).Chat(stream)
}

// ServiceDesc describes the echo service for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Read-only service description
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EchoServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Echo", Handler: echoHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Chat", Handler: chatHandler, ServerStreams: true, ClientStreams: true},
	},
}

// Register adds the echo service to s.
func Register(s grpc.ServiceRegistrar, srv EchoServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls the echo service over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Echo(ctx context.Context, value string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, EchoMethod, wrapperspb.String(value), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

// Chat sends values on one stream and returns the replies.
func (c *Client) Chat(ctx context.Context, values []string, opts ...grpc.CallOption) ([]string, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], ChatMethod, opts...)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if err := stream.SendMsg(wrapperspb.String(v)); err != nil {
			return nil, err
		}
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	replies := make([]string, 0, len(values))
	for {
		out := new(wrapperspb.StringValue)
		if err := stream.RecvMsg(out); err != nil {
			if errors.Is(err, io.EOF) {
				return replies, nil
			}
			return replies, err
		}
		replies = append(replies, out.GetValue())
	}
}
