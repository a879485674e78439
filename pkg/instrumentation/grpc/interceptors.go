// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	instrumenter "github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/inst-api"
)

// serverInvoker runs a server handler. Every error a handler returns becomes
// the status of the call, so the call always completes.
var serverInvoker = instrumenter.ServiceFunc[*grpcRequest, *grpcResponse](
	func(ctx context.Context, request *grpcRequest) (*grpcResponse, error) {
		err := request.invoke(ctx)
		return &grpcResponse{code: status.Code(err), err: err}, nil
	})

// clientInvoker runs a client invoker. A call that never reached a server, such
// as a dial or connection failure reported as Unavailable, fails. So do errors
// that carry no gRPC status.
var clientInvoker = instrumenter.ServiceFunc[*grpcRequest, *grpcResponse](
	func(ctx context.Context, request *grpcRequest) (*grpcResponse, error) {
		err := request.invoke(ctx)
		if err != nil && request.peer.Addr == nil {
			return nil, err
		}
		st, ok := status.FromError(err)
		if !ok {
			return nil, err
		}
		return &grpcResponse{code: st.Code(), err: err}, nil
	})

// UnaryServerInterceptor records rpc.server.duration for unary calls.
func UnaryServerInterceptor(opts ...Option) grpc.UnaryServerInterceptor {
	interceptor := NewServerInterceptor[*grpcRequest, *grpcResponse](serverInvoker, grpcAttrsGetter{}, opts...)
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var reply any
		response, err := interceptor.Call(ctx, &grpcRequest{
			methodName: info.FullMethod,
			invoke: func(ctx context.Context) error {
				var err error
				reply, err = handler(ctx, req)
				return err
			},
		})
		if err != nil {
			return reply, err
		}
		return reply, response.err
	}
}

// StreamServerInterceptor records rpc.server.duration for streaming calls.
// The duration covers the whole stream.
func StreamServerInterceptor(opts ...Option) grpc.StreamServerInterceptor {
	interceptor := NewServerInterceptor[*grpcRequest, *grpcResponse](serverInvoker, grpcAttrsGetter{}, opts...)
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		response, err := interceptor.Call(ss.Context(), &grpcRequest{
			methodName: info.FullMethod,
			invoke: func(context.Context) error {
				return handler(srv, ss)
			},
		})
		if err != nil {
			return err
		}
		return response.err
	}
}

// UnaryClientInterceptor records rpc.client.duration for unary calls. Without
// WithServerAddress the server.address label is the host of the connection's
// dial target.
func UnaryClientInterceptor(opts ...Option) grpc.UnaryClientInterceptor {
	interceptor := NewClientInterceptor[*grpcRequest, *grpcResponse](clientInvoker, grpcAttrsGetter{}, opts...)
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		callOpts ...grpc.CallOption,
	) error {
		request := &grpcRequest{methodName: method}
		request.invoke = func(ctx context.Context) error {
			opts := append(callOpts[:len(callOpts):len(callOpts)], grpc.Peer(&request.peer))
			return invoker(ctx, method, req, reply, cc, opts...)
		}
		if cc != nil {
			request.target = cc.Target()
		}
		response, err := interceptor.Call(ctx, request)
		if err != nil {
			return err
		}
		return response.err
	}
}

// ServerOptions returns the server options installing the unary and stream
// server interceptors.
func ServerOptions(opts ...Option) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor(opts...)),
		grpc.ChainStreamInterceptor(StreamServerInterceptor(opts...)),
	}
}

// DialOptions returns the dial options installing the unary client interceptor.
func DialOptions(opts ...Option) []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithChainUnaryInterceptor(UnaryClientInterceptor(opts...)),
	}
}
