// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package grpc

import (
	"context"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
)

// httpServerRequest is an inbound call as seen by an http.Handler. The
// response writer travels with the request so the handler service can write
// the response.
type httpServerRequest struct {
	writer  http.ResponseWriter
	request *http.Request
}

// httpServerResponse is what the wrapped handler produced.
type httpServerResponse struct {
	statusCode int
}

// grpcRequest is a call seen by a native gRPC interceptor.
type grpcRequest struct {
	methodName string
	// target is the dial target of the client connection. Empty on the server.
	target string
	// peer is filled in by the client invoker once the call is bound to a
	// transport. A zero Addr means the call never left the client.
	peer   peer.Peer
	invoke func(ctx context.Context) error
}

// grpcResponse carries the final status code of a call together with the error
// the handler or invoker returned, which is handed back to gRPC unchanged.
type grpcResponse struct {
	code codes.Code
	err  error
}
