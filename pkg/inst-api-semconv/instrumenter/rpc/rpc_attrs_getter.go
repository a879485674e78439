// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

// RpcAttrsGetter defines the interface for extracting RPC attributes from requests
// and responses. Implementations adapt a transport's own request/response
// representation; every method must be safe to call from concurrent calls.
type RpcAttrsGetter[REQUEST any, RESPONSE any] interface {
	// GetRoute returns the route path of the call, e.g. "/helloworld.Greeter/SayHello".
	GetRoute(request REQUEST) string

	// GetNetworkProtocolVersion returns the major and minor HTTP version the
	// request travels on.
	GetNetworkProtocolVersion(request REQUEST) (major, minor int)

	// GetServerAddress returns the target host of an outbound request, or an
	// empty string when it cannot be resolved.
	GetServerAddress(request REQUEST) string

	// GetErrorType returns the canonical status string when the response
	// carries a client or server error status, and an empty string otherwise.
	GetErrorType(request REQUEST, response RESPONSE) string
}
