// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"strings"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"
)

const (
	rpcSystemGRPC       = "grpc"
	networkProtocolHTTP = "http"
	// gRPC runs over HTTP/2 on TCP. HTTP/3 would make this wrong.
	networkTransportTCP = "tcp"

	// UnknownServerAddress is recorded when a client call has no resolvable target host.
	UnknownServerAddress = "unknown"

	defaultAttributesSliceSize = 8
)

// RpcAttrsExtractor builds the label set shared by both sides of a call.
type RpcAttrsExtractor[REQUEST any, RESPONSE any, GETTER RpcAttrsGetter[REQUEST, RESPONSE]] struct {
	Getter GETTER
}

// OnStart appends the system, protocol, transport, method and service labels.
func (r *RpcAttrsExtractor[REQUEST, RESPONSE, GETTER]) OnStart(
	attributes []attribute.KeyValue,
	request REQUEST,
) []attribute.KeyValue {
	route := ParseRoute(r.Getter.GetRoute(request))
	return append(attributes,
		semconv.RPCSystemKey.String(rpcSystemGRPC),
		semconv.NetworkProtocolNameKey.String(networkProtocolHTTP),
		semconv.NetworkTransportKey.String(networkTransportTCP),
		semconv.RPCMethodKey.String(route.Method),
		semconv.RPCServiceKey.String(route.Service),
	)
}

func (r *RpcAttrsExtractor[REQUEST, RESPONSE, GETTER]) appendProtocolVersion(
	attributes []attribute.KeyValue,
	request REQUEST,
) []attribute.KeyValue {
	if version, ok := NetworkProtocolVersion(r.Getter.GetNetworkProtocolVersion(request)); ok {
		attributes = append(attributes, semconv.NetworkProtocolVersionKey.String(version))
	}
	return attributes
}

// OnEnd appends error.type when the response status is a client or server error.
func (r *RpcAttrsExtractor[REQUEST, RESPONSE, GETTER]) OnEnd(
	attributes []attribute.KeyValue,
	request REQUEST,
	response RESPONSE,
) []attribute.KeyValue {
	if errorType := r.Getter.GetErrorType(request, response); errorType != "" {
		attributes = append(attributes, semconv.ErrorTypeKey.String(errorType))
	}
	return attributes
}

type ServerRpcAttrsExtractor[REQUEST any, RESPONSE any, GETTER RpcAttrsGetter[REQUEST, RESPONSE]] struct {
	Base RpcAttrsExtractor[REQUEST, RESPONSE, GETTER]
}

func (s *ServerRpcAttrsExtractor[REQUEST, RESPONSE, GETTER]) OnStart(
	attributes []attribute.KeyValue,
	request REQUEST,
) []attribute.KeyValue {
	attributes = s.Base.OnStart(attributes, request)
	return s.Base.appendProtocolVersion(attributes, request)
}

func (s *ServerRpcAttrsExtractor[REQUEST, RESPONSE, GETTER]) OnEnd(
	attributes []attribute.KeyValue,
	request REQUEST,
	response RESPONSE,
) []attribute.KeyValue {
	return s.Base.OnEnd(attributes, request, response)
}

type ClientRpcAttrsExtractor[REQUEST any, RESPONSE any, GETTER RpcAttrsGetter[REQUEST, RESPONSE]] struct {
	Base RpcAttrsExtractor[REQUEST, RESPONSE, GETTER]
	// ServerAddress is the canonical address fixed at construction. It is used
	// only when FixedServerAddress is set, and may then be empty.
	ServerAddress      string
	FixedServerAddress bool
}

func (c *ClientRpcAttrsExtractor[REQUEST, RESPONSE, GETTER]) OnStart(
	attributes []attribute.KeyValue,
	request REQUEST,
) []attribute.KeyValue {
	attributes = c.Base.OnStart(attributes, request)
	attributes = append(attributes, semconv.ServerAddressKey.String(c.serverAddress(request)))
	return c.Base.appendProtocolVersion(attributes, request)
}

func (c *ClientRpcAttrsExtractor[REQUEST, RESPONSE, GETTER]) OnEnd(
	attributes []attribute.KeyValue,
	request REQUEST,
	response RESPONSE,
) []attribute.KeyValue {
	return c.Base.OnEnd(attributes, request, response)
}

func (c *ClientRpcAttrsExtractor[REQUEST, RESPONSE, GETTER]) serverAddress(request REQUEST) string {
	if c.FixedServerAddress {
		return c.ServerAddress
	}
	if addr := CanonicalServerAddress(c.Base.Getter.GetServerAddress(request)); addr != "" {
		return addr
	}
	return UnknownServerAddress
}

// CanonicalServerAddress strips one leading "http://" or "https://" scheme.
// Ports, trailing slashes and case are left alone.
func CanonicalServerAddress(addr string) string {
	if rest, ok := strings.CutPrefix(addr, "http://"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(addr, "https://"); ok {
		return rest
	}
	return addr
}

// NewAttributes returns an empty label set sized for one call.
func NewAttributes() []attribute.KeyValue {
	return make([]attribute.KeyValue, 0, defaultAttributesSliceSize)
}
