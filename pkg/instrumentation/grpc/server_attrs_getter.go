// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package grpc

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/grpc/codes"
)

// grpcProtocolMajor is the HTTP version gRPC always runs on.
const grpcProtocolMajor = 2

// httpServerAttrsGetter implements RpcAttrsGetter for calls served through an http.Handler.
type httpServerAttrsGetter struct{}

func (httpServerAttrsGetter) GetRoute(request *httpServerRequest) string {
	return request.request.URL.Path
}

func (httpServerAttrsGetter) GetNetworkProtocolVersion(request *httpServerRequest) (int, int) {
	return request.request.ProtoMajor, request.request.ProtoMinor
}

// GetServerAddress is unused on the server side.
func (httpServerAttrsGetter) GetServerAddress(*httpServerRequest) string {
	return ""
}

func (httpServerAttrsGetter) GetErrorType(_ *httpServerRequest, response *httpServerResponse) string {
	return httpErrorType(response.statusCode)
}

// httpClientAttrsGetter implements RpcAttrsGetter for calls sent through an http.RoundTripper.
type httpClientAttrsGetter struct{}

func (httpClientAttrsGetter) GetRoute(request *http.Request) string {
	return request.URL.Path
}

func (httpClientAttrsGetter) GetNetworkProtocolVersion(request *http.Request) (int, int) {
	return request.ProtoMajor, request.ProtoMinor
}

func (httpClientAttrsGetter) GetServerAddress(request *http.Request) string {
	if host := request.URL.Hostname(); host != "" {
		return host
	}
	return hostOnly(request.Host)
}

func (httpClientAttrsGetter) GetErrorType(_ *http.Request, response *http.Response) string {
	return httpErrorType(response.StatusCode)
}

// grpcAttrsGetter implements RpcAttrsGetter for the native gRPC interceptors,
// on both sides of a call.
type grpcAttrsGetter struct{}

func (grpcAttrsGetter) GetRoute(request *grpcRequest) string {
	return request.methodName
}

func (grpcAttrsGetter) GetNetworkProtocolVersion(*grpcRequest) (int, int) {
	return grpcProtocolMajor, 0
}

func (grpcAttrsGetter) GetServerAddress(request *grpcRequest) string {
	return targetHost(request.target)
}

func (grpcAttrsGetter) GetErrorType(_ *grpcRequest, response *grpcResponse) string {
	if response.code == codes.OK {
		return ""
	}
	return response.code.String()
}

// httpErrorType renders 4xx and 5xx statuses as "<code> <reason>", for
// example "404 Not Found". Other statuses are not errors.
func httpErrorType(statusCode int) string {
	if statusCode < http.StatusBadRequest || statusCode > 599 {
		return ""
	}
	code := strconv.Itoa(statusCode)
	if text := http.StatusText(statusCode); text != "" {
		return code + " " + text
	}
	return code
}

// targetHost extracts the host of a gRPC dial target such as
// "dns:///peer.local:443" or "localhost:50051".
func targetHost(target string) string {
	if _, rest, ok := strings.Cut(target, "://"); ok {
		// scheme://[authority]/endpoint
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[i+1:]
		}
		target = rest
	}
	return hostOnly(target)
}

func hostOnly(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return hostport
}
