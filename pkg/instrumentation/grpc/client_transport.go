// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package grpc

import (
	"context"
	"net/http"

	instrumenter "github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/inst-api"
)

// roundTripperService adapts an http.RoundTripper to a Service.
type roundTripperService struct {
	base http.RoundTripper
}

func (r roundTripperService) Ready(context.Context) error {
	return nil
}

func (r roundTripperService) Call(_ context.Context, request *http.Request) (*http.Response, error) {
	return r.base.RoundTrip(request)
}

type transport struct {
	service instrumenter.Service[*http.Request, *http.Response]
}

func (t *transport) RoundTrip(request *http.Request) (*http.Response, error) {
	return t.service.Call(request.Context(), request)
}

// NewTransport wraps base and records rpc.client.duration for every request
// that receives a response. The duration covers the time until the response
// headers arrive. Requests failing in base are returned unchanged and not
// recorded. A nil base means http.DefaultTransport.
func NewTransport(base http.RoundTripper, opts ...Option) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &transport{
		service: NewClientInterceptor[*http.Request, *http.Response](
			roundTripperService{base: base}, httpClientAttrsGetter{}, opts...),
	}
}
