// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package grpc

import (
	"context"
	"net/http"

	instrumenter "github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/inst-api"
)

// handlerService adapts an http.Handler to a Service.
type handlerService struct {
	next http.Handler
}

func (h handlerService) Ready(context.Context) error {
	return nil
}

func (h handlerService) Call(_ context.Context, request *httpServerRequest) (*httpServerResponse, error) {
	ww := newWriterWrapper(request.writer)
	h.next.ServeHTTP(ww, request.request)
	return &httpServerResponse{statusCode: ww.statusCode}, nil
}

type handler struct {
	service instrumenter.Service[*httpServerRequest, *httpServerResponse]
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = h.service.Call(r.Context(), &httpServerRequest{writer: w, request: r})
}

// NewHandler wraps next, typically a *grpc.Server served over HTTP/2, and
// records rpc.server.duration for every request it completes. A request whose
// handler panics or whose client goes away is not recorded.
func NewHandler(next http.Handler, opts ...Option) http.Handler {
	return &handler{
		service: NewServerInterceptor[*httpServerRequest, *httpServerResponse](
			handlerService{next: next}, httpServerAttrsGetter{}, opts...),
	}
}

// ServerMiddleware returns NewHandler as a middleware constructor.
func ServerMiddleware(opts ...Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return NewHandler(next, opts...)
	}
}
