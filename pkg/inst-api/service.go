// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package instrumenter

import "context"

// Service is an asynchronous request/response capability that can be wrapped by
// instrumentation without changing its call contract.
//
// A Service value is a handle: it is copied into every call and may be used by
// many goroutines at once. Implementations whose handles carry per-call state
// should also implement Cloner so that each call works on its own copy.
type Service[REQUEST any, RESPONSE any] interface {
	// Ready reports whether the service can accept a call. Wrappers forward it
	// untouched and never apply admission control of their own.
	Ready(ctx context.Context) error
	// Call maps one request to one response or failure.
	Call(ctx context.Context, request REQUEST) (RESPONSE, error)
}

// Cloner is implemented by services that must be duplicated before each call.
type Cloner[REQUEST any, RESPONSE any] interface {
	Clone() Service[REQUEST, RESPONSE]
}

// Layer decorates a Service with another Service of the same shape.
type Layer[REQUEST any, RESPONSE any] interface {
	Layer(inner Service[REQUEST, RESPONSE]) Service[REQUEST, RESPONSE]
}

// ServiceFunc adapts an ordinary function to a Service that is always ready.
type ServiceFunc[REQUEST any, RESPONSE any] func(ctx context.Context, request REQUEST) (RESPONSE, error)

func (f ServiceFunc[REQUEST, RESPONSE]) Ready(context.Context) error {
	return nil
}

func (f ServiceFunc[REQUEST, RESPONSE]) Call(ctx context.Context, request REQUEST) (RESPONSE, error) {
	return f(ctx, request)
}

// Handle returns the handle a single call should use: a clone when the service
// implements Cloner, otherwise the (already copied) service value itself.
func Handle[REQUEST any, RESPONSE any](s Service[REQUEST, RESPONSE]) Service[REQUEST, RESPONSE] {
	if c, ok := s.(Cloner[REQUEST, RESPONSE]); ok {
		return c.Clone()
	}
	return s
}
