// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package grpc

import (
	"context"

	"go.opentelemetry.io/otel/metric"

	instrumenter "github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/inst-api"
	rpcconv "github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/inst-api-semconv/instrumenter/rpc"
)

const (
	instrumentationName    = "github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/instrumentation/grpc"
	instrumentationVersion = "0.1.0"
)

func newMetricsRegistry(cfg *config) *rpcconv.MetricsRegistry {
	meter := cfg.meterProvider.Meter(instrumentationName,
		metric.WithInstrumentationVersion(instrumentationVersion))
	return rpcconv.NewMetricsRegistry(cfg.logger, meter)
}

// buildServerInstrumenter builds an instrumenter recording rpc.server.duration.
// If the histogram cannot be registered the instrumenter is disabled and calls
// pass through unmeasured.
func buildServerInstrumenter[REQUEST any, RESPONSE any](
	getter rpcconv.RpcAttrsGetter[REQUEST, RESPONSE],
	cfg *config,
) *instrumenter.Instrumenter[REQUEST, RESPONSE] {
	builder := &instrumenter.Builder[REQUEST, RESPONSE]{}
	builder.Init().
		SetInstrumentEnabler(instrumenter.StaticEnabler(cfg.enabled)).
		AddAttributesExtractor(&rpcconv.ServerRpcAttrsExtractor[REQUEST, RESPONSE, rpcconv.RpcAttrsGetter[REQUEST, RESPONSE]]{
			Base: rpcconv.RpcAttrsExtractor[REQUEST, RESPONSE, rpcconv.RpcAttrsGetter[REQUEST, RESPONSE]]{
				Getter: getter,
			},
		})

	if cfg.enabled {
		serverMetric, err := newMetricsRegistry(cfg).NewRpcServerMetric()
		if err != nil {
			builder.SetInstrumentEnabler(instrumenter.StaticEnabler(false))
		} else {
			builder.AddOperationListeners(serverMetric)
		}
	}
	return builder.BuildInstrumenter()
}

// ServerInterceptor measures every call an inner service completes and records
// it on rpc.server.duration. It is itself a Service with the same request and
// response types as the service it wraps.
type ServerInterceptor[REQUEST any, RESPONSE any] struct {
	inner        instrumenter.Service[REQUEST, RESPONSE]
	instrumenter *instrumenter.Instrumenter[REQUEST, RESPONSE]
}

// NewServerInterceptor wraps inner. getter reads the route, protocol version
// and error type from inner's requests and responses.
func NewServerInterceptor[REQUEST any, RESPONSE any](
	inner instrumenter.Service[REQUEST, RESPONSE],
	getter rpcconv.RpcAttrsGetter[REQUEST, RESPONSE],
	opts ...Option,
) *ServerInterceptor[REQUEST, RESPONSE] {
	return &ServerInterceptor[REQUEST, RESPONSE]{
		inner:        inner,
		instrumenter: buildServerInstrumenter(getter, applyOptions(opts)),
	}
}

// Ready forwards to the inner service.
func (s *ServerInterceptor[REQUEST, RESPONSE]) Ready(ctx context.Context) error {
	return s.inner.Ready(ctx)
}

// Call forwards request to the inner service. The observation is recorded
// only when the inner service produces a response.
func (s *ServerInterceptor[REQUEST, RESPONSE]) Call(ctx context.Context, request REQUEST) (RESPONSE, error) {
	return measure(ctx, s.inner, s.instrumenter, request)
}

// ServerLayer wraps services in a ServerInterceptor.
type ServerLayer[REQUEST any, RESPONSE any] struct {
	getter rpcconv.RpcAttrsGetter[REQUEST, RESPONSE]
	opts   []Option
}

func NewServerLayer[REQUEST any, RESPONSE any](
	getter rpcconv.RpcAttrsGetter[REQUEST, RESPONSE],
	opts ...Option,
) ServerLayer[REQUEST, RESPONSE] {
	return ServerLayer[REQUEST, RESPONSE]{getter: getter, opts: opts}
}

func (l ServerLayer[REQUEST, RESPONSE]) Layer(
	inner instrumenter.Service[REQUEST, RESPONSE],
) instrumenter.Service[REQUEST, RESPONSE] {
	return NewServerInterceptor(inner, l.getter, l.opts...)
}

// measure runs one call through inner. Failed and cancelled calls are
// returned unchanged and never recorded.
func measure[REQUEST any, RESPONSE any](
	ctx context.Context,
	inner instrumenter.Service[REQUEST, RESPONSE],
	inst *instrumenter.Instrumenter[REQUEST, RESPONSE],
	request REQUEST,
) (RESPONSE, error) {
	op := inst.Start(request)
	response, err := instrumenter.Handle(inner).Call(ctx, request)
	if err != nil {
		return response, err
	}
	if ctx.Err() != nil {
		return response, nil
	}
	op.End(ctx, response)
	return response, nil
}
