// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package grpc

import (
	"context"

	instrumenter "github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/inst-api"
	rpcconv "github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/inst-api-semconv/instrumenter/rpc"
)

// buildClientInstrumenter builds an instrumenter recording rpc.client.duration.
func buildClientInstrumenter[REQUEST any, RESPONSE any](
	getter rpcconv.RpcAttrsGetter[REQUEST, RESPONSE],
	cfg *config,
) *instrumenter.Instrumenter[REQUEST, RESPONSE] {
	extractor := &rpcconv.ClientRpcAttrsExtractor[REQUEST, RESPONSE, rpcconv.RpcAttrsGetter[REQUEST, RESPONSE]]{
		Base: rpcconv.RpcAttrsExtractor[REQUEST, RESPONSE, rpcconv.RpcAttrsGetter[REQUEST, RESPONSE]]{
			Getter: getter,
		},
	}
	if cfg.serverAddress != nil {
		extractor.ServerAddress = *cfg.serverAddress
		extractor.FixedServerAddress = true
	}

	builder := &instrumenter.Builder[REQUEST, RESPONSE]{}
	builder.Init().
		SetInstrumentEnabler(instrumenter.StaticEnabler(cfg.enabled)).
		AddAttributesExtractor(extractor)

	if cfg.enabled {
		clientMetric, err := newMetricsRegistry(cfg).NewRpcClientMetric()
		if err != nil {
			builder.SetInstrumentEnabler(instrumenter.StaticEnabler(false))
		} else {
			builder.AddOperationListeners(clientMetric)
		}
	}
	return builder.BuildInstrumenter()
}

// ClientInterceptor measures every call an inner service completes and records
// it on rpc.client.duration, labelled with the address of the remote server.
type ClientInterceptor[REQUEST any, RESPONSE any] struct {
	inner        instrumenter.Service[REQUEST, RESPONSE]
	instrumenter *instrumenter.Instrumenter[REQUEST, RESPONSE]
}

// NewClientInterceptor wraps inner. Without WithServerAddress the
// server.address label is resolved from each request through getter, and
// falls back to "unknown".
func NewClientInterceptor[REQUEST any, RESPONSE any](
	inner instrumenter.Service[REQUEST, RESPONSE],
	getter rpcconv.RpcAttrsGetter[REQUEST, RESPONSE],
	opts ...Option,
) *ClientInterceptor[REQUEST, RESPONSE] {
	return &ClientInterceptor[REQUEST, RESPONSE]{
		inner:        inner,
		instrumenter: buildClientInstrumenter(getter, applyOptions(opts)),
	}
}

// Ready forwards to the inner service.
func (c *ClientInterceptor[REQUEST, RESPONSE]) Ready(ctx context.Context) error {
	return c.inner.Ready(ctx)
}

// Call forwards request to the inner service. The observation is recorded
// only when the inner service produces a response.
func (c *ClientInterceptor[REQUEST, RESPONSE]) Call(ctx context.Context, request REQUEST) (RESPONSE, error) {
	return measure(ctx, c.inner, c.instrumenter, request)
}

// ClientLayer wraps services in a ClientInterceptor.
type ClientLayer[REQUEST any, RESPONSE any] struct {
	getter rpcconv.RpcAttrsGetter[REQUEST, RESPONSE]
	opts   []Option
}

func NewClientLayer[REQUEST any, RESPONSE any](
	getter rpcconv.RpcAttrsGetter[REQUEST, RESPONSE],
	opts ...Option,
) ClientLayer[REQUEST, RESPONSE] {
	return ClientLayer[REQUEST, RESPONSE]{getter: getter, opts: opts}
}

func (l ClientLayer[REQUEST, RESPONSE]) Layer(
	inner instrumenter.Service[REQUEST, RESPONSE],
) instrumenter.Service[REQUEST, RESPONSE] {
	return NewClientInterceptor(inner, l.getter, l.opts...)
}
