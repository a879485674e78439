// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package grpc

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	rpcconv "github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/inst-api-semconv/instrumenter/rpc"
	"github.com/open-telemetry/opentelemetry-go-rpc-metrics/pkg/instrumentation/shared"
)

// Option configures interceptors and transport adapters.
type Option func(*config)

type config struct {
	logger        *slog.Logger
	meterProvider metric.MeterProvider
	// serverAddress is nil unless WithServerAddress was given.
	serverAddress *string
	enabled       bool
}

// defaultConfig returns the baseline configuration. The enabled switch is read
// from the environment each time an interceptor is built.
func defaultConfig() *config {
	return &config{
		logger:  shared.GetLogger(),
		enabled: shared.Instrumented("GRPC"),
	}
}

// applyOptions applies the provided Option list, starting from defaultConfig.
func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.meterProvider == nil {
		cfg.meterProvider = otel.GetMeterProvider()
	}
	return cfg
}

// WithLogger overrides the logger used to report instrumentation failures.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithMeterProvider records into provider instead of the global MeterProvider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *config) {
		cfg.meterProvider = provider
	}
}

// WithServerAddress fixes the server.address label of client interceptors.
// A leading "http://" or "https://" is stripped once, so "https://" yields an
// empty label. Without this option the address is resolved from each outbound
// request.
func WithServerAddress(addr string) Option {
	return func(cfg *config) {
		canonical := rpcconv.CanonicalServerAddress(addr)
		cfg.serverAddress = &canonical
	}
}

// WithEnabled overrides the OTEL_INSTRUMENTATION_GRPC_ENABLED switch. A
// disabled interceptor forwards calls without measuring them.
func WithEnabled(enabled bool) Option {
	return func(cfg *config) {
		cfg.enabled = enabled
	}
}
