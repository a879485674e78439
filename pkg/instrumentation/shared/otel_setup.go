// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"go.opentelemetry.io/contrib/exporters/autoexport"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

var (
	setupOnce     sync.Once
	setupErr      error
	meterProvider *sdkmetric.MeterProvider

	logger     *slog.Logger
	loggerOnce sync.Once
)

// GetLogger returns a shared logger instance for instrumentation
// It uses OTEL_LOG_LEVEL environment variable (debug, info, warn, error)
func GetLogger() *slog.Logger {
	loggerOnce.Do(func() {
		cfg, err := LoadConfig()
		level := cfg.LogLevel
		if err != nil {
			level = slog.LevelInfo
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
		if err != nil {
			logger.Warn("invalid instrumentation config, using defaults", "error", err)
		}
	})
	return logger
}

// SetupOTelSDK installs a global MeterProvider if not already initialized.
// This function is idempotent and safe to call multiple times.
// Returns error only on first initialization failure.
//
// The metric exporter is selected through environment variables:
// - OTEL_METRICS_EXPORTER: otlp (default), prometheus, console or none
// - OTEL_EXPORTER_OTLP_ENDPOINT / OTEL_EXPORTER_OTLP_PROTOCOL for otlp
// - OTEL_GO_RUNTIME_METRICS_ENABLED=true adds Go runtime metrics
func SetupOTelSDK(ctx context.Context) error {
	setupOnce.Do(func() {
		log := GetLogger()

		cfg, err := LoadConfig()
		if err != nil {
			setupErr = err
			return
		}

		reader, err := autoexport.NewMetricReader(ctx)
		if err != nil {
			setupErr = fmt.Errorf("create metric reader: %w", err)
			log.Error("failed to create metric reader", "error", err)
			return
		}

		res, err := resource.New(ctx,
			resource.WithFromEnv(),
			resource.WithTelemetrySDK(),
			resource.WithProcessRuntimeName(),
		)
		if err != nil {
			// A partial resource is still usable.
			log.Warn("failed to detect resource", "error", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(reader),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(mp)
		meterProvider = mp

		if cfg.RuntimeMetrics {
			if err := runtime.Start(runtime.WithMeterProvider(mp)); err != nil {
				log.Warn("failed to start runtime metrics", "error", err)
			}
		}

		log.Info("OTel SDK initialized",
			"provider", "MeterProvider",
			"runtime_metrics", cfg.RuntimeMetrics)
	})
	return setupErr
}

// ShutdownOTelSDK flushes and stops the MeterProvider installed by
// SetupOTelSDK. It is a no-op when the SDK was never set up.
func ShutdownOTelSDK(ctx context.Context) error {
	if meterProvider == nil {
		return nil
	}
	return errors.Join(meterProvider.ForceFlush(ctx), meterProvider.Shutdown(ctx))
}
