// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestGetLogger(t *testing.T) {
	logger1 := GetLogger()
	require.NotNil(t, logger1)

	// Should return the same instance (singleton)
	logger2 := GetLogger()
	assert.Equal(t, logger1, logger2)
}

func TestSetupOTelSDK(t *testing.T) {
	t.Setenv("OTEL_METRICS_EXPORTER", "none")
	ctx := context.Background()

	err := SetupOTelSDK(ctx)
	require.NoError(t, err)

	// Should be idempotent
	err = SetupOTelSDK(ctx)
	require.NoError(t, err)

	_, ok := otel.GetMeterProvider().(*sdkmetric.MeterProvider)
	assert.True(t, ok, "global MeterProvider should be the SDK provider")

	require.NoError(t, ShutdownOTelSDK(ctx))
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
		assert.False(t, cfg.RuntimeMetrics)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("OTEL_LOG_LEVEL", "debug")
		t.Setenv("OTEL_GO_RUNTIME_METRICS_ENABLED", "true")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
		assert.True(t, cfg.RuntimeMetrics)
	})

	t.Run("invalid level", func(t *testing.T) {
		t.Setenv("OTEL_LOG_LEVEL", "loud")

		_, err := LoadConfig()
		require.ErrorContains(t, err, "parse env")
	})
}

func TestInstrumented(t *testing.T) {
	tests := []struct {
		name                string
		globalEnv           string
		specificEnv         string
		instrumentationName string
		expected            bool
	}{
		{
			name:                "default enabled",
			instrumentationName: "GRPC",
			expected:            true,
		},
		{
			name:                "globally disabled",
			globalEnv:           "false",
			instrumentationName: "GRPC",
			expected:            false,
		},
		{
			name:                "specifically disabled",
			specificEnv:         "false",
			instrumentationName: "GRPC",
			expected:            false,
		},
		{
			name:                "specifically enabled overrides nothing",
			specificEnv:         "true",
			instrumentationName: "GRPC",
			expected:            true,
		},
		{
			name:                "unrecognized value keeps it enabled",
			specificEnv:         "off",
			instrumentationName: "GRPC",
			expected:            true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.globalEnv != "" {
				t.Setenv("OTEL_INSTRUMENTATION_ENABLED", tt.globalEnv)
			}
			if tt.specificEnv != "" {
				envVar := "OTEL_INSTRUMENTATION_" + tt.instrumentationName + "_ENABLED"
				t.Setenv(envVar, tt.specificEnv)
			}

			result := Instrumented(tt.instrumentationName)
			assert.Equal(t, tt.expected, result)
		})
	}
}
