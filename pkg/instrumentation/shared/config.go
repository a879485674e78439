// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

const instrumentationEnvPrefix = "OTEL_INSTRUMENTATION_"

// Config is the process-wide instrumentation configuration read from the
// environment. Exporter selection (OTEL_METRICS_EXPORTER and the
// OTEL_EXPORTER_OTLP_* family) is left to the OpenTelemetry autoexport package.
type Config struct {
	LogLevel       slog.Level `env:"OTEL_LOG_LEVEL"                  envDefault:"info"`
	RuntimeMetrics bool       `env:"OTEL_GO_RUNTIME_METRICS_ENABLED" envDefault:"false"`
}

// LoadConfig parses Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

type instrumentationSwitch struct {
	Enabled string `env:"ENABLED"`
}

// Instrumented reports whether the named instrumentation is enabled.
// OTEL_INSTRUMENTATION_ENABLED=false turns every instrumentation off and
// OTEL_INSTRUMENTATION_<NAME>_ENABLED=false turns off a single one.
// Any other value, or no value, leaves it enabled.
func Instrumented(name string) bool {
	var global, specific instrumentationSwitch
	// String fields cannot fail to parse.
	_ = env.ParseWithOptions(&global, env.Options{Prefix: instrumentationEnvPrefix})
	_ = env.ParseWithOptions(&specific, env.Options{Prefix: instrumentationEnvPrefix + name + "_"})
	return global.Enabled != "false" && specific.Enabled != "false"
}
