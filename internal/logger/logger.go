// Package logger provides the process-wide structured logger: JSON to
// stdout by default, with optional OTLP export when OTEL_ENABLED is set.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

var (
	log          = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	programLevel = new(slog.LevelVar)
	shutdownFunc func(context.Context) error
)

// Init configures the logger from the environment: LOG_LEVEL selects
// the minimum level, OTEL_ENABLED=true routes records through the OTLP
// gRPC exporter. Call once from main; tests can skip it and get plain
// JSON logging at info level.
func Init(serviceName string) error {
	level, err := ParseLevel(envOr("LOG_LEVEL", "INFO"))
	if err != nil {
		level = slog.LevelInfo
	}
	programLevel.Set(level)

	if strings.ToLower(os.Getenv("OTEL_ENABLED")) != "true" {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: programLevel}))
		return nil
	}

	ctx := context.Background()
	exporter, err := otlploggrpc.New(ctx)
	if err != nil {
		return fmt.Errorf("otlp log exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(envOr("OTEL_SERVICE_NAME", serviceName))),
	)
	if err != nil {
		return fmt.Errorf("otel resource: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)
	shutdownFunc = provider.Shutdown
	log = otelslog.NewLogger(serviceName, otelslog.WithLoggerProvider(provider))
	return nil
}

// Shutdown flushes any pending exported records. No-op without OTEL.
func Shutdown(ctx context.Context) error {
	if shutdownFunc == nil {
		return nil
	}
	return shutdownFunc(ctx)
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func Debug(msg string, args ...any) { log.Debug(msg, args...) }
func Info(msg string, args ...any)  { log.Info(msg, args...) }
func Warn(msg string, args ...any)  { log.Warn(msg, args...) }
func Error(msg string, args ...any) { log.Error(msg, args...) }

// Fatal logs at error level, flushes exporters, and exits.
func Fatal(msg string, args ...any) {
	log.Error(msg, args...)
	_ = Shutdown(context.Background())
	os.Exit(1)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
