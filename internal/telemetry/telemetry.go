package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"election-service/internal/config"
	"election-service/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const defaultEndpoint = "otel-collector.infra.svc.cluster.local:4317"

type Telemetry struct {
	MeterProvider *sdkmetric.MeterProvider
	Meter         metric.Meter
	Metrics       *metrics.Metrics
}

// Init wires the OTLP metric exporter when telemetry is enabled and builds
// the service metrics on top of the resulting meter. With telemetry
// disabled the global no-op provider is used and MeterProvider is nil.
func Init(ctx context.Context, cfg config.TelemetryConfig, serviceName, serviceVersion string, logger *slog.Logger) (*Telemetry, error) {
	t := &Telemetry{}

	if cfg.Enabled {
		mp, err := initMeterProvider(ctx, cfg, serviceName, serviceVersion, logger)
		if err != nil {
			return nil, err
		}
		t.MeterProvider = mp
	}

	t.Meter = otel.Meter(serviceName)
	m, err := metrics.New(t.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	t.Metrics = m

	logger.Info("metrics collectors initialized", "otlp_enabled", cfg.Enabled)
	return t, nil
}

func initMeterProvider(ctx context.Context, cfg config.TelemetryConfig, serviceName, serviceVersion string, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	endpoint := cfg.OTLPEndpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	logger.Info("initializing OTel metrics", "endpoint", endpoint)

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(10*time.Second))),
	)

	otel.SetMeterProvider(mp)
	return mp, nil
}

func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.MeterProvider == nil {
		return nil
	}
	if err := t.MeterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}
