package metrics

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics exposes process gauges read on every collection.
type RuntimeMetrics struct {
	goroutines metric.Int64ObservableGauge
	heapAlloc  metric.Int64ObservableGauge
	gcCount    metric.Int64ObservableCounter
	uptime     metric.Float64ObservableCounter
	startTime  time.Time
}

func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	rm := &RuntimeMetrics{startTime: time.Now()}

	var err error

	rm.goroutines, err = meter.Int64ObservableGauge(
		"runtime.go.goroutines",
		metric.WithDescription("Number of goroutines"),
		metric.WithUnit("{goroutine}"),
	)
	if err != nil {
		return nil, err
	}

	rm.heapAlloc, err = meter.Int64ObservableGauge(
		"runtime.go.mem.heap_alloc",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	rm.gcCount, err = meter.Int64ObservableCounter(
		"runtime.go.gc.count",
		metric.WithDescription("Number of completed GC cycles"),
		metric.WithUnit("{gc}"),
	)
	if err != nil {
		return nil, err
	}

	rm.uptime, err = meter.Float64ObservableCounter(
		"election_service.uptime",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)

			o.ObserveInt64(rm.goroutines, int64(runtime.NumGoroutine()))
			o.ObserveInt64(rm.heapAlloc, int64(ms.HeapAlloc))
			o.ObserveInt64(rm.gcCount, int64(ms.NumGC))
			o.ObserveFloat64(rm.uptime, time.Since(rm.startTime).Seconds())
			return nil
		},
		rm.goroutines,
		rm.heapAlloc,
		rm.gcCount,
		rm.uptime,
	)
	if err != nil {
		return nil, err
	}

	return rm, nil
}

// RegisterServiceInfo publishes a constant gauge labelled with build info.
func RegisterServiceInfo(meter metric.Meter, serviceName, version, env string) error {
	_, err := meter.Int64ObservableGauge(
		"service.info",
		metric.WithDescription("Service build information"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(1, metric.WithAttributes(
				attribute.String("service_name", serviceName),
				attribute.String("version", version),
				attribute.String("environment", env),
			))
			return nil
		}),
	)
	return err
}
