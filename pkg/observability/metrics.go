package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "ice-breakun/backend"

// Metrics owns a meter provider exported through its own Prometheus registry
type Metrics struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider
	meter    metric.Meter

	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates the HTTP instruments
func NewMetrics(serviceName, version string) (*Metrics, error) {
	registry := prometheus.NewRegistry()
	exp, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithoutScopeInfo(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}

	res, err := newResource(serviceName, version)
	if err != nil {
		return nil, fmt.Errorf("failed to build resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exp),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(meterName)

	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests served"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		registry: registry,
		provider: provider,
		meter:    meter,
		requests: requests,
		duration: duration,
	}, nil
}

// RegisterGauge exposes a value sampled at scrape time
func (m *Metrics) RegisterGauge(name, description string, sample func() int64) error {
	_, err := m.meter.Int64ObservableGauge(name,
		metric.WithDescription(description),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(sample())
			return nil
		}))
	return err
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Shutdown stops the meter provider
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
