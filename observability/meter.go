package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/cloudkit/logger"
)

// InitMeter installs a global meter provider exporting to cfg.Endpoint
// every cfg.Interval. The caller shuts the provider down on exit.
func InitMeter(ctx context.Context, cfg ExporterConfig) (*sdkmetric.MeterProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := cfg.resource()
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Metric instrument names.
const (
	MetricRequests = "cloudkit.dispatch.requests"
	MetricDuration = "cloudkit.dispatch.duration"
	MetricAttempts = "cloudkit.dispatch.attempts"
	MetricErrors   = "cloudkit.dispatch.errors"
	MetricActive   = "cloudkit.dispatch.active"
)

// Metrics holds the instruments recorded for provider requests.
type Metrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	attempts metric.Int64Counter
	errors   metric.Int64Counter
	active   metric.Int64UpDownCounter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requests, err := meter.Int64Counter(MetricRequests,
		metric.WithDescription("Total number of provider requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequests, err)
	}

	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Duration of provider requests including retries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricDuration, err)
	}

	attempts, err := meter.Int64Counter(MetricAttempts,
		metric.WithDescription("Total number of HTTP attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricAttempts, err)
	}

	errs, err := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Failed provider requests by error kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrors, err)
	}

	active, err := meter.Int64UpDownCounter(MetricActive,
		metric.WithDescription("Number of in-flight provider requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricActive, err)
	}

	return &Metrics{
		requests: requests,
		duration: duration,
		attempts: attempts,
		errors:   errs,
		active:   active,
	}, nil
}

// RecordRequestStart increments the in-flight request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	m.active.Add(ctx, 1)
}

// RecordAttempt counts one HTTP attempt.
func (m *Metrics) RecordAttempt(ctx context.Context, service, action string) {
	m.attempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("action", action),
	))
}

// RecordRequestEnd decrements in-flight requests and records the completed request.
func (m *Metrics) RecordRequestEnd(ctx context.Context, service, action, status string, duration time.Duration) {
	m.active.Add(ctx, -1)
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("action", action),
		attribute.String("status", status),
	))
	m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("action", action),
	))
}

// RecordError counts a failed request by error kind.
func (m *Metrics) RecordError(ctx context.Context, service, action, kind string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("action", action),
		attribute.String("kind", kind),
	))
}
