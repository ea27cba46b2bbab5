// Package observability provides OpenTelemetry tracing and metrics for
// provider requests.
//
// Both exporters share one ExporterConfig:
//
//	cfg := observability.DefaultExporterConfig("billing")
//	tp, err := observability.InitTracer(ctx, cfg)
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, cfg)
//	defer mp.Shutdown(ctx)
//	metrics, err := observability.NewMetrics(mp.Meter(observability.InstrumentationName))
//
// Each dispatched request is tracked by an OperationContext which opens the
// "cloudkit.dispatch" span and records request, attempt and error metrics.
// Requests end with one of three outcomes: ok, rejected (the provider
// returned an error code) or error.
package observability
