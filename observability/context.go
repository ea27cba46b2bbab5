package observability

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/cloudkit/errors"
)

// OperationContext holds observability context for one provider request.
type OperationContext struct {
	Service   string
	Action    string
	Host      string
	RequestID string
	StartTime time.Time
	Metrics   *Metrics

	attempts int
}

// NewOperationContext creates a new operation context.
// If metrics is nil, metric recording is silently skipped.
func NewOperationContext(service, action, host, requestID string, metrics *Metrics) *OperationContext {
	return &OperationContext{
		Service:   service,
		Action:    action,
		Host:      host,
		RequestID: requestID,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

// StartSpanForOperation starts a client span and records the request start metric.
func (oc *OperationContext) StartSpanForOperation(ctx context.Context, spanName string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String(AttrService, oc.Service),
		attribute.String(AttrAction, oc.Action),
		attribute.String(AttrRequestID, oc.RequestID),
		semconv.HTTPMethod(http.MethodPost),
	)
	if oc.Host != "" {
		span.SetAttributes(semconv.ServerAddress(oc.Host))
	}

	if oc.Metrics != nil {
		oc.Metrics.RecordRequestStart(ctx)
	}
	return ctx, span
}

// RecordAttempt counts one HTTP attempt of the operation.
func (oc *OperationContext) RecordAttempt(ctx context.Context) {
	oc.attempts++
	if oc.Metrics != nil {
		oc.Metrics.RecordAttempt(ctx, oc.Service, oc.Action)
	}
}

// Attempts returns the number of attempts recorded so far.
func (oc *OperationContext) Attempts() int {
	return oc.attempts
}

// EndOperation ends the span and records request-end metrics. statusCode is
// the last HTTP status seen, or 0 when no response arrived.
func (oc *OperationContext) EndOperation(ctx context.Context, span trace.Span, statusCode int, err error) {
	duration := time.Since(oc.StartTime)
	status := Outcome(err)
	span.SetAttributes(attribute.String(AttrOutcome, status))

	if statusCode > 0 {
		span.SetAttributes(semconv.HTTPStatusCode(statusCode))
	}
	if err != nil {
		kind := string(errors.KindOf(err))
		if kind == "" {
			kind = "UNKNOWN"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorKind, kind))
		if e, ok := errors.As(err); ok && e.Code != "" {
			span.SetAttributes(attribute.String(AttrErrorCode, e.Code))
		}
		if oc.Metrics != nil {
			oc.Metrics.RecordError(ctx, oc.Service, oc.Action, strings.ToLower(kind))
		}
	}

	span.SetAttributes(
		attribute.Int(AttrAttempts, oc.attempts),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if oc.Metrics != nil {
		oc.Metrics.RecordRequestEnd(ctx, oc.Service, oc.Action, status, duration)
	}
}

// Duration returns the elapsed time since operation start.
func (oc *OperationContext) Duration() time.Duration {
	return time.Since(oc.StartTime)
}

// Outcome labels a finished request: "ok", "rejected" when the provider
// answered with an error code, "error" for every other failure.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.IsServiceKind(errors.KindOf(err)):
		return "rejected"
	default:
		return "error"
	}
}
