package opentelemetry

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HandleSpanError marks span as errored and records err, if both are non-nil.
func HandleSpanError(span trace.Span, message string, err error) {
	if span == nil || err == nil {
		return
	}

	span.SetStatus(codes.Error, message+": "+err.Error())
	span.RecordError(err)
}

// HandleSpanEvent adds an event with the given attributes to span.
func HandleSpanEvent(span trace.Span, eventName string, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}

	span.AddEvent(eventName, trace.WithAttributes(attrs...))
}

// InjectHTTPContext injects the current trace context into outgoing HTTP headers.
func InjectHTTPContext(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}

// ExtractHTTPContext extracts trace context carried on incoming HTTP headers.
func ExtractHTTPContext(ctx context.Context, headers http.Header) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(headers))
}
