package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Sokol111/ecommerce-problem-json"

// GetTraceID extracts trace ID from context.
func GetTraceID(ctx context.Context) string {
	traceID, _ := GetTraceIDAndSpanID(ctx)
	return traceID
}

// GetTraceIDAndSpanID extracts both trace ID and span ID from context.
func GetTraceIDAndSpanID(ctx context.Context) (string, string) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}

// AddAttribute adds an attribute to the current span.
func AddAttribute(ctx context.Context, key string, value string) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(key, value))
}

// WithSpan starts a span and returns a function that ends it, recording err
// when it is not nil.
//
//	ctx, end := tracing.WithSpan(ctx, "orders.load")
//	defer func() { end(err) }()
func WithSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, func(error)) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, spanName, opts...)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
