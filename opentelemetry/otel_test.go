package opentelemetry

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestHandleSpanError_NilSafe(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		HandleSpanError(nil, "msg", assert.AnError)
	})

	_, span := noop.NewTracerProvider().Tracer("test").Start(context.Background(), "op")

	assert.NotPanics(t, func() {
		HandleSpanError(span, "msg", nil)
	})

	assert.NotPanics(t, func() {
		HandleSpanError(span, "msg", assert.AnError)
	})
}

func TestHandleSpanEvent_NilSafe(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		HandleSpanEvent(nil, "event")
	})
}

func TestInjectExtractHTTPContext_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	headers := http.Header{}

	assert.NotPanics(t, func() {
		InjectHTTPContext(ctx, headers)
	})

	assert.NotPanics(t, func() {
		_ = ExtractHTTPContext(ctx, headers)
	})
}
