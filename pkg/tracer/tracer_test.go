package tracer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"catalog/pkg/tracer"
)

func TestInitTracer_InstallsGlobalProvider(t *testing.T) {
	ctx := context.Background()

	tp, err := tracer.InitTracer(ctx, "catalog-test", "test", "localhost:4318")
	require.NoError(t, err)
	defer func() {
		// Nothing listens on the endpoint; do not wait for export retries.
		shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	assert.Same(t, tp, otel.GetTracerProvider())

	_, span := otel.Tracer("test").Start(ctx, "unit")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}
