package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestDisabledProviderIsNoop(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)
	_, span := p.Tracer().Start(context.Background(), "recompute")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestMiddlewarePassesContext(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)
	var called bool
	h := Middleware(p.Tracer())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.NotNil(t, trace.SpanFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
