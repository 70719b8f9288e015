package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/trace"
)

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "generator", "Generate", trace.StringAttribute("slot", "hero"))
	require.NotNil(t, span)
	assert.Same(t, span, trace.FromContext(ctx))

	AddAttribute(ctx, "count", 3)
	AddAttribute(ctx, "ok", true)
	AddAttribute(ctx, "ratio", 0.5)
	EndSpan(span, errors.New("boom"))
}

func TestAddAttribute_NoSpan(t *testing.T) {
	AddAttribute(context.Background(), "key", "value")
}

func TestNewHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	client := NewHTTPClient(5 * time.Second)
	assert.Equal(t, 5*time.Second, client.Timeout)

	resp, err := client.Get(server.URL + "/upload")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestRecordMetrics(t *testing.T) {
	require.NoError(t, RegisterViews())

	ctx := context.Background()
	RecordGeneration(ctx, 2)
	RecordSlotResolution(ctx, "logo", "hosted")
	RecordSend(ctx, "netcore_v6", true, 120)
	RecordSend(ctx, "smtp", false, 30)
}
