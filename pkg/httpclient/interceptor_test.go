package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func statusServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Seen-Request-ID", r.Header.Get(RequestIDHeader))
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRequestID(t *testing.T) {
	var seen []string
	capture := func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			seen = append(seen, req.Header.Get(RequestIDHeader))
			return next.RoundTrip(req)
		})
	}
	srv := statusServer(t)
	c := New(Config{BaseURL: srv.URL}, WithInterceptors(RequestID(), capture))
	ctx := context.Background()

	require.NoError(t, c.Get(ctx, "/a", nil, nil))
	require.NoError(t, c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   "/b",
		Header: http.Header{RequestIDHeader: {"fixed"}},
	}, nil))

	require.Len(t, seen, 2)
	assert.Len(t, seen[0], 36)
	assert.Equal(t, "fixed", seen[1])
}

func TestMetrics(t *testing.T) {
	srv := statusServer(t)
	reg := prometheus.NewRegistry()
	c := New(Config{BaseURL: srv.URL}, WithInterceptors(Metrics(MetricsConfig{Registry: reg})))
	ctx := context.Background()

	require.NoError(t, c.Get(ctx, "/ok", nil, nil))
	require.NoError(t, c.Get(ctx, "/ok", nil, nil))
	require.Error(t, c.Get(ctx, "/missing", nil, nil))

	expected := `
# HELP usershell_http_client_requests_total Total number of outgoing HTTP requests
# TYPE usershell_http_client_requests_total counter
usershell_http_client_requests_total{code="200",method="GET"} 2
usershell_http_client_requests_total{code="404",method="GET"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"usershell_http_client_requests_total"))
	count, err := testutil.GatherAndCount(reg, "usershell_http_client_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTracing(t *testing.T) {
	srv := statusServer(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	c := New(Config{BaseURL: srv.URL}, WithInterceptors(Tracing(tp)))
	ctx := context.Background()

	require.NoError(t, c.Get(ctx, "/ok", nil, nil))
	require.Error(t, c.Get(ctx, "/missing", nil, nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "HTTP GET", ok.Name())
	assert.Equal(t, trace.SpanKindClient, ok.SpanKind())
	assert.Equal(t, codes.Unset, ok.Status().Code)
	assert.Contains(t, ok.Attributes(), attribute.Int("http.response.status_code", 200))

	missing := spans[1]
	assert.Equal(t, codes.Error, missing.Status().Code)
	assert.Contains(t, missing.Attributes(), attribute.Int("http.response.status_code", 404))
}

func TestLogging(t *testing.T) {
	srv := statusServer(t)
	core, logs := observer.New(zap.DebugLevel)
	c := New(Config{BaseURL: srv.URL}, WithInterceptors(RequestID(), Logging(zap.New(core))))

	require.NoError(t, c.Get(context.Background(), "/ok", nil, nil))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.EqualValues(t, 200, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}
