package httpclient

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vango-dev/usershell/pkg/storage"
)

// Interceptor wraps a transport.
type Interceptor func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain wraps base with interceptors; the first one runs first.
func Chain(base http.RoundTripper, interceptors ...Interceptor) http.RoundTripper {
	rt := base
	for i := len(interceptors) - 1; i >= 0; i-- {
		rt = interceptors[i](rt)
	}
	return rt
}

// TokenSource supplies the current auth token. An empty token means the
// request is sent unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token implements TokenSource.
func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StorageToken reads the token stored under key on every call.
func StorageToken(s storage.Storage, key string) TokenSource {
	return TokenFunc(func(ctx context.Context) (string, error) {
		data, err := s.Get(ctx, key)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
}

// Bearer sets "Authorization: Bearer <token>" from ts on every request.
// Token read failures are ignored and the request goes out without the
// header.
func Bearer(ts TokenSource) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			token, err := readToken(req.Context(), ts)
			if err != nil || token == "" {
				return next.RoundTrip(req)
			}
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(req)
		})
	}
}

// readToken calls ts, turning a panic into an error.
func readToken(ctx context.Context, ts TokenSource) (token string, err error) {
	defer func() {
		if r := recover(); r != nil {
			token, err = "", errTokenPanic
		}
	}()
	return ts.Token(ctx)
}

var errTokenPanic = errors.New("httpclient: token source panicked")

// RequestIDHeader carries the request ID.
const RequestIDHeader = "X-Request-ID"

// RequestID sets a random X-Request-ID unless the request already has one.
func RequestID() Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(req)
			}
			req = req.Clone(req.Context())
			req.Header.Set(RequestIDHeader, uuid.NewString())
			return next.RoundTrip(req)
		})
	}
}

// Logging writes one debug line per request.
func Logging(logger *zap.Logger) Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("url", req.URL.String()),
				zap.Duration("duration", time.Since(start)),
			}
			if id := req.Header.Get(RequestIDHeader); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if err != nil {
				logger.Debug("http request failed", append(fields, zap.Error(err))...)
				return resp, err
			}
			logger.Debug("http request", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}

// MetricsConfig configures the Metrics interceptor.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "usershell").
	Namespace string

	// Subsystem is the metrics subsystem (default: "http_client").
	Subsystem string

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Metrics counts requests by method and status code and observes their
// duration. Each call registers new collectors, so build it once per
// registry.
func Metrics(config MetricsConfig) Interceptor {
	if config.Namespace == "" {
		config.Namespace = "usershell"
	}
	if config.Subsystem == "" {
		config.Subsystem = "http_client"
	}
	if config.Buckets == nil {
		config.Buckets = prometheus.DefBuckets
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(config.Registry)
	requests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      "requests_total",
		Help:      "Total number of outgoing HTTP requests",
	}, []string{"method", "code"})
	duration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      "request_duration_seconds",
		Help:      "Outgoing HTTP request duration in seconds",
		Buckets:   config.Buckets,
	}, []string{"method"})

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			duration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

			code := "error"
			if err == nil {
				code = strconv.Itoa(resp.StatusCode)
			}
			requests.WithLabelValues(req.Method, code).Inc()
			return resp, err
		})
	}
}

// Default tracer name for client spans.
const defaultTracerName = "usershell/httpclient"

// Tracing starts a client span per request and propagates its context in
// the request headers. A nil provider uses the global one.
func Tracing(tp trace.TracerProvider) Interceptor {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(defaultTracerName)

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			ctx, span := tracer.Start(req.Context(), "HTTP "+req.Method,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String("http.request.method", req.Method),
					attribute.String("url.full", req.URL.String()),
				),
			)
			defer span.End()

			req = req.Clone(ctx)
			otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

			resp, err := next.RoundTrip(req)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return resp, err
			}

			span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
			if resp.StatusCode >= 400 {
				span.SetStatus(codes.Error, resp.Status)
			}
			return resp, nil
		})
	}
}
