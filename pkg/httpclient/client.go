package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is the per-request timeout.
const DefaultTimeout = 10 * time.Second

// Config holds client settings resolved once at construction.
type Config struct {
	// BaseURL is prefixed to every request path. Empty means paths are
	// sent as-is, which fails in the transport.
	BaseURL string

	// Timeout bounds each request. Default: DefaultTimeout.
	Timeout time.Duration
}

// Client sends JSON requests through an interceptor chain.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	transport    http.RoundTripper
	interceptors []Interceptor
	logger       *zap.Logger
}

// WithTransport sets the innermost transport. Default: http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.transport = rt
	}
}

// WithInterceptors appends interceptors to the chain.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(o *clientOptions) {
		o.interceptors = append(o.interceptors, interceptors...)
	}
}

// WithLogger sets the logger for decode failures.
func WithLogger(logger *zap.Logger) Option {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates a client.
func New(cfg Config, opts ...Option) *Client {
	o := clientOptions{
		transport: http.DefaultTransport,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Transport: Chain(o.transport, o.interceptors...),
			Timeout:   timeout,
		},
		logger: o.logger,
	}
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is encoded as JSON when non-nil.
	Body any

	// RawBody is sent as-is with ContentType. It takes precedence over Body.
	RawBody     io.Reader
	ContentType string
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Status     string
	Method     string
	URL        string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpclient: %s %s: %s", e.Method, e.URL, e.Status)
}

// IsStatus reports whether err is a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// url joins the base URL, path and query.
func (c *Client) url(path string, query url.Values) string {
	u := path
	if c.baseURL != "" {
		u = c.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Do sends r and decodes a successful response body into out.
// out may be nil to discard the body.
func (c *Client) Do(ctx context.Context, r *Request, out any) error {
	var body io.Reader
	contentType := ""
	switch {
	case r.RawBody != nil:
		body = r.RawBody
		contentType = r.ContentType
	case r.Body != nil:
		data, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("httpclient: encode %s %s: %w", r.Method, r.Path, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.url(r.Path, r.Query), body)
	if err != nil {
		return err
	}
	for k, v := range r.Header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Method:     req.Method,
			URL:        req.URL.String(),
			Body:       data,
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("response decode failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err),
		)
		return fmt.Errorf("httpclient: decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path}, out)
}

// PostMultipart uploads r as the file part field of a multipart/form-data
// POST.
func (c *Client) PostMultipart(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("httpclient: read upload %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return err
	}

	return c.Do(ctx, &Request{
		Method:      http.MethodPost,
		Path:        path,
		RawBody:     &buf,
		ContentType: mw.FormDataContentType(),
	}, out)
}
