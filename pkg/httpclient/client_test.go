package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/usershell/pkg/storage"
)

type echo struct {
	Method        string `json:"method"`
	Path          string `json:"path"`
	Query         string `json:"query"`
	Authorization string `json:"authorization"`
	ContentType   string `json:"contentType"`
	Body          string `json:"body"`
}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(echo{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          string(body),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBearerTokenFromStorage(t *testing.T) {
	srv := echoServer(t)
	ctx := context.Background()

	mem := storage.NewMemory()
	defer mem.Close()
	require.NoError(t, mem.Set(ctx, "token", []byte("abc123")))

	c := New(Config{BaseURL: srv.URL}, WithInterceptors(Bearer(StorageToken(mem, "token"))))

	var got echo
	require.NoError(t, c.Get(ctx, "/user/info", nil, &got))
	assert.Equal(t, "Bearer abc123", got.Authorization)
	assert.Equal(t, "/user/info", got.Path)

	require.NoError(t, mem.Delete(ctx, "token"))
	require.NoError(t, c.Get(ctx, "/user/info", nil, &got))
	assert.Empty(t, got.Authorization, "absent token sends no header")
}

func TestBearerIgnoresTokenFailures(t *testing.T) {
	srv := echoServer(t)
	ctx := context.Background()

	failing := TokenFunc(func(context.Context) (string, error) {
		return "", errors.New("storage unavailable")
	})
	panicking := TokenFunc(func(context.Context) (string, error) {
		panic("broken backend")
	})

	for _, ts := range []TokenSource{failing, panicking} {
		c := New(Config{BaseURL: srv.URL}, WithInterceptors(Bearer(ts)))
		var got echo
		require.NoError(t, c.Get(ctx, "/user/info", nil, &got))
		assert.Empty(t, got.Authorization)
	}
}

func TestJSONBodyAndQuery(t *testing.T) {
	srv := echoServer(t)
	c := New(Config{BaseURL: srv.URL + "/"})

	var got echo
	err := c.Put(context.Background(), "user/info", map[string]string{"username": "alice"}, &got)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/user/info", got.Path)
	assert.Equal(t, "application/json", got.ContentType)
	assert.JSONEq(t, `{"username":"alice"}`, got.Body)

	q := url.Values{"page": {"2"}, "keyword": {"al"}}
	require.NoError(t, c.Get(context.Background(), "/user/list", q, &got))
	assert.Equal(t, "keyword=al&page=2", got.Query)
	assert.Empty(t, got.ContentType)
}

func TestStatusErrorPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no such user"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	err := c.Get(context.Background(), "/user/42", nil, nil)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, http.MethodGet, se.Method)
	assert.Contains(t, string(se.Body), "no such user")
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.False(t, IsStatus(err, http.StatusUnauthorized))
}

func TestTransportErrorsAreUnmodified(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(Config{BaseURL: base})
	err := c.Get(context.Background(), "/user/info", nil, nil)

	var ue *url.Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Get", ue.Op)
}

func TestEmptyBaseURLFailsInTransport(t *testing.T) {
	c := New(Config{})
	err := c.Get(context.Background(), "/user/info", nil, nil)

	var ue *url.Error
	require.ErrorAs(t, err, &ue)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	err := c.Get(context.Background(), "/slow", nil, nil)

	var ue *url.Error
	require.ErrorAs(t, err, &ue)
	assert.True(t, ue.Timeout())
}

func TestEmptyBodyAndNilOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	var out map[string]any
	assert.NoError(t, c.Delete(context.Background(), "/user/1", &out))
	assert.NoError(t, c.Get(context.Background(), "/raw", nil, nil))
	assert.Error(t, c.Get(context.Background(), "/raw", nil, &out))
}

func TestPostMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		file, header, err := r.FormFile("avatar")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		json.NewEncoder(w).Encode(map[string]string{
			"url": "/static/" + header.Filename + "?size=" + strconv.Itoa(len(data)),
		})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	var out struct {
		URL string `json:"url"`
	}
	err := c.PostMultipart(context.Background(), "/user/avatar", "avatar", "me.png", strings.NewReader("PNG!"), &out)
	require.NoError(t, err)
	assert.Equal(t, "/static/me.png?size=4", out.URL)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Interceptor {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(req)
			})
		}
	}
	base := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		order = append(order, "transport")
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(strings.NewReader(`{}`)),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	})

	c := New(Config{BaseURL: "http://api.test"}, WithTransport(base), WithInterceptors(mark("a"), mark("b")))
	require.NoError(t, c.Get(context.Background(), "/", nil, nil))
	assert.Equal(t, []string{"a", "b", "transport"}, order)
}
