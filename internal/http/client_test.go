package http_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	dsmhttp "github.com/fivetwenty-io/dsm/internal/http"
	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRejected = errors.New("rejected")

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *MockLogger) find(msg string) map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entry := range l.logs {
		if entry["msg"] == msg {
			fields, _ := entry["fields"].(map[string]interface{})

			return fields
		}
	}

	return nil
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)

	return u
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/webapi/query.cgi", request.URL.Path)
			assert.Equal(t, http.MethodGet, request.Method)
			assert.Equal(t, "api=SYNO.API.Info&version=1&method=query", request.URL.RawQuery)
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Equal(t, dsmhttp.DefaultUserAgent, request.Header.Get("User-Agent"))

			_, _ = writer.Write([]byte(`{"success":true}`))
		}))
		defer server.Close()

		client := dsmhttp.NewClient()

		resp, err := client.Do(context.Background(), &dsmhttp.Request{
			API:    "SYNO.API.Info",
			Method: http.MethodGet,
			URL:    mustParse(t, server.URL+"/webapi/query.cgi?api=SYNO.API.Info&version=1&method=query"),
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"success":true}`, string(resp.Body))
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPost, request.Method)
			assert.Equal(t, "multipart/form-data; boundary=x", request.Header.Get("Content-Type"))
			assert.Equal(t, int64(7), request.ContentLength)

			body, _ := io.ReadAll(request.Body)
			assert.Equal(t, "payload", string(body))

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := dsmhttp.NewClient()

		_, err := client.Do(context.Background(), &dsmhttp.Request{
			Method:      http.MethodPost,
			URL:         mustParse(t, server.URL+"/webapi/entry.cgi"),
			ContentType: "multipart/form-data; boundary=x",
			Body: func() (io.Reader, error) {
				return bytes.NewReader([]byte("payload")), nil
			},
			ContentLength: 7,
		})
		require.NoError(t, err)
	})

	t.Run("error status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte("missing"))
		}))
		defer server.Close()

		client := dsmhttp.NewClient()

		resp, err := client.Do(context.Background(), &dsmhttp.Request{
			Method: http.MethodGet,
			URL:    mustParse(t, server.URL+"/webapi/nope.cgi"),
		})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		statusErr := &dsmhttp.StatusError{}
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Equal(t, "missing", string(statusErr.Body))
	})

	t.Run("custom headers and user agent", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			assert.Equal(t, "tester/2", request.Header.Get("User-Agent"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := dsmhttp.NewClient(dsmhttp.WithUserAgent("tester/2"))

		_, err := client.Do(context.Background(), &dsmhttp.Request{
			Method:  http.MethodGet,
			URL:     mustParse(t, server.URL),
			Headers: map[string]string{"X-Custom-Header": "custom-value"},
		})
		require.NoError(t, err)
	})

	t.Run("missing URL", func(t *testing.T) {
		t.Parallel()

		_, err := dsmhttp.NewClient().Do(context.Background(), &dsmhttp.Request{Method: http.MethodGet})
		require.ErrorIs(t, err, dsmhttp.ErrNilURL)
	})

	t.Run("connection failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		target := mustParse(t, server.URL)
		server.Close()

		_, err := dsmhttp.NewClient().Do(context.Background(), &dsmhttp.Request{Method: http.MethodGet, URL: target})
		require.Error(t, err)

		statusErr := &dsmhttp.StatusError{}
		assert.False(t, errors.As(err, &statusErr))
	})
}

func TestClient_DebugLogging(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	logger := &MockLogger{}
	client := dsmhttp.NewClient(dsmhttp.WithLogger(logger), dsmhttp.WithDebug(true))

	_, err := client.Do(context.Background(), &dsmhttp.Request{
		API:    "SYNO.API.Auth",
		Method: http.MethodGet,
		URL:    mustParse(t, server.URL+"/webapi/auth.cgi?account=admin&passwd=secret&_sid=abc"),
	})
	require.NoError(t, err)

	request := logger.find("HTTP Request")
	require.NotNil(t, request)
	assert.NotContains(t, request["url"], "secret")
	assert.NotContains(t, request["url"], "abc")
	assert.Contains(t, request["url"], "account=admin")

	response := logger.find("HTTP Response")
	require.NotNil(t, response)
	assert.Equal(t, http.StatusOK, response["status_code"])
}

func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "yes", request.Header.Get("X-Intercepted"))
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var seen atomic.Int32

	chain := dsm.NewInterceptorChain()
	chain.OnRequest(dsm.HeaderInterceptor(map[string]string{"X-Intercepted": "yes"}))
	chain.OnResponse(func(ctx context.Context, req *dsm.HTTPRequest, resp *dsm.HTTPResponse) error {
		assert.Equal(t, "SYNO.API.Info", req.API)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		seen.Add(1)

		return nil
	})

	client := dsmhttp.NewClient(dsmhttp.WithInterceptors(chain))

	_, err := client.Do(context.Background(), &dsmhttp.Request{
		API:    "SYNO.API.Info",
		Method: http.MethodGet,
		URL:    mustParse(t, server.URL),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), seen.Load())

	blocking := dsm.NewInterceptorChain()
	blocking.OnRequest(func(ctx context.Context, req *dsm.HTTPRequest) error {
		return errRejected
	})

	_, err = dsmhttp.NewClient(dsmhttp.WithInterceptors(blocking)).Do(context.Background(), &dsmhttp.Request{
		Method: http.MethodGet,
		URL:    mustParse(t, server.URL),
	})
	require.ErrorIs(t, err, errRejected)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()

	t.Run("does not retry by default", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		resp, err := dsmhttp.NewClient().Do(context.Background(), &dsmhttp.Request{
			Method: http.MethodGet,
			URL:    mustParse(t, server.URL),
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("retries on 5xx errors when enabled", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)

				return
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := dsmhttp.NewClient(dsmhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Do(context.Background(), &dsmhttp.Request{
			Method: http.MethodGet,
			URL:    mustParse(t, server.URL),
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("resends the body on retry", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			body, _ := io.ReadAll(request.Body)
			assert.Equal(t, "payload", string(body))

			if attempts.Add(1) < 2 {
				writer.WriteHeader(http.StatusBadGateway)

				return
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := dsmhttp.NewClient(dsmhttp.WithRetryConfig(2, 10*time.Millisecond, 50*time.Millisecond))

		_, err := client.Do(context.Background(), &dsmhttp.Request{
			Method: http.MethodPost,
			URL:    mustParse(t, server.URL),
			Body: func() (io.Reader, error) {
				return bytes.NewReader([]byte("payload")), nil
			},
		})
		require.NoError(t, err)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := dsmhttp.NewClient(dsmhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Do(context.Background(), &dsmhttp.Request{
			Method: http.MethodGet,
			URL:    mustParse(t, server.URL),
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})
}

func TestRedactURL(t *testing.T) {
	t.Parallel()

	redacted := dsmhttp.RedactURL(mustParse(t, "https://nas:5001/webapi/auth.cgi?account=a&passwd=p&_sid=s"))
	assert.NotContains(t, redacted, "passwd=p&")
	assert.Contains(t, redacted, "REDACTED")

	plain := "https://nas:5001/webapi/query.cgi?api=SYNO.API.Info"
	assert.Equal(t, plain, dsmhttp.RedactURL(mustParse(t, plain)))
	assert.Empty(t, dsmhttp.RedactURL(nil))
}
