package dsm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// SynoTokenHeader carries the anti-CSRF token some DSM setups require
// next to the session id.
const SynoTokenHeader = "X-SYNO-TOKEN"

// HTTPRequest is what interceptors see of an outgoing call. Headers may be
// changed; they are copied onto the HTTP request.
type HTTPRequest struct {
	API        string
	APIMethod  string
	Version    Version
	HTTPMethod string
	Path       string
	Headers    http.Header
	Metadata   map[string]interface{}
}

// HTTPResponse is what interceptors see of the answer. Body is the raw
// envelope (or raw content for downloads). Error is set for transport
// failures and non-2xx statuses.
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// RequestInterceptor runs before a call is sent. Returning an error aborts
// the call.
type RequestInterceptor func(ctx context.Context, req *HTTPRequest) error

// ResponseInterceptor runs once a call has completed or failed.
type ResponseInterceptor func(ctx context.Context, req *HTTPRequest, resp *HTTPResponse) error

// InterceptorChain holds the interceptors of a client. A nil chain is
// empty.
type InterceptorChain struct {
	before []RequestInterceptor
	after  []ResponseInterceptor
}

// NewInterceptorChain returns an empty chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{}
}

// OnRequest appends a request interceptor.
func (c *InterceptorChain) OnRequest(interceptor RequestInterceptor) *InterceptorChain {
	c.before = append(c.before, interceptor)

	return c
}

// OnResponse appends a response interceptor.
func (c *InterceptorChain) OnResponse(interceptor ResponseInterceptor) *InterceptorChain {
	c.after = append(c.after, interceptor)

	return c
}

// BeforeSend runs the request interceptors in order and stops at the
// first error.
func (c *InterceptorChain) BeforeSend(ctx context.Context, req *HTTPRequest) error {
	if c == nil {
		return nil
	}

	for _, interceptor := range c.before {
		if err := interceptor(ctx, req); err != nil {
			return fmt.Errorf("%s request interceptor: %w", req.API, err)
		}
	}

	return nil
}

// AfterReceive runs the response interceptors in order and stops at the
// first error.
func (c *InterceptorChain) AfterReceive(ctx context.Context, req *HTTPRequest, resp *HTTPResponse) error {
	if c == nil {
		return nil
	}

	for _, interceptor := range c.after {
		if err := interceptor(ctx, req, resp); err != nil {
			return fmt.Errorf("%s response interceptor: %w", req.API, err)
		}
	}

	return nil
}

// LoggingInterceptor logs every call at debug level.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *HTTPRequest) error {
		logger.Debug("Calling API", map[string]interface{}{
			"api":     req.API,
			"method":  req.APIMethod,
			"version": req.Version,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs completed calls at debug level and
// failed ones at error level.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *HTTPRequest, resp *HTTPResponse) error {
		fields := map[string]interface{}{
			"api":         req.API,
			"method":      req.APIMethod,
			"version":     req.Version,
			"status_code": resp.StatusCode,
		}

		if resp.Error != nil {
			fields["error"] = resp.Error.Error()
			logger.Error("API call failed", fields)

			return nil
		}

		logger.Debug("API responded", fields)

		return nil
	}
}

// RateLimitInterceptor spaces calls to requestsPerSecond, allowing bursts
// of up to burst calls. Waiting honours the call's context.
func RateLimitInterceptor(requestsPerSecond float64, burst int) RequestInterceptor {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), max(burst, 1))

	return func(ctx context.Context, req *HTTPRequest) error {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}

		return nil
	}
}

// HeaderInterceptor sets fixed headers on every call.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *HTTPRequest) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

// SynoTokenInterceptor sends token in the X-SYNO-TOKEN header.
func SynoTokenInterceptor(token string) RequestInterceptor {
	return HeaderInterceptor(map[string]string{SynoTokenHeader: token})
}

// SessionExpiredInterceptor calls fn when a response reports that the
// session timed out or was taken over by another login. The response is
// passed on unchanged; Decode still reports the error to the caller.
func SessionExpiredInterceptor(fn func(req *HTTPRequest, code int)) ResponseInterceptor {
	return func(ctx context.Context, req *HTTPRequest, resp *HTTPResponse) error {
		if resp.Error != nil || len(resp.Body) == 0 || resp.Body[0] != '{' {
			return nil
		}

		envelope, err := ParseEnvelope(resp.Body)
		if err != nil || envelope.Success || envelope.Error == nil {
			return nil //nolint:nilerr // not an envelope, nothing to inspect
		}

		switch envelope.Error.Code {
		case CodeSessionTimeout, CodeSessionInterrupted:
			fn(req, envelope.Error.Code)
		}

		return nil
	}
}

const metadataStartTime = "start_time"

// TimingInterceptor records when a call was handed to the transport; see
// Elapsed.
func TimingInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *HTTPRequest) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[metadataStartTime] = time.Now()

		return nil
	}
}

// Elapsed returns the time since TimingInterceptor saw req.
func Elapsed(req *HTTPRequest) (time.Duration, bool) {
	start, ok := req.Metadata[metadataStartTime].(time.Time)
	if !ok {
		return 0, false
	}

	return time.Since(start), true
}
