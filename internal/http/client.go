// Package http is the transport used by the DSM client. It sends fully
// resolved targets through go-retryablehttp and reports non-2xx statuses
// as errors.
package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fivetwenty-io/dsm/internal/constants"
	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/hashicorp/go-retryablehttp"
)

// Static errors for err113 compliance.
var (
	ErrNilURL = errors.New("request URL is required")
)

// DefaultUserAgent is sent unless overridden.
const DefaultUserAgent = "dsm-go/1.0"

// Request is one HTTP exchange.
type Request struct {
	// API, APIMethod and Version name the DSM call for logs and
	// interceptors.
	API           string
	APIMethod     string
	Version       int
	Method        string
	URL           *url.URL
	Headers       map[string]string
	ContentType   string
	Body          func() (io.Reader, error)
	ContentLength int64
}

// Response is a received response with its body read.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return "unexpected HTTP status: " + e.Status
}

// Client sends requests.
type Client struct {
	httpClient   *retryablehttp.Client
	logger       dsm.Logger
	debug        bool
	userAgent    string
	interceptors *dsm.InterceptorChain
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger dsm.Logger) Option {
	return func(c *Client) {
		c.logger = logger
		if logger != nil {
			c.httpClient.Logger = &leveledLogger{logger: logger}
		}
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryConfig enables transport retries for connection errors and 5xx
// responses.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the overall timeout of one exchange.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithSkipTLSVerify disables certificate verification.
func WithSkipTLSVerify(skip bool) Option {
	return func(c *Client) {
		if !skip {
			return
		}

		transport, ok := c.httpClient.HTTPClient.Transport.(*http.Transport)
		if !ok {
			return
		}

		transport = transport.Clone()
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec // only enabled in dev mode
		c.httpClient.HTTPClient.Transport = transport
	}
}

// WithInterceptors runs chain around every request.
func WithInterceptors(chain *dsm.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// NewClient creates a transport. Retries are off unless WithRetryConfig
// enables them.
func NewClient(opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		httpClient: retryClient,
		userAgent:  DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do sends req. A non-2xx response returns both the response and a
// *StatusError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.URL == nil {
		return nil, ErrNilURL
	}

	intercepted := &dsm.HTTPRequest{
		API:        req.API,
		APIMethod:  req.APIMethod,
		Version:    req.Version,
		HTTPMethod: req.Method,
		Path:       req.URL.Path,
		Headers:    make(http.Header),
	}

	for key, value := range req.Headers {
		intercepted.Headers.Set(key, value)
	}

	err := c.interceptors.BeforeSend(ctx, intercepted)
	if err != nil {
		return nil, err
	}

	httpReq, err := c.newRequest(ctx, req, intercepted.Headers)
	if err != nil {
		return nil, err
	}

	c.logRequest(req)

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		_ = c.interceptors.AfterReceive(ctx, intercepted, &dsm.HTTPResponse{Error: err})

		return nil, fmt.Errorf("sending %s request: %w", req.API, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		_ = c.interceptors.AfterReceive(ctx, intercepted, &dsm.HTTPResponse{Error: err})

		return nil, fmt.Errorf("reading %s response: %w", req.API, err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	c.logResponse(req, resp, time.Since(start))

	var statusErr error
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		statusErr = &StatusError{StatusCode: resp.StatusCode, Status: httpResp.Status, Body: body}
	}

	err = c.interceptors.AfterReceive(ctx, intercepted, &dsm.HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       body,
		Error:      statusErr,
	})
	if err != nil {
		return resp, err
	}

	if statusErr != nil {
		return resp, statusErr
	}

	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, req *Request, headers http.Header) (*retryablehttp.Request, error) {
	var body interface{}
	if req.Body != nil {
		body = retryablehttp.ReaderFunc(req.Body)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", req.API, err)
	}

	for key, values := range headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	if req.ContentLength > 0 {
		httpReq.ContentLength = req.ContentLength
	}

	return httpReq, nil
}

func (c *Client) logRequest(req *Request) {
	if !c.debug || c.logger == nil {
		return
	}

	fields := map[string]interface{}{
		"api":    req.API,
		"method": req.Method,
		"url":    RedactURL(req.URL),
	}

	if req.ContentType != "" {
		fields["content_type"] = req.ContentType
		fields["content_length"] = req.ContentLength
	}

	c.logger.Debug("HTTP Request", fields)
}

func (c *Client) logResponse(req *Request, resp *Response, elapsed time.Duration) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"api":         req.API,
		"status_code": resp.StatusCode,
		"bytes":       len(resp.Body),
		"duration":    elapsed.String(),
	})
}

// RedactURL renders u with the session id and password replaced.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	query := u.Query()
	redacted := false

	for _, name := range []string{constants.ParamSessionID, constants.ParamPassword} {
		if query.Has(name) {
			query.Set(name, constants.RedactedValue)

			redacted = true
		}
	}

	if !redacted {
		return u.String()
	}

	clone := *u
	clone.RawQuery = query.Encode()

	return clone.String()
}
