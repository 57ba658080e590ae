package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/fivetwenty-io/dsm/internal/auth"
	"github.com/fivetwenty-io/dsm/internal/constants"
	"github.com/fivetwenty-io/dsm/internal/http"
	"github.com/fivetwenty-io/dsm/pkg/api"
	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/google/uuid"
)

// Client implements the dsm.Client interface.
type Client struct {
	transport       *http.Client
	uploadTransport *http.Client
	endpoint        *url.URL
	directory       *Directory
	builder         *Builder
	sessions        *auth.SessionManager
	logger          dsm.Logger

	pendingMutex sync.Mutex
	pending      map[uuid.UUID]*dsm.Call
}

var _ dsm.Client = (*Client)(nil)

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *dsm.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.SkipTLSVerify {
		httpOpts = append(httpOpts, http.WithSkipTLSVerify(true))
	}

	interceptors := config.Interceptors
	if config.RateLimit > 0 {
		if interceptors == nil {
			interceptors = dsm.NewInterceptorChain()
		}

		interceptors.OnRequest(dsm.RateLimitInterceptor(config.RateLimit, 1))
	}

	if interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(interceptors))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a client for config.Endpoint, which must be an absolute URL.
func New(ctx context.Context, config *dsm.Config) (*Client, error) {
	if config == nil {
		return nil, dsm.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, dsm.ErrEndpointRequired
	}

	endpoint, err := url.Parse(strings.TrimSuffix(config.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}

	if endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("%w: %q", dsm.ErrInvalidTarget, config.Endpoint)
	}

	httpOpts := createHTTPClientOptions(config)

	timeout := config.HTTPTimeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	client := &Client{
		transport:       http.NewClient(append(httpOpts, http.WithTimeout(timeout))...),
		uploadTransport: http.NewClient(append(httpOpts, http.WithTimeout(max(timeout, constants.UploadHTTPTimeout)))...),
		endpoint:        endpoint,
		sessions:        auth.NewSessionManager(config.SessionID),
		logger:          config.Logger,
		pending:         make(map[uuid.UUID]*dsm.Call),
	}

	dirOpts := []DirectoryOption{WithDirectoryLogger(config.Logger)}
	if config.Cache != nil {
		dirOpts = append(dirOpts, WithDirectoryCache(config.Cache, constants.CapabilityCacheKeyPrefix+endpoint.String(), config.CapabilityTTL))
	}

	client.directory = NewDirectory(client.discover, dirOpts...)
	client.builder = NewBuilder(client.directory, endpoint, client.sessions, config.MultipartBoundary)

	warmed := client.directory.Warm(ctx)

	if config.DiscoverOnInit && !warmed {
		_, err = client.directory.Refresh(ctx)
		if err != nil {
			return nil, fmt.Errorf("discovering capabilities: %w", err)
		}
	}

	return client, nil
}

// discover is the directory's fetcher.
func (c *Client) discover(ctx context.Context) (dsm.CapabilityMap, error) {
	req := api.Query(api.QueryAll)

	body, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	capabilities, err := req.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decoding capabilities: %w", err)
	}

	return *capabilities, nil
}

// Endpoint returns the base URL requests are resolved against.
func (c *Client) Endpoint() *url.URL {
	clone := *c.endpoint

	return &clone
}

// Directory returns the capability directory.
func (c *Client) Directory() *Directory {
	return c.directory
}

// Build implements dsm.Client.Build.
func (c *Client) Build(ctx context.Context, d dsm.Descriptor) (*dsm.Target, error) {
	return c.builder.Build(ctx, d)
}

// Do implements dsm.Client.Do.
func (c *Client) Do(ctx context.Context, d dsm.Descriptor) ([]byte, error) {
	target, err := c.builder.Build(ctx, d)
	if err != nil {
		return nil, err
	}

	c.debug("Request built", map[string]interface{}{
		"api":      target.API,
		"method":   target.Method,
		"version":  target.Version,
		"encoding": d.RequestEncoding().String(),
	})

	transport := c.transport
	if target.IsMultipart() {
		transport = c.uploadTransport
	}

	resp, err := transport.Do(ctx, &http.Request{
		API:           target.API,
		APIMethod:     target.Method,
		Version:       target.Version,
		Method:        target.HTTPMethod,
		URL:           target.URL,
		ContentType:   target.ContentType,
		Body:          target.Body,
		ContentLength: target.ContentLength,
	})
	if err != nil {
		c.debug("Request failed", map[string]interface{}{"api": target.API, "error": err.Error()})

		return nil, fmt.Errorf("%s.%s: %w", target.API, target.Method, err)
	}

	c.debug("Request sent", map[string]interface{}{
		"api":         target.API,
		"method":      target.Method,
		"status_code": resp.StatusCode,
	})

	return resp.Body, nil
}

// Go implements dsm.Client.Go.
func (c *Client) Go(ctx context.Context, d dsm.Descriptor, done chan *dsm.Call) *dsm.Call {
	call := dsm.NewCall(d, done)

	c.pendingMutex.Lock()
	c.pending[call.ID] = call
	c.pendingMutex.Unlock()

	go func() {
		body, err := c.Do(ctx, d)

		c.pendingMutex.Lock()
		delete(c.pending, call.ID)
		c.pendingMutex.Unlock()

		call.Finish(body, err)
	}()

	return call
}

// Pending implements dsm.Client.Pending.
func (c *Client) Pending() int {
	c.pendingMutex.Lock()
	defer c.pendingMutex.Unlock()

	return len(c.pending)
}

// PendingCall returns the in-flight call with id.
func (c *Client) PendingCall(id uuid.UUID) (*dsm.Call, bool) {
	c.pendingMutex.Lock()
	defer c.pendingMutex.Unlock()

	call, ok := c.pending[id]

	return call, ok
}

// Capabilities implements dsm.Client.Capabilities.
func (c *Client) Capabilities() dsm.CapabilityMap {
	return c.directory.Snapshot()
}

// RefreshCapabilities implements dsm.Client.RefreshCapabilities.
func (c *Client) RefreshCapabilities(ctx context.Context) (dsm.CapabilityMap, error) {
	return c.directory.Refresh(ctx)
}

// SessionID implements dsm.Client.SessionID.
func (c *Client) SessionID() string {
	return c.sessions.ID()
}

// SetSessionID implements dsm.Client.SetSessionID.
func (c *Client) SetSessionID(sid string) {
	c.sessions.SetID(sid)
}

// Session returns the current session.
func (c *Client) Session() (auth.Session, bool) {
	return c.sessions.Session()
}

func (c *Client) debug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}
