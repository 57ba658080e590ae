package dsm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Client sends requests to one DSM endpoint.
type Client interface {
	// Do builds, sends and returns the raw body of one request.
	Do(ctx context.Context, d Descriptor) ([]byte, error)

	// Go sends d asynchronously. The returned call is delivered on done when
	// it completes; a nil done channel allocates a buffered one.
	Go(ctx context.Context, d Descriptor, done chan *Call) *Call

	// Build resolves d into a target without sending it.
	Build(ctx context.Context, d Descriptor) (*Target, error)

	// Capabilities returns the current directory snapshot.
	Capabilities() CapabilityMap

	// RefreshCapabilities fetches the capability directory from the server.
	RefreshCapabilities(ctx context.Context) (CapabilityMap, error)

	SessionID() string
	SetSessionID(sid string)

	// Pending returns the number of calls started with Go that have not
	// completed yet.
	Pending() int
}

// Get sends req and decodes the response into T.
func Get[T any](ctx context.Context, client Client, req *Request[T]) (*T, error) {
	body, err := client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	return req.Decode(body)
}

// Call is an in-flight or completed asynchronous request.
type Call struct {
	ID        uuid.UUID
	API       string
	Method    string
	StartedAt time.Time

	// Body and Error are set before the call is delivered on Done.
	Body  []byte
	Error error
	Done  chan *Call
}

// NewCall returns a call for d delivered on done.
func NewCall(d Descriptor, done chan *Call) *Call {
	if done == nil {
		done = make(chan *Call, 1)
	} else if cap(done) == 0 {
		panic("dsm: done channel is unbuffered")
	}

	method, _ := d.MethodName().Current()

	return &Call{
		ID:        uuid.New(),
		API:       d.APIName(),
		Method:    method,
		StartedAt: time.Now(),
		Done:      done,
	}
}

// Finish records the outcome and delivers the call.
func (c *Call) Finish(body []byte, err error) {
	c.Body = body
	c.Error = err

	select {
	case c.Done <- c:
	default:
		// done is full, the caller stopped listening
	}
}

// Result decodes the body of a completed call made for req.
func Result[T any](call *Call, req *Request[T]) (*T, error) {
	if call.Error != nil {
		return nil, call.Error
	}

	return req.Decode(call.Body)
}

// Wait blocks until call completes or ctx ends.
func Wait(ctx context.Context, call *Call) (*Call, error) {
	select {
	case done := <-call.Done:
		return done, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s: %w", call.API, ctx.Err())
	}
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a dsm.Client.
//
// # Endpoint
//
// Either Endpoint or Host must be set. Endpoint is a base URL such as
// "https://nas.local:5001"; dsmclient.New adds "https://" when no scheme is
// present and trims a trailing slash. When only Host is set the endpoint is
// built from it, using Port or the default DSM port for the scheme (5000 for
// http, 5001 for https).
//
// # Sessions
//
// SessionID seeds the session; it can be changed later through
// Client.SetSessionID, for example after api.Authenticate.
//
// # Timeouts, retries, and TLS
//
// Per-request timeouts should generally be controlled via context. The
// transport does not retry unless RetryMax is set; capability misses are
// retried once regardless. SkipTLSVerify is only honored when the
// environment variable DSM_DEV_MODE is set to "true" or "1".
type Config struct {
	// Endpoint: base URL of the DSM web server.
	Endpoint string
	// Host: DSM host name, used when Endpoint is empty.
	Host string
	// Port: port used with Host. Zero selects the default for the scheme.
	Port int
	// HTTPS: use https with Host.
	HTTPS bool

	// SessionID: initial session id sent as _sid.
	SessionID string

	// HTTPTimeout: transport timeout. Zero uses the default.
	HTTPTimeout time.Duration
	// RetryMax: transport retries for connection errors and 5xx. Default 0.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration

	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// SkipTLSVerify: skip certificate verification, only with DSM_DEV_MODE.
	SkipTLSVerify bool

	// Cache: optional store for capability snapshots shared across clients.
	Cache Cache
	// CapabilityTTL: lifetime of a cached snapshot. Zero uses the default.
	CapabilityTTL time.Duration
	// DiscoverOnInit: fetch capabilities while constructing the client when
	// no cached snapshot is available.
	DiscoverOnInit bool

	// Interceptors: optional request/response hooks run by the transport.
	Interceptors *InterceptorChain
	// RateLimit: maximum requests per second, zero for no limit.
	RateLimit float64
	// MultipartBoundary: boundary of multipart bodies. Empty uses the default.
	MultipartBoundary string
}
