package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// DownloadFilePerm is the permission for files written by downloads.
	DownloadFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// UploadHTTPTimeout is used for multipart uploads, which the server may
	// hold open for a long time.
	UploadHTTPTimeout = 60 * time.Minute

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second

	// DiscoveryTimeout bounds a shared capability refresh.
	DiscoveryTimeout = 15 * time.Second
)

// Retry limits. The transport does not retry unless asked to.
const (
	// DefaultRetryMax is the default maximum number of transport retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Endpoint defaults.
const (
	// DefaultHTTPPort is the plaintext DSM port.
	DefaultHTTPPort = 5000

	// DefaultHTTPSPort is the encrypted DSM port.
	DefaultHTTPSPort = 5001

	// APIPrefix is the path prefix every CGI path is resolved under.
	APIPrefix = "/webapi/"
)

// Wire parameter names shared by every request.
const (
	ParamAPI       = "api"
	ParamVersion   = "version"
	ParamMethod    = "method"
	ParamSessionID = "_sid"
	ParamPassword  = "passwd"
)

// Discovery.
const (
	// InfoAPI is the discovery API, always reachable through the bootstrap entry.
	InfoAPI = "SYNO.API.Info"

	// InfoPath is the bootstrap CGI path of the discovery API.
	InfoPath = "query.cgi"

	// InfoQueryAll asks the discovery API for every API it knows.
	InfoQueryAll = "all"
)

// Multipart encoding.
const (
	// BinaryContentType is sent for every binary part.
	BinaryContentType = "application/octet-stream"

	// DefaultMultipartBoundary keeps multipart payloads deterministic.
	DefaultMultipartBoundary = "dsm-form-boundary-3f9c1a7e52b04d68"
)

// Cache settings.
const (
	// DefaultCacheSize is the default number of entries kept in memory.
	DefaultCacheSize = 64

	// DefaultCapabilityTTL is how long a stored capability snapshot stays valid.
	DefaultCapabilityTTL = 24 * time.Hour

	// DefaultNATSBucket is the default NATS KV bucket for capability snapshots.
	DefaultNATSBucket = "dsm-capabilities"

	// CapabilityCacheKeyPrefix prefixes snapshot keys.
	CapabilityCacheKeyPrefix = "capabilities."
)

// Time intervals and delays.
const (
	// DefaultPollInterval is used when polling background file tasks.
	DefaultPollInterval = 1 * time.Second

	// DefaultTaskPollTimeout bounds polling of background file tasks.
	DefaultTaskPollTimeout = 30 * time.Minute
)

// Redaction.
const (
	// RedactedValue replaces secrets in logs.
	RedactedValue = "[REDACTED]"
)
