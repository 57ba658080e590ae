package dsm

import (
	"errors"
	"fmt"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrAPINotFound        = errors.New("API not found")
	ErrUnsupportedVersion = errors.New("unsupported API version")
	ErrInvalidTarget      = errors.New("invalid request target")
	ErrInvalidResponse    = errors.New("invalid response")
	ErrNoCoverage         = errors.New("no value declared for negotiated version")
	ErrUnknownCode        = errors.New("unknown error code")
	ErrConfigRequired     = errors.New("config is required")
	ErrEndpointRequired   = errors.New("DSM endpoint is required")
	ErrSkipTLSOnlyInDev   = errors.New("skipTLS is only allowed in development environments")
	ErrNATSConfigRequired = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCache   = errors.New("unsupported cache type")
	ErrKeyNotFound        = errors.New("key not found")
	ErrEntryExpired       = errors.New("entry expired")
	ErrKeyNotFoundInChain = errors.New("key not found in any cache")
)

// ErrorDetail is one per-item failure reported alongside a business error,
// for example one path a multi-path delete could not remove.
type ErrorDetail struct {
	Code int    `json:"code" yaml:"code"`
	Path string `json:"path" yaml:"path"`
}

// Message resolves the item code against the FileStation taxonomy.
func (d ErrorDetail) Message() string {
	message, _ := FileStation.Resolve(d.Code)

	return message
}

// String implements fmt.Stringer.
func (d ErrorDetail) String() string {
	if d.Path == "" {
		return d.Message()
	}

	return d.Message() + ": " + d.Path
}

// APIError is a business failure reported by the server in the response
// envelope, resolved through a taxonomy chain.
type APIError struct {
	// Code is the numeric code exactly as the server sent it.
	Code int `json:"code" yaml:"code"`
	// Message is the resolved description, "Unknown error" when no taxonomy
	// in the chain knows the code.
	Message string `json:"message" yaml:"message"`
	// Taxonomy is the taxonomy that matched the code, nil when none did.
	Taxonomy *Taxonomy `json:"-" yaml:"-"`
	// Details holds per-item failures, unmodified.
	Details []ErrorDetail `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var builder strings.Builder

	if e.Taxonomy != nil {
		builder.WriteString(e.Taxonomy.Name())
		builder.WriteString(": ")
	}

	fmt.Fprintf(&builder, "%s (code: %d)", e.Message, e.Code)

	if len(e.Details) > 0 {
		items := make([]string, len(e.Details))
		for i, detail := range e.Details {
			items[i] = detail.String()
		}

		fmt.Fprintf(&builder, " [%s]", strings.Join(items, "; "))
	}

	return builder.String()
}

// Unwrap exposes ErrUnknownCode for codes no taxonomy resolved.
func (e *APIError) Unwrap() error {
	if e.Taxonomy == nil {
		return ErrUnknownCode
	}

	return nil
}

// Is reports whether target is an APIError for the same code resolved by the
// same taxonomy. A target without a taxonomy matches on code alone.
func (e *APIError) Is(target error) bool {
	other, ok := target.(*APIError)
	if !ok {
		return false
	}

	if other.Code != e.Code {
		return false
	}

	return other.Taxonomy == nil || other.Taxonomy == e.Taxonomy
}

// Details returns the per-item failures carried by err, if any.
func Details(err error) []ErrorDetail {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Details
	}

	return nil
}

// IsSessionError reports whether err means the session id is missing,
// expired or rejected.
func IsSessionError(err error) bool {
	return hasCode(err, Common, CodeSessionTimeout, CodeSessionInterrupted)
}

// IsPermissionError reports whether err is a permission failure.
func IsPermissionError(err error) bool {
	return hasCode(err, Common, CodePermissionDenied) || hasCode(err, FileStation, 407)
}

// IsNotFound reports whether err is a "no such file or directory" failure,
// directly or through a per-item detail.
func IsNotFound(err error) bool {
	if hasCode(err, FileStation, 408) {
		return true
	}

	for _, detail := range Details(err) {
		if detail.Code == 408 {
			return true
		}
	}

	return false
}

func hasCode(err error, taxonomy *Taxonomy, codes ...int) bool {
	apiErr := &APIError{}
	if !errors.As(err, &apiErr) || apiErr.Taxonomy != taxonomy {
		return false
	}

	for _, code := range codes {
		if apiErr.Code == code {
			return true
		}
	}

	return false
}
