package dsm

import (
	"io"
	"net/http"
	"net/url"
)

// Encoding selects how parameters are carried.
type Encoding int

// Encodings.
const (
	// EncodingQuery sends every parameter in the URL of a GET request.
	EncodingQuery Encoding = iota
	// EncodingMultipart sends every parameter as a multipart/form-data POST body.
	EncodingMultipart
)

// String implements fmt.Stringer.
func (e Encoding) String() string {
	if e == EncodingMultipart {
		return "multipart"
	}

	return "query"
}

// Descriptor is the version-independent description of one call the
// builder turns into a Target.
type Descriptor interface {
	APIName() string
	MethodName() Variant[string]
	VersionRange() VersionRange
	RequestEncoding() Encoding
	ErrorTaxonomy() *Taxonomy
	EncodeParams(enc *Encoder)
}

// Request describes a call whose successful response decodes into T.
type Request[T any] struct {
	// API is the API name, e.g. "SYNO.FileStation.List".
	API string
	// Method is the method name, which may differ by version.
	Method Variant[string]
	// Versions is the range of versions the caller understands.
	Versions VersionRange
	// Encoding selects query or multipart transport.
	Encoding Encoding
	// Errors is the taxonomy failures are resolved against.
	Errors *Taxonomy

	encode func(enc *Encoder)
}

// RequestOption customises a Request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	encoding Encoding
	errors   *Taxonomy
}

// WithMultipart sends the request as a multipart POST.
func WithMultipart() RequestOption {
	return func(o *requestOptions) {
		o.encoding = EncodingMultipart
	}
}

// WithErrors resolves failures against taxonomy instead of Common.
func WithErrors(taxonomy *Taxonomy) RequestOption {
	return func(o *requestOptions) {
		o.errors = taxonomy
	}
}

// NewRequest returns a request for api. encode may be nil for calls
// without operation parameters.
func NewRequest[T any](api string, method Variant[string], versions VersionRange, encode func(enc *Encoder), opts ...RequestOption) *Request[T] {
	options := requestOptions{errors: Common}
	for _, opt := range opts {
		opt(&options)
	}

	return &Request[T]{
		API:      api,
		Method:   method,
		Versions: versions,
		Encoding: options.encoding,
		Errors:   options.errors,
		encode:   encode,
	}
}

// APIName implements Descriptor.
func (r *Request[T]) APIName() string { return r.API }

// MethodName implements Descriptor.
func (r *Request[T]) MethodName() Variant[string] { return r.Method }

// VersionRange implements Descriptor.
func (r *Request[T]) VersionRange() VersionRange { return r.Versions }

// RequestEncoding implements Descriptor.
func (r *Request[T]) RequestEncoding() Encoding { return r.Encoding }

// ErrorTaxonomy implements Descriptor.
func (r *Request[T]) ErrorTaxonomy() *Taxonomy {
	if r.Errors == nil {
		return Common
	}

	return r.Errors
}

// EncodeParams implements Descriptor.
func (r *Request[T]) EncodeParams(enc *Encoder) {
	if r.encode != nil {
		r.encode(enc)
	}
}

// Decode decodes a raw response body for this request.
func (r *Request[T]) Decode(body []byte) (*T, error) {
	return Decode[T](body, r.ErrorTaxonomy())
}

// Target is a fully resolved request ready for the transport.
type Target struct {
	API         string
	Method      string
	Version     Version
	HTTPMethod  string
	URL         *url.URL
	ContentType string
	// Body returns a fresh reader over the request body; nil for GET.
	Body func() (io.Reader, error)
	// ContentLength is the body size in bytes, zero without a body.
	ContentLength int64
}

// IsMultipart reports whether the target carries a multipart body.
func (t *Target) IsMultipart() bool {
	return t.HTTPMethod == http.MethodPost
}
