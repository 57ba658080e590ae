package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/fivetwenty-io/dsm/internal/auth"
	"github.com/fivetwenty-io/dsm/internal/constants"
	"github.com/fivetwenty-io/dsm/pkg/dsm"
)

// Builder turns descriptors into targets against one endpoint.
type Builder struct {
	directory *Directory
	baseURL   *url.URL
	sessions  *auth.SessionManager
	boundary  string
}

// NewBuilder returns a builder resolving paths against baseURL.
func NewBuilder(directory *Directory, baseURL *url.URL, sessions *auth.SessionManager, boundary string) *Builder {
	if sessions == nil {
		sessions = auth.NewSessionManager("")
	}

	return &Builder{
		directory: directory,
		baseURL:   baseURL,
		sessions:  sessions,
		boundary:  boundary,
	}
}

// Build resolves d against the directory. A capability miss triggers one
// refresh and one more lookup.
func (b *Builder) Build(ctx context.Context, d dsm.Descriptor) (*dsm.Target, error) {
	api := d.APIName()

	capability, err := b.lookup(ctx, api)
	if err != nil {
		return nil, err
	}

	version, err := d.VersionRange().Negotiate(capability.Versions())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", api, err)
	}

	method, ok := d.MethodName().Resolve(version)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no method for version %d", dsm.ErrNoCoverage, api, version)
	}

	target := &dsm.Target{
		API:     api,
		Method:  method,
		Version: version,
	}

	endpoint, err := b.resolve(capability.Path)
	if err != nil {
		return nil, err
	}

	target.URL = endpoint

	switch d.RequestEncoding() {
	case dsm.EncodingMultipart:
		err = b.encodeMultipart(d, target)
	default:
		err = b.encodeQuery(d, target)
	}

	if err != nil {
		return nil, fmt.Errorf("encoding %s.%s: %w", api, method, err)
	}

	return target, nil
}

func (b *Builder) lookup(ctx context.Context, api string) (dsm.Capability, error) {
	capability, err := b.directory.Lookup(api)
	if err == nil {
		return capability, nil
	}

	// Discovery must stay reachable without discovery.
	if api == constants.InfoAPI {
		return Bootstrap()[constants.InfoAPI], nil
	}

	_, refreshErr := b.directory.Refresh(ctx)
	if refreshErr != nil {
		return dsm.Capability{}, fmt.Errorf("%w: %s: %w", dsm.ErrAPINotFound, api, refreshErr)
	}

	return b.directory.Lookup(api)
}

func (b *Builder) resolve(path string) (*url.URL, error) {
	if b.baseURL == nil || b.baseURL.Scheme == "" || b.baseURL.Host == "" {
		return nil, fmt.Errorf("%w: endpoint is not an absolute URL", dsm.ErrInvalidTarget)
	}

	ref, err := url.Parse(constants.APIPrefix + path)
	if err != nil {
		return nil, fmt.Errorf("%w: path %q: %w", dsm.ErrInvalidTarget, path, err)
	}

	if ref.IsAbs() || ref.Host != "" || ref.RawQuery != "" || ref.Fragment != "" {
		return nil, fmt.Errorf("%w: path %q", dsm.ErrInvalidTarget, path)
	}

	return b.baseURL.ResolveReference(ref), nil
}

// The operation parameters come first, the routing parameters after them.
func (b *Builder) encode(d dsm.Descriptor, target *dsm.Target, sink dsm.Sink) error {
	enc := dsm.NewEncoder(target.Version, sink)

	d.EncodeParams(enc)

	enc.Set(constants.ParamAPI, dsm.String(target.API))
	enc.Set(constants.ParamVersion, dsm.Int(target.Version))
	enc.Set(constants.ParamMethod, dsm.String(target.Method))

	if sid := b.sessions.ID(); sid != "" {
		enc.Set(constants.ParamSessionID, dsm.String(sid))
	}

	return enc.Err()
}

func (b *Builder) encodeQuery(d dsm.Descriptor, target *dsm.Target) error {
	sink := dsm.NewQuerySink()

	err := b.encode(d, target, sink)
	if err != nil {
		return err
	}

	target.HTTPMethod = http.MethodGet
	target.URL.RawQuery = sink.Encode()

	return nil
}

func (b *Builder) encodeMultipart(d dsm.Descriptor, target *dsm.Target) error {
	sink := dsm.NewMultipartSink(b.boundary)

	err := b.encode(d, target, sink)
	if err != nil {
		return err
	}

	body, err := sink.Bytes()
	if err != nil {
		return err
	}

	target.HTTPMethod = http.MethodPost
	target.ContentType = sink.ContentType()
	target.ContentLength = int64(len(body))
	target.Body = func() (io.Reader, error) {
		return bytes.NewReader(body), nil
	}

	return nil
}
