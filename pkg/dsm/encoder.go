package dsm

import (
	"fmt"
)

// Sink receives resolved parameters in the order they are added.
type Sink interface {
	// Put records one parameter. value is the concrete value wire was
	// derived from, so a sink can treat files specially.
	Put(name, wire string, value Value) error
}

// Encoder binds parameters to a sink for one negotiated version. The first
// failure is kept and later calls become no-ops.
type Encoder struct {
	version Version
	sink    Sink
	err     error
}

// NewEncoder returns an encoder writing to sink for version.
func NewEncoder(version Version, sink Sink) *Encoder {
	return &Encoder{version: version, sink: sink}
}

// Version returns the negotiated version.
func (e *Encoder) Version() Version {
	return e.version
}

// Err returns the first failure, if any.
func (e *Encoder) Err() error {
	return e.err
}

// Set adds a parameter whose name never changes and which every version
// accepts.
func (e *Encoder) Set(name string, value Value) {
	e.Add(Always(name), value, 1)
}

// SetSince adds a parameter accepted from version from onwards.
func (e *Encoder) SetSince(name string, value Value, from Version) {
	e.Add(Always(name), value, from)
}

// Add adds a parameter whose name may differ by version. It is skipped when
// the negotiated version is below from.
func (e *Encoder) Add(name Variant[string], value Value, from Version) {
	if e.err != nil || e.version < from {
		return
	}

	wireName, ok := name.Resolve(e.version)
	if !ok {
		current, _ := name.Current()
		e.err = fmt.Errorf("%w: parameter %q at version %d", ErrNoCoverage, current, e.version)

		return
	}

	resolved, err := ResolveValue(value, e.version)
	if err != nil {
		e.err = fmt.Errorf("parameter %q: %w", wireName, err)

		return
	}

	wire, err := resolved.WireValue(e.version)
	if err != nil {
		e.err = fmt.Errorf("encoding parameter %q: %w", wireName, err)

		return
	}

	err = e.sink.Put(wireName, wire, resolved)
	if err != nil {
		e.err = fmt.Errorf("writing parameter %q: %w", wireName, err)
	}
}
