package dsm

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"strconv"
	"strings"
	"time"
)

// Value is a parameter value that knows its wire form for a negotiated version.
type Value interface {
	WireValue(version Version) (string, error)
}

// Resolver is implemented by values whose concrete value depends on the
// negotiated version.
type Resolver interface {
	ResolveValue(version Version) (Value, bool)
}

// ResolveValue unwraps versioned values until a concrete value for version
// remains. It fails with ErrNoCoverage when a versioned value declares no
// alternative for version.
func ResolveValue(value Value, version Version) (Value, error) {
	for {
		resolver, ok := value.(Resolver)
		if !ok {
			return value, nil
		}

		next, ok := resolver.ResolveValue(version)
		if !ok {
			return nil, fmt.Errorf("%w: no value for version %d", ErrNoCoverage, version)
		}

		value = next
	}
}

// Versioned is a value whose concrete value differs by negotiated version.
type Versioned struct {
	Variant[Value]
}

// NewVersioned returns a versioned value, see NewVariant.
func NewVersioned(current Value, from Version, previous ...Entry[Value]) Versioned {
	return Versioned{Variant: NewVariant(current, from, previous...)}
}

// ResolveValue implements Resolver.
func (v Versioned) ResolveValue(version Version) (Value, bool) {
	return v.Resolve(version)
}

// WireValue implements Value.
func (v Versioned) WireValue(version Version) (string, error) {
	value, err := ResolveValue(v, version)
	if err != nil {
		return "", err
	}

	return value.WireValue(version)
}

// String is a plain text value. It is not escaped.
type String string

// WireValue implements Value.
func (s String) WireValue(Version) (string, error) {
	return string(s), nil
}

// Int is an integer value.
type Int int

// WireValue implements Value.
func (i Int) WireValue(Version) (string, error) {
	return strconv.Itoa(int(i)), nil
}

// Int64 is a 64-bit integer value.
type Int64 int64

// WireValue implements Value.
func (i Int64) WireValue(Version) (string, error) {
	return strconv.FormatInt(int64(i), 10), nil
}

// Bool is a boolean value sent as "true" or "false".
type Bool bool

// WireValue implements Value.
func (b Bool) WireValue(Version) (string, error) {
	return strconv.FormatBool(bool(b)), nil
}

// Path is a single file system path. It is escaped because the server
// accepts comma separated lists wherever it accepts a path.
type Path string

// WireValue implements Value.
func (p Path) WireValue(Version) (string, error) {
	return Escape(string(p)), nil
}

// Password is a secret sent without escaping.
type Password string

// WireValue implements Value.
func (p Password) WireValue(Version) (string, error) {
	return string(p), nil
}

// String implements fmt.Stringer so secrets never reach logs.
func (p Password) String() string {
	return "********"
}

// List is a multi-valued parameter; every element is escaped.
type List []string

// WireValue implements Value.
func (l List) WireValue(Version) (string, error) {
	return JoinList(l), nil
}

// Date is sent as whole epoch milliseconds.
type Date time.Time

// WireValue implements Value. Halfway cases round to even.
func (d Date) WireValue(Version) (string, error) {
	t := time.Time(d)
	millis := math.RoundToEven(float64(t.Unix())*1000 + float64(t.Nanosecond())/1e6)

	return strconv.FormatFloat(millis, 'f', 0, 64), nil
}

// Set is an unordered collection of values. Elements keep the order they
// were first inserted in and duplicates are dropped, so the wire form is
// deterministic.
type Set[T interface {
	Value
	comparable
}] struct {
	elements []T
}

// NewSet returns a set holding the given elements in insertion order.
func NewSet[T interface {
	Value
	comparable
}](elements ...T) Set[T] {
	var set Set[T]

	set.Add(elements...)

	return set
}

// Add inserts elements not yet present.
func (s *Set[T]) Add(elements ...T) {
	for _, element := range elements {
		if !s.Contains(element) {
			s.elements = append(s.elements, element)
		}
	}
}

// Contains reports whether element is present.
func (s Set[T]) Contains(element T) bool {
	for _, existing := range s.elements {
		if existing == element {
			return true
		}
	}

	return false
}

// Len returns the number of elements.
func (s Set[T]) Len() int {
	return len(s.elements)
}

// Elements returns the elements in insertion order.
func (s Set[T]) Elements() []T {
	return append([]T(nil), s.elements...)
}

// WireValue implements Value. Each element is resolved for version on its own.
func (s Set[T]) WireValue(version Version) (string, error) {
	parts := make([]string, 0, len(s.elements))

	for _, element := range s.elements {
		resolved, err := ResolveValue(element, version)
		if err != nil {
			return "", err
		}

		wire, err := resolved.WireValue(version)
		if err != nil {
			return "", err
		}

		parts = append(parts, wire)
	}

	return strings.Join(parts, ","), nil
}

// File is binary content sent as a file part of a multipart request.
type File struct {
	// Name is the file name reported to the server.
	Name string

	// Open returns a fresh reader over the content each time it is called.
	Open func() (io.ReadCloser, error)
}

// FileBytes returns a File over in-memory content.
func FileBytes(name string, content []byte) File {
	return File{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// LocalFile returns a File reading from the local file system.
func LocalFile(filePath string) File {
	return File{
		Name: path.Base(strings.ReplaceAll(filePath, `\`, "/")),
		Open: func() (io.ReadCloser, error) {
			//nolint:gosec // The caller chose the file to upload.
			f, err := os.Open(filePath)
			if err != nil {
				return nil, fmt.Errorf("opening upload file: %w", err)
			}

			return f, nil
		},
	}
}

// WireValue implements Value. Outside a multipart payload a file is
// represented by its base name.
func (f File) WireValue(Version) (string, error) {
	return path.Base(f.Name), nil
}
