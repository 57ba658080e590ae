package dsm

import (
	"fmt"
)

// Version is a negotiated API version.
type Version = int

// VersionRange is an inclusive range of API versions.
type VersionRange struct {
	Min Version `json:"min" yaml:"min"`
	Max Version `json:"max" yaml:"max"`
}

// Versions returns the inclusive range [minVersion, maxVersion].
func Versions(minVersion, maxVersion Version) VersionRange {
	return VersionRange{Min: minVersion, Max: maxVersion}
}

// Valid reports whether the range is non-empty.
func (r VersionRange) Valid() bool {
	return r.Min <= r.Max
}

// Contains reports whether v lies within the range.
func (r VersionRange) Contains(v Version) bool {
	return r.Min <= v && v <= r.Max
}

// Overlaps reports whether the two ranges share at least one version.
func (r VersionRange) Overlaps(other VersionRange) bool {
	return r.Valid() && other.Valid() && r.Min <= other.Max && other.Min <= r.Max
}

// Negotiate picks the version used for one request: the highest version
// both the caller and the server support.
func (r VersionRange) Negotiate(supported VersionRange) (Version, error) {
	if !r.Overlaps(supported) {
		return 0, fmt.Errorf("%w: requested %s, server supports %s", ErrUnsupportedVersion, r, supported)
	}

	return min(r.Max, supported.Max), nil
}

// String implements fmt.Stringer.
func (r VersionRange) String() string {
	return fmt.Sprintf("[%d,%d]", r.Min, r.Max)
}
