package dsm

import (
	"maps"
	"slices"
)

// Capability is what the server advertises for one API name.
type Capability struct {
	Path          string `json:"path"                    yaml:"path"`
	MinVersion    int    `json:"minVersion"              yaml:"min_version"`
	MaxVersion    int    `json:"maxVersion"              yaml:"max_version"`
	RequestFormat string `json:"requestFormat,omitempty" yaml:"request_format,omitempty"`
}

// Versions returns the supported version range.
func (c Capability) Versions() VersionRange {
	return VersionRange{Min: c.MinVersion, Max: c.MaxVersion}
}

// Valid reports whether the capability can be used: it names a path and
// a non-empty version range.
func (c Capability) Valid() bool {
	return c.Path != "" && c.MinVersion <= c.MaxVersion
}

// CapabilityMap maps API names to capabilities.
type CapabilityMap map[string]Capability

// Names returns the API names in lexical order.
func (m CapabilityMap) Names() []string {
	return slices.Sorted(maps.Keys(m))
}

// Valid returns a copy holding only usable entries, plus the names of the
// entries that were dropped.
func (m CapabilityMap) Valid() (CapabilityMap, []string) {
	valid := make(CapabilityMap, len(m))

	var dropped []string

	for _, name := range m.Names() {
		capability := m[name]
		if !capability.Valid() {
			dropped = append(dropped, name)

			continue
		}

		valid[name] = capability
	}

	return valid, dropped
}
