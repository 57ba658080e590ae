package dsm

import (
	"slices"
)

// Entry is one alternative of a Variant, available from version From until
// an entry with a higher From supersedes it.
type Entry[T any] struct {
	Value T
	From  Version
}

// Variant holds the alternatives of a name or value keyed by the version
// they became available in. Entries are kept ordered by decreasing From, so
// the ranges between consecutive entries never overlap.
type Variant[T any] struct {
	entries []Entry[T]
}

// NewVariant returns a variant whose current alternative is available from
// version from, falling back to previous alternatives for older versions.
//
//	NewVariant("path", 2, Entry[string]{"dest_folder_path", 1})
func NewVariant[T any](current T, from Version, previous ...Entry[T]) Variant[T] {
	entries := make([]Entry[T], 0, len(previous)+1)
	entries = append(entries, Entry[T]{Value: current, From: from})
	entries = append(entries, previous...)

	slices.SortStableFunc(entries, func(a, b Entry[T]) int {
		return b.From - a.From
	})

	return Variant[T]{entries: entries}
}

// Always returns a variant available for every version.
func Always[T any](value T) Variant[T] {
	return NewVariant(value, 1)
}

// Since returns a variant available from version from onwards.
func Since[T any](value T, from Version) Variant[T] {
	return NewVariant(value, from)
}

// Resolve selects the alternative for version v. ok is false when no entry
// covers v.
func (v Variant[T]) Resolve(version Version) (T, bool) {
	for _, entry := range v.entries {
		if entry.From <= version {
			return entry.Value, true
		}
	}

	var zero T

	return zero, false
}

// Entries returns a copy of the alternatives, newest first.
func (v Variant[T]) Entries() []Entry[T] {
	return slices.Clone(v.entries)
}

// Current returns the newest alternative.
func (v Variant[T]) Current() (T, bool) {
	if len(v.entries) == 0 {
		var zero T

		return zero, false
	}

	return v.entries[0].Value, true
}

// IsZero reports whether the variant has no alternatives.
func (v Variant[T]) IsZero() bool {
	return len(v.entries) == 0
}
