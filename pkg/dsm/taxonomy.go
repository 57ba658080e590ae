package dsm

import (
	"maps"
	"slices"
)

// UnknownErrorMessage describes codes no taxonomy in a chain knows.
const UnknownErrorMessage = "Unknown error"

// Taxonomy is a named table of error codes with a base taxonomy consulted
// for codes it does not define. A taxonomy constructed without a base is
// its own base and terminates every chain it appears in.
type Taxonomy struct {
	name  string
	codes map[int]string
	base  *Taxonomy
}

// NewTaxonomy returns a taxonomy falling back to base. A nil base makes the
// taxonomy a root.
func NewTaxonomy(name string, base *Taxonomy, codes map[int]string) *Taxonomy {
	t := &Taxonomy{
		name:  name,
		codes: maps.Clone(codes),
		base:  base,
	}

	if t.base == nil {
		t.base = t
	}

	return t
}

// Name returns the taxonomy name.
func (t *Taxonomy) Name() string {
	return t.name
}

// Base returns the taxonomy consulted next. A root returns itself.
func (t *Taxonomy) Base() *Taxonomy {
	return t.base
}

// IsRoot reports whether the taxonomy terminates its chain.
func (t *Taxonomy) IsRoot() bool {
	return t.base == t
}

// Codes returns the codes this taxonomy defines itself, in ascending order.
func (t *Taxonomy) Codes() []int {
	return slices.Sorted(maps.Keys(t.codes))
}

// Lookup resolves code against this taxonomy only.
func (t *Taxonomy) Lookup(code int) (string, bool) {
	message, ok := t.codes[code]

	return message, ok
}

// Match walks the chain from t towards its root and returns the first
// taxonomy defining code, or nil when the chain is exhausted.
func (t *Taxonomy) Match(code int) *Taxonomy {
	seen := make(map[*Taxonomy]struct{})

	for current := t; current != nil; current = current.base {
		if _, ok := current.codes[code]; ok {
			return current
		}

		if current.IsRoot() {
			return nil
		}

		// A chain is a tree walk towards a root, a revisit means the chain
		// was wired into a loop.
		if _, ok := seen[current]; ok {
			return nil
		}

		seen[current] = struct{}{}
	}

	return nil
}

// Resolve returns the message for code from the first taxonomy in the chain
// that defines it. ok is false and the message is UnknownErrorMessage when
// none does.
func (t *Taxonomy) Resolve(code int) (string, bool) {
	matched := t.Match(code)
	if matched == nil {
		return UnknownErrorMessage, false
	}

	return matched.codes[code], true
}

// Err returns the error for code resolved through the chain, carrying the
// given per-item details.
func (t *Taxonomy) Err(code int, details ...ErrorDetail) *APIError {
	apiErr := &APIError{
		Code:    code,
		Message: UnknownErrorMessage,
		Details: details,
	}

	if matched := t.Match(code); matched != nil {
		apiErr.Taxonomy = matched
		apiErr.Message = matched.codes[code]
	}

	return apiErr
}
