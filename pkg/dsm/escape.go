package dsm

import (
	"strings"
)

// Commas separate the elements of a multi-valued parameter, so every element
// is escaped: backslashes are doubled first, then commas are prefixed with a
// backslash. Password parameters are sent as-is.
var escaper = strings.NewReplacer(`\`, `\\`, `,`, `\,`)

// Escape escapes a single element of a multi-valued parameter.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var builder strings.Builder

	builder.Grow(len(s))

	escaped := false

	for _, r := range s {
		if escaped {
			builder.WriteRune(r)

			escaped = false

			continue
		}

		if r == '\\' {
			escaped = true

			continue
		}

		builder.WriteRune(r)
	}

	if escaped {
		builder.WriteByte('\\')
	}

	return builder.String()
}

// JoinList escapes every element and joins them with commas.
func JoinList(elements []string) string {
	escaped := make([]string, len(elements))
	for i, element := range elements {
		escaped[i] = Escape(element)
	}

	return strings.Join(escaped, ",")
}

// SplitList splits a wire string produced by JoinList on unescaped commas
// and unescapes every element.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}

	var (
		elements []string
		current  strings.Builder
		escaped  bool
	)

	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)

			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			elements = append(elements, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	if escaped {
		current.WriteByte('\\')
	}

	return append(elements, current.String())
}
