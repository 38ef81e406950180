// Package markup holds the low-level Typst emission primitives shared by all
// template helpers: glyph escaping, alias-aware field lookup, and display
// formatting.
package markup

import "strings"

// escaper prefixes every Typst control glyph with a backslash. The backslash
// pair must come first: escaping an already-escaped string deliberately
// yields a literal backslash rather than double-escaping.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	`#`, `\#`,
	`$`, `\$`,
	`*`, `\*`,
	`_`, `\_`,
	`@`, `\@`,
	`~`, `\~`,
	`<`, `\<`,
	`>`, `\>`,
)

// Escape renders text safe for inclusion in Typst markup. Empty input
// returns the empty string.
func Escape(text string) string {
	if text == "" {
		return ""
	}
	return escaper.Replace(text)
}

// EscapeTree walks nested maps and slices, escaping every string leaf.
// Non-string scalars pass through unchanged. The input is not mutated.
func EscapeTree(v any) any {
	switch t := v.(type) {
	case string:
		return Escape(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = EscapeTree(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = EscapeTree(item)
		}
		return out
	default:
		return v
	}
}
