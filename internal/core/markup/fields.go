package markup

import (
	"fmt"
	"strconv"
	"strings"
)

// truthy reports whether a value counts as present. The empty string is
// falsy: downstream rendering relies on fallbacks firing when a key exists
// but is blank.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// Field returns obj[primary] when truthy, else the first truthy fallback,
// else def. Values are stringified; numbers keep their shortest form.
func Field(obj map[string]any, primary string, fallbacks []string, def string) string {
	if obj == nil {
		return def
	}
	keys := append([]string{primary}, fallbacks...)
	for _, k := range keys {
		if v, ok := obj[k]; ok && truthy(v) {
			return Stringify(v)
		}
	}
	return def
}

// FieldAny is Field without stringification, for list- and map-shaped
// sections.
func FieldAny(obj map[string]any, primary string, fallbacks ...string) any {
	if obj == nil {
		return nil
	}
	keys := append([]string{primary}, fallbacks...)
	for _, k := range keys {
		if v, ok := obj[k]; ok && truthy(v) {
			return v
		}
	}
	return nil
}

// Nested navigates a dotted path with optional numeric segments for array
// indices (e.g. "experience.0.title"). Missing segments return nil.
func Nested(obj map[string]any, path string) any {
	var current any = obj
	for _, seg := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil
			}
			current = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil
			}
			current = node[idx]
		default:
			return nil
		}
	}
	return current
}

// Stringify renders a scalar for display. JSON-decoded numbers arrive as
// float64; integral values drop the fraction.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Strings coerces a value into a string slice: a []any of scalars, a single
// string, or nil.
func Strings(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := Stringify(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	default:
		return nil
	}
}

// Maps coerces a value into a slice of maps, skipping other shapes.
func Maps(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
