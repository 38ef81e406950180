package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestField(t *testing.T) {
	obj := map[string]any{
		"title":    "",
		"position": "Engineer",
		"role":     "IC",
		"years":    3.0,
	}

	// Empty string counts as falsy, so the fallback fires.
	assert.Equal(t, "Engineer", Field(obj, "title", []string{"position", "role"}, "n/a"))
	assert.Equal(t, "IC", Field(obj, "missing", []string{"role"}, "n/a"))
	assert.Equal(t, "n/a", Field(obj, "missing", nil, "n/a"))
	assert.Equal(t, "3", Field(obj, "years", nil, ""))
	assert.Equal(t, "def", Field(nil, "x", nil, "def"))
}

func TestNested(t *testing.T) {
	obj := map[string]any{
		"personalInfo": map[string]any{"name": "A B"},
		"experience": []any{
			map[string]any{"title": "Dev"},
		},
	}

	assert.Equal(t, "A B", Nested(obj, "personalInfo.name"))
	assert.Equal(t, "Dev", Nested(obj, "experience.0.title"))
	assert.Nil(t, Nested(obj, "experience.1.title"))
	assert.Nil(t, Nested(obj, "personalInfo.name.deeper"))
	assert.Nil(t, Nested(obj, "missing.path"))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Strings([]any{"a", "", "b"}))
	assert.Equal(t, []string{"one"}, Strings("one"))
	assert.Nil(t, Strings(nil))
	assert.Nil(t, Strings(42))
}

func TestFormatDate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2023-04", "April 2023"},
		{"2023-04-15", "April 2023"},
		{"04-2023", "April 2023"},
		{"04-15-2023", "April 2023"},
		{"Present", "Present"},
		{"present", "present"},
		{"", ""},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDate(tt.in), "input %q", tt.in)
	}
}

func TestDateRange(t *testing.T) {
	assert.Equal(t, "April 2023 – Present", DateRange("2023-04", ""))
	assert.Equal(t, "April 2023 – June 2024", DateRange("2023-04", "2024-06"))
	assert.Equal(t, "Present", DateRange("", ""))
}

func TestLink(t *testing.T) {
	assert.Equal(t, `#link("https://x.io")[My Site]`, Link("https://x.io", "My Site"))
	// Display text falls back to the URL itself.
	assert.Equal(t, `#link("https://x.io")[https://x.io]`, Link("https://x.io", ""))
	// Display text is escaped.
	assert.Equal(t, `#link("https://x.io")[a\_b]`, Link("https://x.io", "a_b"))
	// Quotes and backslashes cannot break out of the string literal.
	assert.Equal(t, `#link("https://x.io/\"a\"")[site]`, Link(`https://x.io/"a"`, "site"))
	assert.Equal(t, `#link("https://x.io/\\p")[site]`, Link(`https://x.io/\p`, "site"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "resume_A_B.pdf", SanitizeFilename("resume_A_B.pdf"))
	assert.Equal(t, "a_b_c", SanitizeFilename(`a/b\c`))
	assert.Equal(t, "trimmed", SanitizeFilename("  trimmed.. "))
}
