package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rendis/resume-forge/internal/core/entity"
)

func TestCacheKeyDeterministic(t *testing.T) {
	data := map[string]any{
		"personalInfo": map[string]any{"name": "Ada", "email": "ada@example.com"},
		"years":        float64(10),
	}
	k1 := CacheKey(entity.DocumentTypeResume, "classic", data, entity.FormatPDF)
	k2 := CacheKey(entity.DocumentTypeResume, "classic", data, entity.FormatPDF)
	assert.Equal(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "pdf:resume:classic:"))
	assert.Len(t, k1, len("pdf:resume:classic:")+64)
}

func TestCacheKeyUnicodeNormalization(t *testing.T) {
	composed := map[string]any{"personalInfo": map[string]any{"name": "Zoé"}}
	decomposed := map[string]any{"personalInfo": map[string]any{"name": "Zoé"}}

	k1 := CacheKey(entity.DocumentTypeResume, "classic", composed, entity.FormatPDF)
	k2 := CacheKey(entity.DocumentTypeResume, "classic", decomposed, entity.FormatPDF)
	assert.Equal(t, k1, k2, "NFC-equivalent content must share a key")
}

func TestCacheKeyDiscriminates(t *testing.T) {
	data := map[string]any{"personalInfo": map[string]any{"name": "Ada"}}

	pdf := CacheKey(entity.DocumentTypeResume, "classic", data, entity.FormatPDF)
	typ := CacheKey(entity.DocumentTypeResume, "classic", data, entity.FormatTypst)
	assert.NotEqual(t, pdf, typ)
	assert.True(t, strings.HasPrefix(typ, "typst:"))

	other := CacheKey(entity.DocumentTypeResume, "two_column", data, entity.FormatPDF)
	assert.NotEqual(t, pdf, other)

	changed := CacheKey(entity.DocumentTypeResume, "classic",
		map[string]any{"personalInfo": map[string]any{"name": "Ada "}}, entity.FormatPDF)
	assert.NotEqual(t, pdf, changed)
}

func TestCacheKeyNumberForms(t *testing.T) {
	// JSON decoding yields float64; integral floats must encode without a
	// fractional suffix so re-decoded payloads key identically.
	a := CacheKey(entity.DocumentTypeResume, "classic",
		map[string]any{"n": float64(3)}, entity.FormatPDF)
	b := CacheKey(entity.DocumentTypeResume, "classic",
		map[string]any{"n": 3.0}, entity.FormatPDF)
	assert.Equal(t, a, b)
}

func TestCacheKeyArrayOrderSignificant(t *testing.T) {
	a := CacheKey(entity.DocumentTypeResume, "classic",
		map[string]any{"skills": []any{"Go", "Typst"}}, entity.FormatPDF)
	b := CacheKey(entity.DocumentTypeResume, "classic",
		map[string]any{"skills": []any{"Typst", "Go"}}, entity.FormatPDF)
	assert.NotEqual(t, a, b)
}
