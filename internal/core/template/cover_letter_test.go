package template

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/resume-forge/internal/core/entity"
)

func sampleLetter() map[string]any {
	return map[string]any{
		"personalInfo": map[string]any{
			"name":  "Ada Lovelace",
			"email": "ada@example.com",
		},
		"body": []any{
			"I am writing to apply for the engineering role.",
			"My background covers a decade of systems work.",
		},
		"recipient": map[string]any{
			"name":    "Dr. Babbage",
			"company": "Analytical Engines Ltd",
		},
	}
}

func fixedLetter(t *testing.T, data map[string]any, modern bool) *coverLetter {
	t.Helper()
	name := "classic"
	if modern {
		name = "modern"
	}
	h, err := New(entity.DocumentTypeCoverLetter, name, data, Config{})
	require.NoError(t, err)
	cl := h.(*coverLetter)
	cl.now = func() time.Time { return time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC) }
	return cl
}

func TestCoverLetterRender(t *testing.T) {
	out, err := fixedLetter(t, sampleLetter(), false).Render()
	require.NoError(t, err)

	assert.Contains(t, out, "March 14, 2026", "date defaults to today")
	assert.Contains(t, out, "Dr. Babbage \\\nAnalytical Engines Ltd")
	assert.Contains(t, out, "Dear Dr. Babbage,")
	assert.Contains(t, out, "I am writing to apply for the engineering role.")
	assert.Contains(t, out, "Sincerely,\n\nAda Lovelace")
	assert.NotContains(t, out, "#line(", "classic layout has no accent rule")
}

func TestCoverLetterModernAccentRule(t *testing.T) {
	out, err := fixedLetter(t, sampleLetter(), true).Render()
	require.NoError(t, err)
	assert.Contains(t, out, "#line(length: 100%, stroke: 1.5pt + rgb(45, 55, 72))")
}

func TestCoverLetterSalutationChain(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(map[string]any)
		salutation string
	}{
		{"explicit wins", func(d map[string]any) {
			d["salutation"] = "To whom it may concern,"
		}, "To whom it may concern,"},
		{"recipient name", func(d map[string]any) {}, "Dear Dr. Babbage,"},
		{"recipient title", func(d map[string]any) {
			r := d["recipient"].(map[string]any)
			delete(r, "name")
			r["title"] = "Head of Engineering"
		}, "Dear Head of Engineering,"},
		{"company only", func(d map[string]any) {
			d["recipient"] = map[string]any{"company": "Analytical Engines Ltd"}
		}, "Dear Hiring Manager at Analytical Engines Ltd,"},
		{"nothing", func(d map[string]any) {
			delete(d, "recipient")
		}, "Dear Hiring Manager,"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := sampleLetter()
			tc.mutate(data)
			assert.Equal(t, tc.salutation, fixedLetter(t, data, false).salutation())
		})
	}
}

func TestCoverLetterBodyForms(t *testing.T) {
	data := sampleLetter()
	data["body"] = "One single paragraph."
	out, err := fixedLetter(t, data, false).Render()
	require.NoError(t, err)
	assert.Contains(t, out, "One single paragraph.")

	data = sampleLetter()
	delete(data, "body")
	data["content"] = []any{"Legacy key paragraph.", "  ", "Second one."}
	cl := fixedLetter(t, data, false)
	assert.Equal(t, []string{"Legacy key paragraph.", "Second one."}, cl.paragraphs())
}

func TestCoverLetterMissingBody(t *testing.T) {
	data := sampleLetter()
	data["body"] = []any{"   "}

	err := fixedLetter(t, data, false).ValidateData()
	var svcErr *entity.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, entity.CodeMissingRequiredField, svcErr.Code)
	assert.Equal(t, "body", svcErr.Context["field"])
}

func TestAnalyzeDocument(t *testing.T) {
	data := sampleResume()
	// Inflate the summary so the estimate crosses two pages in normal mode.
	data["professionalSummary"] = strings.Repeat("word ", 1400)

	h, err := New(entity.DocumentTypeResume, "classic", data, Config{SpacingMode: entity.SpacingNormal})
	require.NoError(t, err)

	analysis := h.(Analyzer).AnalyzeDocument()
	require.NotNil(t, analysis)

	assert.Equal(t, entity.SpacingNormal, analysis.SpacingMode)
	assert.Equal(t, 45, analysis.LinesPerPage)
	assert.Greater(t, analysis.EstimatedPages, 2.0)
	assert.GreaterOrEqual(t, analysis.TotalWords, 1400)

	require.NotEmpty(t, analysis.Recommendations)
	joined := strings.Join(analysis.Recommendations, " ")
	assert.Contains(t, joined, "two pages")
	assert.Contains(t, joined, "compact spacing")
	assert.Contains(t, joined, "above 800")
}

func TestAnalyzeDocumentSmall(t *testing.T) {
	h, err := New(entity.DocumentTypeResume, "classic", sampleResume(), Config{})
	require.NoError(t, err)

	analysis := h.(Analyzer).AnalyzeDocument()
	assert.Empty(t, analysis.Recommendations)
	assert.Less(t, analysis.EstimatedPages, 1.0)

	names := make([]string, 0, len(analysis.Sections))
	for _, s := range analysis.Sections {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "summary")
	assert.Contains(t, names, "experience")
	assert.NotContains(t, names, "projects")
}
