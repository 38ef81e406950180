package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/resume-forge/internal/core/entity"
)

func TestGenerateResume(t *testing.T) {
	data := map[string]any{
		"personalInfo": map[string]any{
			"name":  "Ada Lovelace",
			"email": "ada@example.com",
		},
		"experience": []any{
			map[string]any{
				"position":     "Engineer",
				"company":      "Babbage & Co",
				"startDate":    "2019-03",
				"achievements": []any{"Shipped the difference engine"},
			},
		},
	}

	artifact, err := NewGenerator().Generate(entity.DocumentTypeResume, data)
	require.NoError(t, err)

	assert.Equal(t, entity.FormatDOCX, artifact.Format)
	assert.Equal(t, "resume_Ada_Lovelace.docx", artifact.Filename)
	assert.True(t, bytes.HasPrefix(artifact.Bytes, []byte("PK")), "docx is a zip container")
	assert.Greater(t, len(artifact.Bytes), 1000)
}

func TestGenerateCoverLetter(t *testing.T) {
	data := map[string]any{
		"personalInfo": map[string]any{"name": "Ada Lovelace", "email": "ada@example.com"},
		"body":         "I am writing to apply.",
	}

	artifact, err := NewGenerator().Generate(entity.DocumentTypeCoverLetter, data)
	require.NoError(t, err)
	assert.Equal(t, "cover_letter_Ada_Lovelace.docx", artifact.Filename)
	assert.True(t, bytes.HasPrefix(artifact.Bytes, []byte("PK")))
}

func TestGenerateCoverLetterDefaults(t *testing.T) {
	data := map[string]any{
		"personalInfo": map[string]any{"name": "Ada Lovelace", "email": "ada@example.com"},
		"body":         "I am writing to apply.",
	}

	before := time.Now().Format("January 2, 2006")
	artifact, err := NewGenerator().Generate(entity.DocumentTypeCoverLetter, data)
	require.NoError(t, err)
	after := time.Now().Format("January 2, 2006")

	xml := documentXML(t, artifact.Bytes)
	assert.Contains(t, xml, "Dear Hiring Manager,", "salutation falls back to the generic form")
	assert.True(t, strings.Contains(xml, before) || strings.Contains(xml, after),
		"date defaults to today")
}

func TestGenerateCoverLetterDerivedSalutation(t *testing.T) {
	data := map[string]any{
		"personalInfo": map[string]any{"name": "Ada Lovelace", "email": "ada@example.com"},
		"recipient":    map[string]any{"company": "Analytical Engines Ltd"},
		"date":         "March 14, 2026",
		"body":         "I am writing to apply.",
	}

	artifact, err := NewGenerator().Generate(entity.DocumentTypeCoverLetter, data)
	require.NoError(t, err)

	xml := documentXML(t, artifact.Bytes)
	assert.Contains(t, xml, "Dear Hiring Manager at Analytical Engines Ltd,")
	assert.Contains(t, xml, "March 14, 2026")
}

// documentXML extracts the main document part from the zipped artifact.
func documentXML(t *testing.T, raw []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(content)
	}
	t.Fatal("word/document.xml missing from the archive")
	return ""
}

func TestGenerateUnsupportedType(t *testing.T) {
	_, err := NewGenerator().Generate("poster", map[string]any{})
	var svcErr *entity.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, entity.CodeInvalidParameter, svcErr.Code)
}
