package entity

import (
	"fmt"
	"strings"
)

// DocumentType identifies the kind of document a template produces.
type DocumentType string

const (
	DocumentTypeResume      DocumentType = "resume"
	DocumentTypeCoverLetter DocumentType = "cover_letter"
)

// ParseDocumentType validates a raw document type string.
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case DocumentTypeResume, DocumentTypeCoverLetter:
		return DocumentType(s), nil
	}
	return "", NewError(CodeInvalidParameter,
		fmt.Sprintf("unknown document type %q", s)).
		WithContext("document_type", s)
}

// OutputFormat selects the artifact encoding.
type OutputFormat string

const (
	FormatPDF   OutputFormat = "pdf"
	FormatTypst OutputFormat = "typst"
	FormatDOCX  OutputFormat = "docx"
)

// ParseOutputFormat validates a raw format string; empty defaults to PDF.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatTypst, FormatDOCX:
		return OutputFormat(strings.ToLower(s)), nil
	}
	return "", NewError(CodeUnsupportedFormat,
		fmt.Sprintf("unsupported output format %q", s)).
		WithContext("format", s)
}

// Extension returns the output file extension for the format.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatTypst:
		return "typ"
	case FormatDOCX:
		return "docx"
	default:
		return "pdf"
	}
}

// ContentType returns the response media type for the format.
func (f OutputFormat) ContentType() string {
	switch f {
	case FormatTypst:
		return "text/plain; charset=utf-8"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/pdf"
	}
}

// SpacingMode selects the layout preset (margins, font size, leading).
type SpacingMode string

const (
	SpacingNormal       SpacingMode = "normal"
	SpacingCompact      SpacingMode = "compact"
	SpacingUltraCompact SpacingMode = "ultra-compact"
)

// ParseSpacingMode validates a raw spacing mode; empty defaults to compact.
func ParseSpacingMode(s string) (SpacingMode, error) {
	switch SpacingMode(s) {
	case "":
		return SpacingCompact, nil
	case SpacingNormal, SpacingCompact, SpacingUltraCompact:
		return SpacingMode(s), nil
	}
	return "", NewError(CodeInvalidParameter,
		fmt.Sprintf("unknown spacing mode %q", s)).
		WithContext("spacing_mode", s)
}

// DocumentRequest is the client's work order for one document.
type DocumentRequest struct {
	DocumentType    DocumentType   `json:"document_type"`
	Template        string         `json:"template"`
	Format          OutputFormat   `json:"format,omitempty"`
	Data            map[string]any `json:"data"`
	UltraValidation bool           `json:"ultra_validation,omitempty"`
	SpacingMode     SpacingMode    `json:"spacing_mode,omitempty"`
}

// RenderArtifact is the terminal output of the pipeline for one request.
type RenderArtifact struct {
	Format   OutputFormat
	Filename string
	Bytes    []byte // compiled payload for pdf/docx
	Source   string // typst markup when Format == typst
	Cached   bool   // true when served from the document cache
}

// ContentType returns the media type the artifact should be served with.
func (a *RenderArtifact) ContentType() string { return a.Format.ContentType() }

// OutputFilename derives the artifact filename from the person's name:
// {document_type}_{name_with_underscores}.{ext}.
func OutputFilename(docType DocumentType, data map[string]any, format OutputFormat) string {
	name := "output"
	if pi, ok := data["personalInfo"].(map[string]any); ok {
		if n, ok := pi["name"].(string); ok && n != "" {
			name = n
		}
	}
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	return fmt.Sprintf("%s_%s.%s", docType, name, format.Extension())
}
