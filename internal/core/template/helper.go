// Package template holds the registry of document templates and the helpers
// that turn validated request data into Typst markup. A helper is constructed
// per request, is stateless after construction, and renders as a pure
// function of its data and config.
package template

import (
	"strings"

	"github.com/rendis/resume-forge/internal/core/entity"
)

// Config is the per-request template configuration.
type Config struct {
	SpacingMode entity.SpacingMode
}

// Helper is the narrow behavioral contract every template implements.
type Helper interface {
	// ValidateData checks the helper's own required fields. Idempotent.
	ValidateData() error
	// Render emits the full Typst document. Optional-but-missing data never
	// errors; the section is simply omitted.
	Render() (string, error)
	RequiredFields() []string
	Type() entity.DocumentType
}

// Analyzer is implemented by helpers that can estimate rendered size.
type Analyzer interface {
	AnalyzeDocument() *ContentAnalysis
}

// assemble joins non-empty blocks with blank lines between them.
func assemble(blocks ...string) string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if strings.TrimSpace(b) != "" {
			out = append(out, strings.TrimRight(b, "\n"))
		}
	}
	return strings.Join(out, "\n\n") + "\n"
}

// requireFields checks that every dotted path resolves to a truthy value.
func requireFields(data map[string]any, paths []string) error {
	for _, p := range paths {
		if !present(data, p) {
			return entity.MissingFieldError(p)
		}
	}
	return nil
}

func present(data map[string]any, path string) bool {
	var current any = data
	for _, seg := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		current, ok = m[seg]
		if !ok {
			return false
		}
	}
	switch t := current.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case nil:
		return false
	}
	return true
}
