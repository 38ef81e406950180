package template

import (
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rendis/resume-forge/internal/core/entity"
	"github.com/rendis/resume-forge/internal/core/markup"
)

// Line estimation constants: roughly 75 characters per rendered line, plus
// two lines of header/spacing overhead per section.
const (
	charsPerLine        = 75
	sectionLineOverhead = 2
)

// SectionMetrics are the per-section content measurements.
type SectionMetrics struct {
	Name           string `json:"name"`
	WordCount      int    `json:"word_count"`
	CharCount      int    `json:"char_count"`
	EstimatedLines int    `json:"estimated_lines"`
}

// ContentAnalysis is the helper's size estimate for the rendered document.
type ContentAnalysis struct {
	Sections        []SectionMetrics   `json:"sections"`
	TotalWords      int                `json:"total_words"`
	TotalChars      int                `json:"total_chars"`
	TotalLines      int                `json:"total_lines"`
	SpacingMode     entity.SpacingMode `json:"spacing_mode"`
	LinesPerPage    int                `json:"lines_per_page"`
	EstimatedPages  float64            `json:"estimated_pages"`
	Recommendations []string           `json:"recommendations"`
}

// analyzedSection names a logical section and the data keys (with aliases)
// that feed it.
type analyzedSection struct {
	name string
	keys []string
}

// recommendationRule pairs a compiled condition over the metrics environment
// with its plain-language suggestion.
type recommendationRule struct {
	program *vm.Program
	message string
}

// ruleEnv is the expression environment the recommendation conditions see.
type ruleEnv struct {
	EstimatedPages float64 `expr:"estimated_pages"`
	WordCount      int     `expr:"word_count"`
	SpacingMode    string  `expr:"spacing_mode"`
}

var recommendationRules = compileRules([]struct{ cond, message string }{
	{
		cond:    "estimated_pages > 2.0",
		message: "Estimated length exceeds two pages; trim older entries or switch to ultra-compact spacing.",
	},
	{
		cond:    `estimated_pages > 1.5 && spacing_mode == "normal"`,
		message: "Switch to compact spacing to fit more content per page.",
	},
	{
		cond:    "word_count > 800",
		message: "Word count is above 800; tighten bullet points and summaries.",
	},
})

func compileRules(defs []struct{ cond, message string }) []recommendationRule {
	rules := make([]recommendationRule, 0, len(defs))
	for _, def := range defs {
		program, err := expr.Compile(def.cond, expr.Env(ruleEnv{}), expr.AsBool())
		if err != nil {
			// Rules are package constants; a compile failure is a programmer
			// error surfaced at init.
			panic("template: bad recommendation rule " + def.cond + ": " + err.Error())
		}
		rules = append(rules, recommendationRule{program: program, message: def.message})
	}
	return rules
}

// analyzeSections measures the named sections and derives page estimates and
// recommendations for the given spacing mode.
func analyzeSections(data map[string]any, mode entity.SpacingMode, sections []analyzedSection) *ContentAnalysis {
	analysis := &ContentAnalysis{
		SpacingMode:  mode,
		LinesPerPage: linesPerPage(mode),
	}

	for _, section := range sections {
		v := markup.FieldAny(data, section.keys[0], section.keys[1:]...)
		if v == nil {
			continue
		}
		words, chars := countText(v)
		if chars == 0 {
			continue
		}
		lines := int(math.Ceil(float64(chars)/charsPerLine)) + sectionLineOverhead
		analysis.Sections = append(analysis.Sections, SectionMetrics{
			Name:           section.name,
			WordCount:      words,
			CharCount:      chars,
			EstimatedLines: lines,
		})
		analysis.TotalWords += words
		analysis.TotalChars += chars
		analysis.TotalLines += lines
	}

	analysis.EstimatedPages = math.Round(float64(analysis.TotalLines)/float64(analysis.LinesPerPage)*100) / 100

	env := ruleEnv{
		EstimatedPages: analysis.EstimatedPages,
		WordCount:      analysis.TotalWords,
		SpacingMode:    string(mode),
	}
	for _, rule := range recommendationRules {
		hit, err := expr.Run(rule.program, env)
		if err != nil {
			continue
		}
		if hit.(bool) {
			analysis.Recommendations = append(analysis.Recommendations, rule.message)
		}
	}
	return analysis
}

// countText sums words and characters over every string leaf.
func countText(v any) (words, chars int) {
	switch t := v.(type) {
	case string:
		chars = len(t)
		words = len(strings.Fields(t))
	case []any:
		for _, item := range t {
			w, c := countText(item)
			words += w
			chars += c
		}
	case map[string]any:
		for _, item := range t {
			w, c := countText(item)
			words += w
			chars += c
		}
	}
	return words, chars
}
