package template

import (
	"strings"

	"github.com/rendis/resume-forge/internal/core/entity"
	"github.com/rendis/resume-forge/internal/core/markup"
)

// Sidebar geometry and color are fixed for the two-column layout.
const (
	sidebarWidth = "32%"
	sidebarFill  = "rgb(45, 55, 72)"
)

// twoColumnResume renders a left sidebar (contact, skills, short education,
// certifications) against a right main column (summary, experience,
// projects).
type twoColumnResume struct {
	data map[string]any
	cfg  Config
	mode entity.SpacingMode
}

func newTwoColumnResume(data map[string]any, cfg Config) Helper {
	return &twoColumnResume{
		data: data,
		cfg:  cfg,
		mode: resolveSpacing(cfg, data),
	}
}

func (h *twoColumnResume) Type() entity.DocumentType { return entity.DocumentTypeResume }

func (h *twoColumnResume) RequiredFields() []string {
	return []string{"personalInfo.name", "personalInfo.email"}
}

func (h *twoColumnResume) ValidateData() error {
	return requireFields(h.data, h.RequiredFields())
}

func (h *twoColumnResume) Render() (string, error) {
	if err := h.ValidateData(); err != nil {
		return "", err
	}
	pi, _ := h.data["personalInfo"].(map[string]any)

	var b strings.Builder
	b.WriteString(preamble(h.mode))
	b.WriteString("\n\n#grid(\n  columns: (" + sidebarWidth + ", 1fr),\n  column-gutter: 14pt,\n")

	// Sidebar cell: filled block, white text.
	b.WriteString("  block(fill: " + sidebarFill + ", inset: 12pt, width: 100%, height: 100%)[\n")
	b.WriteString("    #set text(fill: white)\n")
	b.WriteString(indent(h.sidebar(pi), "    "))
	b.WriteString("\n  ],\n")

	// Main column cell.
	b.WriteString("  [\n")
	b.WriteString(indent(h.mainColumn(), "    "))
	b.WriteString("\n  ],\n)\n")
	return b.String(), nil
}

func (h *twoColumnResume) sidebar(pi map[string]any) string {
	var blocks []string

	if name := markup.Field(pi, "name", nil, ""); name != "" {
		blocks = append(blocks, "#text(size: 16pt, weight: \"bold\")["+markup.Escape(name)+"]")
	}
	if parts := contactParts(pi); len(parts) > 0 {
		blocks = append(blocks, "=== Contact\n\n"+strings.Join(parts, " \\\n"))
	}
	if s := skillsSection(h.data); s != "" {
		blocks = append(blocks, strings.Replace(s, "== ", "=== ", 1))
	}
	if s := shortEducation(h.data); s != "" {
		blocks = append(blocks, s)
	}
	if s := certificationsSection(h.data); s != "" {
		blocks = append(blocks, strings.Replace(s, "== ", "=== ", 1))
	}
	return strings.Join(blocks, "\n\n")
}

func (h *twoColumnResume) mainColumn() string {
	return strings.TrimRight(assemble(
		summarySection(h.data),
		experienceSection(h.data),
		projectsSection(h.data),
		publicationsSection(h.data),
		achievementsSection(h.data),
	), "\n")
}

// shortEducation is the sidebar's condensed education list: degree,
// institution and year only.
func shortEducation(data map[string]any) string {
	entries := markup.Maps(markup.FieldAny(data, "education"))
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("=== Education\n")
	for _, edu := range entries {
		degree := markup.Field(edu, "degree", []string{"qualification", "title"}, "")
		institution := markup.Field(edu, "institution", []string{"school", "university"}, "")
		date := markup.Field(edu, "graduationDate", []string{"graduation_date", "endDate"}, "")

		b.WriteString("\n*" + markup.Escape(degree) + "* \\\n" + markup.Escape(institution))
		if date != "" {
			b.WriteString(" \\\n" + markup.Escape(markup.FormatDate(date)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *twoColumnResume) AnalyzeDocument() *ContentAnalysis {
	return analyzeSections(h.data, h.mode, resumeSectionKeys)
}

// indent prefixes every non-empty line.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
