package template

import (
	"github.com/rendis/resume-forge/internal/core/entity"
)

// classicResume is the single-column résumé layout.
type classicResume struct {
	data map[string]any
	cfg  Config
	mode entity.SpacingMode
}

func newClassicResume(data map[string]any, cfg Config) Helper {
	return &classicResume{
		data: data,
		cfg:  cfg,
		mode: resolveSpacing(cfg, data),
	}
}

func (h *classicResume) Type() entity.DocumentType { return entity.DocumentTypeResume }

func (h *classicResume) RequiredFields() []string {
	return []string{"personalInfo.name", "personalInfo.email"}
}

func (h *classicResume) ValidateData() error {
	return requireFields(h.data, h.RequiredFields())
}

func (h *classicResume) Render() (string, error) {
	if err := h.ValidateData(); err != nil {
		return "", err
	}
	pi, _ := h.data["personalInfo"].(map[string]any)

	doc := assemble(
		preamble(h.mode),
		contactHeader(pi),
		summarySection(h.data),
		experienceSection(h.data),
		educationSection(h.data),
		projectsSection(h.data),
		publicationsSection(h.data),
		achievementsSection(h.data),
		certificationsSection(h.data),
		skillsSection(h.data),
	)
	return doc, nil
}

func (h *classicResume) AnalyzeDocument() *ContentAnalysis {
	return analyzeSections(h.data, h.mode, resumeSectionKeys)
}

// resumeSectionKeys lists the data keys (with aliases) analyzed per section.
var resumeSectionKeys = []analyzedSection{
	{name: "summary", keys: []string{"professionalSummary", "summary", "profile"}},
	{name: "experience", keys: []string{"experience", "workExperience", "work_experience"}},
	{name: "education", keys: []string{"education"}},
	{name: "projects", keys: []string{"projects"}},
	{name: "publications", keys: []string{"articlesAndPublications", "publications"}},
	{name: "achievements", keys: []string{"achievements", "awards"}},
	{name: "certifications", keys: []string{"certifications", "certificates"}},
	{name: "skills", keys: []string{"technologiesAndSkills", "skills"}},
}
