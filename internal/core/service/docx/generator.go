// Package docx emits Word documents directly from validated request data,
// bypassing the typesetting pipeline entirely.
package docx

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	godocx "github.com/fumiama/go-docx"

	"github.com/rendis/resume-forge/internal/core/entity"
	"github.com/rendis/resume-forge/internal/core/markup"
	"github.com/rendis/resume-forge/internal/core/template"
)

// Font sizes in half-points, the unit the OOXML run properties use.
const (
	sizeName    = "32" // 16pt
	sizeSection = "24" // 12pt
	sizeBody    = "22" // 11pt
)

// Generator builds DOCX artifacts. Stateless and safe for concurrent use.
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

// Generate produces the Word artifact for a validated request.
func (g *Generator) Generate(docType entity.DocumentType, data map[string]any) (*entity.RenderArtifact, error) {
	doc := godocx.New().WithDefaultTheme()

	switch docType {
	case entity.DocumentTypeResume:
		g.buildResume(doc, data)
	case entity.DocumentTypeCoverLetter:
		g.buildCoverLetter(doc, data)
	default:
		return nil, entity.NewError(entity.CodeInvalidParameter,
			fmt.Sprintf("unknown document type %q", docType))
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, entity.NewError(entity.CodePDFGeneration,
			"docx serialization failed").WithCause(err)
	}
	return &entity.RenderArtifact{
		Format:   entity.FormatDOCX,
		Filename: entity.OutputFilename(docType, data, entity.FormatDOCX),
		Bytes:    buf.Bytes(),
	}, nil
}

func (g *Generator) buildResume(doc *godocx.Docx, data map[string]any) {
	pi, _ := data["personalInfo"].(map[string]any)
	g.header(doc, pi)

	if summary := markup.Field(data, "professionalSummary", []string{"summary", "profile"}, ""); summary != "" {
		g.sectionHeader(doc, "Professional Summary")
		doc.AddParagraph().AddText(summary).Size(sizeBody)
	}
	g.experience(doc, data)
	g.education(doc, data)
	g.skills(doc, data)
}

// header is the centered name plus a centered " | "-joined contact line.
func (g *Generator) header(doc *godocx.Docx, pi map[string]any) {
	name := doc.AddParagraph().Justification("center")
	name.AddText(markup.Field(pi, "name", nil, "")).Size(sizeName).Bold()

	var parts []string
	for _, key := range []struct {
		primary   string
		fallbacks []string
	}{
		{"location", []string{"address", "city"}},
		{"email", nil},
		{"phone", []string{"phoneNumber"}},
		{"website", nil},
		{"linkedin", nil},
		{"github", nil},
	} {
		if v := markup.Field(pi, key.primary, key.fallbacks, ""); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		contact := doc.AddParagraph().Justification("center")
		contact.AddText(strings.Join(parts, " | ")).Size(sizeBody)
	}
}

func (g *Generator) sectionHeader(doc *godocx.Docx, title string) {
	doc.AddParagraph().AddText(title).Size(sizeSection).Bold()
}

func (g *Generator) experience(doc *godocx.Docx, data map[string]any) {
	entries := markup.Maps(markup.FieldAny(data, "experience", "workExperience", "work_experience"))
	if len(entries) == 0 {
		return
	}
	g.sectionHeader(doc, "Experience")

	for _, exp := range entries {
		position := markup.Field(exp, "position", []string{"title", "role"}, "")
		dates := markup.DateRange(
			markup.Field(exp, "startDate", []string{"start_date"}, ""),
			markup.Field(exp, "endDate", []string{"end_date"}, ""),
		)

		title := doc.AddParagraph()
		title.AddText(position).Size(sizeBody).Bold()
		title.AddText("\t").Size(sizeBody)
		title.AddText(dates).Size(sizeBody).Italic()

		var line []string
		if company := markup.Field(exp, "company", []string{"employer", "organization"}, ""); company != "" {
			line = append(line, company)
		}
		if loc := markup.Field(exp, "location", nil, ""); loc != "" {
			line = append(line, loc)
		}
		if len(line) > 0 {
			doc.AddParagraph().AddText(strings.Join(line, ", ")).Size(sizeBody)
		}
		for _, ach := range markup.Strings(markup.FieldAny(exp, "achievements", "responsibilities", "highlights")) {
			g.bullet(doc, ach)
		}
	}
}

func (g *Generator) education(doc *godocx.Docx, data map[string]any) {
	entries := markup.Maps(markup.FieldAny(data, "education"))
	if len(entries) == 0 {
		return
	}
	g.sectionHeader(doc, "Education")

	for _, edu := range entries {
		degree := markup.Field(edu, "degree", []string{"qualification", "title"}, "")
		date := markup.Field(edu, "graduationDate", []string{"graduation_date", "endDate"}, "")
		if date != "" {
			date = markup.FormatDate(date)
		}

		title := doc.AddParagraph()
		title.AddText(degree).Size(sizeBody).Bold()
		if date != "" {
			title.AddText("\t").Size(sizeBody)
			title.AddText(date).Size(sizeBody).Italic()
		}

		if inst := markup.Field(edu, "institution", []string{"school", "university"}, ""); inst != "" {
			doc.AddParagraph().AddText(inst).Size(sizeBody)
		}
		if gpa := markup.Field(edu, "gpa", []string{"grade"}, ""); gpa != "" {
			g.bullet(doc, "GPA: "+gpa)
		}
	}
}

// skills renders categorized bullets when the data is grouped, otherwise one
// comma-joined paragraph.
func (g *Generator) skills(doc *godocx.Docx, data map[string]any) {
	raw := markup.FieldAny(data, "technologiesAndSkills", "skills")
	if raw == nil {
		return
	}
	g.sectionHeader(doc, "Technologies & Skills")

	if groups := markup.Maps(raw); len(groups) > 0 {
		for _, group := range groups {
			category := markup.Field(group, "category", []string{"name"}, "")
			items := markup.Strings(markup.FieldAny(group, "skills", "items"))
			if category == "" && len(items) == 0 {
				continue
			}
			p := doc.AddParagraph()
			p.AddText("• ").Size(sizeBody)
			p.AddText(category+": ").Size(sizeBody).Bold()
			p.AddText(strings.Join(items, ", ")).Size(sizeBody)
		}
		return
	}
	doc.AddParagraph().AddText(strings.Join(markup.Strings(raw), ", ")).Size(sizeBody)
}

// buildCoverLetter mirrors the letter layout of the typeset templates,
// including the derived salutation and current-date defaults.
func (g *Generator) buildCoverLetter(doc *godocx.Docx, data map[string]any) {
	pi, _ := data["personalInfo"].(map[string]any)
	g.header(doc, pi)

	doc.AddParagraph().AddText(template.LetterDate(data, time.Now())).Size(sizeBody)
	if recipient, ok := markup.FieldAny(data, "recipient").(map[string]any); ok {
		for _, key := range []string{"name", "title", "company", "address"} {
			if v := markup.Field(recipient, key, nil, ""); v != "" {
				doc.AddParagraph().AddText(v).Size(sizeBody)
			}
		}
	}
	doc.AddParagraph().AddText(template.LetterSalutation(data)).Size(sizeBody)
	for _, para := range markup.Strings(markup.FieldAny(data, "body", "content")) {
		if strings.TrimSpace(para) == "" {
			continue
		}
		doc.AddParagraph().AddText(para).Size(sizeBody)
	}

	doc.AddParagraph().AddText(markup.Field(data, "closing", nil, "Sincerely,")).Size(sizeBody)
	doc.AddParagraph().AddText(markup.Field(pi, "name", nil, "")).Size(sizeBody)
}

func (g *Generator) bullet(doc *godocx.Docx, text string) {
	doc.AddParagraph().AddText("• " + text).Size(sizeBody)
}
