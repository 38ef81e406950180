package template

import (
	"strings"
	"time"

	"github.com/rendis/resume-forge/internal/core/entity"
	"github.com/rendis/resume-forge/internal/core/markup"
)

// coverLetter renders the classic and modern letter layouts; the two differ
// only in the header treatment (modern draws an accent rule).
type coverLetter struct {
	data   map[string]any
	cfg    Config
	mode   entity.SpacingMode
	modern bool

	// now is injectable so the date default is testable.
	now func() time.Time
}

func newClassicCoverLetter(data map[string]any, cfg Config) Helper {
	return &coverLetter{data: data, cfg: cfg, mode: resolveSpacing(cfg, data), now: time.Now}
}

func newModernCoverLetter(data map[string]any, cfg Config) Helper {
	return &coverLetter{data: data, cfg: cfg, mode: resolveSpacing(cfg, data), modern: true, now: time.Now}
}

func (h *coverLetter) Type() entity.DocumentType { return entity.DocumentTypeCoverLetter }

func (h *coverLetter) RequiredFields() []string {
	return []string{"personalInfo.name", "personalInfo.email", "body"}
}

func (h *coverLetter) ValidateData() error {
	if err := requireFields(h.data, []string{"personalInfo.name", "personalInfo.email"}); err != nil {
		return err
	}
	if len(h.paragraphs()) == 0 {
		return entity.MissingFieldError("body")
	}
	return nil
}

func (h *coverLetter) Render() (string, error) {
	if err := h.ValidateData(); err != nil {
		return "", err
	}
	pi, _ := h.data["personalInfo"].(map[string]any)

	blocks := []string{preamble(h.mode), contactHeader(pi)}
	if h.modern {
		blocks = append(blocks, "#line(length: 100%, stroke: 1.5pt + "+sidebarFill+")")
	}

	blocks = append(blocks, markup.Escape(h.date()))
	if recip := h.recipientBlock(); recip != "" {
		blocks = append(blocks, recip)
	}
	blocks = append(blocks, markup.Escape(h.salutation()))
	blocks = append(blocks, strings.Join(h.escapedParagraphs(), "\n\n"))
	blocks = append(blocks, h.closing(pi))

	return assemble(blocks...), nil
}

// paragraphs flattens the body into ordered non-empty paragraphs. The body
// may be a single string or a sequence; a legacy content key is honored.
func (h *coverLetter) paragraphs() []string {
	raw := markup.FieldAny(h.data, "body", "content")
	var out []string
	for _, p := range markup.Strings(raw) {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func (h *coverLetter) escapedParagraphs() []string {
	paras := h.paragraphs()
	out := make([]string, len(paras))
	for i, p := range paras {
		out[i] = markup.Escape(p)
	}
	return out
}

func (h *coverLetter) salutation() string { return LetterSalutation(h.data) }

func (h *coverLetter) date() string { return LetterDate(h.data, h.now()) }

// LetterSalutation is generated deterministically when not supplied:
// recipient name, then title, then company, then the generic form. Shared by
// every letter output format.
func LetterSalutation(data map[string]any) string {
	if s := markup.Field(data, "salutation", nil, ""); s != "" {
		return s
	}
	recipient, _ := markup.FieldAny(data, "recipient").(map[string]any)
	if name := markup.Field(recipient, "name", nil, ""); name != "" {
		return "Dear " + name + ","
	}
	if title := markup.Field(recipient, "title", nil, ""); title != "" {
		return "Dear " + title + ","
	}
	if company := markup.Field(recipient, "company", nil, ""); company != "" {
		return "Dear Hiring Manager at " + company + ","
	}
	return "Dear Hiring Manager,"
}

// LetterDate defaults to the given date as "Month D, YYYY".
func LetterDate(data map[string]any, now time.Time) string {
	if d := markup.Field(data, "date", nil, ""); d != "" {
		return d
	}
	return now.Format("January 2, 2006")
}

func (h *coverLetter) recipientBlock() string {
	recipient, _ := markup.FieldAny(h.data, "recipient").(map[string]any)
	if recipient == nil {
		return ""
	}
	var lines []string
	for _, key := range []string{"name", "title", "company", "address"} {
		if v := markup.Field(recipient, key, nil, ""); v != "" {
			lines = append(lines, markup.Escape(v))
		}
	}
	return strings.Join(lines, " \\\n")
}

func (h *coverLetter) closing(pi map[string]any) string {
	closing := markup.Field(h.data, "closing", nil, "Sincerely,")
	name := markup.Field(pi, "name", nil, "")
	return markup.Escape(closing) + "\n\n" + markup.Escape(name)
}

func (h *coverLetter) AnalyzeDocument() *ContentAnalysis {
	return analyzeSections(h.data, h.mode, []analyzedSection{
		{name: "body", keys: []string{"body", "content"}},
	})
}
