package template

import (
	"strings"

	"github.com/rendis/resume-forge/internal/core/markup"
)

// Section emitters. Each looks up its data through the alias-aware field
// helper, returns the empty string when nothing is present, and escapes
// every textual leaf.

func contactHeader(pi map[string]any) string {
	name := markup.Field(pi, "name", nil, "")
	if name == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString("#align(center)[\n")
	b.WriteString("  #text(size: 18pt, weight: \"bold\")[" + markup.Escape(name) + "]\n")

	parts := contactParts(pi)
	if len(parts) > 0 {
		b.WriteString("\n  " + strings.Join(parts, " #h(6pt) | #h(6pt) ") + "\n")
	}
	b.WriteString("]")
	return b.String()
}

// contactParts builds the contact line pieces in display order.
func contactParts(pi map[string]any) []string {
	var parts []string
	if loc := markup.Field(pi, "location", []string{"address", "city"}, ""); loc != "" {
		parts = append(parts, markup.Escape(loc))
	}
	if email := markup.Field(pi, "email", nil, ""); email != "" {
		parts = append(parts, markup.Link("mailto:"+email, email))
	}
	if phone := markup.Field(pi, "phone", []string{"phoneNumber"}, ""); phone != "" {
		parts = append(parts, markup.Escape(phone))
	}
	for _, link := range []struct{ key, display string }{
		{"website", "website_display"},
		{"linkedin", "linkedin_display"},
		{"github", "github_display"},
	} {
		url := markup.Field(pi, link.key, nil, "")
		if url == "" {
			continue
		}
		display := markup.Field(pi, link.display, []string{camelAlias(link.display)}, url)
		parts = append(parts, markup.Link(url, display))
	}
	return parts
}

// camelAlias turns a snake_case display key into its camelCase alias
// (website_display → websiteDisplay).
func camelAlias(key string) string {
	segs := strings.Split(key, "_")
	for i := 1; i < len(segs); i++ {
		if segs[i] != "" {
			segs[i] = strings.ToUpper(segs[i][:1]) + segs[i][1:]
		}
	}
	return strings.Join(segs, "")
}

func summarySection(data map[string]any) string {
	text := markup.Field(data, "professionalSummary", []string{"summary", "profile"}, "")
	if text == "" {
		return ""
	}
	return "== Professional Summary\n\n" + markup.Escape(text)
}

func experienceSection(data map[string]any) string {
	entries := markup.Maps(markup.FieldAny(data, "experience", "workExperience", "work_experience"))
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("== Experience\n")
	for _, exp := range entries {
		position := markup.Field(exp, "position", []string{"title", "role"}, "")
		company := markup.Field(exp, "company", []string{"employer", "organization"}, "")
		location := markup.Field(exp, "location", nil, "")
		dates := markup.DateRange(
			markup.Field(exp, "startDate", []string{"start_date"}, ""),
			markup.Field(exp, "endDate", []string{"end_date"}, ""),
		)

		b.WriteString("\n*" + markup.Escape(position) + "*")
		if company != "" {
			b.WriteString(", " + markup.Escape(company))
		}
		if location != "" {
			b.WriteString(" – " + markup.Escape(location))
		}
		b.WriteString(" #h(1fr) _" + markup.Escape(dates) + "_\n")

		for _, ach := range markup.Strings(markup.FieldAny(exp, "achievements", "responsibilities", "highlights")) {
			b.WriteString("- " + markup.Escape(ach) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func educationSection(data map[string]any) string {
	entries := markup.Maps(markup.FieldAny(data, "education"))
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("== Education\n")
	for _, edu := range entries {
		degree := markup.Field(edu, "degree", []string{"qualification", "title"}, "")
		institution := markup.Field(edu, "institution", []string{"school", "university"}, "")
		date := markup.Field(edu, "graduationDate", []string{"graduation_date", "endDate"}, "")
		if date != "" {
			date = markup.FormatDate(date)
		} else {
			date = markup.DateRange(
				markup.Field(edu, "startDate", nil, ""),
				markup.Field(edu, "endDate", nil, ""),
			)
			if date == "Present" {
				date = ""
			}
		}

		b.WriteString("\n*" + markup.Escape(degree) + "*")
		if institution != "" {
			b.WriteString(", " + markup.Escape(institution))
		}
		if date != "" {
			b.WriteString(" #h(1fr) _" + markup.Escape(date) + "_")
		}
		b.WriteString("\n")

		if gpa := markup.Field(edu, "gpa", []string{"grade"}, ""); gpa != "" {
			b.WriteString("- GPA: " + markup.Escape(gpa) + "\n")
		}
		if focus := markup.Field(edu, "focus", []string{"major", "fieldOfStudy"}, ""); focus != "" {
			b.WriteString("- Focus: " + markup.Escape(focus) + "\n")
		}
		if courses := markup.Strings(markup.FieldAny(edu, "notableCourseWorks", "courses")); len(courses) > 0 {
			b.WriteString("- Courses: " + markup.Escape(strings.Join(courses, ", ")) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func projectsSection(data map[string]any) string {
	entries := markup.Maps(markup.FieldAny(data, "projects"))
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("== Projects\n")
	for _, proj := range entries {
		name := markup.Field(proj, "name", []string{"title"}, "")
		b.WriteString("\n*" + markup.Escape(name) + "*")
		if url := markup.Field(proj, "url", []string{"link", "repository"}, ""); url != "" {
			b.WriteString(" – " + markup.Link(url, markup.Field(proj, "url_display", nil, url)))
		}
		b.WriteString("\n")

		if desc := markup.Strings(markup.FieldAny(proj, "description", "descriptions")); len(desc) > 0 {
			b.WriteString("_" + markup.Escape(strings.Join(desc, ", ")) + "_\n")
		}
		if tools := markup.Strings(markup.FieldAny(proj, "tools", "technologies", "stack")); len(tools) > 0 {
			b.WriteString("- Tools: " + markup.Escape(strings.Join(tools, ", ")) + "\n")
		}
		for _, ach := range markup.Strings(markup.FieldAny(proj, "achievements", "highlights")) {
			b.WriteString("- " + markup.Escape(ach) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func publicationsSection(data map[string]any) string {
	entries := markup.Maps(markup.FieldAny(data, "articlesAndPublications", "publications"))
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("== Articles & Publications\n\n")
	for _, pub := range entries {
		title := markup.Field(pub, "title", []string{"name"}, "")
		b.WriteString("- *" + markup.Escape(title) + "*")
		if venue := markup.Field(pub, "venue", []string{"publisher", "journal"}, ""); venue != "" {
			b.WriteString(", " + markup.Escape(venue))
		}
		if date := markup.Field(pub, "date", []string{"year"}, ""); date != "" {
			b.WriteString(" – " + markup.Escape(markup.FormatDate(date)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func achievementsSection(data map[string]any) string {
	items := markup.Strings(markup.FieldAny(data, "achievements", "awards"))
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("== Achievements\n\n")
	for _, item := range items {
		b.WriteString("- " + markup.Escape(item) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func certificationsSection(data map[string]any) string {
	raw := markup.FieldAny(data, "certifications", "certificates")
	if raw == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("== Certifications\n\n")
	if entries := markup.Maps(raw); len(entries) > 0 {
		for _, cert := range entries {
			name := markup.Field(cert, "name", []string{"title"}, "")
			b.WriteString("- " + markup.Escape(name))
			if issuer := markup.Field(cert, "issuer", []string{"authority"}, ""); issuer != "" {
				b.WriteString(" (" + markup.Escape(issuer) + ")")
			}
			if date := markup.Field(cert, "date", []string{"year"}, ""); date != "" {
				b.WriteString(" – " + markup.Escape(markup.FormatDate(date)))
			}
			b.WriteString("\n")
		}
	} else {
		for _, item := range markup.Strings(raw) {
			b.WriteString("- " + markup.Escape(item) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func skillsSection(data map[string]any) string {
	raw := markup.FieldAny(data, "technologiesAndSkills", "skills")
	if raw == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("== Technologies & Skills\n\n")
	if entries := markup.Maps(raw); len(entries) > 0 {
		for _, group := range entries {
			category := markup.Field(group, "category", []string{"name"}, "")
			skills := markup.Strings(markup.FieldAny(group, "skills", "items"))
			if category == "" && len(skills) == 0 {
				continue
			}
			b.WriteString("- *" + markup.Escape(category) + ":* " + markup.Escape(strings.Join(skills, ", ")) + "\n")
		}
	} else {
		b.WriteString(markup.Escape(strings.Join(markup.Strings(raw), ", ")) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
