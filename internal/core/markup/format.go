package markup

import (
	"regexp"
	"strings"
	"time"
)

var filenameInvalid = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename strips characters that are invalid on common filesystems
// and bounds the length.
func SanitizeFilename(name string) string {
	out := filenameInvalid.ReplaceAllString(name, "_")
	out = strings.Trim(out, ". ")
	if len(out) > 255 {
		out = out[:255]
	}
	return out
}

// dateLayouts are the accepted wire formats for date-shaped fields, tried in
// order.
var dateLayouts = []string{"2006-01-02", "2006-01", "01-2006", "01-02-2006"}

// FormatDate renders a wire date as "Month YYYY" for display. "Present"
// (case-insensitive) and unparseable values pass through unchanged.
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "present") {
		return raw
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("January 2006")
		}
	}
	return raw
}

// DateRange joins start and end dates for display; a missing end date reads
// as Present, and a missing start yields just the end.
func DateRange(start, end string) string {
	start = FormatDate(start)
	end = FormatDate(end)
	if end == "" {
		end = "Present"
	}
	if start == "" {
		return end
	}
	return start + " – " + end
}

// urlEscaper guards the string-literal position: a backslash or quote in the
// URL would otherwise terminate the literal.
var urlEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Link emits a Typst link call; display falls back to the URL itself.
func Link(url, display string) string {
	if display == "" {
		display = url
	}
	return `#link("` + urlEscaper.Replace(url) + `")[` + Escape(display) + `]`
}
