// Package validation implements the two request-data validation levels.
// Standard validation checks structure and date shapes and fails fast; ultra
// validation additionally normalizes emails, URLs and phones, collects every
// issue, and returns the transformed data.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rendis/resume-forge/internal/core/entity"
)

var (
	// Accepted wire shapes for date fields, plus the literal Present.
	datePattern = regexp.MustCompile(`^(\d{4}-\d{2}|\d{4}-\d{2}-\d{2}|\d{2}-\d{4}|\d{2}-\d{2}-\d{4})$`)

	// RFC-5322-lite: local part, @, domain with at least one dot.
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	phonePattern = regexp.MustCompile(`^\+?[\d\s\-().]{5,}$`)

	// Control sequences that must never reach the compiler from user text.
	injectionPattern = regexp.MustCompile(`#(eval|include|import|read)\s*\(`)
)

// dateFields are the date-shaped keys checked on experience and education
// entries.
var dateFields = []string{"startDate", "endDate", "graduationDate"}

// urlFields are the personalInfo keys that receive scheme fixup under ultra
// validation.
var urlFields = []string{"website", "linkedin", "github"}

// Result carries the normalized data and any non-blocking issues.
type Result struct {
	Data     map[string]any
	Warnings []*entity.ServiceError
}

// Standard checks structure and date shapes, normalizes the legacy title →
// position alias, and returns a normalized deep copy. It fails fast on the
// first disqualifying error. The input is never mutated.
func Standard(docType entity.DocumentType, data map[string]any) (map[string]any, error) {
	out := deepCopy(data)

	pi, err := requirePersonalInfo(out)
	if err != nil {
		return nil, err
	}
	for _, field := range []string{"name", "email"} {
		if s, _ := pi[field].(string); strings.TrimSpace(s) == "" {
			return nil, entity.MissingFieldError("personalInfo." + field)
		}
	}

	if docType == entity.DocumentTypeCoverLetter {
		if err := requireBody(out); err != nil {
			return nil, err
		}
	}

	if err := checkEntryDates(out, "experience"); err != nil {
		return nil, err
	}
	if err := checkEntryDates(out, "education"); err != nil {
		return nil, err
	}
	normalizeTitleAlias(out)

	if err := scanInjection(out, ""); err != nil {
		return nil, err
	}

	return out, nil
}

// Ultra runs the standard checks and additionally normalizes email, URL and
// phone fields, collecting every issue instead of failing fast. It errors if
// any issue has severity error, or if strict is set and warnings exist.
func Ultra(docType entity.DocumentType, data map[string]any, strict bool) (*Result, error) {
	out, err := Standard(docType, data)
	if err != nil {
		return nil, err
	}

	var issues []*entity.ServiceError
	pi := out["personalInfo"].(map[string]any)

	// Email: trim, lowercase, then validate.
	email := strings.ToLower(strings.TrimSpace(pi["email"].(string)))
	pi["email"] = email
	if !emailPattern.MatchString(email) {
		issues = append(issues, entity.NewError(entity.CodeInvalidEmail,
			fmt.Sprintf("invalid email address %q", email)).
			WithContext("field", "personalInfo.email"))
	}

	// URLs: prepend the https scheme when missing, recording a warning.
	for _, field := range urlFields {
		raw, _ := pi[field].(string)
		if raw == "" {
			continue
		}
		if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
			pi[field] = "https://" + raw
			issues = append(issues, entity.NewWarning(entity.CodeInvalidURL,
				fmt.Sprintf("missing scheme on %q, assumed https", raw)).
				WithContext("field", "personalInfo."+field))
		}
	}

	if phone, _ := pi["phone"].(string); phone != "" && !phonePattern.MatchString(phone) {
		issues = append(issues, entity.NewWarning(entity.CodeInvalidPhone,
			fmt.Sprintf("phone %q has an unusual shape", phone)).
			WithContext("field", "personalInfo.phone"))
	}

	result := &Result{Data: out}
	var blocking []string
	for _, issue := range issues {
		if issue.Severity == entity.SeverityError || strict {
			blocking = append(blocking, issue.Error())
		} else {
			result.Warnings = append(result.Warnings, issue)
		}
	}
	if len(blocking) > 0 {
		return nil, entity.NewError(entity.CodeSchemaValidation,
			strings.Join(blocking, "; ")).
			WithContext("issues", blocking)
	}
	return result, nil
}

func requirePersonalInfo(data map[string]any) (map[string]any, error) {
	v, ok := data["personalInfo"]
	if !ok {
		return nil, entity.MissingFieldError("personalInfo")
	}
	pi, ok := v.(map[string]any)
	if !ok {
		return nil, entity.WrongTypeError("personalInfo", "mapping")
	}
	return pi, nil
}

func requireBody(data map[string]any) error {
	v, ok := data["body"]
	if !ok {
		if _, ok := data["content"]; ok {
			return nil // legacy single-string alias
		}
		return entity.MissingFieldError("body")
	}
	switch v.(type) {
	case string, []any:
		return nil
	}
	return entity.WrongTypeError("body", "string or paragraph list")
}

func checkEntryDates(data map[string]any, section string) error {
	list, ok := data[section].([]any)
	if !ok {
		return nil
	}
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, field := range dateFields {
			raw, present := entry[field]
			if !present {
				continue
			}
			s, ok := raw.(string)
			if !ok {
				return entity.WrongTypeError(fmt.Sprintf("%s.%d.%s", section, i, field), "string")
			}
			if !validDate(s) {
				return entity.InvalidDateError(fmt.Sprintf("%s.%d.%s", section, i, field), s)
			}
		}
	}
	return nil
}

func validDate(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "present") || datePattern.MatchString(s)
}

// normalizeTitleAlias rewrites the legacy experience title key to position.
func normalizeTitleAlias(data map[string]any) {
	list, ok := data["experience"].([]any)
	if !ok {
		return
	}
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if title, ok := entry["title"]; ok {
			if _, has := entry["position"]; !has {
				entry["position"] = title
			}
			delete(entry, "title")
		}
	}
}

// scanInjection walks string leaves looking for compiler control sequences.
func scanInjection(v any, path string) error {
	switch t := v.(type) {
	case string:
		if injectionPattern.MatchString(t) {
			return entity.NewError(entity.CodeMaliciousInput,
				"input contains a markup control sequence").
				WithContext("field", path)
		}
	case []any:
		for i, item := range t {
			if err := scanInjection(item, fmt.Sprintf("%s.%d", path, i)); err != nil {
				return err
			}
		}
	case map[string]any:
		for k, item := range t {
			p := k
			if path != "" {
				p = path + "." + k
			}
			if err := scanInjection(item, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// deepCopy clones JSON-shaped data so normalization never mutates the
// caller's copy.
func deepCopy(v map[string]any) map[string]any {
	return copyValue(v).(map[string]any)
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
