// Package document implements the render orchestration: validation, template
// dispatch, the content-addressed artifact cache and single-flight
// compilation.
package document

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/rendis/resume-forge/internal/core/entity"
)

// CacheKey derives the content address for a request. The payload is a
// canonical JSON encoding of the identifying fields: object keys sorted,
// strings NFC-normalized, numbers in shortest decimal form, no insignificant
// whitespace. Equal content yields equal keys regardless of key order or
// unicode composition in the input.
func CacheKey(docType entity.DocumentType, tmpl string, data map[string]any, format entity.OutputFormat) string {
	var b strings.Builder
	writeCanonical(&b, map[string]any{
		"data":          data,
		"document_type": string(docType),
		"format":        string(format),
		"template":      tmpl,
	})
	sum := sha256.Sum256([]byte(b.String()))

	prefix := "pdf"
	if format == entity.FormatTypst {
		prefix = "typst"
	}
	return fmt.Sprintf("%s:%s:%s:%x", prefix, docType, tmpl, sum)
}

func writeCanonical(b *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case string:
		b.WriteString(strconv.Quote(norm.NFC.String(t)))
	case float64:
		b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case int:
		b.WriteString(strconv.Itoa(t))
	case int64:
		b.WriteString(strconv.FormatInt(t, 10))
	case []any:
		b.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, item)
		}
		b.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(norm.NFC.String(k)))
			b.WriteByte(':')
			writeCanonical(b, t[k])
		}
		b.WriteByte('}')
	default:
		// Non-JSON values cannot arrive through the decoders; stringify so the
		// key stays deterministic anyway.
		b.WriteString(strconv.Quote(fmt.Sprintf("%v", t)))
	}
}
