package services

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// sanitizeText strips HTML and unprintable characters from user-supplied
// free text before it is stored. Entities escaped by the policy are
// decoded again so "Bob & Sons" is kept as typed; output templates do
// their own escaping.
func sanitizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			return r
		}
		return -1
	}, s)
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizeText(*s)
	if v == "" {
		return nil
	}
	return &v
}

// csvSafe prefixes cells that a spreadsheet would evaluate as formulas.
func csvSafe(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	switch trimmed[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
