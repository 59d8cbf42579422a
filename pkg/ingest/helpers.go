package ingest

import (
	"regexp"
	"strings"

	"github.com/viewroyal/civicpipe/pkg/geocode"
)

var (
	amendmentBylawRe   = regexp.MustCompile(`(?i)(?:Amendment\s+)?Bylaw\s+(?:No\.?\s*)?(\d+)`)
	bylawRe            = regexp.MustCompile(`(?i)(Bylaw\s+(?:No\.?\s*)?\d+(?:-\d+)?)`)
	bylawNumRe         = regexp.MustCompile(`\d+`)
	identifierPatterns = []*regexp.Regexp{
		bylawRe,
		regexp.MustCompile(`(?i)((?:Rezoning|REZ)\s+(?:Application\s+)?(?:No\.?\s*)?\d{4}[-/]\d{2})`),
		regexp.MustCompile(`(?i)((?:Temporary\s+Use\s+Permit|TUP)\s+(?:No\.?\s*)?\d{4}[-/]\d{2})`),
		regexp.MustCompile(`(?i)(Development\s+Variance\s+Permit\s+(?:No\.?\s*)?\d{4}[-/]\d{2})`),
		regexp.MustCompile(`(?i)(DVP\s+(?:No\.?\s*)?\d{4}[-/]\d{2})`),
		regexp.MustCompile(`(?i)(Development\s+Permit\s+(?:No\.?\s*)?\d{4}[-/]\d{2})`),
		regexp.MustCompile(`(?i)(DP\s+(?:No\.?\s*)?\d{4}[-/]\d{2})`),
	}
)

// extractIdentifierFromText pulls a matter identifier ("Bylaw 1160",
// "REZ 2025-01") out of free text, prioritizing an amendment bylaw
// reference over the base bylaw it amends so amendments don't all
// collapse onto one matter.
func extractIdentifierFromText(text string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	if idx := strings.Index(lower, "amendment"); idx >= 0 {
		for _, m := range amendmentBylawRe.FindAllStringSubmatchIndex(text, -1) {
			if m[0] >= idx {
				num := text[m[2]:m[3]]
				return "Bylaw " + num
			}
		}
	}

	for _, pat := range identifierPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		val := strings.TrimSpace(m[1])
		if strings.HasPrefix(strings.ToLower(val), "bylaw") {
			if num := bylawNumRe.FindString(val); num != "" {
				return "Bylaw " + num
			}
		}
		return val
	}
	return ""
}

// expandAddress applies the multi-number/multi-street split the geocode
// package implements for NormalizeAddressList, lowercased for index
// lookups (the matter matcher keys on normalized addresses).
func expandAddress(raw string) []string {
	expanded := geocode.NormalizeAddressList(raw)
	out := make([]string, 0, len(expanded))
	for _, a := range expanded {
		out = append(out, strings.ToLower(strings.TrimSpace(a)))
	}
	return out
}
