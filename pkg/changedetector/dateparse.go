package changedetector

import (
	"regexp"
	"strings"
)

var (
	isoDateRe   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	slashDateRe = regexp.MustCompile(`(\d{4})[_/](\d{2})[_/](\d{2})`)

	meetingTypeKeywords = []struct {
		keyword string
		mtype   string
	}{
		{"public hearing", "Public Hearing"},
		{"committee of the whole", "Committee of the Whole"},
		{"cotw", "Committee of the Whole"},
		{"cow", "Committee of the Whole"},
		{"special", "Special Council"},
		{"committee", "Committee"},
		{"council", "Council"},
	}
)

// ExtractDateFromString finds a YYYY-MM-DD (or YYYY_MM_DD/YYYY/MM/DD)
// date token inside a folder name, e.g. "2025-03-11 Council Meeting".
// Exported so pkg/acquirer resolves archive folders to meeting dates with
// the exact same rule, rather than a second copy of it.
func ExtractDateFromString(s string) string {
	if m := isoDateRe.FindString(s); m != "" {
		return m
	}
	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	return ""
}

// inferMeetingType guesses the meeting type from a folder name's
// keywords, falling back to "Unknown". Keyword order matters: more
// specific phrases are checked before "council"/"committee" alone.
func inferMeetingType(folderName string) string {
	lower := strings.ToLower(folderName)
	for _, kw := range meetingTypeKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.mtype
		}
	}
	return "Unknown"
}

// InferMeetingType is inferMeetingType, exported so pkg/orchestrator
// guesses a folder's meeting type with the exact same keyword cascade
// used for change detection, rather than a second copy of it.
func InferMeetingType(folderName string) string {
	return inferMeetingType(folderName)
}
