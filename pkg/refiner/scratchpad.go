package refiner

import (
	"regexp"
	"strings"

	"github.com/viewroyal/civicpipe/pkg/models"
)

// speakerAliasRe finds "Speaker_01: John Doe", "Speaker_01 is John Doe",
// "Speaker_01 -> John Doe" style mappings in free-text scratchpad
// reasoning, grounded on ingester.py's scratchpad alias regex.
var speakerAliasRe = regexp.MustCompile(`(Speaker_\d+|Chair)\s*[:\-=]?\s*(?:is|->)?\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`)

var roleTitleRe = regexp.MustCompile(`(?i)^(Mayor|Councillor|Cclr|Ccl|Mr|Ms|Mrs|Dr)\s+`)
var parenNoteRe = regexp.MustCompile(`\s*\(.*?\)`)

// parseScratchpadAliases extracts "label -> name" pairs from a
// scratchpad_speaker_map monologue, for use when the model filled in the
// scratchpad but forgot the typed speaker_aliases field.
func parseScratchpadAliases(scratchpad string) []models.SpeakerAlias {
	matches := speakerAliasRe.FindAllStringSubmatch(scratchpad, -1)

	var out []models.SpeakerAlias
	seen := make(map[string]struct{})
	for _, m := range matches {
		label, name := m[1], m[2]
		if _, ok := seen[label]; ok {
			continue
		}
		clean := parenNoteRe.ReplaceAllString(name, "")
		clean = roleTitleRe.ReplaceAllString(strings.TrimSpace(clean), "")
		clean = strings.TrimSpace(clean)
		if clean == "" {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, models.SpeakerAlias{Label: label, Name: clean})
	}
	return out
}

// itemTimelineRe finds lines like "7.a Variance (17:59-29:32)" or
// "7.a (1:23:45-1:25:00)" in a scratchpad_timeline monologue.
var itemTimelineRe = regexp.MustCompile(`(\d+(?:\.[a-z\d]+)*)\.?\s+.*?\(.*?([\d:]+)-([\d:]+)`)

type timelineRange struct {
	start, end *float64
}

func parseScratchpadTimeline(timeline string) map[string]timelineRange {
	matches := itemTimelineRe.FindAllStringSubmatch(timeline, -1)

	out := make(map[string]timelineRange)
	for _, m := range matches {
		itemNum, startStr, endStr := m[1], m[2], m[3]
		start := toSeconds(startStr)
		if start == nil {
			continue
		}
		out[itemNum] = timelineRange{start: start, end: toSeconds(endStr)}
	}
	return out
}

// applyScratchpadFallbacks fills speaker_aliases and item discussion
// timestamps from the scratchpad monologues when the typed fields came
// back empty, per §4.7's scratchpad fallback rule.
func applyScratchpadFallbacks(r *models.MeetingRefinement) {
	if len(r.SpeakerAliases) == 0 && r.ScratchpadSpeakerMap != "" {
		if aliases := parseScratchpadAliases(r.ScratchpadSpeakerMap); len(aliases) > 0 {
			r.SpeakerAliases = aliases
		}
	}

	if r.ScratchpadTimeline == "" || len(r.Items) == 0 {
		return
	}
	timeline := parseScratchpadTimeline(r.ScratchpadTimeline)
	if len(timeline) == 0 {
		return
	}
	for i := range r.Items {
		order := strings.Trim(r.Items[i].ItemOrder, ".)")
		tr, ok := timeline[order]
		if !ok {
			continue
		}
		r.Items[i].DiscussionStartTime = tr.start
		if tr.end != nil {
			r.Items[i].DiscussionEndTime = tr.end
		}
	}
}
