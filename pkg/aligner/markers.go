package aligner

import (
	"regexp"
	"strings"
)

// junkTitleWords are dropped from title_words because they appear in
// nearly every agenda item and would match almost any segment.
var junkTitleWords = map[string]struct{}{
	"report": {}, "dated": {}, "council": {}, "meeting": {}, "recommendation": {}, "attachment": {},
}

type markerResult struct {
	ts    float64
	score float64
}

// findItemMarker scores transcript segments for the best timestamp
// matching an agenda item, trying a predicted window first (if any) and
// then the whole transcript. Grounded on alignment.py's find_item_marker.
func findItemMarker(segs []Segment, itemOrder, itemTitle string, windowStart, windowEnd *float64) *markerResult {
	if itemOrder == "" && itemTitle == "" {
		return nil
	}

	titleLower := strings.ToLower(itemTitle)
	if itemTitle != "" && strings.Contains(titleLower, "call to order") {
		if len(segs) > 0 {
			return &markerResult{ts: segs[0].Start, score: 2.0}
		}
		return &markerResult{ts: 0, score: 2.0}
	}

	if itemTitle != "" && (strings.Contains(titleLower, "termination") || strings.Contains(titleLower, "adjournment")) {
		tail := segs
		if len(segs) > 30 {
			tail = segs[len(segs)-30:]
		}
		for _, s := range tail {
			low := strings.ToLower(s.Text)
			if strings.Contains(low, "terminate") || strings.Contains(low, "adjourn") {
				return &markerResult{ts: s.Start, score: 2.0}
			}
		}
	}

	orderDigits := digitRunRe.FindAllString(itemOrder, -1)
	var orderRegex *regexp.Regexp
	var boostRegex *regexp.Regexp
	if len(orderDigits) > 0 {
		digitsPattern := strings.Join(orderDigits, `[\s.\-]+`)
		isSimpleNumber := len(orderDigits) == 1 && len(orderDigits[0]) < 3
		if isSimpleNumber {
			orderRegex = regexp.MustCompile(`(?:item|section|point|paragraph)\s+` + digitsPattern + `(?:\D|$)`)
		} else {
			orderRegex = regexp.MustCompile(`\b` + digitsPattern + `(?:\D|$)`)
		}
		boostRegex = regexp.MustCompile(`(?:item|section|point|paragraph)\s+` + digitsPattern)
	}

	var titleWords []string
	for _, w := range strings.Fields(normalizeText(itemTitle)) {
		if len(w) <= 3 {
			continue
		}
		if _, junk := junkTitleWords[w]; junk {
			continue
		}
		titleWords = append(titleWords, w)
	}

	searchRange := func(start, end float64) []markerResult {
		var found []markerResult
		for _, s := range segs {
			if s.Start < start || s.Start > end {
				continue
			}
			text := strings.ToLower(s.Text)

			if orderRegex != nil && orderRegex.MatchString(text) {
				boost := 1.0
				if boostRegex != nil && boostRegex.MatchString(text) {
					boost = 1.2
				}
				found = append(found, markerResult{ts: s.Start, score: 1.0 * boost})
				continue
			}

			if len(titleWords) > 0 {
				matchCount := 0
				for _, w := range titleWords {
					if strings.Contains(text, w) {
						matchCount++
					}
				}
				if matchCount >= 2 || (len(titleWords) == 1 && matchCount == 1) {
					score := float64(matchCount) / float64(len(titleWords))
					found = append(found, markerResult{ts: s.Start, score: score * 0.8})
				}
			}
		}
		return found
	}

	var allFound []markerResult
	if windowStart != nil && *windowStart > 120 {
		searchStart := *windowStart - 300
		if searchStart < 0 {
			searchStart = 0
		}
		searchEnd := searchStart + 600
		if windowEnd != nil {
			searchEnd = *windowEnd + 120
		}
		allFound = append(allFound, searchRange(searchStart, searchEnd)...)
	}
	allFound = append(allFound, searchRange(0, 999999)...)

	if len(allFound) == 0 {
		return nil
	}

	sortByPreference(allFound, windowStart)

	seen := make(map[float64]struct{})
	for _, c := range allFound {
		if _, ok := seen[c.ts]; ok {
			continue
		}
		result := c
		return &result
	}
	return nil
}

// sortByPreference orders candidates by highest score first, then by
// closeness to windowStart (or by earliest timestamp if no window hint).
func sortByPreference(found []markerResult, windowStart *float64) {
	dist := func(ts float64) float64 {
		if windowStart != nil {
			d := ts - *windowStart
			if d < 0 {
				d = -d
			}
			return d
		}
		return ts
	}
	// simple stable insertion sort keeps this deterministic without
	// pulling in sort.Slice for a handful of candidates per item.
	for i := 1; i < len(found); i++ {
		j := i
		for j > 0 && less(found[j], found[j-1], dist) {
			found[j], found[j-1] = found[j-1], found[j]
			j--
		}
	}
}

func less(a, b markerResult, dist func(float64) float64) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return dist(a.ts) < dist(b.ts)
}

var phoneticFixes = []struct{ wrong, right string }{
	{"move your seat", "move receipt"},
	{"move to seat", "move receipt"},
	{"move receipt", "move receive"},
}

var junkMotionPrefixes = map[string]struct{}{
	"publi": {}, "heari": {}, "meeti": {}, "counc": {},
}

var genericMotionKeywords = []string{"move", "moved", "second", "carried", "opposed", "receipt", "receive", "recommend", "unanimous"}

// findMotionMarker locates the best timestamp for a motion within its
// parent item's window, falling back to a generic-keyword scan and
// finally a global search. Grounded on alignment.py's find_motion_marker.
func findMotionMarker(segs []Segment, motionText string, windowStart, windowEnd float64, preferLatest bool) *float64 {
	if motionText == "" {
		return nil
	}

	norm := normalizeText(motionText)
	var keywords []string
	for _, w := range strings.Fields(norm) {
		if len(w) > 4 {
			keywords = append(keywords, w[:5])
		}
	}

	filtered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if _, junk := junkMotionPrefixes[k]; !junk {
			filtered = append(filtered, k)
		}
	}
	if len(filtered) == 0 {
		filtered = keywords
	}
	if len(filtered) == 0 {
		return nil
	}

	applyPhoneticFixes := func(text string) string {
		for _, f := range phoneticFixes {
			if strings.Contains(text, f.wrong) {
				text = strings.ReplaceAll(text, f.wrong, f.right)
			}
		}
		return text
	}

	search := func(subset []Segment) []markerResult {
		var candidates []markerResult
		for _, s := range subset {
			text := applyPhoneticFixes(normalizeText(s.Text))

			var prefixes []string
			for _, w := range strings.Fields(text) {
				if len(w) >= 5 {
					prefixes = append(prefixes, w[:5])
				}
			}

			matchCount := 0
			for _, k := range filtered {
				matched := false
				for _, tp := range prefixes {
					if k == tp || strings.Contains(k, tp) {
						matched = true
						break
					}
				}
				if matched {
					matchCount++
				}
			}

			if preferLatest && (strings.Contains(text, "termi") || strings.Contains(text, "adjou")) {
				matchCount += 2
			}

			if matchCount > 0 {
				score := float64(matchCount) / float64(len(filtered))
				if score > 0.4 || (preferLatest && score > 0.2) {
					candidates = append(candidates, markerResult{ts: s.Start, score: score})
				}
			}
		}
		return candidates
	}

	localStart := windowStart - 30
	if localStart < 0 {
		localStart = 0
	}
	localEnd := windowEnd + 30
	var local []Segment
	for _, s := range segs {
		if s.Start >= localStart && s.Start <= localEnd {
			local = append(local, s)
		}
	}

	localCandidates := search(local)
	if len(localCandidates) > 0 {
		sortMotionCandidates(localCandidates, preferLatest)
		ts := localCandidates[0].ts
		return &ts
	}

	for i := len(local) - 1; i >= 0; i-- {
		text := applyPhoneticFixes(normalizeText(local[i].Text))
		for _, k := range genericMotionKeywords {
			if strings.Contains(text, k) {
				ts := local[i].Start
				return &ts
			}
		}
	}

	globalCandidates := search(segs)
	if len(globalCandidates) == 0 {
		return nil
	}

	isEarlyItem := windowStart < 300
	for i := range globalCandidates {
		if globalCandidates[i].ts < 300 && !isEarlyItem {
			globalCandidates[i].score *= 0.5
		}
	}
	sortMotionCandidates(globalCandidates, preferLatest)
	ts := globalCandidates[0].ts
	return &ts
}

func sortMotionCandidates(candidates []markerResult, preferLatest bool) {
	for i := 1; i < len(candidates); i++ {
		j := i
		for j > 0 && motionLess(candidates[j], candidates[j-1], preferLatest) {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
			j--
		}
	}
}

func motionLess(a, b markerResult, preferLatest bool) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if preferLatest {
		return a.ts > b.ts
	}
	return a.ts < b.ts
}
