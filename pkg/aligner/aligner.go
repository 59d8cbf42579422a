// Package aligner implements the Transcript Aligner (§4.8): it snaps each
// agenda item's discussion_start_time/discussion_end_time, and each
// motion's timestamp/end_timestamp, to real transcript segment times.
// Grounded on original_source/apps/pipeline/pipeline/alignment.py.
package aligner

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/viewroyal/civicpipe/pkg/models"
)

// endOfMeetingPad lands the synthetic "meeting end" anchor a little before
// the media actually cuts off (adjournment pleasantries, dead air).
const endOfMeetingPad = 10.0

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)

// normalizeText lowercases and strips everything but letters/digits/space.
func normalizeText(s string) string {
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(strings.ToLower(s), ""))
}

// naturalSortKey orders "8.10" after "8.2", unlike a plain string compare.
// Grounded on pipeline.utils.natural_sort_key: split on digit runs and
// compare numeric runs as integers, the rest as lowercased text.
type naturalSortKey []sortToken

type sortToken struct {
	isNum bool
	num   int
	str   string
}

var digitRunRe = regexp.MustCompile(`[0-9]+`)

func naturalSortKeyOf(s string) naturalSortKey {
	if s == "" {
		return nil
	}
	var key naturalSortKey
	last := 0
	for _, loc := range digitRunRe.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			key = append(key, sortToken{str: strings.ToLower(s[last:loc[0]])})
		}
		n, _ := strconv.Atoi(s[loc[0]:loc[1]])
		key = append(key, sortToken{isNum: true, num: n})
		last = loc[1]
	}
	if last < len(s) {
		key = append(key, sortToken{str: strings.ToLower(s[last:])})
	}
	return key
}

// naturalSortLess compares two keys token by token. Python compares mixed
// lists of int/str directly and would raise TypeError on a type mismatch
// mid-list; real item_order values never hit that case (digits always
// line up positionally for items at the same nesting depth), so a type
// mismatch here just falls back to comparing stringified tokens to keep
// the sort total.
func naturalSortLess(a, b naturalSortKey) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		ta, tb := a[i], b[i]
		switch {
		case ta.isNum && tb.isNum:
			if ta.num != tb.num {
				return ta.num < tb.num
			}
		case !ta.isNum && !tb.isNum:
			if ta.str != tb.str {
				return ta.str < tb.str
			}
		default:
			sa, sb := tokenString(ta), tokenString(tb)
			if sa != sb {
				return sa < sb
			}
		}
	}
	return len(a) < len(b)
}

func tokenString(t sortToken) string {
	if t.isNum {
		return strconv.Itoa(t.num)
	}
	return t.str
}

// Segment is the subset of a transcript segment the aligner needs.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

func segmentsFrom(transcript []models.TranscriptSegment) []Segment {
	out := make([]Segment, len(transcript))
	for i, s := range transcript {
		out[i] = Segment{Start: s.Start, End: s.End, Text: s.Text}
	}
	return out
}

type candidate struct {
	itemPos int
	ts      float64
	score   float64
}

// AlignMeetingItems natural-sorts items by item_order, finds anchor
// candidates for each, builds a monotonic anchor list with backtracking,
// linearly interpolates discussion_start_time between anchors, derives
// discussion_end_time, and realigns every motion within its item's final
// window. Returns a new slice in natural-sort order; the caller is
// responsible for re-keying back to the original order if needed.
func AlignMeetingItems(items []models.AgendaItemRecord, transcript []models.TranscriptSegment) []models.AgendaItemRecord {
	if len(transcript) == 0 || len(items) == 0 {
		return items
	}
	segs := segmentsFrom(transcript)

	sorted := make([]models.AgendaItemRecord, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(a, b int) bool {
		return naturalSortLess(naturalSortKeyOf(sorted[a].ItemOrder), naturalSortKeyOf(sorted[b].ItemOrder))
	})

	meetingStart := segs[0].Start
	meetingEnd := segs[len(segs)-1].End

	var allCandidates []candidate
	for i, item := range sorted {
		m := findItemMarker(segs, item.ItemOrder, item.Title, item.DiscussionStartTime, item.DiscussionEndTime)
		if m != nil {
			allCandidates = append(allCandidates, candidate{itemPos: i, ts: m.ts, score: m.score})
		}
	}

	var anchors []candidate
	for _, c := range allCandidates {
		switch {
		case len(anchors) == 0:
			anchors = append(anchors, c)
		case c.ts >= anchors[len(anchors)-1].ts:
			anchors = append(anchors, c)
		default:
			prev := anchors[len(anchors)-1]
			beforeTS := meetingStart - 1
			if len(anchors) >= 2 {
				beforeTS = anchors[len(anchors)-2].ts
			}
			if c.score > prev.score && c.ts > beforeTS {
				anchors[len(anchors)-1] = c
			}
		}
	}

	if len(anchors) == 0 {
		anchors = []candidate{{itemPos: 0, ts: meetingStart}, {itemPos: len(sorted) - 1, ts: meetingEnd - endOfMeetingPad}}
	} else {
		if anchors[0].itemPos != 0 {
			anchors = append([]candidate{{itemPos: 0, ts: meetingStart}}, anchors...)
		}
		if anchors[len(anchors)-1].itemPos != len(sorted)-1 {
			anchors = append(anchors, candidate{itemPos: len(sorted) - 1, ts: meetingEnd - endOfMeetingPad})
		}
	}

	for a := 0; a < len(anchors)-1; a++ {
		idx1, t1 := anchors[a].itemPos, anchors[a].ts
		idx2, t2 := anchors[a+1].itemPos, anchors[a+1].ts
		n := idx2 - idx1
		step := 0.0
		if n > 0 {
			step = (t2 - t1) / float64(n)
		}
		for i := idx1; i < idx2; i++ {
			start := t1 + float64(i-idx1)*step
			sorted[i].DiscussionStartTime = &start
		}
	}
	lastIdx, lastTS := anchors[len(anchors)-1].itemPos, anchors[len(anchors)-1].ts
	sorted[lastIdx].DiscussionStartTime = &lastTS

	for i := range sorted {
		currStart := *sorted[i].DiscussionStartTime
		var end float64
		if i < len(sorted)-1 {
			end = *sorted[i+1].DiscussionStartTime
		} else {
			end = meetingEnd
		}
		if end <= currStart {
			end = currStart + 2
		}
		sorted[i].DiscussionEndTime = &end
	}

	for i := range sorted {
		item := &sorted[i]
		titleLower := strings.ToLower(item.Title)
		isTermination := strings.Contains(titleLower, "termination") || strings.Contains(titleLower, "adjournment")
		for m := range item.Motions {
			motion := &item.Motions[m]
			textLower := strings.ToLower(motion.MotionText)
			preferLatest := isTermination || strings.Contains(textLower, "terminate") || strings.Contains(textLower, "adjourn")
			ts := findMotionMarker(segs, motion.MotionText, *item.DiscussionStartTime, *item.DiscussionEndTime, preferLatest)
			if ts != nil {
				motion.Timestamp = ts
				if motion.EndTimestamp != nil {
					end := *ts + 10
					motion.EndTimestamp = &end
				}
			}
		}
	}

	return sorted
}
