package aligner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewroyal/civicpipe/pkg/models"
)

func seg(start, end float64, text string) models.TranscriptSegment {
	return models.TranscriptSegment{Start: start, End: end, Text: text}
}

func TestNaturalSortKeyOf_OrdersNumericallyNotLexically(t *testing.T) {
	keys := []string{"8.10", "8.2", "8.1", "10", "2"}
	sortKeys := make([]naturalSortKey, len(keys))
	for i, k := range keys {
		sortKeys[i] = naturalSortKeyOf(k)
	}

	assert.True(t, naturalSortLess(sortKeys[2], sortKeys[1])) // 8.1 < 8.2
	assert.True(t, naturalSortLess(sortKeys[1], sortKeys[0])) // 8.2 < 8.10
	assert.True(t, naturalSortLess(sortKeys[4], sortKeys[3])) // 2 < 10
}

func TestAlignMeetingItems_CallToOrderAnchorsAtTranscriptStart(t *testing.T) {
	transcript := []models.TranscriptSegment{
		seg(0, 10, "Good evening everyone, I call this meeting to order."),
		seg(10, 300, "Let's move to item 2, the rezoning application at 123 Main Street."),
		seg(300, 3600, "That concludes our business, meeting adjourned."),
	}
	items := []models.AgendaItemRecord{
		{ItemOrder: "1", Title: "Call to Order"},
		{ItemOrder: "2", Title: "Rezoning Application 123 Main Street"},
		{ItemOrder: "3", Title: "Adjournment"},
	}

	aligned := AlignMeetingItems(items, transcript)

	require.Len(t, aligned, 3)
	require.NotNil(t, aligned[0].DiscussionStartTime)
	assert.Equal(t, 0.0, *aligned[0].DiscussionStartTime)
}

func TestAlignMeetingItems_ZeroMarkersSpreadsEvenly(t *testing.T) {
	transcript := []models.TranscriptSegment{
		seg(0, 100, "unrelated filler text one"),
		seg(100, 200, "unrelated filler text two"),
		seg(200, 1000, "unrelated filler text three"),
	}
	items := []models.AgendaItemRecord{
		{ItemOrder: "1", Title: "Nothing Matches Here"},
		{ItemOrder: "2", Title: "Still Nothing At All"},
		{ItemOrder: "3", Title: "Totally Unrelated Subject"},
	}

	aligned := AlignMeetingItems(items, transcript)

	require.Len(t, aligned, 3)
	require.NotNil(t, aligned[0].DiscussionStartTime)
	require.NotNil(t, aligned[2].DiscussionStartTime)
	assert.Equal(t, 0.0, *aligned[0].DiscussionStartTime)
	assert.InDelta(t, 990.0, *aligned[2].DiscussionStartTime, 0.01)
	assert.True(t, *aligned[1].DiscussionStartTime > *aligned[0].DiscussionStartTime)
	assert.True(t, *aligned[2].DiscussionStartTime > *aligned[1].DiscussionStartTime)
}

func TestAlignMeetingItems_RealignsMotionWithinItemWindow(t *testing.T) {
	transcript := []models.TranscriptSegment{
		seg(0, 10, "call this meeting to order"),
		seg(10, 50, "now discussing item 2, the budget variance report"),
		seg(50, 90, "councillor moves to receive the budget variance report"),
		seg(90, 1000, "moving to item 3"),
	}
	items := []models.AgendaItemRecord{
		{ItemOrder: "1", Title: "Call to Order"},
		{
			ItemOrder: "2", Title: "Budget Variance",
			Motions: []models.MotionRecord{{MotionText: "move to receive the budget variance report"}},
		},
		{ItemOrder: "3", Title: "Next Business"},
	}

	aligned := AlignMeetingItems(items, transcript)

	require.Len(t, aligned[1].Motions, 1)
	require.NotNil(t, aligned[1].Motions[0].Timestamp)
	assert.Equal(t, 50.0, *aligned[1].Motions[0].Timestamp)
}

func TestFindMotionMarker_PreferLatestBoostsTerminationMatch(t *testing.T) {
	segs := []Segment{
		{Start: 10, End: 20, Text: "someone says adjourn in passing during debate"},
		{Start: 900, End: 910, Text: "councillor moves to terminate the meeting"},
	}
	ts := findMotionMarker(segs, "move to terminate the meeting", 0, 1000, true)
	require.NotNil(t, ts)
	assert.Equal(t, 900.0, *ts)
}

func TestFindItemMarker_TerminationScansLastThirtySegments(t *testing.T) {
	segs := make([]Segment, 0, 40)
	for i := 0; i < 35; i++ {
		segs = append(segs, Segment{Start: float64(i * 10), End: float64(i*10 + 10), Text: "general discussion continues"})
	}
	segs = append(segs, Segment{Start: 400, End: 410, Text: "motion to adjourn the meeting"})

	m := findItemMarker(segs, "9", "Adjournment", nil, nil)
	require.NotNil(t, m)
	assert.Equal(t, 400.0, m.ts)
	assert.Equal(t, 2.0, m.score)
}
