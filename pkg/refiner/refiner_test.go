package refiner

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewroyal/civicpipe/pkg/config"
	"github.com/viewroyal/civicpipe/pkg/models"
	"github.com/viewroyal/civicpipe/pkg/names"
)

func testCanon() *names.Canonicalizer {
	return names.NewCanonicalizer([]string{"David Screech", "Jane Doe"}, nil)
}

func testRefiner() *Refiner {
	return &Refiner{
		canon:  testCanon(),
		cfg:    config.RefinerConfig{MapReduceChunkChars: 15000},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRepair_RenamesAliasesAndFiltersAttendees(t *testing.T) {
	r := testRefiner()
	data := map[string]any{
		"aliases": map[string]any{"Speaker_01": "Mayor David Screech"},
		"attendees": []any{
			"Mayor David Screech",
			"Councillor John Impostor",
			"Jane Doe",
		},
		"items": []any{},
	}

	out := r.repair(data)

	aliases, ok := out["speaker_aliases"].([]any)
	require.True(t, ok)
	require.Len(t, aliases, 1)
	sa := aliases[0].(map[string]any)
	assert.Equal(t, "Speaker_01", sa["label"])
	assert.Equal(t, "Mayor David Screech", sa["name"])

	attendees := out["attendees"].([]any)
	assert.Contains(t, attendees, "David Screech")
	assert.Contains(t, attendees, "Jane Doe")
	assert.NotContains(t, attendees, "Councillor John Impostor")
	assert.Len(t, attendees, 2)
}

func TestRepair_ItemDefaultsAndAgendaItemSplit(t *testing.T) {
	r := testRefiner()
	data := map[string]any{
		"items": []any{
			map[string]any{
				"agenda_item": "7.a. Rezoning Application",
			},
		},
	}

	out := r.repair(data)
	items := out["items"].([]any)
	item := items[0].(map[string]any)

	assert.Equal(t, "7.a", item["item_order"])
	assert.Equal(t, "Rezoning Application", item["title"])
	assert.Equal(t, []any{}, item["tags"])
	assert.Equal(t, false, item["is_controversial"])
}

func TestRepair_MotionVotesDictAndNormalization(t *testing.T) {
	r := testRefiner()
	data := map[string]any{
		"items": []any{
			map[string]any{
				"motions": []any{
					map[string]any{
						"votes": map[string]any{
							"David Screech": "AYE",
							"Jane Doe":      "NAY",
							"John Impostor": "AYE",
						},
					},
				},
			},
		},
	}

	out := r.repair(data)
	item := out["items"].([]any)[0].(map[string]any)
	mot := item["motions"].([]any)[0].(map[string]any)
	votes := mot["votes"].([]any)

	require.Len(t, votes, 2)
	for _, v := range votes {
		vm := v.(map[string]any)
		name := vm["person_name"].(string)
		assert.Contains(t, []string{"David Screech", "Jane Doe"}, name)
		if name == "David Screech" {
			assert.Equal(t, "Yes", vm["vote"])
		} else {
			assert.Equal(t, "No", vm["vote"])
		}
	}
	assert.Equal(t, "CARRIED", mot["result"])
}

func TestToSeconds(t *testing.T) {
	assert.Equal(t, 45.0, *toSeconds("45"))
	assert.Equal(t, 90.0, *toSeconds("1:30"))
	assert.Equal(t, 3725.0, *toSeconds("1:02:05"))
	assert.Nil(t, toSeconds("garbage"))
	assert.Nil(t, toSeconds(nil))
}

func TestParseScratchpadAliases(t *testing.T) {
	got := parseScratchpadAliases("Speaker_01 is Mayor David Screech. Speaker_02: Jane Doe (Councillor)")
	require.Len(t, got, 2)
	assert.Equal(t, models.SpeakerAlias{Label: "Speaker_01", Name: "David Screech"}, got[0])
	assert.Equal(t, models.SpeakerAlias{Label: "Speaker_02", Name: "Jane Doe"}, got[1])
}

func TestParseScratchpadTimeline(t *testing.T) {
	got := parseScratchpadTimeline("7.a Variance Discussion (17:59-29:32) then 8. Adjournment (1:02:00-1:02:10)")
	require.Contains(t, got, "7.a")
	assert.Equal(t, 1079.0, *got["7.a"].start)
	assert.Equal(t, 1772.0, *got["7.a"].end)
}

func TestApplyScratchpadFallbacks_FillsEmptyAliasesAndTimestamps(t *testing.T) {
	ref := &models.MeetingRefinement{
		ScratchpadSpeakerMap: "Speaker_01 is Jane Doe",
		ScratchpadTimeline:   "1. Call to Order (0:00-0:30)",
		Items: []models.AgendaItemRecord{
			{ItemOrder: "1."},
		},
	}
	applyScratchpadFallbacks(ref)

	require.Len(t, ref.SpeakerAliases, 1)
	assert.Equal(t, "Jane Doe", ref.SpeakerAliases[0].Name)
	require.NotNil(t, ref.Items[0].DiscussionStartTime)
	assert.Equal(t, 0.0, *ref.Items[0].DiscussionStartTime)
	assert.Equal(t, 30.0, *ref.Items[0].DiscussionEndTime)
}

func TestChunkTranscript(t *testing.T) {
	r := &Refiner{cfg: config.RefinerConfig{MapReduceChunkChars: 10}}
	chunks := r.chunkTranscript("abcdefghijklmnopqrst")
	assert.Greater(t, len(chunks), 1)
	assert.Equal(t, "abcdefghij", chunks[0][:10])
}

func TestMergeRefinements(t *testing.T) {
	a := &models.MeetingRefinement{
		Attendees:      []string{"David Screech"},
		SpeakerAliases: []models.SpeakerAlias{{Label: "Speaker_01", Name: "David Screech"}},
		Items: []models.AgendaItemRecord{
			{Title: "Rezoning", DebateSummary: "part one", DiscussionStartTime: floatPtr(10)},
		},
	}
	b := &models.MeetingRefinement{
		Attendees: []string{"Jane Doe"},
		Items: []models.AgendaItemRecord{
			{Title: "Rezoning", DebateSummary: "part two", DiscussionStartTime: floatPtr(5), DiscussionEndTime: floatPtr(100)},
		},
	}

	merged := mergeRefinements([]*models.MeetingRefinement{a, b})

	assert.ElementsMatch(t, []string{"David Screech", "Jane Doe"}, merged.Attendees)
	require.Len(t, merged.Items, 1)
	assert.Equal(t, "part one\npart two", merged.Items[0].DebateSummary)
	assert.Equal(t, 5.0, *merged.Items[0].DiscussionStartTime)
	assert.Equal(t, 100.0, *merged.Items[0].DiscussionEndTime)
}

func floatPtr(f float64) *float64 { return &f }
