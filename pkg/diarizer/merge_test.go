package diarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viewroyal/civicpipe/pkg/models"
)

func TestCleanSpeakerLabel(t *testing.T) {
	assert.Equal(t, "Speaker_0", cleanSpeakerLabel("SPEAKER_00"))
	assert.Equal(t, "Speaker_12", cleanSpeakerLabel("SPEAKER_12"))
	assert.Equal(t, "Jane Doe", cleanSpeakerLabel("Jane Doe"))
}

func TestMergeResults_AssignsMaxOverlapSpeaker(t *testing.T) {
	stt := []models.RawSTTSegment{
		{Start: 0, End: 10, Text: "hello"},
		{Start: 10, End: 20, Text: "world"},
	}
	diarization := []models.DiarizationSegment{
		{Start: 0, End: 8, SpeakerLabel: "SPEAKER_00"},
		{Start: 8, End: 20, SpeakerLabel: "SPEAKER_01"},
	}

	merged := mergeResults(stt, diarization, nil)
	assert.Equal(t, "Speaker_0", merged[0].Speaker)
	assert.InDelta(t, 0.8, merged[0].SpeakerConfidence, 1e-6)
	assert.Equal(t, "Speaker_1", merged[1].Speaker)
	assert.InDelta(t, 1.0, merged[1].SpeakerConfidence, 1e-6)
}

func TestMergeResults_NoOverlapFallsBackToUnknown(t *testing.T) {
	stt := []models.RawSTTSegment{{Start: 100, End: 110, Text: "lonely"}}
	diarization := []models.DiarizationSegment{{Start: 0, End: 10, SpeakerLabel: "SPEAKER_00"}}

	merged := mergeResults(stt, diarization, nil)
	assert.Equal(t, "Speaker_Unknown", merged[0].Speaker)
	assert.Equal(t, 0.0, merged[0].SpeakerConfidence)
}

func TestMergeResults_EmptyDiarizationFallsBackToUnknownForAll(t *testing.T) {
	stt := []models.RawSTTSegment{{Start: 0, End: 5, Text: "a"}, {Start: 5, End: 10, Text: "b"}}
	merged := mergeResults(stt, nil, nil)
	assert.Len(t, merged, 2)
	for _, seg := range merged {
		assert.Equal(t, "Speaker_Unknown", seg.Speaker)
		assert.Equal(t, 0.0, seg.SpeakerConfidence)
	}
}

func TestMergeResults_AppliesSpeakerMapping(t *testing.T) {
	stt := []models.RawSTTSegment{{Start: 0, End: 10, Text: "hi"}}
	diarization := []models.DiarizationSegment{{Start: 0, End: 10, SpeakerLabel: "SPEAKER_00"}}
	mapping := map[string]string{"SPEAKER_00": "Jane Doe"}

	merged := mergeResults(stt, diarization, mapping)
	assert.Equal(t, "Jane Doe", merged[0].Speaker)
}

func TestBuildSpeakerSamples_ClipsToMaxDuration(t *testing.T) {
	diarization := []models.DiarizationSegment{
		{Start: 0, End: 30, SpeakerLabel: "SPEAKER_00"},
		{Start: 30, End: 35, SpeakerLabel: "SPEAKER_00"}, // second occurrence, ignored
		{Start: 40, End: 42, SpeakerLabel: "SPEAKER_01"},
	}
	samples := buildSpeakerSamples(diarization, 15)
	assert.Equal(t, models.SpeakerSample{Start: 0, End: 15}, samples["SPEAKER_00"])
	assert.Equal(t, models.SpeakerSample{Start: 40, End: 42}, samples["SPEAKER_01"])
}
