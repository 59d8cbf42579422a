package diarizer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewroyal/civicpipe/pkg/models"
)

func TestOutputPath_DefaultsToAudioSibling(t *testing.T) {
	got := outputPath("/archive/2025-03-11/Audio/meeting.mp3", "")
	assert.Equal(t, "/archive/2025-03-11/Audio/meeting.json", got)
}

func TestOutputPath_UsesCacheDirOverride(t *testing.T) {
	got := outputPath("/archive/2025-03-11/Audio/meeting.mp3", "/var/cache/diarizer")
	assert.Equal(t, "/var/cache/diarizer/meeting.json", got)
}

func TestRawTranscriptPath(t *testing.T) {
	got := rawTranscriptPath("/archive/2025-03-11/Audio/meeting.mp3", "")
	assert.Equal(t, "/archive/2025-03-11/Audio/meeting_raw_transcript.json", got)
}

func TestLoadCachedTranscript_NewFormatWithCentroidsIsHonored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meeting.json")
	cached := models.TranscriptJSON{
		Segments:         []models.TranscriptSegment{{Start: 0, End: 1, Text: "hi", Speaker: "Speaker_0"}},
		SpeakerCentroids: map[string][]float32{"SPEAKER_00": {0.1, 0.2}},
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, ok := loadCachedTranscript(path)
	require.True(t, ok)
	assert.Len(t, got.Segments, 1)
}

func TestLoadCachedTranscript_OldFormatWithoutCentroidsTriggersRegeneration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meeting.json")
	// Old-format cache: plain segment array, no speaker_centroids at all.
	require.NoError(t, os.WriteFile(path, []byte(`[{"start":0,"end":1,"text":"hi","speaker":"Speaker_0"}]`), 0o644))

	_, ok := loadCachedTranscript(path)
	assert.False(t, ok)
}

func TestLoadCachedTranscript_MissingFile(t *testing.T) {
	_, ok := loadCachedTranscript(filepath.Join(t.TempDir(), "nope.json"))
	assert.False(t, ok)
}

func TestSaveAndLoadRawTranscript_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meeting_raw_transcript.json")
	segments := []models.RawSTTSegment{{Start: 0, End: 1, Text: "hi"}}

	require.NoError(t, saveRawTranscript(path, segments))
	got, ok := loadRawTranscript(path)
	require.True(t, ok)
	assert.Equal(t, segments, got)
}
