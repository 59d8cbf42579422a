package diarizer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewroyal/civicpipe/pkg/config"
	"github.com/viewroyal/civicpipe/pkg/models"
	"github.com/viewroyal/civicpipe/pkg/perrors"
)

type fakeConverter struct {
	calls int
}

func (f *fakeConverter) ConvertTo16kMonoWAV(ctx context.Context, inputPath string) (string, error) {
	f.calls++
	return inputPath + ".16k.wav", nil
}

type fakeSpeakerPipeline struct {
	result models.DiarizationResult
	err    error
	calls  int
}

func (f *fakeSpeakerPipeline) Diarize(ctx context.Context, wavPath string) (models.DiarizationResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeSTT struct {
	segments []models.RawSTTSegment
	err      error
	calls    int
}

func (f *fakeSTT) Transcribe(ctx context.Context, wavPath string) ([]models.RawSTTSegment, error) {
	f.calls++
	return f.segments, f.err
}

func testCfg() config.DiarizerConfig {
	return config.DiarizerConfig{
		FingerprintMatchThreshold: 0.75,
		SpeakerSampleMaxDuration:  15 * time.Second,
	}
}

func TestDiarize_FullRunPersistsTranscript(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "meeting.mp3")
	require.NoError(t, os.WriteFile(audioPath, []byte("audio"), 0o644))

	converter := &fakeConverter{}
	speaker := &fakeSpeakerPipeline{result: models.DiarizationResult{
		Segments:         []models.DiarizationSegment{{Start: 0, End: 10, SpeakerLabel: "SPEAKER_00"}},
		SpeakerCentroids: map[string][]float32{"SPEAKER_00": {0.1, 0.2}},
	}}
	stt := &fakeSTT{segments: []models.RawSTTSegment{{Start: 0, End: 10, Text: "hello council"}}}

	d := New(converter, speaker, stt, nil, testCfg())
	result, err := d.Diarize(context.Background(), audioPath, Options{})
	require.NoError(t, err)
	require.Len(t, result.Segments, 1)
	assert.Equal(t, "Speaker_0", result.Segments[0].Speaker)
	assert.Equal(t, 1, converter.calls)
	assert.Equal(t, 1, speaker.calls)
	assert.Equal(t, 1, stt.calls)

	_, err = os.Stat(outputPath(audioPath, ""))
	require.NoError(t, err)
	_, err = os.Stat(rawTranscriptPath(audioPath, ""))
	require.NoError(t, err)
}

func TestDiarize_CachedTranscriptSkipsPipeline(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "meeting.mp3")
	require.NoError(t, os.WriteFile(audioPath, []byte("audio"), 0o644))

	cached := models.TranscriptJSON{
		Segments:         []models.TranscriptSegment{{Start: 0, End: 1, Text: "cached", Speaker: "Speaker_0"}},
		SpeakerCentroids: map[string][]float32{"SPEAKER_00": {0.1}},
	}
	require.NoError(t, saveTranscript(outputPath(audioPath, ""), cached))

	converter := &fakeConverter{}
	speaker := &fakeSpeakerPipeline{}
	stt := &fakeSTT{}

	d := New(converter, speaker, stt, nil, testCfg())
	result, err := d.Diarize(context.Background(), audioPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, "cached", result.Segments[0].Text)
	assert.Equal(t, 0, converter.calls)
	assert.Equal(t, 0, speaker.calls)
	assert.Equal(t, 0, stt.calls)
}

func TestDiarize_ForceRegenerateIgnoresCache(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "meeting.mp3")
	require.NoError(t, os.WriteFile(audioPath, []byte("audio"), 0o644))

	cached := models.TranscriptJSON{
		Segments:         []models.TranscriptSegment{{Start: 0, End: 1, Text: "stale", Speaker: "Speaker_0"}},
		SpeakerCentroids: map[string][]float32{"SPEAKER_00": {0.1}},
	}
	require.NoError(t, saveTranscript(outputPath(audioPath, ""), cached))

	converter := &fakeConverter{}
	speaker := &fakeSpeakerPipeline{result: models.DiarizationResult{
		Segments:         []models.DiarizationSegment{{Start: 0, End: 5, SpeakerLabel: "SPEAKER_00"}},
		SpeakerCentroids: map[string][]float32{"SPEAKER_00": {0.9}},
	}}
	stt := &fakeSTT{segments: []models.RawSTTSegment{{Start: 0, End: 5, Text: "fresh"}}}

	d := New(converter, speaker, stt, nil, testCfg())
	result, err := d.Diarize(context.Background(), audioPath, Options{ForceRegenerate: true})
	require.NoError(t, err)
	assert.Equal(t, "fresh", result.Segments[0].Text)
	assert.Equal(t, 1, speaker.calls)
	assert.Equal(t, 1, stt.calls)
}

func TestDiarize_RediarizeReusesCachedRawTranscript(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "meeting.mp3")
	require.NoError(t, os.WriteFile(audioPath, []byte("audio"), 0o644))
	require.NoError(t, saveRawTranscript(rawTranscriptPath(audioPath, ""), []models.RawSTTSegment{
		{Start: 0, End: 5, Text: "already transcribed"},
	}))

	converter := &fakeConverter{}
	speaker := &fakeSpeakerPipeline{result: models.DiarizationResult{
		Segments:         []models.DiarizationSegment{{Start: 0, End: 5, SpeakerLabel: "SPEAKER_00"}},
		SpeakerCentroids: map[string][]float32{"SPEAKER_00": {0.9}},
	}}
	stt := &fakeSTT{}

	d := New(converter, speaker, stt, nil, testCfg())
	result, err := d.Diarize(context.Background(), audioPath, Options{Rediarize: true})
	require.NoError(t, err)
	assert.Equal(t, "already transcribed", result.Segments[0].Text)
	assert.Equal(t, 0, stt.calls, "rediarize should skip re-running STT")
	assert.Equal(t, 1, speaker.calls)
}

func TestDiarize_NoSpeechDetectedReturnsCorruptionError(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "meeting.mp3")
	require.NoError(t, os.WriteFile(audioPath, []byte("audio"), 0o644))

	d := New(&fakeConverter{}, &fakeSpeakerPipeline{}, &fakeSTT{}, nil, testCfg())
	_, err := d.Diarize(context.Background(), audioPath, Options{})
	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.KindCorruption))
}
