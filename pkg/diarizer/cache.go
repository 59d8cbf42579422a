package diarizer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/viewroyal/civicpipe/pkg/models"
)

// outputPath is where diarize_audio persists its combined transcript JSON:
// <audio-basename-without-ext>.json, next to the audio file unless a
// cacheDir override is configured (useful when the archive tree is
// mounted read-only).
func outputPath(audioPath, cacheDir string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath)) + ".json"
	if cacheDir == "" {
		return filepath.Join(filepath.Dir(audioPath), base)
	}
	return filepath.Join(cacheDir, base)
}

// rawTranscriptPath is the separate STT-only cache rediarize mode reads to
// skip re-running transcription.
func rawTranscriptPath(audioPath, cacheDir string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath)) + "_raw_transcript.json"
	if cacheDir == "" {
		return filepath.Join(filepath.Dir(audioPath), base)
	}
	return filepath.Join(cacheDir, base)
}

// loadCachedTranscript reads a previously-persisted combined transcript.
// Per the new-format rule, the cache is only usable as-is when it carries
// a non-empty speaker_centroids map; an older cache lacking it needs
// regeneration to recover centroids for fingerprint matching.
func loadCachedTranscript(path string) (*models.TranscriptJSON, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var cached models.TranscriptJSON
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	if len(cached.SpeakerCentroids) == 0 {
		return nil, false
	}
	return &cached, true
}

func saveTranscript(path string, result models.TranscriptJSON) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadRawTranscript(path string) ([]models.RawSTTSegment, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var segments []models.RawSTTSegment
	if err := json.Unmarshal(data, &segments); err != nil || len(segments) == 0 {
		return nil, false
	}
	return segments, true
}

func saveRawTranscript(path string, segments []models.RawSTTSegment) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(segments, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
