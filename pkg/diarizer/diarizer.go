// Package diarizer drives §4.4: preprocessing, speaker segmentation,
// transcription, and fingerprint matching for one recording, merging the
// results into a single speaker-attributed transcript. Grounded on
// original_source/apps/pipeline/pipeline/local_diarizer.py's LocalDiarizer
// — senko (segmentation+embedding) and parakeet-mlx (STT) are treated as
// pure external models behind capability.SpeakerPipeline/SpeechToText, the
// same opaque-remote-capability shape pkg/docextract uses for DocumentAI.
package diarizer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/config"
	"github.com/viewroyal/civicpipe/pkg/models"
	"github.com/viewroyal/civicpipe/pkg/perrors"
)

// Diarizer runs the preprocess → diarize → transcribe → merge →
// fingerprint-match pipeline for one audio file.
type Diarizer struct {
	converter capability.AudioConverter
	speaker   capability.SpeakerPipeline
	stt       capability.SpeechToText
	db        *sql.DB
	threshold float64
	sampleMax float64 // seconds
	cacheDir  string
	logger    *slog.Logger
}

// New builds a Diarizer. db may be nil (no fingerprint matching performed,
// mirroring the original's supabase_client=None mode).
func New(converter capability.AudioConverter, speaker capability.SpeakerPipeline, stt capability.SpeechToText, db *sql.DB, cfg config.DiarizerConfig) *Diarizer {
	return &Diarizer{
		converter: converter,
		speaker:   speaker,
		stt:       stt,
		db:        db,
		threshold: cfg.FingerprintMatchThreshold,
		sampleMax: cfg.SpeakerSampleMaxDuration.Seconds(),
		cacheDir:  cfg.CacheDir,
		logger:    slog.Default().With("component", "diarizer"),
	}
}

// Options tunes a single Diarize call.
type Options struct {
	// ExistingTranscript reuses already-transcribed STT segments instead
	// of calling SpeechToText, same as passing a transcript straight
	// through to the merge step.
	ExistingTranscript []models.RawSTTSegment
	// ForceRegenerate bypasses any cached transcript.json, redoing both
	// diarization and transcription.
	ForceRegenerate bool
	// Rediarize bypasses the cache and redoes only diarization, loading
	// the cached raw STT output (the *_raw_transcript.json sidecar) to
	// avoid re-running transcription.
	Rediarize bool
}

// Diarize produces the speaker-attributed transcript for audioPath,
// honoring the cached transcript.json (§4.4 step 6) unless opts overrides
// it, and persists the result before returning.
func (d *Diarizer) Diarize(ctx context.Context, audioPath string, opts Options) (*models.TranscriptJSON, error) {
	log := d.logger.With("audio", audioPath)
	log.Info("processing audio")

	output := outputPath(audioPath, d.cacheDir)
	rawPath := rawTranscriptPath(audioPath, d.cacheDir)

	if len(opts.ExistingTranscript) == 0 && !opts.ForceRegenerate && !opts.Rediarize {
		if cached, ok := loadCachedTranscript(output); ok {
			log.Info("found cached transcript", "path", output)
			return cached, nil
		}
	}

	existing := opts.ExistingTranscript
	if opts.Rediarize && len(existing) == 0 {
		if segments, ok := loadRawTranscript(rawPath); ok {
			log.Info("loaded cached raw transcript for rediarize", "segments", len(segments))
			existing = segments
		} else {
			log.Warn("no cached raw transcript for rediarize, running full pipeline")
		}
	}

	// Step 1: preprocess to 16kHz mono WAV. The Acquirer already does this
	// once ahead of handoff (§4.3); this call covers standalone/rediarize
	// runs against audio that didn't come through it, and is cheap to
	// repeat when it did (ffmpeg -y overwrites).
	wavPath, err := d.converter.ConvertTo16kMonoWAV(ctx, audioPath)
	if err != nil {
		return nil, perrors.Corrupt(audioPath, fmt.Errorf("preprocess audio: %w", err))
	}
	defer func() {
		if wavPath != audioPath {
			if rmErr := os.Remove(wavPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				log.Warn("failed to remove temp wav", "path", wavPath, "error", rmErr)
			}
		}
	}()

	// Step 2: segmentation + embedding.
	log.Info("running speaker diarization")
	diarResult, err := d.speaker.Diarize(ctx, wavPath)
	if err != nil {
		return nil, fmt.Errorf("speaker diarization: %w", err)
	}
	if len(diarResult.Segments) == 0 {
		return nil, perrors.Corrupt(audioPath, errors.New("no speech detected in audio"))
	}

	// Step 5 (matching depends only on centroids, done ahead of merge so
	// speaker_mapping is available to it).
	speakerMapping, aliases, fingerprintMatches, err := d.matchFingerprints(ctx, diarResult.SpeakerCentroids)
	if err != nil {
		log.Warn("fingerprint matching failed, continuing without it", "error", err)
	}

	// Step 3: transcription, or reuse.
	var transcription []models.RawSTTSegment
	if len(existing) > 0 {
		log.Info("using existing transcript segments, skipping STT", "segments", len(existing))
		transcription = existing
	} else {
		transcription, err = d.stt.Transcribe(ctx, wavPath)
		if err != nil {
			return nil, fmt.Errorf("transcription: %w", err)
		}
		if len(transcription) > 0 {
			if err := saveRawTranscript(rawPath, transcription); err != nil {
				log.Warn("failed to save raw transcript", "error", err)
			}
		}
	}
	if len(transcription) == 0 {
		return nil, perrors.Corrupt(audioPath, errors.New("transcription failed or empty"))
	}

	// Step 4: merge.
	segments := mergeResults(transcription, diarResult.Segments, speakerMapping)
	samples := buildSpeakerSamples(diarResult.Segments, d.sampleMax)

	result := models.TranscriptJSON{
		Segments:           segments,
		SpeakerCentroids:   diarResult.SpeakerCentroids,
		SpeakerSamples:     samples,
		SpeakerMapping:     speakerMapping,
		SpeakerAliases:     aliases,
		FingerprintMatches: fingerprintMatches,
	}

	if err := saveTranscript(output, result); err != nil {
		log.Warn("failed to save transcript cache", "error", err)
	} else {
		log.Info("saved transcript", "path", output)
	}

	return &result, nil
}

// matchFingerprints resolves every diarization label's centroid against
// known voice fingerprints (§4.4 step 5).
func (d *Diarizer) matchFingerprints(ctx context.Context, centroids map[string][]float32) (map[string]string, []models.FingerprintAlias, map[string]models.FingerprintMatch, error) {
	known, err := loadKnownFingerprints(ctx, d.db)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(known) == 0 {
		return map[string]string{}, nil, map[string]models.FingerprintMatch{}, nil
	}

	mapping := make(map[string]string)
	matches := make(map[string]models.FingerprintMatch)
	var aliases []models.FingerprintAlias

	for label, centroid := range centroids {
		match := matchSpeakerToKnown(centroid, known, d.threshold)
		if match == nil {
			continue
		}
		mapping[label] = match.PersonName
		matches[label] = *match
		aliases = append(aliases, models.FingerprintAlias{
			Label:      label,
			Name:       match.PersonName,
			PersonID:   match.PersonID,
			Confidence: match.Similarity,
			Source:     "voice_fingerprint",
		})
		d.logger.Info("matched speaker to known fingerprint", "label", label, "person", match.PersonName, "similarity", match.Similarity)
	}

	return mapping, aliases, matches, nil
}
