// Package refiner implements the Meeting Refiner (§4.7): one structured-
// output LLM call that turns an agenda/minutes/transcript bundle into a
// models.MeetingRefinement. Grounded on
// original_source/apps/pipeline/pipeline/ingestion/ai_refiner.py's
// refine_meeting_data, reworked onto the gRPC pkg/llmclient sidecar the
// rest of this module uses instead of calling Gemini/Ollama directly.
package refiner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/viewroyal/civicpipe/pkg/config"
	"github.com/viewroyal/civicpipe/pkg/llmclient"
	"github.com/viewroyal/civicpipe/pkg/masking"
	"github.com/viewroyal/civicpipe/pkg/models"
	"github.com/viewroyal/civicpipe/pkg/names"
	"github.com/viewroyal/civicpipe/pkg/perrors"
)

// Input bundles everything the refiner needs for one meeting.
type Input struct {
	AgendaText           string
	MinutesText          string
	TranscriptText       string
	AttendeesHint        []string
	FingerprintAliases   []models.SpeakerAlias
	ActiveCouncilMembers []string
	MeetingDate          time.Time
}

const minMinutesChars = 100

// hasMinutes reports whether in carries usable minutes text, the same
// threshold the original applies before treating a meeting as anything
// beyond "Agenda-only".
func (in Input) hasMinutes() bool {
	return len(strings.TrimSpace(in.MinutesText)) > minMinutesChars
}

func (in Input) hasTranscript() bool {
	return len(strings.TrimSpace(in.TranscriptText)) > 0
}

// Refiner issues the structured-extraction call and repairs its output.
type Refiner struct {
	llm    *llmclient.Client
	mask   *masking.Service
	canon  *names.Canonicalizer
	cfg    config.RefinerConfig
	logger *slog.Logger
}

// New builds a Refiner. canon supplies the municipality's known
// council/staff roster used by the repair layer to drop hallucinated
// attendees and voters.
func New(llm *llmclient.Client, mask *masking.Service, canon *names.Canonicalizer, cfg config.RefinerConfig) *Refiner {
	return &Refiner{
		llm:    llm,
		mask:   mask,
		canon:  canon,
		cfg:    cfg,
		logger: slog.Default().With("component", "refiner"),
	}
}

// Refine dispatches to agenda-only, standard, or map-reduce mode and
// returns the repaired MeetingRefinement.
func (r *Refiner) Refine(ctx context.Context, in Input) (*models.MeetingRefinement, error) {
	masked := r.mask.MaskTranscript(in.TranscriptText)

	if !in.hasMinutes() && !in.hasTranscript() {
		r.logger.Info("agenda-only mode: no minutes or transcript", "chars_agenda", len(in.AgendaText))
		return r.call(ctx, buildAgendaOnlyPrompt(in.AgendaText), "agenda-only")
	}

	if len(masked) > r.cfg.MapReduceChunkChars {
		r.logger.Info("map-reduce mode", "transcript_chars", len(masked), "chunk_chars", r.cfg.MapReduceChunkChars)
		return r.refineMapReduce(ctx, in, masked)
	}

	prompt := buildRefinementPrompt(in, masked)
	return r.call(ctx, prompt, "standard")
}

// call issues one structured-extraction request and repairs its output.
func (r *Refiner) call(ctx context.Context, prompt, mode string) (*models.MeetingRefinement, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	resp, err := r.llm.GenerateStructured(ctx, llmclient.StructuredRequest{
		Model:        r.cfg.Model,
		SystemPrompt: systemInstruction,
		UserPrompt:   prompt,
		JSONSchema:   meetingRefinementSchema,
		Temperature:  0.1,
	})
	if err != nil {
		return nil, perrors.Transient(mode, fmt.Errorf("refiner call: %w", err))
	}

	raw := cleanJSONEnvelope(resp.Content)
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, perrors.Structural(mode, fmt.Errorf("parse refinement json: %w", err))
	}

	repaired := r.repair(data)

	refinement, err := decodeRefinement(repaired)
	if err != nil {
		return nil, perrors.Structural(mode, fmt.Errorf("decode refinement: %w", err))
	}

	applyScratchpadFallbacks(refinement)
	return refinement, nil
}

// cleanJSONEnvelope strips markdown code fences a lenient provider might
// wrap its JSON output in.
func cleanJSONEnvelope(content string) string {
	s := strings.TrimSpace(content)
	if strings.Contains(s, "```json") {
		parts := strings.SplitN(s, "```json", 2)
		if len(parts) == 2 {
			s = strings.SplitN(parts[1], "```", 2)[0]
		}
	} else if strings.Contains(s, "```") {
		parts := strings.SplitN(s, "```", 3)
		if len(parts) >= 2 {
			s = parts[1]
		}
	}
	return strings.TrimSpace(s)
}

func decodeRefinement(data map[string]any) (*models.MeetingRefinement, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out models.MeetingRefinement
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
