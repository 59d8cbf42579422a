package profiler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/viewroyal/civicpipe/ent"
	"github.com/viewroyal/civicpipe/ent/person"
	"github.com/viewroyal/civicpipe/ent/personstance"
	"github.com/viewroyal/civicpipe/pkg/config"
	"github.com/viewroyal/civicpipe/pkg/llmclient"
	"github.com/viewroyal/civicpipe/pkg/perrors"
)

// Stats tallies one GenerateAllStances run.
type Stats struct {
	Generated int
	Skipped   int
	Errors    int
}

// Profiler generates and upserts PersonStance rows, one per
// (councillor, topic) pair, grounded on generate_all_stances.
type Profiler struct {
	llm     *llmclient.Client
	db      *ent.Client
	cfg     config.ProfilerConfig
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New builds a Profiler. cfg.RateLimitDelay sets the minimum spacing
// between LLM calls, matching the original's fixed RATE_LIMIT_DELAY.
func New(llm *llmclient.Client, db *ent.Client, cfg config.ProfilerConfig) *Profiler {
	delay := cfg.RateLimitDelay
	if delay <= 0 {
		delay = time.Second
	}
	return &Profiler{
		llm:     llm,
		db:      db,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		logger:  slog.Default().With("component", "profiler"),
	}
}

// GenerateAllStances ports generate_all_stances: every councillor (or
// just personID, if non-nil) crossed with every topic, skipping pairs
// with no evidence and retrying a parse failure once.
func (p *Profiler) GenerateAllStances(ctx context.Context, personID *int) (Stats, error) {
	var stats Stats

	people, err := p.councillors(ctx, personID)
	if err != nil {
		return stats, err
	}

	for _, person := range people {
		for _, topic := range Topics {
			ev, err := gatherEvidence(ctx, p.db, person.ID, topic, p.cfg.MaxKeyStatements, p.cfg.MaxVotes)
			if err != nil {
				p.logger.Error("gather evidence failed", "person_id", person.ID, "topic", topic, "error", err)
				stats.Errors++
				continue
			}
			if ev.statementCount == 0 {
				stats.Skipped++
				continue
			}

			result, err := p.generateOne(ctx, person.Name, topic, ev)
			if err != nil {
				p.logger.Error("generate stance failed", "person_id", person.ID, "topic", topic, "error", err)
				stats.Errors++
				continue
			}

			if err := p.upsertStance(ctx, person.ID, topic, ev, result); err != nil {
				p.logger.Error("upsert stance failed", "person_id", person.ID, "topic", topic, "error", err)
				stats.Errors++
				continue
			}
			stats.Generated++
		}
	}

	return stats, nil
}

func (p *Profiler) councillors(ctx context.Context, personID *int) ([]*ent.Person, error) {
	if personID != nil {
		one, err := p.db.Person.Get(ctx, *personID)
		if err != nil {
			return nil, fmt.Errorf("fetch person %d: %w", *personID, err)
		}
		return []*ent.Person{one}, nil
	}
	all, err := p.db.Person.Query().Where(person.IsCouncillor(true)).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch councillors: %w", err)
	}
	return all, nil
}

// generateOne issues the structured-extraction call, rate limited to
// one request at a time, retrying a structural parse failure once
// (the original retries _call_gemini's JSON parse a single time before
// giving up on that (person, topic) pair).
func (p *Profiler) generateOne(ctx context.Context, personName, topic string, ev evidence) (*stanceResult, error) {
	prompt := buildPrompt(personName, topic, ev)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		ctx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
		resp, err := p.llm.GenerateStructured(ctx, llmclient.StructuredRequest{
			Model:        p.cfg.Model,
			SystemPrompt: stanceSystemInstruction,
			UserPrompt:   prompt,
			Temperature:  0.2,
		})
		cancel()
		if err != nil {
			lastErr = perrors.Transient(topic, fmt.Errorf("stance call: %w", err))
			continue
		}

		result, err := parseStanceResponse(resp.Content)
		if err != nil {
			lastErr = perrors.Structural(topic, fmt.Errorf("parse stance: %w", err))
			continue
		}
		return result, nil
	}
	return nil, lastErr
}

const stanceSystemInstruction = `You are a neutral municipal-politics analyst. You summarize a councillor's public record on a topic strictly from the evidence provided. You never invent facts, never state personal opinions, and always hedge claims proportionally to how much evidence supports them.`

var llmPositionToSchema = map[string]personstance.Position{
	"supports": personstance.PositionSupportive,
	"opposes":  personstance.PositionOpposed,
	"mixed":    personstance.PositionMixed,
	"neutral":  personstance.PositionNeutral,
}

// upsertStance ports _upsert_stance: one row per (person_id, topic),
// created on first generation and overwritten on every regeneration.
func (p *Profiler) upsertStance(ctx context.Context, personID int, topic string, ev evidence, result *stanceResult) error {
	position, ok := llmPositionToSchema[result.Position]
	if !ok {
		position = personstance.PositionNeutral
	}
	confidence := determineConfidence(ev.statementCount)

	existing, err := p.db.PersonStance.Query().
		Where(personstance.PersonID(personID), personstance.Topic(personstance.Topic(topic))).
		Only(ctx)
	if err != nil && !ent.IsNotFound(err) {
		return fmt.Errorf("query existing stance: %w", err)
	}

	if existing == nil {
		_, err := p.db.PersonStance.Create().
			SetPersonID(personID).
			SetTopic(personstance.Topic(topic)).
			SetPosition(position).
			SetPositionScore(result.PositionScore).
			SetSummary(result.Summary).
			SetEvidenceQuotes(result.KeyQuotes).
			SetStatementCount(ev.statementCount).
			SetConfidence(personstance.Confidence(confidence)).
			SetConfidenceNote(result.ConfidenceNote).
			Save(ctx)
		if err != nil {
			return fmt.Errorf("create stance: %w", err)
		}
		return nil
	}

	_, err = p.db.PersonStance.UpdateOne(existing).
		SetPosition(position).
		SetPositionScore(result.PositionScore).
		SetSummary(result.Summary).
		SetEvidenceQuotes(result.KeyQuotes).
		SetStatementCount(ev.statementCount).
		SetConfidence(personstance.Confidence(confidence)).
		SetConfidenceNote(result.ConfidenceNote).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("update stance: %w", err)
	}
	return nil
}
