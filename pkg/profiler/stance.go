package profiler

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stanceResult is the LLM's parsed stance-generation response.
type stanceResult struct {
	Position       string           `json:"position"`
	PositionScore  float64          `json:"position_score"`
	Summary        string           `json:"summary"`
	KeyQuotes      []map[string]any `json:"key_quotes"`
	ConfidenceNote string           `json:"confidence_note"`
}

// buildPrompt ports _build_prompt: lists key statements then votes,
// picks a confidence-qualifier instruction from the evidence count, and
// asks for the same JSON shape the original requested.
func buildPrompt(personName, topic string, ev evidence) string {
	var statements strings.Builder
	if len(ev.keyStatements) > 0 {
		statements.WriteString("Key Statements:\n")
		for i, ks := range ev.keyStatements {
			date := ks.meetingDate
			if date == "" {
				date = "unknown date"
			}
			fmt.Fprintf(&statements, "  %d. [%s] (Re: %s) \"%s\"\n", i+1, date, ks.agendaItemTitle, ks.text)
		}
	}

	var votes strings.Builder
	if len(ev.votes) > 0 {
		votes.WriteString("\nVoting Record:\n")
		for i, v := range ev.votes {
			date := v.meetingDate
			if date == "" {
				date = "unknown date"
			}
			preview := v.motionText
			if len(preview) > 150 {
				preview = preview[:150]
			}
			result := v.result
			if result == "" {
				result = "unknown"
			}
			fmt.Fprintf(&votes, "  %d. [%s] Voted %s on: \"%s...\" (Result: %s)\n", i+1, date, v.vote, preview, result)
		}
	}

	var confidenceInstruction string
	switch {
	case ev.statementCount < 3:
		confidenceInstruction = `IMPORTANT: With fewer than 3 pieces of evidence, you MUST use hedged language such as "Limited data suggests..." or "Based on sparse evidence..." in the summary. Do NOT make definitive claims.`
	case ev.statementCount <= 7:
		confidenceInstruction = `With moderate evidence available, use measured language. Phrases like "Generally appears to..." or "Tends to..." are appropriate.`
	default:
		confidenceInstruction = `With substantial evidence available, you can make confident assertions like "Consistently supports..." or "Has repeatedly opposed..."`
	}

	return fmt.Sprintf(`You are analyzing a municipal councillor's position on a specific topic based on their statements, votes, and motions.

Councillor: %s
Topic: %s
Total evidence items: %d

Evidence:
%s%s

%s

Respond with a JSON object (no markdown fencing):
{
  "position": "supports" | "opposes" | "mixed" | "neutral",
  "position_score": -1.0 to 1.0 (negative = opposes, positive = supports),
  "summary": "2-3 sentences describing the councillor's position on this topic, citing specific evidence. Use qualifier language matching the confidence level.",
  "key_quotes": [{"text": "...", "meeting_date": "...", "segment_id": null}],
  "confidence_note": "Brief explanation of data basis (e.g., 'Based on 12 statements across 8 meetings')"
}

Rules:
- If fewer than 3 pieces of evidence, use hedged language: "Limited data suggests..."
- If evidence is contradictory, position should be "mixed"
- Always ground claims in specific evidence (dates, vote outcomes, quotes)
- Never editorialize or express your own opinion
- key_quotes should contain up to 3 of the most representative quotes from the evidence
- position_score: -1.0 = strongly opposes, 0.0 = neutral/mixed, 1.0 = strongly supports
`, personName, topic, ev.statementCount, statements.String(), votes.String(), confidenceInstruction)
}

// determineConfidence ports _determine_confidence.
func determineConfidence(statementCount int) string {
	switch {
	case statementCount >= 8:
		return "high"
	case statementCount >= 3:
		return "moderate"
	default:
		return "low"
	}
}

// parseStanceResponse ports _parse_stance_response: strips markdown
// fencing, decodes JSON, and rejects a response missing any required
// field.
func parseStanceResponse(text string) (*stanceResult, error) {
	cleaned := stripJSONFence(text)

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("parse stance json: %w", err)
	}
	for _, field := range []string{"position", "position_score", "summary"} {
		if _, ok := raw[field]; !ok {
			return nil, fmt.Errorf("stance response missing field %q", field)
		}
	}

	var result stanceResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("decode stance json: %w", err)
	}
	return &result, nil
}

func stripJSONFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.SplitN(s, "\n", 2)
	if len(parts) != 2 {
		return s
	}
	s = parts[1]
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
