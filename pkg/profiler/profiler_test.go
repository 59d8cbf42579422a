package profiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategoryToTopic(t *testing.T) {
	assert.Equal(t, "Bylaw", normalizeCategoryToTopic("Zoning Bylaw Amendment"))
	assert.Equal(t, "Development", normalizeCategoryToTopic("Development Permit Application"))
	assert.Equal(t, "Finance", normalizeCategoryToTopic("Annual Budget"))
	assert.Equal(t, "Environment", normalizeCategoryToTopic("Parks and Trails"))
	assert.Equal(t, "Public Safety", normalizeCategoryToTopic("Fire Protection Services"))
	assert.Equal(t, "Transportation", normalizeCategoryToTopic("Traffic and Road Infrastructure"))
	assert.Equal(t, "Administration", normalizeCategoryToTopic("Committee Appointments"))
	assert.Equal(t, "General", normalizeCategoryToTopic("Miscellaneous"))
	assert.Equal(t, "General", normalizeCategoryToTopic(""))
}

func TestDetermineConfidence(t *testing.T) {
	assert.Equal(t, "low", determineConfidence(0))
	assert.Equal(t, "low", determineConfidence(2))
	assert.Equal(t, "moderate", determineConfidence(3))
	assert.Equal(t, "moderate", determineConfidence(7))
	assert.Equal(t, "high", determineConfidence(8))
	assert.Equal(t, "high", determineConfidence(20))
}

func TestParseStanceResponse(t *testing.T) {
	raw := `{"position":"supports","position_score":0.6,"summary":"Generally supports development.","key_quotes":[{"text":"I support this.","meeting_date":"2025-01-01"}],"confidence_note":"Based on 5 statements"}`

	result, err := parseStanceResponse(raw)
	assert.NoError(t, err)
	assert.Equal(t, "supports", result.Position)
	assert.Equal(t, 0.6, result.PositionScore)
	assert.Equal(t, "Generally supports development.", result.Summary)
	assert.Len(t, result.KeyQuotes, 1)
}

func TestParseStanceResponse_StripsMarkdownFence(t *testing.T) {
	raw := "```json\n{\"position\":\"neutral\",\"position_score\":0,\"summary\":\"No clear position.\"}\n```"

	result, err := parseStanceResponse(raw)
	assert.NoError(t, err)
	assert.Equal(t, "neutral", result.Position)
}

func TestParseStanceResponse_MissingFieldRejected(t *testing.T) {
	raw := `{"position":"supports","summary":"missing score"}`

	_, err := parseStanceResponse(raw)
	assert.Error(t, err)
}

func TestBuildPrompt_HedgesOnSparseEvidence(t *testing.T) {
	ev := evidence{
		keyStatements:  []keyStatementEvidence{{text: "I support this.", meetingDate: "2025-01-01", agendaItemTitle: "Zoning Bylaw"}},
		statementCount: 1,
	}
	prompt := buildPrompt("Jane Doe", "Bylaw", ev)
	assert.Contains(t, prompt, "MUST use hedged language")
	assert.Contains(t, prompt, "Jane Doe")
	assert.Contains(t, prompt, "Bylaw")
}

func TestBuildPrompt_ConfidentOnSubstantialEvidence(t *testing.T) {
	statements := make([]keyStatementEvidence, 9)
	for i := range statements {
		statements[i] = keyStatementEvidence{text: "statement", meetingDate: "2025-01-01", agendaItemTitle: "Item"}
	}
	ev := evidence{keyStatements: statements, statementCount: 9}
	prompt := buildPrompt("Jane Doe", "Finance", ev)
	assert.Contains(t, prompt, "substantial evidence")
}
