// Package models holds the DTOs shared across pipeline package boundaries:
// the refiner's structured LLM output, the change detector's report, and
// the transcript/diarization JSON formats persisted alongside the archive.
package models

// MeetingRefinement is the structured-output contract the refiner asks the
// LLM to fill in for a single meeting (§4.7). The two scratchpad fields are
// internal monologue the model uses to reason before committing to the
// typed fields below; the aligner and the repair layer both fall back to
// parsing them when the typed fields come back empty.
type MeetingRefinement struct {
	ScratchpadSpeakerMap  string              `json:"scratchpad_speaker_map"`
	ScratchpadTimeline    string              `json:"scratchpad_timeline"`
	Summary               string              `json:"summary"`
	MeetingType           string              `json:"meeting_type"`
	Status                string              `json:"status"`
	ChairPersonName       string              `json:"chair_person_name,omitempty"`
	Attendees             []string            `json:"attendees"`
	SpeakerAliases        []SpeakerAlias      `json:"speaker_aliases"`
	TranscriptCorrections []TranscriptCorrection `json:"transcript_corrections"`
	Items                 []AgendaItemRecord  `json:"items"`
}

// SpeakerAlias maps a diarizer speaker label to a resolved name.
type SpeakerAlias struct {
	Label string `json:"label"`
	Name  string `json:"name"`
}

// TranscriptCorrection is a textual find/replace the refiner asks the
// ingester to apply to the raw transcript before persisting segments.
type TranscriptCorrection struct {
	OriginalText string `json:"original_text"`
	CorrectedText string `json:"corrected_text"`
	Reason       string `json:"reason,omitempty"`
}

// AgendaItemRecord is one agenda item as refined by the LLM, prior to
// alignment (discussion_start_time/end_time are filled in by the aligner).
type AgendaItemRecord struct {
	ItemOrder            string         `json:"item_order"`
	Title                string         `json:"title"`
	MatterIdentifier      string         `json:"matter_identifier,omitempty"`
	MatterTitle           string         `json:"matter_title,omitempty"`
	PlainEnglishSummary   string         `json:"plain_english_summary,omitempty"`
	RelatedAddress        []string       `json:"related_address,omitempty"`
	Description           string         `json:"description,omitempty"`
	Category              string         `json:"category"`
	Tags                  []string       `json:"tags"`
	FinancialCost         *float64       `json:"financial_cost,omitempty"`
	FundingSource         string         `json:"funding_source,omitempty"`
	IsControversial       bool           `json:"is_controversial"`
	DebateSummary         string         `json:"debate_summary,omitempty"`
	KeyQuotes             []KeyQuote     `json:"key_quotes"`
	KeyStatements         []KeyStatementRecord `json:"key_statements"`
	DiscussionStartTime   *float64       `json:"discussion_start_time,omitempty"`
	DiscussionEndTime     *float64       `json:"discussion_end_time,omitempty"`
	Motions               []MotionRecord `json:"motions"`
}

// KeyQuote is a verbatim transcript excerpt attached to an agenda item.
type KeyQuote struct {
	Text      string   `json:"text"`
	Speaker   string   `json:"speaker,omitempty"`
	Timestamp *float64 `json:"timestamp,omitempty"`
}

// KeyStatementRecord is a claim/fact/commitment extracted from discussion,
// independent of any motion.
type KeyStatementRecord struct {
	StatementText string   `json:"statement_text"`
	Speaker       string   `json:"speaker,omitempty"`
	StatementType string   `json:"statement_type"`
	Context       string   `json:"context,omitempty"`
	Timestamp     *float64 `json:"timestamp,omitempty"`
}

// MotionRecord is one council motion within an agenda item.
type MotionRecord struct {
	MotionText          string       `json:"motion_text"`
	PlainEnglishSummary string       `json:"plain_english_summary,omitempty"`
	Disposition         string       `json:"disposition,omitempty"`
	Mover               string       `json:"mover,omitempty"`
	Seconder            string       `json:"seconder,omitempty"`
	Result              string       `json:"result"` // CARRIED, DEFEATED, WITHDRAWN
	Timestamp           *float64     `json:"timestamp,omitempty"`
	EndTimestamp        *float64     `json:"end_timestamp,omitempty"`
	Votes               []VoteRecord `json:"votes"`
	FinancialCost       *float64     `json:"financial_cost,omitempty"`
	FundingSource       string       `json:"funding_source,omitempty"`
}

// VoteRecord is one council member's vote on a motion.
type VoteRecord struct {
	PersonName string `json:"person_name"`
	Vote       string `json:"vote"` // Yes, No, Abstain, Absent
	Reason     string `json:"reason,omitempty"`
}

// Closed sets the refiner's repair layer normalizes free-text values into.
var (
	MeetingTypes  = []string{"Council", "Committee of the Whole", "Public Hearing", "Special Council", "Other"}
	MeetingStatuses = []string{"Planned", "Occurred", "Completed"}
	MotionResults = []string{"CARRIED", "DEFEATED", "WITHDRAWN"}
	VoteValues    = []string{"Yes", "No", "Abstain", "Absent"}
	StatementTypes = []string{"claim", "proposal", "objection", "recommendation", "financial", "public_input"}
)
