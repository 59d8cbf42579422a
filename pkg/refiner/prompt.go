package refiner

import (
	"fmt"
	"strings"
)

// systemInstruction is the static system prompt shared by every refiner
// call, grounded on ai_refiner.py's SYSTEM_INSTRUCTION.
const systemInstruction = `You are a meticulous municipal records analyst. You read council meeting
agendas, minutes, and transcripts and extract a structured, factual record.
Never invent attendees, votes, or motions that aren't supported by the
source text. Use the two scratchpad fields to reason before committing to
the typed fields: map speaker labels to attendee names in
scratchpad_speaker_map, and work out item start/end timestamps in
scratchpad_timeline. Summaries must focus on substantive outcomes, not
procedural motions like approving the agenda or adjourning.`

// meetingRefinementSchema is the JSON Schema sent to the sidecar alongside
// the prompt so the provider can constrain generation when it supports it.
const meetingRefinementSchema = `{
  "type": "object",
  "required": ["scratchpad_speaker_map", "scratchpad_timeline", "summary", "meeting_type", "status", "attendees", "speaker_aliases", "transcript_corrections", "items"],
  "properties": {
    "scratchpad_speaker_map": {"type": "string"},
    "scratchpad_timeline": {"type": "string"},
    "summary": {"type": "string"},
    "meeting_type": {"type": "string"},
    "status": {"type": "string"},
    "chair_person_name": {"type": ["string", "null"]},
    "attendees": {"type": "array", "items": {"type": "string"}},
    "speaker_aliases": {"type": "array", "items": {"type": "object"}},
    "transcript_corrections": {"type": "array", "items": {"type": "object"}},
    "items": {"type": "array", "items": {"type": "object"}}
  }
}`

func buildAgendaOnlyPrompt(agendaText string) string {
	return fmt.Sprintf(`I have only the AGENDA for an UPCOMING or INCOMPLETE meeting.
Goal: extract a structured plan of what is scheduled.

SOURCE: AGENDA TEXT
%s

INSTRUCTIONS:
1. Set status to "Planned".
2. Extract all scheduled items with titles and numbering.
3. Leave motions, timestamps, and quotes EMPTY.`, agendaText)
}

// buildRefinementPrompt assembles the standard (non map-reduce) prompt.
// transcriptChunk lets the map-reduce caller pass a single chunk while
// reusing the same prompt shape the standard path uses for the full text.
func buildRefinementPrompt(in Input, transcriptChunk string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SOURCE: AGENDA TEXT\n%s\n\n", in.AgendaText)
	if in.hasMinutes() {
		fmt.Fprintf(&b, "SOURCE: MINUTES TEXT\n%s\n\n", in.MinutesText)
	}
	if transcriptChunk != "" {
		fmt.Fprintf(&b, "SOURCE: TRANSCRIPT TEXT\n%s\n\n", transcriptChunk)
	}

	if len(in.AttendeesHint) > 0 {
		fmt.Fprintf(&b, "ATTENDEES HINT (from minutes/sign-in sheet): %s\n", strings.Join(in.AttendeesHint, ", "))
	}
	if len(in.ActiveCouncilMembers) > 0 {
		fmt.Fprintf(&b, "ACTIVE COUNCIL MEMBERS on this meeting date: %s\n", strings.Join(in.ActiveCouncilMembers, ", "))
		b.WriteString("Only attribute votes or official attendance to names from this list. Anyone else referred to by a council title is likely a transcription error.\n")
	}
	if len(in.FingerprintAliases) > 0 {
		b.WriteString("PRE-IDENTIFIED SPEAKERS (from voice matching, treat as ground truth unless contradicted by context):\n")
		for _, a := range in.FingerprintAliases {
			fmt.Fprintf(&b, "  %s = %s\n", a.Label, a.Name)
		}
	}

	b.WriteString(`
INSTRUCTIONS:
1. Identify the chair, attendees, and every scheduled agenda item.
2. For each item with discussion, extract motions, votes, and key quotes
   with timestamps in seconds.
3. Extract key statements (claims, proposals, objections, recommendations,
   financial commitments, public input) that aren't tied to a motion.
4. Record transcript_corrections for any misspelled name or obvious
   transcription error you noticed, with the exact original text.
5. Use scratchpad_speaker_map and scratchpad_timeline to reason before
   filling in speaker_aliases and item timestamps.`)

	return b.String()
}
