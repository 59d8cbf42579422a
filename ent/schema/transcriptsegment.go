package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// TranscriptSegment is one speaker-attributed utterance. Every segment's
// speaker_name either resolves to a MeetingSpeakerAlias or is recorded
// verbatim (I1 — no silent drops).
type TranscriptSegment struct {
	ent.Schema
}

func (TranscriptSegment) Fields() []ent.Field {
	return []ent.Field{
		field.Int("meeting_id"),
		field.Int("person_id").
			Optional().
			Nillable(),
		field.String("speaker_name").NotEmpty(),
		field.Float("start_time"),
		field.Float("end_time"),
		field.Text("text_content").NotEmpty(),
		field.String("attribution_source").
			Default("diarizer").
			Comment("diarizer | voice_fingerprint | refinement_alias | unresolved"),
	}
}

func (TranscriptSegment) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("meeting", Meeting.Type).
			Ref("transcript_segments").
			Field("meeting_id").
			Unique().
			Required(),
	}
}

func (TranscriptSegment) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("meeting_id", "start_time"),
	}
}
