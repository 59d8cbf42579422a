package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// MeetingSpeakerAlias binds a diarizer-assigned label (e.g. "Speaker_01")
// to a person for one meeting only.
type MeetingSpeakerAlias struct {
	ent.Schema
}

func (MeetingSpeakerAlias) Fields() []ent.Field {
	return []ent.Field{
		field.Int("meeting_id"),
		field.String("speaker_label").NotEmpty(),
		field.Int("person_id").
			Optional().
			Nillable(),
	}
}

func (MeetingSpeakerAlias) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("meeting", Meeting.Type).
			Ref("speaker_aliases").
			Field("meeting_id").
			Unique().
			Required(),
		edge.From("person", Person.Type).
			Ref("speaker_aliases").
			Field("person_id").
			Unique(),
	}
}

func (MeetingSpeakerAlias) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("meeting_id", "speaker_label").Unique(),
	}
}
