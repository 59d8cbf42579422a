package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// VoiceFingerprint is one speaker-embedding sample enrolled for a Person.
// A person may carry several; people.voice_fingerprint_id names the
// preferred one. The 192-dim embedding itself lives in a pgvector column
// added by migration, read/written only through pkg/diarizer's raw-SQL
// path — ent has no native vector type.
type VoiceFingerprint struct {
	ent.Schema
}

func (VoiceFingerprint) Fields() []ent.Field {
	return []ent.Field{
		field.Int("person_id"),
		field.Int("source_meeting_id").
			Optional().
			Nillable(),
	}
}

func (VoiceFingerprint) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("person", Person.Type).
			Ref("fingerprints").
			Field("person_id").
			Unique().
			Required(),
	}
}

func (VoiceFingerprint) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("person_id"),
	}
}
