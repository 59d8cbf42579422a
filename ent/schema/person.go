package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Person is a canonicalized individual: a councillor (seeded from an
// election roster, never created implicitly) or any other attendee,
// speaker, or statement author discovered during ingestion.
type Person struct {
	ent.Schema
}

func (Person) Fields() []ent.Field {
	return []ent.Field{
		field.String("name").
			NotEmpty().
			Comment("canonical form: honorifics stripped, spaced letters collapsed, aliases mapped"),
		field.Bool("is_councillor").
			Default(false),
		field.String("pronouns").
			Optional().
			Nillable(),
		field.Int("voice_fingerprint_id").
			Optional().
			Nillable().
			Comment("preferred fingerprint, among possibly several for this person"),
	}
}

func (Person) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("memberships", Membership.Type),
		edge.To("speaker_aliases", MeetingSpeakerAlias.Type),
		edge.To("attendances", Attendance.Type),
		edge.To("votes", Vote.Type),
		edge.To("fingerprints", VoiceFingerprint.Type),
		edge.To("stances", PersonStance.Type),
		edge.To("chaired_meetings", Meeting.Type),
	}
}

func (Person) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("name"),
		index.Fields("is_councillor"),
	}
}
