package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Meeting is the central unit of work. archive_path is the canonical
// relative path to the meeting's folder; unique with municipality_id.
// Status is monotonic under re-ingest (I5): Planned -> Occurred ->
// Completed, never downgraded.
type Meeting struct {
	ent.Schema
}

func (Meeting) Fields() []ent.Field {
	return []ent.Field{
		field.Int("municipality_id"),
		field.Int("organization_id").
			Optional().
			Nillable(),
		field.Int("chair_person_id").
			Optional().
			Nillable(),
		field.Time("meeting_date"),
		field.String("type").NotEmpty(),
		field.String("title").
			Optional().
			Nillable(),
		field.String("archive_path").
			Optional().
			Nillable().
			Comment("null for a scheduled-but-not-yet-discovered meeting row"),
		field.Enum("status").
			Values("Planned", "Occurred", "Completed").
			Default("Planned"),
		field.Bool("has_agenda").Default(false),
		field.Bool("has_minutes").Default(false),
		field.Bool("has_transcript").Default(false),
		field.String("video_url").
			Optional().
			Nillable(),
		field.Text("summary").
			Optional().
			Nillable(),
		field.JSON("meta", map[string]interface{}{}).
			Optional().
			Comment("speaker_centroids, speaker_samples, fingerprint_matches, speaker_mapping"),
	}
}

func (Meeting) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("municipality", Municipality.Type).
			Ref("meetings").
			Field("municipality_id").
			Unique().
			Required(),
		edge.From("organization", Organization.Type).
			Ref("meetings").
			Field("organization_id").
			Unique(),
		edge.From("chair_person", Person.Type).
			Ref("chaired_meetings").
			Field("chair_person_id").
			Unique(),
		edge.To("attendances", Attendance.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("speaker_aliases", MeetingSpeakerAlias.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("transcript_segments", TranscriptSegment.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("agenda_items", AgendaItem.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("motions", Motion.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("key_statements", KeyStatement.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("documents", Document.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (Meeting) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("municipality_id", "archive_path").
			Unique().
			Annotations(entsql.IndexWhere("archive_path IS NOT NULL")),
		index.Fields("municipality_id", "meeting_date", "type"),
		index.Fields("status"),
	}
}

// Status ranks (I5: re-ingest never downgrades Occurred/Completed back to
// Planned) are enforced in pkg/ingest, not here — ent schemas declare shape
// only.
