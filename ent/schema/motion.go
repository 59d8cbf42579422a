package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Motion is a motion moved under an agenda item.
type Motion struct {
	ent.Schema
}

func (Motion) Fields() []ent.Field {
	return []ent.Field{
		field.Int("meeting_id"),
		field.Int("agenda_item_id"),
		field.String("mover").
			Optional().
			Nillable().
			Comment("raw name as refined, kept alongside mover_id since resolution can legitimately fail (junk name, unseeded councillor)"),
		field.Int("mover_id").
			Optional().
			Nillable(),
		field.String("seconder").
			Optional().
			Nillable(),
		field.Int("seconder_id").
			Optional().
			Nillable(),
		field.Text("text_content").NotEmpty(),
		field.Text("plain_english_summary").
			Optional().
			Nillable(),
		field.Enum("disposition").
			Values("Substantive", "Procedural", "Tabled", "Referred", "Amended").
			Optional().
			Nillable(),
		field.Enum("result").
			Values("CARRIED", "DEFEATED", "WITHDRAWN"),
		field.Float("time_offset_seconds").
			Optional().
			Nillable().
			Comment("null when a false-positive guard drops an implausible timestamp (I3)"),
		field.Float("financial_cost").
			Optional().
			Nillable(),
		field.String("funding_source").
			Optional().
			Nillable(),
	}
}

func (Motion) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("meeting", Meeting.Type).
			Ref("motions").
			Field("meeting_id").
			Unique().
			Required(),
		edge.From("agenda_item", AgendaItem.Type).
			Ref("motions").
			Field("agenda_item_id").
			Unique().
			Required(),
		edge.To("votes", Vote.Type),
	}
}

func (Motion) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("meeting_id"),
		index.Fields("agenda_item_id"),
	}
}
