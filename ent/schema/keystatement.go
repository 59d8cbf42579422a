package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// KeyStatement is a notable statement extracted by the refiner: a claim,
// proposal, objection, recommendation, financial remark, or public-input
// contribution.
type KeyStatement struct {
	ent.Schema
}

func (KeyStatement) Fields() []ent.Field {
	return []ent.Field{
		field.Int("meeting_id"),
		field.Int("agenda_item_id").
			Optional().
			Nillable(),
		field.Int("person_id").
			Optional().
			Nillable(),
		field.String("speaker_name").NotEmpty(),
		field.Enum("statement_type").
			Values("claim", "proposal", "objection", "recommendation", "financial", "public_input").
			Default("claim"),
		field.Text("statement_text").NotEmpty(),
		field.Text("context").
			Optional().
			Nillable(),
		field.Float("start_time").
			Optional().
			Nillable(),
	}
}

func (KeyStatement) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("meeting", Meeting.Type).
			Ref("key_statements").
			Field("meeting_id").
			Unique().
			Required(),
		edge.From("agenda_item", AgendaItem.Type).
			Ref("key_statements").
			Field("agenda_item_id").
			Unique(),
	}
}

func (KeyStatement) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("meeting_id"),
		index.Fields("agenda_item_id"),
		index.Fields("person_id"),
	}
}
