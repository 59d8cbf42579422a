package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// PersonStance is the Stance Profiler's LLM-generated summary of a
// councillor's position on one of the 8 fixed topics, grounded in their
// key statements and votes.
type PersonStance struct {
	ent.Schema
}

func (PersonStance) Fields() []ent.Field {
	return []ent.Field{
		field.Int("person_id"),
		field.Enum("topic").
			Values("Administration", "Bylaw", "Development", "Environment",
				"Finance", "General", "Public Safety", "Transportation"),
		field.Enum("position").
			Values("supportive", "opposed", "mixed", "neutral").
			Default("neutral"),
		field.Float("position_score").Default(0),
		field.Text("summary").
			Optional().
			Nillable(),
		field.JSON("evidence_quotes", []map[string]interface{}{}).
			Optional(),
		field.Int("statement_count").Default(0),
		field.Enum("confidence").
			Values("low", "moderate", "high").
			Default("low"),
		field.String("confidence_note").
			Optional().
			Nillable(),
	}
}

func (PersonStance) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("person", Person.Type).
			Ref("stances").
			Field("person_id").
			Unique().
			Required(),
	}
}

func (PersonStance) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("person_id", "topic").Unique(),
	}
}
