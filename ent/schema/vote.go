package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Vote is one person's vote on a motion.
type Vote struct {
	ent.Schema
}

func (Vote) Fields() []ent.Field {
	return []ent.Field{
		field.Int("motion_id"),
		field.Int("person_id"),
		field.Enum("vote").
			Values("Yes", "No", "Abstain", "Recused"),
		field.String("recusal_reason").
			Optional().
			Nillable(),
	}
}

func (Vote) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("motion", Motion.Type).
			Ref("votes").
			Field("motion_id").
			Unique().
			Required(),
		edge.From("person", Person.Type).
			Ref("votes").
			Field("person_id").
			Unique().
			Required(),
	}
}

func (Vote) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("motion_id", "person_id").Unique(),
	}
}
