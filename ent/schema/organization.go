package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Organization is the body that held a meeting: a Council, Board,
// Committee, Advisory Committee, or Staff group.
type Organization struct {
	ent.Schema
}

func (Organization) Fields() []ent.Field {
	return []ent.Field{
		field.Int("municipality_id"),
		field.String("name").NotEmpty(),
		field.Enum("classification").
			Values("Council", "Board", "Committee", "Advisory Committee", "Staff"),
	}
}

func (Organization) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("municipality", Municipality.Type).
			Ref("organizations").
			Field("municipality_id").
			Unique().
			Required(),
		edge.To("meetings", Meeting.Type),
		edge.To("memberships", Membership.Type),
	}
}

func (Organization) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("municipality_id", "name").Unique(),
	}
}
