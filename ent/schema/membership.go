package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Membership records a person's role on an organization over a date
// range; active on date D iff start_date <= D <= (end_date or +inf).
type Membership struct {
	ent.Schema
}

func (Membership) Fields() []ent.Field {
	return []ent.Field{
		field.Int("person_id"),
		field.Int("organization_id"),
		field.String("role").NotEmpty(),
		field.Time("start_date"),
		field.Time("end_date").
			Optional().
			Nillable(),
	}
}

func (Membership) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("person", Person.Type).
			Ref("memberships").
			Field("person_id").
			Unique().
			Required(),
		edge.From("organization", Organization.Type).
			Ref("memberships").
			Field("organization_id").
			Unique().
			Required(),
	}
}

func (Membership) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("organization_id", "start_date"),
		index.Fields("person_id"),
	}
}
