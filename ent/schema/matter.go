package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Matter is the cross-meeting umbrella for a policy or application (a
// bylaw, a rezoning file, ...) tracked by the Matter Matcher.
type Matter struct {
	ent.Schema
}

func (Matter) Fields() []ent.Field {
	return []ent.Field{
		field.Int("municipality_id"),
		field.String("identifier").NotEmpty(),
		field.String("title").NotEmpty(),
		field.String("category").
			Optional().
			Nillable(),
		field.String("status").
			Optional().
			Nillable(),
		field.Time("first_seen"),
		field.Time("last_seen"),
		field.Int("bylaw_id").
			Optional().
			Nillable(),
	}
}

func (Matter) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("municipality", Municipality.Type).
			Ref("matters").
			Field("municipality_id").
			Unique().
			Required(),
		edge.To("agenda_items", AgendaItem.Type),
		edge.From("bylaw", Bylaw.Type).
			Ref("matters").
			Field("bylaw_id").
			Unique(),
	}
}

func (Matter) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("municipality_id", "identifier"),
	}
}
