package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Municipality is the single source of truth for scoping; every other
// entity in the graph carries municipality_id directly or transitively.
type Municipality struct {
	ent.Schema
}

func (Municipality) Fields() []ent.Field {
	return []ent.Field{
		field.String("slug").
			Unique().
			NotEmpty().
			Comment("short identifier used in archive paths and CLI targets"),
		field.String("name").
			NotEmpty(),
		field.JSON("source_config", map[string]interface{}{}).
			Optional().
			Comment("scraper + video-catalog + archive-root configuration for this municipality"),
	}
}

func (Municipality) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("meetings", Meeting.Type),
		edge.To("organizations", Organization.Type),
		edge.To("matters", Matter.Type),
		edge.To("bylaws", Bylaw.Type),
	}
}

func (Municipality) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("slug"),
	}
}
