package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Bylaw is a canonicalized municipal bylaw ingested from its full text,
// linked to the Matter(s) it governs by pkg/bylaw's linker.
type Bylaw struct {
	ent.Schema
}

func (Bylaw) Fields() []ent.Field {
	return []ent.Field{
		field.Int("municipality_id"),
		field.String("number").NotEmpty().
			Comment("canonical form, e.g. \"Bylaw 1160\""),
		field.String("title").
			Optional().
			Nillable(),
		field.Text("full_text").
			Optional().
			Nillable(),
		field.String("source_url").
			Optional().
			Nillable(),
		field.String("blob_key").
			Optional().
			Nillable(),
		field.String("content_hash").
			Optional().
			Nillable(),
	}
}

func (Bylaw) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("municipality", Municipality.Type).
			Ref("bylaws").
			Field("municipality_id").
			Unique().
			Required(),
		edge.To("chunks", BylawChunk.Type),
		edge.To("matters", Matter.Type),
	}
}

func (Bylaw) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("municipality_id", "number").Unique(),
	}
}
