package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// BylawChunk is one overlapping text window of a Bylaw's full text, sized
// for embedding and retrieval. The embedding itself lives in a pgvector
// column added by migration (see pkg/embedder).
type BylawChunk struct {
	ent.Schema
}

func (BylawChunk) Fields() []ent.Field {
	return []ent.Field{
		field.Int("bylaw_id"),
		field.Int("chunk_order"),
		field.Text("chunk_text").NotEmpty(),
		field.Int("char_start"),
		field.Int("char_end"),
	}
}

func (BylawChunk) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("bylaw", Bylaw.Type).
			Ref("chunks").
			Field("bylaw_id").
			Unique().
			Required(),
	}
}

func (BylawChunk) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("bylaw_id", "chunk_order"),
	}
}
