package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// DocumentSection is one "##"-bounded chunk of an ExtractedDocument's
// markdown, possibly further split at "Part N of M" paragraph boundaries
// when it exceeds 8000 chars. Embeddings live in a pgvector column added
// by migration, outside this schema (see pkg/embedder).
type DocumentSection struct {
	ent.Schema
}

func (DocumentSection) Fields() []ent.Field {
	return []ent.Field{
		field.Int("extracted_document_id"),
		field.Int("agenda_item_id").
			Optional().
			Nillable(),
		field.String("section_title").NotEmpty(),
		field.Text("section_text").NotEmpty(),
		field.Int("section_order"),
		field.Int("page_start"),
		field.Int("page_end"),
		field.Int("token_count").
			Comment("approx words * 1.3"),
	}
}

func (DocumentSection) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("extracted_document", ExtractedDocument.Type).
			Ref("sections").
			Field("extracted_document_id").
			Unique().
			Required(),
		edge.From("agenda_item", AgendaItem.Type).
			Ref("sections").
			Field("agenda_item_id").
			Unique(),
	}
}

func (DocumentSection) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("extracted_document_id", "section_order"),
		index.Fields("agenda_item_id"),
	}
}
