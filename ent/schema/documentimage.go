package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// DocumentImage references an image extracted from a document page by blob
// store key only; the bytes never pass through the relational store.
type DocumentImage struct {
	ent.Schema
}

func (DocumentImage) Fields() []ent.Field {
	return []ent.Field{
		field.Int("extracted_document_id"),
		field.Int("page_number"),
		field.String("blob_key").NotEmpty(),
		field.String("caption").
			Optional().
			Nillable(),
	}
}

func (DocumentImage) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("extracted_document", ExtractedDocument.Type).
			Ref("images").
			Field("extracted_document_id").
			Unique().
			Required(),
	}
}

func (DocumentImage) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("extracted_document_id", "page_number"),
	}
}
