package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Document is a PDF ingested for a meeting (an agenda package, a standalone
// bylaw file, ...) before the two-pass extractor splits it apart.
type Document struct {
	ent.Schema
}

func (Document) Fields() []ent.Field {
	return []ent.Field{
		field.Int("meeting_id"),
		field.String("kind").
			Comment("agenda_package | minutes | other"),
		field.String("source_url").
			Optional().
			Nillable(),
		field.String("blob_key").NotEmpty(),
		field.Int("page_count").
			Optional().
			Nillable(),
		field.String("content_hash").
			Optional().
			Nillable().
			Comment("sha256 of the fetched bytes, used for change detection"),
	}
}

func (Document) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("meeting", Meeting.Type).
			Ref("documents").
			Field("meeting_id").
			Unique().
			Required(),
		edge.To("extracted_documents", ExtractedDocument.Type),
	}
}

func (Document) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("meeting_id"),
	}
}
