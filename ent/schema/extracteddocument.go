package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ExtractedDocument is one sub-document boundary found in a Document's
// pass-1 (staff report, appendix, correspondence, ...).
type ExtractedDocument struct {
	ent.Schema
}

func (ExtractedDocument) Fields() []ent.Field {
	return []ent.Field{
		field.Int("document_id"),
		field.String("title").NotEmpty(),
		field.Int("page_start"),
		field.Int("page_end"),
		field.Enum("doc_type").
			Values("agenda", "minutes", "staff_report", "delegation", "correspondence",
				"appendix", "bylaw", "presentation", "form", "other"),
		field.String("agenda_item_ref").
			Optional().
			Nillable().
			Comment("raw LLM agenda_item string, e.g. \"6.1a)\", before resolution"),
		field.Int("agenda_item_id").
			Optional().
			Nillable(),
		field.Text("summary").
			Optional().
			Nillable(),
		field.JSON("key_facts", []string{}).Optional(),
	}
}

func (ExtractedDocument) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("document", Document.Type).
			Ref("extracted_documents").
			Field("document_id").
			Unique().
			Required(),
		edge.From("agenda_item", AgendaItem.Type).
			Ref("extracted_documents").
			Field("agenda_item_id").
			Unique(),
		edge.To("sections", DocumentSection.Type),
		edge.To("images", DocumentImage.Type),
	}
}

func (ExtractedDocument) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("document_id", "page_start"),
		index.Fields("agenda_item_id"),
	}
}
