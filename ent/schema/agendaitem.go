package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AgendaItem is one line item of a meeting's agenda. item_order is a
// dotted string ("8.1", "8.1.a") sorted by natural order. Embeddings for
// semantic search live in a pgvector "embedding" column added by
// migration (see pkg/database/migrations); ent has no native vector type
// so it is read/written through pkg/embedder's raw-SQL path, not here.
type AgendaItem struct {
	ent.Schema
}

func (AgendaItem) Fields() []ent.Field {
	return []ent.Field{
		field.Int("meeting_id"),
		field.Int("matter_id").
			Optional().
			Nillable(),
		field.String("item_order").NotEmpty(),
		field.String("title").NotEmpty(),
		field.Text("description").
			Optional().
			Nillable(),
		field.String("category").
			Optional().
			Nillable(),
		field.Text("plain_english_summary").
			Optional().
			Nillable(),
		field.Text("debate_summary").
			Optional().
			Nillable(),
		field.JSON("related_address", []string{}).
			Optional(),
		field.Float("discussion_start_time").
			Optional().
			Nillable(),
		field.Float("discussion_end_time").
			Optional().
			Nillable(),
		field.Bool("is_controversial").Default(false),
		field.Float("financial_cost").
			Optional().
			Nillable(),
		field.String("funding_source").
			Optional().
			Nillable(),
		field.JSON("keywords", []string{}).
			Optional(),
		field.String("geo").
			Optional().
			Nillable().
			Comment("SRID=4326;POINT(lng lat) well-known text"),
		field.JSON("meta", map[string]interface{}{}).
			Optional(),
	}
}

func (AgendaItem) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("meeting", Meeting.Type).
			Ref("agenda_items").
			Field("meeting_id").
			Unique().
			Required(),
		edge.From("matter", Matter.Type).
			Ref("agenda_items").
			Field("matter_id").
			Unique(),
		edge.To("motions", Motion.Type),
		edge.To("key_statements", KeyStatement.Type),
		edge.To("sections", DocumentSection.Type),
		edge.To("extracted_documents", ExtractedDocument.Type),
	}
}

func (AgendaItem) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("meeting_id", "item_order"),
		index.Fields("matter_id"),
	}
}
