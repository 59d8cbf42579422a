package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql"
)

// CreateSearchIndexes creates full-text GIN indexes and the IVFFlat vector
// indexes that back the embedder's similarity search. Neither has an ent
// schema builder equivalent, so they're applied here after the ordinary
// migrations — the same split tarsy uses for its alert_sessions GIN
// indexes.
func CreateSearchIndexes(ctx context.Context, driver *sql.Driver) error {
	db := driver.DB()

	_, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_agenda_items_description_gin
		ON agenda_items USING gin(to_tsvector('english', COALESCE(description, '')))`)
	if err != nil {
		return fmt.Errorf("failed to create agenda_items description GIN index: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_key_statements_text_gin
		ON key_statements USING gin(to_tsvector('english', statement_text))`)
	if err != nil {
		return fmt.Errorf("failed to create key_statements GIN index: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_agenda_items_embedding_ivfflat
		ON agenda_items USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`)
	if err != nil {
		return fmt.Errorf("failed to create agenda_items embedding index: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_document_sections_embedding_ivfflat
		ON document_sections USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`)
	if err != nil {
		return fmt.Errorf("failed to create document_sections embedding index: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_bylaw_chunks_embedding_ivfflat
		ON bylaw_chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`)
	if err != nil {
		return fmt.Errorf("failed to create bylaw_chunks embedding index: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_voice_fingerprints_embedding_ivfflat
		ON voice_fingerprints USING ivfflat (embedding vector_cosine_ops) WITH (lists = 50)`)
	if err != nil {
		return fmt.Errorf("failed to create voice_fingerprints embedding index: %w", err)
	}

	return nil
}
