package bylaw

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/viewroyal/civicpipe/ent"
)

// upsertBylaw writes title/full_text/blob_key/content_hash through ent
// (existing is non-nil when this is an update) then writes the document
// embedding through the raw pgvector path, returning the row's id.
func (ig *Ingester) upsertBylaw(ctx context.Context, existing *ent.Bylaw, municipalityID int, meta Metadata, fullText, blobKey, contentHash string, embedding []float32) (int, error) {
	var bylawID int
	if existing == nil {
		created, err := ig.db.Bylaw.Create().
			SetMunicipalityID(municipalityID).
			SetNumber(meta.Number).
			SetTitle(meta.Title).
			SetFullText(fullText).
			SetBlobKey(blobKey).
			SetContentHash(contentHash).
			Save(ctx)
		if err != nil {
			return 0, fmt.Errorf("create bylaw: %w", err)
		}
		bylawID = created.ID
	} else {
		if _, err := ig.db.Bylaw.UpdateOne(existing).
			SetTitle(meta.Title).
			SetFullText(fullText).
			SetBlobKey(blobKey).
			SetContentHash(contentHash).
			Save(ctx); err != nil {
			return 0, fmt.Errorf("update bylaw: %w", err)
		}
		bylawID = existing.ID
	}

	if _, err := ig.rawDB.ExecContext(ctx,
		`UPDATE bylaws SET embedding = $1 WHERE id = $2`,
		pgvector.NewVector(embedding), bylawID,
	); err != nil {
		return 0, fmt.Errorf("update bylaw embedding: %w", err)
	}
	return bylawID, nil
}

// writeChunks embeds every chunk's text in one batch call, then inserts
// each bylaw_chunks row (ent for the relational columns, raw SQL for the
// vector) in chunk order.
func (ig *Ingester) writeChunks(ctx context.Context, bylawID int, chunks []textChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.text
	}
	embeddings, err := ig.provider.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding provider returned %d vectors for %d chunks", len(embeddings), len(chunks))
	}

	for i, c := range chunks {
		created, err := ig.db.BylawChunk.Create().
			SetBylawID(bylawID).
			SetChunkOrder(i).
			SetChunkText(c.text).
			SetCharStart(c.charStart).
			SetCharEnd(c.charEnd).
			Save(ctx)
		if err != nil {
			return fmt.Errorf("create bylaw_chunk %d: %w", i, err)
		}

		if _, err := ig.rawDB.ExecContext(ctx,
			`UPDATE bylaw_chunks SET embedding = $1 WHERE id = $2`,
			pgvector.NewVector(embeddings[i]), created.ID,
		); err != nil {
			return fmt.Errorf("update bylaw_chunk %d embedding: %w", i, err)
		}
	}
	return nil
}
