// Package bylaw canonicalizes bylaw PDFs into the bylaws/bylaw_chunks
// tables (§3's data model names Matter.bylaw_id but the distilled spec
// never populates it) and back-links matters to the bylaw they concern.
// Grounded on original_source/src/pipeline/ingest_bylaws.py (PDF ->
// metadata + full text + overlapping chunks, each embedded) and
// src/maintenance/db/link_matters_to_bylaws.py (bylaw-number regex
// matching against a matter's identifier, title, or agenda items).
package bylaw

import (
	"context"
	"crypto/sha256"
	stdsql "database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/viewroyal/civicpipe/ent"
	"github.com/viewroyal/civicpipe/ent/bylaw"
	"github.com/viewroyal/civicpipe/ent/bylawchunk"
	"github.com/viewroyal/civicpipe/pkg/blobstore"
	"github.com/viewroyal/civicpipe/pkg/capability"
)

// docContextChars is how much of a bylaw's full text is folded into its
// own document-level embedding, alongside the title — enough to capture
// the purpose/preamble without embedding the whole instrument twice
// (chunks already cover the rest). Matches the original's doc_context
// slice.
const docContextChars = 1000

// Ingester ingests a municipality's Bylaws/ folder into bylaws +
// bylaw_chunks rows.
type Ingester struct {
	db       *ent.Client
	rawDB    *stdsql.DB // raw pgvector write path; see pkg/database.Client.DB
	blobs    blobstore.Store
	provider capability.EmbeddingProvider
	logger   *slog.Logger
}

// New builds an Ingester. rawDB must be the same connection pool backing
// db (database.Client.DB()) — ent has no vector column type, so bylaw/
// bylaw_chunk embeddings are written through the raw *sql.DB.
func New(db *ent.Client, rawDB *stdsql.DB, blobs blobstore.Store, provider capability.EmbeddingProvider) *Ingester {
	return &Ingester{
		db:       db,
		rawDB:    rawDB,
		blobs:    blobs,
		provider: provider,
		logger:   slog.Default().With("component", "bylaw"),
	}
}

// Stats summarizes one IngestDirectory run.
type Stats struct {
	Ingested int
	Skipped  int
	Failed   int
}

// IngestDirectory walks municipalityArchiveRoot/Bylaws for PDFs, upserting
// one bylaws row (plus its overlapping chunk rows) per file keyed by the
// bylaw number extracted from its filename. force re-ingests bylaws
// already on record even when their content hash hasn't changed.
func (ig *Ingester) IngestDirectory(ctx context.Context, municipalityID int, archiveRoot string, force bool) (Stats, error) {
	dir := filepath.Join(archiveRoot, "Bylaws")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		ig.logger.Info("no Bylaws directory, skipping", "dir", dir)
		return Stats{}, nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("bylaw: read %s: %w", dir, err)
	}

	var stats Stats
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		ingested, err := ig.ingestOne(ctx, municipalityID, filepath.Join(dir, entry.Name()), entry.Name(), force)
		if err != nil {
			stats.Failed++
			ig.logger.Error("bylaw ingestion failed", "file", entry.Name(), "error", err)
			continue
		}
		if !ingested {
			stats.Skipped++
			continue
		}
		stats.Ingested++
	}
	return stats, nil
}

// ingestOne processes a single PDF, returning false (no error) when the
// file is skipped as already-ingested-and-unchanged or has no bylaw
// number to key off of.
func (ig *Ingester) ingestOne(ctx context.Context, municipalityID int, path, filename string, force bool) (bool, error) {
	meta, ok := extractMetadata(filename)
	if !ok {
		ig.logger.Warn("no bylaw number found in filename, skipping", "file", filename)
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	contentHash := hex.EncodeToString(sum[:])

	existing, err := ig.db.Bylaw.Query().
		Where(bylaw.MunicipalityID(municipalityID), bylaw.Number(meta.Number)).
		Only(ctx)
	if err != nil && !ent.IsNotFound(err) {
		return false, fmt.Errorf("query existing bylaw: %w", err)
	}
	if existing != nil && !force && existing.ContentHash != nil && *existing.ContentHash == contentHash {
		ig.logger.Info("already ingested, unchanged", "file", filename)
		return false, nil
	}

	fullText, err := extractFullText(data)
	if err != nil {
		return false, fmt.Errorf("extract text from %s: %w", filename, err)
	}
	if strings.TrimSpace(fullText) == "" {
		return false, fmt.Errorf("no text extracted from %s", filename)
	}

	blobKey, err := ig.blobs.Put(ctx, data)
	if err != nil {
		return false, fmt.Errorf("store blob for %s: %w", filename, err)
	}

	docContext := meta.Title + "\n" + truncate(fullText, docContextChars)
	docEmbeddings, err := ig.provider.Embed(ctx, []string{docContext})
	if err != nil {
		return false, fmt.Errorf("embed bylaw document: %w", err)
	}

	bylawID, err := ig.upsertBylaw(ctx, existing, municipalityID, meta, fullText, blobKey, contentHash, docEmbeddings[0])
	if err != nil {
		return false, err
	}

	chunks := chunkText(fullText, defaultChunkSize, defaultChunkOverlap)

	if _, err := ig.db.BylawChunk.Delete().Where(bylawchunk.BylawID(bylawID)).Exec(ctx); err != nil {
		return false, fmt.Errorf("clear existing chunks: %w", err)
	}
	if err := ig.writeChunks(ctx, bylawID, chunks); err != nil {
		return false, fmt.Errorf("write chunks: %w", err)
	}

	ig.logger.Info("bylaw ingested", "file", filename, "bylaw_number", meta.Number, "chunks", len(chunks))
	return true, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
