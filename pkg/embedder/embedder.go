// Package embedder generates pgvector embeddings for the searchable text
// columns across the schema (§4.11): agenda items, motions, matters,
// meetings, bylaws, bylaw chunks, extracted documents, key statements, and
// document sections. It drives the bulk loop the original's embed_local.py
// ran as a standalone script — batched calls to an embedding provider,
// buffered into temp-table-backed bulk updates — as a package the
// orchestrator's embed step (and a standalone CLI subcommand) can call
// directly against the shared *sql.DB rather than shelling out.
package embedder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/config"
	"github.com/viewroyal/civicpipe/pkg/obs"
)

// maxEmbedChars truncates a row's text before it's sent to the embedding
// provider — text-embedding-3-small handles roughly 8k tokens; truncating
// input chars this way keeps requests comfortably under that.
const maxEmbedChars = 8000

// TableSpec describes one embeddable table: which columns feed its text,
// how to build the embedding input from a fetched row, and the minimum
// word count below which a row is skipped as too sparse to embed usefully.
type TableSpec struct {
	// SelectColumns lists the columns (after id) fetchRows selects, in the
	// order TextFn expects them.
	SelectColumns []string
	// TextFn builds the embedding input from one fetched row's non-id
	// column values (nil where the column was NULL).
	TextFn func(cols []*string) string
	// MinWords skips rows whose built text has fewer words than this —
	// the original's per-table DEFAULT_MIN_WORDS.
	MinWords int
	// CustomFetch, when set, replaces the standard select+TextFn fetch
	// (only agenda_items needs this, to join in transcript discussion).
	CustomFetch func(ctx context.Context, db *sql.DB, force bool) ([]idText, error)
}

// idText is one row's primary key paired with its already-built embedding
// input text.
type idText struct {
	id   int
	text string
}

// Registry is the fixed set of tables the Embedder knows how to embed,
// keyed by table name. Mirrors the original's TABLE_CONFIG dict; documents
// itself has no analog here (it's just the blob pointer) — its
// embeddable text lives on extracted_documents (title + summary).
var Registry = map[string]TableSpec{
	"agenda_items": {
		SelectColumns: []string{"title", "plain_english_summary"},
		MinWords:      0,
		CustomFetch:   fetchAgendaItems,
	},
	"motions": {
		SelectColumns: []string{"text_content"},
		TextFn:        func(c []*string) string { return strings.TrimSpace(deref(c[0])) },
		MinWords:      0,
	},
	"matters": {
		// matters carries no standalone summary column (unlike the
		// original's plain_english_summary) — title is the only
		// embeddable text available at this level.
		SelectColumns: []string{"title"},
		TextFn:        func(c []*string) string { return strings.TrimSpace(deref(c[0])) },
		MinWords:      0,
	},
	"meetings": {
		SelectColumns: []string{"summary"},
		TextFn:        func(c []*string) string { return strings.TrimSpace(deref(c[0])) },
		MinWords:      0,
	},
	"bylaws": {
		// bylaws has no plain_english_summary column either; fall back to
		// title + full_text (truncation below keeps this bounded).
		SelectColumns: []string{"title", "full_text"},
		TextFn:        joinNonEmpty,
		MinWords:      0,
	},
	"bylaw_chunks": {
		SelectColumns: []string{"chunk_text"},
		TextFn:        func(c []*string) string { return strings.TrimSpace(deref(c[0])) },
		MinWords:      0,
	},
	"extracted_documents": {
		SelectColumns: []string{"title", "summary"},
		TextFn:        joinNonEmpty,
		MinWords:      10,
	},
	"key_statements": {
		SelectColumns: []string{"statement_text", "context"},
		TextFn:        joinNonEmpty,
		MinWords:      5,
	},
	"document_sections": {
		SelectColumns: []string{"section_title", "section_text"},
		TextFn:        joinNonEmpty,
		MinWords:      5,
	},
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// joinNonEmpty joins every non-nil column with a newline, matching the
// original's "a or empty, newline, b or empty, then strip" shape.
func joinNonEmpty(cols []*string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = deref(c)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// Stats summarizes one EmbedTable run.
type Stats struct {
	Processed int
	Skipped   int
	Elapsed   time.Duration
}

// Embedder drives the batched embed-and-write loop against the Registry.
type Embedder struct {
	provider capability.EmbeddingProvider
	db       *sql.DB
	cfg      config.EmbedderConfig
	logger   *slog.Logger
}

// New builds an Embedder. db must be the raw *sql.DB backing the pgx
// driver (database.Client.DB()) — ent has no vector column type.
func New(provider capability.EmbeddingProvider, db *sql.DB, cfg config.EmbedderConfig) *Embedder {
	return &Embedder{
		provider: provider,
		db:       db,
		cfg:      cfg,
		logger:   slog.Default().With("component", "embedder"),
	}
}

// EmbedTable generates and stores embeddings for every row of table
// needing one. force re-embeds rows that already have a vector.
// minWords overrides the table's default skip threshold when >= 0.
func (e *Embedder) EmbedTable(ctx context.Context, table string, force bool, minWords int) (Stats, error) {
	spec, ok := Registry[table]
	if !ok {
		return Stats{}, fmt.Errorf("embedder: unknown table %q", table)
	}
	if minWords < 0 {
		minWords = spec.MinWords
	}

	total, err := countNeedingEmbeddings(ctx, e.db, table, force)
	if err != nil {
		return Stats{}, fmt.Errorf("embedder: count rows for %s: %w", table, err)
	}
	if total == 0 {
		e.logger.Info("no rows need embeddings", "table", table)
		return Stats{}, nil
	}
	e.logger.Info("embedding table", "table", table, "rows", total, "model", e.cfg.Model, "min_words", minWords)

	rows, err := e.fetchRows(ctx, table, spec, force)
	if err != nil {
		return Stats{}, fmt.Errorf("embedder: fetch rows for %s: %w", table, err)
	}

	progress := obs.NewProgress(fmt.Sprintf("embedding %s", table), len(rows))
	start := time.Now()

	var stats Stats
	var batchIDs []int
	var batchTexts []string
	var dbBuffer []vectorUpdate

	flushAPI := func() error {
		if len(batchTexts) == 0 {
			return nil
		}
		vecs, err := e.provider.Embed(ctx, batchTexts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}
		if len(vecs) != len(batchIDs) {
			return fmt.Errorf("embedding provider returned %d vectors for %d inputs", len(vecs), len(batchIDs))
		}
		for i, id := range batchIDs {
			dbBuffer = append(dbBuffer, vectorUpdate{id: id, embedding: vecs[i]})
		}
		stats.Processed += len(batchTexts)
		progress.Advance(len(batchTexts))
		batchIDs = batchIDs[:0]
		batchTexts = batchTexts[:0]
		return nil
	}

	flushDB := func() error {
		if len(dbBuffer) == 0 {
			return nil
		}
		if err := bulkUpdateEmbeddings(ctx, e.db, table, dbBuffer, e.cfg.WorkerCount, e.cfg.ParallelUpdateThreshold); err != nil {
			return err
		}
		dbBuffer = dbBuffer[:0]
		return nil
	}

	for _, row := range rows {
		if row.text == "" || (minWords > 0 && len(strings.Fields(row.text)) < minWords) {
			stats.Skipped++
			continue
		}

		text := row.text
		if len(text) > maxEmbedChars {
			text = text[:maxEmbedChars]
		}
		batchIDs = append(batchIDs, row.id)
		batchTexts = append(batchTexts, text)

		if len(batchTexts) >= e.cfg.APIBatchSize {
			if err := flushAPI(); err != nil {
				return stats, err
			}
			if len(dbBuffer) >= e.cfg.DBFlushSize {
				if err := flushDB(); err != nil {
					return stats, err
				}
			}
		}
	}
	if err := flushAPI(); err != nil {
		return stats, err
	}
	if err := flushDB(); err != nil {
		return stats, err
	}

	stats.Elapsed = time.Since(start)
	e.logger.Info("table embedded", obs.Success(), "table", table, "processed", stats.Processed, "skipped", stats.Skipped, "elapsed", stats.Elapsed.Round(time.Second))
	return stats, nil
}

// vectorUpdate is one (id, embedding) pair buffered for a bulk write.
type vectorUpdate struct {
	id        int
	embedding []float32
}

func countNeedingEmbeddings(ctx context.Context, db *sql.DB, table string, force bool) (int, error) {
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if !force {
		q += " WHERE embedding IS NULL"
	}
	var n int
	if err := db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
