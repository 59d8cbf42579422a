package embedder

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/viewroyal/civicpipe/pkg/config"
)

// testDims keeps the test schema's vector columns narrow — the bulk-write
// path doesn't care about width, only that it round-trips.
const testDims = 4

func defaultTestConfig() config.EmbedderConfig {
	return config.EmbedderConfig{
		Model:                   "test-model",
		Dimensions:              testDims,
		APIBatchSize:            2,
		DBFlushSize:             2,
		ParallelUpdateThreshold: 1000, // disable parallel path by default
		WorkerCount:             2,
	}
}

// newTestDB spins up a disposable pgvector-enabled Postgres and lays down
// a minimal slice of the embeddable schema, mirroring pkg/database's own
// testcontainers fixture.
func newTestDB(t *testing.T) *sql.DB {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE motions (id SERIAL PRIMARY KEY, text_content TEXT NOT NULL, embedding vector(4))`,
		`CREATE TABLE meetings (id SERIAL PRIMARY KEY, title TEXT, embedding vector(4))`,
		`CREATE TABLE agenda_items (
			id SERIAL PRIMARY KEY,
			meeting_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			plain_english_summary TEXT,
			debate_summary TEXT,
			discussion_start_time DOUBLE PRECISION,
			discussion_end_time DOUBLE PRECISION,
			embedding vector(4)
		)`,
		`CREATE TABLE transcript_segments (
			id SERIAL PRIMARY KEY,
			meeting_id INTEGER NOT NULL,
			speaker_name TEXT NOT NULL,
			text_content TEXT NOT NULL,
			start_time DOUBLE PRECISION NOT NULL
		)`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	return db
}

func TestEmbedTable_MotionsEndToEnd(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, text := range []string{"moved to approve the budget", "moved to table the item"} {
		_, err := db.ExecContext(ctx, `INSERT INTO motions (text_content) VALUES ($1)`, text)
		require.NoError(t, err)
	}

	provider := &fakeEmbeddingProvider{dims: testDims}
	e := New(provider, db, defaultTestConfig())

	stats, err := e.EmbedTable(ctx, "motions", false, -1)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Processed)
	require.Zero(t, stats.Skipped)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM motions WHERE embedding IS NOT NULL`).Scan(&count))
	require.Equal(t, 2, count)

	// A second run without --force finds nothing left to embed.
	stats, err = e.EmbedTable(ctx, "motions", false, -1)
	require.NoError(t, err)
	require.Zero(t, stats.Processed)

	// force re-embeds everything.
	stats, err = e.EmbedTable(ctx, "motions", true, -1)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Processed)
}

func TestEmbedTable_SkipsRowsBelowMinWords(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO motions (text_content) VALUES ($1)`, "ok")
	require.NoError(t, err)

	e := New(&fakeEmbeddingProvider{dims: testDims}, db, defaultTestConfig())
	stats, err := e.EmbedTable(ctx, "motions", false, 3)
	require.NoError(t, err)
	require.Zero(t, stats.Processed)
	require.Equal(t, 1, stats.Skipped)
}

func TestEmbedTable_ParallelPathMatchesSerial(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := db.ExecContext(ctx, `INSERT INTO motions (text_content) VALUES ($1)`, "moved to approve item")
		require.NoError(t, err)
	}

	cfg := defaultTestConfig()
	cfg.ParallelUpdateThreshold = 3
	cfg.DBFlushSize = 4
	e := New(&fakeEmbeddingProvider{dims: testDims}, db, cfg)

	stats, err := e.EmbedTable(ctx, "motions", false, -1)
	require.NoError(t, err)
	require.Equal(t, 10, stats.Processed)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM motions WHERE embedding IS NOT NULL`).Scan(&count))
	require.Equal(t, 10, count)
}

func TestFetchAgendaItems_JoinsSegmentsInDiscussionWindow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO meetings (id, title) VALUES (1, 'Council Meeting')`)
	require.NoError(t, err)

	var itemID int
	require.NoError(t, db.QueryRowContext(ctx, `
		INSERT INTO agenda_items (meeting_id, title, discussion_start_time, discussion_end_time)
		VALUES (1, 'Zoning Variance', 100, 200) RETURNING id`).Scan(&itemID))

	for _, s := range []struct {
		speaker string
		text    string
		start   float64
	}{
		{"Mayor Smith", "I move we approve this", 120},
		{"Councillor Lee", "Seconded", 150},
		{"Mayor Smith", "unrelated earlier remark", 50},
	} {
		_, err := db.ExecContext(ctx, `
			INSERT INTO transcript_segments (meeting_id, speaker_name, text_content, start_time)
			VALUES (1, $1, $2, $3)`, s.speaker, s.text, s.start)
		require.NoError(t, err)
	}

	results, err := fetchAgendaItems(ctx, db, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, itemID, results[0].id)
	require.Contains(t, results[0].text, "Zoning Variance")
	require.Contains(t, results[0].text, "Mayor Smith: I move we approve this")
	require.Contains(t, results[0].text, "Councillor Lee: Seconded")
	require.NotContains(t, results[0].text, "unrelated earlier remark")
}
