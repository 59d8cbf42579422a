package diarizer

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
)

// newTestDB spins up a disposable pgvector-enabled Postgres and lays down
// the minimal people/voice_fingerprints schema the fingerprint-matching raw
// SQL path queries, mirroring pkg/database's own testcontainers fixture.
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
		`CREATE TABLE people (id SERIAL PRIMARY KEY, name VARCHAR NOT NULL, voice_fingerprint_id INTEGER)`,
		`CREATE TABLE voice_fingerprints (
			id SERIAL PRIMARY KEY,
			person_id INTEGER NOT NULL REFERENCES people(id),
			source_meeting_id INTEGER,
			embedding vector(192)
		)`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	return db
}

func vec192(fill float32) []float32 {
	v := make([]float32, 192)
	for i := range v {
		v[i] = fill
	}
	return v
}

func TestLoadKnownFingerprints_NilDBReturnsEmpty(t *testing.T) {
	known, err := loadKnownFingerprints(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, known)
}

func TestFingerprintRoundTrip_SaveLoadMatch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO people (name) VALUES ('Jane Doe')`)
	require.NoError(t, err)
	var personID int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT id FROM people WHERE name = 'Jane Doe'`).Scan(&personID))

	centroid := vec192(0.5)
	fpID, err := SaveSpeakerFingerprint(ctx, db, personID, centroid, nil)
	require.NoError(t, err)
	require.NotZero(t, fpID)

	known, err := loadKnownFingerprints(ctx, db)
	require.NoError(t, err)
	require.Len(t, known, 1)
	require.Equal(t, personID, known[0].personID)
	require.Equal(t, "Jane Doe", known[0].personName)

	match := matchSpeakerToKnown(centroid, known, 0.75)
	require.NotNil(t, match)
	require.Equal(t, "Jane Doe", match.PersonName)
	require.InDelta(t, 1.0, match.Similarity, 1e-6)

	noMatch := matchSpeakerToKnown(vec192(-0.5), known, 0.75)
	require.Nil(t, noMatch)
}
