package embedder

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// bulkUpdateEmbeddings writes a buffered batch of (id, embedding) pairs to
// table in one shot: COPY the rows into a session-local temp table, then
// a single UPDATE ... FROM joins them back by id. Matches the original's
// psycopg2 copy_from + UPDATE FROM pattern; the temp table's embedding
// column is declared text (not vector) so the COPY protocol doesn't need
// pgx's vector type registered, with the cast happening in the UPDATE.
//
// When the buffer is large enough (>= parallelThreshold), the batch is
// split across workerCount goroutines, each against its own connection —
// session-scoped temp tables make that safe without any cross-worker
// coordination beyond the WaitGroup.
func bulkUpdateEmbeddings(ctx context.Context, db *sql.DB, table string, updates []vectorUpdate, workerCount, parallelThreshold int) error {
	if len(updates) == 0 {
		return nil
	}
	if workerCount < 1 {
		workerCount = 1
	}
	if len(updates) < parallelThreshold || workerCount == 1 {
		return copyUpdateChunk(ctx, db, table, updates)
	}

	chunkSize := (len(updates) + workerCount - 1) / workerCount
	var wg sync.WaitGroup
	errs := make([]error, workerCount)
	for w := 0; w < workerCount; w++ {
		start := w * chunkSize
		if start >= len(updates) {
			break
		}
		end := min(start+chunkSize, len(updates))

		wg.Add(1)
		go func(w int, chunk []vectorUpdate) {
			defer wg.Done()
			errs[w] = copyUpdateChunk(ctx, db, table, chunk)
		}(w, updates[start:end])
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// copyUpdateChunk runs the temp-table COPY + UPDATE FROM for one chunk on
// a single connection.
func copyUpdateChunk(ctx context.Context, db *sql.DB, table string, updates []vectorUpdate) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("embedder: acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `
		CREATE TEMP TABLE IF NOT EXISTS _embed_tmp (
			id INTEGER PRIMARY KEY,
			embedding TEXT
		)
	`); err != nil {
		return fmt.Errorf("embedder: create temp table: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "TRUNCATE _embed_tmp"); err != nil {
		return fmt.Errorf("embedder: truncate temp table: %w", err)
	}

	if err := conn.Raw(func(driverConn any) error {
		pgxConn := driverConn.(*stdlib.Conn).Conn()
		_, err := pgxConn.CopyFrom(
			ctx,
			pgx.Identifier{"_embed_tmp"},
			[]string{"id", "embedding"},
			pgx.CopyFromSlice(len(updates), func(i int) ([]any, error) {
				return []any{updates[i].id, vectorLiteral(updates[i].embedding)}, nil
			}),
		)
		return err
	}); err != nil {
		return fmt.Errorf("embedder: copy into temp table: %w", err)
	}

	if _, err := conn.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s t
		SET embedding = e.embedding::vector
		FROM _embed_tmp e
		WHERE t.id = e.id
	`, table)); err != nil {
		return fmt.Errorf("embedder: bulk update %s: %w", table, err)
	}

	return nil
}

// vectorLiteral renders a float32 vector as pgvector's text input format,
// e.g. "[0.1,0.2,0.3]".
func vectorLiteral(v []float32) string {
	b := make([]byte, 0, len(v)*8+2)
	b = append(b, '[')
	for i, f := range v {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendFloat(b, float64(f), 'f', -1, 32)
	}
	b = append(b, ']')
	return string(b)
}
