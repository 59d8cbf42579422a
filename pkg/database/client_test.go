package database

import (
	"context"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/viewroyal/civicpipe/ent"
)

// newTestClient creates a test database client against a real, disposable
// Postgres container (avoiding an import cycle with test/database).
func newTestClient(t *testing.T) *Client {
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

	drv, err := sql.Open(dialect.Postgres, connStr)
	require.NoError(t, err)

	db := drv.DB()
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	_, err = db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`)
	require.NoError(t, err)

	entClient := ent.NewClient(ent.Driver(drv))
	require.NoError(t, entClient.Schema.Create(ctx))

	require.NoError(t, CreateSearchIndexes(ctx, drv))

	client := NewClientFromEnt(entClient, db)
	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func TestDatabaseClient_ConnectionPool(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.DB().PingContext(ctx))

	health, err := Health(ctx, client.DB())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Greater(t, health.MaxOpenConns, 0)
}

func TestFullTextSearch(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	muni, err := client.Municipality.Create().
		SetSlug("viewroyal").
		SetName("View Royal").
		Save(ctx)
	require.NoError(t, err)

	meeting, err := client.Meeting.Create().
		SetMunicipalityID(muni.ID).
		SetMeetingDate(time.Now()).
		SetType("Council").
		Save(ctx)
	require.NoError(t, err)

	item1, err := client.AgendaItem.Create().
		SetMeetingID(meeting.ID).
		SetItemOrder("6.1").
		SetTitle("Rezoning application").
		SetDescription("Staff recommend approval of the rezoning at 258 Helmcken Road").
		Save(ctx)
	require.NoError(t, err)

	_, err = client.AgendaItem.Create().
		SetMeetingID(meeting.ID).
		SetItemOrder("6.2").
		SetTitle("Budget update").
		SetDescription("Quarterly financial report to Council").
		Save(ctx)
	require.NoError(t, err)

	rows, err := client.DB().QueryContext(ctx,
		`SELECT id FROM agenda_items
		WHERE to_tsvector('english', COALESCE(description, '')) @@ to_tsquery('english', $1)`,
		"rezoning",
	)
	require.NoError(t, err)
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	assert.Equal(t, []int{item1.ID}, ids)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Host:               "localhost",
				Port:               5432,
				User:               "test",
				Password:           "test",
				Database:           "test",
				SSLMode:            "disable",
				ConnectionStrategy: "direct",
				MaxOpenConns:       10,
				MaxIdleConns:       5,
			},
			wantErr: false,
		},
		{
			name: "missing password",
			cfg: Config{
				Host:               "localhost",
				Port:               5432,
				User:               "test",
				Password:           "",
				Database:           "test",
				ConnectionStrategy: "direct",
				MaxOpenConns:       10,
				MaxIdleConns:       5,
			},
			wantErr: true,
		},
		{
			name: "idle conns exceed max conns",
			cfg: Config{
				Host:               "localhost",
				Port:               5432,
				User:               "test",
				Password:           "test",
				Database:           "test",
				ConnectionStrategy: "direct",
				MaxOpenConns:       5,
				MaxIdleConns:       10,
			},
			wantErr: true,
		},
		{
			name: "zero max open conns",
			cfg: Config{
				Host:               "localhost",
				Port:               5432,
				User:               "test",
				Password:           "test",
				Database:           "test",
				ConnectionStrategy: "direct",
				MaxOpenConns:       0,
				MaxIdleConns:       0,
			},
			wantErr: true,
		},
		{
			name: "negative idle conns",
			cfg: Config{
				Host:               "localhost",
				Port:               5432,
				User:               "test",
				Password:           "test",
				Database:           "test",
				ConnectionStrategy: "direct",
				MaxOpenConns:       10,
				MaxIdleConns:       -1,
			},
			wantErr: true,
		},
		{
			name: "unknown connection strategy",
			cfg: Config{
				Host:               "localhost",
				Port:               5432,
				User:               "test",
				Password:           "test",
				Database:           "test",
				ConnectionStrategy: "bogus",
				MaxOpenConns:       10,
				MaxIdleConns:       5,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
