package testdb

import (
	"context"
	"sync"
	"testing"

	"election-service/internal/db"
	"election-service/internal/schema"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
)

var (
	sharedContainer *PostgresContainer
	sharedOnce      sync.Once
)

// PostgresContainer wraps the postgres testcontainer
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DB        *bun.DB
	DSN       string
}

// SetupSharedPostgres starts one PostgreSQL container for the whole test
// binary and applies the election schema to it.
//
// Tests sharing the container must not run in parallel.
//
// Usage:
//
//	func TestVoteStore(t *testing.T) {
//	    pg := testdb.SetupSharedPostgres(t)
//
//	    t.Run("Case", func(t *testing.T) {
//	        testdb.Reset(t, pg.DB)
//	        // ... test
//	    })
//	}
func SetupSharedPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in -short mode")
	}

	sharedOnce.Do(func() {
		ctx := context.Background()
		pgContainer, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			),
		)
		require.NoError(t, err)

		connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)

		bunDB, err := db.NewWithDSN(connStr)
		require.NoError(t, err)

		require.NoError(t, db.RunMigrations(ctx, bunDB, schema.Models(), schema.Statements()...))

		sharedContainer = &PostgresContainer{
			Container: pgContainer,
			DB:        bunDB,
			DSN:       connStr,
		}
	})
	require.NotNil(t, sharedContainer, "shared postgres container failed to start")

	return sharedContainer
}

// Cleanup terminates the container. Only call it from TestMain or a single
// top-level test; other tests in the binary reuse the same container.
func (pc *PostgresContainer) Cleanup(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if pc.DB != nil {
		pc.DB.Close()
	}

	if pc.Container != nil {
		if err := pc.Container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
}

// Reset truncates every election table.
func Reset(t *testing.T, db *bun.DB) {
	t.Helper()
	CleanupTables(t, db, schema.Tables()...)
}

func CleanupTables(t *testing.T, db *bun.DB, tables ...string) {
	t.Helper()

	ctx := context.Background()

	for _, table := range tables {
		_, err := db.ExecContext(ctx, "TRUNCATE "+table+" RESTART IDENTITY CASCADE")
		require.NoError(t, err, "failed to truncate table: %s", table)
	}
}
