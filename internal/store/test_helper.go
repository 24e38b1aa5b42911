package store

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/catudon1276/Games-Plaza/internal/database"
)

// SetupTestDB creates a test database connection pool. Tests are skipped
// unless TEST_DATABASE_URL (or DATABASE_URL) is set.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL environment variable is required for store tests")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, databaseURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := cleanupTestData(ctx, pool); err != nil {
		t.Logf("warning: failed to cleanup test data: %v", err)
	}
	return pool
}

// cleanupTestData removes all test data, children before parents.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) error {
	tables := []string{
		"group_events",
		"match_players",
		"matches",
	}
	for _, table := range tables {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}
