// Package testutil provides shared test helpers for database-backed tests.
package testutil

import (
	"context"
	"testing"

	"github.com/centsible/centsible/internal/service"
	"github.com/centsible/centsible/internal/storage"
)

// SetupTestDB creates a new in-memory SQLite database with migrations
// applied and cleanup registered.
func SetupTestDB(t *testing.T) service.Storage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}
