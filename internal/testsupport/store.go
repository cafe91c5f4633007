package testsupport

import (
	"context"
	"testing"

	"brickmatch/internal/catalog"
	"brickmatch/internal/config"
	"brickmatch/internal/resolution"
)

// MustOpenStore opens a resolution.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *resolution.Store {
	t.Helper()

	store, err := resolution.Open(cfg)
	if err != nil {
		t.Fatalf("resolution.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedCatalog imports catalog records and initializes their resolution
// records, returning the pending tasks in catalog order.
func SeedCatalog(t testing.TB, store *resolution.Store, records ...catalog.Record) []resolution.Task {
	t.Helper()

	ctx := context.Background()
	if _, _, err := store.UpsertCatalog(ctx, records); err != nil {
		t.Fatalf("store.UpsertCatalog: %v", err)
	}
	if _, _, err := store.InitializeFromCatalog(ctx); err != nil {
		t.Fatalf("store.InitializeFromCatalog: %v", err)
	}
	tasks, err := store.Pending(ctx, len(records), 0)
	if err != nil {
		t.Fatalf("store.Pending: %v", err)
	}
	return tasks
}
