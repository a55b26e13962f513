package testsupport

import (
	"context"
	"testing"

	"vidscript/internal/catalog"
	"vidscript/internal/config"
)

// MustOpenCatalog opens a catalog.Store for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// BeginRun starts a run for tests using the provided store.
func BeginRun(t testing.TB, store *catalog.Store, mediaPath string) string {
	t.Helper()

	id, err := store.Begin(context.Background(), mediaPath, mediaPath+".jsonl", "large-v2")
	if err != nil {
		t.Fatalf("store.Begin: %v", err)
	}
	return id
}
