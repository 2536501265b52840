package testsupport

import (
	"context"
	"testing"

	"reverie/internal/config"
	"reverie/internal/kvstore"
)

// MustOpenStore opens the configured kvstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) kvstore.Store {
	t.Helper()

	store, err := kvstore.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("kvstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedValue writes a raw value into the configured store and closes it.
func SeedValue(t testing.TB, cfg *config.Config, key, value string) {
	t.Helper()

	store, err := kvstore.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("kvstore.Open: %v", err)
	}
	defer store.Close()
	if err := store.Set(context.Background(), key, value); err != nil {
		t.Fatalf("seed %s: %v", key, err)
	}
}
