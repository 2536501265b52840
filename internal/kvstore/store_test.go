package kvstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"reverie/internal/config"
	"reverie/internal/kvstore"
)

func exerciseStore(t *testing.T, store kvstore.Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "k", `[{"url":"a"}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "other", "x"); err != nil {
		t.Fatalf("Set other failed: %v", err)
	}
	value, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if value != `[{"url":"a"}]` {
		t.Fatalf("unexpected value %q", value)
	}
	if err := store.Set(ctx, "k", "[]"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	value, _, _ = store.Get(ctx, "k")
	if value != "[]" {
		t.Fatalf("expected overwritten value, got %q", value)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reverie.db")
	store, err := kvstore.OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	exerciseStore(t, store)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reverie.db")
	store, err := kvstore.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := store.Set(ctx, "queue", "persisted"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, _, err := store.Get(ctx, "queue"); !errors.Is(err, kvstore.ErrClosed) {
		t.Fatalf("expected ErrClosed after close, got %v", err)
	}

	reopened, err := kvstore.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	value, ok, err := reopened.Get(ctx, "queue")
	if err != nil || !ok || value != "persisted" {
		t.Fatalf("expected persisted value, got %q ok=%v err=%v", value, ok, err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := kvstore.NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	exerciseStore(t, store)
}

func TestFileStoreCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	store := kvstore.NewFileStore(path)
	if _, _, err := store.Get(ctx, "k"); err == nil {
		t.Fatal("expected decode error for corrupt file")
	}
	if err := store.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("expected Set to recover from corrupt file, got %v", err)
	}
	value, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || value != "v" {
		t.Fatalf("unexpected value after recovery: %q ok=%v err=%v", value, ok, err)
	}
}

func TestMemoryStoreInjectedFailures(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	exerciseStore(t, store)
	if store.Writes() != 3 {
		t.Fatalf("expected 3 writes, got %d", store.Writes())
	}

	boom := errors.New("boom")
	store.SetErr = boom
	if err := store.Set(ctx, "k", "v"); !errors.Is(err, boom) {
		t.Fatalf("expected injected set error, got %v", err)
	}
	store.GetErr = boom
	if _, _, err := store.Get(ctx, "k"); !errors.Is(err, boom) {
		t.Fatalf("expected injected get error, got %v", err)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()

	cases := []struct {
		backend string
		path    string
		want    string
	}{
		{config.StoreBackendSQLite, filepath.Join(base, "a.db"), "*kvstore.SQLiteStore"},
		{config.StoreBackendFile, filepath.Join(base, "a.json"), "*kvstore.FileStore"},
		{config.StoreBackendMemory, "", "*kvstore.MemoryStore"},
	}
	for _, tc := range cases {
		cfg := config.Default()
		cfg.Paths.DataDir = base
		cfg.Paths.LogDir = filepath.Join(base, "logs")
		cfg.Store.Backend = tc.backend
		cfg.Store.Path = tc.path
		store, err := kvstore.Open(ctx, &cfg)
		if err != nil {
			t.Fatalf("%s: Open: %v", tc.backend, err)
		}
		got := typeName(store)
		store.Close()
		if got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.backend, tc.want, got)
		}
	}

	cfg := config.Default()
	cfg.Store.Backend = "etcd"
	if _, err := kvstore.Open(ctx, &cfg); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func typeName(store kvstore.Store) string {
	switch store.(type) {
	case *kvstore.SQLiteStore:
		return "*kvstore.SQLiteStore"
	case *kvstore.FileStore:
		return "*kvstore.FileStore"
	case *kvstore.MemoryStore:
		return "*kvstore.MemoryStore"
	default:
		return "unknown"
	}
}
