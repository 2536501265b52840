package testsupport

import (
	"path/filepath"
	"testing"

	"reverie/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The store defaults to SQLite under the temp data directory and the backend
// points at an unroutable address until WithBackendURL overrides it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Store.Path = filepath.Join(cfgVal.Paths.DataDir, "reverie.db")
	cfgVal.Backend.BaseURL = "http://127.0.0.1:1/api"
	cfgVal.Backend.TimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithBackendURL points the backend client at baseURL, typically an
// httptest.Server URL.
func WithBackendURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backend.BaseURL = baseURL
	}
}

// WithAPIToken sets the bearer token sent to the backend.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backend.APIToken = token
	}
}

// WithStoreBackend selects the scene store implementation. File and SQLite
// backends are placed under the temp data directory.
func WithStoreBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = backend
		switch backend {
		case config.StoreBackendFile:
			b.cfg.Store.Path = filepath.Join(b.cfg.Paths.DataDir, "scene_store.json")
		case config.StoreBackendSQLite:
			b.cfg.Store.Path = filepath.Join(b.cfg.Paths.DataDir, "reverie.db")
		default:
			b.cfg.Store.Path = ""
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
