package kvstore

import (
	"context"
	"errors"
	"fmt"

	"reverie/internal/config"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("kvstore: store closed")

// Store is a durable string-keyed value store.
type Store interface {
	// Get returns the value for key. ok is false when the key has never been set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open constructs the store selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, errors.New("kvstore: config is nil")
	}
	switch cfg.Store.Backend {
	case config.StoreBackendSQLite, "":
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		return OpenSQLite(ctx, cfg.Store.Path)
	case config.StoreBackendFile:
		return NewFileStore(cfg.Store.Path), nil
	case config.StoreBackendRedis:
		return OpenRedis(ctx, RedisOptions{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
			Prefix:   cfg.Store.RedisPrefix,
		})
	case config.StoreBackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("kvstore: unsupported backend %q", cfg.Store.Backend)
	}
}
