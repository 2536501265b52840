package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"reverie/internal/config"
	"reverie/internal/kvstore"
	"reverie/internal/services/backend"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStore opens the configured scene store and reads the queue key.
func CheckStore(ctx context.Context, cfg *config.Config) Result {
	const name = "Scene store"

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := kvstore.Open(checkCtx, cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Store.Backend, err)}
	}
	defer store.Close()

	if _, _, err := store.Get(checkCtx, cfg.Store.Key); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: read %s: %v)", cfg.Store.Backend, cfg.Store.Key, err)}
	}
	return Result{Name: name, Passed: true, Detail: describeStore(cfg)}
}

// CheckBackend verifies that the backend API answers. It uses a 5-second
// timeout regardless of the configured compile timeout.
func CheckBackend(ctx context.Context, cfg *config.Config) Result {
	const name = "Backend API"

	client, err := backend.NewClient(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeBackendError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", client.BaseURL())}
}

func describeStore(cfg *config.Config) string {
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		return fmt.Sprintf("redis %s (key %s%s)", cfg.Store.RedisAddr, cfg.Store.RedisPrefix, cfg.Store.Key)
	case config.StoreBackendMemory:
		return "memory (not persisted)"
	default:
		return fmt.Sprintf("%s %s", cfg.Store.Backend, cfg.Store.Path)
	}
}

// summarizeBackendError produces a human-readable summary for health check failures.
func summarizeBackendError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (backend unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (backend unreachable)"
	}
	if apiErr, ok := backend.IsAPIError(err); ok {
		return fmt.Sprintf("health check failed (%d)", apiErr.StatusCode)
	}
	return err.Error()
}
