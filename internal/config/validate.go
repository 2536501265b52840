package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	parsed, err := url.Parse(topic)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be a full http(s) topic URL, got %q", topic)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateBackend() error {
	base := strings.TrimSpace(c.Backend.BaseURL)
	if base == "" {
		return errors.New("backend.base_url must be set")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("backend.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("backend.base_url must use http or https, got %q", base)
	}
	if parsed.Host == "" {
		return fmt.Errorf("backend.base_url must include a host, got %q", base)
	}
	if c.Backend.TimeoutSeconds < 0 {
		return errors.New("backend.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case StoreBackendSQLite, StoreBackendFile:
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("store.path must be set for the %s backend", c.Store.Backend)
		}
	case StoreBackendRedis:
		if strings.TrimSpace(c.Store.RedisAddr) == "" {
			return errors.New("store.redis_addr must be set for the redis backend")
		}
		if c.Store.RedisDB < 0 {
			return errors.New("store.redis_db must be zero or greater")
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("store.backend: unsupported value %q (use sqlite, file, redis, or memory)", c.Store.Backend)
	}
	if strings.TrimSpace(c.Store.Key) == "" {
		return errors.New("store.key must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
