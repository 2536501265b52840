package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBackend()
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeNotifications() {
	if value, ok := os.LookupEnv("REVERIE_NTFY_TOPIC"); ok && strings.TrimSpace(value) != "" {
		c.Notifications.NtfyTopic = value
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBackend() {
	if value, ok := os.LookupEnv("REVERIE_API_BASE"); ok && strings.TrimSpace(value) != "" {
		c.Backend.BaseURL = value
	}
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaultBackendBaseURL
	}
	if value, ok := os.LookupEnv("REVERIE_API_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Backend.APIToken = value
	}
	c.Backend.APIToken = strings.TrimSpace(c.Backend.APIToken)
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = defaultBackendTimeoutSeconds
	}
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	c.Store.Key = strings.TrimSpace(c.Store.Key)
	if c.Store.Key == "" {
		c.Store.Key = defaultStoreKey
	}

	c.Store.Path = strings.TrimSpace(c.Store.Path)
	if c.Store.Path == "" {
		switch c.Store.Backend {
		case StoreBackendFile:
			c.Store.Path = filepath.Join(c.Paths.DataDir, defaultStoreFileName)
		case StoreBackendSQLite:
			c.Store.Path = filepath.Join(c.Paths.DataDir, defaultStoreDBName)
		}
	}
	if c.Store.Path != "" {
		var err error
		if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
			return fmt.Errorf("store.path: %w", err)
		}
	}

	if value, ok := os.LookupEnv("REVERIE_REDIS_ADDR"); ok && strings.TrimSpace(value) != "" {
		c.Store.RedisAddr = value
	}
	c.Store.RedisAddr = strings.TrimSpace(c.Store.RedisAddr)
	if c.Store.RedisAddr == "" {
		c.Store.RedisAddr = defaultRedisAddr
	}
	if value, ok := os.LookupEnv("REVERIE_REDIS_PASSWORD"); ok && strings.TrimSpace(value) != "" {
		c.Store.RedisPassword = value
	}
	c.Store.RedisPassword = strings.TrimSpace(c.Store.RedisPassword)
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
