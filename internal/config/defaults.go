package config

const (
	defaultDataDir               = "~/.local/share/reverie"
	defaultBackendBaseURL        = "http://localhost:8000/api"
	defaultBackendTimeoutSeconds = 600
	defaultStoreBackend          = StoreBackendSQLite
	defaultStoreKey              = "reverie_scene_queue"
	defaultStoreFileName         = "scene_store.json"
	defaultStoreDBName           = "reverie.db"
	defaultRedisAddr             = "127.0.0.1:6379"
	defaultRedisPrefix           = "reverie:"
	defaultNtfyTimeoutSeconds    = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Supported durable store backends.
const (
	StoreBackendSQLite = "sqlite"
	StoreBackendFile   = "file"
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Backend: Backend{
			BaseURL:        defaultBackendBaseURL,
			TimeoutSeconds: defaultBackendTimeoutSeconds,
		},
		Store: Store{
			Backend:     defaultStoreBackend,
			Key:         defaultStoreKey,
			RedisAddr:   defaultRedisAddr,
			RedisPrefix: defaultRedisPrefix,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
