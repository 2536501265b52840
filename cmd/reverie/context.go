package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reverie/internal/config"
	"reverie/internal/kvstore"
	"reverie/internal/logging"
	"reverie/internal/notifications"
	"reverie/internal/scenes"
	"reverie/internal/services"
	"reverie/internal/services/backend"
	"reverie/internal/transcript"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	sessionID string
	store     kvstore.Store
	log       *slog.Logger
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
		sessionID:   uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

// operationContext tags ctx with the session and operation name so every log
// line from one invocation can be correlated.
func (c *commandContext) operationContext(cmd *cobra.Command, operation string) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = services.WithSessionID(ctx, c.sessionID)
	return services.WithOperation(ctx, operation)
}

func (c *commandContext) logger() (*slog.Logger, error) {
	if c.log != nil {
		return c.log, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, c.verbose())
	if err != nil {
		return nil, err
	}
	c.log = logger
	return logger, nil
}

func (c *commandContext) openStore(ctx context.Context) (kvstore.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := kvstore.Open(ctx, cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "cli", "open store", cfg.Store.Backend, err)
	}
	c.store = store
	return store, nil
}

// sceneSession bundles a hydrated manager with the terminal it renders to.
type sceneSession struct {
	manager  *scenes.Manager
	terminal *transcript.Terminal
}

func (c *commandContext) newSceneSession(ctx context.Context, out io.Writer, withCompiler bool) (*sceneSession, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger()
	if err != nil {
		return nil, err
	}
	store, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}

	terminal := transcript.NewTerminal(out)
	deps := scenes.Dependencies{
		Store:      store,
		Renderer:   terminal,
		Transcript: terminal,
		Logger:     logger,
		Key:        cfg.Store.Key,
	}
	if withCompiler {
		client, err := backend.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		deps.Compiler = client
	}

	manager, err := scenes.New(deps)
	if err != nil {
		return nil, err
	}
	manager.Initialize(ctx)
	return &sceneSession{manager: manager, terminal: terminal}, nil
}

// notify sends a notification and logs, rather than returns, any failure.
func (c *commandContext) notify(ctx context.Context, send func(notifications.Service) error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return
	}
	if err := send(notifications.NewService(cfg)); err != nil {
		if logger, logErr := c.logger(); logErr == nil {
			logging.WithContext(ctx, logger).Warn("notification failed", logging.Error(err))
		}
	}
}

func (c *commandContext) close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	if err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
