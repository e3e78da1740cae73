package cli

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"content-curator/pkg/catalog"
	"content-curator/pkg/config"
	"content-curator/pkg/curator"
	"content-curator/pkg/logging"
)

type globalFlags struct {
	configPath string
	dbPath     string
	json       bool
	logLevel   string
}

// commandContext lazily loads configuration and opens shared resources for a
// single command invocation.
type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	logger *zap.Logger
	store  catalog.Store
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.flags.configPath))
		if err != nil {
			c.configErr = err
			return
		}
		if db := strings.TrimSpace(c.flags.dbPath); db != "" {
			expanded, err := config.ExpandPath(db)
			if err != nil {
				c.configErr = err
				return
			}
			cfg.Catalog.Backend = config.BackendSQLite
			cfg.Catalog.SQLitePath = expanded
		}
		if level := strings.TrimSpace(c.flags.logLevel); level != "" {
			cfg.Logging.Level = level
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) loggerFor(cfg *config.Config) (*zap.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, err
	}
	c.logger = logger
	return logger, nil
}

// openStore opens the configured catalog once per invocation.
func (c *commandContext) openStore(ctx context.Context) (catalog.Store, *config.Config, *zap.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := c.loggerFor(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if c.store == nil {
		store, err := catalog.Open(ctx, cfg, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		c.store = store
	}
	return c.store, cfg, logger, nil
}

// curatorFor wires a Curator against the configured catalog.
func (c *commandContext) curatorFor(ctx context.Context) (*curator.Curator, *config.Config, *zap.Logger, error) {
	store, cfg, logger, err := c.openStore(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return curator.FromConfig(cfg, store, logger), cfg, logger, nil
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}
