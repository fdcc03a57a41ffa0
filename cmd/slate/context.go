package main

import (
	"log/slog"
	"strings"
	"sync"

	"slate/internal/config"
	"slate/internal/logging"
	"slate/internal/pathcache"
	"slate/internal/templates"
)

// commandContext lazily wires the shared dependencies of the command
// tree: configuration, the template set, and the logger.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	setOnce sync.Once
	set     *templates.Set
	setErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := c.loadConfig()
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loadConfig performs a fresh load honoring the --config flag. Most
// commands want the memoized ensureConfig; the config subcommands report
// the resolved path and existence, which that accessor discards.
func (c *commandContext) loadConfig() (*config.Config, string, bool, error) {
	var path string
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	return config.Load(path)
}

func (c *commandContext) ensureTemplates() (*templates.Set, error) {
	c.setOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.setErr = err
			return
		}
		c.set, c.setErr = templates.LoadDefinitions(cfg.Paths.TemplatesFile, cfg.RootPaths())
	})
	return c.set, c.setErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// withCache opens the path cache for the duration of fn.
func (c *commandContext) withCache(fn func(*pathcache.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := pathcache.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
