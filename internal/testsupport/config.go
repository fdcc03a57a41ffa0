package testsupport

import (
	"path/filepath"
	"testing"

	"slate/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheDB = filepath.Join(base, "path_cache.db")
	cfg.Paths.TemplatesFile = filepath.Join(base, "templates.yaml")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Roots = map[string]config.Root{
		"primary": {
			Linux:   "/mnt/projects",
			Mac:     "/Volumes/projects",
			Windows: `P:\projects`,
		},
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithNamePolicy overrides the studio name policy.
func WithNamePolicy(policy string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Studio.NamePolicy = policy
	}
}
