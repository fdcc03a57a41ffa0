package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations used by the toolkit.
type Paths struct {
	CacheDB       string `toml:"cache_db"`
	TemplatesFile string `toml:"templates_file"`
	LogDir        string `toml:"log_dir"`
}

// Root holds the per-platform storage paths of one named root. Templates
// bind to a root by name and pick the platform path at render time.
type Root struct {
	Linux   string `toml:"linux"`
	Mac     string `toml:"mac"`
	Windows string `toml:"windows"`
}

// Studio contains studio-wide policy settings.
type Studio struct {
	// NamePolicy selects the default folder-name generation policy:
	// "scrub" replaces filesystem-unsafe characters, "passthrough"
	// leaves tracker values untouched.
	NamePolicy string `toml:"name_policy"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the toolkit.
//
// Sections by subsystem:
//   - Paths: cache database, template definitions file, log directory
//   - Roots: named storage roots with per-platform paths
//   - Studio: folder-name generation policy
//   - Logging: log format and level
type Config struct {
	Paths   Paths           `toml:"paths"`
	Roots   map[string]Root `toml:"roots"`
	Studio  Studio          `toml:"studio"`
	Logging Logging         `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDB:       defaultCacheDB,
			TemplatesFile: defaultTemplatesFile,
			LogDir:        defaultLogDir,
		},
		Roots: map[string]Root{
			"primary": {Linux: defaultPrimaryRoot, Mac: defaultPrimaryRoot},
		},
		Studio:  Studio{NamePolicy: defaultNamePolicy},
		Logging: Logging{Format: defaultLogFormat, Level: defaultLogLevel},
	}
}

// DefaultConfigPath returns the absolute path to the default
// configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/slate/config.toml")
}

// SampleConfig returns the annotated sample configuration file.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to the target path.
func CreateSample(target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean
// reports whether a file was found; without one the defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}

		// Decoding over the defaults merges the two root maps, which
		// would leak default platform paths into partially specified
		// roots. A file that defines any roots replaces the defaults.
		var fileRoots struct {
			Roots map[string]Root `toml:"roots"`
		}
		if err := toml.Unmarshal(data, &fileRoots); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		if len(fileRoots.Roots) > 0 {
			cfg.Roots = fileRoots.Roots
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("slate.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the toolkit writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Paths.CacheDB), c.Paths.LogDir}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// RootPaths flattens the named roots into the mapping consumed by the
// template loader: root name -> platform -> path. Empty platform entries
// are omitted.
func (c *Config) RootPaths() map[string]map[string]string {
	out := make(map[string]map[string]string, len(c.Roots))
	for name, root := range c.Roots {
		platforms := make(map[string]string, 3)
		if root.Linux != "" {
			platforms["linux"] = root.Linux
		}
		if root.Mac != "" {
			platforms["mac"] = root.Mac
		}
		if root.Windows != "" {
			platforms["windows"] = root.Windows
		}
		out[name] = platforms
	}
	return out
}

// ProjectRoots lists the storage root paths for the current platform
// across all named roots; the resolution engine stops its upward walks
// at these.
func (c *Config) ProjectRoots() []string {
	var roots []string
	for _, root := range c.Roots {
		for _, path := range []string{root.Linux, root.Mac, root.Windows} {
			if path != "" {
				roots = append(roots, path)
			}
		}
	}
	return roots
}
