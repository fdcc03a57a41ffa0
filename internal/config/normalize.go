package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// normalize expands and absolutizes every local path field. Root paths
// for foreign platforms are left as written; they are only meaningful on
// their own platform.
func (c *Config) normalize() error {
	var err error
	if c.Paths.CacheDB, err = expandPath(c.Paths.CacheDB); err != nil {
		return err
	}
	if c.Paths.TemplatesFile, err = expandPath(c.Paths.TemplatesFile); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	for name, root := range c.Roots {
		if root.Linux, err = expandPath(root.Linux); err != nil {
			return err
		}
		if root.Mac, err = expandPath(root.Mac); err != nil {
			return err
		}
		c.Roots[name] = root
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Studio.NamePolicy = strings.ToLower(strings.TrimSpace(c.Studio.NamePolicy))
	return nil
}

// ExpandPath resolves a leading ~ against the user's home directory.
// Empty strings pass through.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
