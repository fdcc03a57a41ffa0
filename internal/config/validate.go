package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for internal consistency. It returns
// a single error aggregating every problem found.
func (c *Config) Validate() error {
	var problems []string

	if len(c.Roots) == 0 {
		problems = append(problems, "at least one [roots.<name>] section is required")
	}
	for name, root := range c.Roots {
		if root.Linux == "" && root.Mac == "" && root.Windows == "" {
			problems = append(problems, fmt.Sprintf("root %q has no platform paths", name))
		}
	}

	switch c.Studio.NamePolicy {
	case "", "scrub", "passthrough":
	default:
		problems = append(problems, fmt.Sprintf("studio.name_policy %q is not one of scrub, passthrough", c.Studio.NamePolicy))
	}

	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not one of console, json", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	if c.Paths.CacheDB == "" {
		problems = append(problems, "paths.cache_db must not be empty")
	}
	if c.Paths.TemplatesFile == "" {
		problems = append(problems, "paths.templates_file must not be empty")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
