package config

const (
	defaultCacheDB       = "~/.local/share/slate/path_cache.db"
	defaultTemplatesFile = "~/.config/slate/templates.yaml"
	defaultLogDir        = "~/.local/share/slate/logs"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultNamePolicy    = "scrub"
	defaultPrimaryRoot   = "~/projects"
)
