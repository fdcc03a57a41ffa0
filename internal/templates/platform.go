package templates

import (
	"fmt"
	"runtime"
	"strings"
)

// Canonical platform names used for per-platform roots. Tracker-era
// spellings (win32, darwin, linux2) are accepted on input and normalized
// to these.
const (
	PlatformLinux   = "linux"
	PlatformMac     = "mac"
	PlatformWindows = "windows"
)

// CurrentPlatform returns the canonical platform name for the running
// host.
func CurrentPlatform() string {
	switch runtime.GOOS {
	case "darwin":
		return PlatformMac
	case "windows":
		return PlatformWindows
	default:
		return PlatformLinux
	}
}

// NormalizePlatform maps a platform spelling to its canonical name. The
// empty string selects the current host platform.
func NormalizePlatform(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return CurrentPlatform(), nil
	case "linux", "linux2", "linux3":
		return PlatformLinux, nil
	case "mac", "macos", "darwin":
		return PlatformMac, nil
	case "windows", "win32", "win64":
		return PlatformWindows, nil
	default:
		return "", fmt.Errorf("%w: unrecognized platform %q", ErrDefinition, name)
	}
}

// separator returns the path separator convention for a canonical
// platform name.
func separator(platform string) string {
	if platform == PlatformWindows {
		return `\`
	}
	return "/"
}
