package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Platform identifiers.
const (
	platformLinux  = "linux"
	platformDarwin = "darwin"
)

// Application directory name used across all platforms.
const appName = "codetester"

// Config file names.
const (
	configFileName = "config.toml"

	// ProjectFileName is looked up in the working directory and layered on
	// top of the user config file.
	ProjectFileName = ".codetester.toml"
)

// DefaultConfigDir returns the platform-specific directory for config files.
// On Linux, respects XDG_CONFIG_HOME (defaults to ~/.config/codetester).
// On macOS, uses ~/Library/Application Support/codetester.
// Other platforms fall back to ~/.config/codetester.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case platformLinux:
		return linuxConfigDir(home)
	case platformDarwin:
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		return filepath.Join(home, ".config", appName)
	}
}

// linuxConfigDir returns the XDG-compliant config directory for Linux.
func linuxConfigDir(home string) string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	return filepath.Join(home, ".config", appName)
}

// DefaultConfigPath returns the full path to the default config file,
// used when neither CODETESTER_CONFIG nor --config is given.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, configFileName)
}

// ProjectConfigPath returns the project config path inside dir, or "" when
// dir is empty.
func ProjectConfigPath(dir string) string {
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, ProjectFileName)
}
