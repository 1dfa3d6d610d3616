package config

import (
	"os"
	"path/filepath"
)

const appName = "mojido"

func xdgDir(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// XDGCacheHome returns the XDG cache home or a default fallback.
func XDGCacheHome() string {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, appName+".db")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultCorpusPath returns where `corpus build` writes a generated corpus.
func DefaultCorpusPath() string {
	return filepath.Join(XDGDataHome(), appName, "corpus.json")
}

// DefaultCorpusCacheDir returns the download cache for corpus sources.
func DefaultCorpusCacheDir() string {
	return filepath.Join(XDGCacheHome(), appName, "sources")
}

// DefaultExportDir returns the default directory for attempt-log exports.
func DefaultExportDir() string {
	return filepath.Join(XDGDataHome(), appName, "exports")
}
