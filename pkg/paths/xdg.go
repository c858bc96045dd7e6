// Package paths provides XDG-compliant path resolution for the extender.
//
// Resolution order:
// 1. EXTENDER_HOME (portable root) → $EXTENDER_HOME/{config,state}
// 2. XDG env vars → $XDG_*_HOME/extender
// 3. Platform defaults → ~/.config/extender, ~/.local/state/extender
package paths

import (
	"os"
	"path/filepath"
)

const appName = "extender"

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if home := os.Getenv("EXTENDER_HOME"); home != "" {
		return filepath.Join(home, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if home := os.Getenv("EXTENDER_HOME"); home != "" {
		return filepath.Join(home, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// ConfigDir returns the extender configuration directory.
// The global extender.yml lives here.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	if os.Getenv("EXTENDER_HOME") != "" {
		return base
	}
	return filepath.Join(base, appName)
}

// StateDir returns the extender state directory.
// Used for log files.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	if os.Getenv("EXTENDER_HOME") != "" {
		return base
	}
	return filepath.Join(base, appName)
}

// LogDir returns the directory for file log sinks.
func LogDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "logs")
}

// GlobalConfigPath returns the path of the global configuration file.
func GlobalConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "extender.yml")
}
