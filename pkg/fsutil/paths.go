package fsutil

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName is the name of the application used in paths.
const AppName = "repodash"

// ConfigFile returns the default config file location.
// On Linux: ~/.config/repodash/config.yaml
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// StateDir returns the directory for the preferences store.
// On Linux: ~/.local/state/repodash
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}
