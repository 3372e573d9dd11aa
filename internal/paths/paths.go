package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "adder"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the cache directory.
//
//	Linux:   ~/.cache/adder
//	macOS:   ~/Library/Caches/adder
func Cache() string {
	return filepath.Join(xdg.CacheHome, toolName)
}

// Default output folder for resolved environments and locally built
// packages.
//
//	Linux:   ~/.cache/adder/output
func DefaultOutput() string {
	return filepath.Join(Cache(), "output")
}

// Default path to the settings file.
//
//	Linux:   ~/.config/adder/settings.toml
//	macOS:   ~/Library/Application Support/adder/settings.toml
func Settings() string {
	return filepath.Join(xdg.ConfigHome, toolName, "settings.toml")
}
