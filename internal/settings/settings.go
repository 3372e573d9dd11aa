// Package settings loads the tool's optional TOML settings file.
//
// Settings supply defaults for flags the user does not pass on the
// command line. A missing file is not an error: every field has a
// zero-value meaning "use the built-in default".
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
)

// User-level defaults for resolution sessions.
type Settings struct {
	Channel        string `toml:"channel"`         // Default channel directory.
	TargetPlatform string `toml:"target_platform"` // Default host platform subdir.
	BuildPlatform  string `toml:"build_platform"`  // Default build platform subdir.
	PythonVersion  string `toml:"python_version"`  // Interpreter version backfill.
	OutputFolder   string `toml:"output_folder"`   // Output folder override.
}

// Loads settings from the given path.
//
// A nonexistent file yields zero settings. String values are trimmed;
// unknown keys are rejected so typos surface early.
func Load(path string) (Settings, error) {
	var cfg Settings

	meta, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Settings{}, fmt.Errorf("unknown settings keys: %s", strings.Join(keys, ", "))
	}

	cfg.Channel = strings.TrimSpace(cfg.Channel)
	cfg.TargetPlatform = strings.TrimSpace(cfg.TargetPlatform)
	cfg.BuildPlatform = strings.TrimSpace(cfg.BuildPlatform)
	cfg.PythonVersion = strings.TrimSpace(cfg.PythonVersion)
	cfg.OutputFolder = strings.TrimSpace(cfg.OutputFolder)

	return cfg, nil
}
