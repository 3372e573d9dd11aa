package resolve

import (
	"fmt"
	"maps"
	"strings"

	"github.com/adder-build/adder/internal/recipe"
	"github.com/adder-build/adder/internal/solver"
)

// Interpreter version recorded when neither the variant nor the solved
// environments pin one and the session config carries no default.
const fallbackPythonVersion = "3.12.0"

// Resolves the default compiler package for a language when the variant
// does not name one.
type CompilerResolver func(language string, cfg *Config) (string, error)

// Evaluates a recipe skip selector against the session configuration.
type SelectorEvaluator func(expr string, cfg *Config) (bool, error)

// Session configuration threaded through resolution.
//
// One Config value describes one build session: platform subdirectories,
// installation prefixes, the variant assignment, and the external
// collaborators. It is passed explicitly rather than held in process-wide
// state so concurrent sessions stay independent.
type Config struct {
	BuildSubdir string // Platform subdirectory for the build environment.
	HostSubdir  string // Platform subdirectory for host and run environments.

	BuildPrefix  string // Installation prefix for build-environment packages.
	HostPrefix   string // Installation prefix for host-environment packages.
	OutputFolder string // Folder locally built packages are published to.

	Variant       map[string]string              // Current variant assignment.
	PinRunAsBuild map[string]recipe.PinSettings  // Packages pinned "as build" when exported to run.

	Solver         solver.Factory    // Produces solvers per environment.
	NativeCompiler CompilerResolver  // Default-compiler lookup; nil selects the built-in table.
	Selector       SelectorEvaluator // Skip-selector evaluation; nil skips nothing.

	DefaultPythonVersion string // Interpreter version backfilled when nothing else pins python.
}

// Whether build and host resolve against the same platform subdirectory.
func (c *Config) SubdirsSame() bool {
	return c.BuildSubdir == c.HostSubdir
}

// Returns the installation prefix for an environment. Run shares the host
// prefix.
func (c *Config) prefixFor(env string) string {
	if env == EnvBuild {
		return c.BuildPrefix
	}
	return c.HostPrefix
}

// Returns the default compiler package name for a language, consulting the
// configured resolver.
func (c *Config) nativeCompiler(language string) (string, error) {
	if c.NativeCompiler != nil {
		return c.NativeCompiler(language, c)
	}
	return defaultNativeCompiler(language, c)
}

// Produces a per-variant copy of a session configuration.
//
// The variant is overlaid onto the base variant assignment, and a
// target_platform key retargets the host subdirectory. The base config is
// not modified.
func MergeConfig(base *Config, variant map[string]string) *Config {
	merged := *base

	merged.Variant = make(map[string]string, len(base.Variant)+len(variant))
	maps.Copy(merged.Variant, base.Variant)
	maps.Copy(merged.Variant, variant)

	if target := merged.Variant["target_platform"]; target != "" {
		merged.HostSubdir = target
	}

	return &merged
}

// The built-in default-compiler table, keyed by the operating system half
// of the build subdirectory.
func defaultNativeCompiler(language string, cfg *Config) (string, error) {
	platform, _, _ := strings.Cut(cfg.BuildSubdir, "-")

	compilers, ok := nativeCompilers[platform]
	if !ok {
		compilers = nativeCompilers["linux"]
	}

	compiler, ok := compilers[language]
	if !ok {
		return "", fmt.Errorf("%w: no native %s compiler known for %s", ErrConfiguration, language, cfg.BuildSubdir)
	}
	return compiler, nil
}

var nativeCompilers = map[string]map[string]string{
	"linux": {
		"c":       "gcc",
		"cxx":     "gxx",
		"fortran": "gfortran",
		"rust":    "rust",
	},
	"osx": {
		"c":       "clang",
		"cxx":     "clangxx",
		"fortran": "gfortran",
		"rust":    "rust",
	},
	"win": {
		"c":       "vs2019",
		"cxx":     "vs2019",
		"fortran": "gfortran",
		"rust":    "rust",
	},
}
