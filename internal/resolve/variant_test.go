package resolve

import (
	"errors"
	"testing"

	"github.com/adder-build/adder/internal/recipe"
)

func templateOutput(t *testing.T, reqs map[string][]string) *Output {
	t.Helper()
	out, err := NewOutput(&recipe.Record{
		Step:         recipe.Step{Name: "libfoo"},
		Requirements: reqs,
	}, &Config{BuildSubdir: "linux-64", HostSubdir: "linux-64"}, Options{})
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}
	return out
}

func TestApplyVariantPinsBuildAndHost(t *testing.T) {
	out := templateOutput(t, map[string][]string{
		"build": {"python"},
		"host":  {"python", "zlib"},
		"run":   {"python"},
	})

	variant := map[string]string{"python": "3.10", "target_platform": "linux-64"}
	copied, err := out.ApplyVariant(variant, nil)
	if err != nil {
		t.Fatalf("ApplyVariant: %v", err)
	}

	for _, env := range []string{EnvBuild, EnvHost} {
		pinned := copied.Requirements[env][0]
		if pinned.Final != "python 3.10" {
			t.Fatalf("%s python = %q, want python 3.10", env, pinned.Final)
		}
		if !pinned.FromPinnings {
			t.Fatalf("%s python not flagged FromPinnings", env)
		}
	}

	// Run requirements are deliberately not pinned during variant expansion.
	if run := copied.Requirements[EnvRun][0]; run.Final != "python" || run.FromPinnings {
		t.Fatalf("run python = %q FromPinnings=%v, want unpinned", run.Final, run.FromPinnings)
	}

	// Unrelated specs are untouched.
	if zlib := copied.Requirements[EnvHost][1]; zlib.Final != "zlib" {
		t.Fatalf("zlib = %q, want zlib", zlib.Final)
	}
}

func TestApplyVariantNeverMutatesTemplate(t *testing.T) {
	out := templateOutput(t, map[string][]string{
		"build": {"python", "COMPILER_C c"},
	})

	first, err := out.ApplyVariant(map[string]string{
		"python": "3.10", "c_compiler": "gcc", "target_platform": "linux-64",
	}, nil)
	if err != nil {
		t.Fatalf("ApplyVariant: %v", err)
	}
	second, err := out.ApplyVariant(map[string]string{
		"python": "3.11", "c_compiler": "clang", "target_platform": "osx-64",
	}, nil)
	if err != nil {
		t.Fatalf("ApplyVariant: %v", err)
	}

	if got := out.Requirements[EnvBuild][0].Final; got != "python" {
		t.Fatalf("template python = %q, want untouched", got)
	}
	if got := out.Requirements[EnvBuild][1].Final; got != "COMPILER_C c" {
		t.Fatalf("template compiler = %q, want untouched", got)
	}
	if first.Requirements[EnvBuild][0].Final == second.Requirements[EnvBuild][0].Final {
		t.Fatalf("variant copies share the same python pin")
	}
}

func TestApplyVariantCompilerInjection(t *testing.T) {
	out := templateOutput(t, map[string][]string{
		"build": {"COMPILER_C c"},
	})

	copied, err := out.ApplyVariant(map[string]string{
		"c_compiler":      "gcc",
		"target_platform": "linux-64",
	}, nil)
	if err != nil {
		t.Fatalf("ApplyVariant: %v", err)
	}

	spec := copied.Requirements[EnvBuild][0]
	if spec.Final != "gcc_linux-64" {
		t.Fatalf("compiler spec = %q, want gcc_linux-64", spec.Final)
	}
	if !spec.FromPinnings {
		t.Fatalf("compiler spec not flagged FromPinnings")
	}
}

func TestApplyVariantCompilerVersion(t *testing.T) {
	out := templateOutput(t, map[string][]string{
		"build": {"COMPILER_C c"},
	})

	copied, err := out.ApplyVariant(map[string]string{
		"c_compiler":         "gcc",
		"c_compiler_version": "11",
		"target_platform":    "linux-64",
	}, nil)
	if err != nil {
		t.Fatalf("ApplyVariant: %v", err)
	}

	if got := copied.Requirements[EnvBuild][0].Final; got != "gcc_linux-64 11*" {
		t.Fatalf("compiler spec = %q, want gcc_linux-64 11*", got)
	}
}

func TestApplyVariantNativeCompilerDefault(t *testing.T) {
	out := templateOutput(t, map[string][]string{
		"build": {"COMPILER_CXX cxx"},
	})

	copied, err := out.ApplyVariant(map[string]string{
		"target_platform": "linux-64",
	}, nil)
	if err != nil {
		t.Fatalf("ApplyVariant: %v", err)
	}

	if got := copied.Requirements[EnvBuild][0].Final; got != "gxx_linux-64" {
		t.Fatalf("compiler spec = %q, want gxx_linux-64", got)
	}
}

func TestApplyVariantCompilerInHost(t *testing.T) {
	out := templateOutput(t, map[string][]string{
		"host": {"COMPILER_C c"},
	})

	if _, err := out.ApplyVariant(map[string]string{"target_platform": "linux-64"}, nil); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestApplyVariantDifferentiatingValues(t *testing.T) {
	out := templateOutput(t, map[string][]string{"host": {"python"}})

	copied, err := out.ApplyVariant(map[string]string{
		"python":          "3.10",
		"numpy":           "1.26",
		"target_platform": "linux-64",
	}, []string{"python", "numpy"})
	if err != nil {
		t.Fatalf("ApplyVariant: %v", err)
	}

	if len(copied.DifferentiatingVariant) != 2 ||
		copied.DifferentiatingVariant[0] != "3.10" ||
		copied.DifferentiatingVariant[1] != "1.26" {
		t.Fatalf("DifferentiatingVariant = %v, want [3.10 1.26]", copied.DifferentiatingVariant)
	}
}

func TestApplyVariantCarriesInheritedFlag(t *testing.T) {
	out := templateOutput(t, map[string][]string{"build": {"cmake"}})
	out.Requirements[EnvBuild][0].IsInherited = true

	copied, err := out.ApplyVariant(map[string]string{
		"cmake":           "3.27",
		"target_platform": "linux-64",
	}, nil)
	if err != nil {
		t.Fatalf("ApplyVariant: %v", err)
	}

	pinned := copied.Requirements[EnvBuild][0]
	if !pinned.IsInherited || !pinned.FromPinnings {
		t.Fatalf("pinned inherited spec flags = inherited %v, pinnings %v; want both", pinned.IsInherited, pinned.FromPinnings)
	}
}

func TestMergeConfigRetargetsHostSubdir(t *testing.T) {
	base := &Config{BuildSubdir: "linux-64", HostSubdir: "linux-64", Variant: map[string]string{"python": "3.10"}}

	merged := MergeConfig(base, map[string]string{"target_platform": "osx-arm64"})
	if merged.HostSubdir != "osx-arm64" {
		t.Fatalf("HostSubdir = %q, want osx-arm64", merged.HostSubdir)
	}
	if merged.Variant["python"] != "3.10" {
		t.Fatalf("base variant key lost: %v", merged.Variant)
	}
	if base.HostSubdir != "linux-64" {
		t.Fatalf("base config mutated: %q", base.HostSubdir)
	}
}
