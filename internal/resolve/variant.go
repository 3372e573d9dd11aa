package resolve

import (
	"fmt"
	"maps"
	"strings"
)

// Sentinel prefix marking a build requirement as a compiler placeholder to
// be resolved against the variant (e.g., "COMPILER_C c").
const compilerSentinel = "COMPILER_"

// Produces a specialized copy of this output for one variant assignment.
//
// The template output is never mutated. Build and host specs whose
// normalized name matches a variant key are replaced by freshly pinned
// specs; run requirements are deliberately left unpinned, since run pins
// are applied later through the compatible/subpackage pin mechanism during
// the solve. Compiler placeholders in the build environment are resolved
// to concrete compiler packages for the target platform. The copy carries
// a re-merged config and the ordered values of the differentiating keys.
//
// A compiler placeholder in the host environment is a fatal configuration
// error: compilers belong to build only.
func (o *Output) ApplyVariant(variant map[string]string, differentiatingKeys []string) (*Output, error) {
	for _, r := range o.Requirements[EnvHost] {
		if strings.HasPrefix(r.Name, compilerSentinel) {
			return nil, fmt.Errorf("%w: compiler spec %q must be in the build section, not host", ErrConfiguration, r.Raw)
		}
	}

	copied := o.clone()
	copied.Variant = maps.Clone(variant)
	copied.Config = MergeConfig(o.Config, variant)

	for _, env := range []string{EnvBuild, EnvHost} {
		for idx, r := range o.Requirements[env] {
			value, ok := variant[r.NormalizedName()]
			if !ok || strings.HasPrefix(r.Name, compilerSentinel) {
				continue
			}
			pinned, err := ParseSpec(r.Name + " " + value)
			if err != nil {
				return nil, err
			}
			pinned.FromPinnings = true
			pinned.IsInherited = r.IsInherited
			copied.Requirements[env][idx] = pinned
		}
	}

	for _, r := range copied.Requirements[EnvBuild] {
		if !strings.HasPrefix(r.Name, compilerSentinel) {
			continue
		}
		if err := copied.resolveCompiler(r, variant); err != nil {
			return nil, err
		}
	}

	copied.DifferentiatingKeys = append([]string(nil), differentiatingKeys...)
	copied.DifferentiatingVariant = make([]string, 0, len(differentiatingKeys))
	for _, key := range differentiatingKeys {
		copied.DifferentiatingVariant = append(copied.DifferentiatingVariant, variant[key])
	}

	return copied, nil
}

// Rewrites a compiler placeholder spec to a concrete compiler package.
//
// The variant's explicit compiler wins; otherwise the native-compiler
// resolver supplies the default. The package name is always suffixed with
// the target platform, and a pinned compiler version is appended as a
// wildcard constraint.
func (o *Output) resolveCompiler(spec *Spec, variant map[string]string) error {
	language := compilerLanguage(spec)

	compiler := variant[language+"_compiler"]
	if compiler == "" {
		native, err := o.Config.nativeCompiler(language)
		if err != nil {
			return err
		}
		compiler = native
	}

	target := variant["target_platform"]
	if target == "" {
		target = o.Config.HostSubdir
	}

	spec.Final = compiler + "_" + target
	if version := variant[language+"_compiler_version"]; version != "" {
		spec.Final += " " + version + "*"
	}
	spec.FinalName = compiler + "_" + target
	spec.FromPinnings = true
	return nil
}

// Returns the language of a compiler placeholder spec: the second token of
// the raw text when present ("COMPILER_C c"), else the lowered sentinel
// suffix.
func compilerLanguage(spec *Spec) string {
	if fields := strings.Fields(spec.Raw); len(fields) > 1 {
		return strings.ToLower(fields[1])
	}
	return strings.ToLower(strings.TrimPrefix(spec.Name, compilerSentinel))
}

// Returns a deep copy of the output.
//
// Requirement lists, run exports, the feature map, and the raw record are
// all copied so the variant copy owns its state exclusively. Transactions
// are not carried over: a fresh copy has not been solved.
func (o *Output) clone() *Output {
	copied := *o

	copied.Data = o.Data.Clone()

	copied.Sections = make(map[string]map[string]any, len(o.Sections))
	for name, section := range o.Sections {
		copied.Sections[name] = mergeSection(nil, section)
	}

	copied.Requirements = make(map[string][]*Spec, len(o.Requirements))
	for env, specs := range o.Requirements {
		cloned := make([]*Spec, len(specs))
		for i, s := range specs {
			cloned[i] = s.Clone()
		}
		copied.Requirements[env] = cloned
	}

	copied.RunExports = make(map[string][]*Spec, len(o.RunExports))
	for strength, specs := range o.RunExports {
		cloned := make([]*Spec, len(specs))
		for i, s := range specs {
			cloned[i] = s.Clone()
		}
		copied.RunExports[strength] = cloned
	}

	copied.FeatureMap = make(map[string]*Feature, len(o.FeatureMap))
	for name, f := range o.FeatureMap {
		feature := *f
		copied.FeatureMap[name] = &feature
	}

	copied.RequiredSteps = append([]string(nil), o.RequiredSteps...)
	copied.Transactions = make(map[string]*EnvTransaction)

	return &copied
}
