package resolve

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/adder-build/adder/internal/recipe"
	"github.com/adder-build/adder/internal/solver"
)

// Dependency environments of an output, in solve order.
const (
	EnvBuild          = "build"
	EnvHost           = "host"
	EnvRun            = "run"
	EnvRunConstrained = "run_constrained"
)

// All dependency environments, in solve order.
var Environments = []string{EnvBuild, EnvHost, EnvRun, EnvRunConstrained}

// Run-export strengths an output may declare.
var RunExportStrengths = []string{"weak", "strong", "strong_constrains", "weak_constrains", "noarch"}

// Name suffix appended to an output when its static feature is active.
const staticSuffix = "-static"

// One feature of an output with its resolved activation state.
type Feature struct {
	Name         string
	Default      bool
	Activated    bool
	Requirements map[string][]string
}

// The solve transaction and package cache of one environment.
type EnvTransaction struct {
	Transaction solver.Transaction
	Cache       *solver.Cache
}

// One buildable artifact of a recipe.
//
// A template Output is constructed once from a raw record, expanded into
// variant copies via ApplyVariant, and each copy is solved exactly once
// via FinalizeSolve. The template is logically shared read-only by its
// copies; each copy exclusively owns its requirement lists, run exports,
// and transactions.
type Output struct {
	Name        string
	Version     string
	BuildString string
	BuildNumber int
	Noarch      bool
	IsPackage   bool

	Data     *recipe.Record            // Raw record; finalized constraints are written back here.
	Config   *Config                   // Session configuration, re-merged per variant.
	Sections map[string]map[string]any // Parent-overlaid generic sections.
	Sources  []recipe.Source
	Files    []string

	Requirements map[string][]*Spec  // Environment name to ordered specs; order is first-match-wins.
	RunExports   map[string][]*Spec  // Export strength to ordered specs this output declares.
	FeatureMap   map[string]*Feature

	RequiredSteps []string // Upstream steps this output inherits requirements from.

	Transactions map[string]*EnvTransaction // Populated per environment by FinalizeSolve.

	Variant                map[string]string
	DifferentiatingKeys    []string
	DifferentiatingVariant []string

	FinalBuildID string
}

// Controls output construction.
type Options struct {
	Parent           *recipe.Record  // Shared parent record for sections, source, and features.
	SelectedFeatures map[string]bool // Caller overrides for feature activation.
}

// Constructs an output from a raw record.
//
// Generic sections are merged by overlaying the record's own keys on the
// parent's; the merge is shallow per section and produces new maps.
// Feature activation resolves from the caller overrides layered over
// declared defaults. Active features append their requirements to the base
// per-environment lists, and an active "static" feature suffixes the
// output's name. Run exports are normalized from either a flat list
// (weak) or a per-strength mapping.
func NewOutput(rec *recipe.Record, cfg *Config, opts Options) (*Output, error) {
	if rec.Step.Name == "" {
		return nil, fmt.Errorf("%w: record has no step name", ErrConfiguration)
	}

	out := &Output{
		Name:         rec.Step.Name,
		Data:         rec,
		Config:       cfg,
		Sections:     make(map[string]map[string]any, len(recipe.SectionNames)),
		Files:        rec.Files,
		Requirements: make(map[string][]*Spec, len(Environments)),
		RunExports:   make(map[string][]*Spec, len(RunExportStrengths)),
		FeatureMap:   make(map[string]*Feature),
		Transactions: make(map[string]*EnvTransaction),
	}

	for _, name := range recipe.SectionNames {
		out.Sections[name] = mergeSection(opts.Parent.Section(name), rec.Section(name))
	}

	pkg := out.Sections["package"]
	out.IsPackage = rec.Package != nil
	out.Version = stringValue(pkg["version"])
	out.BuildString = stringValue(pkg["build_string"])
	out.BuildNumber = intValue(out.Sections["build"]["number"])
	out.Noarch = truthy(out.Sections["build"]["noarch"])

	out.Sources = rec.Source
	if len(out.Sources) == 0 && opts.Parent != nil {
		out.Sources = opts.Parent.Source
	}
	for _, src := range out.Sources {
		if src.Step != "" {
			out.RequiredSteps = append(out.RequiredSteps, src.Step)
		}
	}

	features := rec.Features
	if opts.Parent != nil && len(opts.Parent.Features) > 0 {
		features = opts.Parent.Features
	}
	for _, f := range features {
		activated := f.Default
		if selected, ok := opts.SelectedFeatures[f.Name]; ok {
			activated = selected
		}
		out.FeatureMap[f.Name] = &Feature{
			Name:         f.Name,
			Default:      f.Default,
			Activated:    activated,
			Requirements: f.Requirements,
		}
	}

	if static, ok := out.FeatureMap["static"]; ok && static.Activated {
		out.Name += staticSuffix
	}

	if err := out.parseRequirements(rec, features); err != nil {
		return nil, err
	}

	if err := out.parseRunExports(); err != nil {
		return nil, err
	}

	return out, nil
}

// Builds the per-environment spec lists from the record's requirements
// plus the contributions of active features.
func (o *Output) parseRequirements(rec *recipe.Record, features []recipe.Feature) error {
	for _, env := range Environments {
		raw := append([]string(nil), rec.Requirements[env]...)

		for _, f := range features {
			feat := o.FeatureMap[f.Name]
			if !feat.Activated || feat.Requirements == nil {
				continue
			}
			raw = append(raw, feat.Requirements[env]...)
		}

		specs := make([]*Spec, 0, len(raw))
		for _, text := range raw {
			spec, err := ParseSpec(text)
			if err != nil {
				return fmt.Errorf("%s requirement: %w", env, err)
			}
			specs = append(specs, spec)
		}
		o.Requirements[env] = specs
	}
	return nil
}

// Normalizes the build section's run_exports declaration.
func (o *Output) parseRunExports() error {
	for _, strength := range RunExportStrengths {
		o.RunExports[strength] = nil
	}

	declared, ok := o.Sections["build"]["run_exports"]
	if !ok || declared == nil {
		return nil
	}

	parse := func(strength string, values []string) error {
		for _, text := range values {
			spec, err := ParseSpec(text)
			if err != nil {
				return fmt.Errorf("run export (%s): %w", strength, err)
			}
			o.RunExports[strength] = append(o.RunExports[strength], spec)
		}
		return nil
	}

	switch value := declared.(type) {
	case []any:
		return parse("weak", stringsOf(value))
	case map[string]any:
		for _, strength := range RunExportStrengths {
			if entries, ok := value[strength].([]any); ok {
				if err := parse(strength, stringsOf(entries)); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: run_exports must be a list or a strength mapping", ErrConfiguration)
	}
}

// Evaluates the build section's skip selectors against the session
// configuration and reports whether this output should be skipped.
//
// A selector that fails to evaluate is a fatal configuration error.
func (o *Output) Skip() (bool, error) {
	if o.Config == nil || o.Config.Selector == nil {
		return false, nil
	}

	var reasons []string
	for _, expr := range stringSliceValue(o.Sections["build"]["skip"]) {
		matched, err := o.Config.Selector(expr, o.Config)
		if err != nil {
			return false, fmt.Errorf("%w: skip selector %q: %w", ErrConfiguration, expr, err)
		}
		if matched {
			reasons = append(reasons, expr)
		}
	}

	if len(reasons) > 0 {
		slog.Info("skipping output", "output", o.Name, "reasons", strings.Join(reasons, " | "))
	}
	return len(reasons) > 0, nil
}

// Merges upstream steps' already-parsed build and host specs into this
// output's own lists.
//
// A spec present upstream but absent here (by name) is deep-copied in and
// flagged as inherited; names already present are left untouched. Runs
// once, before variant application, so multi-output recipes share build
// tools without re-declaring them.
func (o *Output) InheritRequirements(steps map[string]*Output) error {
	merge := func(from, into []*Spec) []*Spec {
		names := make(map[string]bool, len(into))
		for _, r := range into {
			names[r.Name] = true
		}
		for _, r := range from {
			if names[r.Name] {
				continue
			}
			slog.Debug("inheriting requirement", "output", o.Name, "spec", r.Raw)
			clone := r.Clone()
			clone.IsInherited = true
			into = append(into, clone)
		}
		return into
	}

	for _, name := range o.RequiredSteps {
		step, ok := steps[name]
		if !ok {
			return fmt.Errorf("%w: %q required by %s", ErrUnknownStep, name, o.Name)
		}
		o.Requirements[EnvBuild] = merge(step.Requirements[EnvBuild], o.Requirements[EnvBuild])
		o.Requirements[EnvHost] = merge(step.Requirements[EnvHost], o.Requirements[EnvHost])
	}
	return nil
}

// Returns the normalized names the variant matrix may differentiate this
// output on: build and host requirement names plus identifiers appearing
// in skip selectors.
func (o *Output) VariantKeys() []string {
	var keys []string
	for _, r := range append(append([]*Spec(nil), o.Requirements[EnvBuild]...), o.Requirements[EnvHost]...) {
		keys = append(keys, r.NormalizedName())
	}
	for _, expr := range stringSliceValue(o.Sections["build"]["skip"]) {
		keys = append(keys, identifiers(expr)...)
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

// Returns every requirement and export spec of this output, used when
// computing which variant keys apply.
func (o *Output) AllRequirements() []*Spec {
	var all []*Spec
	all = append(all, o.Requirements[EnvBuild]...)
	all = append(all, o.Requirements[EnvHost]...)
	all = append(all, o.Requirements[EnvRun]...)
	all = append(all, o.RunExports["weak"]...)
	all = append(all, o.RunExports["strong"]...)
	all = append(all, o.RunExports["noarch"]...)
	return all
}

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Extracts the identifiers of a skip-selector expression.
func identifiers(expr string) []string {
	return identifierPattern.FindAllString(expr, -1)
}

// Overlays an output's own section keys on its parent's, producing a new
// map. The merge is shallow: nested structures are taken wholesale from
// whichever side wins.
func mergeSection(parent, own map[string]any) map[string]any {
	merged := make(map[string]any, len(parent)+len(own))
	for k, v := range parent {
		merged[k] = v
	}
	for k, v := range own {
		merged[k] = v
	}
	return merged
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// Whether a YAML-shaped value is truthy. The noarch key accepts both a
// boolean and a kind string ("python", "generic").
func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != "" && val != "false"
	case nil:
		return false
	}
	return true
}

func stringsOf(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringSliceValue(v any) []string {
	switch val := v.(type) {
	case []any:
		return stringsOf(val)
	case []string:
		return val
	case string:
		return []string{val}
	}
	return nil
}
