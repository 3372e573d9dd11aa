package resolve

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/adder-build/adder/internal/solver"
)

// Pushes the run exports of a solved environment into this output's later
// environments.
//
// For every non-transitive, non-ignored spec of the environment, the
// export declaration is either synthesized from the session's
// pin-run-as-build table (a weak export pinning the resolved version) or
// read from the resolved package's metadata in the cache. Missing metadata
// means the dependency exports nothing.
//
// Where an export lands depends on the solved environment and on whether
// the output is platform-independent: build-environment exports reach host
// and run (strong) or host only (weak) for platform builds, and are
// suppressed entirely for noarch outputs; host-environment exports reach
// run and run_constrained for platform builds, while noarch outputs only
// forward noarch-strength exports to run.
func (o *Output) PropagateRunExports(env string, store solver.RunExportsReader) error {
	collected, err := o.collectRunExports(env, store)
	if err != nil {
		return err
	}

	switch env {
	case EnvBuild:
		if o.Noarch {
			return nil
		}
		for _, exports := range collected {
			for _, r := range exports.Strong {
				if err := o.insertRunExport(EnvHost, r); err != nil {
					return err
				}
				if err := o.insertRunExport(EnvRun, r); err != nil {
					return err
				}
			}
			for _, r := range exports.Weak {
				if err := o.insertRunExport(EnvHost, r); err != nil {
					return err
				}
			}
			for _, r := range exports.StrongConstrains {
				if err := o.insertRunExport(EnvRunConstrained, r); err != nil {
					return err
				}
			}
		}

	case EnvHost:
		for _, exports := range collected {
			if o.Noarch {
				for _, r := range exports.Noarch {
					if err := o.insertRunExport(EnvRun, r); err != nil {
						return err
					}
				}
				continue
			}
			for _, r := range append(append([]string(nil), exports.Strong...), exports.Weak...) {
				if err := o.insertRunExport(EnvRun, r); err != nil {
					return err
				}
			}
			for _, r := range append(append([]string(nil), exports.StrongConstrains...), exports.WeakConstrains...) {
				if err := o.insertRunExport(EnvRunConstrained, r); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// Gathers the run-export declarations of every eligible resolved spec in
// an environment.
func (o *Output) collectRunExports(env string, store solver.RunExportsReader) ([]*solver.RunExports, error) {
	ignored := stringSliceValue(o.Sections["build"]["ignore_run_exports"])

	var collected []*solver.RunExports
	for _, s := range o.Requirements[env] {
		if s.IsTransitiveDependency || slices.Contains(ignored, s.Name) {
			continue
		}

		res, ok := s.Resolved()
		if !ok {
			slog.Warn("spec has no resolution, skipping run exports", "spec", s.Raw, "environment", env)
			continue
		}

		if settings, ok := o.Config.PinRunAsBuild[s.NormalizedName()]; ok {
			pinned := s.FinalName + " " + applyPinExpressions(res.Version, settings.MinPin, settings.MaxPin)
			collected = append(collected, &solver.RunExports{Weak: []string{pinned}})
			continue
		}

		exports, found, err := store.ReadRunExports(res.identity(s.FinalName))
		if err != nil {
			return nil, err
		}
		if found {
			collected = append(collected, exports)
		}
	}
	return collected, nil
}

// Inserts a propagated export constraint into a target environment.
//
// An existing simple spec with the same resolved name is replaced in
// place, preserving its position; otherwise the export is appended. Either
// way the inserted spec is tagged as coming from a run export.
func (o *Output) insertRunExport(env, raw string) error {
	spec, err := ParseSpec(raw)
	if err != nil {
		return fmt.Errorf("propagated run export: %w", err)
	}
	spec.FromRunExport = true

	for idx, r := range o.Requirements[env] {
		if r.FinalName == spec.Name && r.Simple() {
			o.Requirements[env][idx] = spec
			return nil
		}
	}
	o.Requirements[env] = append(o.Requirements[env], spec)
	return nil
}

// Finalizes this output's own declared run exports once its build
// identity is known.
//
// Deferred subpackage pins inside the declarations are evaluated against
// the session's outputs. A static variant must not re-export a constraint
// on itself: any export whose target name is a prefix of the output's own
// "-static" name is dropped. The final per-strength mapping is persisted
// back into the raw record for downstream metadata use.
func (o *Output) SetFinalBuildID(buildID string, all map[string]*Output) error {
	o.FinalBuildID = buildID

	final := make(map[string][]string)
	for _, strength := range RunExportStrengths {
		var kept []*Spec
		for _, x := range o.RunExports[strength] {
			if strings.HasSuffix(o.Name, staticSuffix) && strings.HasPrefix(o.Name, x.Name) {
				continue
			}
			if x.IsPinSubpackage {
				if err := x.EvalPinSubpackage(all); err != nil {
					return err
				}
			}
			kept = append(kept, x)
		}
		o.RunExports[strength] = kept

		for _, x := range kept {
			final[strength] = append(final[strength], x.Final)
		}
	}

	if o.Data.Build == nil {
		o.Data.Build = make(map[string]any)
	}
	if len(final) > 0 {
		o.Data.Build["run_exports"] = final
	} else {
		delete(o.Data.Build, "run_exports")
	}
	return nil
}
