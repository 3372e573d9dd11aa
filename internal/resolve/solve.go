package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adder-build/adder/internal/solver"
)

// Finalizes this output by solving its environments in order.
//
// Build, host, and run are solved strictly sequentially: each stage's
// resolved versions and propagated exports are inputs to the next. The
// all map carries every output of the session, keyed by name, for
// resolving subpackage pins. On success every spec in every non-empty
// environment carries a bound resolution.
//
// Afterwards, if the variant does not pin a python version, it is
// backfilled from whichever of build or host resolved a python package,
// falling back to the session's configured default interpreter version.
func (o *Output) FinalizeSolve(ctx context.Context, all map[string]*Output) error {
	for _, env := range []string{EnvBuild, EnvHost, EnvRun} {
		if err := o.solveEnvironment(ctx, env, all); err != nil {
			return err
		}
	}

	if o.Config.Variant["python"] == "" {
		o.backfillPythonVariant()
	}

	o.Variant = o.Config.Variant
	return nil
}

// Solves one environment of this output.
//
// Deferred pin forms are rewritten first: subpackage pins against the
// session's outputs, and, for the run environment only, compatible pins
// against the already-solved build and host lists. The finalized
// constraint texts are persisted into the raw record, the external solver
// is invoked for the environment's platform subdirectory, and its result
// is reconciled back onto the requirement list: authored specs get their
// resolution bound, unmatched installs are appended as transitive
// dependencies. Packages are then fetched into the cache (failure is
// fatal), and for build and host the resolved run exports are propagated
// into the environments not yet solved.
func (o *Output) solveEnvironment(ctx context.Context, env string, all map[string]*Output) error {
	specs := o.Requirements[env]
	if len(specs) == 0 {
		return nil
	}

	slog.Info("finalizing environment", "output", o.Name, "environment", env)

	for _, s := range specs {
		if s.IsPinSubpackage {
			if err := s.EvalPinSubpackage(all); err != nil {
				return err
			}
		}
		if env == EnvRun && s.IsPinCompatible {
			if err := s.EvalPinCompatible(o.Requirements[EnvBuild], o.Requirements[EnvHost]); err != nil {
				return err
			}
		}
	}

	finals := make([]string, len(specs))
	for i, s := range specs {
		finals[i] = s.Final
	}

	if o.Data.Requirements == nil {
		o.Data.Requirements = make(map[string][]string)
	}
	o.Data.Requirements[env] = finals

	subdir := o.Config.BuildSubdir
	if (env == EnvHost || env == EnvRun) && !o.Config.SubdirsSame() {
		subdir = o.Config.HostSubdir
	}

	sol, cache, err := o.Config.Solver.ForEnvironment(subdir, o.Config.prefixFor(env), o.Config.OutputFolder)
	if err != nil {
		return err
	}

	tx, err := sol.Solve(ctx, finals, []*solver.Cache{cache})
	if err != nil {
		return fmt.Errorf("%w: %s environment of %s: %w", ErrSolve, env, o.Name, err)
	}

	_, installs, _, err := tx.Materialize()
	if err != nil {
		return fmt.Errorf("%w: %s environment of %s: %w", ErrSolve, env, o.Name, err)
	}

	byName := make(map[string]*Spec, len(specs))
	for _, s := range specs {
		byName[s.FinalName] = s
	}

	for _, p := range installs {
		res := Resolution{Version: p.Version, BuildString: p.BuildString, Channel: p.Channel}
		if s, ok := byName[p.Name]; ok {
			if err := s.Bind(res); err != nil {
				return err
			}
			continue
		}

		// The solver chose a package nobody authored: mirror it into the
		// requirement list so the final set matches the solution exactly.
		transitive := &Spec{
			Raw:                    p.Name,
			Name:                   p.Name,
			FinalName:              p.Name,
			Final:                  p.Name,
			IsTransitiveDependency: true,
			res:                    &res,
		}
		o.Requirements[env] = append(o.Requirements[env], transitive)
	}

	o.Transactions[env] = &EnvTransaction{Transaction: tx, Cache: cache}

	if err := tx.FetchExtractPackages(ctx); err != nil {
		return fmt.Errorf("%w: %s environment of %s: %w", ErrFetch, env, o.Name, err)
	}

	if env == EnvBuild || env == EnvHost {
		return o.PropagateRunExports(env, cache)
	}
	return nil
}

// Records the python version in the variant from the solved build or host
// environments, or from the session default as a last resort. The value
// becomes part of the output's effective variant identity.
func (o *Output) backfillPythonVariant() {
	if o.Config.Variant == nil {
		o.Config.Variant = make(map[string]string)
	}

	for _, r := range append(append([]*Spec(nil), o.Requirements[EnvBuild]...), o.Requirements[EnvHost]...) {
		if r.Name != "python" {
			continue
		}
		if res, ok := r.Resolved(); ok {
			o.Config.Variant["python"] = res.Version
			return
		}
	}

	fallback := o.Config.DefaultPythonVersion
	if fallback == "" {
		fallback = fallbackPythonVersion
	}
	o.Config.Variant["python"] = fallback
}
