// Package resolve computes the concrete, version-pinned dependency graph
// of one buildable output.
//
// An Output is constructed from a raw recipe record, merged over an
// optional parent record and specialized by activated features. A template
// Output is expanded into one copy per variant (compiler, language
// version, platform); each copy is then finalized by solving its build,
// host, and run environments in order against an external solver.
//
// The staged ordering matters: after the build and host solves, the
// resolved packages' run-export declarations are propagated into the
// environments that have not been solved yet, so an environment may both
// receive exports from its predecessor and be the source of exports for
// its successor.
//
// Example usage:
//
//	out, err := resolve.NewOutput(record, cfg, resolve.Options{Parent: parent})
//	if err != nil {
//	    return err
//	}
//
//	variant, err := out.ApplyVariant(map[string]string{
//	    "target_platform": "linux-64",
//	    "c_compiler":      "gcc",
//	}, nil)
//	if err != nil {
//	    return err
//	}
//
//	if err := variant.FinalizeSolve(ctx, outputs); err != nil {
//	    return err
//	}
package resolve
