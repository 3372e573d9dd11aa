package resolve

import (
	"fmt"
	"strings"

	"github.com/adder-build/adder/internal/solver"
)

// The resolved state of a spec after a successful solve.
type Resolution struct {
	Version     string // Version the solver chose.
	BuildString string // Build string the solver chose.
	Channel     string // Channel the package came from.
}

// Returns the build identity of the resolution for a given name.
func (r Resolution) identity(name string) solver.Identity {
	return solver.Identity{Name: name, Version: r.Version, BuildString: r.BuildString}
}

// One dependency requirement of an output.
//
// A spec starts as a textual constraint and accumulates state as it moves
// through the pipeline: variant pinning rewrites Final, a solve binds the
// resolution exactly once, and provenance flags record where the spec came
// from. The resolution is only readable after the spec's environment has
// been solved.
type Spec struct {
	Raw       string // Original constraint text.
	Name      string // Parsed package name.
	FinalName string // Package name after any rewrite.
	Final     string // Constraint text sent to the solver.

	IsPin                  bool // Derived from a pin expression.
	IsPinCompatible        bool // pin_compatible form, resolved against solved build/host.
	IsPinSubpackage        bool // pin_subpackage form, resolved against sibling outputs.
	FromRunExport          bool // Injected by run-export propagation.
	FromPinnings           bool // Rewritten by variant pinning.
	IsInherited            bool // Copied from a required upstream step.
	IsTransitiveDependency bool // Appeared only as solver output.

	pin *pinExpr
	res *Resolution
}

// Parses a textual constraint into a spec.
//
// Plain constraints have the form "name" or "name <constraint>". The
// deferred pin forms are "pin_subpackage(name, ...)" and
// "pin_compatible(name, ...)" with optional min_pin, max_pin, and exact
// arguments.
func ParseSpec(raw string) (*Spec, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty spec", ErrSpec)
	}

	for _, kind := range []string{"pin_subpackage", "pin_compatible"} {
		if !strings.HasPrefix(text, kind+"(") {
			continue
		}
		pin, err := parsePinExpr(kind, text)
		if err != nil {
			return nil, err
		}
		return &Spec{
			Raw:             raw,
			Name:            pin.Package,
			FinalName:       pin.Package,
			Final:           text,
			IsPin:           true,
			IsPinSubpackage: kind == "pin_subpackage",
			IsPinCompatible: kind == "pin_compatible",
			pin:             pin,
		}, nil
	}

	name := strings.Fields(text)[0]
	return &Spec{
		Raw:       raw,
		Name:      name,
		FinalName: name,
		Final:     text,
	}, nil
}

// Returns the constraint text sent to the solver.
func (s *Spec) String() string {
	return s.Final
}

// Returns the spec's name with hyphens replaced by underscores, the form
// variant keys use.
func (s *Spec) NormalizedName() string {
	return strings.ReplaceAll(s.Name, "-", "_")
}

// Whether the spec is a bare, unqualified name.
//
// Simple specs may be replaced in place by propagated run exports;
// qualified specs (version constraints, pins) are preserved.
func (s *Spec) Simple() bool {
	return !s.IsPin && len(strings.Fields(s.Final)) == 1
}

// Returns the resolution bound by a completed solve.
func (s *Spec) Resolved() (Resolution, bool) {
	if s.res == nil {
		return Resolution{}, false
	}
	return *s.res, true
}

// Returns the resolution, or an error if the spec's environment has not
// been solved yet.
func (s *Spec) FinalVersion() (Resolution, error) {
	if s.res == nil {
		return Resolution{}, fmt.Errorf("%w: %s", ErrUnresolved, s.FinalName)
	}
	return *s.res, nil
}

// Binds the solver's choice onto the spec. The resolution is set once; a
// second bind is an error.
func (s *Spec) Bind(res Resolution) error {
	if s.res != nil {
		return fmt.Errorf("%w: %s already resolved", ErrSpec, s.FinalName)
	}
	s.res = &res
	return nil
}

// Returns a copy of the spec, including any bound resolution.
func (s *Spec) Clone() *Spec {
	clone := *s
	if s.pin != nil {
		pin := *s.pin
		clone.pin = &pin
	}
	if s.res != nil {
		res := *s.res
		clone.res = &res
	}
	return &clone
}

// Rewrites a pin_subpackage spec against the outputs being built in this
// session. The referenced output's version (and build string, for exact
// pins) becomes the constraint.
func (s *Spec) EvalPinSubpackage(all map[string]*Output) error {
	if !s.IsPinSubpackage {
		return nil
	}

	target, ok := all[s.pin.Package]
	if !ok {
		return fmt.Errorf("%w: no output named %q for pin_subpackage", ErrPinTarget, s.pin.Package)
	}

	s.Final = s.pin.Package + " " + s.pin.constraint(target.Version, target.BuildString)
	s.FinalName = s.pin.Package
	return nil
}

// Rewrites a pin_compatible spec against the already-solved build and host
// requirement lists. The referenced package's resolved version becomes the
// constraint.
func (s *Spec) EvalPinCompatible(build, host []*Spec) error {
	if !s.IsPinCompatible {
		return nil
	}

	for _, r := range append(append([]*Spec(nil), build...), host...) {
		if r.FinalName != s.pin.Package {
			continue
		}
		res, ok := r.Resolved()
		if !ok {
			continue
		}
		s.Final = s.pin.Package + " " + s.pin.constraint(res.Version, res.BuildString)
		s.FinalName = s.pin.Package
		return nil
	}

	return fmt.Errorf("%w: no solved build/host package named %q for pin_compatible", ErrPinTarget, s.pin.Package)
}
