package solver

import (
	"context"
	"fmt"
)

// Identifies one resolved package by its unique build identity.
type Identity struct {
	Name        string // Package name (e.g., "libfoo").
	Version     string // Resolved version (e.g., "2.1.0").
	BuildString string // Resolved build string (e.g., "h1a2b3_0").
}

// Returns the name-version-build triplet used as the package's directory
// name in channels and caches.
func (id Identity) Triplet() string {
	return fmt.Sprintf("%s-%s-%s", id.Name, id.Version, id.BuildString)
}

// Describes one package the solver decided to install.
type Install struct {
	Name        string // Package name.
	Version     string // Chosen version.
	BuildString string // Chosen build string.
	Channel     string // Channel the package came from.
}

// Returns the install's build identity.
func (i Install) Identity() Identity {
	return Identity{Name: i.Name, Version: i.Version, BuildString: i.BuildString}
}

// Represents one completed solve.
//
// A transaction is produced by a successful Solve call and describes the
// packages to remove and install, plus a human-readable note. Packages must
// be fetched and extracted into the cache before their metadata can be read.
type Transaction interface {

	// Returns the removals, installs, and note of this transaction.
	Materialize() (removals []string, installs []Install, note string, err error)

	// Downloads and extracts every install into the package cache.
	//
	// An error means the cache could not be fully materialized; the solve
	// result must be considered unusable.
	FetchExtractPackages(ctx context.Context) error
}

// Resolves textual dependency constraints against a set of package caches.
type Solver interface {
	Solve(ctx context.Context, specs []string, caches []*Cache) (Transaction, error)
}

// Produces solvers bound to one target environment.
//
// The subdir selects the platform index to solve against. The prefix is the
// installation target the caller intends to materialize into, and the
// output folder is where locally built packages are published; both are
// passed through to the solver rather than kept in process-wide state.
type Factory interface {
	ForEnvironment(subdir, prefix, outputFolder string) (Solver, *Cache, error)
}

// Run-export declarations of one package, grouped by strength.
type RunExports struct {
	Weak             []string `json:"weak,omitempty"`
	Strong           []string `json:"strong,omitempty"`
	StrongConstrains []string `json:"strong_constrains,omitempty"`
	WeakConstrains   []string `json:"weak_constrains,omitempty"`
	Noarch           []string `json:"noarch,omitempty"`
}

// Whether no strength carries any entries.
func (r *RunExports) Empty() bool {
	return len(r.Weak) == 0 && len(r.Strong) == 0 && len(r.StrongConstrains) == 0 &&
		len(r.WeakConstrains) == 0 && len(r.Noarch) == 0
}

// Reads per-package run-export metadata.
//
// The boolean reports whether metadata exists for the identity. Absence is
// not an error: a package without run-export metadata simply exports
// nothing.
type RunExportsReader interface {
	ReadRunExports(id Identity) (*RunExports, bool, error)
}
