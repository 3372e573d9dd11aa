// Package solver defines the narrow interfaces the resolution core uses
// to talk to an external dependency solver and its package cache.
//
// The solver itself is an opaque capability: it receives a list of textual
// constraints and returns a transaction describing the packages it chose.
// The core never inspects how the solution was computed. The package cache
// is an on-disk directory of extracted packages, keyed by the package's
// name-version-build triplet, and doubles as the metadata source for
// run-export propagation.
//
// The index package provides a local-channel implementation of these
// interfaces suitable for tests and offline resolution.
package solver
