// Package index implements the solver interfaces against a local channel
// directory.
//
// A channel is a directory with one subdirectory per platform (plus
// noarch), each holding a repodata.json index and the extracted packages
// it describes. Resolution is greedy: every requested name gets the
// highest version and build number satisfying all accumulated
// constraints, and the chosen package's dependencies are resolved
// transitively the same way. This is deliberately not a SAT solver — it
// never backtracks — but it honors the same narrow interface, so a full
// constraint solver can be swapped in without touching the resolution
// core.
//
// Fetching a transaction copies each chosen package's extracted directory
// from the channel into the session's package cache, making its metadata
// (run exports) readable by propagation.
package index
