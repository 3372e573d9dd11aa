// Package recipe models the raw declarative records a recipe file is made
// of and loads them from YAML.
//
// A recipe describes one or more buildable outputs. Each output is a
// record: a step identity plus generic sections (build, package, app,
// extra, test), per-environment requirement lists, optional features, and
// source entries. Multi-output recipes share a top-level parent record
// whose sections each output overlays.
//
// Loading is plain deserialization. Templating and selector evaluation are
// outside this package; requirement strings are passed through verbatim
// for the resolve package to interpret.
package recipe
