package index

import (
	"fmt"
	"strings"
)

// A parsed textual constraint: a package name, optional version clauses,
// and an optional exact build string.
type matchSpec struct {
	name    string
	build   string
	clauses []clause
}

// One version clause of a match spec.
type clause struct {
	op      string // One of >=, <=, >, <, ==, !=, or "" for a fuzzy match.
	version string
}

// Parses a textual constraint.
//
// Supported forms: "name", "name >=1.2,<2", "name ==1.2.3", "name 1.2.*"
// (fuzzy prefix), and "name 1.2.3 habc_0" (exact version and build).
func parseMatchSpec(text string) (*matchSpec, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty match spec")
	}

	spec := &matchSpec{name: fields[0]}

	if len(fields) > 3 {
		return nil, fmt.Errorf("malformed match spec %q", text)
	}

	if len(fields) >= 2 {
		for _, part := range strings.Split(fields[1], ",") {
			spec.clauses = append(spec.clauses, parseClause(part))
		}
	}

	if len(fields) == 3 {
		spec.build = fields[2]
	}

	return spec, nil
}

func parseClause(part string) clause {
	for _, op := range []string{">=", "<=", "==", "!=", ">", "<", "="} {
		if strings.HasPrefix(part, op) {
			version := strings.TrimPrefix(part, op)
			if op == "=" {
				return clause{op: "", version: version}
			}
			return clause{op: op, version: version}
		}
	}
	return clause{op: "", version: part}
}

// Whether a package entry satisfies the spec.
func (m *matchSpec) matches(p *packageEntry) bool {
	if p.Name != m.name {
		return false
	}
	if m.build != "" && p.Build != m.build {
		return false
	}
	for _, c := range m.clauses {
		if !c.matches(p.Version) {
			return false
		}
	}
	return true
}

func (c clause) matches(version string) bool {
	if c.op == "" {
		return fuzzyMatch(version, c.version)
	}

	cmp := compareVersions(version, c.version)
	switch c.op {
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	}
	return false
}

// Whether a version starts with the pattern's components. Trailing "*"
// or ".*" markers are stripped first, so "1.2", "1.2*", and "1.2.*" all
// match 1.2 and any 1.2.x.
func fuzzyMatch(version, pattern string) bool {
	pattern = strings.TrimSuffix(pattern, "*")
	pattern = strings.TrimSuffix(pattern, ".")
	if pattern == "" {
		return true
	}

	have := splitComponents(version)
	want := splitComponents(pattern)
	if len(want) > len(have) {
		return false
	}
	for i, w := range want {
		if have[i] != w {
			return false
		}
	}
	return true
}
