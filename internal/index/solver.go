package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/adder-build/adder/internal/solver"
)

// Subdirectory consulted alongside every platform subdirectory.
const noarchSubdir = "noarch"

// Produces solvers bound to this channel.
//
// The package cache for an environment lives under the output folder,
// partitioned by subdirectory so concurrent sessions targeting different
// platforms never share cache entries.
func (ch *Channel) ForEnvironment(subdir, prefix, outputFolder string) (solver.Solver, *solver.Cache, error) {
	cache, err := solver.NewCache(filepath.Join(outputFolder, "cache", subdir))
	if err != nil {
		return nil, nil, err
	}
	return &greedySolver{channel: ch, subdir: subdir, prefix: prefix}, cache, nil
}

// Resolves specs greedily against one channel subdirectory plus noarch.
type greedySolver struct {
	channel *Channel
	subdir  string
	prefix  string
}

// Solves the given constraints.
//
// Constraints are accumulated per package name. Each queued name gets the
// highest version (then build number) satisfying everything known about
// it, and the chosen package's dependencies are queued in turn. A name
// with no satisfying candidate, or a later constraint contradicting an
// already-chosen package, fails the solve.
func (s *greedySolver) Solve(ctx context.Context, specs []string, caches []*solver.Cache) (solver.Transaction, error) {
	constraints := make(map[string][]*matchSpec)
	var queue []string

	// Names are re-queued on every new constraint so a later constraint
	// against an already-chosen package is still verified.
	add := func(text string) error {
		spec, err := parseMatchSpec(text)
		if err != nil {
			return err
		}
		queue = append(queue, spec.name)
		constraints[spec.name] = append(constraints[spec.name], spec)
		return nil
	}

	for _, text := range specs {
		if err := add(text); err != nil {
			return nil, err
		}
	}

	chosen := make(map[string]*packageEntry)
	var order []string

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := queue[0]
		queue = queue[1:]

		if p, done := chosen[name]; done {
			if err := s.check(p, constraints[name]); err != nil {
				return nil, err
			}
			continue
		}

		best, err := s.pick(name, constraints[name])
		if err != nil {
			return nil, err
		}
		chosen[name] = best
		order = append(order, name)

		for _, dep := range best.Depends {
			if err := add(dep); err != nil {
				return nil, err
			}
		}
	}

	installs := make([]solver.Install, 0, len(order))
	for _, name := range order {
		p := chosen[name]
		installs = append(installs, solver.Install{
			Name:        p.Name,
			Version:     p.Version,
			BuildString: p.Build,
			Channel:     s.channel.Name + "/" + p.Subdir,
		})
	}

	slog.Debug("solved environment", "subdir", s.subdir, "specs", len(specs), "installs", len(installs))

	var cache *solver.Cache
	if len(caches) > 0 {
		cache = caches[0]
	}

	return &transaction{
		id:       uuid.New(),
		channel:  s.channel,
		cache:    cache,
		installs: installs,
		chosen:   chosen,
	}, nil
}

// Picks the best candidate for a name under the accumulated constraints.
func (s *greedySolver) pick(name string, constraints []*matchSpec) (*packageEntry, error) {
	var best *packageEntry
	for _, subdir := range []string{s.subdir, noarchSubdir} {
		entries, err := s.channel.packages(subdir)
		if err != nil {
			return nil, err
		}

	candidates:
		for _, p := range entries {
			if p.Name != name {
				continue
			}
			for _, c := range constraints {
				if !c.matches(p) {
					continue candidates
				}
			}
			if best == nil || better(p, best) {
				best = p
			}
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no package satisfies %s", describe(name, constraints))
	}
	return best, nil
}

// Verifies an already-chosen package against newly accumulated
// constraints.
func (s *greedySolver) check(p *packageEntry, constraints []*matchSpec) error {
	for _, c := range constraints {
		if !c.matches(p) {
			return fmt.Errorf("chosen %s=%s=%s conflicts with %s", p.Name, p.Version, p.Build, describe(p.Name, constraints))
		}
	}
	return nil
}

func better(a, b *packageEntry) bool {
	if c := compareVersions(a.Version, b.Version); c != 0 {
		return c > 0
	}
	return a.BuildNumber > b.BuildNumber
}

func describe(name string, constraints []*matchSpec) string {
	text := name
	for _, c := range constraints {
		for _, cl := range c.clauses {
			text += " " + cl.op + cl.version
		}
	}
	return text
}

// The result of one greedy solve.
type transaction struct {
	id       uuid.UUID
	channel  *Channel
	cache    *solver.Cache
	installs []solver.Install
	chosen   map[string]*packageEntry
}

// Returns the installs of this transaction. A local-channel solve never
// removes anything.
func (t *transaction) Materialize() ([]string, []solver.Install, string, error) {
	return nil, t.installs, "transaction " + t.id.String(), nil
}

// Copies each chosen package's extracted directory from the channel into
// the package cache. Already-cached packages are skipped. A package
// missing from the channel directory fails the whole transaction.
func (t *transaction) FetchExtractPackages(ctx context.Context) error {
	if t.cache == nil {
		return fmt.Errorf("transaction %s has no package cache", t.id)
	}

	for _, install := range t.installs {
		if err := ctx.Err(); err != nil {
			return err
		}

		id := install.Identity()
		if t.cache.Contains(id) {
			continue
		}

		src := t.channel.packageDir(t.chosen[install.Name].Subdir, id)
		if _, err := os.Stat(src); err != nil {
			return fmt.Errorf("package %s not present in channel: %w", id.Triplet(), err)
		}

		dst := t.cache.PackageDir(id)
		if err := os.CopyFS(dst, os.DirFS(src)); err != nil {
			return fmt.Errorf("extract %s: %w", id.Triplet(), err)
		}
	}
	return nil
}
