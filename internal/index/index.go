package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/adder-build/adder/internal/solver"
)

// One package described by a subdirectory's repodata index.
type packageEntry struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Build       string   `json:"build"`
	BuildNumber int      `json:"build_number"`
	Depends     []string `json:"depends"`
	Subdir      string   `json:"subdir"`
}

// The on-disk shape of a repodata.json file.
type repodata struct {
	Packages map[string]packageEntry `json:"packages"`
}

// A local channel directory.
//
// Each platform subdirectory holds a repodata.json index plus the
// extracted packages it describes, one directory per name-version-build
// triplet. Loaded indexes are memoized per subdirectory.
type Channel struct {
	Root string // Channel directory.
	Name string // Channel name used in resolution provenance.

	mu     sync.Mutex
	loaded map[string][]*packageEntry
}

// Opens a local channel rooted at the given directory.
func OpenChannel(root string) (*Channel, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open channel: %s is not a directory", root)
	}

	return &Channel{
		Root:   root,
		Name:   filepath.Base(root),
		loaded: make(map[string][]*packageEntry),
	}, nil
}

// Returns the packages indexed for a subdirectory. A subdirectory without
// a repodata.json is treated as empty.
func (ch *Channel) packages(subdir string) ([]*packageEntry, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if entries, ok := ch.loaded[subdir]; ok {
		return entries, nil
	}

	data, err := os.ReadFile(filepath.Join(ch.Root, subdir, "repodata.json"))
	if errors.Is(err, fs.ErrNotExist) {
		ch.loaded[subdir] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read repodata for %s: %w", subdir, err)
	}

	var index repodata
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse repodata for %s: %w", subdir, err)
	}

	entries := make([]*packageEntry, 0, len(index.Packages))
	for _, entry := range index.Packages {
		e := entry
		if e.Subdir == "" {
			e.Subdir = subdir
		}
		entries = append(entries, &e)
	}

	ch.loaded[subdir] = entries
	return entries, nil
}

// Returns the directory holding a package's extracted contents in the
// channel.
func (ch *Channel) packageDir(subdir string, id solver.Identity) string {
	return filepath.Join(ch.Root, subdir, id.Triplet())
}
