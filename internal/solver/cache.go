package solver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Default permission mode for cache directories.
const cacheDirMode os.FileMode = 0755

// An on-disk package cache.
//
// Each extracted package lives under a directory named by its
// name-version-build triplet, with metadata files under its info/
// subdirectory. The cache is assumed to be exclusively owned by one
// in-flight solve per subdirectory; no locking is performed here.
type Cache struct {
	Dir string // Root directory of the cache.
}

// Creates the cache directory if needed and returns a handle to it.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, cacheDirMode); err != nil {
		return nil, fmt.Errorf("create package cache: %w", err)
	}
	return &Cache{Dir: dir}, nil
}

// Returns the directory an extracted package occupies in the cache.
func (c *Cache) PackageDir(id Identity) string {
	return filepath.Join(c.Dir, id.Triplet())
}

// Whether the package is already extracted into the cache.
func (c *Cache) Contains(id Identity) bool {
	info, err := os.Stat(c.PackageDir(id))
	return err == nil && info.IsDir()
}

// Reads the run-export metadata of an extracted package.
//
// Looks for info/run_exports.json under the package's cache directory.
// A missing file means the package declares no exports and is reported
// via the boolean, not as an error.
func (c *Cache) ReadRunExports(id Identity) (*RunExports, bool, error) {
	path := filepath.Join(c.PackageDir(id), "info", "run_exports.json")

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read run exports for %s: %w", id.Triplet(), err)
	}

	var exports RunExports
	if err := json.Unmarshal(data, &exports); err != nil {
		return nil, false, fmt.Errorf("parse run exports for %s: %w", id.Triplet(), err)
	}
	return &exports, true, nil
}
