package solver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIdentityTriplet(t *testing.T) {
	id := Identity{Name: "zlib", Version: "1.2.13", BuildString: "h1_0"}
	if got := id.Triplet(); got != "zlib-1.2.13-h1_0" {
		t.Fatalf("Triplet() = %q", got)
	}
}

func TestCacheReadRunExports(t *testing.T) {
	cache, err := NewCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	id := Identity{Name: "libfoo", Version: "2.1.0", BuildString: "h1"}
	if cache.Contains(id) {
		t.Fatalf("empty cache contains %s", id.Triplet())
	}
	if _, found, err := cache.ReadRunExports(id); err != nil || found {
		t.Fatalf("missing package: found=%v err=%v", found, err)
	}

	infoDir := filepath.Join(cache.PackageDir(id), "info")
	if err := os.MkdirAll(infoDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := []byte(`{"weak": ["libfoo >=2.1.0,<3.0a0"], "strong": ["libfoo-abi 2"]}`)
	if err := os.WriteFile(filepath.Join(infoDir, "run_exports.json"), content, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if !cache.Contains(id) {
		t.Fatalf("cache does not contain extracted package")
	}
	exports, found, err := cache.ReadRunExports(id)
	if err != nil || !found {
		t.Fatalf("ReadRunExports: found=%v err=%v", found, err)
	}
	if exports.Empty() {
		t.Fatalf("exports reported empty: %+v", exports)
	}
	if len(exports.Weak) != 1 || len(exports.Strong) != 1 {
		t.Fatalf("exports = %+v", exports)
	}

	// Malformed metadata is an error, not a silent miss.
	if err := os.WriteFile(filepath.Join(infoDir, "run_exports.json"), []byte("{"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := cache.ReadRunExports(id); err == nil {
		t.Fatalf("malformed metadata accepted")
	}
}
