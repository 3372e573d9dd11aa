package resolve

import (
	"reflect"
	"testing"
)

func TestExpandVariantsCrossProduct(t *testing.T) {
	matrix := map[string][]string{
		"python": {"3.10", "3.11"},
		"numpy":  {"1.26", "2.0"},
	}

	variants, differentiating := ExpandVariants(matrix, []string{"python", "numpy"})
	if len(variants) != 4 {
		t.Fatalf("len(variants) = %d, want 4", len(variants))
	}

	// Keys iterate in sorted order, so numpy varies slowest.
	want := []map[string]string{
		{"numpy": "1.26", "python": "3.10"},
		{"numpy": "1.26", "python": "3.11"},
		{"numpy": "2.0", "python": "3.10"},
		{"numpy": "2.0", "python": "3.11"},
	}
	if !reflect.DeepEqual(variants, want) {
		t.Fatalf("variants = %v", variants)
	}
	if !reflect.DeepEqual(differentiating, []string{"numpy", "python"}) {
		t.Fatalf("differentiating = %v", differentiating)
	}
}

func TestExpandVariantsIgnoresUnusedKeys(t *testing.T) {
	matrix := map[string][]string{
		"python": {"3.10", "3.11"},
		"rust":   {"1.75"},
	}

	variants, _ := ExpandVariants(matrix, []string{"rust"})
	if len(variants) != 1 {
		t.Fatalf("len(variants) = %d, want 1: python is not observed", len(variants))
	}
	if variants[0]["rust"] != "1.75" {
		t.Fatalf("variants = %v", variants)
	}
}

func TestExpandVariantsGlobalKeys(t *testing.T) {
	matrix := map[string][]string{
		"target_platform":    {"linux-64", "osx-arm64"},
		"c_compiler":         {"gcc"},
		"c_compiler_version": {"11"},
	}

	variants, differentiating := ExpandVariants(matrix, nil)
	if len(variants) != 2 {
		t.Fatalf("len(variants) = %d, want one per target platform", len(variants))
	}
	for _, v := range variants {
		if v["c_compiler"] != "gcc" || v["c_compiler_version"] != "11" {
			t.Fatalf("compiler keys missing from %v", v)
		}
	}
	if !reflect.DeepEqual(differentiating, []string{"target_platform"}) {
		t.Fatalf("differentiating = %v", differentiating)
	}
}

func TestExpandVariantsEmptyMatrix(t *testing.T) {
	variants, differentiating := ExpandVariants(nil, []string{"python"})
	if len(variants) != 1 || len(variants[0]) != 0 {
		t.Fatalf("variants = %v, want one empty assignment", variants)
	}
	if len(differentiating) != 0 {
		t.Fatalf("differentiating = %v, want none", differentiating)
	}
}
