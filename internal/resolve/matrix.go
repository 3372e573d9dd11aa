package resolve

import (
	"slices"
	"strings"
)

// Expands a variant matrix into the assignments applying to one output.
//
// Only matrix keys the output can observe participate: keys among the
// output's variant keys, compiler selectors, and the target platform.
// The result is the cross product of the participating keys' values in
// sorted key order, alongside the keys that actually differentiate the
// variants (those with more than one value).
func ExpandVariants(matrix map[string][]string, usedKeys []string) ([]map[string]string, []string) {
	var keys []string
	for key, values := range matrix {
		if len(values) == 0 {
			continue
		}
		if slices.Contains(usedKeys, key) || variantGlobalKey(key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	variants := []map[string]string{{}}
	for _, key := range keys {
		var next []map[string]string
		for _, base := range variants {
			for _, value := range matrix[key] {
				variant := make(map[string]string, len(base)+1)
				for k, v := range base {
					variant[k] = v
				}
				variant[key] = value
				next = append(next, variant)
			}
		}
		variants = next
	}

	var differentiating []string
	for _, key := range keys {
		if len(matrix[key]) > 1 {
			differentiating = append(differentiating, key)
		}
	}

	return variants, differentiating
}

// Whether a matrix key applies to every output regardless of its
// requirement names.
func variantGlobalKey(key string) bool {
	return key == "target_platform" ||
		strings.HasSuffix(key, "_compiler") ||
		strings.HasSuffix(key, "_compiler_version")
}
