package index

import "testing"

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.1", -1},
		{"1.2.3", "1.2.10", -1},
		{"2.0", "1.9.9", 1},
		{"1.0", "1.0.0", 0},
		{"1.0.1", "1.0", 1},
		{"2.0a0", "2.0", -1},
		{"2.0a0", "2.0b0", -1},
		{"2.0rc1", "2.0rc2", -1},
		{"1.0_1", "1.0.1", 0},
		{"1.0-2", "1.0.1", 1},
		{"1.1.1h", "1.1.1", -1},
		{"1.1.1h", "1.1.1i", -1},
		{"10.0", "9.0", 1},
	}

	for _, tt := range tests {
		got := compareVersions(tt.a, tt.b)
		if sign(got) != tt.want {
			t.Errorf("compareVersions(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
