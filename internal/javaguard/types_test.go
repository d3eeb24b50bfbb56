package javaguard

import "testing"

func TestRangeForMinecraftVersion(t *testing.T) {
	tests := []struct {
		name                          string
		major, minor, patch          int
		wantRange                    string
		wantMajor                    int
	}{
		{"legacy 1.12", 1, 12, 2, "8.x", 8},
		{"1.16.5 still legacy", 1, 16, 5, "8.x", 8},
		{"1.17 requires 17", 1, 17, 0, ">=17.x", 17},
		{"1.18 requires 17", 1, 18, 2, ">=17.x", 17},
		{"1.20.4 still 17", 1, 20, 4, ">=17.x", 17},
		{"1.20.5 requires 21", 1, 20, 5, ">=21.x", 21},
		{"1.20.6 requires 21", 1, 20, 6, ">=21.x", 21},
		{"1.21 requires 21", 1, 21, 0, ">=21.x", 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotRange, gotMajor := RangeForMinecraftVersion(tt.major, tt.minor, tt.patch)
			if gotRange != tt.wantRange {
				t.Errorf("range = %q, want %q", gotRange, tt.wantRange)
			}
			if gotMajor != tt.wantMajor {
				t.Errorf("major = %d, want %d", gotMajor, tt.wantMajor)
			}
		})
	}
}

func TestDefaultDistribution(t *testing.T) {
	tests := []struct {
		goos string
		want Distribution
	}{
		{"darwin", DistributionCorretto},
		{"linux", DistributionAdoptium},
		{"windows", DistributionAdoptium},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			if got := DefaultDistribution(tt.goos); got != tt.want {
				t.Errorf("DefaultDistribution(%q) = %v, want %v", tt.goos, got, tt.want)
			}
		})
	}
}

func TestSemVerString(t *testing.T) {
	s := SemVer{Major: 17, Minor: 0, Patch: 9}
	if got, want := s.String(), "17.0.9"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
