package javaguard

import "testing"

func TestParseJavaRuntimeVersion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *SemVer
	}{
		{"legacy java 8", "1.8.0_351", &SemVer{Major: 8, Minor: 0, Patch: 351}},
		{"legacy java 8 with build", "1.8.0_292-b10", &SemVer{Major: 8, Minor: 0, Patch: 292}},
		{"modern java 17 with LTS suffix", "17.0.6+9-LTS-190", &SemVer{Major: 17, Minor: 0, Patch: 6}},
		{"modern java 21", "21.0.1", &SemVer{Major: 21, Minor: 0, Patch: 1}},
		{"garbage", "not-a-version", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseJavaRuntimeVersion(tt.input)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseJavaRuntimeVersion(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("ParseJavaRuntimeVersion(%q) = %+v, want %+v", tt.input, *got, *tt.want)
			}
		})
	}
}

func TestSatisfiesRange(t *testing.T) {
	tests := []struct {
		name      string
		sv        SemVer
		rangeExpr string
		want      bool
	}{
		{"8.x matches java 8", SemVer{8, 0, 352}, "8.x", true},
		{"8.x rejects java 17", SemVer{17, 0, 6}, "8.x", false},
		{">=17.x matches java 17", SemVer{17, 0, 6}, ">=17.x", true},
		{">=17.x matches java 21", SemVer{21, 0, 1}, ">=17.x", true},
		{">=17.x rejects java 8", SemVer{8, 0, 352}, ">=17.x", false},
		{">=21.x rejects java 17", SemVer{17, 0, 6}, ">=21.x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SatisfiesRange(tt.sv, tt.rangeExpr)
			if err != nil {
				t.Fatalf("SatisfiesRange() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SatisfiesRange(%v, %q) = %v, want %v", tt.sv, tt.rangeExpr, got, tt.want)
			}
		})
	}
}

func TestFilterByRange(t *testing.T) {
	candidates := []Candidate{
		{
			Details:    Details{Path: "/usr/lib/jvm/jdk-17/bin/java", SemVer: SemVer{17, 0, 6}, SemVerString: "17.0.6"},
			Properties: map[string]interface{}{"sun.arch.data.model": "64", "os.arch": "amd64"},
		},
		{
			// 32-bit candidate, must be dropped
			Details:    Details{Path: "/usr/lib/jvm/jdk-17-32/bin/java", SemVer: SemVer{17, 0, 6}, SemVerString: "17.0.6"},
			Properties: map[string]interface{}{"sun.arch.data.model": "32", "os.arch": "x86"},
		},
		{
			// wrong range, must be dropped
			Details:    Details{Path: "/usr/lib/jvm/jdk-8/bin/java", SemVer: SemVer{8, 0, 352}, SemVerString: "8.0.352"},
			Properties: map[string]interface{}{"sun.arch.data.model": "64", "os.arch": "amd64"},
		},
	}

	got, err := FilterByRange(candidates, ">=17.x", "amd64")
	if err != nil {
		t.Fatalf("FilterByRange() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("FilterByRange() returned %d candidates, want 1", len(got))
	}
	if got[0].Path != "/usr/lib/jvm/jdk-17/bin/java" {
		t.Errorf("FilterByRange() kept %q, want the 64-bit jdk-17 path", got[0].Path)
	}
}

func TestFilterByRange_arm64RequiresAarch64(t *testing.T) {
	candidates := []Candidate{
		{
			Details:    Details{Path: "/jvm/17", SemVer: SemVer{17, 0, 0}, SemVerString: "17.0.0"},
			Properties: map[string]interface{}{"sun.arch.data.model": "64", "os.arch": "amd64"},
		},
		{
			Details:    Details{Path: "/jvm/17-arm", SemVer: SemVer{17, 0, 0}, SemVerString: "17.0.0"},
			Properties: map[string]interface{}{"sun.arch.data.model": "64", "os.arch": "aarch64"},
		},
	}

	got, err := FilterByRange(candidates, ">=17.x", "arm64")
	if err != nil {
		t.Fatalf("FilterByRange() error = %v", err)
	}
	if len(got) != 1 || got[0].Path != "/jvm/17-arm" {
		t.Errorf("FilterByRange() on arm64 host = %+v, want only the aarch64 candidate", got)
	}
}

func TestRank(t *testing.T) {
	details := []Details{
		{Path: "/opt/jdk-17/bin/java", SemVer: SemVer{17, 0, 1}},
		{Path: "/opt/jre-21/bin/java", SemVer: SemVer{21, 0, 0}},
		{Path: "/opt/jdk-21/bin/java", SemVer: SemVer{21, 0, 0}},
		{Path: "/opt/jre-17/bin/java", SemVer: SemVer{17, 0, 5}},
	}

	ranked := Rank(details)

	if ranked[0].SemVer.Major != 21 {
		t.Fatalf("Rank()[0].Major = %d, want 21 (highest major first)", ranked[0].SemVer.Major)
	}
	if ranked[0].Path != "/opt/jre-21/bin/java" {
		t.Errorf("Rank()[0].Path = %q, want the non-jdk 21 build to win the tie", ranked[0].Path)
	}
	if ranked[2].SemVer.Patch != 5 {
		t.Errorf("Rank()[2].Patch = %d, want higher patch (17.0.5) before 17.0.1", ranked[2].SemVer.Patch)
	}
}
