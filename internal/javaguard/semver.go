package javaguard

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	legacyVersionPattern = regexp.MustCompile(`^1\.(\d+)\.(\d+)_(\d+)(-b\d+)?$`)
	modernVersionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)([+.]\d+)?`)
)

// ParseJavaRuntimeVersion parses a java.version property string into a
// SemVer, or returns nil if the string does not match either the legacy
// ("1.8.0_351") or modern ("17.0.6+9-LTS-190") shape. This is a partial
// function by design (spec §8: "Semver parser is a partial function:
// non-matching inputs return null").
func ParseJavaRuntimeVersion(v string) *SemVer {
	if strings.HasPrefix(v, "1.") {
		if m := legacyVersionPattern.FindStringSubmatch(v); m != nil {
			major, _ := strconv.Atoi(m[1])
			minor, _ := strconv.Atoi(m[2])
			patch, _ := strconv.Atoi(m[3])
			return &SemVer{Major: major, Minor: minor, Patch: patch}
		}
		return nil
	}

	if m := modernVersionPattern.FindStringSubmatch(v); m != nil {
		major, _ := strconv.Atoi(m[1])
		minor, _ := strconv.Atoi(m[2])
		patch, _ := strconv.Atoi(m[3])
		return &SemVer{Major: major, Minor: minor, Patch: patch}
	}
	return nil
}

// SatisfiesRange reports whether sv satisfies a standard semver range
// expression (e.g. ">=17.x", "^17.x", "8.x"), using the same
// Masterminds/semver/v3 constraint parser the teacher relies on for its
// own dependency version ranges.
func SatisfiesRange(sv SemVer, rangeExpr string) (bool, error) {
	constraint, err := semver.NewConstraint(rangeExpr)
	if err != nil {
		return false, err
	}
	v, err := semver.NewVersion(sv.String())
	if err != nil {
		return false, err
	}
	return constraint.Check(v), nil
}

// FilterByRange drops any candidate whose semver does not satisfy
// rangeExpr, or whose data model is not 64-bit, or (on ARM64 hosts)
// whose architecture is not aarch64 (spec §4.4 Filtering).
func FilterByRange(candidates []Candidate, rangeExpr string, hostArch string) ([]Details, error) {
	out := make([]Details, 0, len(candidates))
	for _, c := range candidates {
		if c.Properties["sun.arch.data.model"] != "64" {
			continue
		}
		if hostArch == "arm64" && c.Properties["os.arch"] != "aarch64" {
			continue
		}
		if c.Details.SemVer == (SemVer{}) && c.Details.SemVerString == "" {
			continue
		}
		ok, err := SatisfiesRange(c.Details.SemVer, rangeExpr)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c.Details)
		}
	}
	return out, nil
}

// Candidate bundles a Details result with the raw introspected property
// map it was derived from, since filtering needs sun.arch.data.model
// and os.arch which are not part of the exported Details shape.
type Candidate struct {
	Details    Details
	Properties map[string]interface{}
}

// Rank sorts details descending by major, then minor, then patch,
// breaking ties by preferring paths that do not contain "jdk" (prefer
// JRE), per spec §4.4 Ranking. The input slice is sorted in place and
// also returned.
func Rank(details []Details) []Details {
	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i], details[j]
		if a.SemVer.Major != b.SemVer.Major {
			return a.SemVer.Major > b.SemVer.Major
		}
		if a.SemVer.Minor != b.SemVer.Minor {
			return a.SemVer.Minor > b.SemVer.Minor
		}
		if a.SemVer.Patch != b.SemVer.Patch {
			return a.SemVer.Patch > b.SemVer.Patch
		}
		aJdk := strings.Contains(strings.ToLower(a.Path), "jdk")
		bJdk := strings.Contains(strings.ToLower(b.Path), "jdk")
		if aJdk == bJdk {
			return false // tie, stable order preserved
		}
		// non-jdk path wins
		return !aJdk
	})
	return details
}
