// Package javaguard discovers, introspects, filters, ranks, and installs
// Java runtimes. It generalizes the teacher's internals/java package
// (which only ever fetched a fixed AdoptOpenJDK "8-jre-openj9" build)
// into the full discovery + semver-range + multi-distribution pipeline
// spec.md §4.4 describes.
package javaguard

import "fmt"

// SemVer is the {major, minor, patch} triple derived from a JVM's
// java.version property (spec §3 "JVM Details").
type SemVer struct {
	Major int
	Minor int
	Patch int
}

// String renders "{major}.{minor}.{patch}" for range matching.
func (s SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", s.Major, s.Minor, s.Patch)
}

// Details is the introspected description of one candidate JVM
// installation (spec §3 "JVM Details").
type Details struct {
	Path         string
	Vendor       string
	SemVer       SemVer
	SemVerString string
}

// Describe renders a one-line human summary, used by cmdlog progress
// output the way the teacher formats its own human-readable counters.
func (d Details) Describe() string {
	return fmt.Sprintf("%s (%s) at %s", d.SemVerString, d.Vendor, d.Path)
}

// Distribution identifies a remote JDK distribution source.
type Distribution string

const (
	DistributionAdoptium Distribution = "adoptium"
	DistributionCorretto Distribution = "corretto"
)

// DefaultDistribution returns Corretto on macOS, Adoptium elsewhere,
// per spec §4.4.
func DefaultDistribution(goos string) Distribution {
	if goos == "darwin" {
		return DistributionCorretto
	}
	return DistributionAdoptium
}

// RangeForMinecraftVersion returns the semver range string and the
// major Java version heuristic implied by a given Minecraft version,
// per spec §4.4's default-range table ("≥1.20.5 → >=21.x", "≥1.17 →
// >=17.x", else "8.x").
func RangeForMinecraftVersion(major, minor, patch int) (rangeExpr string, wantMajor int) {
	switch {
	case major == 1 && (minor > 20 || (minor == 20 && patch >= 5)):
		return ">=21.x", 21
	case major == 1 && minor >= 17:
		return ">=17.x", 17
	default:
		return "8.x", 8
	}
}
