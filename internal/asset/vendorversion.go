// The vendor's per-version manifest and its OS/arch rule evaluation,
// per spec §3 "Version JSON (base)". Grounded directly on the teacher's
// internals/minecraft package (rules.go, libraries.go,
// launcher-manifest.go), generalized so the classifier expansion
// (${arch} -> 32/64) spec §4.2.1 requires is implemented, which the
// teacher's own Libraries.Required never did.
package asset

import (
	"encoding/json"
	"runtime"
	"strings"
)

// Rule decides whether an argument or library applies to the host
// OS/arch, per spec §4.2.1.
type Rule struct {
	Action   string          `json:"action"`
	OS       RuleOS          `json:"os"`
	Features map[string]bool `json:"features"`
}

type RuleOS struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Arch    string `json:"arch"`
}

// matches reports whether this rule's os/feature conditions are met on
// the given host; it says nothing about allow/disallow. A rule with no
// conditions at all matches every host.
func (r Rule) matches(goos, arch string) bool {
	if goos == "darwin" {
		goos = "osx"
	}
	switch arch {
	case "amd64", "x86_64":
		arch = "x64"
	case "386", "i386":
		arch = "x86"
	case "arm":
		arch = "arm32"
	}

	if len(r.Features) != 0 {
		// feature-gated rules (is_demo_user, has_custom_resolution, ...)
		// describe launch-time options this module never sets, so they
		// never match.
		return false
	}
	if r.OS.Name != "" && r.OS.Name != goos {
		return false
	}
	if r.OS.Arch != "" && r.OS.Arch != arch {
		return false
	}
	if r.OS.Version != "" {
		return false // regex version matching not supported, treat as non-matching
	}
	return true
}

// rulesAllow evaluates a rules list the way the vanilla launcher does:
// the last matching rule's action wins, and non-matching rules are
// no-ops rather than resetting the result. An empty list always
// allows; a non-empty list defaults to disallow until a rule matches.
func rulesAllow(rules []Rule, goos, arch string) bool {
	if len(rules) == 0 {
		return true
	}
	allow := false
	for _, r := range rules {
		if r.matches(goos, arch) {
			allow = r.Action == "allow"
		}
	}
	return allow
}

// platformWord returns "32" or "64" for ${arch} expansion in natives
// classifiers, per spec §4.2.1.
func platformWord() string {
	if strings.Contains(runtime.GOARCH, "64") {
		return "64"
	}
	return "32"
}

// nativesClassifierOS maps runtime.GOOS to the classifier key vendor
// manifests use inside a library's natives table.
func nativesClassifierOS() string {
	switch runtime.GOOS {
	case "darwin":
		return "osx"
	default:
		return runtime.GOOS
	}
}

// VendorArtifact is a downloadable jar descriptor within a Lib.
type VendorArtifact struct {
	Path string      `json:"path"`
	Sha1 string      `json:"sha1"`
	Size json.Number `json:"size"`
	URL  string      `json:"url"`
}

// Lib is one library entry from a version JSON's libraries array, per
// spec §3.
type Lib struct {
	Name      string `json:"name"`
	Downloads struct {
		Artifact    VendorArtifact            `json:"artifact"`
		Classifiers map[string]VendorArtifact `json:"classifiers"`
	} `json:"downloads"`
	URL     string            `json:"url"`
	Rules   []Rule            `json:"rules"`
	Natives map[string]string `json:"natives"`
}

// Applicable reports whether this library should be included for the
// current host, applying rules then natives classifier expansion, per
// spec §4.2.1.
func (l Lib) Applicable() bool {
	if !rulesAllow(l.Rules, runtime.GOOS, runtime.GOARCH) {
		return false
	}
	if len(l.Natives) != 0 {
		_, ok := l.Natives[nativesClassifierOS()]
		return ok
	}
	return true
}

// classifier resolves the ${arch}-expanded natives classifier for the
// current host, or "" if this library has no natives table.
func (l Lib) classifier() string {
	tmpl, ok := l.Natives[nativesClassifierOS()]
	if !ok {
		return ""
	}
	return strings.ReplaceAll(tmpl, "${arch}", platformWord())
}

// ResolvedArtifact returns the effective artifact to download for this
// library: the natives classifier's artifact when present, else the
// primary artifact.
func (l Lib) ResolvedArtifact() VendorArtifact {
	if c := l.classifier(); c != "" {
		if art, ok := l.Downloads.Classifiers[c]; ok {
			return art
		}
	}
	return l.Downloads.Artifact
}

// AssetIndexRef is the assetIndex block of a version JSON, per spec §3.
type AssetIndexRef struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Sha1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize"`
}

// ClientDownload is the downloads.client block of a version JSON.
type ClientDownload struct {
	Sha1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// LoggingClientFile is the logging.client.file block of a version JSON.
type LoggingClientFile struct {
	ID   string `json:"id"`
	Sha1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// VersionJSON is the vendor's per-version manifest, per spec §3.
type VersionJSON struct {
	ID           string        `json:"id"`
	InheritsFrom string        `json:"inheritsFrom"`
	MainClass    string        `json:"mainClass"`
	AssetIndex   AssetIndexRef `json:"assetIndex"`
	Downloads    struct {
		Client ClientDownload `json:"client"`
	} `json:"downloads"`
	Libraries []Lib `json:"libraries"`
	Logging   struct {
		Client struct {
			File LoggingClientFile `json:"file"`
		} `json:"client"`
	} `json:"logging"`
}

// RequiredLibraries returns the libraries applicable to the current
// host.
func (v VersionJSON) RequiredLibraries() []Lib {
	out := make([]Lib, 0, len(v.Libraries))
	for _, l := range v.Libraries {
		if l.Applicable() {
			out = append(out, l)
		}
	}
	return out
}

// AssetIndexDocument is `objects: {logical_name -> {hash, size}}`, per
// spec §3.
type AssetIndexDocument struct {
	Objects map[string]AssetObject `json:"objects"`
}

// AssetObject is one entry of an asset index, per spec §3.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// ObjectPath returns the <hash[0:2]>/<hash> path fragment used both for
// the on-disk object store and the CDN URL, per spec §3.
func (a AssetObject) ObjectPath() string {
	return a.Hash[:2] + "/" + a.Hash
}
