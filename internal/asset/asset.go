// Package asset defines the remote-to-local binding at the center of
// the whole download pipeline (spec §3 "Asset"), plus the Maven
// coordinate parsing and Module/Server distribution model (spec §3,
// §6). Grounded on the teacher's internals/minecraft.Artifact/Lib and
// pkg/manifest's DependencyLock, both of which carry a URL/hash/size
// triple bound to a local path; this generalizes the two into one
// shared type used uniformly by both index processors.
package asset

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/minepkg/launchcore/internal/fsutil"
)

// Asset is a remote-to-local binding validated and downloaded by the
// Download Engine.
type Asset struct {
	ID   string
	URL  string
	Size int64
	Hash Hash
	Path string
}

// Hash pairs a content-hash algorithm with its expected digest.
type Hash struct {
	Algorithm fsutil.Algorithm
	Digest    string
}

// Validate checks the invariants from spec §3: size >= 0, digest is
// lower-case hex of the length the algorithm expects.
func (a Asset) Validate() error {
	if a.Size < 0 {
		return fmt.Errorf("asset %s: negative size %d", a.ID, a.Size)
	}
	digest := a.Hash.Digest
	for _, c := range digest {
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') {
			return fmt.Errorf("asset %s: hash digest must be lower-case hex", a.ID)
		}
	}
	wantLen := fsutil.ExpectedLen(a.Hash.Algorithm)
	if wantLen != 0 && len(digest) != wantLen {
		return fmt.Errorf("asset %s: hash digest length %d does not match algorithm %s (want %d)", a.ID, len(digest), a.Hash.Algorithm, wantLen)
	}
	return nil
}

// mavenCoordinate matches group:artifact:version[:classifier][@ext].
var mavenCoordinate = regexp.MustCompile(`^([^:@]+):([^:@]+):([^:@]+)(?::([^:@]+))?(?:@([^:@]+))?$`)

// MavenCoordinate is a parsed group:artifact:version[:classifier][@ext]
// identifier, per spec §6.
type MavenCoordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Extension  string
}

// ParseMavenCoordinate parses id into a MavenCoordinate. Extension
// defaults to "jar" when omitted.
func ParseMavenCoordinate(id string) (*MavenCoordinate, error) {
	m := mavenCoordinate.FindStringSubmatch(id)
	if m == nil {
		return nil, fmt.Errorf("asset: %q is not a valid maven coordinate", id)
	}
	ext := m[5]
	if ext == "" {
		ext = "jar"
	}
	return &MavenCoordinate{
		Group:      m[1],
		Artifact:   m[2],
		Version:    m[3],
		Classifier: m[4],
		Extension:  ext,
	}, nil
}

// Path renders the normalized Maven-layout relative path:
// <group slashed>/<artifact>/<version>/<artifact>-<version>[-classifier].<ext>
func (m MavenCoordinate) Path() string {
	base := strings.Join(strings.Split(m.Group, "."), "/")
	name := fmt.Sprintf("%s-%s", m.Artifact, m.Version)
	if m.Classifier != "" {
		name += "-" + m.Classifier
	}
	name += "." + m.Extension
	return fmt.Sprintf("%s/%s/%s/%s", base, m.Artifact, m.Version, name)
}
