// Package vendorindex implements the Vendor Index Processor from spec
// §4.2.1: cached-with-remote-fallback loading of the version manifest,
// per-version JSON and asset index, then a four-stage validate pass
// that emits assets/libraries/client/misc categories. Grounded on the
// teacher's internals/minecraft package for the vendor document shapes
// and internals/downloadmgr for the persist-then-parse discipline.
package vendorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/spf13/afero"

	"github.com/minepkg/launchcore/internal/asset"
	"github.com/minepkg/launchcore/internal/fsutil"
)

// Category is a validate() result bucket, per spec §4.2.1.
type Category string

const (
	CategoryAssets     Category = "assets"
	CategoryLibraries  Category = "libraries"
	CategoryClient     Category = "client"
	CategoryMisc       Category = "misc" // log config
)

// Dirs is the directory layout this processor operates against.
type Dirs struct {
	Common string // <common>
}

// VersionManifestEntry is one entry of the vendor's version list.
type VersionManifestEntry struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// VersionManifest is the top-level `mc/game/version_manifest_v2.json`
// document, per spec §6.
type VersionManifest struct {
	Versions []VersionManifestEntry `json:"versions"`
}

func (m VersionManifest) find(id string) (VersionManifestEntry, bool) {
	for _, v := range m.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return VersionManifestEntry{}, false
}

// Endpoints holds the vendor URLs this processor talks to, defaulted to
// the real Mojang endpoints from spec §6 but overridable for tests.
type Endpoints struct {
	VersionManifestURL string
	AssetCDN           string // e.g. "https://resources.download.minecraft.net"
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		VersionManifestURL: "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json",
		AssetCDN:           "https://resources.download.minecraft.net",
	}
}

// Processor implements the Index Processor contract (init, total
// stages, validate, post-download) for vendor documents, per spec
// §4.2.1.
type Processor struct {
	FS         afero.Fs
	Client     *http.Client
	Dirs       Dirs
	Endpoints  Endpoints
	VersionID  string

	manifest    *VersionManifest
	versionJSON *asset.VersionJSON
	assetIndex  *asset.AssetIndexDocument
}

// New builds a Processor for the given Minecraft version id.
func New(fs afero.Fs, client *http.Client, dirs Dirs, versionID string) *Processor {
	return &Processor{
		FS:        fs,
		Client:    client,
		Dirs:      dirs,
		Endpoints: DefaultEndpoints(),
		VersionID: versionID,
	}
}

// TotalStages declares the four validation stages, per spec §4.2.1.
func (p *Processor) TotalStages() int { return 4 }

// Init loads the version manifest, per-version JSON, and asset index
// using cached-with-remote-fallback discipline, per spec §4.2.1.
func (p *Processor) Init(ctx context.Context) error {
	manifestPath := path.Join(p.Dirs.Common, "..", "version_manifest_v2.json")
	manifestBytes, manifestErr := fetchCachedWithFallback(ctx, p.FS, p.Client, manifestPath, p.Endpoints.VersionManifestURL, "")

	var manifest *VersionManifest
	if manifestErr == nil {
		manifest = &VersionManifest{}
		if err := json.Unmarshal(manifestBytes, manifest); err != nil {
			return fmt.Errorf("vendorindex: parse version manifest: %w", err)
		}
	}

	versionPath := path.Join(p.Dirs.Common, "versions", p.VersionID, p.VersionID+".json")
	versionExists, _ := afero.Exists(p.FS, versionPath)

	if manifest != nil {
		entry, found := manifest.find(p.VersionID)
		if !found {
			// "manifest is reachable but the requested version id is not
			// listed: fatal" (spec §4.2.1)
			return fmt.Errorf("vendorindex: version %q not found in manifest", p.VersionID)
		}
		versionBytes, err := fetchCachedWithFallback(ctx, p.FS, p.Client, versionPath, entry.URL, "")
		if err != nil {
			return fmt.Errorf("vendorindex: load version json: %w", err)
		}
		vj := &asset.VersionJSON{}
		if err := json.Unmarshal(versionBytes, vj); err != nil {
			return fmt.Errorf("vendorindex: parse version json: %w", err)
		}
		p.versionJSON = vj
	} else {
		if !versionExists {
			// "manifest is unreachable AND no local per-version JSON
			// exists: fatal" (spec §4.2.1)
			return fmt.Errorf("vendorindex: version manifest unreachable and no cached %s", versionPath)
		}
		versionBytes, err := afero.ReadFile(p.FS, versionPath)
		if err != nil {
			return err
		}
		vj := &asset.VersionJSON{}
		if err := json.Unmarshal(versionBytes, vj); err != nil {
			return fmt.Errorf("vendorindex: parse cached version json: %w", err)
		}
		p.versionJSON = vj
	}
	p.manifest = manifest

	assetIndexPath := path.Join(p.Dirs.Common, "assets", "indexes", p.versionJSON.AssetIndex.ID+".json")
	assetIndexBytes, err := fetchCachedWithFallback(ctx, p.FS, p.Client, assetIndexPath, p.versionJSON.AssetIndex.URL, p.versionJSON.AssetIndex.Sha1)
	if err != nil {
		return fmt.Errorf("vendorindex: load asset index: %w", err)
	}
	aidx := &asset.AssetIndexDocument{}
	if err := json.Unmarshal(assetIndexBytes, aidx); err != nil {
		return fmt.Errorf("vendorindex: parse asset index: %w", err)
	}
	p.assetIndex = aidx

	return nil
}

// fetchCachedWithFallback implements spec §4.2.1's cached-with-remote-
// fallback discipline: if a local copy exists and (when a hash is
// known) matches, use it; otherwise fetch remote, persist, then use it.
func fetchCachedWithFallback(ctx context.Context, fs afero.Fs, client *http.Client, localPath, remoteURL, expectedSha1 string) ([]byte, error) {
	if exists, _ := afero.Exists(fs, localPath); exists {
		if expectedSha1 == "" {
			return afero.ReadFile(fs, localPath)
		}
		if ok, _ := fsutil.MatchesHash(fs, localPath, fsutil.SHA1, expectedSha1); ok {
			return afero.ReadFile(fs, localPath)
		}
	}

	if remoteURL == "" {
		return nil, fmt.Errorf("vendorindex: no remote URL and no usable local copy at %s", localPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vendorindex: fetching %s: status %d", remoteURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if err := fsutil.AtomicWrite(fs, localPath, bytes.NewReader(body)); err != nil {
		return nil, err
	}

	return body, nil
}
