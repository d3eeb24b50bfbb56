package javaguard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"runtime"

	"github.com/minepkg/launchcore/internal/asset"
	"github.com/minepkg/launchcore/internal/fsutil"
)

// AdoptiumAPI is the Eclipse Adoptium (successor to AdoptOpenJDK)
// release metadata endpoint, generalized from the teacher's fixed
// AdoptOpenJDK v3 URL and feature-version-8 default into a
// caller-supplied major version.
const AdoptiumAPI = "https://api.adoptium.net/v3"

// AdoptiumRequest parameterizes a latest-release lookup, per spec
// §4.4's remote metadata query.
type AdoptiumRequest struct {
	FeatureVersion int
	Architecture   string
	OS             string
	ImageType      string
	JVMImpl        string
	// DataDir is the launcher's data root, used to build the returned
	// asset's install Path (<data>/runtime/<arch>/<name>).
	DataDir string
}

// adoptiumAllowedOS and adoptiumAllowedArch are the platform values
// spec §4.4 restricts a picked Adoptium binary to.
var (
	adoptiumAllowedOS   = map[string]bool{"windows": true, "mac": true, "linux": true}
	adoptiumAllowedArch = map[string]bool{"aarch64": true, "x64": true}
)

// adoptiumRelease is one element of the /v3/assets/latest/<major>/<jvm_impl>
// response: a single binary paired with its release's version block.
type adoptiumRelease struct {
	Binary struct {
		Architecture string `json:"architecture"`
		ImageType    string `json:"image_type"`
		JvmImpl      string `json:"jvm_impl"`
		Os           string `json:"os"`
		Package      struct {
			Checksum string `json:"checksum"`
			Link     string `json:"link"`
			Name     string `json:"name"`
			Size     int64  `json:"size"`
		} `json:"package"`
	} `json:"binary"`
	Version struct {
		Major int `json:"major"`
	} `json:"version"`
}

// AdoptiumClient queries Adoptium for a JDK/JRE build matching a
// feature version and current platform, producing an asset.Asset ready
// for the download engine.
type AdoptiumClient struct {
	HTTP *http.Client
}

// NewAdoptiumClient builds a client using http.DefaultClient.
func NewAdoptiumClient() *AdoptiumClient {
	return &AdoptiumClient{HTTP: http.DefaultClient}
}

// FindAsset resolves the current Adoptium build for req.FeatureVersion,
// defaulting unset fields the way the teacher's getAssets does (hotspot
// JVM, jdk image, host OS/arch), per spec §4.4:
// GET /v3/assets/latest/<major>/hotspot?vendor=eclipse, then pick the
// entry matching version.major, an allowed binary.os, image_type=jdk,
// and an allowed binary.architecture.
func (c *AdoptiumClient) FindAsset(ctx context.Context, req AdoptiumRequest) (asset.Asset, error) {
	if req.Architecture == "" {
		req.Architecture = adoptiumArch(runtime.GOARCH)
	}
	if req.OS == "" {
		req.OS = adoptiumOS()
	}
	if req.JVMImpl == "" {
		req.JVMImpl = "hotspot"
	}
	if req.ImageType == "" {
		req.ImageType = "jdk"
	}
	if req.FeatureVersion == 0 {
		req.FeatureVersion = 8
	}

	params := url.Values{}
	params.Add("vendor", "eclipse")

	endpoint := fmt.Sprintf("%s/assets/latest/%d/%s?%s", AdoptiumAPI, req.FeatureVersion, req.JVMImpl, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return asset.Asset{}, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return asset.Asset{}, fmt.Errorf("javaguard: adoptium request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return asset.Asset{}, fmt.Errorf("javaguard: adoptium returned status %d", resp.StatusCode)
	}

	var releases []adoptiumRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return asset.Asset{}, fmt.Errorf("javaguard: decode adoptium response: %w", err)
	}

	for _, r := range releases {
		if r.Version.Major != req.FeatureVersion {
			continue
		}
		if !adoptiumAllowedOS[r.Binary.Os] || r.Binary.ImageType != req.ImageType || !adoptiumAllowedArch[r.Binary.Architecture] {
			continue
		}
		if r.Binary.Os != req.OS || r.Binary.Architecture != req.Architecture {
			continue
		}
		pkg := r.Binary.Package
		return asset.Asset{
			ID:   pkg.Name,
			URL:  pkg.Link,
			Size: pkg.Size,
			Hash: asset.Hash{Algorithm: fsutil.SHA256, Digest: pkg.Checksum},
			Path: filepath.Join(req.DataDir, "runtime", req.Architecture, pkg.Name),
		}, nil
	}

	return asset.Asset{}, fmt.Errorf("javaguard: no adoptium build for feature version %d", req.FeatureVersion)
}

// adoptiumArch maps Go's GOARCH names to Adoptium's architecture
// vocabulary, per the teacher's archMap.
func adoptiumArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x64"
	case "arm64":
		return "aarch64"
	case "386":
		return "x86"
	default:
		return goarch
	}
}

// adoptiumOS maps runtime.GOOS to Adoptium's OS vocabulary. Alpine
// hosts still classify as "linux": Adoptium's binary.os field only
// ever takes the values in adoptiumAllowedOS, and "alpine-linux" isn't
// one of them.
func adoptiumOS() string {
	switch runtime.GOOS {
	case "darwin":
		return "mac"
	case "android", "linux":
		return "linux"
	default:
		return runtime.GOOS
	}
}
