package javaguard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/minepkg/launchcore/internal/asset"
	"github.com/minepkg/launchcore/internal/fsutil"
)

// correttoBase is Amazon Corretto's stable "latest" alias tree: URLs
// under it 302-redirect to the current build for a given major/arch/os,
// so resolving the real archive is a HEAD request away rather than an
// API call, unlike Adoptium's queryable release index.
const correttoBase = "https://corretto.aws/downloads/latest"

// CorrettoClient resolves the current Amazon Corretto build for a
// major Java version via HEAD-redirect discovery, then fetches the
// published checksum sibling file, per spec §4.4.
type CorrettoClient struct {
	HTTP *http.Client
}

// NewCorrettoClient builds a client using http.DefaultClient.
func NewCorrettoClient() *CorrettoClient {
	return &CorrettoClient{HTTP: http.DefaultClient}
}

// FindAsset resolves the current Corretto JDK archive for majorVersion
// on the host platform.
func (c *CorrettoClient) FindAsset(ctx context.Context, majorVersion int) (asset.Asset, error) {
	archiveURL := fmt.Sprintf("%s/amazon-corretto-%d-%s-%s-jdk.%s",
		correttoBase, majorVersion, correttoArch(runtime.GOARCH), correttoOS(runtime.GOOS), correttoExt(runtime.GOOS))

	resolved, size, err := c.resolveRedirect(ctx, archiveURL)
	if err != nil {
		return asset.Asset{}, fmt.Errorf("javaguard: resolve corretto build: %w", err)
	}

	checksumURL := strings.Replace(archiveURL, "/latest/", "/latest_checksum/", 1)
	digest, err := c.fetchChecksum(ctx, checksumURL)
	if err != nil {
		return asset.Asset{}, fmt.Errorf("javaguard: fetch corretto checksum: %w", err)
	}

	return asset.Asset{
		ID:   filepath.Base(resolved),
		URL:  resolved,
		Size: size,
		Hash: asset.Hash{Algorithm: fsutil.MD5, Digest: digest},
	}, nil
}

// resolveRedirect follows the "latest" alias with a HEAD request and
// returns the final resolved URL and content length, without
// downloading the body.
func (c *CorrettoClient) resolveRedirect(ctx context.Context, aliasURL string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, aliasURL, nil)
	if err != nil {
		return "", 0, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("unexpected status %d resolving %s", resp.StatusCode, aliasURL)
	}
	return resp.Request.URL.String(), resp.ContentLength, nil
}

// fetchChecksum downloads the small "latest_checksum" text file
// Corretto publishes alongside the "latest" alias tree (an md5, not a
// sha256) and returns the trimmed hex digest.
func (c *CorrettoClient) fetchChecksum(ctx context.Context, checksumURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checksumURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching checksum", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	fields := strings.Fields(string(body))
	if len(fields) == 0 {
		return "", fmt.Errorf("empty checksum body")
	}
	return fields[0], nil
}

func correttoArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x64"
	case "arm64":
		return "aarch64"
	default:
		return goarch
	}
}

func correttoOS(goos string) string {
	switch goos {
	case "darwin":
		return "macos"
	default:
		return goos
	}
}

func correttoExt(goos string) string {
	if goos == "windows" {
		return "zip"
	}
	return "tar.gz"
}
