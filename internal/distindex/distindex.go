// Package distindex implements the Distribution Index Processor from
// spec §4.2.2: a depth-first walk of a Server's module tree that emits
// invalid assets keyed by md5, plus post-download finalization that
// extracts a mod-loader's overlay version.json. Grounded on the
// teacher's internals/instances (dependency resolution walking a lock
// tree) and pkg/manifest (module/artifact JSON shapes), generalized to
// the launcher-distribution Module/Server model instead of minepkg's
// package-manager lockfile.
package distindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"

	"github.com/minepkg/launchcore/internal/asset"
	"github.com/minepkg/launchcore/internal/fsutil"
)

// legacyForgeCap is the Forge version strictly above which (or at
// Minecraft >= 1.13) the mod-loader overlay is read from a sibling
// VersionManifest sub-module instead of being extracted from the
// installer jar, per spec §4.2.2. Forge's 4-component
// major.minor.patch.build scheme is represented here as a semver
// prerelease ("14.23.5-2847") so Masterminds/semver/v3 can parse and
// compare it: semver's numeric-prerelease ordering rules give exactly
// the component-wise comparison Forge's own versioning intends.
var legacyForgeCap = semver.MustParse("14.23.5-2847")

// Processor implements the Index Processor contract for a
// distribution's module tree, per spec §4.2.2.
type Processor struct {
	FS     afero.Fs
	Dirs   asset.Dirs
	Server *asset.Server
}

// New builds a Processor for the selected server. The distribution
// document itself is loaded by the orchestrator, per spec §4.2.2
// ("Init is a no-op; the distribution document is loaded by the
// orchestrator").
func New(fs afero.Fs, dirs asset.Dirs, server *asset.Server) *Processor {
	for _, m := range server.Modules {
		m.SetServerID(server.ID)
	}
	return &Processor{FS: fs, Dirs: dirs, Server: server}
}

// Init is a no-op, per spec §4.2.2.
func (p *Processor) Init(ctx context.Context) error { return nil }

// TotalStages declares the single stage this processor contributes,
// per spec §4.2.2.
func (p *Processor) TotalStages() int { return 1 }

// Validate walks the server's module tree depth-first and emits an
// Asset (algorithm md5) for every module whose expected path is missing
// or whose hash does not match, per spec §4.2.2.
func (p *Processor) Validate(onStageComplete func()) (map[string][]asset.Asset, error) {
	invalid := make([]asset.Asset, 0)
	var walkErr error

	p.Server.Walk(func(m *asset.Module) {
		if walkErr != nil {
			return
		}
		modPath, err := m.ResolvePath(p.Dirs)
		if err != nil {
			walkErr = err
			return
		}
		a := asset.Asset{
			ID:   m.ID,
			URL:  m.Artifact.URL,
			Size: m.Artifact.Size,
			Hash: asset.Hash{Algorithm: fsutil.MD5, Digest: strings.ToLower(m.Artifact.MD5)},
			Path: modPath,
		}
		ok, err := isValid(p.FS, a)
		if err != nil {
			walkErr = err
			return
		}
		if !ok {
			invalid = append(invalid, a)
		}
	})

	if walkErr != nil {
		return nil, walkErr
	}
	if onStageComplete != nil {
		onStageComplete()
	}

	return map[string][]asset.Asset{"modules": invalid}, nil
}

func isValid(fs afero.Fs, a asset.Asset) (bool, error) {
	exists, err := afero.Exists(fs, a.Path)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	if a.Hash.Digest == "" {
		return true, nil
	}
	return fsutil.MatchesHash(fs, a.Path, a.Hash.Algorithm, a.Hash.Digest)
}

// PostDownload extracts a present mod-loader module's overlay
// version.json into <common>/versions/<id>/<id>.json, per spec §4.2.2.
// Two cases: Fabric, or Forge on Minecraft >= 1.13 or with a Forge
// version strictly greater than the legacy cap, read the overlay from a
// sibling VersionManifest sub-module already on disk; otherwise it is
// extracted from the entry version.json inside the Forge installer
// archive.
func (p *Processor) PostDownload() error {
	loader := findModLoader(p.Server.Modules)
	if loader == nil {
		return nil
	}

	usesSiblingManifest := loader.Type == asset.TypeFabric || (loader.Type == asset.TypeForge && p.usesModernForgeOverlay(loader))

	if usesSiblingManifest {
		return p.finalizeFromSibling(loader)
	}
	return p.finalizeFromInstallerArchive(loader)
}

func findModLoader(mods []*asset.Module) *asset.Module {
	for _, m := range mods {
		switch m.Type {
		case asset.TypeForge, asset.TypeForgeHosted, asset.TypeFabric:
			return m
		}
		if found := findModLoader(m.SubModules); found != nil {
			return found
		}
	}
	return nil
}

func (p *Processor) usesModernForgeOverlay(loader *asset.Module) bool {
	mcMajor, mcMinor, _ := parseMCVersion(p.Server.MinecraftVersion)
	if mcMajor == 1 && mcMinor >= 13 {
		return true
	}
	forgeVersion, err := parseForgeVersion(loader.ID)
	if err != nil {
		return false
	}
	return forgeVersion.Compare(legacyForgeCap) > 0
}

func (p *Processor) finalizeFromSibling(loader *asset.Module) error {
	for _, sub := range loader.SubModules {
		if sub.Type != asset.TypeVersionManifest {
			continue
		}
		srcPath, err := sub.ResolvePath(p.Dirs)
		if err != nil {
			return err
		}
		data, err := afero.ReadFile(p.FS, srcPath)
		if err != nil {
			return fmt.Errorf("distindex: read sibling version manifest: %w", err)
		}
		return p.persistOverlay(data)
	}
	return fmt.Errorf("distindex: mod loader %s has no VersionManifest sub-module", loader.ID)
}

func (p *Processor) finalizeFromInstallerArchive(loader *asset.Module) error {
	archivePath, err := loader.ResolvePath(p.Dirs)
	if err != nil {
		return err
	}
	data, err := extractVersionJSONFromZip(archivePath)
	if err != nil {
		return fmt.Errorf("distindex: extract version.json from installer %s: %w", archivePath, err)
	}
	return p.persistOverlay(data)
}

func (p *Processor) persistOverlay(data []byte) error {
	overlay := &asset.VersionJSON{}
	if err := json.Unmarshal(data, overlay); err != nil {
		return fmt.Errorf("distindex: parse overlay version.json: %w", err)
	}
	dest := &asset.Module{Type: asset.TypeVersionManifest, ID: overlay.ID}
	destPath, err := dest.ResolvePath(p.Dirs)
	if err != nil {
		return err
	}
	return fsutil.AtomicWrite(p.FS, destPath, bytes.NewReader(data))
}

func parseMCVersion(v string) (major, minor, patch int) {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) > 0 {
		major, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}
	if len(parts) > 2 {
		patch, _ = strconv.Atoi(parts[2])
	}
	return
}

// parseForgeVersion parses the trailing 4-component Forge version out
// of a module id like "net.minecraftforge:forge:1.12.2-14.23.5.2860"
// into a semver.Version, rewriting the trailing ".build" component as
// a "-build" prerelease so Masterminds/semver/v3 can parse and compare
// it against legacyForgeCap.
func parseForgeVersion(id string) (*semver.Version, error) {
	idx := strings.LastIndexByte(id, '-')
	if idx < 0 {
		return nil, fmt.Errorf("distindex: no forge version suffix in %q", id)
	}
	raw := id[idx+1:]
	parts := strings.Split(raw, ".")
	if len(parts) != 4 {
		return nil, fmt.Errorf("distindex: malformed forge version %q", raw)
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			return nil, fmt.Errorf("distindex: malformed forge version component %q: %w", p, err)
		}
	}
	v, err := semver.NewVersion(strings.Join(parts[:3], ".") + "-" + parts[3])
	if err != nil {
		return nil, fmt.Errorf("distindex: malformed forge version %q: %w", raw, err)
	}
	return v, nil
}
