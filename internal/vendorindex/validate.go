package vendorindex

import (
	"path"

	"github.com/spf13/afero"

	"github.com/minepkg/launchcore/internal/asset"
	"github.com/minepkg/launchcore/internal/fsutil"
)

// Validate walks the four stages (assets, libraries, client, log
// config) and returns the invalid-asset map, invoking onStageComplete
// after each stage, per spec §4.2.1.
func (p *Processor) Validate(onStageComplete func()) (map[Category][]asset.Asset, error) {
	result := map[Category][]asset.Asset{
		CategoryAssets:    {},
		CategoryLibraries: {},
		CategoryClient:    {},
		CategoryMisc:      {},
	}

	// stage 1: assets
	for logical, obj := range p.assetIndex.Objects {
		_ = logical
		target := path.Join(p.Dirs.Common, "assets", "objects", obj.ObjectPath())
		url := p.Endpoints.AssetCDN + "/" + obj.ObjectPath()
		a := asset.Asset{
			ID:   logical,
			URL:  url,
			Size: obj.Size,
			Hash: asset.Hash{Algorithm: fsutil.SHA1, Digest: obj.Hash},
			Path: target,
		}
		if invalid, err := p.isInvalid(a); err != nil {
			return nil, err
		} else if invalid {
			result[CategoryAssets] = append(result[CategoryAssets], a)
		}
	}
	if onStageComplete != nil {
		onStageComplete()
	}

	// stage 2: libraries
	for _, lib := range p.versionJSON.RequiredLibraries() {
		art := lib.ResolvedArtifact()
		if art.Path == "" {
			continue
		}
		target := path.Join(p.Dirs.Common, "libraries", art.Path)
		size, _ := art.Size.Int64()
		a := asset.Asset{
			ID:   lib.Name,
			URL:  art.URL,
			Size: size,
			Hash: asset.Hash{Algorithm: fsutil.SHA1, Digest: art.Sha1},
			Path: target,
		}
		if invalid, err := p.isInvalid(a); err != nil {
			return nil, err
		} else if invalid {
			result[CategoryLibraries] = append(result[CategoryLibraries], a)
		}
	}
	if onStageComplete != nil {
		onStageComplete()
	}

	// stage 3: client jar
	{
		target := path.Join(p.Dirs.Common, "versions", p.versionJSON.ID, p.versionJSON.ID+".jar")
		a := asset.Asset{
			ID:   p.versionJSON.ID + ".jar",
			URL:  p.versionJSON.Downloads.Client.URL,
			Size: p.versionJSON.Downloads.Client.Size,
			Hash: asset.Hash{Algorithm: fsutil.SHA1, Digest: p.versionJSON.Downloads.Client.Sha1},
			Path: target,
		}
		if invalid, err := p.isInvalid(a); err != nil {
			return nil, err
		} else if invalid {
			result[CategoryClient] = append(result[CategoryClient], a)
		}
	}
	if onStageComplete != nil {
		onStageComplete()
	}

	// stage 4: log config
	{
		file := p.versionJSON.Logging.Client.File
		if file.ID != "" {
			target := path.Join(p.Dirs.Common, "assets", "log_configs", file.ID)
			a := asset.Asset{
				ID:   file.ID,
				URL:  file.URL,
				Size: file.Size,
				Hash: asset.Hash{Algorithm: fsutil.SHA1, Digest: file.Sha1},
				Path: target,
			}
			if invalid, err := p.isInvalid(a); err != nil {
				return nil, err
			} else if invalid {
				result[CategoryMisc] = append(result[CategoryMisc], a)
			}
		}
	}
	if onStageComplete != nil {
		onStageComplete()
	}

	return result, nil
}

// isInvalid reports whether a is missing or its on-disk hash does not
// match, per spec §4.2 ("compute the set of assets that are either
// missing or whose hash does not match").
func (p *Processor) isInvalid(a asset.Asset) (bool, error) {
	exists, err := afero.Exists(p.FS, a.Path)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}
	if a.Hash.Digest == "" {
		return false, nil
	}
	ok, err := fsutil.MatchesHash(p.FS, a.Path, a.Hash.Algorithm, a.Hash.Digest)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// PostDownload is a no-op for the vendor index processor: nothing needs
// finalizing after a successful vendor-asset download, per spec §4.2.1
// (only the distribution index processor has mod-loader finalization).
func (p *Processor) PostDownload() error { return nil }
