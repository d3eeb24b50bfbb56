package javaguard

import (
	"archive/tar"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	archiver "github.com/mholt/archiver/v3"
	"github.com/spf13/afero"

	"github.com/minepkg/launchcore/internal/asset"
	"github.com/minepkg/launchcore/internal/downloadengine"
)

// Installer installs a remote JDK/JRE asset into a fixed target
// directory, generalizing the teacher's Java.Update from a single
// hardcoded AdoptOpenJDK build into any asset.Asset from either
// AdoptiumClient or CorrettoClient.
type Installer struct {
	FS     afero.Fs
	Engine *downloadengine.Engine
}

// NewInstaller builds an Installer around the given download engine.
func NewInstaller(fs afero.Fs, engine *downloadengine.Engine) *Installer {
	return &Installer{FS: fs, Engine: engine}
}

// Install downloads jdkAsset and unpacks it into targetDir, replacing
// whatever is already there. Per spec §4.4, zip archives (Windows
// Corretto/Adoptium builds) are extracted via their central directory
// and tar.gz archives (every other platform) are streamed through
// gunzip and a tar extractor; the two formats use unrelated extraction
// mechanisms, so archiveRootDir/extractArchive dispatch on extension
// rather than forcing both through one library. Either way the
// archive's root directory (something like "jdk-21.0.1+12-jre") is
// located first, since mholt/archiver's Unarchive always creates that
// root directory and can't be told not to
// (https://github.com/mholt/archiver/issues/289).
func (i *Installer) Install(ctx context.Context, jdkAsset asset.Asset, targetDir string) error {
	if err := i.FS.RemoveAll(targetDir); err != nil {
		return fmt.Errorf("javaguard: clean target dir: %w", err)
	}
	tmpExtractDir := targetDir + ".tmp"
	i.FS.RemoveAll(tmpExtractDir)

	archivePath, cleanup, err := i.downloadToTemp(ctx, jdkAsset)
	if err != nil {
		return err
	}
	defer cleanup()

	rootDirName, err := archiveRootDir(archivePath)
	if err != nil {
		return fmt.Errorf("javaguard: inspect archive: %w", err)
	}
	if rootDirName == "" {
		return fmt.Errorf("javaguard: archive %s has no root directory", jdkAsset.ID)
	}

	if err := extractArchive(archivePath, tmpExtractDir); err != nil {
		return fmt.Errorf("javaguard: extract archive: %w", err)
	}

	if err := os.Rename(filepath.Join(tmpExtractDir, rootDirName), targetDir); err != nil {
		return fmt.Errorf("javaguard: move extracted root: %w", err)
	}
	if err := i.FS.RemoveAll(tmpExtractDir); err != nil {
		return fmt.Errorf("javaguard: clean tmp extract dir: %w", err)
	}

	return i.writeManifest(jdkAsset, targetDir)
}

// archiveRootDir returns an archive's top-level directory name.
func archiveRootDir(archivePath string) (string, error) {
	if strings.HasSuffix(archivePath, ".tar.gz") {
		return tarGzRootDir(archivePath)
	}
	rootDirName := ""
	err := archiver.Walk(archivePath, func(f archiver.File) error {
		if f.IsDir() {
			rootDirName = f.Name()
			return archiver.ErrStopWalk
		}
		return nil
	})
	return rootDirName, err
}

// extractArchive unpacks an archive into destDir.
func extractArchive(archivePath, destDir string) error {
	if strings.HasSuffix(archivePath, ".tar.gz") {
		return extractTarGz(archivePath, destDir)
	}
	return archiver.Unarchive(archivePath, destDir)
}

// tarGzRootDir reads just far enough into a gzip-compressed tar stream
// to learn its first entry's top-level path segment, per spec §4.4
// ("tar.gz is streamed through gunzip and a tar extractor").
func tarGzRootDir(archivePath string) (string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", err
	}
	defer gz.Close()

	hdr, err := tar.NewReader(gz).Next()
	if err != nil {
		return "", err
	}
	return strings.SplitN(hdr.Name, "/", 2)[0], nil
}

// extractTarGz streams archivePath through gunzip and a tar extractor
// into destDir, entry by entry, per spec §4.4.
func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target := filepath.Join(destDir, hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			_, copyErr := io.Copy(out, tr)
			closeErr := out.Close()
			if copyErr != nil {
				return copyErr
			}
			if closeErr != nil {
				return closeErr
			}
		case tar.TypeSymlink:
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		}
	}
}

// downloadToTemp fetches jdkAsset to a real OS temp file, since
// mholt/archiver needs a path on disk (not an afero handle) to inspect
// and unpack.
func (i *Installer) downloadToTemp(ctx context.Context, jdkAsset asset.Asset) (path string, cleanup func(), err error) {
	// archiver.Walk/Unarchive pick their format from the file
	// extension, so the temp file must carry the archive's real
	// extension rather than a bare random name.
	ext := ".tar.gz"
	if !strings.HasSuffix(jdkAsset.URL, ".tar.gz") {
		ext = filepath.Ext(jdkAsset.URL)
	}
	f, err := os.CreateTemp("", "launchcore-jdk-*"+ext)
	if err != nil {
		return "", nil, err
	}
	tmpPath := f.Name()
	f.Close()

	jdkAsset.Path = tmpPath
	osEngine := &downloadengine.Engine{FS: afero.NewOsFs(), Client: i.Engine.Client, Config: i.Engine.Config}
	if err := osEngine.DownloadOne(ctx, jdkAsset, nil); err != nil {
		os.Remove(tmpPath)
		return "", nil, fmt.Errorf("javaguard: download jdk archive: %w", err)
	}

	return tmpPath, func() { os.Remove(tmpPath) }, nil
}

// installManifest records which asset produced an installed runtime,
// mirroring the teacher's asset.json sidecar file.
type installManifest struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (i *Installer) writeManifest(jdkAsset asset.Asset, targetDir string) error {
	data, err := json.Marshal(installManifest{ID: jdkAsset.ID, URL: jdkAsset.URL})
	if err != nil {
		return err
	}
	return afero.WriteFile(i.FS, filepath.Join(targetDir, "asset.json"), data, 0o644)
}

// ExecutablePath returns the path to the java executable inside an
// installed runtime directory, per-OS layout matching the teacher's
// Java.Bin.
func ExecutablePath(installDir string) string {
	return filepath.Join(installDir, javaExecutableSuffix())
}
