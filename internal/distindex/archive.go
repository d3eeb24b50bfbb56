package distindex

import (
	"archive/zip"
	"fmt"
	"io"
)

// extractVersionJSONFromZip reads the "version.json" entry out of a
// Forge installer jar (a zip archive), per spec §4.2.2. This uses the
// standard library's archive/zip directly rather than
// github.com/mholt/archiver/v3 (wired elsewhere for full-archive
// installs in internal/javaguard): reading one named entry out of a
// zip is a one-shot lookup that archiver's directory-walk API does not
// make simpler, so there is no third-party win here. See DESIGN.md.
func extractVersionJSONFromZip(archivePath string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == "version.json" {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("distindex: no version.json entry in %s", archivePath)
}
