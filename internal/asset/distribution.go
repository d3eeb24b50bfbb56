package asset

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// LoadDistribution reads the persisted distribution manifest from
// launcherDir, choosing distribution_dev.json in dev mode and
// distribution.json otherwise, per spec §6's persisted state layout.
func LoadDistribution(fs afero.Fs, launcherDir string, devMode bool) (*Distribution, error) {
	name := "distribution.json"
	if devMode {
		name = "distribution_dev.json"
	}

	data, err := afero.ReadFile(fs, filepath.Join(launcherDir, name))
	if err != nil {
		return nil, fmt.Errorf("asset: read %s: %w", name, err)
	}

	var dist Distribution
	if err := json.Unmarshal(data, &dist); err != nil {
		return nil, fmt.Errorf("asset: parse %s: %w", name, err)
	}

	for _, s := range dist.Servers {
		for _, m := range s.Modules {
			m.SetServerID(s.ID)
		}
	}

	return &dist, nil
}
