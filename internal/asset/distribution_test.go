package asset

import (
	"testing"

	"github.com/spf13/afero"
)

func TestLoadDistribution(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `{"servers":[{"id":"main","address":"mc.example.com","mainServer":true,"modules":[
		{"type":"File","id":"config.txt","artifact":{"size":10,"url":"http://x","MD5":"abc","path":"config.txt"}}
	]}]}`
	afero.WriteFile(fs, "/launcher/distribution.json", []byte(doc), 0o644)

	dist, err := LoadDistribution(fs, "/launcher", false)
	if err != nil {
		t.Fatalf("LoadDistribution() error = %v", err)
	}
	if len(dist.Servers) != 1 || dist.Servers[0].ID != "main" {
		t.Fatalf("Servers = %+v", dist.Servers)
	}
	if dist.Servers[0].Modules[0].serverID != "main" {
		t.Errorf("module serverID = %q, want %q (propagated by LoadDistribution)", dist.Servers[0].Modules[0].serverID, "main")
	}
}

func TestLoadDistribution_DevMode(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/launcher/distribution_dev.json", []byte(`{"servers":[{"id":"dev"}]}`), 0o644)

	dist, err := LoadDistribution(fs, "/launcher", true)
	if err != nil {
		t.Fatalf("LoadDistribution() error = %v", err)
	}
	if dist.Servers[0].ID != "dev" {
		t.Errorf("ID = %q, want %q", dist.Servers[0].ID, "dev")
	}
}

func TestLoadDistribution_MissingFileErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := LoadDistribution(fs, "/launcher", false); err == nil {
		t.Fatal("LoadDistribution() error = nil, want error for missing file")
	}
}
