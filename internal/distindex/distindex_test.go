package distindex

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"

	"github.com/minepkg/launchcore/internal/asset"
)

func TestProcessor_Validate_WalksTreeDepthFirst(t *testing.T) {
	fs := afero.NewMemMapFs()

	server := &asset.Server{
		ID: "main",
		Modules: []*asset.Module{
			{
				Type: asset.TypeForgeMod,
				ID:   "com.example:parentmod:1.0",
				SubModules: []*asset.Module{
					{Type: asset.TypeForgeMod, ID: "com.example:childmod:1.0"},
				},
			},
			{Type: asset.TypeFile, ID: "config.txt", Artifact: asset.ArtifactInfo{Path: "config.txt", MD5: "5EB63BBBE01EEED093CB22BB8F5ACDC3"}},
		},
	}
	// pre-place the file module content valid on disk (md5 of "hello world")
	afero.WriteFile(fs, "/instance/main/config.txt", []byte("hello world"), 0o644)

	p := New(fs, asset.Dirs{Common: "/common", Instance: "/instance"}, server)

	stages := 0
	result, err := p.Validate(func() { stages++ })
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if stages != 1 {
		t.Errorf("onStageComplete called %d times, want 1", stages)
	}

	invalid := result["modules"]
	if len(invalid) != 2 {
		t.Fatalf("invalid modules = %d, want 2 (parentmod, childmod both missing)", len(invalid))
	}
	for _, a := range invalid {
		if a.ID == "config.txt" {
			t.Error("config.txt should be valid (matching md5, hex case-insensitive) and excluded")
		}
	}
}

func TestProcessor_Validate_CaseInsensitiveMD5(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/instance/main/config.txt", []byte("hello world"), 0o644)

	server := &asset.Server{
		ID: "main",
		Modules: []*asset.Module{
			{Type: asset.TypeFile, ID: "config.txt", Artifact: asset.ArtifactInfo{Path: "config.txt", MD5: "5eb63bbbe01eeed093cb22bb8f5acdc3"}},
		},
	}
	p := New(fs, asset.Dirs{Common: "/common", Instance: "/instance"}, server)

	result, err := p.Validate(nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(result["modules"]) != 0 {
		t.Errorf("invalid modules = %d, want 0", len(result["modules"]))
	}
}

func TestParseForgeVersionAndCompare(t *testing.T) {
	v, err := parseForgeVersion("net.minecraftforge:forge:1.12.2-14.23.5.2860")
	if err != nil {
		t.Fatalf("parseForgeVersion() error = %v", err)
	}
	if want := semver.MustParse("14.23.5-2860"); !v.Equal(want) {
		t.Errorf("parseForgeVersion() = %v, want %v", v, want)
	}

	if v.Compare(legacyForgeCap) <= 0 {
		t.Errorf("%v.Compare(%v) should be > 0", v, legacyForgeCap)
	}

	older, _ := parseForgeVersion("net.minecraftforge:forge:1.12.2-14.23.5.2846")
	if older.Compare(legacyForgeCap) >= 0 {
		t.Errorf("%v.Compare(%v) should be < 0", older, legacyForgeCap)
	}

	if _, err := parseForgeVersion("no-dash-here"); err == nil {
		t.Error("parseForgeVersion() error = nil, want error for missing dash")
	}
}

func TestProcessor_UsesModernForgeOverlay(t *testing.T) {
	tests := []struct {
		name       string
		mcVersion  string
		forgeID    string
		wantModern bool
	}{
		{"mc 1.13+ always modern", "1.13.2", "net.minecraftforge:forge:1.13.2-25.0.1", true},
		{"mc 1.12 with forge above cap", "1.12.2", "net.minecraftforge:forge:1.12.2-14.23.5.2860", true},
		{"mc 1.12 with forge at cap", "1.12.2", "net.minecraftforge:forge:1.12.2-14.23.5.2847", false},
		{"mc 1.12 with forge below cap", "1.12.2", "net.minecraftforge:forge:1.12.2-14.23.4.2759", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Processor{Server: &asset.Server{MinecraftVersion: tt.mcVersion}}
			loader := &asset.Module{Type: asset.TypeForge, ID: tt.forgeID}
			if got := p.usesModernForgeOverlay(loader); got != tt.wantModern {
				t.Errorf("usesModernForgeOverlay() = %v, want %v", got, tt.wantModern)
			}
		})
	}
}

func TestFindModLoader(t *testing.T) {
	mods := []*asset.Module{
		{Type: asset.TypeLibrary, ID: "a"},
		{
			Type: asset.TypeFile,
			ID:   "wrapper",
			SubModules: []*asset.Module{
				{Type: asset.TypeFabric, ID: "fabric-loader"},
			},
		},
	}
	loader := findModLoader(mods)
	if loader == nil || loader.ID != "fabric-loader" {
		t.Errorf("findModLoader() = %v, want fabric-loader", loader)
	}

	if findModLoader([]*asset.Module{{Type: asset.TypeLibrary, ID: "a"}}) != nil {
		t.Error("findModLoader() should return nil when no loader present")
	}
}

func TestProcessor_FinalizeFromSibling(t *testing.T) {
	fs := afero.NewMemMapFs()
	server := &asset.Server{ID: "main"}
	p := New(fs, asset.Dirs{Common: "/common", Instance: "/instance"}, server)

	overlay := asset.VersionJSON{ID: "1.20.1-fabric"}
	data, _ := json.Marshal(overlay)
	afero.WriteFile(fs, "/common/versions/1.20.1-fabric/1.20.1-fabric.json", data, 0o644)

	loader := &asset.Module{
		Type: asset.TypeFabric,
		ID:   "fabric-loader",
		SubModules: []*asset.Module{
			{Type: asset.TypeVersionManifest, ID: "1.20.1-fabric"},
		},
	}
	loader.SetServerID("main")

	if err := p.finalizeFromSibling(loader); err != nil {
		t.Fatalf("finalizeFromSibling() error = %v", err)
	}

	if exists, _ := afero.Exists(fs, "/common/versions/1.20.1-fabric/1.20.1-fabric.json"); !exists {
		t.Error("overlay was not persisted")
	}
}

func TestProcessor_FinalizeFromSibling_MissingVersionManifestErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := New(fs, asset.Dirs{Common: "/common", Instance: "/instance"}, &asset.Server{ID: "main"})

	loader := &asset.Module{Type: asset.TypeFabric, ID: "fabric-loader"}
	if err := p.finalizeFromSibling(loader); err == nil {
		t.Fatal("finalizeFromSibling() error = nil, want error when no VersionManifest sub-module exists")
	}
}

func TestExtractVersionJSONFromZip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "forge-installer.jar")

	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("version.json")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	overlay := asset.VersionJSON{ID: "1.12.2-forge"}
	data, _ := json.Marshal(overlay)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	f.Close()

	got, err := extractVersionJSONFromZip(archivePath)
	if err != nil {
		t.Fatalf("extractVersionJSONFromZip() error = %v", err)
	}
	var v asset.VersionJSON
	if err := json.Unmarshal(got, &v); err != nil {
		t.Fatalf("unmarshal extracted data: %v", err)
	}
	if v.ID != "1.12.2-forge" {
		t.Errorf("extracted version id = %q, want %q", v.ID, "1.12.2-forge")
	}
}

func TestExtractVersionJSONFromZip_MissingEntry(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "empty.jar")
	f, _ := os.Create(archivePath)
	zw := zip.NewWriter(f)
	zw.Close()
	f.Close()

	if _, err := extractVersionJSONFromZip(archivePath); err == nil {
		t.Fatal("extractVersionJSONFromZip() error = nil, want error for missing version.json entry")
	}
}
