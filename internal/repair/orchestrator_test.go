package repair

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"

	"github.com/minepkg/launchcore/internal/asset"
	"github.com/minepkg/launchcore/internal/vendorindex"
)

func newTestVendorServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(vendorindex.VersionManifest{
			Versions: []vendorindex.VersionManifestEntry{{ID: "1.20.1", URL: "http://" + r.Host + "/version.json"}},
		})
	})
	mux.HandleFunc("/version.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "1.20.1",
			"assetIndex": map[string]interface{}{
				"id":  "8",
				"url": "http://" + r.Host + "/assetindex.json",
			},
			"downloads": map[string]interface{}{
				"client": map[string]interface{}{
					"url":  "http://" + r.Host + "/client.jar",
					"sha1": "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed",
					"size": 11,
				},
			},
		})
	})
	mux.HandleFunc("/assetindex.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"objects": map[string]interface{}{}})
	})
	mux.HandleFunc("/client.jar", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	})
	mux.HandleFunc("/mod.jar", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mod content"))
	})
	return httptest.NewServer(mux)
}

func TestOrchestrator_ValidateThenDownload(t *testing.T) {
	fs := afero.NewMemMapFs()
	srv := newTestVendorServer(t)
	defer srv.Close()

	server := &asset.Server{
		ID:               "main",
		MinecraftVersion: "1.20.1",
		Modules: []*asset.Module{
			{
				Type: asset.TypeFile,
				ID:   "mod.jar",
				Artifact: asset.ArtifactInfo{
					URL:  srv.URL + "/mod.jar",
					Path: "mod.jar",
					MD5:  "a01a6419e07ed227f26740d52a5b7c2b",
				},
			},
		},
	}

	orch := New(fs, srv.Client(), asset.Dirs{Common: "/common", Instance: "/instance"}, server)
	orch.Vendor.Endpoints.VersionManifestURL = srv.URL + "/manifest.json"

	var validatePercents []int
	invalidCount, err := orch.Validate(context.Background(), func(p int) { validatePercents = append(validatePercents, p) })
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if invalidCount == 0 {
		t.Fatal("expected at least the client jar and mod.jar to be invalid on a fresh filesystem")
	}
	if len(validatePercents) == 0 {
		t.Error("no progress percentages reported during Validate")
	}
	if orch.phase != PhaseValidated {
		t.Errorf("phase = %v, want PhaseValidated", orch.phase)
	}

	if err := orch.Download(context.Background(), nil); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if orch.phase != PhaseDownloaded {
		t.Errorf("phase = %v, want PhaseDownloaded", orch.phase)
	}

	if exists, _ := afero.Exists(fs, "/common/versions/1.20.1/1.20.1.jar"); !exists {
		t.Error("client jar was not downloaded")
	}
	if exists, _ := afero.Exists(fs, "/instance/main/mod.jar"); !exists {
		t.Error("mod.jar was not downloaded")
	}
}

func TestOrchestrator_DownloadBeforeValidateErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	server := &asset.Server{ID: "main", MinecraftVersion: "1.20.1"}
	orch := New(fs, http.DefaultClient, asset.Dirs{Common: "/common", Instance: "/instance"}, server)

	if err := orch.Download(context.Background(), nil); err != ErrNotValidated {
		t.Errorf("Download() error = %v, want ErrNotValidated", err)
	}
}

func TestOrchestrator_ValidateNoInvalidAssets(t *testing.T) {
	fs := afero.NewMemMapFs()
	srv := newTestVendorServer(t)
	defer srv.Close()

	afero.WriteFile(fs, "/common/versions/1.20.1/1.20.1.jar", []byte("hello world"), 0o644)

	server := &asset.Server{ID: "main", MinecraftVersion: "1.20.1"}
	orch := New(fs, srv.Client(), asset.Dirs{Common: "/common", Instance: "/instance"}, server)
	orch.Vendor.Endpoints.VersionManifestURL = srv.URL + "/manifest.json"

	invalidCount, err := orch.Validate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if invalidCount != 0 {
		t.Errorf("invalidCount = %d, want 0 (client jar already valid, no modules)", invalidCount)
	}

	if err := orch.Download(context.Background(), nil); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
}
