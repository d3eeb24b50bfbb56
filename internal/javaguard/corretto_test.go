package javaguard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCorrettoClient_FindAsset(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/downloads/latest/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "999")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/downloads/latest_checksum/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("deadbeefcafe  amazon-corretto-17-x64-linux-jdk.tar.gz\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := &CorrettoClient{HTTP: &http.Client{Transport: redirectTransport{target: srv.URL}}}
	a, err := c.FindAsset(context.Background(), 17)
	if err != nil {
		t.Fatalf("FindAsset() error = %v", err)
	}
	if a.Hash.Algorithm != "md5" {
		t.Errorf("Algorithm = %q, want md5", a.Hash.Algorithm)
	}
	if a.Hash.Digest != "deadbeefcafe" {
		t.Errorf("Digest = %q, want %q", a.Hash.Digest, "deadbeefcafe")
	}
	if a.ID != "amazon-corretto-17-x64-linux-jdk.tar.gz" {
		t.Errorf("ID = %q, want the resolved URL's basename", a.ID)
	}
}

func TestCorrettoClient_FindAsset_ResolveFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := &CorrettoClient{HTTP: &http.Client{Transport: redirectTransport{target: srv.URL}}}
	if _, err := c.FindAsset(context.Background(), 17); err == nil {
		t.Fatal("FindAsset() error = nil, want error when redirect resolution fails")
	}
}

func TestCorrettoArchOSExt(t *testing.T) {
	if got := correttoArch("amd64"); got != "x64" {
		t.Errorf("correttoArch(amd64) = %q, want x64", got)
	}
	if got := correttoArch("arm64"); got != "aarch64" {
		t.Errorf("correttoArch(arm64) = %q, want aarch64", got)
	}
	if got := correttoOS("darwin"); got != "macos" {
		t.Errorf("correttoOS(darwin) = %q, want macos", got)
	}
	if got := correttoOS("linux"); got != "linux" {
		t.Errorf("correttoOS(linux) = %q, want linux", got)
	}
	if got := correttoExt("windows"); got != "zip" {
		t.Errorf("correttoExt(windows) = %q, want zip", got)
	}
	if got := correttoExt("linux"); got != "tar.gz" {
		t.Errorf("correttoExt(linux) = %q, want tar.gz", got)
	}
}
