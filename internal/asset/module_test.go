package asset

import "testing"

func TestModule_ResolvePath(t *testing.T) {
	dirs := Dirs{Common: "/common", Instance: "/instance"}

	tests := []struct {
		name    string
		module  Module
		want    string
		wantErr bool
	}{
		{
			name:   "library uses common/libraries",
			module: Module{Type: TypeLibrary, ID: "org.lwjgl:lwjgl:3.3.1"},
			want:   "/common/libraries/org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1.jar",
		},
		{
			name:   "forge mod uses common/modstore",
			module: Module{Type: TypeForgeMod, ID: "com.example:examplemod:1.0"},
			want:   "/common/modstore/com/example/examplemod/1.0/examplemod-1.0.jar",
		},
		{
			name:   "fabric mod uses common/mods/fabric",
			module: Module{Type: TypeFabricMod, ID: "com.example:fabricmod:2.0"},
			want:   "/common/mods/fabric/com/example/fabricmod/2.0/fabricmod-2.0.jar",
		},
		{
			name:   "version manifest uses common/versions/<id>/<id>.json",
			module: Module{Type: TypeVersionManifest, ID: "1.20.1"},
			want:   "/common/versions/1.20.1/1.20.1.json",
		},
		{
			name:   "file module uses instance/<serverId> and explicit path",
			module: Module{Type: TypeFile, ID: "config.txt", Artifact: ArtifactInfo{Path: "config/settings.txt"}},
			want:   "/instance/myserver/config/settings.txt",
		},
		{
			name:    "non-file module without parsable maven id errors",
			module:  Module{Type: TypeLibrary, ID: "not-a-coordinate"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.module.SetServerID("myserver")
			got, err := tt.module.ResolvePath(dirs)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolvePath() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolvePath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolvePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJavaOptions_EffectiveJavaOptions(t *testing.T) {
	opts := JavaOptions{
		SuggestedMajor: 17,
		Supported:      ">=17.x",
		PlatformOptions: []PlatformOptions{
			{Platform: "darwin", SuggestedMajor: 21},
			{Platform: "linux", Architecture: "arm64", SuggestedMajor: 21, Supported: ">=21.x"},
		},
	}

	tests := []struct {
		name           string
		goos, arch     string
		wantMajor      int
		wantSupported  string
	}{
		{"darwin overrides major, inherits supported", "darwin", "amd64", 21, ">=17.x"},
		{"linux arm64 gets full override", "linux", "arm64", 21, ">=21.x"},
		{"linux amd64 falls back to top-level", "linux", "amd64", 17, ">=17.x"},
		{"windows falls back entirely", "windows", "amd64", 17, ">=17.x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := opts.EffectiveJavaOptions(tt.goos, tt.arch)
			if got.SuggestedMajor != tt.wantMajor {
				t.Errorf("SuggestedMajor = %d, want %d", got.SuggestedMajor, tt.wantMajor)
			}
			if got.Supported != tt.wantSupported {
				t.Errorf("Supported = %q, want %q", got.Supported, tt.wantSupported)
			}
		})
	}
}

func TestDistribution_MainServer(t *testing.T) {
	t.Run("returns the marked main server", func(t *testing.T) {
		dist := &Distribution{Servers: []*Server{
			{ID: "a"},
			{ID: "b", MainServer: true},
		}}
		main, err := dist.MainServer()
		if err != nil {
			t.Fatalf("MainServer() error = %v", err)
		}
		if main.ID != "b" {
			t.Errorf("MainServer() = %q, want %q", main.ID, "b")
		}
	})

	t.Run("promotes the first server when none marked", func(t *testing.T) {
		dist := &Distribution{Servers: []*Server{{ID: "a"}, {ID: "b"}}}
		main, err := dist.MainServer()
		if err != nil {
			t.Fatalf("MainServer() error = %v", err)
		}
		if main.ID != "a" {
			t.Errorf("MainServer() = %q, want %q", main.ID, "a")
		}
		if !dist.Servers[0].MainServer {
			t.Error("promoted server was not marked MainServer=true")
		}
	})

	t.Run("errors on empty distribution", func(t *testing.T) {
		dist := &Distribution{}
		if _, err := dist.MainServer(); err == nil {
			t.Error("MainServer() error = nil, want error for empty distribution")
		}
	})
}

func TestServer_HostPort(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		wantHost string
		wantPort string
		wantErr  bool
	}{
		{"bare host defaults to 25565", "mc.example.com", "mc.example.com", "25565", false},
		{"host with port", "mc.example.com:25566", "mc.example.com", "25566", false},
		{"malformed port is fatal", "mc.example.com:notaport", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Server{ID: "srv", Address: tt.address}
			host, port, err := s.HostPort()
			if tt.wantErr {
				if err == nil {
					t.Fatal("HostPort() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("HostPort() error = %v", err)
			}
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("HostPort() = (%q, %q), want (%q, %q)", host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}
