package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func TestNewAppConfig(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name           string
		env            map[string]string
		wantBaseURL    string
		wantLibraryDir string
		wantDiscovery  string
		wantAlbums     []string
		wantCacheDir   string
		wantMPRIS      bool
	}{
		{
			name:           "Defaults",
			env:            map[string]string{},
			wantBaseURL:    defaultBaseURL,
			wantLibraryDir: defaultLibraryDir,
			wantDiscovery:  "manifest",
			wantAlbums:     []string{},
			wantCacheDir:   defaultCacheDir,
			wantMPRIS:      true,
		},
		{
			name: "Overrides",
			env: map[string]string{
				"ALBUMPLAYER_BASE_URL":    "http://music.local:9000/",
				"ALBUMPLAYER_LIBRARY_DIR": "/srv/songs",
				"ALBUMPLAYER_DISCOVERY":   "STATIC",
				"ALBUMPLAYER_ALBUMS":      "NCS, Chill ,,Focus",
				"ALBUMPLAYER_CACHE_DIR":   "~/.cache/albumplayer",
				"ALBUMPLAYER_MPRIS":       "false",
			},
			wantBaseURL:    "http://music.local:9000",
			wantLibraryDir: "/srv/songs",
			wantDiscovery:  "static",
			wantAlbums:     []string{"NCS", "Chill", "Focus"},
			wantCacheDir:   filepath.Join(home, ".cache/albumplayer"),
			wantMPRIS:      false,
		},
		{
			name: "Invalid Values Fall Back",
			env: map[string]string{
				"ALBUMPLAYER_DISCOVERY": "crawl",
				"ALBUMPLAYER_MPRIS":     "maybe",
			},
			wantBaseURL:    defaultBaseURL,
			wantLibraryDir: defaultLibraryDir,
			wantDiscovery:  "manifest",
			wantAlbums:     []string{},
			wantCacheDir:   defaultCacheDir,
			wantMPRIS:      true,
		},
	}

	keys := []string{
		"ALBUMPLAYER_BASE_URL", "ALBUMPLAYER_LIBRARY_DIR", "ALBUMPLAYER_LISTEN_ADDR",
		"ALBUMPLAYER_DISCOVERY", "ALBUMPLAYER_ALBUMS", "ALBUMPLAYER_CACHE_DIR", "ALBUMPLAYER_MPRIS",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Run from an empty dir so no stray .env is picked up
			t.Chdir(t.TempDir())
			for _, k := range keys {
				t.Setenv(k, tt.env[k])
			}

			cfg := NewAppConfig(zap.NewNop())

			if got := cfg.GetBaseURL(); got != tt.wantBaseURL {
				t.Errorf("GetBaseURL: want %s, got %s", tt.wantBaseURL, got)
			}
			if got := cfg.GetLibraryDir(); got != tt.wantLibraryDir {
				t.Errorf("GetLibraryDir: want %s, got %s", tt.wantLibraryDir, got)
			}
			if got := cfg.GetListenAddr(); got != defaultListenAddr {
				t.Errorf("GetListenAddr: want %s, got %s", defaultListenAddr, got)
			}
			if got := cfg.GetDiscovery(); got != tt.wantDiscovery {
				t.Errorf("GetDiscovery: want %s, got %s", tt.wantDiscovery, got)
			}
			if got := cfg.GetStaticAlbums(); !reflect.DeepEqual(got, tt.wantAlbums) {
				t.Errorf("GetStaticAlbums: want %v, got %v", tt.wantAlbums, got)
			}
			if got := cfg.GetCacheDir(); got != tt.wantCacheDir {
				t.Errorf("GetCacheDir: want %s, got %s", tt.wantCacheDir, got)
			}
			if got := cfg.MPRISEnabled(); got != tt.wantMPRIS {
				t.Errorf("MPRISEnabled: want %v, got %v", tt.wantMPRIS, got)
			}
		})
	}
}

func TestNewAppConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ALBUMPLAYER_LISTEN_ADDR", "")
	os.Unsetenv("ALBUMPLAYER_LISTEN_ADDR")
	t.Setenv("ALBUMPLAYER_DISCOVERY", "manifest")

	content := "ALBUMPLAYER_LISTEN_ADDR=127.0.0.1:9999\nALBUMPLAYER_DISCOVERY=static\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	cfg := NewAppConfig(zap.NewNop())

	// Unset values are filled from .env, set values win
	if got := cfg.GetListenAddr(); got != "127.0.0.1:9999" {
		t.Errorf("GetListenAddr: want 127.0.0.1:9999, got %s", got)
	}
	if got := cfg.GetDiscovery(); got != "manifest" {
		t.Errorf("GetDiscovery: want manifest, got %s", got)
	}
}
