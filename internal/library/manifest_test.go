package library

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/genricoloni/albumplayer/internal/domain"
	"go.uber.org/zap"
)

// writeFiles creates files relative to root
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

func TestBuildManifest(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"NCS/info.json":           `{"title":"NCS","cover":"art.png","tracks":["a.mp3"]}`,
		"NCS/art.png":             "png",
		"Chill/info.json":         `{"title":"Chill","tracks":[]}`,
		"Chill/cover.jpg":         "jpg",
		"Focus/info.json":         `{"songs":[{"file":"f.mp3"}]}`,
		"NoInfo/track.mp3":        "mp3",
		"Broken/info.json":        `{not json`,
		"loose.mp3":               "mp3",
		"Nested/Deeper/info.json": `{}`,
	})

	got, err := BuildManifest(zap.NewNop(), root)
	if err != nil {
		t.Fatalf("BuildManifest: %v", err)
	}

	want := []domain.ManifestEntry{
		{Folder: "Chill", Cover: "cover.jpg"},
		{Folder: "Focus"},
		{Folder: "NCS", Cover: "art.png"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Manifest mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestBuildManifest_MissingDir(t *testing.T) {
	if _, err := BuildManifest(zap.NewNop(), filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestManifestJSON(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  []domain.ManifestEntry
	}{
		{
			name: "File On Disk Wins",
			files: map[string]string{
				"albums.json":   `[{"folder":"Listed"}]`,
				"NCS/info.json": `{}`,
			},
			want: []domain.ManifestEntry{{Folder: "Listed"}},
		},
		{
			name:  "Generated From Folders",
			files: map[string]string{"NCS/info.json": `{}`},
			want:  []domain.ManifestEntry{{Folder: "NCS"}},
		},
		{
			name:  "Empty Library",
			files: map[string]string{},
			want:  []domain.ManifestEntry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFiles(t, root, tt.files)

			data, err := ManifestJSON(zap.NewNop(), root)
			if err != nil {
				t.Fatalf("ManifestJSON: %v", err)
			}

			var got []domain.ManifestEntry
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Invalid JSON %q: %v", data, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("want %+v, got %+v", tt.want, got)
			}
		})
	}
}
