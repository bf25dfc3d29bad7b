package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/genricoloni/albumplayer/internal/domain"
	"github.com/genricoloni/albumplayer/internal/engine"
	"github.com/genricoloni/albumplayer/internal/processor"
	"go.uber.org/zap"
)

type fakePlayer struct {
	dispatched []engine.Command
	err        error
	snap       domain.Snapshot
}

func (f *fakePlayer) Dispatch(ctx context.Context, cmd engine.Command) error {
	f.dispatched = append(f.dispatched, cmd)
	return f.err
}

func (f *fakePlayer) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	return f.snap, nil
}

type fakeDirectory struct {
	albums []domain.Album
	err    error
}

func (f fakeDirectory) ListAlbums(ctx context.Context) ([]domain.Album, error) {
	return f.albums, f.err
}

type fakeCatalog struct{}

func (fakeCatalog) LoadInfo(ctx context.Context, folder string) (domain.AlbumInfo, error) {
	if folder == "NCS" {
		return domain.AlbumInfo{Folder: folder, Cover: "art.jpg"}, nil
	}
	return domain.AlbumInfo{}, fmt.Errorf("%w: %s", domain.ErrMetadataUnavailable, folder)
}

func (fakeCatalog) LoadTracks(ctx context.Context, folder string) ([]domain.Track, error) {
	return []domain.Track{}, nil
}

type fakeCovers struct {
	calls []string
}

func (f *fakeCovers) Generate(ctx context.Context, folder, cover, mode string) ([]byte, error) {
	f.calls = append(f.calls, folder+"|"+cover+"|"+mode)
	if mode != processor.ModeThumb && mode != processor.ModeBackdrop {
		return nil, fmt.Errorf("%w: %q", processor.ErrUnknownMode, mode)
	}
	return []byte("jpeg-bytes"), nil
}

type stubConfig struct {
	libraryDir string
	listenAddr string
}

func (s *stubConfig) GetBaseURL() string        { return "http://127.0.0.1:8080" }
func (s *stubConfig) GetLibraryDir() string     { return s.libraryDir }
func (s *stubConfig) GetListenAddr() string     { return s.listenAddr }
func (s *stubConfig) GetDiscovery() string      { return "manifest" }
func (s *stubConfig) GetStaticAlbums() []string { return nil }
func (s *stubConfig) GetCacheDir() string       { return "" }
func (s *stubConfig) MPRISEnabled() bool        { return false }

type testServer struct {
	server *Server
	player *fakePlayer
	covers *fakeCovers
}

func newTestServer(t *testing.T, dir fakeDirectory) *testServer {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"NCS/info.json": `{"title":"NCS","tracks":["a.mp3"]}`,
		"NCS/a.mp3":     "ID3-audio",
	}
	for name, content := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	player := &fakePlayer{snap: domain.Snapshot{Folder: "NCS", Index: 0, Status: domain.StatusPlaying}}
	covers := &fakeCovers{}
	cfg := &stubConfig{libraryDir: root, listenAddr: "127.0.0.1:0"}
	s := NewServer(zap.NewNop(), cfg, dir, fakeCatalog{}, covers, player)
	return &testServer{server: s, player: player, covers: covers}
}

func (ts *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Songs(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		expectStatus int
		expectBody   string
	}{
		{name: "Track File", target: "/songs/NCS/a.mp3", expectStatus: http.StatusOK, expectBody: "ID3-audio"},
		{name: "Info Document", target: "/songs/NCS/info.json", expectStatus: http.StatusOK, expectBody: `"tracks"`},
		{name: "Generated Manifest", target: "/songs/albums.json", expectStatus: http.StatusOK, expectBody: `[{"folder":"NCS"}]`},
		{name: "Missing File", target: "/songs/NCS/b.mp3", expectStatus: http.StatusNotFound},
		{name: "Directory", target: "/songs/NCS/", expectStatus: http.StatusNotFound},
		{name: "Traversal", target: "/songs/../../etc/passwd", expectStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, fakeDirectory{})
			rec := ts.do(http.MethodGet, tt.target, "")

			if rec.Code != tt.expectStatus {
				t.Fatalf("Status: want %d, got %d (%s)", tt.expectStatus, rec.Code, rec.Body.String())
			}
			if tt.expectBody != "" && !strings.Contains(rec.Body.String(), tt.expectBody) {
				t.Errorf("Body %q does not contain %q", rec.Body.String(), tt.expectBody)
			}
		})
	}
}

func TestServer_Albums(t *testing.T) {
	tests := []struct {
		name         string
		dir          fakeDirectory
		expectStatus int
		expectCount  int
	}{
		{
			name: "Listed",
			dir: fakeDirectory{albums: []domain.Album{
				{Folder: "NCS", Title: "NCS", Cover: "cover.jpg"},
				{Folder: "Chill", Title: "Chill", Cover: "art.png"},
			}},
			expectStatus: http.StatusOK,
			expectCount:  2,
		},
		{
			name:         "Manifest Unavailable",
			dir:          fakeDirectory{albums: []domain.Album{}, err: domain.ErrMetadataUnavailable},
			expectStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.dir)
			rec := ts.do(http.MethodGet, "/api/albums", "")
			if rec.Code != tt.expectStatus {
				t.Fatalf("Status: want %d, got %d", tt.expectStatus, rec.Code)
			}
			if tt.expectStatus != http.StatusOK {
				return
			}

			var body struct {
				Albums []domain.Album `json:"albums"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if len(body.Albums) != tt.expectCount {
				t.Errorf("Albums: want %d, got %d", tt.expectCount, len(body.Albums))
			}
		})
	}
}

func TestServer_Cover(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		expectStatus int
		expectCall   string
	}{
		{name: "Default Mode From Info", target: "/api/albums/NCS/cover", expectStatus: http.StatusOK, expectCall: "NCS|art.jpg|thumb"},
		{name: "Backdrop", target: "/api/albums/NCS/cover?mode=backdrop", expectStatus: http.StatusOK, expectCall: "NCS|art.jpg|backdrop"},
		{name: "Explicit Cover", target: "/api/albums/Other%20Mix/cover?cover=x.png", expectStatus: http.StatusOK, expectCall: "Other Mix|x.png|thumb"},
		{name: "Unknown Mode", target: "/api/albums/NCS/cover?mode=poster", expectStatus: http.StatusBadRequest},
		{name: "Unknown Folder", target: "/api/albums/Missing/cover", expectStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, fakeDirectory{})
			rec := ts.do(http.MethodGet, tt.target, "")

			if rec.Code != tt.expectStatus {
				t.Fatalf("Status: want %d, got %d (%s)", tt.expectStatus, rec.Code, rec.Body.String())
			}
			if tt.expectStatus != http.StatusOK {
				return
			}
			if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
				t.Errorf("Content-Type: want image/jpeg, got %s", ct)
			}
			if len(ts.covers.calls) != 1 || ts.covers.calls[0] != tt.expectCall {
				t.Errorf("Generate calls: want [%s], got %v", tt.expectCall, ts.covers.calls)
			}
		})
	}
}

func TestServer_PlayerCommands(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		body         string
		expectStatus int
		expectCmd    *engine.Command
	}{
		{name: "Select Album", target: "/api/player/album", body: `{"folder":"NCS"}`, expectStatus: http.StatusOK, expectCmd: &engine.Command{Kind: engine.CmdSelectAlbum, Folder: "NCS"}},
		{name: "Select Album Without Folder", target: "/api/player/album", body: `{}`, expectStatus: http.StatusBadRequest},
		{name: "Play Track By Name", target: "/api/player/track", body: `{"track":"a.mp3"}`, expectStatus: http.StatusOK, expectCmd: &engine.Command{Kind: engine.CmdPlayTrack, Track: "a.mp3"}},
		{name: "Play Track By Index", target: "/api/player/track", body: `{"index":2}`, expectStatus: http.StatusOK, expectCmd: &engine.Command{Kind: engine.CmdPlayIndex, Index: 2}},
		{name: "Play Track Missing Fields", target: "/api/player/track", body: `{}`, expectStatus: http.StatusBadRequest},
		{name: "Toggle", target: "/api/player/toggle", expectStatus: http.StatusOK, expectCmd: &engine.Command{Kind: engine.CmdTogglePause}},
		{name: "Next", target: "/api/player/next", expectStatus: http.StatusOK, expectCmd: &engine.Command{Kind: engine.CmdNext}},
		{name: "Previous", target: "/api/player/previous", expectStatus: http.StatusOK, expectCmd: &engine.Command{Kind: engine.CmdPrevious}},
		{name: "Seek", target: "/api/player/seek", body: `{"fraction":0.25}`, expectStatus: http.StatusOK, expectCmd: &engine.Command{Kind: engine.CmdSeek, Fraction: 0.25}},
		{name: "Seek Missing Fraction", target: "/api/player/seek", body: `{}`, expectStatus: http.StatusBadRequest},
		{name: "Seek Invalid JSON", target: "/api/player/seek", body: `{"fraction":`, expectStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, fakeDirectory{})
			rec := ts.do(http.MethodPost, tt.target, tt.body)

			if rec.Code != tt.expectStatus {
				t.Fatalf("Status: want %d, got %d (%s)", tt.expectStatus, rec.Code, rec.Body.String())
			}

			if tt.expectCmd == nil {
				if len(ts.player.dispatched) != 0 {
					t.Errorf("Expected no dispatch, got %v", ts.player.dispatched)
				}
				return
			}
			if len(ts.player.dispatched) != 1 || ts.player.dispatched[0] != *tt.expectCmd {
				t.Errorf("Dispatched: want %+v, got %+v", *tt.expectCmd, ts.player.dispatched)
			}

			var snap domain.Snapshot
			if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if snap.Folder != "NCS" || snap.Status != domain.StatusPlaying {
				t.Errorf("Unexpected snapshot: %+v", snap)
			}
		})
	}
}

func TestServer_CommandErrors(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectStatus int
	}{
		{name: "Out Of Range", err: fmt.Errorf("%w: 3", domain.ErrIndexOutOfRange), expectStatus: http.StatusConflict},
		{name: "No Folder", err: domain.ErrNoFolder, expectStatus: http.StatusConflict},
		{name: "Unknown Duration", err: domain.ErrUnknownDuration, expectStatus: http.StatusConflict},
		{name: "Stale", err: domain.ErrStaleResponse, expectStatus: http.StatusConflict},
		{name: "Metadata Unavailable", err: domain.ErrMetadataUnavailable, expectStatus: http.StatusNotFound},
		{name: "Rejected", err: fmt.Errorf("%w: device busy", domain.ErrPlaybackRejected), expectStatus: http.StatusUnprocessableEntity},
		{name: "Timeout", err: context.DeadlineExceeded, expectStatus: http.StatusServiceUnavailable},
		{name: "Unexpected", err: fmt.Errorf("boom"), expectStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, fakeDirectory{})
			ts.player.err = tt.err

			rec := ts.do(http.MethodPost, "/api/player/next", "")
			if rec.Code != tt.expectStatus {
				t.Fatalf("Status: want %d, got %d", tt.expectStatus, rec.Code)
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("Expected error message in body")
			}
		})
	}
}

func TestServer_State(t *testing.T) {
	ts := newTestServer(t, fakeDirectory{})
	ts.player.snap = domain.Snapshot{Index: domain.NoTrack, Status: domain.StatusEmpty, Tracks: []domain.Track{}, TimeLabel: "00:00/00:00"}

	rec := ts.do(http.MethodGet, "/api/player", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status: want 200, got %d", rec.Code)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if snap.Status != domain.StatusEmpty || snap.Index != domain.NoTrack || snap.TimeLabel != "00:00/00:00" {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}
}

func TestServer_StartStop(t *testing.T) {
	ts := newTestServer(t, fakeDirectory{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := ts.server.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp, err := http.Get("http://" + ts.server.Addr() + "/songs/NCS/a.mp3")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Status: want 200, got %d", resp.StatusCode)
	}

	if err := ts.server.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := ts.server.Stop(ctx); err != nil {
		t.Errorf("Second Stop: %v", err)
	}
}
