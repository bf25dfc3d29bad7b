package domain

import "context"

// MetadataSource retrieves library documents (info.json, albums.json, covers)
//
//go:generate mockgen -destination=../mocks/metadata_source_mock.go -package=mocks github.com/genricoloni/albumplayer/internal/domain MetadataSource
type MetadataSource interface {
	// Get returns the raw body stored at path.
	// A missing document yields an error wrapping ErrNotFound.
	Get(ctx context.Context, path string) ([]byte, error)

	// Resolve returns the absolute URL of a library path
	Resolve(path string) string
}

// AudioCapability is the audio engine driven by the playback controller.
// It is exclusively owned by a single controller.
//
//go:generate mockgen -destination=../mocks/audio_capability_mock.go -package=mocks github.com/genricoloni/albumplayer/internal/domain AudioCapability
type AudioCapability interface {
	// SetSource drops the current resource and loads the one at url, leaving it
	// paused at position 0. A failed load leaves no resource loaded.
	SetSource(ctx context.Context, url string) error

	// SourceID returns the identifier of the latest SetSource call.
	// Progress notifications carry the identifier of the source they describe.
	SourceID() uint64

	// Play starts or resumes playback.
	// A refusal yields an error wrapping ErrPlaybackRejected.
	Play() error

	// Pause pauses playback
	Pause()

	// Paused reports whether playback is paused
	Paused() bool

	// CurrentTime returns the playback position in seconds
	CurrentTime() float64

	// SetCurrentTime moves the playback position to seconds
	SetCurrentTime(seconds float64) error

	// Duration returns the length of the loaded resource in seconds, NaN when unknown
	Duration() float64

	// Progress returns a channel of periodic time-progress notifications
	Progress() <-chan Progress
}

// Catalog loads per-folder metadata
type Catalog interface {
	// LoadInfo fetches and decodes a folder's info.json
	LoadInfo(ctx context.Context, folder string) (AlbumInfo, error)

	// LoadTracks returns the ordered track list of a folder.
	// Failures return an empty list and an error wrapping ErrMetadataUnavailable.
	LoadTracks(ctx context.Context, folder string) ([]Track, error)
}

// Directory lists the albums available for selection
type Directory interface {
	// ListAlbums returns album summaries in manifest/list order
	ListAlbums(ctx context.Context) ([]Album, error)
}

// CoverProcessor renders album covers for UI surfaces
type CoverProcessor interface {
	// Generate renders the cover of folder in the given mode ("thumb" or "backdrop")
	// and returns the JPEG bytes
	Generate(ctx context.Context, folder, cover, mode string) ([]byte, error)
}

// Config defines the interface for application configuration
type Config interface {
	// GetBaseURL returns the base URL of the metadata source
	GetBaseURL() string

	// GetLibraryDir returns the directory served under /songs
	GetLibraryDir() string

	// GetListenAddr returns the HTTP listen address
	GetListenAddr() string

	// GetDiscovery returns the album discovery strategy ("manifest" or "static")
	GetDiscovery() string

	// GetStaticAlbums returns the configured folder list for static discovery
	GetStaticAlbums() []string

	// GetCacheDir returns the directory for generated cover images
	GetCacheDir() string

	// MPRISEnabled reports whether the player is exported on the session bus
	MPRISEnabled() bool
}
