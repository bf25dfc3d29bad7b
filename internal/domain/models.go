package domain

// PlayerStatus represents the current state of the playback controller
type PlayerStatus string

const (
	// StatusEmpty indicates no folder is loaded
	StatusEmpty PlayerStatus = "Empty"
	// StatusPlaying indicates a track is loaded and playing
	StatusPlaying PlayerStatus = "Playing"
	// StatusPaused indicates a track list is loaded but audio is paused
	StatusPaused PlayerStatus = "Paused"
)

// NoTrack marks the absence of a current index
const NoTrack = -1

// DefaultCover is the cover file name used when neither info.json nor the manifest names one
const DefaultCover = "cover.jpg"

// Track is a file name identifying a playable resource inside its folder
type Track = string

// AlbumInfo is the decoded content of a folder's info.json
type AlbumInfo struct {
	Folder      string
	Title       string
	Description string
	Cover       string
	Tracks      []Track
}

// Album is the summary shown in the album grid
type Album struct {
	Folder      string `json:"folder"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Cover       string `json:"cover"`
}

// ManifestEntry is one element of albums.json
type ManifestEntry struct {
	Folder string `json:"folder"`
	Cover  string `json:"cover,omitempty"`
}

// PlaybackState is the single "now playing" state owned by a controller.
// CurrentIndex is NoTrack or a valid position in TrackList; IsPlaying implies
// CurrentIndex != NoTrack.
type PlaybackState struct {
	CurrentFolder string
	TrackList     []Track
	CurrentIndex  int
	IsPlaying     bool
	CurrentTime   float64
	Duration      float64
}

// Progress is a time-progress notification emitted by an AudioCapability
type Progress struct {
	CurrentTime float64
	Duration    float64
	// Ended is set once when the loaded resource has played to the end
	Ended bool
	// SourceID identifies the SetSource call the notification belongs to
	SourceID uint64
}

// Snapshot is the observable view of the player handed to UI surfaces
type Snapshot struct {
	Folder      string       `json:"folder"`
	Tracks      []Track      `json:"tracks"`
	Index       int          `json:"index"`
	Status      PlayerStatus `json:"status"`
	NowPlaying  string       `json:"nowPlaying"`
	CurrentTime float64      `json:"currentTime"`
	Duration    float64      `json:"duration"`
	TimeLabel   string       `json:"timeLabel"`
	// SeekPercent is the seek-bar marker position in [0,100]
	SeekPercent float64 `json:"seekPercent"`
}
