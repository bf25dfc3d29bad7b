package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/genricoloni/albumplayer/internal/domain"
	"github.com/genricoloni/albumplayer/internal/timefmt"
	"go.uber.org/zap"
)

// Ticket identifies one folder selection. Only the latest ticket may apply its result.
type Ticket struct {
	Seq    uint64
	Folder string
}

// Controller owns a single PlaybackState and drives the audio capability.
// It is not safe for concurrent use; one goroutine (the engine loop) owns it.
type Controller struct {
	logger  *zap.Logger
	catalog domain.Catalog
	source  domain.MetadataSource
	audio   domain.AudioCapability
	state   domain.PlaybackState
	seq     uint64

	// sourceID is the audio source the state describes; other progress is stale
	sourceID uint64
}

// NewController creates a controller in the Empty state
func NewController(
	logger *zap.Logger,
	catalog domain.Catalog,
	source domain.MetadataSource,
	audio domain.AudioCapability,
) *Controller {
	return &Controller{
		logger:  logger,
		catalog: catalog,
		source:  source,
		audio:   audio,
		state:   emptyState(),
	}
}

func emptyState() domain.PlaybackState {
	return domain.PlaybackState{
		TrackList:    []domain.Track{},
		CurrentIndex: domain.NoTrack,
		Duration:     math.NaN(),
	}
}

// SelectFolder loads the tracks of folder and starts playing the first one.
// An empty or unavailable track list moves the controller to Empty.
func (c *Controller) SelectFolder(ctx context.Context, folder string) error {
	ticket := c.BeginSelect(folder)
	tracks, err := c.catalog.LoadTracks(ctx, folder)
	return c.CompleteSelect(ctx, ticket, tracks, err)
}

// BeginSelect registers a new folder selection and returns its ticket.
// Any selection begun earlier becomes stale.
func (c *Controller) BeginSelect(folder string) Ticket {
	c.seq++
	return Ticket{Seq: c.seq, Folder: folder}
}

// CompleteSelect applies the result of a folder load started with BeginSelect.
// Results for superseded tickets are discarded with ErrStaleResponse.
func (c *Controller) CompleteSelect(ctx context.Context, ticket Ticket, tracks []domain.Track, loadErr error) error {
	if ticket.Seq != c.seq {
		return fmt.Errorf("%w: %s (seq %d, latest %d)", domain.ErrStaleResponse, ticket.Folder, ticket.Seq, c.seq)
	}

	if len(tracks) == 0 {
		c.clear()
		c.logger.Info("Folder has no playable tracks",
			zap.String("folder", ticket.Folder),
			zap.Error(loadErr))
		return loadErr
	}

	c.state.CurrentFolder = ticket.Folder
	c.state.TrackList = slices.Clone(tracks)
	c.state.CurrentIndex = 0
	c.state.IsPlaying = false

	c.logger.Info("Folder selected",
		zap.String("folder", ticket.Folder),
		zap.Int("tracks", len(tracks)))

	return c.PlayAt(ctx, 0)
}

// clear resets the state to Empty and silences any audio still playing
func (c *Controller) clear() {
	if c.state.IsPlaying {
		c.audio.Pause()
	}
	c.state = emptyState()
}

// PlayAt loads and plays the track at index
func (c *Controller) PlayAt(ctx context.Context, index int) error {
	if index < 0 || index >= len(c.state.TrackList) {
		return fmt.Errorf("%w: %d not in [0,%d)", domain.ErrIndexOutOfRange, index, len(c.state.TrackList))
	}

	track := c.state.TrackList[index]
	c.state.CurrentIndex = index
	c.state.IsPlaying = false
	c.state.CurrentTime = 0
	c.state.Duration = math.NaN()

	url := c.source.Resolve(domain.TrackPath(c.state.CurrentFolder, track))
	err := c.audio.SetSource(ctx, url)
	c.sourceID = c.audio.SourceID()
	if err != nil {
		c.logger.Warn("Failed to load track", zap.String("url", url), zap.Error(err))
		c.audio.Pause()
		return rejected(err)
	}

	if err := c.audio.Play(); err != nil {
		c.logger.Warn("Play prevented", zap.String("track", track), zap.Error(err))
		return rejected(err)
	}

	c.state.IsPlaying = true
	c.logger.Info("Playing track",
		zap.String("folder", c.state.CurrentFolder),
		zap.String("track", track),
		zap.Int("index", index))
	return nil
}

// PlayTrack plays the track with the given name from the current list
func (c *Controller) PlayTrack(ctx context.Context, name domain.Track) error {
	index := slices.Index(c.state.TrackList, name)
	if index < 0 {
		return fmt.Errorf("%w: track %q not in current list", domain.ErrIndexOutOfRange, name)
	}
	return c.PlayAt(ctx, index)
}

// TogglePause pauses a playing track or resumes a paused one
func (c *Controller) TogglePause() error {
	if c.Status() == domain.StatusEmpty {
		return domain.ErrNoFolder
	}

	if c.state.IsPlaying {
		c.audio.Pause()
		c.state.IsPlaying = false
		return nil
	}

	if err := c.audio.Play(); err != nil {
		c.logger.Warn("Play prevented", zap.Error(err))
		return rejected(err)
	}
	c.state.IsPlaying = true
	return nil
}

// SeekFraction moves playback to fraction f of the track duration
func (c *Controller) SeekFraction(f float64) error {
	if c.Status() == domain.StatusEmpty {
		return domain.ErrNoFolder
	}

	duration := c.audio.Duration()
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return domain.ErrUnknownDuration
	}

	f = clamp(f, 0, 1)
	target := f * duration
	if err := c.audio.SetCurrentTime(target); err != nil {
		return fmt.Errorf("seek to %.2fs failed: %w", target, err)
	}

	c.state.CurrentTime = target
	c.state.Duration = duration
	return nil
}

// StepPrevious plays the previous track, without wrapping around
func (c *Controller) StepPrevious(ctx context.Context) error {
	return c.PlayAt(ctx, c.state.CurrentIndex-1)
}

// StepNext plays the next track, without wrapping around
func (c *Controller) StepNext(ctx context.Context) error {
	if c.state.CurrentIndex == domain.NoTrack {
		return fmt.Errorf("%w: no current track", domain.ErrIndexOutOfRange)
	}
	return c.PlayAt(ctx, c.state.CurrentIndex+1)
}

// OnProgress applies a time-progress notification from the audio capability
func (c *Controller) OnProgress(p domain.Progress) {
	if c.Status() == domain.StatusEmpty {
		return
	}
	if p.SourceID != c.sourceID {
		c.logger.Debug("Discarding progress of a previous source",
			zap.Uint64("source", p.SourceID),
			zap.Uint64("current", c.sourceID))
		return
	}

	c.state.CurrentTime = p.CurrentTime
	c.state.Duration = p.Duration
	if p.Ended {
		c.state.IsPlaying = false
	}
}

// Status reports the state machine position
func (c *Controller) Status() domain.PlayerStatus {
	switch {
	case len(c.state.TrackList) == 0:
		return domain.StatusEmpty
	case c.state.IsPlaying:
		return domain.StatusPlaying
	default:
		return domain.StatusPaused
	}
}

// State returns a copy of the playback state
func (c *Controller) State() domain.PlaybackState {
	s := c.state
	s.TrackList = slices.Clone(c.state.TrackList)
	return s
}

// Snapshot returns the observable view used by UI surfaces
func (c *Controller) Snapshot() domain.Snapshot {
	s := c.state
	snap := domain.Snapshot{
		Folder:      s.CurrentFolder,
		Tracks:      slices.Clone(s.TrackList),
		Index:       s.CurrentIndex,
		Status:      c.Status(),
		CurrentTime: s.CurrentTime,
		Duration:    s.Duration,
		TimeLabel:   timefmt.Label(s.CurrentTime, s.Duration),
	}

	if s.CurrentIndex != domain.NoTrack {
		snap.NowPlaying = s.TrackList[s.CurrentIndex]
	}

	if !math.IsNaN(s.Duration) && !math.IsInf(s.Duration, 0) && s.Duration > 0 {
		snap.SeekPercent = clamp(s.CurrentTime/s.Duration*100, 0, 100)
	}

	// JSON cannot encode NaN
	if math.IsNaN(snap.Duration) || math.IsInf(snap.Duration, 0) {
		snap.Duration = 0
	}
	return snap
}

func rejected(err error) error {
	if errors.Is(err, domain.ErrPlaybackRejected) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPlaybackRejected, err)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
