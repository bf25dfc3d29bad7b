package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/genricoloni/albumplayer/internal/domain"
	"go.uber.org/zap"
)

const (
	_maxTrackSize     = 256 * 1024 * 1024
	_progressInterval = 250 * time.Millisecond
	_resampleQuality  = 4
)

// memoryFile lets the decoders seek inside a fully buffered track
type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

// BeepAudio plays library tracks through the system speaker using beep.
// Tracks are downloaded completely before decoding so that seeking works.
type BeepAudio struct {
	logger      *zap.Logger
	client      *http.Client
	sampleRate  beep.SampleRate
	initSpeaker func(beep.SampleRate, int) error
	speakerOnce sync.Once
	speakerErr  error
	progress    chan domain.Progress

	mu          sync.Mutex
	stream      beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	queued      bool
	gen         uint64
	sourceID    uint64
	endReported bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	// endedGen is written from the speaker goroutine, which holds the speaker lock
	endedGen atomic.Uint64
}

// NewBeepAudio creates an audio capability playing at 44.1 kHz
func NewBeepAudio(logger *zap.Logger) *BeepAudio {
	return &BeepAudio{
		logger:      logger,
		client:      &http.Client{Timeout: 60 * time.Second},
		sampleRate:  beep.SampleRate(44100),
		initSpeaker: speaker.Init,
		progress:    make(chan domain.Progress, 10),
	}
}

// Start launches the progress notification loop
func (a *BeepAudio) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.wg.Add(1)
	go a.run(loopCtx)
	return nil
}

// Stop ends the progress loop and releases the loaded track
func (a *BeepAudio) Stop(ctx context.Context) error {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		a.wg.Wait()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.release()
	return nil
}

// SourceID returns the identifier of the latest SetSource call
func (a *BeepAudio) SourceID() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sourceID
}

// Progress returns the time-progress notification channel
func (a *BeepAudio) Progress() <-chan domain.Progress {
	return a.progress
}

// SetSource stops the current track, then downloads and decodes the one at
// rawURL, leaving it paused at 0. On failure no track stays loaded.
func (a *BeepAudio) SetSource(ctx context.Context, rawURL string) error {
	a.mu.Lock()
	a.release()
	a.sourceID++
	a.mu.Unlock()

	data, err := a.download(ctx, rawURL)
	if err != nil {
		return err
	}

	stream, format, err := decode(rawURL, data)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.stream = stream
	a.format = format
	a.ctrl = &beep.Ctrl{Streamer: stream, Paused: true}
	a.queued = false
	a.endReported = false
	a.gen++

	a.logger.Debug("Track decoded",
		zap.String("url", rawURL),
		zap.Int("sampleRate", int(format.SampleRate)),
		zap.Float64("duration", a.duration()))
	return nil
}

// Play starts or resumes the loaded track. A finished track restarts from 0.
func (a *BeepAudio) Play() error {
	a.speakerOnce.Do(func() {
		a.speakerErr = a.initSpeaker(a.sampleRate, a.sampleRate.N(100*time.Millisecond))
	})
	if a.speakerErr != nil {
		return fmt.Errorf("%w: speaker unavailable: %w", domain.ErrPlaybackRejected, a.speakerErr)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stream == nil {
		return fmt.Errorf("%w: no source loaded", domain.ErrPlaybackRejected)
	}

	if a.ended() {
		if err := a.rewind(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPlaybackRejected, err)
		}
	}

	speaker.Lock()
	a.ctrl.Paused = false
	speaker.Unlock()

	if !a.queued {
		gen := a.gen
		var s beep.Streamer = a.ctrl
		if a.format.SampleRate != a.sampleRate {
			s = beep.Resample(_resampleQuality, a.format.SampleRate, a.sampleRate, a.ctrl)
		}
		speaker.Play(beep.Seq(s, beep.Callback(func() {
			a.endedGen.Store(gen)
		})))
		a.queued = true
	}
	return nil
}

// Pause pauses the loaded track
func (a *BeepAudio) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctrl == nil {
		return
	}
	speaker.Lock()
	a.ctrl.Paused = true
	speaker.Unlock()
}

// Paused reports whether no audio is currently being produced
func (a *BeepAudio) Paused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctrl == nil || a.ended() {
		return true
	}
	speaker.Lock()
	defer speaker.Unlock()
	return a.ctrl.Paused
}

// CurrentTime returns the playback position in seconds
func (a *BeepAudio) CurrentTime() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position()
}

// Duration returns the track length in seconds, NaN without a source
func (a *BeepAudio) Duration() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duration()
}

// SetCurrentTime seeks to seconds, clamped to the track bounds
func (a *BeepAudio) SetCurrentTime(seconds float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stream == nil {
		return domain.ErrUnknownDuration
	}

	n := a.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if n < 0 {
		n = 0
	}
	if last := a.stream.Len(); n > last {
		n = last
	}

	if a.ended() {
		// the finished sequence has left the mixer; Play queues it again
		a.queued = false
		a.endedGen.Store(0)
		a.endReported = false
		a.gen++
	}

	speaker.Lock()
	err := a.stream.Seek(n)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("seek failed: %w", err)
	}
	return nil
}

func (a *BeepAudio) run(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(_progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p, ok := a.poll()
			if !ok {
				continue
			}
			select {
			case a.progress <- p:
			default:
				a.logger.Debug("Progress channel full, dropping notification")
			}
		}
	}
}

// poll builds the next notification; paused tracks only report their end once
func (a *BeepAudio) poll() (domain.Progress, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stream == nil {
		return domain.Progress{}, false
	}

	ended := a.ended()
	if ended {
		if a.endReported {
			return domain.Progress{}, false
		}
		a.endReported = true
	} else {
		speaker.Lock()
		paused := a.ctrl.Paused
		speaker.Unlock()
		if paused {
			return domain.Progress{}, false
		}
	}

	return domain.Progress{
		CurrentTime: a.position(),
		Duration:    a.duration(),
		Ended:       ended,
		SourceID:    a.sourceID,
	}, true
}

func (a *BeepAudio) ended() bool {
	return a.gen != 0 && a.endedGen.Load() == a.gen
}

func (a *BeepAudio) rewind() error {
	a.queued = false
	a.endReported = false
	a.gen++
	speaker.Lock()
	defer speaker.Unlock()
	return a.stream.Seek(0)
}

func (a *BeepAudio) position() float64 {
	if a.stream == nil {
		return 0
	}
	speaker.Lock()
	pos := a.stream.Position()
	speaker.Unlock()
	return a.format.SampleRate.D(pos).Seconds()
}

func (a *BeepAudio) duration() float64 {
	if a.stream == nil {
		return math.NaN()
	}
	return a.format.SampleRate.D(a.stream.Len()).Seconds()
}

// release stops and closes the current track; callers hold a.mu
func (a *BeepAudio) release() {
	if a.stream == nil {
		return
	}
	speaker.Clear()
	if err := a.stream.Close(); err != nil {
		a.logger.Warn("Failed to close track stream", zap.Error(err))
	}
	a.stream = nil
	a.ctrl = nil
	a.queued = false
}

func (a *BeepAudio) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, _maxTrackSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read track: %w", err)
	}
	return data, nil
}

func decode(rawURL string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	ext := path.Ext(rawURL)
	if u, err := url.Parse(rawURL); err == nil {
		ext = path.Ext(u.Path)
	}

	file := memoryFile{bytes.NewReader(data)}
	var (
		stream beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch strings.ToLower(ext) {
	case ".mp3":
		stream, format, err = mp3.Decode(file)
	case ".wav":
		stream, format, err = wav.Decode(file)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", ext)
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to decode %s: %w", ext, err)
	}
	return stream, format, nil
}
