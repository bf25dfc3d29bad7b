package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/genricoloni/albumplayer/internal/domain"
	"github.com/genricoloni/albumplayer/internal/player"
	"go.uber.org/zap"
)

// CommandKind names a user-level playback command
type CommandKind string

const (
	// CmdSelectAlbum loads a folder and plays its first track
	CmdSelectAlbum CommandKind = "select-album"
	// CmdPlayIndex plays the track at Index
	CmdPlayIndex CommandKind = "play-index"
	// CmdPlayTrack plays the track named Track
	CmdPlayTrack CommandKind = "play-track"
	// CmdTogglePause flips between playing and paused
	CmdTogglePause CommandKind = "toggle-pause"
	// CmdSeek moves to Fraction of the track
	CmdSeek CommandKind = "seek"
	// CmdNext plays the next track
	CmdNext CommandKind = "next"
	// CmdPrevious plays the previous track
	CmdPrevious CommandKind = "previous"
)

// Command is a request dispatched to the engine loop
type Command struct {
	Kind     CommandKind
	Folder   string
	Track    domain.Track
	Index    int
	Fraction float64
}

// SelectAlbum builds the album-selected command
func SelectAlbum(folder string) Command { return Command{Kind: CmdSelectAlbum, Folder: folder} }

// PlayIndex builds the command playing the track at index
func PlayIndex(index int) Command { return Command{Kind: CmdPlayIndex, Index: index} }

// PlayTrack builds the track-clicked command
func PlayTrack(track domain.Track) Command { return Command{Kind: CmdPlayTrack, Track: track} }

// TogglePause builds the play/pause command
func TogglePause() Command { return Command{Kind: CmdTogglePause} }

// Seek builds the seek command
func Seek(fraction float64) Command { return Command{Kind: CmdSeek, Fraction: fraction} }

// Next builds the next-track command
func Next() Command { return Command{Kind: CmdNext} }

// Previous builds the previous-track command
func Previous() Command { return Command{Kind: CmdPrevious} }

type request struct {
	cmd   Command
	reply chan error
}

type loadResult struct {
	ticket player.Ticket
	tracks []domain.Track
	err    error
	reply  chan error
}

// Engine serializes every trigger (commands, folder loads, audio progress)
// onto a single goroutine that owns the playback controller.
type Engine struct {
	logger   *zap.Logger
	ctrl     *player.Controller
	catalog  domain.Catalog
	audio    domain.AudioCapability
	requests chan request
	loads    chan loadResult
	snaps    chan chan domain.Snapshot

	mu              sync.Mutex
	subscribers     []chan domain.Snapshot
	cancel          context.CancelFunc
	done            chan struct{}
	stopped         bool
	lastDropWarning time.Time
}

// NewEngine creates an engine around ctrl
func NewEngine(
	logger *zap.Logger,
	ctrl *player.Controller,
	catalog domain.Catalog,
	audio domain.AudioCapability,
) *Engine {
	return &Engine{
		logger:   logger,
		ctrl:     ctrl,
		catalog:  catalog,
		audio:    audio,
		requests: make(chan request),
		loads:    make(chan loadResult, 10),
		snaps:    make(chan chan domain.Snapshot),
	}
}

// Start launches the event loop in a goroutine and returns immediately
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	e.stopped = false

	e.logger.Info("Engine starting...")
	go e.runLoop(loopCtx, e.done)
	return nil
}

// Stop ends the event loop and closes subscriber channels
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel = nil
	e.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	e.mu.Lock()
	for _, sub := range e.subscribers {
		close(sub)
	}
	e.subscribers = nil
	e.stopped = true
	e.mu.Unlock()

	e.logger.Info("Engine stopped")
	return nil
}

// Dispatch runs cmd on the engine loop and waits for its outcome.
// Album selections return once the folder load has been applied or discarded.
func (e *Engine) Dispatch(ctx context.Context, cmd Command) error {
	req := request{cmd: cmd, reply: make(chan error, 1)}

	select {
	case e.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current observable state
func (e *Engine) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	reply := make(chan domain.Snapshot, 1)

	select {
	case e.snaps <- reply:
	case <-ctx.Done():
		return domain.Snapshot{}, ctx.Err()
	}

	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return domain.Snapshot{}, ctx.Err()
	}
}

// Subscribe returns a channel receiving a snapshot after every state change.
// Slow subscribers miss intermediate snapshots. The channel is closed on Stop,
// and a stopped engine hands out an already closed channel.
func (e *Engine) Subscribe() <-chan domain.Snapshot {
	ch := make(chan domain.Snapshot, 16)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		close(ch)
		return ch
	}
	e.subscribers = append(e.subscribers, ch)
	return ch
}

func (e *Engine) runLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	progress := e.audio.Progress()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return

		case req := <-e.requests:
			e.handle(ctx, req)

		case res := <-e.loads:
			err := e.ctrl.CompleteSelect(ctx, res.ticket, res.tracks, res.err)
			if errors.Is(err, domain.ErrStaleResponse) {
				e.logger.Debug("Discarding stale folder load",
					zap.String("folder", res.ticket.Folder),
					zap.Uint64("seq", res.ticket.Seq))
			} else {
				e.logResult(Command{Kind: CmdSelectAlbum, Folder: res.ticket.Folder}, err)
				e.publish()
			}
			res.reply <- err

		case p, ok := <-progress:
			if !ok {
				progress = nil
				continue
			}
			e.ctrl.OnProgress(p)
			e.publish()

		case reply := <-e.snaps:
			reply <- e.ctrl.Snapshot()
		}
	}
}

// handle executes one command; album loads continue in their own goroutine
func (e *Engine) handle(ctx context.Context, req request) {
	var err error

	switch req.cmd.Kind {
	case CmdSelectAlbum:
		ticket := e.ctrl.BeginSelect(req.cmd.Folder)
		e.logger.Debug("Loading folder",
			zap.String("folder", ticket.Folder),
			zap.Uint64("seq", ticket.Seq))
		go e.load(ctx, ticket, req.reply)
		return
	case CmdPlayIndex:
		err = e.ctrl.PlayAt(ctx, req.cmd.Index)
	case CmdPlayTrack:
		err = e.ctrl.PlayTrack(ctx, req.cmd.Track)
	case CmdTogglePause:
		err = e.ctrl.TogglePause()
	case CmdSeek:
		err = e.ctrl.SeekFraction(req.cmd.Fraction)
	case CmdNext:
		err = e.ctrl.StepNext(ctx)
	case CmdPrevious:
		err = e.ctrl.StepPrevious(ctx)
	default:
		err = fmt.Errorf("unknown command %q", req.cmd.Kind)
	}

	e.logResult(req.cmd, err)
	e.publish()
	req.reply <- err
}

func (e *Engine) load(ctx context.Context, ticket player.Ticket, reply chan error) {
	tracks, err := e.catalog.LoadTracks(ctx, ticket.Folder)
	select {
	case e.loads <- loadResult{ticket: ticket, tracks: tracks, err: err, reply: reply}:
	case <-ctx.Done():
		reply <- ctx.Err()
	}
}

// logResult records non-fatal command failures; none of them stops the loop
func (e *Engine) logResult(cmd Command, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrUnknownDuration),
		errors.Is(err, domain.ErrNoFolder):
		e.logger.Debug("Command ignored", zap.String("command", string(cmd.Kind)), zap.Error(err))
	default:
		e.logger.Warn("Command failed", zap.String("command", string(cmd.Kind)), zap.Error(err))
	}
}

func (e *Engine) publish() {
	snap := e.ctrl.Snapshot()

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, sub := range e.subscribers {
		select {
		case sub <- snap:
		default:
			e.logSubscriberFullWarning()
		}
	}
}

// logSubscriberFullWarning is rate limited to avoid log spam while progress ticks
func (e *Engine) logSubscriberFullWarning() {
	const warningInterval = 5 * time.Second
	now := time.Now()

	if now.Sub(e.lastDropWarning) >= warningInterval {
		e.logger.Warn("Subscriber channel full, dropping snapshot")
		e.lastDropWarning = now
	}
}
