package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/genricoloni/albumplayer/internal/domain"
	"github.com/genricoloni/albumplayer/internal/engine"
	"go.uber.org/zap"
)

// seekStep is the fraction moved by the left/right keys
const seekStep = 0.05

const commandTimeout = 30 * time.Second

// Player is the engine surface the terminal UI drives
type Player interface {
	Dispatch(ctx context.Context, cmd engine.Command) error
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	Subscribe() <-chan domain.Snapshot
}

type pane int

const (
	paneAlbums pane = iota
	paneTracks
)

type albumsMsg struct {
	albums []domain.Album
	err    error
}

type snapshotMsg domain.Snapshot

type resultMsg struct {
	cmd engine.Command
	err error
}

type streamClosedMsg struct{}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	activeStyle  = paneStyle.BorderForeground(lipgloss.Color("205"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	playingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Model is the bubbletea model of the album player
type Model struct {
	logger    *zap.Logger
	player    Player
	directory domain.Directory
	updates   <-chan domain.Snapshot
	keys      keyMap
	help      help.Model

	albums      []domain.Album
	albumCursor int
	trackCursor int
	focus       pane
	snap        domain.Snapshot
	status      string
	failed      bool

	width  int
	height int
}

// NewModel creates the UI model and subscribes to player snapshots
func NewModel(logger *zap.Logger, player Player, directory domain.Directory) Model {
	return Model{
		logger:    logger,
		player:    player,
		directory: directory,
		updates:   player.Subscribe(),
		keys:      defaultKeyMap(),
		help:      help.New(),
		snap:      domain.Snapshot{Index: domain.NoTrack, Status: domain.StatusEmpty, TimeLabel: "00:00/00:00"},
		status:    "Loading albums...",
	}
}

// Init loads the album list and starts listening for snapshots
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadAlbums, m.loadSnapshot, m.waitForSnapshot)
}

func (m Model) loadAlbums() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	albums, err := m.directory.ListAlbums(ctx)
	return albumsMsg{albums: albums, err: err}
}

func (m Model) loadSnapshot() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	snap, err := m.player.Snapshot(ctx)
	if err != nil {
		return resultMsg{err: err}
	}
	return snapshotMsg(snap)
}

func (m Model) waitForSnapshot() tea.Msg {
	snap, ok := <-m.updates
	if !ok {
		return streamClosedMsg{}
	}
	return snapshotMsg(snap)
}

func (m Model) dispatch(cmd engine.Command) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return resultMsg{cmd: cmd, err: m.player.Dispatch(ctx, cmd)}
	}
}

// Update handles key presses and player events
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case albumsMsg:
		m.albums = msg.albums
		switch {
		case msg.err != nil:
			m.setError(fmt.Sprintf("Albums unavailable: %v", msg.err))
		case len(msg.albums) == 0:
			m.setStatus("No albums found")
		default:
			m.setStatus(fmt.Sprintf("%d albums", len(msg.albums)))
		}
		return m, nil

	case snapshotMsg:
		m.snap = domain.Snapshot(msg)
		if m.trackCursor >= len(m.snap.Tracks) {
			m.trackCursor = max(m.snap.Index, 0)
		}
		return m, m.waitForSnapshot

	case streamClosedMsg:
		return m, tea.Quit

	case resultMsg:
		m.applyResult(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) applyResult(msg resultMsg) {
	err := msg.err
	switch {
	case err == nil:
		if msg.cmd.Kind == engine.CmdSelectAlbum {
			m.trackCursor = 0
			m.setStatus("Loaded " + msg.cmd.Folder)
		}
	case errors.Is(err, domain.ErrStaleResponse):
		// superseded by a later selection
	case errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrNoFolder),
		errors.Is(err, domain.ErrUnknownDuration):
		m.setStatus(err.Error())
	default:
		m.logger.Warn("Command failed", zap.String("command", string(msg.cmd.Kind)), zap.Error(err))
		m.setError(err.Error())
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.failed = true
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Switch):
		if m.focus == paneAlbums {
			m.focus = paneTracks
		} else {
			m.focus = paneAlbums
		}
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Select):
		return m, m.selectCurrent()
	case key.Matches(msg, m.keys.Toggle):
		return m, m.dispatch(engine.TogglePause())
	case key.Matches(msg, m.keys.Next):
		return m, m.dispatch(engine.Next())
	case key.Matches(msg, m.keys.Previous):
		return m, m.dispatch(engine.Previous())
	case key.Matches(msg, m.keys.Back):
		return m, m.seekBy(-seekStep)
	case key.Matches(msg, m.keys.Forward):
		return m, m.seekBy(seekStep)
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	if m.focus == paneAlbums {
		m.albumCursor = clampIndex(m.albumCursor+delta, len(m.albums))
		return
	}
	m.trackCursor = clampIndex(m.trackCursor+delta, len(m.snap.Tracks))
}

func clampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (m *Model) selectCurrent() tea.Cmd {
	if m.focus == paneAlbums {
		if len(m.albums) == 0 {
			return nil
		}
		folder := m.albums[m.albumCursor].Folder
		m.setStatus("Loading " + folder + "...")
		return m.dispatch(engine.SelectAlbum(folder))
	}

	if m.trackCursor >= len(m.snap.Tracks) {
		return nil
	}
	return m.dispatch(engine.PlayIndex(m.trackCursor))
}

// seekBy moves the seek marker by delta of the track length
func (m Model) seekBy(delta float64) tea.Cmd {
	if m.snap.Duration <= 0 {
		return nil
	}
	return m.dispatch(engine.Seek(m.snap.SeekPercent/100 + delta))
}

// View renders both panes, the now-playing line and the seek bar
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Album Player"))
	b.WriteString("\n\n")

	albums := m.renderAlbums()
	tracks := m.renderTracks()
	albumPane, trackPane := paneStyle, paneStyle
	if m.focus == paneAlbums {
		albumPane = activeStyle
	} else {
		trackPane = activeStyle
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		albumPane.Width(m.paneWidth()).Render(albums),
		trackPane.Width(m.paneWidth()).Render(tracks)))
	b.WriteString("\n")

	b.WriteString(m.renderNowPlaying())
	b.WriteString("\n")

	if m.failed {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(dimStyle.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) paneWidth() int {
	if m.width <= 0 {
		return 36
	}
	w := m.width/2 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) renderAlbums() string {
	var b strings.Builder
	b.WriteString("Albums\n")
	if len(m.albums) == 0 {
		b.WriteString(dimStyle.Render("(none)"))
		return b.String()
	}
	for i, a := range m.albums {
		line := a.Title
		if a.Folder == m.snap.Folder {
			line = playingStyle.Render(line)
		}
		b.WriteString(m.cursorLine(m.focus == paneAlbums && i == m.albumCursor, line))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderTracks() string {
	var b strings.Builder
	b.WriteString("Tracks\n")
	if len(m.snap.Tracks) == 0 {
		b.WriteString(dimStyle.Render("(select an album)"))
		return b.String()
	}
	for i, t := range m.snap.Tracks {
		line := fmt.Sprintf("%2d. %s", i+1, t)
		if i == m.snap.Index {
			line = playingStyle.Render(line)
		}
		b.WriteString(m.cursorLine(m.focus == paneTracks && i == m.trackCursor, line))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) cursorLine(selected bool, line string) string {
	if selected {
		return cursorStyle.Render("> ") + line + "\n"
	}
	return "  " + line + "\n"
}

func (m Model) renderNowPlaying() string {
	icon := "■"
	switch m.snap.Status {
	case domain.StatusPlaying:
		icon = "▶"
	case domain.StatusPaused:
		icon = "⏸"
	}

	now := m.snap.NowPlaying
	if now == "" {
		now = "Nothing playing"
	}
	return fmt.Sprintf("%s %s  %s  %s", icon, now, m.snap.TimeLabel, seekBar(m.snap.SeekPercent, 30))
}

// seekBar draws a fixed-width bar with the marker at percent
func seekBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("━", filled) + strings.Repeat("─", width-filled) + "]"
}

// Run starts the terminal program and blocks until the user quits or ctx ends
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
