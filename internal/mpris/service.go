package mpris

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"time"

	"github.com/genricoloni/albumplayer/internal/domain"
	"github.com/genricoloni/albumplayer/internal/engine"
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"go.uber.org/zap"
)

const (
	// BusName is the well-known name the player claims on the session bus
	BusName = "org.mpris.MediaPlayer2.albumplayer"
	// ObjectPath is the MPRIS object path
	ObjectPath dbus.ObjectPath = "/org/mpris/MediaPlayer2"

	rootInterface       = "org.mpris.MediaPlayer2"
	playerInterface     = "org.mpris.MediaPlayer2.Player"
	propertiesInterface = "org.freedesktop.DBus.Properties"
	propertiesChanged   = propertiesInterface + ".PropertiesChanged"

	callTimeout     = 5 * time.Second
	microsPerSecond = 1e6
)

// noTrackPath is the MPRIS track id reserved for "no current track"
const noTrackPath dbus.ObjectPath = "/org/mpris/MediaPlayer2/TrackList/NoTrack"

// Player is the engine surface driven over D-Bus
type Player interface {
	Dispatch(ctx context.Context, cmd engine.Command) error
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	Subscribe() <-chan domain.Snapshot
}

// Service exports the player on the session bus as an MPRIS media player
type Service struct {
	logger  *zap.Logger
	cfg     domain.Config
	player  Player
	connect func() (DBusClient, error)

	mu              sync.RWMutex
	conn            DBusClient
	last            map[string]dbus.Variant
	running         bool
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	lastEmitWarning time.Time
}

// NewService creates a new MPRIS service
func NewService(logger *zap.Logger, cfg domain.Config, player Player) *Service {
	return &Service{
		logger: logger,
		cfg:    cfg,
		player: player,
		connect: func() (DBusClient, error) {
			return NewStdDBusClient()
		},
	}
}

// Start connects to the session bus, exports the player objects and begins
// mirroring engine snapshots as PropertiesChanged signals.
// A bus that cannot be reached is logged and leaves the service inactive.
func (s *Service) Start(ctx context.Context) error {
	if !s.cfg.MPRISEnabled() {
		s.logger.Info("MPRIS disabled by configuration")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	conn, err := s.connect()
	if err != nil {
		s.logger.Warn("Session bus unavailable, MPRIS disabled", zap.Error(err))
		return nil
	}

	if err := s.export(conn); err != nil {
		s.logger.Warn("Failed to export MPRIS objects", zap.Error(err))
		s.closeConn(conn)
		return nil
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil || reply != dbus.RequestNameReplyPrimaryOwner {
		s.logger.Warn("Could not claim MPRIS bus name",
			zap.String("name", BusName),
			zap.Uint32("reply", uint32(reply)),
			zap.Error(err))
		s.closeConn(conn)
		return nil
	}

	snap, err := s.player.Snapshot(ctx)
	if err != nil {
		s.logger.Warn("Failed to read initial player state", zap.Error(err))
	}

	s.conn = conn
	s.last = playerProperties(snap)
	s.running = true

	watchCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	updates := s.player.Subscribe()
	s.wg.Add(1)
	go s.watch(watchCtx, updates)

	s.logger.Info("MPRIS service started", zap.String("name", BusName))
	return nil
}

// Stop stops mirroring and closes the bus connection
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	// Wait for the watcher before closing the connection it emits on
	s.wg.Wait()

	s.mu.Lock()
	s.closeConn(s.conn)
	s.conn = nil
	s.mu.Unlock()

	s.logger.Info("MPRIS service stopped")
	return nil
}

func (s *Service) closeConn(conn DBusClient) {
	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil {
		s.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
	}
}

// export publishes the root, player, properties and introspection objects
func (s *Service) export(conn DBusClient) error {
	root := &rootObject{}
	player := &playerObject{service: s}
	props := &propertiesObject{service: s}

	node := &introspect.Node{
		Name: string(ObjectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{Name: propertiesInterface, Methods: introspect.Methods(props)},
			{Name: rootInterface, Methods: introspect.Methods(root), Properties: introspectProperties(rootProperties())},
			{Name: playerInterface, Methods: introspect.Methods(player), Properties: introspectProperties(playerProperties(domain.Snapshot{}))},
		},
	}

	exports := []struct {
		v     any
		iface string
	}{
		{root, rootInterface},
		{player, playerInterface},
		{props, propertiesInterface},
		{introspect.NewIntrospectable(node), introspect.IntrospectData.Name},
	}
	for _, e := range exports {
		if err := conn.Export(e.v, ObjectPath, e.iface); err != nil {
			return fmt.Errorf("export %s: %w", e.iface, err)
		}
	}
	return nil
}

// watch mirrors snapshots until ctx ends or the engine closes the channel
func (s *Service) watch(ctx context.Context, updates <-chan domain.Snapshot) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				s.logger.Debug("Snapshot stream closed")
				return
			}
			s.apply(snap)
		}
	}
}

// apply emits PropertiesChanged for every player property that differs from the
// last emitted value. Position is excluded; clients poll it.
func (s *Service) apply(snap domain.Snapshot) {
	props := playerProperties(snap)

	s.mu.Lock()
	changed := map[string]dbus.Variant{}
	for name, v := range props {
		if name == "Position" {
			continue
		}
		if old, ok := s.last[name]; !ok || !reflect.DeepEqual(old.Value(), v.Value()) {
			changed[name] = v
		}
	}
	s.last = props
	conn := s.conn
	s.mu.Unlock()

	if len(changed) == 0 || conn == nil {
		return
	}

	if err := conn.Emit(ObjectPath, propertiesChanged, playerInterface, changed, []string{}); err != nil {
		s.logEmitWarning(err)
		return
	}
	s.logger.Debug("PropertiesChanged emitted", zap.Int("properties", len(changed)))
}

// logEmitWarning is rate limited to avoid log spam while progress ticks
func (s *Service) logEmitWarning(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const warningInterval = 5 * time.Second
	now := time.Now()

	if now.Sub(s.lastEmitWarning) >= warningInterval {
		s.logger.Warn("Failed to emit PropertiesChanged", zap.Error(err))
		s.lastEmitWarning = now
	}
}

func (s *Service) snapshot() (domain.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	return s.player.Snapshot(ctx)
}

// dispatch runs cmd on the engine. Commands that are impossible in the
// current state are no-ops, as MPRIS clients expect.
func (s *Service) dispatch(cmd engine.Command) *dbus.Error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	err := s.player.Dispatch(ctx, cmd)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrNoFolder),
		errors.Is(err, domain.ErrUnknownDuration),
		errors.Is(err, domain.ErrStaleResponse):
		s.logger.Debug("MPRIS command ignored", zap.String("command", string(cmd.Kind)), zap.Error(err))
		return nil
	default:
		s.logger.Warn("MPRIS command failed", zap.String("command", string(cmd.Kind)), zap.Error(err))
		return dbus.MakeFailedError(err)
	}
}

// trackPath returns the MPRIS track id of the current track
func trackPath(snap domain.Snapshot) dbus.ObjectPath {
	if snap.Index == domain.NoTrack || snap.Status == domain.StatusEmpty || snap.Status == "" {
		return noTrackPath
	}
	return dbus.ObjectPath(fmt.Sprintf("/org/mpris/MediaPlayer2/albumplayer/track/%d", snap.Index))
}

func playbackStatus(status domain.PlayerStatus) string {
	switch status {
	case domain.StatusPlaying:
		return "Playing"
	case domain.StatusPaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

func toMicros(seconds float64) int64 {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0
	}
	return int64(seconds * microsPerSecond)
}

func metadata(snap domain.Snapshot) map[string]dbus.Variant {
	md := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(trackPath(snap)),
	}
	if snap.NowPlaying == "" {
		return md
	}

	md["xesam:title"] = dbus.MakeVariant(snap.NowPlaying)
	md["xesam:album"] = dbus.MakeVariant(snap.Folder)
	md["xesam:trackNumber"] = dbus.MakeVariant(int32(snap.Index + 1))
	if snap.Duration > 0 {
		md["mpris:length"] = dbus.MakeVariant(toMicros(snap.Duration))
	}
	return md
}

// playerProperties returns the org.mpris.MediaPlayer2.Player properties for snap
func playerProperties(snap domain.Snapshot) map[string]dbus.Variant {
	loaded := snap.Status == domain.StatusPlaying || snap.Status == domain.StatusPaused
	return map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant(playbackStatus(snap.Status)),
		"Metadata":       dbus.MakeVariant(metadata(snap)),
		"Position":       dbus.MakeVariant(toMicros(snap.CurrentTime)),
		"Rate":           dbus.MakeVariant(1.0),
		"MinimumRate":    dbus.MakeVariant(1.0),
		"MaximumRate":    dbus.MakeVariant(1.0),
		"Volume":         dbus.MakeVariant(1.0),
		"CanGoNext":      dbus.MakeVariant(loaded && snap.Index < len(snap.Tracks)-1),
		"CanGoPrevious":  dbus.MakeVariant(loaded && snap.Index > 0),
		"CanPlay":        dbus.MakeVariant(loaded),
		"CanPause":       dbus.MakeVariant(loaded),
		"CanSeek":        dbus.MakeVariant(loaded && snap.Duration > 0),
		"CanControl":     dbus.MakeVariant(true),
	}
}

// rootProperties returns the org.mpris.MediaPlayer2 properties
func rootProperties() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"CanQuit":             dbus.MakeVariant(false),
		"CanRaise":            dbus.MakeVariant(false),
		"HasTrackList":        dbus.MakeVariant(false),
		"Identity":            dbus.MakeVariant("Album Player"),
		"DesktopEntry":        dbus.MakeVariant("albumplayer"),
		"SupportedUriSchemes": dbus.MakeVariant([]string{}),
		"SupportedMimeTypes":  dbus.MakeVariant([]string{"audio/mpeg", "audio/wav"}),
	}
}

func introspectProperties(props map[string]dbus.Variant) []introspect.Property {
	out := make([]introspect.Property, 0, len(props))
	for name, v := range props {
		out = append(out, introspect.Property{
			Name:   name,
			Type:   v.Signature().String(),
			Access: "read",
		})
	}
	return out
}
