package mpris

import (
	"github.com/genricoloni/albumplayer/internal/domain"
	"github.com/genricoloni/albumplayer/internal/engine"
	"github.com/godbus/dbus/v5"
)

// rootObject implements org.mpris.MediaPlayer2
type rootObject struct{}

// Raise is a no-op; the player has no window
func (r *rootObject) Raise() *dbus.Error { return nil }

// Quit is a no-op; CanQuit is false
func (r *rootObject) Quit() *dbus.Error { return nil }

// playerObject implements org.mpris.MediaPlayer2.Player
type playerObject struct {
	service *Service
}

// PlayPause toggles playback
func (p *playerObject) PlayPause() *dbus.Error {
	return p.service.dispatch(engine.TogglePause())
}

// Play resumes a paused track
func (p *playerObject) Play() *dbus.Error {
	return p.toggleIf(domain.StatusPaused)
}

// Pause pauses a playing track
func (p *playerObject) Pause() *dbus.Error {
	return p.toggleIf(domain.StatusPlaying)
}

// Stop pauses playback; the track stays loaded
func (p *playerObject) Stop() *dbus.Error {
	return p.toggleIf(domain.StatusPlaying)
}

func (p *playerObject) toggleIf(status domain.PlayerStatus) *dbus.Error {
	snap, err := p.service.snapshot()
	if err != nil {
		return dbus.MakeFailedError(err)
	}
	if snap.Status != status {
		return nil
	}
	return p.service.dispatch(engine.TogglePause())
}

// Next plays the next track
func (p *playerObject) Next() *dbus.Error {
	return p.service.dispatch(engine.Next())
}

// Previous plays the previous track
func (p *playerObject) Previous() *dbus.Error {
	return p.service.dispatch(engine.Previous())
}

// Seek moves the position by offset microseconds. Seeking past the end skips to the next track.
func (p *playerObject) Seek(offset int64) *dbus.Error {
	snap, err := p.service.snapshot()
	if err != nil {
		return dbus.MakeFailedError(err)
	}
	if snap.Duration <= 0 {
		return nil
	}

	target := snap.CurrentTime + float64(offset)/microsPerSecond
	if target > snap.Duration {
		return p.service.dispatch(engine.Next())
	}
	if target < 0 {
		target = 0
	}
	return p.service.dispatch(engine.Seek(target / snap.Duration))
}

// SetPosition moves to position microseconds when trackID is the current track
func (p *playerObject) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	snap, err := p.service.snapshot()
	if err != nil {
		return dbus.MakeFailedError(err)
	}
	if trackID != trackPath(snap) || snap.Duration <= 0 {
		return nil
	}

	seconds := float64(position) / microsPerSecond
	if seconds < 0 || seconds > snap.Duration {
		return nil
	}
	return p.service.dispatch(engine.Seek(seconds / snap.Duration))
}

// OpenUri is unsupported; SupportedUriSchemes is empty
func (p *playerObject) OpenUri(uri string) *dbus.Error {
	return dbus.NewError("org.mpris.MediaPlayer2.Error.NotSupported", []any{"OpenUri is not supported"})
}

// propertiesObject implements org.freedesktop.DBus.Properties for both MPRIS interfaces
type propertiesObject struct {
	service *Service
}

func (o *propertiesObject) all(iface string) (map[string]dbus.Variant, *dbus.Error) {
	switch iface {
	case rootInterface:
		return rootProperties(), nil
	case playerInterface:
		snap, err := o.service.snapshot()
		if err != nil {
			return nil, dbus.MakeFailedError(err)
		}
		return playerProperties(snap), nil
	default:
		return nil, dbus.NewError("org.freedesktop.DBus.Error.UnknownInterface", []any{iface})
	}
}

// Get returns one property
func (o *propertiesObject) Get(iface, prop string) (dbus.Variant, *dbus.Error) {
	props, derr := o.all(iface)
	if derr != nil {
		return dbus.Variant{}, derr
	}
	v, ok := props[prop]
	if !ok {
		return dbus.Variant{}, dbus.NewError("org.freedesktop.DBus.Error.UnknownProperty", []any{prop})
	}
	return v, nil
}

// GetAll returns every property of iface
func (o *propertiesObject) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	return o.all(iface)
}

// Set rejects writes; all exported properties are read-only
func (o *propertiesObject) Set(iface, prop string, value dbus.Variant) *dbus.Error {
	return dbus.NewError("org.freedesktop.DBus.Error.PropertyReadOnly", []any{prop})
}
