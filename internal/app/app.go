package app

import (
	"context"

	"github.com/genricoloni/albumplayer/internal/audio"
	"github.com/genricoloni/albumplayer/internal/catalog"
	"github.com/genricoloni/albumplayer/internal/config"
	"github.com/genricoloni/albumplayer/internal/directory"
	"github.com/genricoloni/albumplayer/internal/domain"
	"github.com/genricoloni/albumplayer/internal/engine"
	"github.com/genricoloni/albumplayer/internal/fetcher"
	"github.com/genricoloni/albumplayer/internal/mpris"
	"github.com/genricoloni/albumplayer/internal/player"
	"github.com/genricoloni/albumplayer/internal/processor"
	"github.com/genricoloni/albumplayer/internal/server"
	"github.com/genricoloni/albumplayer/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Core provides configuration, metadata access, audio and the playback engine
var Core = fx.Options(
	fx.Provide(
		fx.Annotate(config.NewAppConfig, fx.As(new(domain.Config))),
		fx.Annotate(fetcher.NewHTTPSource, fx.As(new(domain.MetadataSource))),
		fx.Annotate(catalog.NewTrackCatalog, fx.As(new(domain.Catalog))),
		fx.Annotate(directory.NewAlbumDirectory, fx.As(new(domain.Directory))),
		fx.Annotate(audio.NewBeepAudio, fx.As(fx.Self()), fx.As(new(domain.AudioCapability))),
		player.NewController,
		engine.NewEngine,
	),
	fx.Invoke(registerCore),
)

// Daemon adds the HTTP surface and the MPRIS export on top of Core
var Daemon = fx.Options(
	fx.Provide(
		fx.Annotate(processor.NewCoverRenderer, fx.As(new(domain.CoverProcessor))),
		func(e *engine.Engine) server.Player { return e },
		func(e *engine.Engine) mpris.Player { return e },
		server.NewServer,
		mpris.NewService,
	),
	fx.Invoke(registerDaemon),
)

// UI provides the terminal front-end model
var UI = fx.Options(
	fx.Provide(
		func(e *engine.Engine) tui.Player { return e },
		tui.NewModel,
	),
)

// registerCore starts the audio progress loop before the engine that consumes it
func registerCore(lc fx.Lifecycle, logger *zap.Logger, a *audio.BeepAudio, e *engine.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := a.Start(ctx); err != nil {
				return err
			}
			return e.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			if err := e.Stop(ctx); err != nil {
				logger.Warn("Engine stop failed", zap.Error(err))
			}
			return a.Stop(ctx)
		},
	})
}

// registerDaemon starts the HTTP server and the MPRIS service
func registerDaemon(lc fx.Lifecycle, srv *server.Server, svc *mpris.Service) {
	lc.Append(fx.Hook{
		OnStart: srv.Start,
		OnStop:  srv.Stop,
	})
	lc.Append(fx.Hook{
		OnStart: svc.Start,
		OnStop:  svc.Stop,
	})
}
