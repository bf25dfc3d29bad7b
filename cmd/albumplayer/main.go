package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/genricoloni/albumplayer/internal/app"
	"github.com/genricoloni/albumplayer/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// AppOptions is the terminal player: the daemon stack plus the bubbletea front-end
var AppOptions = fx.Options(
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),
	fx.Provide(newLogger),
	app.Core,
	app.Daemon,
	app.UI,
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var model tui.Model
	player := fx.New(AppOptions, fx.Populate(&model))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := player.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	uiErr := tui.Run(ctx, model)

	if err := player.Stop(context.Background()); err != nil {
		return fmt.Errorf("failed to stop: %w", err)
	}
	return uiErr
}

// newLogger writes to a file; stderr belongs to the terminal UI
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	path := os.Getenv("ALBUMPLAYER_LOG_FILE")
	if path == "" {
		path = filepath.Join(os.TempDir(), "albumplayer.log")
	}
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
