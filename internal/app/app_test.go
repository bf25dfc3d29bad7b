package app

import (
	"testing"

	"github.com/genricoloni/albumplayer/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// TestGraphValidity verifies that every option set resolves its dependencies
func TestGraphValidity(t *testing.T) {
	logger := fx.Supply(zap.NewNop())

	tests := []struct {
		name string
		opts fx.Option
	}{
		{name: "Core", opts: fx.Options(logger, Core)},
		{name: "Daemon", opts: fx.Options(logger, Core, Daemon)},
		{name: "Terminal", opts: fx.Options(logger, Core, Daemon, UI, fx.Invoke(func(tui.Model) {}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := fx.ValidateApp(tt.opts); err != nil {
				t.Errorf("Dependency graph is not valid: %v", err)
			}
		})
	}
}
