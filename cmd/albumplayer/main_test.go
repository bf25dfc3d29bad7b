package main

import (
	"path/filepath"
	"testing"

	"go.uber.org/fx"
)

func TestAppGraphValidity(t *testing.T) {
	if err := fx.ValidateApp(AppOptions); err != nil {
		t.Errorf("Dependency graph is not valid: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	t.Setenv("ALBUMPLAYER_LOG_FILE", filepath.Join(t.TempDir(), "player.log"))

	logger, err := newLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	logger.Info("Test logger initialization")
}
