package main

import (
	"context"
	"testing"

	"github.com/quizdeck/quizdeck/internal/platform/config"
)

func TestSetupProgressDisabledWithoutDatabase(t *testing.T) {
	cfg := &config.Config{}

	store, cleanup, err := setupProgress(context.Background(), cfg)
	if err != nil {
		t.Fatalf("setupProgress() error = %v", err)
	}
	defer cleanup()
	if store != nil {
		t.Error("store = non-nil without a database URL")
	}
}

func TestSetupLoggingAcceptsAllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		setupLogging(config.LogConfig{Level: level, Format: "json"})
	}
	setupLogging(config.LogConfig{Level: "info", Format: "text"})
}
