package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"hostsync/internal/config"
)

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	logger, closer, err := New(
		config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: path},
		config.AppConfig{Name: "hostsync", Environment: "test", Version: "1.0.0"},
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer closer.Close()

	logger.Info().Msg("started")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", data, err)
	}
	if entry["app"] != "hostsync" || entry["env"] != "test" || entry["message"] != "started" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestNewFileOutputRequiresPath(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Output: "file"}, config.AppConfig{})
	if err == nil {
		t.Fatalf("expected error for missing file path")
	}
}

func TestNewRejectsUnknownOutput(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Output: "syslog"}, config.AppConfig{})
	if err == nil {
		t.Fatalf("expected error for unknown output")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logger, _, err := New(config.LoggingConfig{Level: "chatty"}, config.AppConfig{Name: "hostsync"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if logger.GetLevel().String() != "info" {
		t.Fatalf("expected info level, got %s", logger.GetLevel())
	}
}
