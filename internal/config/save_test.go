package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSave_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := NewConfig()
	cfg.Workspace.DataDir = "data"
	cfg.Source.Delimiter = ";"
	cfg.Source.Settle = 2 * time.Second
	cfg.Source.Interval = 30 * time.Second
	cfg.Cache.Capacity = "64mb"
	cfg.History.AutoSnapshot = 5 * time.Minute
	cfg.Server.Addr = "localhost:9999"
	cfg.Logging.Level = LogLevelDebug
	cfg.Hooks.PostReload = []HookDefinition{
		{Command: "make notify", Timeout: 45 * time.Second, OnFailure: FailureModeWarnContinue},
	}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Workspace.DataDir != "data" {
		t.Errorf("expected data_dir 'data', got %q", loaded.Workspace.DataDir)
	}
	if loaded.Source.Delimiter != ";" {
		t.Errorf("expected delimiter ';', got %q", loaded.Source.Delimiter)
	}
	if loaded.Source.Settle != 2*time.Second {
		t.Errorf("expected settle 2s, got %v", loaded.Source.Settle)
	}
	if loaded.Source.Interval != 30*time.Second {
		t.Errorf("expected interval 30s, got %v", loaded.Source.Interval)
	}
	if loaded.Cache.Capacity != "64mb" {
		t.Errorf("expected capacity '64mb', got %q", loaded.Cache.Capacity)
	}
	if loaded.History.AutoSnapshot != 5*time.Minute {
		t.Errorf("expected auto_snapshot 5m, got %v", loaded.History.AutoSnapshot)
	}
	if loaded.Server.Addr != "localhost:9999" {
		t.Errorf("expected addr 'localhost:9999', got %q", loaded.Server.Addr)
	}
	if loaded.Logging.Level != LogLevelDebug {
		t.Errorf("expected level debug, got %q", loaded.Logging.Level)
	}
	if len(loaded.Hooks.PostReload) != 1 {
		t.Fatalf("expected 1 post_reload hook, got %d", len(loaded.Hooks.PostReload))
	}
	hook := loaded.Hooks.PostReload[0]
	if hook.Command != "make notify" {
		t.Errorf("expected hook command 'make notify', got %q", hook.Command)
	}
	if hook.Timeout != 45*time.Second {
		t.Errorf("expected hook timeout 45s, got %v", hook.Timeout)
	}
	if hook.OnFailure != FailureModeWarnContinue {
		t.Errorf("expected on_failure warn_continue, got %q", hook.OnFailure)
	}
}

func TestSave_DefaultsRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	if err := Save(NewConfig(), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	defaults := NewConfig()
	if loaded.Source.Settle != defaults.Source.Settle {
		t.Errorf("expected settle %v, got %v", defaults.Source.Settle, loaded.Source.Settle)
	}
	if loaded.Server.Drain != defaults.Server.Drain {
		t.Errorf("expected drain %v, got %v", defaults.Server.Drain, loaded.Server.Drain)
	}
	if loaded.TUI.Stale != defaults.TUI.Stale {
		t.Errorf("expected stale %v, got %v", defaults.TUI.Stale, loaded.TUI.Stale)
	}
	if loaded.Logging.MaxAge != defaults.Logging.MaxAge {
		t.Errorf("expected max_age %v, got %v", defaults.Logging.MaxAge, loaded.Logging.MaxAge)
	}
}

func TestSave_DurationsReadable(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	if err := Save(NewConfig(), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"settle: 500ms",
		"drain: 5s",
		"stale: 10m",
		"max_age: 168h",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("expected saved config to contain %q\n%s", want, content)
		}
	}

	// Nanosecond integers mean the duration marshaling regressed.
	if strings.Contains(content, "500000000") {
		t.Errorf("saved config contains raw nanoseconds:\n%s", content)
	}
}

func TestSave_WritesHeader(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	if err := Save(NewConfig(), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# gridwatch workspace configuration.") {
		t.Errorf("expected header comment, got:\n%s", string(data))
	}
}

func TestSave_CreatesParentDirs(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "deeper", "config.yaml")

	if err := Save(NewConfig(), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file at %s: %v", path, err)
	}
}

func TestSaveToDir(t *testing.T) {
	tmpDir := t.TempDir()

	path, err := SaveToDir(NewConfig(), tmpDir)
	if err != nil {
		t.Fatalf("SaveToDir failed: %v", err)
	}

	want := filepath.Join(tmpDir, DefaultConfigPath)
	if path != want {
		t.Errorf("expected path %s, got %s", want, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file at %s: %v", path, err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.Addr != DefaultServerAddr {
		t.Errorf("expected addr %q, got %q", DefaultServerAddr, loaded.Server.Addr)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{500 * time.Millisecond, "500ms"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "90s"},
		{10 * time.Minute, "10m"},
		{90 * time.Minute, "90m"},
		{168 * time.Hour, "168h"},
		{1500 * time.Millisecond, "1.5s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
