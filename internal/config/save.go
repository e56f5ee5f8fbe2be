package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// configHeader is written at the top of scaffolded config files.
const configHeader = `# gridwatch workspace configuration.
# Unset values fall back to built-in defaults. Durations use Go
# syntax (500ms, 5s, 10m, 24h); 0s disables the timer it configures.

`

// Save writes cfg to path as YAML, creating parent directories as
// needed. Durations are written back in Go syntax so the file stays
// editable and round-trips through Load.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	out := append([]byte(configHeader), data...)
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// SaveToDir writes cfg to .gridwatch/config.yaml under dir and
// returns the written path.
func SaveToDir(cfg *Config, dir string) (string, error) {
	path := filepath.Join(dir, DefaultConfigPath)
	if err := Save(cfg, path); err != nil {
		return "", err
	}
	return path, nil
}

// The MarshalYAML methods below render time.Duration fields as
// strings. Without them yaml.Marshal emits raw nanosecond integers,
// which nobody should have to edit by hand.

// MarshalYAML implements yaml.Marshaler for SourceConfig.
func (c SourceConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Delimiter   string `yaml:"delimiter"`
		Parallelism int    `yaml:"parallelism"`
		Watch       bool   `yaml:"watch"`
		Settle      string `yaml:"settle"`
		Interval    string `yaml:"interval"`
	}{c.Delimiter, c.Parallelism, c.Watch, formatDuration(c.Settle), formatDuration(c.Interval)}, nil
}

// MarshalYAML implements yaml.Marshaler for HistoryConfig.
func (c HistoryConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Keep         int    `yaml:"keep"`
		AutoSnapshot string `yaml:"auto_snapshot"`
	}{c.Keep, formatDuration(c.AutoSnapshot)}, nil
}

// MarshalYAML implements yaml.Marshaler for ServerConfig.
func (c ServerConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Addr     string `yaml:"addr"`
		PageSize int    `yaml:"page_size"`
		Drain    string `yaml:"drain"`
	}{c.Addr, c.PageSize, formatDuration(c.Drain)}, nil
}

// MarshalYAML implements yaml.Marshaler for TUIConfig.
func (c TUIConfig) MarshalYAML() (interface{}, error) {
	return struct {
		AltScreen  bool   `yaml:"alt_screen"`
		DateFormat string `yaml:"date_format"`
		Stale      string `yaml:"stale"`
	}{c.AltScreen, c.DateFormat, formatDuration(c.Stale)}, nil
}

// MarshalYAML implements yaml.Marshaler for LoggingConfig.
func (c LoggingConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Level    LogLevel `yaml:"level"`
		Dir      string   `yaml:"dir"`
		MaxFiles int      `yaml:"max_files"`
		MaxAge   string   `yaml:"max_age"`
		Console  bool     `yaml:"console"`
		JSON     bool     `yaml:"json"`
	}{c.Level, c.Dir, c.MaxFiles, formatDuration(c.MaxAge), c.Console, c.JSON}, nil
}

// MarshalYAML implements yaml.Marshaler for HookDefinition.
func (h HookDefinition) MarshalYAML() (interface{}, error) {
	var timeout string
	if h.Timeout != 0 {
		timeout = formatDuration(h.Timeout)
	}
	return struct {
		Command   string      `yaml:"command"`
		Timeout   string      `yaml:"timeout,omitempty"`
		OnFailure FailureMode `yaml:"on_failure"`
	}{h.Command, timeout, h.OnFailure}, nil
}

// formatDuration renders d in its largest whole unit ("10m", not
// "10m0s") so written files stay readable.
func formatDuration(d time.Duration) string {
	switch {
	case d == 0:
		return "0s"
	case d%time.Hour == 0:
		return strconv.FormatInt(int64(d/time.Hour), 10) + "h"
	case d%time.Minute == 0:
		return strconv.FormatInt(int64(d/time.Minute), 10) + "m"
	case d%time.Second == 0:
		return strconv.FormatInt(int64(d/time.Second), 10) + "s"
	}
	return d.String()
}
