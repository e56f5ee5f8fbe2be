// Package config provides configuration data structures for gridwatch.
package config

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// Config represents the complete gridwatch configuration loaded from
// .gridwatch/config.yaml.
type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace" json:"workspace" mapstructure:"workspace"`
	Source    SourceConfig    `yaml:"source"    json:"source"    mapstructure:"source"`
	Cache     CacheConfig     `yaml:"cache"     json:"cache"     mapstructure:"cache"`
	History   HistoryConfig   `yaml:"history"   json:"history"   mapstructure:"history"`
	Server    ServerConfig    `yaml:"server"    json:"server"    mapstructure:"server"`
	Sample    SampleConfig    `yaml:"sample"    json:"sample"    mapstructure:"sample"`
	TUI       TUIConfig       `yaml:"tui"       json:"tui"       mapstructure:"tui"`
	Logging   LoggingConfig   `yaml:"logging"   json:"logging"   mapstructure:"logging"`
	Hooks     HooksConfig     `yaml:"hooks"     json:"hooks"     mapstructure:"hooks"`
}

// WorkspaceConfig configures where gridwatch finds its data.
type WorkspaceConfig struct {
	// DataDir is the directory scanned for data files, relative to the
	// workspace root. Empty means the workspace root itself.
	DataDir string `yaml:"data_dir" json:"data_dir" mapstructure:"data_dir"`
}

// SourceConfig configures file loading and live reload.
type SourceConfig struct {
	// Delimiter is the CSV field separator (default: ","). Tab-separated
	// files always split on tab regardless.
	Delimiter string `yaml:"delimiter" json:"delimiter" mapstructure:"delimiter"`
	// Parallelism bounds concurrent file decodes (default: 4).
	Parallelism int `yaml:"parallelism" json:"parallelism" mapstructure:"parallelism"`
	// Watch enables live reload on file changes (default: true).
	Watch bool `yaml:"watch" json:"watch" mapstructure:"watch"`
	// Settle is how long a file must stay quiet before its change
	// triggers a reload (default: 500ms).
	Settle time.Duration `yaml:"settle" json:"settle" mapstructure:"settle"`
	// Interval reloads the whole data directory periodically.
	// Zero disables interval reloads.
	Interval time.Duration `yaml:"interval" json:"interval" mapstructure:"interval"`
}

// CacheConfig configures the query result cache.
type CacheConfig struct {
	// Capacity caps cached payload bytes, e.g. "256mb". Empty uses a
	// small share of system memory; "0" disables caching.
	Capacity string `yaml:"capacity" json:"capacity" mapstructure:"capacity"`
	// Shards is the number of cache shards (default: 8).
	Shards int `yaml:"shards" json:"shards" mapstructure:"shards"`
}

// HistoryConfig configures the snapshot store.
type HistoryConfig struct {
	// Keep is how many snapshots pruning retains per frame (default: 50).
	Keep int `yaml:"keep" json:"keep" mapstructure:"keep"`
	// AutoSnapshot records a snapshot of every frame at this interval
	// while the scheduler runs. Zero disables auto-snapshots.
	AutoSnapshot time.Duration `yaml:"auto_snapshot" json:"auto_snapshot" mapstructure:"auto_snapshot"`
}

// ServerConfig configures the read-only HTTP server.
type ServerConfig struct {
	// Addr is the listen address (default: "localhost:8090").
	Addr string `yaml:"addr" json:"addr" mapstructure:"addr"`
	// PageSize is the row count per HTML table page (default: 50).
	PageSize int `yaml:"page_size" json:"page_size" mapstructure:"page_size"`
	// Drain is how long shutdown waits for in-flight requests (default: 5s).
	Drain time.Duration `yaml:"drain" json:"drain" mapstructure:"drain"`
}

// SampleConfig configures demo data generation.
type SampleConfig struct {
	// Seed makes demo data reproducible. Zero seeds from the clock.
	Seed int64 `yaml:"seed" json:"seed" mapstructure:"seed"`
	// Orders is the demo orders row count. Zero uses the built-in default.
	Orders int `yaml:"orders" json:"orders" mapstructure:"orders"`
	// Latency is the demo latency row count. Zero uses the built-in default.
	Latency int `yaml:"latency" json:"latency" mapstructure:"latency"`
	// SignupDays is how many days of demo signups to generate.
	SignupDays int `yaml:"signup_days" json:"signup_days" mapstructure:"signup_days"`
}

// TUIConfig configures the terminal dashboard.
type TUIConfig struct {
	// AltScreen runs the dashboard on the terminal's alternate screen
	// (default: true).
	AltScreen bool `yaml:"alt_screen" json:"alt_screen" mapstructure:"alt_screen"`
	// DateFormat renders time cells in the table (default: "2006-01-02 15:04").
	DateFormat string `yaml:"date_format" json:"date_format" mapstructure:"date_format"`
	// Stale marks frames whose last reload is older than this (default: 10m).
	Stale time.Duration `yaml:"stale" json:"stale" mapstructure:"stale"`
}

// LogLevel defines the minimum log severity written.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig configures file and console logging.
type LoggingConfig struct {
	// Level is the minimum level written (default: info).
	Level LogLevel `yaml:"level" json:"level" mapstructure:"level"`
	// Dir is the log file directory (default: .gridwatch/logs).
	Dir string `yaml:"dir" json:"dir" mapstructure:"dir"`
	// MaxFiles is how many timestamped log files to keep (default: 10).
	MaxFiles int `yaml:"max_files" json:"max_files" mapstructure:"max_files"`
	// MaxAge is how old a log file may get before cleanup (default: 168h).
	MaxAge time.Duration `yaml:"max_age" json:"max_age" mapstructure:"max_age"`
	// Console mirrors logs to stderr (default: false).
	Console bool `yaml:"console" json:"console" mapstructure:"console"`
	// JSON switches log files to JSON lines (default: false).
	JSON bool `yaml:"json" json:"json" mapstructure:"json"`
}

// FailureMode defines how hook failures are handled.
type FailureMode string

const (
	// FailureModeWarnContinue logs a warning and keeps the scheduler going.
	FailureModeWarnContinue FailureMode = "warn_continue"
	// FailureModeAbort stops the scheduler.
	FailureModeAbort FailureMode = "abort"
)

// HookDefinition defines a single shell hook.
type HookDefinition struct {
	// Command is the shell command to run.
	Command string `yaml:"command" json:"command" mapstructure:"command"`
	// Timeout bounds the command run time (default: 30s).
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" mapstructure:"timeout"`
	// OnFailure defines how a failing hook is handled (default: warn_continue).
	OnFailure FailureMode `yaml:"on_failure" json:"on_failure" mapstructure:"on_failure"`
}

// HooksConfig configures shell hooks run on refresh events.
type HooksConfig struct {
	// PostReload hooks run after every completed reload pass.
	PostReload []HookDefinition `yaml:"post_reload" json:"post_reload" mapstructure:"post_reload"`
	// PostSnapshot hooks run after a snapshot is recorded.
	PostSnapshot []HookDefinition `yaml:"post_snapshot" json:"post_snapshot" mapstructure:"post_snapshot"`
}

// Default values.
const (
	DefaultDelimiter   = ","
	DefaultParallelism = 4
	DefaultSettle      = 500 * time.Millisecond
	DefaultCacheShards = 8
	DefaultHistoryKeep = 50
	DefaultServerAddr  = "localhost:8090"
	DefaultPageSize    = 50
	DefaultDrain       = 5 * time.Second
	DefaultDateFormat  = "2006-01-02 15:04"
	DefaultStale       = 10 * time.Minute
	DefaultLogDir      = ".gridwatch/logs"
	DefaultMaxLogFiles = 10
	DefaultMaxLogAge   = 7 * 24 * time.Hour
	DefaultHookTimeout = 30 * time.Second
)

// NewConfig returns a new Config with default values applied.
func NewConfig() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			DataDir: "",
		},
		Source: SourceConfig{
			Delimiter:   DefaultDelimiter,
			Parallelism: DefaultParallelism,
			Watch:       true,
			Settle:      DefaultSettle,
			Interval:    0,
		},
		Cache: CacheConfig{
			Capacity: "",
			Shards:   DefaultCacheShards,
		},
		History: HistoryConfig{
			Keep:         DefaultHistoryKeep,
			AutoSnapshot: 0,
		},
		Server: ServerConfig{
			Addr:     DefaultServerAddr,
			PageSize: DefaultPageSize,
			Drain:    DefaultDrain,
		},
		Sample: SampleConfig{},
		TUI: TUIConfig{
			AltScreen:  true,
			DateFormat: DefaultDateFormat,
			Stale:      DefaultStale,
		},
		Logging: LoggingConfig{
			Level:    LogLevelInfo,
			Dir:      DefaultLogDir,
			MaxFiles: DefaultMaxLogFiles,
			MaxAge:   DefaultMaxLogAge,
			Console:  false,
			JSON:     false,
		},
		Hooks: HooksConfig{
			PostReload:   []HookDefinition{},
			PostSnapshot: []HookDefinition{},
		},
	}
}

// ApplyDefaults applies default values to any unset fields.
// This is used after loading config from file to fill in missing values.
func (c *Config) ApplyDefaults() {
	defaults := NewConfig()

	// Apply source defaults
	if c.Source.Delimiter == "" {
		c.Source.Delimiter = defaults.Source.Delimiter
	}
	if c.Source.Parallelism == 0 {
		c.Source.Parallelism = defaults.Source.Parallelism
	}
	if c.Source.Settle == 0 {
		c.Source.Settle = defaults.Source.Settle
	}
	// Note: Watch defaults to true but we can't detect if it was explicitly
	// set to false vs never set. The loader handles this by using the
	// default config as base.

	// Apply cache defaults
	if c.Cache.Shards == 0 {
		c.Cache.Shards = defaults.Cache.Shards
	}

	// Apply history defaults
	if c.History.Keep == 0 {
		c.History.Keep = defaults.History.Keep
	}

	// Apply server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.PageSize == 0 {
		c.Server.PageSize = defaults.Server.PageSize
	}
	if c.Server.Drain == 0 {
		c.Server.Drain = defaults.Server.Drain
	}

	// Apply tui defaults
	if c.TUI.DateFormat == "" {
		c.TUI.DateFormat = defaults.TUI.DateFormat
	}
	if c.TUI.Stale == 0 {
		c.TUI.Stale = defaults.TUI.Stale
	}

	// Apply logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = defaults.Logging.Dir
	}
	if c.Logging.MaxFiles == 0 {
		c.Logging.MaxFiles = defaults.Logging.MaxFiles
	}
	if c.Logging.MaxAge == 0 {
		c.Logging.MaxAge = defaults.Logging.MaxAge
	}

	// Initialize nil slices
	if c.Hooks.PostReload == nil {
		c.Hooks.PostReload = []HookDefinition{}
	}
	if c.Hooks.PostSnapshot == nil {
		c.Hooks.PostSnapshot = []HookDefinition{}
	}
}

// DelimiterRune returns the CSV delimiter as a rune, comma when unset.
func (c SourceConfig) DelimiterRune() rune {
	if c.Delimiter == "" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// CapacityBytes parses the configured cache capacity. ok is false when
// Capacity is empty or unparseable and the built-in default should apply.
func (c CacheConfig) CapacityBytes() (uint64, bool) {
	if c.Capacity == "" {
		return 0, false
	}
	n, err := humanize.ParseBytes(c.Capacity)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := "multiple validation errors:"
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidationErrors

	// Validate source config
	if c.Source.Delimiter != "" && utf8.RuneCountInString(c.Source.Delimiter) != 1 {
		errs = append(errs, &ValidationError{Field: "source.delimiter", Message: "must be a single character"})
	}
	if c.Source.Parallelism < 0 {
		errs = append(errs, &ValidationError{Field: "source.parallelism", Message: "must be non-negative"})
	}
	if c.Source.Settle < 0 {
		errs = append(errs, &ValidationError{Field: "source.settle", Message: "must be non-negative"})
	}
	if c.Source.Interval < 0 {
		errs = append(errs, &ValidationError{Field: "source.interval", Message: "must be non-negative"})
	}
	if c.Source.Interval > 0 && c.Source.Interval < time.Second {
		errs = append(errs, &ValidationError{Field: "source.interval", Message: "must be at least 1s"})
	}

	// Validate cache config
	if c.Cache.Capacity != "" {
		if _, err := humanize.ParseBytes(c.Cache.Capacity); err != nil {
			errs = append(errs, &ValidationError{Field: "cache.capacity", Message: "must be a byte size like '256mb'"})
		}
	}
	if c.Cache.Shards < 0 {
		errs = append(errs, &ValidationError{Field: "cache.shards", Message: "must be non-negative"})
	}

	// Validate history config
	if c.History.Keep < 0 {
		errs = append(errs, &ValidationError{Field: "history.keep", Message: "must be non-negative"})
	}
	if c.History.AutoSnapshot < 0 {
		errs = append(errs, &ValidationError{Field: "history.auto_snapshot", Message: "must be non-negative"})
	}

	// Validate server config
	if c.Server.PageSize < 0 {
		errs = append(errs, &ValidationError{Field: "server.page_size", Message: "must be non-negative"})
	}
	if c.Server.Drain < 0 {
		errs = append(errs, &ValidationError{Field: "server.drain", Message: "must be non-negative"})
	}

	// Validate sample config
	if c.Sample.Orders < 0 {
		errs = append(errs, &ValidationError{Field: "sample.orders", Message: "must be non-negative"})
	}
	if c.Sample.Latency < 0 {
		errs = append(errs, &ValidationError{Field: "sample.latency", Message: "must be non-negative"})
	}
	if c.Sample.SignupDays < 0 {
		errs = append(errs, &ValidationError{Field: "sample.signup_days", Message: "must be non-negative"})
	}

	// Validate tui config
	if c.TUI.Stale < 0 {
		errs = append(errs, &ValidationError{Field: "tui.stale", Message: "must be non-negative"})
	}

	// Validate logging config
	if c.Logging.Level != "" {
		switch c.Logging.Level {
		case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
			// valid
		default:
			errs = append(errs, &ValidationError{
				Field:   "logging.level",
				Message: "must be 'debug', 'info', 'warn', or 'error'",
			})
		}
	}
	if c.Logging.MaxFiles < 0 {
		errs = append(errs, &ValidationError{Field: "logging.max_files", Message: "must be non-negative"})
	}
	if c.Logging.MaxAge < 0 {
		errs = append(errs, &ValidationError{Field: "logging.max_age", Message: "must be non-negative"})
	}

	// Validate hooks
	for i, hook := range c.Hooks.PostReload {
		if err := validateHook(hook, "hooks.post_reload", i); err != nil {
			errs = append(errs, err)
		}
	}
	for i, hook := range c.Hooks.PostSnapshot {
		if err := validateHook(hook, "hooks.post_snapshot", i); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateHook(hook HookDefinition, prefix string, index int) *ValidationError {
	field := fmt.Sprintf("%s[%d]", prefix, index)

	if hook.Command == "" {
		return &ValidationError{
			Field:   field + ".command",
			Message: "is required",
		}
	}

	if hook.Timeout < 0 {
		return &ValidationError{
			Field:   field + ".timeout",
			Message: "must be non-negative",
		}
	}

	// Validate on_failure mode
	if hook.OnFailure != "" {
		switch hook.OnFailure {
		case FailureModeWarnContinue, FailureModeAbort:
			// valid
		default:
			return &ValidationError{
				Field:   field + ".on_failure",
				Message: "must be 'warn_continue' or 'abort'",
			}
		}
	}

	return nil
}
