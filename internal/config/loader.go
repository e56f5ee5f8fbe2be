package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is the default path to the config file relative
	// to the workspace root.
	DefaultConfigPath = ".gridwatch/config.yaml"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "GRIDWATCH"
)

// Loader handles loading configuration from files and environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	// Set up viper
	v.SetConfigType("yaml")

	// Set up environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// LoadConfig loads configuration from the specified path, applies defaults,
// merges environment variables, and validates the result.
// If path is empty, it uses DefaultConfigPath relative to the working directory.
func (l *Loader) LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	// Check if the config file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{
			Path:    path,
			Message: "config file not found",
			Err:     err,
		}
	}

	// Set the config file path
	l.v.SetConfigFile(path)

	// Read the config file
	if err := l.v.ReadInConfig(); err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "failed to read config file",
			Err:     err,
		}
	}

	// Start with defaults
	cfg := NewConfig()

	// Unmarshal into the config struct
	if err := l.v.Unmarshal(cfg, viperDecodeHook); err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "failed to parse config file",
			Err:     err,
		}
	}

	// Apply environment variable overrides
	l.applyEnvOverrides(cfg)

	// Apply defaults for any unset values
	cfg.ApplyDefaults()

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .gridwatch/config.yaml in the
// specified directory.
func (l *Loader) LoadConfigFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, DefaultConfigPath)
	return l.LoadConfig(path)
}

// applyEnvOverrides applies environment variable overrides to the config.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	// Workspace settings
	if v := os.Getenv(EnvPrefix + "_WORKSPACE_DATA_DIR"); v != "" {
		cfg.Workspace.DataDir = v
	}

	// Source settings
	if v := os.Getenv(EnvPrefix + "_SOURCE_DELIMITER"); v != "" {
		cfg.Source.Delimiter = v
	}
	if v := os.Getenv(EnvPrefix + "_SOURCE_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Source.Parallelism = n
		}
	}
	if v := os.Getenv(EnvPrefix + "_SOURCE_WATCH"); v != "" {
		cfg.Source.Watch = parseBool(v)
	}
	if v := os.Getenv(EnvPrefix + "_SOURCE_SETTLE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Source.Settle = d
		}
	}
	if v := os.Getenv(EnvPrefix + "_SOURCE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Source.Interval = d
		}
	}

	// Cache settings
	if v := os.Getenv(EnvPrefix + "_CACHE_CAPACITY"); v != "" {
		cfg.Cache.Capacity = v
	}

	// History settings
	if v := os.Getenv(EnvPrefix + "_HISTORY_KEEP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.Keep = n
		}
	}
	if v := os.Getenv(EnvPrefix + "_HISTORY_AUTO_SNAPSHOT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.History.AutoSnapshot = d
		}
	}

	// Server settings
	if v := os.Getenv(EnvPrefix + "_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvPrefix + "_SERVER_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.PageSize = n
		}
	}

	// Sample settings
	if v := os.Getenv(EnvPrefix + "_SAMPLE_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Sample.Seed = n
		}
	}

	// Logging settings
	if v := os.Getenv(EnvPrefix + "_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = LogLevel(v)
	}
	if v := os.Getenv(EnvPrefix + "_LOGGING_CONSOLE"); v != "" {
		cfg.Logging.Console = parseBool(v)
	}
}

// parseBool parses a string as a boolean value.
// Returns true for "true", "1", "yes" (case-insensitive).
// Returns false for anything else.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}

// viperDecodeHook provides custom decoding for viper unmarshaling.
// It composes the standard mapstructure hooks with our custom ones.
func viperDecodeHook(dc *mapstructure.DecoderConfig) {
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToCustomTypeHookFunc(),
	)
}

// stringToCustomTypeHookFunc creates a decode hook for our custom types.
func stringToCustomTypeHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}

		// Handle our custom string types
		switch to {
		case reflect.TypeOf(LogLevel("")):
			return LogLevel(data.(string)), nil
		case reflect.TypeOf(FailureMode("")):
			return FailureMode(data.(string)), nil
		}

		return data, nil
	}
}

// LoadError represents an error that occurred while loading configuration.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load is a convenience function that creates a new Loader and loads configuration.
// If path is empty, it uses DefaultConfigPath.
func Load(path string) (*Config, error) {
	return NewLoader().LoadConfig(path)
}

// LoadFromDir is a convenience function that loads configuration from a directory.
func LoadFromDir(dir string) (*Config, error) {
	return NewLoader().LoadConfigFromDir(dir)
}

// LoadOrDefault loads the config at path, or returns the default config
// when no file exists there. Most workspaces never write a config file.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewConfig(), nil
	}
	return NewLoader().LoadConfig(path)
}

// LoadOrDefaultFromDir loads configuration from a directory, falling back
// to defaults when the directory has no config file.
func LoadOrDefaultFromDir(dir string) (*Config, error) {
	return LoadOrDefault(filepath.Join(dir, DefaultConfigPath))
}
