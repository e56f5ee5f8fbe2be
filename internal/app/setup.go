// Package app orchestrates workspace initialization for gridwatch.
// It owns the init flow: directory scaffolding, config and version
// stamping, and optional demo data seeding.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"gridwatch/internal/config"
	griderrors "gridwatch/internal/errors"
	"gridwatch/internal/sample"
	"gridwatch/internal/version"
	"gridwatch/internal/workspace"
)

// SetupResult contains the results of the setup flow.
type SetupResult struct {
	// Config is the configuration written to the workspace.
	Config *config.Config
	// ConfigPath is the path the config file was written to.
	ConfigPath string
	// DataFiles lists the demo CSV paths when demo seeding ran.
	DataFiles []string
	// Workspace describes the initialized directory.
	Workspace *workspace.Info
}

// SetupProgressFunc is called with progress updates during setup.
type SetupProgressFunc func(status string)

// Setup orchestrates workspace initialization.
type Setup struct {
	// WorkspaceDir is the directory to initialize.
	WorkspaceDir string
	// Version stamps the workspace with the initializing release.
	Version string
	// WithDemo seeds demo CSV files after scaffolding.
	WithDemo bool
	// Force overwrites an existing config file.
	Force bool
	// OnProgress is called with status updates.
	OnProgress SetupProgressFunc
}

// NewSetup creates a new Setup for the given directory.
func NewSetup(dir string) *Setup {
	return &Setup{
		WorkspaceDir: dir,
		Version:      "dev",
		OnProgress:   func(status string) {}, // noop by default
	}
}

// NeedsSetup returns true if the directory has no .gridwatch directory.
func NeedsSetup(dir string) bool {
	gwDir := filepath.Join(dir, workspace.ConfigDirName)
	_, err := os.Stat(gwDir)
	return os.IsNotExist(err)
}

// Run performs the full initialization flow: scaffold directories,
// write config and version stamp, and seed demo data when requested.
func (s *Setup) Run() (*SetupResult, error) {
	configPath := filepath.Join(s.WorkspaceDir, config.DefaultConfigPath)
	if !s.Force {
		if _, err := os.Stat(configPath); err == nil {
			return nil, griderrors.WorkspaceAlreadyInitialized(s.WorkspaceDir)
		}
	}

	if err := s.CreateWorkspaceDirs(); err != nil {
		return nil, err
	}

	cfg := config.NewConfig()
	path, err := s.WriteConfig(cfg)
	if err != nil {
		return nil, err
	}

	s.WriteVersionStamp()

	result := &SetupResult{
		Config:     cfg,
		ConfigPath: path,
	}

	if s.WithDemo {
		files, err := s.SeedDemo(cfg)
		if err != nil {
			return nil, err
		}
		result.DataFiles = files
	}

	info, err := workspace.NewDetector().Detect(s.WorkspaceDir)
	if err != nil {
		return nil, err
	}
	result.Workspace = info

	return result, nil
}

// CreateWorkspaceDirs creates the .gridwatch directory structure.
func (s *Setup) CreateWorkspaceDirs() error {
	gwDir := filepath.Join(s.WorkspaceDir, workspace.ConfigDirName)

	if err := os.MkdirAll(gwDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", workspace.ConfigDirName, err)
	}

	logsDir := filepath.Join(gwDir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	s.report("Created " + workspace.ConfigDirName + " directory structure")
	return nil
}

// WriteConfig saves cfg to .gridwatch/config.yaml and returns the path.
func (s *Setup) WriteConfig(cfg *config.Config) (string, error) {
	path, err := config.SaveToDir(cfg, s.WorkspaceDir)
	if err != nil {
		return "", err
	}
	s.report("Wrote " + config.DefaultConfigPath)
	return path, nil
}

// WriteVersionStamp records the initializing version. Failure is
// reported but not fatal.
func (s *Setup) WriteVersionStamp() {
	if err := version.UpdateLastRun(s.WorkspaceDir, s.Version); err != nil {
		s.report(fmt.Sprintf("Warning: failed to write version stamp: %v", err))
	}
}

// SeedDemo writes the demo CSV files into the workspace data dir.
func (s *Setup) SeedDemo(cfg *config.Config) ([]string, error) {
	dir := s.WorkspaceDir
	if cfg.Workspace.DataDir != "" {
		dir = filepath.Join(s.WorkspaceDir, cfg.Workspace.DataDir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	gen := sample.New(sample.Options{
		Seed:       cfg.Sample.Seed,
		Orders:     cfg.Sample.Orders,
		Latency:    cfg.Sample.Latency,
		SignupDays: cfg.Sample.SignupDays,
	})

	var files []string
	for _, set := range gen.All() {
		path, err := set.WriteCSV(dir)
		if err != nil {
			return nil, err
		}
		files = append(files, path)
		s.report("Wrote " + filepath.Base(path))
	}

	s.report(fmt.Sprintf("Seeded demo data (seed %d)", gen.Seed()))
	return files, nil
}

// report calls the progress callback.
func (s *Setup) report(status string) {
	if s.OnProgress != nil {
		s.OnProgress(status)
	}
}
