package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gridwatch/internal/config"
	"gridwatch/internal/dataset"
	"gridwatch/internal/sample"
	"gridwatch/internal/tui"
)

// demoCmd represents the demo command.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Open the dashboard on generated demo data",
	Long: `Open the dashboard on generated demo data.

By default the demo frames (orders, latency, signups) are written as
CSV files into the workspace data directory and loaded through the
normal reload pipeline, so editing the files live-updates the
dashboard. With --transient the frames are served from memory and
nothing is written.

A fixed --seed reproduces the exact same data on every run.

Examples:
  gridwatch demo              # Write demo CSVs, then open the dashboard
  gridwatch demo --transient  # Serve demo frames from memory
  gridwatch demo --seed 42    # Reproducible demo data`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().Bool("transient", false, "Serve demo frames from memory without writing files")
	demoCmd.Flags().Int64("seed", 0, "Seed for reproducible demo data (0 seeds from the clock)")
}

// runDemo is the main entry point for the demo command.
func runDemo(cmd *cobra.Command, args []string) error {
	transient, _ := cmd.Flags().GetBool("transient")
	seed, _ := cmd.Flags().GetInt64("seed")

	dir, err := resolveWorkspaceDir(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadWorkspaceConfig(cmd, dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if seed != 0 {
		cfg.Sample.Seed = seed
	}

	gen := sample.New(sample.Options{
		Seed:       cfg.Sample.Seed,
		Orders:     cfg.Sample.Orders,
		Latency:    cfg.Sample.Latency,
		SignupDays: cfg.Sample.SignupDays,
	})

	if transient {
		return runDemoTransient(cmd, dir, cfg, gen)
	}

	closeLogs := initLogging(cmd, cfg, dir, false)
	defer closeLogs()

	dataDir := dir
	if cfg.Workspace.DataDir != "" {
		dataDir = filepath.Join(dir, cfg.Workspace.DataDir)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	for _, set := range gen.All() {
		path, err := set.WriteCSV(dataDir)
		if err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", path)
	}
	cmd.Printf("Demo data seeded (seed %d)\n", gen.Seed())

	return launchDashboard(cmd, dir, cfg)
}

// runDemoTransient serves generated frames from memory. There is no
// reload pipeline behind the dashboard and nothing touches disk.
func runDemoTransient(cmd *cobra.Command, dir string, cfg *config.Config, gen *sample.Generator) error {
	ctx, cancel := signalContext()
	defer cancel()

	store := dataset.NewStore()
	for _, set := range gen.All() {
		frame, err := set.Frame()
		if err != nil {
			return err
		}
		store.Replace(frame)
	}

	queryCache, err := buildQueryCache(cfg)
	if err != nil {
		return err
	}

	model := tui.New(tui.Options{
		Store:        store,
		QueryCache:   queryCache,
		Workspace:    "demo (transient)",
		WorkspaceDir: dir,
		DateFormat:   cfg.TUI.DateFormat,
	})

	runner := tui.NewRunner(model, nil, cfg.TUI.AltScreen)
	return runner.Run(ctx)
}
