// Package cmd implements the gridwatch command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gridwatch/internal/cache"
	"gridwatch/internal/config"
	"gridwatch/internal/dataset"
	"gridwatch/internal/history"
	"gridwatch/internal/hooks"
	"gridwatch/internal/logging"
	"gridwatch/internal/refresh"
	"gridwatch/internal/source"
	"gridwatch/internal/tui"
	"gridwatch/internal/version"
	"gridwatch/internal/view"
	"gridwatch/internal/workspace"
)

// Version information - set by main from build flags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "gridwatch",
	Short: "Live terminal dashboard for tabular data files",
	Long: `Gridwatch watches a directory of data files (CSV, TSV, JSON lines)
and presents them as a live terminal dashboard: filter, sort, restrict
by date range, inspect column statistics, and export what you see.
Files are reloaded as they change on disk.

Running gridwatch without a subcommand opens the dashboard in the
current workspace.

Examples:
  gridwatch                     # Open the dashboard here
  gridwatch --workspace ~/data  # Open another directory
  gridwatch demo                # Try it on generated data
  gridwatch serve               # Share the workspace over HTTP`,
	RunE: runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringP("workspace", "w", "", "Workspace directory (default: current directory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: <workspace>/.gridwatch/config.yaml)")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("gridwatch {{.Version}}\n")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Root returns the root command for testing.
func Root() *cobra.Command {
	return rootCmd
}

// runRoot opens the dashboard in the resolved workspace.
func runRoot(cmd *cobra.Command, args []string) error {
	dir, err := resolveWorkspaceDir(cmd)
	if err != nil {
		return err
	}

	if workspace.NewDetector().ShouldHint(dir) {
		printWorkspaceHint(cmd, dir)
		return nil
	}

	cfg, err := loadWorkspaceConfig(cmd, dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	closeLogs := initLogging(cmd, cfg, dir, false)
	defer closeLogs()

	// The update notice prints after the dashboard exits, never over it.
	updateCh := make(chan string, 1)
	go checkUpdateBackground(updateCh)

	err = launchDashboard(cmd, dir, cfg)

	select {
	case notice := <-updateCh:
		fmt.Fprintln(cmd.ErrOrStderr(), notice)
	default:
	}
	return err
}

// launchDashboard assembles the reload pipeline and runs the dashboard
// until quit or signal.
func launchDashboard(cmd *cobra.Command, dir string, cfg *config.Config) error {
	ctx, cancel := signalContext()
	defer cancel()

	st, err := buildStack(dir, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	views := view.NewStoreInDir(filepath.Join(dir, workspace.ConfigDirName))
	if err := views.Load(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to load saved views: %v\n", err)
	}

	model := tui.New(tui.Options{
		Store:        st.store,
		Views:        views,
		QueryCache:   st.queryCache,
		Workspace:    filepath.Base(dir),
		WorkspaceDir: dir,
		DateFormat:   cfg.TUI.DateFormat,
		StaleAfter:   cfg.TUI.Stale,
	})

	runner := tui.NewRunner(model, st.scheduler, cfg.TUI.AltScreen)

	opts := schedulerOptions(cfg, dir)
	opts.OnEvent = runner.Bridge().HandleEvent
	st.scheduler.SetOptions(opts)

	rememberWorkspace(cmd, dir)

	return runner.Run(ctx)
}

// stack bundles the pieces every long-running command assembles: the
// frame store, its loader, snapshot history, hooks, cache, and the
// scheduler that drives them.
type stack struct {
	store      *dataset.Store
	loader     *source.Loader
	historyDB  *history.Store
	hookMgr    *hooks.Manager
	queryCache cache.Cache
	scheduler  *refresh.Scheduler
}

// buildStack wires the reload pipeline for a workspace.
func buildStack(dir string, cfg *config.Config) (*stack, error) {
	store := dataset.NewStore()
	loader := newLoader(dir, store, cfg)

	historyDB, err := history.OpenInDir(filepath.Join(dir, workspace.ConfigDirName))
	if err != nil {
		return nil, err
	}

	var hookMgr *hooks.Manager
	if len(cfg.Hooks.PostReload) > 0 || len(cfg.Hooks.PostSnapshot) > 0 {
		hookMgr = hooks.NewManagerFromConfig(&cfg.Hooks)
	}

	queryCache, err := buildQueryCache(cfg)
	if err != nil {
		historyDB.Close()
		return nil, err
	}

	return &stack{
		store:      store,
		loader:     loader,
		historyDB:  historyDB,
		hookMgr:    hookMgr,
		queryCache: queryCache,
		scheduler:  refresh.NewScheduler(loader, store, historyDB, hookMgr),
	}, nil
}

// Close releases the stack's database handle.
func (s *stack) Close() {
	if s.historyDB != nil {
		_ = s.historyDB.Close()
	}
}

// newLoader builds a loader over the workspace data directory.
func newLoader(dir string, store *dataset.Store, cfg *config.Config) *source.Loader {
	dataDir := dir
	if cfg.Workspace.DataDir != "" {
		dataDir = filepath.Join(dir, cfg.Workspace.DataDir)
	}

	loader := source.NewLoader(dataDir, store, source.DefaultRegistry(), source.Options{
		Delimiter: cfg.Source.DelimiterRune(),
	})
	loader.SetParallelism(cfg.Source.Parallelism)
	return loader
}

// buildQueryCache sizes the cache from config, falling back to the
// memory-derived default capacity.
func buildQueryCache(cfg *config.Config) (cache.Cache, error) {
	capacity, ok := cfg.Cache.CapacityBytes()
	if !ok {
		capacity = cache.DefaultCapacity()
	}
	return cache.New(cfg.Cache.Shards, capacity)
}

// openStore runs a one-shot load of the workspace data directory.
// Per-file failures are warnings; the store keeps whatever loaded.
func openStore(ctx context.Context, cmd *cobra.Command, dir string, cfg *config.Config) (*dataset.Store, error) {
	store := dataset.NewStore()
	loader := newLoader(dir, store, cfg)

	reports, err := loader.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, report := range reports {
		if report.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s: %v\n", report.Path, report.Err)
		}
	}
	return store, nil
}

// schedulerOptions maps config onto scheduler options.
func schedulerOptions(cfg *config.Config, dir string) *refresh.Options {
	opts := refresh.DefaultOptions()
	opts.Interval = cfg.Source.Interval
	opts.Watch = cfg.Source.Watch
	opts.Settle = cfg.Source.Settle
	opts.AutoSnapshot = cfg.History.AutoSnapshot
	opts.WorkspaceDir = dir
	return opts
}

// resolveWorkspaceDir returns the workspace directory: the --workspace
// flag when given, the working directory otherwise.
func resolveWorkspaceDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("workspace")
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}
	return filepath.Abs(dir)
}

// loadWorkspaceConfig loads the config named by --config, or the
// workspace config file, or defaults when neither exists.
func loadWorkspaceConfig(cmd *cobra.Command, dir string) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefaultFromDir(dir)
}

// initLogging sets up the global file logger from config and returns
// its closer. Dashboard runs pass allowConsole false so no log line
// lands on the rendered screen. Initialization failure only warns.
func initLogging(cmd *cobra.Command, cfg *config.Config, dir string, allowConsole bool) func() {
	level, _ := logging.ParseLevel(string(cfg.Logging.Level))
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = logging.LevelDebug
	}

	logDir := cfg.Logging.Dir
	if !filepath.IsAbs(logDir) {
		logDir = filepath.Join(dir, logDir)
	}

	logConfig := &logging.Config{
		Level:       level,
		LogDir:      logDir,
		MaxLogFiles: cfg.Logging.MaxFiles,
		MaxLogAge:   cfg.Logging.MaxAge,
		Console:     allowConsole && cfg.Logging.Console,
		JSONFormat:  cfg.Logging.JSON,
	}
	if err := logging.InitGlobal(logConfig); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to initialize logging: %v\n", err)
		return func() {}
	}

	logging.Info("gridwatch starting", "version", Version, "workspace", dir)
	return func() { _ = logging.CloseGlobal() }
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// rememberWorkspace records dir in the recent workspace list.
// Failures only warn.
func rememberWorkspace(cmd *cobra.Command, dir string) {
	info, err := workspace.NewDetector().Detect(dir)
	if err != nil || info == nil {
		return
	}

	recent, err := workspace.LoadRecent()
	if err != nil {
		recent = &workspace.RecentList{}
	}
	recent.Add(info)
	if err := recent.Save(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to save recent workspaces: %v\n", err)
	}
}

// printWorkspaceHint tells the user the directory has nothing to show
// and where they might want to go instead.
func printWorkspaceHint(cmd *cobra.Command, dir string) {
	cmd.Printf("%s does not look like a gridwatch workspace.\n", dir)
	cmd.Println("A workspace has a .gridwatch directory or at least one data file.")
	cmd.Println("")

	if recent, err := workspace.LoadRecent(); err == nil && len(recent.Paths()) > 0 {
		cmd.Println("Recent workspaces:")
		for _, path := range recent.Paths() {
			cmd.Printf("  %s\n", path)
		}
		cmd.Println("")
	}

	cmd.Println("Run 'gridwatch init' to set up this directory, or")
	cmd.Println("'gridwatch demo' to try it on generated data.")
}

// checkUpdateBackground checks GitHub for a newer release and sends a
// notice on ch when one exists. Errors are silently ignored.
func checkUpdateBackground(ch chan<- string) {
	// Dev builds have no release to compare against.
	if Version == "dev" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	checker := version.NewChecker()
	release, err := checker.CheckForUpdate(ctx, Version)
	if err != nil || release == nil {
		return
	}

	ch <- fmt.Sprintf("Update available: %s → %s (%s)", Version, release.TagName, release.HTMLURL)
}
