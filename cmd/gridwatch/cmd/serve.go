package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gridwatch/internal/refresh"
	"gridwatch/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Share the workspace over HTTP",
	Long: `Share the workspace over HTTP.

The same reload pipeline that feeds the dashboard keeps the frames
fresh; the server exposes them read-only: an HTML index and per-frame
table pages, a JSON API honoring the query parameters (q, col, from,
to, sort, desc, offset, limit), and CSV downloads. Refresh events
print as log lines until interrupted.

Examples:
  gridwatch serve                     # Serve on the configured address
  gridwatch serve --addr :9000        # Override the listen address
  gridwatch serve --output json       # Structured event output`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
	serveCmd.Flags().String("output", "", "Event output format: json for structured output")
}

// runServe is the main entry point for the serve command.
func runServe(cmd *cobra.Command, args []string) error {
	dir, err := resolveWorkspaceDir(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadWorkspaceConfig(cmd, dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	closeLogs := initLogging(cmd, cfg, dir, true)
	defer closeLogs()

	ctx, cancel := signalContext()
	defer cancel()

	st, err := buildStack(dir, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	verbose, _ := cmd.Flags().GetBool("verbose")
	outputFormat, _ := cmd.Flags().GetString("output")
	consoleConfig := &refresh.ConsoleConfig{
		OutputFormat: refresh.OutputFormatText,
		Writer:       cmd.OutOrStdout(),
		Verbose:      verbose,
	}
	if outputFormat == "json" {
		consoleConfig.OutputFormat = refresh.OutputFormatJSON
	}
	console := refresh.NewConsole(consoleConfig)

	opts := schedulerOptions(cfg, dir)
	opts.OnEvent = console.HandleEvent
	st.scheduler.SetOptions(opts)

	srv := server.New(st.store, st.queryCache, cfg.Server)

	if consoleConfig.OutputFormat == refresh.OutputFormatText {
		cmd.Printf("Serving %s on http://%s\n", filepath.Base(dir), srv.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return st.scheduler.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	if consoleConfig.OutputFormat == refresh.OutputFormatJSON {
		if jsonErr := console.WriteJSONOutput(st.scheduler.Stats(), st.store); jsonErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to write JSON output: %v\n", jsonErr)
		}
	} else {
		console.PrintSummary(st.scheduler.Stats(), st.store)
	}

	return err
}
