package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gridwatch/internal/config"
	griderrors "gridwatch/internal/errors"
	"gridwatch/internal/history"
	"gridwatch/internal/workspace"
)

// snapshotCmd represents the snapshot command.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Record and inspect frame snapshots",
	Long: `Record and inspect frame snapshots.

A snapshot stores a frame's row and byte counts plus its per-column
summary in .gridwatch/history.db. Without flags the command loads the
workspace data and records a snapshot of every frame; --list shows
recorded snapshots and --prune deletes old ones.

Examples:
  gridwatch snapshot                            # Record every frame
  gridwatch snapshot --frame orders --note "pre-migration"
  gridwatch snapshot --list --frame orders
  gridwatch snapshot --prune --keep 20`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().Bool("list", false, "List recorded snapshots instead of recording")
	snapshotCmd.Flags().Bool("prune", false, "Delete old snapshots, keeping the newest per frame")
	snapshotCmd.Flags().String("frame", "", "Restrict to one frame")
	snapshotCmd.Flags().String("note", "", "Note stored with recorded snapshots")
	snapshotCmd.Flags().Int("keep", 0, "Snapshots kept per frame when pruning (default: config)")
	snapshotCmd.Flags().Int("limit", 20, "Snapshots shown when listing (0 shows all)")
}

// runSnapshot is the main entry point for the snapshot command.
func runSnapshot(cmd *cobra.Command, args []string) error {
	list, _ := cmd.Flags().GetBool("list")
	prune, _ := cmd.Flags().GetBool("prune")
	if list && prune {
		return fmt.Errorf("--list and --prune are mutually exclusive")
	}

	dir, err := resolveWorkspaceDir(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadWorkspaceConfig(cmd, dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	historyDB, err := history.OpenInDir(filepath.Join(dir, workspace.ConfigDirName))
	if err != nil {
		return err
	}
	defer historyDB.Close()

	ctx, cancel := signalContext()
	defer cancel()

	switch {
	case list:
		return listSnapshots(ctx, cmd, historyDB)
	case prune:
		return pruneSnapshots(ctx, cmd, cfg, historyDB)
	default:
		return recordSnapshots(ctx, cmd, dir, cfg, historyDB)
	}
}

// recordSnapshots loads the workspace data and records a snapshot of
// every frame, or just the --frame one.
func recordSnapshots(ctx context.Context, cmd *cobra.Command, dir string, cfg *config.Config, db *history.Store) error {
	store, err := openStore(ctx, cmd, dir, cfg)
	if err != nil {
		return err
	}

	frameFlag, _ := cmd.Flags().GetString("frame")
	note, _ := cmd.Flags().GetString("note")

	names := store.Names()
	if frameFlag != "" {
		if _, ok := store.Frame(frameFlag); !ok {
			return griderrors.FrameNotFound(frameFlag)
		}
		names = []string{frameFlag}
	}
	if len(names) == 0 {
		return fmt.Errorf("no frames to snapshot in %s", dir)
	}

	for _, name := range names {
		frame, ok := store.Frame(name)
		if !ok {
			continue
		}
		snap, err := db.Record(ctx, frame, note)
		if err != nil {
			return err
		}
		cmd.Printf("Recorded #%d %s (%s rows)\n", snap.ID, snap.Frame, humanize.Comma(int64(snap.Rows)))
	}
	return nil
}

// listSnapshots prints recorded snapshots, newest first.
func listSnapshots(ctx context.Context, cmd *cobra.Command, db *history.Store) error {
	frame, _ := cmd.Flags().GetString("frame")
	limit, _ := cmd.Flags().GetInt("limit")

	snaps, err := db.List(ctx, frame, limit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		cmd.Println("No snapshots recorded yet.")
		return nil
	}

	for _, snap := range snaps {
		line := fmt.Sprintf("#%-4d %s  %-14s %8s rows  %8s",
			snap.ID,
			snap.TakenAt.Local().Format("2006-01-02 15:04:05"),
			snap.Frame,
			humanize.Comma(int64(snap.Rows)),
			humanize.Bytes(uint64(snap.Bytes)),
		)
		if snap.Note != "" {
			line += "  " + snap.Note
		}
		cmd.Println(line)
	}
	return nil
}

// pruneSnapshots deletes all but the newest snapshots per frame.
func pruneSnapshots(ctx context.Context, cmd *cobra.Command, cfg *config.Config, db *history.Store) error {
	keep, _ := cmd.Flags().GetInt("keep")
	if keep <= 0 {
		keep = cfg.History.Keep
	}

	removed, err := db.Prune(ctx, keep)
	if err != nil {
		return err
	}
	cmd.Printf("Removed %d snapshots, keeping the newest %d per frame.\n", removed, keep)
	return nil
}
