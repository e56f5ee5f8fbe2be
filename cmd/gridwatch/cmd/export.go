package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gridwatch/internal/calendar"
	"gridwatch/internal/dataset"
	griderrors "gridwatch/internal/errors"
	"gridwatch/internal/export"
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export <frame>",
	Short: "Export a frame to CSV or JSON",
	Long: `Export a frame to CSV or JSON.

The workspace data directory is loaded once, the query flags select
and order rows, and the result is written to --output or stdout.
Time bounds accept dates (2006-01-02), timestamps, and unix seconds.

Examples:
  gridwatch export orders                              # CSV to stdout
  gridwatch export orders --format json -o orders.json
  gridwatch export orders -q east --sort amount --desc --limit 100
  gridwatch export orders --from 2026-01-01 --to 2026-02-01`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("filter", "q", "", "Keep rows containing this text")
	exportCmd.Flags().String("col", "", "Restrict the filter to one column")
	exportCmd.Flags().String("from", "", "Keep rows stamped at or after this time")
	exportCmd.Flags().String("to", "", "Keep rows stamped before this time")
	exportCmd.Flags().String("sort", "", "Sort by this column")
	exportCmd.Flags().Bool("desc", false, "Sort descending")
	exportCmd.Flags().Int("offset", 0, "Skip this many rows")
	exportCmd.Flags().Int("limit", 0, "Cap the exported rows (0 exports all)")
	exportCmd.Flags().StringP("format", "f", "csv", "Output format (csv, json)")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
}

// runExport is the main entry point for the export command.
func runExport(cmd *cobra.Command, args []string) error {
	frameName := args[0]

	formatStr, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	query, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}

	dir, err := resolveWorkspaceDir(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadWorkspaceConfig(cmd, dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := openStore(ctx, cmd, dir, cfg)
	if err != nil {
		return err
	}
	frame, ok := store.Frame(frameName)
	if !ok {
		return griderrors.FrameNotFound(frameName)
	}

	result, err := frame.Select(ctx, query)
	if err != nil {
		return err
	}

	exporter, err := export.For(format)
	if err != nil {
		return err
	}
	buf, err := exporter.Render(result)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err := buf.WriteTo(cmd.OutOrStdout())
		return err
	}

	if err := export.WriteFile(output, buf); err != nil {
		return err
	}
	cmd.Printf("Exported %d of %d rows to %s\n", len(result.Rows), result.TotalMatched, output)
	return nil
}

// queryFromFlags builds the row selection from the query flags.
func queryFromFlags(cmd *cobra.Command) (dataset.Query, error) {
	var q dataset.Query
	q.Filter, _ = cmd.Flags().GetString("filter")
	q.Column, _ = cmd.Flags().GetString("col")
	q.SortBy, _ = cmd.Flags().GetString("sort")
	q.Desc, _ = cmd.Flags().GetBool("desc")
	q.Offset, _ = cmd.Flags().GetInt("offset")
	q.Limit, _ = cmd.Flags().GetInt("limit")

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	rng, err := calendar.ParseRange(from, to)
	if err != nil {
		return dataset.Query{}, err
	}
	q.Range = rng

	return q, nil
}
