package cmd

import (
	"github.com/spf13/cobra"

	"gridwatch/internal/app"
	"gridwatch/internal/config"
)

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a gridwatch workspace",
	Long: `Initialize a gridwatch workspace in the current directory.

This command creates the .gridwatch directory and configuration:
  .gridwatch/config.yaml   Default configuration
  .gridwatch/logs/         Log files
  .gridwatch/version.json  Version stamp

Use --demo to also seed generated demo data, and --force to overwrite
an existing configuration.

Examples:
  gridwatch init          # Initialize the current directory
  gridwatch init --demo   # Initialize and seed demo data
  gridwatch init --force  # Reinitialize, overwriting existing config`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing configuration")
	initCmd.Flags().Bool("demo", false, "Seed generated demo data")
}

// runInit is the main entry point for the init command.
func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	demo, _ := cmd.Flags().GetBool("demo")

	dir, err := resolveWorkspaceDir(cmd)
	if err != nil {
		return err
	}

	setup := app.NewSetup(dir)
	setup.Version = Version
	setup.Force = force
	setup.WithDemo = demo
	setup.OnProgress = func(status string) {
		cmd.Println(status)
	}

	result, err := setup.Run()
	if err != nil {
		return err
	}

	cmd.Println("")
	cmd.Printf("Workspace initialized at %s\n", dir)
	if n := len(result.DataFiles); n > 0 {
		cmd.Printf("Seeded %d demo data files.\n", n)
	}
	cmd.Printf("Edit %s to configure gridwatch.\n", config.DefaultConfigPath)
	cmd.Println("Run 'gridwatch' to open the dashboard.")

	return nil
}
