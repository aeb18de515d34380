package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/pebble-mysql/cmd/pebble/output"
	"github.com/marshallshelly/pebble-mysql/cmd/pebble/tui"
)

var (
	// Init flags
	assumeYes   bool
	interactive bool
)

// initCmd recreates the schema of the configured database
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Drop and recreate every table of the model catalog",
	Long: `Set the database character set, then drop and recreate the tables of every model,
satellite tables included. All existing rows in those tables are lost.

Examples:
  pebble init --db 'root:secret@tcp(localhost:3306)/app' --yes
  pebble init -i                         # Review the tables and confirm interactively`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	initCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Review and confirm in the terminal UI")
}

func runInit(ctx context.Context) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	plan, err := newPlanner().Plan(cat)
	if err != nil {
		return fmt.Errorf("failed to plan schema: %w", err)
	}

	if !assumeYes && !interactive {
		return fmt.Errorf("init drops %s; pass --yes or use --interactive", output.Count(len(plan.TableNames()), "table"))
	}

	d, err := openDriver(ctx, cat)
	if err != nil {
		return err
	}
	defer d.Close()

	if interactive {
		done, err := tui.RunInitUI(d.DB().Config().Database, plan, d.Init)
		if err != nil {
			return err
		}
		if !done {
			output.Warning("Initialization cancelled")
		}
		return nil
	}

	if err := d.Init(ctx); err != nil {
		return err
	}
	output.Success("Initialized %s: %s", d.DB().Config().Database, output.Count(len(plan.TableNames()), "table"))
	return nil
}
