package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/pebble-mysql/cmd/pebble/output"
	"github.com/marshallshelly/pebble-mysql/pkg/migration"
)

var (
	// DDL flags
	planName string
	save     bool
	engine   string
)

// ddlCmd prints or saves the schema DDL
var ddlCmd = &cobra.Command{
	Use:   "ddl",
	Short: "Print the DDL for the model catalog",
	Long: `Generate the DROP/CREATE statements for every model, satellite tables included.

The statements are printed to stdout. With --save they are written to a
timestamped file in the plan directory instead.

Examples:
  pebble ddl --models ./models          # Print the DDL
  pebble ddl --save --name initial      # Write ./schema/<version>_initial.sql`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDDL()
	},
}

func init() {
	rootCmd.AddCommand(ddlCmd)

	ddlCmd.Flags().StringVarP(&planName, "name", "n", "schema", "Plan name used in the file name")
	ddlCmd.Flags().BoolVar(&save, "save", false, "Write the DDL to the plan directory")
	ddlCmd.Flags().StringVar(&engine, "engine", "", "Storage engine (default InnoDB)")
}

func runDDL() error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	if engine != "" {
		cfg.Engine = engine
	}
	plan, err := newPlanner().Plan(cat)
	if err != nil {
		return fmt.Errorf("failed to plan schema: %w", err)
	}

	if !save {
		fmt.Print(plan.SQL())
		return nil
	}

	path, err := migration.NewGenerator(AppFs, cfg.PlanDir).Generate(planName, plan)
	if err != nil {
		return err
	}
	output.Success("Wrote %s for %s", path, output.Count(len(plan.TableNames()), "table"))
	return nil
}
