package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbURL      string
	modelsPath string
	verbose    bool
	jsonOutput bool

	cfg *Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pebble",
	Short: "Pebble MySQL - model-driven storage for MySQL",
	Long: `Pebble MySQL stores models described by YAML definitions in MySQL.

Features:
  - Condition trees and query descriptors compiled to MySQL
  - OneToMany, ManyToMany and Reverse relations with weak ownership
  - List and multilingual fields in generated satellite tables
  - Destructive schema initialization from the model catalog
  - Lazily started transactions with fatal-connection recovery`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dbURL != "" {
			loaded.DatabaseURL = dbURL
		}
		if modelsPath != "" {
			loaded.ModelsPath = modelsPath
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "MySQL DSN, e.g. user:pass@tcp(localhost:3306)/app (default $PEBBLE_DATABASE_URL)")
	rootCmd.PersistentFlags().StringVarP(&modelsPath, "models", "m", "", "YAML model definition file or directory (default ./models)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}
