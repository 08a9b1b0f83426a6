// =============================================================================
// Inventory Consolidator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'report', 'validate') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (inventory)
//   ├── reportCmd (inventory report)
//   ├── inspectCmd (inventory inspect)
//   ├── validateCmd (inventory validate)
//   └── versionCmd (inventory version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration file
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/inventory-consolidator/internal/config"
	"github.com/ginjaninja78/inventory-consolidator/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inventory Consolidator - Merge branch inventory PDFs into one XLSX report",

	Long: `Inventory Consolidator reads the inventory report PDF of every branch,
extracts its item lines and writes one spreadsheet with a quantity column per
branch, the item price and the total value of every item.

Key Features:
  - Branch detection from the "Local:" marker or from the file name
  - Brazilian number format (1.234,56) parsing
  - Skipped lines are reported, never silently dropped
  - Configurable report layout and column labels

Example Usage:
  inventory report RECIFE.pdf PETROLINA.pdf   # Consolidate two branches
  inventory report --input-dir ./entrada      # Consolidate every PDF in a folder
  inventory inspect output/relatorio.xlsx     # Print a generated report
  inventory validate --config ./my.yaml       # Check a configuration file`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// --config flag: the default file is optional, an explicit one is not.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigPath,
		"Path to the main configuration file",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig loads the configuration named by --config. A missing default
// file yields the built-in defaults.
func loadConfig(cmd *cobra.Command) (*config.MainConfig, error) {
	mustExist := cmd.Flags().Changed("config")
	cfg, err := config.LoadMainConfig(cfgFile, mustExist)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the run logger from the configuration and --verbose.
// The returned function flushes it.
func newLogger(cfg *config.MainConfig) (logging.Logger, func(), error) {
	logger, sync, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Verbose: verbose,
		File:    cfg.LogFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logger, sync, nil
}
