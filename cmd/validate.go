// =============================================================================
// Inventory Consolidator - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// file without reading any document.
//
// COMMAND USAGE:
//   inventory validate [--config path]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file without processing",
	Long: `Load the configuration file, apply the defaults and report every invalid
setting. Without --config a missing config.yaml is not an error; the built-in
defaults are checked instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Configuration is valid.")
		fmt.Fprintf(out, "  Location strategy: %s\n", cfg.LocationStrategy)
		fmt.Fprintf(out, "  Number format:     thousands %q, decimal %q\n", cfg.NumberFormat.ThousandsSeparator, cfg.NumberFormat.DecimalSeparator)
		fmt.Fprintf(out, "  Output directory:  %s\n", cfg.OutputDir)
		if cfg.InputDir != "" {
			fmt.Fprintf(out, "  Input directory:   %s (%s)\n", cfg.InputDir, cfg.InputPattern)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
