// =============================================================================
// Inventory Consolidator - Inspect Command
// =============================================================================
//
// This file defines the 'inspect' command, which prints a generated report
// as an aligned table. It is meant for checking a report on a machine
// without a spreadsheet program.
//
// COMMAND USAGE:
//   inventory inspect <report.xlsx> [--limit N]
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/inventory-consolidator/internal/report"
)

// inspectLimit caps the number of printed rows. Zero prints every row.
var inspectLimit int

// inspectCmd represents the 'inspect' command.
var inspectCmd = &cobra.Command{
	Use:   "inspect <report.xlsx>",
	Short: "Print a generated report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		contents, err := report.Read(args[0], cfg.Report.Labels)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, line := range contents.Banner {
			fmt.Fprintln(out, line)
		}
		fmt.Fprintf(out, "Sheet: %s  Items: %d  Locations: %d\n\n", contents.Sheet, len(contents.Rows), len(contents.Locations()))

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(contents.Header, "\t"))

		rows := contents.Rows
		if inspectLimit > 0 && len(rows) > inspectLimit {
			rows = rows[:inspectLimit]
		}
		for _, row := range rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if hidden := len(contents.Rows) - len(rows); hidden > 0 {
			fmt.Fprintf(out, "... %d more row(s)\n", hidden)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVarP(&inspectLimit, "limit", "n", 0, "Print at most N rows")
}
