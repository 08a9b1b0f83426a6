// =============================================================================
// Inventory Consolidator - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version and build information.
//
// COMMAND USAGE:
//   inventory version
//
// OUTPUT:
//   Inventory Consolidator
//   Version:    1.0.0
//   Build Date: 2024-01-01
//   Go Version: go1.24.0
//   PDF reader: github.com/ledongthuc/pdf
//
//   Defaults:
//     Location strategy: filename (marker keyword "Local")
//     Item code:         8 digits
//     Numbers:           1.234,56
//     Report file:       relatorio_estoque_{timestamp}_{short_uuid}.xlsx
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/inventory-consolidator/internal/config"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags:
//   go build -ldflags "-X 'github.com/ginjaninja78/inventory-consolidator/cmd.Version=1.0.0'"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, Go runtime version and the
built-in extraction defaults (location strategy, code width, number format).`,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout())
	},
}

// printVersion writes the build information and the built-in extraction
// defaults.
func printVersion(out io.Writer) {
	fmt.Fprintln(out, "Inventory Consolidator")
	fmt.Fprintf(out, "Version:    %s\n", Version)
	fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
	fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	fmt.Fprintln(out, "PDF reader: github.com/ledongthuc/pdf")

	def := config.Default()
	sample := "1" + def.NumberFormat.ThousandsSeparator + "234" + def.NumberFormat.DecimalSeparator + "56"
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Defaults:")
	fmt.Fprintf(out, "  Location strategy: %s (marker keyword %q)\n", def.LocationStrategy, def.Marker.Keyword)
	fmt.Fprintf(out, "  Item code:         %d digits\n", def.Line.CodeDigits)
	fmt.Fprintf(out, "  Numbers:           %s\n", sample)
	fmt.Fprintf(out, "  Report file:       %s\n", def.Report.FileNameFormat)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
