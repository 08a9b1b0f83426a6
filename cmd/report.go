// =============================================================================
// Inventory Consolidator - Report Command
// =============================================================================
//
// This file defines the 'report' command, which is the main command of the
// application. It consolidates branch documents into one XLSX report.
//
// COMMAND USAGE:
//   inventory report [pdf...] [flags]
//
// FLAGS:
//   --output-dir      : Directory for the report and side files
//   --input-dir       : Directory scanned for branch documents
//   --pattern         : Glob applied inside --input-dir
//   --recursive       : Scan --input-dir and its subdirectories
//   --strategy        : Location strategy ("marker" or "filename")
//   --title           : First banner row of the report
//   --total-quantity  : Add the total quantity column
//   --raw-dump        : Write every extracted line to a CSV file
//   --summary         : Write a processing summary file
//
// INPUT ORDER:
//   1. The "inputs" list of the configuration file
//   2. Documents found in the input directory, sorted by name
//   3. Documents named on the command line
//   A document listed twice is processed once, at its first position. The
//   order decides the order of the location columns.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/inventory-consolidator/internal/config"
	"github.com/ginjaninja78/inventory-consolidator/internal/converter"
	"github.com/ginjaninja78/inventory-consolidator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	outputDir     string
	inputDir      string
	inputPattern  string
	recursive     bool
	strategy      string
	reportTitle   string
	totalQuantity bool
	rawDump       bool
	writeSummary  bool
)

// =============================================================================
// REPORT COMMAND DEFINITION
// =============================================================================

// reportCmd represents the 'report' command.
var reportCmd = &cobra.Command{
	Use:   "report [pdf...]",
	Short: "Consolidate branch inventory PDFs into one XLSX report",
	Long: `The report command reads every branch document, extracts its item lines
and writes one consolidated spreadsheet to the output directory.

Lines that look like items but cannot be read are skipped and listed in a
diagnostics file next to the report. A run that finds no item lines at all
writes nothing and is not an error.

Flags override the matching settings of the configuration file.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, args)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the report command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(reportCmd)

	flags := reportCmd.Flags()
	flags.StringVarP(&outputDir, "output-dir", "o", "", "Directory for the report (overrides output_dir)")
	flags.StringVarP(&inputDir, "input-dir", "i", "", "Directory scanned for PDFs (overrides input_dir)")
	flags.StringVar(&inputPattern, "pattern", "", "Glob applied inside the input directory (overrides input_pattern)")
	flags.BoolVarP(&recursive, "recursive", "r", false, "Scan the input directory recursively for .pdf files")
	flags.StringVar(&strategy, "strategy", "", `Location strategy: "marker" or "filename" (overrides location_strategy)`)
	flags.StringVar(&reportTitle, "title", "", "First banner row of the report (overrides report.title)")
	flags.BoolVar(&totalQuantity, "total-quantity", false, "Add the total quantity column")
	flags.BoolVar(&rawDump, "raw-dump", false, "Write every extracted line to a CSV file")
	flags.BoolVar(&writeSummary, "summary", false, "Write a processing summary file")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runReport loads the configuration, collects the inputs and runs the
// consolidation.
func runReport(cmd *cobra.Command, args []string) error {
	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyReportFlags(cmd, cfg)

	logger, sync, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer sync()

	// =========================================================================
	// STEP 2: COLLECT INPUTS
	// =========================================================================

	inputs, err := collectInputs(cfg, args, recursive)
	if err != nil {
		return err
	}
	cfg.Inputs = inputs

	if len(inputs) == 0 {
		return fmt.Errorf("no input documents: name PDFs on the command line or set --input-dir")
	}

	// =========================================================================
	// STEP 3: RUN
	// =========================================================================

	conv, err := converter.New(cfg, converter.Options{Logger: logger})
	if err != nil {
		return err
	}

	result := conv.Run()
	if result.Error != nil {
		return result.Error
	}

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Consolidation Complete ===")
	fmt.Fprintf(out, "Documents:       %d\n", result.Stats.Documents)
	fmt.Fprintf(out, "Lines read:      %d\n", result.Stats.Records)
	fmt.Fprintf(out, "Lines skipped:   %d\n", result.Stats.Diagnostics)

	if result.NoData {
		fmt.Fprintln(out, "No inventory lines found; no report written.")
		return nil
	}

	fmt.Fprintf(out, "Items:           %d\n", result.Stats.Codes)
	fmt.Fprintf(out, "Locations:       %d\n", result.Stats.Locations)
	fmt.Fprintf(out, "Time elapsed:    %s\n", result.Stats.ProcessingTime)
	fmt.Fprintf(out, "Report:          %s\n", result.OutputFile)
	for _, side := range []struct{ label, path string }{
		{"Diagnostics:     ", result.ErrorLogFile},
		{"Raw dump:        ", result.RawDumpFile},
		{"Summary:         ", result.SummaryFile},
	} {
		if side.path != "" {
			fmt.Fprintf(out, "%s%s\n", side.label, side.path)
		}
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// applyReportFlags copies the flags the user set onto the configuration.
func applyReportFlags(cmd *cobra.Command, cfg *config.MainConfig) {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("input-dir") {
		cfg.InputDir = inputDir
	}
	if flags.Changed("pattern") {
		cfg.InputPattern = inputPattern
	}
	if flags.Changed("strategy") {
		cfg.LocationStrategy = strings.ToLower(strategy)
	}
	if flags.Changed("title") {
		cfg.Report.Title = reportTitle
	}
	if flags.Changed("total-quantity") {
		cfg.Report.IncludeTotalQuantity = totalQuantity
	}
	if flags.Changed("raw-dump") {
		cfg.Report.RawDump = rawDump
	}
	if flags.Changed("summary") {
		cfg.Report.WriteSummary = writeSummary
	}
}

// collectInputs returns the documents of the run in processing order.
//
// PARAMETERS:
//   - cfg: The configuration; its Inputs come first, then its InputDir.
//   - args: Documents named on the command line.
//   - recursive: Whether InputDir is scanned with its subdirectories.
//
// RETURNS:
//   - The document paths, without duplicates.
//   - An error if the input directory cannot be scanned.
func collectInputs(cfg *config.MainConfig, args []string, recursive bool) ([]string, error) {
	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir)

	var discovered []string
	var err error
	if recursive {
		if cfg.InputDir != "" {
			discovered, err = fm.DiscoverInputFilesRecursive(filepath.Ext(cfg.InputPattern))
		}
	} else {
		discovered, err = fm.DiscoverInputFiles(cfg.InputPattern)
	}
	if err != nil {
		return nil, err
	}

	var inputs []string
	seen := make(map[string]bool)
	for _, group := range [][]string{cfg.Inputs, discovered, args} {
		for _, path := range group {
			key := filepath.Clean(path)
			if seen[key] {
				continue
			}
			seen[key] = true
			inputs = append(inputs, path)
		}
	}

	return inputs, nil
}
