// =============================================================================
// Inventory Consolidator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Inventory Consolidator CLI. It hands
// control to the Cobra commands of the cmd package.
//
// USAGE:
//   inventory report [pdf...]  - Consolidate branch PDFs into one XLSX report
//   inventory inspect <xlsx>   - Print a generated report
//   inventory validate         - Validate the configuration file
//   inventory version          - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Extraction, aggregation, validation and report writing
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/inventory-consolidator/cmd"
)

func main() {
	cmd.Execute()
}
