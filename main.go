// =============================================================================
// SAP Scripts Generator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the SAP Scripts Generator CLI. It
// delegates command execution to the cmd package.
//
// USAGE:
//   sapgen generate   - Convert every workbook in the input directory
//   sapgen serve      - Start the HTTP API
//   sapgen version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Workbook reading, normalization, script synthesis,
//                      batch runs and the HTTP server
//   - pkg/           : Logging and file utilities
//
// =============================================================================

package main

import (
	"github.com/Martin-Flores-L/sap-scripts-generator/cmd"
)

func main() {
	cmd.Execute()
}
