// =============================================================================
// SAP Scripts Generator - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, which converts the workbooks of
// the input directory into SAP GUI scripts.
//
// COMMAND USAGE:
//   sapgen generate [flags]
//
// FLAGS:
//   --user      : SAP user written as goods recipient (overrides sap_user)
//   --log-path  : Reservation log path used by the scripts
//   --kind      : Force a file kind instead of matching file names
//   --file      : Convert a single file instead of scanning input_dir
//   --dry-run   : Convert without writing any file
//   --zip       : Also bundle the scripts of each input into a zip
//
// On error the original workbook stays in the input directory and the
// problems are written to an error log in log_dir.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/batch"
	"github.com/Martin-Flores-L/sap-scripts-generator/pkg/logger"
	"github.com/Martin-Flores-L/sap-scripts-generator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	sapUser    string
	logPath    string
	fileKind   string
	singleFile string
	dryRun     bool
	zipBundle  bool
)

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate SAP GUI scripts from reservation workbooks",
	Long: `The generate command scans the input directory for .xlsx and .csv files,
matches each one to a file kind, and writes one .vbs script per generated
movement or operation to the output directory.

Files are converted concurrently (max_concurrency). Each file is converted
independently; with continue_on_error a failing file does not stop the
others.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("user") {
			mainConfig.SAPUser = sapUser
		}
		if cmd.Flags().Changed("log-path") {
			mainConfig.ReservationLogPath = logPath
		}

		runner := batch.New(mainConfig, batch.Options{
			File:   singleFile,
			Kind:   fileKind,
			DryRun: dryRun,
			Zip:    zipBundle,
		}, logger.GetDefault())

		summary, err := runner.Run(cmd.Context())
		printSummary(cmd, summary)
		return err
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&sapUser, "user", "", "SAP user written as goods recipient")
	generateCmd.Flags().StringVar(&logPath, "log-path", "", "Reservation log path used by the generated scripts")
	generateCmd.Flags().StringVar(&fileKind, "kind", "", "Force a file kind by name")
	generateCmd.Flags().StringVar(&singleFile, "file", "", "Convert only this file")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Convert without writing output files")
	generateCmd.Flags().BoolVar(&zipBundle, "zip", false, "Bundle the scripts of each input into a zip")
}

// printSummary prints the run outcome.
func printSummary(cmd *cobra.Command, summary *utils.ProcessingSummary) {
	if summary == nil || summary.TotalFiles == 0 {
		return
	}
	out := cmd.OutOrStdout()

	for _, f := range summary.ProcessedFiles {
		fmt.Fprintf(out, "  ✓ %s [%s] -> %d script(s), %d skipped, %d unclassified\n",
			f.InputFile, f.Kind, len(f.Scripts), f.Skipped, f.Unclassified)
	}
	for _, f := range summary.FailedFileList {
		fmt.Fprintf(out, "  ✗ %s: %s\n", f.InputFile, f.Error)
	}

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))
}
