// =============================================================================
// SAP Scripts Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (sapgen)
//   ├── generateCmd (sapgen generate)
//   ├── serveCmd    (sapgen serve)
//   └── versionCmd  (sapgen version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose, --log-*)
//   2. Loading config.yaml before any subcommand runs
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/config"
	"github.com/Martin-Flores-L/sap-scripts-generator/pkg/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// mainConfig is loaded by the root pre-run hook.
var mainConfig *config.MainConfig

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sapgen",
	Short: "SAP Scripts Generator - Turn reservation workbooks into SAP GUI scripts",
	Long: `SAP Scripts Generator reads the reservation request workbooks kept by the
warehouse team and produces SAP GUI scripting (.vbs) files that create or
change material reservations in MB21 / MB22.

Two workbook kinds are supported:
  - emisiones   (sheet Sheet1): new reservations, movement 221 or 201
  - solicitudes (sheet DETALLE): returns, additions, modifications,
                                deletions, final issue and emissions

Example Usage:
  sapgen generate                         # Convert every workbook in input_dir
  sapgen generate --file emisiones.xlsx   # Convert a single file
  sapgen serve                            # Start the HTTP API
  sapgen generate --config ./my.yaml      # Use a custom configuration file`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadMainConfig(cfgFile, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		mainConfig = cfg

		logLevel, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("log-level") {
			logLevel = cfg.LogLevel
		}
		if verbose {
			logLevel = string(logger.DebugLevel)
		}
		logger.SetupLogger(logLevel, logJSON || cfg.LogJSON, logSource)
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigPath,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().Bool("log-source", false, "Include the source location in logs")
}
