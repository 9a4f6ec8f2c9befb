// =============================================================================
// SAP Scripts Generator - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   sapgen version           # full build information
//   sapgen version --short   # version only, for scripts
//
// Build values are injected with ldflags:
//   go build -ldflags "-X 'github.com/Martin-Flores-L/sap-scripts-generator/cmd.Version=1.2.0' \
//                      -X 'github.com/Martin-Flores-L/sap-scripts-generator/cmd.Commit=abc1234'"
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/normalizer"
)

var (
	// Version is the release of the generator.
	Version = "dev"

	// Commit is the source revision of the build.
	Commit = "none"

	// BuildDate is when the binary was built.
	BuildDate = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the generator version and build information",
	// version must work without a readable config file
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, Version)
			return
		}
		fmt.Fprintln(out, "SAP Scripts Generator")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Commit:     %s\n", Commit)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "Schemas:    %s, %s\n", normalizer.SchemaEmissions, normalizer.SchemaRequests)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
	rootCmd.AddCommand(versionCmd)
}
