// =============================================================================
// SAP Scripts Generator - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which starts the HTTP API used by
// the web front end.
//
// COMMAND USAGE:
//   sapgen serve [--host 0.0.0.0] [--port 8000]
//
// =============================================================================

package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/server"
	"github.com/Martin-Flores-L/sap-scripts-generator/pkg/logger"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API. POST a workbook to /emisiones/ or /solicitudes/ as a
multipart form (sap_user, file_output, file) to receive the generated
scripts as JSON.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("host") {
			mainConfig.Server.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			mainConfig.Server.Port = servePort
		}
		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		return server.New(mainConfig, logger.GetDefault()).Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind (overrides server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
}
