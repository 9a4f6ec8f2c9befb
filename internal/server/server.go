// =============================================================================
// SAP Scripts Generator - HTTP Server
// =============================================================================
//
// This module exposes the converter over HTTP for the web front end.
//
// ROUTES:
//   GET  /             - welcome message
//   POST /emisiones/   - emission workbook -> scripts 221, 201
//   POST /solicitudes/ - request workbook  -> scripts 222, 202, add, mod,
//                        del, sfin, 221, 201
//
// Uploads are multipart forms with the fields "sap_user", "file_output"
// (the reservation log path on the machine running the scripts) and "file"
// (an .xlsx workbook). Empty form values fall back to the configuration.
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/config"
	"github.com/Martin-Flores-L/sap-scripts-generator/pkg/logger"
)

// Server is the HTTP shell around the converter.
type Server struct {
	cfg    *config.MainConfig
	logger logger.Logger
	router *gin.Engine

	// now is the clock handed to the synthesizers.
	now func() time.Time
}

// New creates a Server and registers its routes.
func New(cfg *config.MainConfig, log logger.Logger) *Server {
	if log == nil {
		log = logger.GetDefault()
	}
	s := &Server{
		cfg:    cfg,
		logger: log,
		now:    time.Now,
	}
	s.buildRouter()
	return s
}

func (s *Server) buildRouter() {
	router := gin.New()
	router.MaxMultipartMemory = s.cfg.Server.MaxUploadMB << 20
	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware(s.logger))
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware())

	router.GET("/", s.handleWelcome)
	router.POST("/emisiones/", s.uploadLimit(), s.handleEmissions)
	router.POST("/solicitudes/", s.uploadLimit(), s.handleRequests)

	s.router = router
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Server.Address()
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "address", fmt.Sprintf("http://%s", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Debug("Received shutdown signal, initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("Server shutdown completed")
	return nil
}
