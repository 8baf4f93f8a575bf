// Package api implements the operator HTTP surface for the import pipeline:
// status, manual trigger, and run history.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/estatelink/property-importer/internal/config"
	"github.com/estatelink/property-importer/internal/logger"
)

// Server hosts the operator API.
type Server struct {
	httpServer *http.Server
	logger     logger.Interface
}

// NewServer creates the operator API server.
func NewServer(cfg *config.ServerConfig, handler *ImportHandler, log logger.Interface) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/import/status", handler.GetStatus)
		v1.POST("/import/trigger", handler.Trigger)
		v1.GET("/import/runs", handler.ListRuns)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: log.WithComponent("api"),
	}
}

// Start serves until the listener fails or the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("operator API listening", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("operator api: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
