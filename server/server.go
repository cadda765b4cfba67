// Package server wires the HTTP surface of the audit sampling service.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"auditserver/criteria"
	"auditserver/database"
	"auditserver/internal/config"
	apperrors "auditserver/server/errors"
	"auditserver/server/handlers"
	"auditserver/server/middleware"
)

// Server is the HTTP server of the audit sampling service.
type Server struct {
	config *config.Config
	http   *http.Server
}

// New builds the server, its router and middleware chain.
func New(cfg *config.Config, runner *criteria.Runner, audit *database.AuditDB) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())
	router.Use(middleware.Gzip())
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	h := handlers.New(runner, audit, cfg)

	router.NoRoute(func(c *gin.Context) {
		appErr := apperrors.NewNotFoundError("no such endpoint: "+c.Request.URL.Path, nil)
		c.JSON(appErr.StatusCode(), gin.H{"error": appErr.UserMessage()})
	})

	router.GET("/health", h.Health)

	api := router.Group("/api")
	api.GET("/audit", h.AuditLog)

	runs := api.Group("/criteria")
	runs.Use(middleware.RateLimit(cfg.RunsPerMinute, cfg.RunBurst))
	runs.POST("/hdv/tc1", h.DepositRates)
	runs.POST("/hdv/tc2", h.DepositRanking)
	runs.POST("/hdv/tc3", h.DepositWithdrawals)
	runs.POST("/dvkh/tc1-3", h.Authorization)
	runs.POST("/dvkh/tc4-5", h.StaffAccounts)
	runs.POST("/tkhq", h.Customs)
	runs.POST("/muc09", h.Remittance)

	return &Server{
		config: cfg,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until the context is canceled, then shuts down gracefully
// within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down, waiting up to %s for in-flight runs", s.config.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
