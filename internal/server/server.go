// Package server exposes the reconciler over HTTP: a multipart upload
// endpoint that returns the report workbook, and a health check.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ledger-reconciliation/internal/config"
	"ledger-reconciliation/internal/engine"
	"ledger-reconciliation/internal/gateway"
)

// Server wires the reconciliation engine into a gin router.
type Server struct {
	cfg    *config.Config
	engine *engine.Engine
	writer *gateway.WorkbookWriter
	logger *zap.Logger
	router *gin.Engine
}

// New creates a server and registers its routes.
func New(cfg *config.Config, eng *engine.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		engine: eng,
		writer: gateway.NewWorkbookWriter(),
		logger: logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = 32 << 20

	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(s.logger))
	router.Use(gin.Recovery())

	router.GET("/health", s.handleHealth)
	router.POST("/reconcile", RateLimitMiddleware(s.reconcileLimiter()), s.handleReconcile)
	return router
}

func (s *Server) reconcileLimiter() *rate.Limiter {
	if s.cfg.Server.RateLimitPerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(s.cfg.Server.RateLimitPerSec), s.cfg.Server.RateBurst)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
