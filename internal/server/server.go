// file: internal/server/server.go
// version: 2.0.0
// guid: 4c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rero/thumbnails/internal/metrics"
	"github.com/rero/thumbnails/internal/providers"
	"github.com/rero/thumbnails/internal/resolver"
	"github.com/rero/thumbnails/internal/server/middleware"
)

// Server exposes thumbnail resolution over HTTP.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	resolver   *resolver.Resolver
	files      *providers.FilesProvider
	maxAge     time.Duration
}

// Options configures a Server.
type Options struct {
	Resolver *resolver.Resolver
	Files    *providers.FilesProvider
	MaxAge   time.Duration

	// Per-client rate limiting; RPS <= 0 disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewServer creates a server instance with routes and middleware set up.
func NewServer(opts Options) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if opts.RateLimitRPS > 0 {
		router.Use(middleware.NewIPRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).Middleware())
	}

	// Register metrics (idempotent)
	metrics.Register()

	server := &Server{
		router:   router,
		resolver: opts.Resolver,
		files:    opts.Files,
		maxAge:   opts.MaxAge,
	}

	server.setupRoutes()

	return server
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Start runs the HTTP server on addr until SIGINT or SIGTERM, then
// shuts down gracefully.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	go func() {
		log.Printf("[INFO] starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[ERROR] failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[INFO] shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	log.Println("[INFO] server exited")
	return nil
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/healthz", s.healthCheck)

	api := s.router.Group("/api")
	api.GET("/thumbnails-url/:isbn", s.handleThumbnailURL)
	api.GET("/thumbnails/:isbn", s.handleThumbnailFile)
}
