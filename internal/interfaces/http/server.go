// Package http provides HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/caredoc/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// HealthChecker reports the health of the components behind the server
type HealthChecker interface {
	Check(ctx context.Context) (healthy bool, details interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration // zero means 10s
	AllowedOrigins  []string
	MaxBodyBytes    int64
	RateLimit       RateLimitConfig
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    120 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		AllowedOrigins:  []string{"*"},
		MaxBodyBytes:    20 << 20,
	}
}

// Services are the application services the handlers call
type Services struct {
	Extraction service.ExtractionService
	Records    service.RecordService
	Settings   service.SettingsService
	History    service.HistoryService
	Documents  service.DocumentService
}

// Observability hooks; every field is optional
type Observability struct {
	Health            HealthChecker
	MetricsHandler    http.Handler
	MetricsMiddleware gin.HandlerFunc
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	obs        Observability
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, obs Observability, logger Logger) *Server {
	// Set gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		services: services,
		obs:      obs,
		logger:   logger,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.router.Use(gin.Recovery())

	// Logging middleware
	s.router.Use(s.loggingMiddleware())

	s.router.Use(corsMiddleware(s.config.AllowedOrigins))

	if s.obs.MetricsMiddleware != nil {
		s.router.Use(s.obs.MetricsMiddleware)
	}

	if s.config.MaxBodyBytes > 0 {
		s.router.Use(bodyLimitMiddleware(s.config.MaxBodyBytes))
	}
}

// loggingMiddleware logs one line per request; 5xx at error, 4xx at warn
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}

		switch {
		case status >= http.StatusInternalServerError:
			s.logger.Error("HTTP request", kv...)
		case status >= http.StatusBadRequest:
			s.logger.Warn("HTTP request", kv...)
		default:
			s.logger.Info("HTTP request", kv...)
		}
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.obs.Health, s.logger)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)
	if s.obs.MetricsHandler != nil {
		s.router.GET("/metrics", gin.WrapH(s.obs.MetricsHandler))
	}

	// API routes
	api := s.router.Group("/api")
	{
		analyze := []gin.HandlerFunc{}
		if s.config.RateLimit.Enabled {
			analyze = append(analyze, NewIPRateLimiter(s.config.RateLimit, s.logger).Middleware())
		}
		api.POST("/analyze", append(analyze, handlers.Analyze)...)

		// Records
		api.GET("/records/new", handlers.NewRecord)
		api.POST("/records/merge", handlers.MergeRecord)
		api.POST("/records/edit", handlers.EditRecord)

		// Issuer profile
		api.GET("/settings/company", handlers.GetCompanyProfile)
		api.PUT("/settings/company", handlers.SaveCompanyProfile)

		// History
		api.GET("/history", handlers.ListHistory)
		api.GET("/history/export", handlers.ExportHistory)
		api.DELETE("/history/:id", handlers.DeleteHistoryEntry)
		api.DELETE("/history", handlers.ClearHistory)

		// Documents
		api.POST("/documents/export", handlers.ExportAll)
		api.POST("/documents/:type/preview", handlers.PreviewDocument)
		api.POST("/documents/:type/render", handlers.RenderDocument)

		// Exported files
		api.GET("/exports/:name", handlers.DownloadExport)
		api.DELETE("/exports/:name", handlers.DeleteExport)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
