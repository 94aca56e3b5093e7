package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/garyjia/caredoc/internal/config"
	"github.com/garyjia/caredoc/internal/container"
	httpserver "github.com/garyjia/caredoc/internal/interfaces/http"
	"github.com/garyjia/caredoc/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting caregiving document service",
		zap.String("version", "1.0.0"),
		zap.String("provider", cfg.Extraction.Provider),
		zap.Int("port", cfg.Server.Port))

	if cfg.APIKeyFor(cfg.Extraction.Provider) == "" {
		logger.Warn("API key is not configured; analyze requests will fail until it is set",
			zap.String("provider", cfg.Extraction.Provider))
	}
	if cfg.Render.FontPath != "" && !config.Exists(cfg.Render.FontPath) {
		logger.Warn("Document font not found; pages render with the default font",
			zap.String("path", cfg.Render.FontPath))
	}

	// Create necessary directories
	if err := os.MkdirAll(cfg.Export.OutputDir, 0755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize container
	c, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		logger.Fatal("Failed to create container", zap.Error(err))
	}
	if err := c.Start(ctx); err != nil {
		logger.Fatal("Failed to start container", zap.Error(err))
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("Container shutdown error", zap.Error(err))
		}
	}()

	services := c.Services()
	m := c.Metrics()
	server := httpserver.NewServer(
		cfg.ToServerConfig(),
		httpserver.Services{
			Extraction: services.Extraction,
			Records:    services.Records,
			Settings:   services.Settings,
			History:    services.History,
			Documents:  services.Documents,
		},
		httpserver.Observability{
			Health:            c,
			MetricsHandler:    m.Handler(),
			MetricsMiddleware: m.Middleware(),
		},
		container.NewServiceLogger(logger),
	)

	// Start blocks until the signal context is cancelled, then shuts down
	if err := server.Start(ctx); err != nil {
		logger.Error("HTTP server stopped", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
