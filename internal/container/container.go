package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/caredoc/internal/application/port"
	"github.com/garyjia/caredoc/internal/application/service"
	"github.com/garyjia/caredoc/internal/metrics"
	"github.com/garyjia/caredoc/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// It follows Clean Architecture principles with ordered initialization
// and reverse-order teardown.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure - Data
	db    *database.DB
	store port.KeyValueStore

	// Infrastructure - External
	extraction *ExtractionBundle
	render     *RenderBundle

	// Application
	metrics  *metrics.Metrics
	services *ServiceBundle

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Extraction service.ExtractionService
	Records    service.RecordService
	Settings   service.SettingsService
	History    service.HistoryService
	Documents  service.DocumentService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components.
// Components are initialized in dependency order:
// 1. Database and key-value store
// 2. Extraction provider
// 3. Templates and rasterizer
// 4. Metrics and application services
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}

	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	// Step 1: Initialize database and store
	dbBundle, err := ProvideDatabase(ctx, &c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = dbBundle.DB
	c.store = dbBundle.Store
	c.logger.Info("Database initialized")

	// Step 2: Initialize extraction provider
	c.extraction, err = ProvideExtraction(ctx, &c.config.Extraction, &c.config.Render, c.logger)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize extraction: %w", err)
	}
	c.logger.Info("Extraction provider initialized")

	// Step 3: Initialize templates and rasterizer
	c.render, err = ProvideRender(&c.config.Render, &c.config.Invoice, c.logger)
	if err != nil {
		c.closeExtraction()
		c.closeDatabase()
		return fmt.Errorf("failed to initialize rendering: %w", err)
	}
	c.logger.Info("Rendering initialized")

	// Step 4: Initialize application services
	c.metrics = metrics.New()
	c.services, err = ProvideServices(&ServiceDeps{
		Store:      c.store,
		Extraction: c.extraction,
		Render:     c.render,
		Export:     &c.config.Export,
		Company:    c.config.Company,
		Metrics:    c.metrics,
		Logger:     c.logger,
	})
	if err != nil {
		c.closeExtraction()
		c.closeDatabase()
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.logger.Info("Application services initialized")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	// Services and rendering hold no resources

	if err := c.closeExtraction(); err != nil {
		errs = append(errs, fmt.Errorf("close extraction: %w", err))
	}

	if err := c.closeDatabase(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) closeExtraction() error {
	if c.extraction == nil || c.extraction.Close == nil {
		return nil
	}
	err := c.extraction.Close()
	if err != nil {
		c.logger.Error("Failed to close extraction client", zap.Error(err))
	}
	c.extraction = nil
	return err
}

func (c *Container) closeDatabase() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	if err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
	} else {
		c.logger.Info("Database closed")
	}
	c.db = nil
	return err
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	// Check database
	if c.db != nil {
		if err := c.db.Health(ctx); err != nil {
			status.Components["database"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	} else {
		status.Components["database"] = ComponentHealth{
			Healthy: false,
			Message: "not initialized",
		}
		status.Overall = false
	}

	// Check extraction provider
	if c.extraction != nil {
		status.Components["extraction"] = ComponentHealth{
			Healthy: true,
			Message: c.extraction.Extractor.Name(),
		}
	} else {
		status.Components["extraction"] = ComponentHealth{
			Healthy: false,
			Message: "not initialized",
		}
		status.Overall = false
	}

	// Check services
	if c.services != nil {
		status.Components["services"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["services"] = ComponentHealth{
			Healthy: false,
			Message: "not initialized",
		}
		status.Overall = false
	}

	return status
}

// Check implements the HTTP adapter's health checker.
func (c *Container) Check(ctx context.Context) (bool, interface{}) {
	status := c.Health(ctx)
	return status.Overall, status.Components
}

// Getters for accessing container components

// Store returns the key-value store.
func (c *Container) Store() port.KeyValueStore {
	return c.store
}

// Extractor returns the configured extractor.
func (c *Container) Extractor() port.Extractor {
	if c.extraction == nil {
		return nil
	}
	return c.extraction.Extractor
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Metrics returns the prometheus collectors.
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

// NewServiceLogger adapts logger to the kv-style service and HTTP loggers.
func NewServiceLogger(logger *zap.Logger) service.Logger {
	return &zapLoggerAdapter{logger: logger}
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	fields := convertToZapFields(keysAndValues...)
	a.logger.Info(msg, fields...)
}

func (a *zapLoggerAdapter) Warn(msg string, keysAndValues ...interface{}) {
	fields := convertToZapFields(keysAndValues...)
	a.logger.Warn(msg, fields...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	fields := convertToZapFields(keysAndValues...)
	a.logger.Error(msg, fields...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
