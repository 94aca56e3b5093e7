package container

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/caredoc/internal/application/port"
	"github.com/garyjia/caredoc/internal/application/service"
	"github.com/garyjia/caredoc/internal/domain/document"
	"github.com/garyjia/caredoc/internal/domain/entity"
	"github.com/garyjia/caredoc/internal/infrastructure/export"
	"github.com/garyjia/caredoc/internal/infrastructure/external/gemini"
	"github.com/garyjia/caredoc/internal/infrastructure/external/openai"
	"github.com/garyjia/caredoc/internal/infrastructure/external/prompt"
	"github.com/garyjia/caredoc/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/caredoc/internal/infrastructure/render"
	"github.com/garyjia/caredoc/internal/infrastructure/storage"
	"github.com/garyjia/caredoc/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB    *database.DB
	Store port.KeyValueStore
}

// ExtractionBundle holds the selected extractor and its cleanup.
type ExtractionBundle struct {
	Extractor port.Extractor
	PDF       port.PageConverter
	Close     func() error
}

// RenderBundle holds the document templates and the rasterizer.
type RenderBundle struct {
	Templates  *document.Templates
	Rasterizer port.Rasterizer
}

// ProvideDatabase opens the database, runs the embedded migrations and
// returns the key-value store on top of it.
func ProvideDatabase(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	applied, err := database.NewMigrator(db, logger).Run(ctx, sqlite.Migrations())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if applied > 0 {
		logger.Info("Database migrations applied", zap.Int("count", applied))
	}

	return &DatabaseBundle{
		DB:    db,
		Store: sqlite.NewKVStore(db.DB, logger),
	}, nil
}

// ProvideExtraction loads the prompts and creates the configured provider.
// A missing API key does not fail startup; the extractor reports it per call.
func ProvideExtraction(ctx context.Context, cfg *ExtractionConfig, renderCfg *RenderConfig, logger *zap.Logger) (*ExtractionBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("extraction config is required")
	}

	prompts, err := prompt.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		return nil, err
	}

	today := func() string { return entity.TodayKST(time.Now()) }
	bundle := &ExtractionBundle{
		PDF:   render.NewPDFConverter(renderCfg.DPI / 2),
		Close: func() error { return nil },
	}

	switch cfg.Provider {
	case gemini.ProviderName:
		ext, err := gemini.NewExtractor(ctx, gemini.Config{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		}, prompts, today, logger)
		if err != nil {
			return nil, err
		}
		bundle.Extractor = ext
		bundle.Close = ext.Close
	case openai.ProviderName, "":
		bundle.Extractor = openai.NewExtractor(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.Timeout,
		}, prompts, today, logger)
	default:
		return nil, fmt.Errorf("unknown extraction provider %q", cfg.Provider)
	}

	logger.Info("Extraction provider configured", zap.String("provider", bundle.Extractor.Name()))
	return bundle, nil
}

// ProvideRender loads the page assets, parses the templates and creates the
// rasterizer. Unreadable stamp or watermark files are logged and skipped.
func ProvideRender(cfg *RenderConfig, invoice *InvoiceConfig, logger *zap.Logger) (*RenderBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("render config is required")
	}

	assets := document.Assets{}
	if uri, err := render.LoadDataURI(cfg.StampPath); err != nil {
		logger.Warn("Stamp image not loaded", zap.Error(err))
	} else {
		assets.Stamp = uri
	}
	if uri, err := render.LoadDataURI(cfg.WatermarkPath); err != nil {
		logger.Warn("Watermark image not loaded", zap.Error(err))
	} else {
		assets.Watermark = uri
	}
	if cfg.FontPath != "" {
		assets.FontFile = render.FontFileName(cfg.FontPath)
	}

	templates, err := document.NewTemplates(document.Options{
		Invoice: document.InvoiceSettings{
			FeePerDay:     invoice.FeePerDay,
			BankAccount:   invoice.BankAccount,
			AccountHolder: invoice.AccountHolder,
		},
		Assets: assets,
	})
	if err != nil {
		return nil, err
	}

	return &RenderBundle{
		Templates: templates,
		Rasterizer: render.NewRasterizer(render.Config{
			SettleDelay: cfg.SettleDelay,
			DPI:         cfg.DPI,
			FontPath:    cfg.FontPath,
		}, logger),
	}, nil
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Store      port.KeyValueStore
	Extraction *ExtractionBundle
	Render     *RenderBundle
	Export     *ExportConfig
	Company    entity.CompanyProfile
	Metrics    service.Metrics
	Logger     *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Logger == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}
	clock := service.Clock(time.Now)

	settings := service.NewSettingsService(deps.Store, deps.Company, serviceLogger)
	history := service.NewHistoryService(deps.Store, export.NewLedgerWriter(deps.Logger), clock, serviceLogger)

	return &ServiceBundle{
		Extraction: service.NewExtractionService(
			deps.Extraction.Extractor,
			deps.Extraction.PDF,
			deps.Metrics,
			serviceLogger,
		),
		Records:  service.NewRecordService(settings, clock),
		Settings: settings,
		History:  history,
		Documents: service.NewDocumentService(
			deps.Render.Templates,
			deps.Render.Rasterizer,
			storage.NewLocalFileStorage(deps.Export.OutputDir, deps.Logger),
			history,
			service.ExportOptions{PacingDelay: deps.Export.PacingDelay},
			deps.Metrics,
			serviceLogger,
		),
	}, nil
}
