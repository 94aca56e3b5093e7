// Package container provides dependency injection and lifecycle management
// for the caregiving document service following Clean Architecture principles.
package container

import (
	"fmt"
	"time"

	"github.com/garyjia/caredoc/internal/domain/entity"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Extraction provider configuration
	Extraction ExtractionConfig

	// Render configuration
	Render RenderConfig

	// Export configuration
	Export ExportConfig

	// Invoice payee and fee
	Invoice InvoiceConfig

	// Company is the issuer profile used until one is saved
	Company entity.CompanyProfile
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file, or ":memory:"
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration
}

// ExtractionConfig holds language model settings.
type ExtractionConfig struct {
	// Provider is "openai" or "gemini"
	Provider string

	// PromptsPath is the prompts YAML file
	PromptsPath string

	// Timeout bounds one provider request
	Timeout time.Duration

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	GeminiAPIKey string
	GeminiModel  string
}

// RenderConfig holds rasterizer settings.
type RenderConfig struct {
	SettleDelay   time.Duration
	DPI           float64
	FontPath      string
	StampPath     string
	WatermarkPath string
}

// ExportConfig holds export settings.
type ExportConfig struct {
	// OutputDir receives the exported PNG files
	OutputDir string

	// PacingDelay separates the documents of an export-all run
	PacingDelay time.Duration
}

// InvoiceConfig holds invoice settings.
type InvoiceConfig struct {
	FeePerDay     int64
	BankAccount   string
	AccountHolder string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "data/caredoc.db",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Extraction: ExtractionConfig{
			Provider:    "openai",
			PromptsPath: "configs/prompts.yaml",
			Timeout:     90 * time.Second,
			OpenAIModel: "gpt-4o",
			GeminiModel: "gemini-2.5-flash",
		},
		Render: RenderConfig{
			SettleDelay: 300 * time.Millisecond,
			DPI:         192,
		},
		Export: ExportConfig{
			OutputDir:   "exports",
			PacingDelay: 800 * time.Millisecond,
		},
		Invoice: InvoiceConfig{
			FeePerDay: 7000,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Extraction.PromptsPath == "" {
		return fmt.Errorf("extraction.prompts_path is required")
	}
	if c.Export.OutputDir == "" {
		return fmt.Errorf("export.output_dir is required")
	}
	return nil
}
