package config

import (
	"github.com/garyjia/caredoc/internal/container"
	httpserver "github.com/garyjia/caredoc/internal/interfaces/http"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Extraction: container.ExtractionConfig{
			Provider:      c.Extraction.Provider,
			PromptsPath:   c.Extraction.PromptsPath,
			Timeout:       c.Extraction.Timeout,
			OpenAIAPIKey:  c.Extraction.OpenAI.APIKey,
			OpenAIModel:   c.Extraction.OpenAI.Model,
			OpenAIBaseURL: c.Extraction.OpenAI.BaseURL,
			GeminiAPIKey:  c.Extraction.Gemini.APIKey,
			GeminiModel:   c.Extraction.Gemini.Model,
		},
		Render: container.RenderConfig{
			SettleDelay:   c.Render.SettleDelay,
			DPI:           c.Render.DPI,
			FontPath:      c.Render.FontPath,
			StampPath:     c.Render.StampPath,
			WatermarkPath: c.Render.WatermarkPath,
		},
		Export: container.ExportConfig{
			OutputDir:   c.Export.OutputDir,
			PacingDelay: c.Export.PacingDelay,
		},
		Invoice: container.InvoiceConfig{
			FeePerDay:     c.Invoice.FeePerDay,
			BankAccount:   c.Invoice.BankAccount,
			AccountHolder: c.Invoice.AccountHolder,
		},
		Company: c.Company,
	}
}

// ToServerConfig converts the server and rate limit sections for the HTTP adapter
func (c *Config) ToServerConfig() httpserver.ServerConfig {
	return httpserver.ServerConfig{
		Host:            c.Server.Host,
		Port:            c.Server.Port,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
		AllowedOrigins:  c.Server.AllowedOrigins,
		MaxBodyBytes:    c.Server.MaxBodyBytes,
		RateLimit: httpserver.RateLimitConfig{
			Enabled:           c.RateLimit.Enabled,
			RequestsPerMinute: c.RateLimit.RequestsPerMinute,
			Burst:             c.RateLimit.Burst,
		},
	}
}
