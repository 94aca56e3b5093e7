package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/garyjia/caredoc/internal/domain/entity"
)

// Extraction providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig          `mapstructure:"server"`
	Database   DatabaseConfig        `mapstructure:"database"`
	Extraction ExtractionConfig      `mapstructure:"extraction"`
	Render     RenderConfig          `mapstructure:"render"`
	Export     ExportConfig          `mapstructure:"export"`
	Invoice    InvoiceConfig         `mapstructure:"invoice"`
	Company    entity.CompanyProfile `mapstructure:"company"`
	RateLimit  RateLimitConfig       `mapstructure:"rate_limit"`
	Logger     LoggerConfig          `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ExtractionConfig selects and configures the language model provider
type ExtractionConfig struct {
	Provider    string        `mapstructure:"provider"`
	PromptsPath string        `mapstructure:"prompts_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	OpenAI      OpenAIConfig  `mapstructure:"openai"`
	Gemini      GeminiConfig  `mapstructure:"gemini"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// RenderConfig holds rasterizer configuration
type RenderConfig struct {
	SettleDelay   time.Duration `mapstructure:"settle_delay"`
	DPI           float64       `mapstructure:"dpi"`
	WatermarkPath string        `mapstructure:"watermark_path"`
	StampPath     string        `mapstructure:"stamp_path"`
	FontPath      string        `mapstructure:"font_path"`
}

// ExportConfig holds document export configuration
type ExportConfig struct {
	OutputDir   string        `mapstructure:"output_dir"`
	PacingDelay time.Duration `mapstructure:"pacing_delay"`
}

// InvoiceConfig holds the invoice fee and payee
type InvoiceConfig struct {
	FeePerDay     int64  `mapstructure:"fee_per_day"`
	BankAccount   string `mapstructure:"bank_account"`
	AccountHolder string `mapstructure:"account_holder"`
}

// RateLimitConfig limits extraction requests per client IP
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
	Burst             int     `mapstructure:"burst"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables. A .env file
// next to the working directory is loaded first when present; variables
// already set in the environment win.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_body_bytes", 20<<20)

	// Database defaults
	v.SetDefault("database.path", "data/caredoc.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 0)

	// Extraction defaults
	v.SetDefault("extraction.provider", ProviderOpenAI)
	v.SetDefault("extraction.prompts_path", "configs/prompts.yaml")
	v.SetDefault("extraction.timeout", 90*time.Second)
	v.SetDefault("extraction.openai.model", "gpt-4o")
	v.SetDefault("extraction.gemini.model", "gemini-2.5-flash")

	// Render defaults
	v.SetDefault("render.settle_delay", 300*time.Millisecond)
	v.SetDefault("render.dpi", 192)

	// Export defaults
	v.SetDefault("export.output_dir", "exports")
	v.SetDefault("export.pacing_delay", 800*time.Millisecond)

	// Invoice defaults
	v.SetDefault("invoice.fee_per_day", 7000)
	v.SetDefault("invoice.bank_account", "카카오뱅크 3333-3093-7046")
	v.SetDefault("invoice.account_holder", "클라우드나인 메디케어")

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 10)
	v.SetDefault("rate_limit.burst", 3)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		"extraction.openai.api_key": "OPENAI_API_KEY",
		"extraction.gemini.api_key": "GEMINI_API_KEY",
		"extraction.provider":       "EXTRACTION_PROVIDER",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

// Validate validates the configuration. Missing API keys are not an error
// here: the server starts and reports the missing key per request.
func (c *Config) Validate() error {
	switch c.Extraction.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("extraction.provider must be %q or %q, got %q",
			ProviderOpenAI, ProviderGemini, c.Extraction.Provider)
	}

	if c.Extraction.PromptsPath == "" {
		return fmt.Errorf("extraction.prompts_path is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port is out of range: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Export.OutputDir == "" {
		return fmt.Errorf("export.output_dir is required")
	}
	if c.Render.DPI <= 0 {
		return fmt.Errorf("render.dpi must be positive")
	}
	if c.Invoice.FeePerDay < 0 {
		return fmt.Errorf("invoice.fee_per_day must not be negative")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit needs positive requests_per_minute and burst")
	}

	return nil
}

// APIKeyFor returns the configured key of the selected provider
func (c *Config) APIKeyFor(provider string) string {
	switch provider {
	case ProviderGemini:
		return c.Extraction.Gemini.APIKey
	default:
		return c.Extraction.OpenAI.APIKey
	}
}

// Exists reports whether path names an existing file
func Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
