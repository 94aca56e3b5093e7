package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/caredoc/internal/application/service"
	"github.com/garyjia/caredoc/internal/config"
	"github.com/garyjia/caredoc/internal/container"
	"github.com/garyjia/caredoc/internal/metrics"
)

const sampleText = `간병인 이영희 (1970.03.15)
환자 김철수 (1948.07.02), 서울중앙병원
2026.10.01 ~ 2026.10.05 간병, 일당 80,000원`

func main() {
	// Parse command line flags
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	provider := flag.String("provider", "", "Extraction provider (openai or gemini); defaults to config")
	text := flag.String("text", sampleText, "Free-form text to extract from")
	imagePath := flag.String("image", "", "Optional image or PDF to extract from")
	timeout := flag.Duration("timeout", 90*time.Second, "API call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	// Initialize logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *provider != "" {
		cfg.Extraction.Provider = *provider
	}

	apiKey := cfg.APIKeyFor(cfg.Extraction.Provider)
	if apiKey == "" {
		fmt.Fprintf(os.Stderr, "ERROR: no API key configured for provider %q\n", cfg.Extraction.Provider)
		fmt.Fprintf(os.Stderr, "Usage: test-extraction [--provider openai|gemini] [--text ...] [--image path]\n")
		os.Exit(1)
	}

	fmt.Println("=== Extraction Connection Test ===")

	// Diagnostic info
	fmt.Println("Configuration:")
	fmt.Printf("  Provider: %s\n", cfg.Extraction.Provider)
	fmt.Printf("  Prompts file: %s\n", cfg.Extraction.PromptsPath)
	fmt.Printf("  API key length: %d chars\n", len(apiKey))
	if len(apiKey) >= 4 {
		fmt.Printf("  API key prefix: %s...\n", apiKey[:4])
	}
	fmt.Printf("  Timeout: %v\n", *timeout)
	fmt.Println()

	if !config.Exists(cfg.Extraction.PromptsPath) {
		fmt.Fprintf(os.Stderr, "ERROR: Prompts file not found: %s\n", cfg.Extraction.PromptsPath)
		os.Exit(1)
	}
	fmt.Printf("✓ Prompts file found: %s\n\n", cfg.Extraction.PromptsPath)

	containerCfg := cfg.ToContainerConfig()
	extraction, err := container.ProvideExtraction(context.Background(), &containerCfg.Extraction, &containerCfg.Render, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to initialize extractor: %v\n", err)
		os.Exit(1)
	}
	defer extraction.Close()

	m := metrics.New()
	services, err := container.ProvideServices(&container.ServiceDeps{
		Extraction: extraction,
		Render:     &container.RenderBundle{},
		Export:     &containerCfg.Export,
		Company:    containerCfg.Company,
		Metrics:    m,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to initialize services: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ %s extractor initialized\n\n", extraction.Extractor.Name())

	req, err := buildRequest(*text, *imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Sending request...")
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	startTime := time.Now()
	result, err := services.Extraction.Analyze(ctx, req)
	duration := time.Since(startTime)

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ ERROR: extraction failed after %v\n", duration)
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "Possible causes:\n")
		fmt.Fprintf(os.Stderr, "  1. Invalid or expired API key\n")
		fmt.Fprintf(os.Stderr, "  2. Network connectivity issue\n")
		fmt.Fprintf(os.Stderr, "  3. Model name not available for this key\n")
		os.Exit(1)
	}

	fmt.Println("✓ Received response!")
	fmt.Printf("API Response Time: %v\n", duration)

	fmt.Println("\n=== Extracted Fields (JSON) ===")
	jsonBytes, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(jsonBytes))

	fmt.Println("\n✅ Extraction Test PASSED!")
}

// buildRequest reads the optional image and encodes it for the service
func buildRequest(text, imagePath string) (service.AnalyzeRequest, error) {
	req := service.AnalyzeRequest{Text: text}
	if imagePath == "" {
		return req, nil
	}
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return req, fmt.Errorf("failed to read image: %w", err)
	}
	req.ImageBase64 = base64.StdEncoding.EncodeToString(data)
	return req, nil
}
