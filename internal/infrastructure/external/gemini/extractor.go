package gemini

import (
	"context"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/garyjia/caredoc/internal/application/port"
	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/entity"
	"github.com/garyjia/caredoc/internal/infrastructure/external/prompt"
)

// ProviderName identifies this extractor in configuration and logs
const ProviderName = "gemini"

// logPrefixRunes bounds how much of an unparsable response is logged
const logPrefixRunes = 80

// Config configures the Gemini extractor
type Config struct {
	APIKey string
	Model  string
}

// Extractor implements port.Extractor using the Gemini API
type Extractor struct {
	client *genai.Client
	model  string
	prompt prompt.Spec
	today  func() string
	logger *zap.Logger
}

var _ port.Extractor = (*Extractor)(nil)

// NewExtractor creates a Gemini extractor. Without an API key no client is
// created and Extract reports the missing credential.
func NewExtractor(ctx context.Context, cfg Config, prompts *prompt.Config, today func() string, logger *zap.Logger) (*Extractor, error) {
	e := &Extractor{
		model:  cfg.Model,
		prompt: prompts.RecordExtraction,
		today:  today,
		logger: logger,
	}
	if cfg.APIKey == "" {
		return e, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	e.client = client
	return e, nil
}

// Name returns the provider name
func (e *Extractor) Name() string {
	return ProviderName
}

// Close releases the underlying client
func (e *Extractor) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

// Extract sends the prompt and optional inline image to the model
func (e *Extractor) Extract(ctx context.Context, in port.ExtractionInput) (*entity.PartialRecord, error) {
	if e.client == nil {
		return nil, apperr.Configuration(apperr.MsgMissingAPIKey, "GEMINI_API_KEY")
	}

	userPrompt, err := e.prompt.RenderUser(prompt.Data{Text: in.Text, Today: e.today()})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	model := e.client.GenerativeModel(e.model)
	model.SetTemperature(e.prompt.Temperature)
	if e.prompt.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(e.prompt.MaxTokens))
	}
	if e.prompt.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(e.prompt.System)}}
	}
	model.ResponseMIMEType = "application/json"

	parts := []genai.Part{genai.Text(userPrompt)}
	if in.HasImage() {
		parts = append(parts, genai.Blob{MIMEType: in.MIMEType, Data: in.Image})
	}

	e.logger.Info("Extracting caregiver record",
		zap.String("model", e.model),
		zap.Bool("has_image", in.HasImage()),
		zap.Int("text_length", len(in.Text)))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		e.logger.Error("Gemini API call failed", zap.Error(err))
		return nil, prompt.UpstreamError(err)
	}

	content := responseText(resp)
	if content == "" {
		return nil, apperr.Upstream(nil, apperr.MsgUpstreamFailed, "no response from Gemini")
	}

	record, err := prompt.ParseRecord(content)
	if err != nil {
		e.logger.Error("Failed to parse Gemini response",
			zap.Error(err),
			zap.Int("content_length", len(content)),
			zap.String("content_prefix", prompt.LogPrefix(content, logPrefixRunes)))
		return nil, err
	}

	e.logger.Info("Extraction completed")
	return record, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
