package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/garyjia/caredoc/internal/application/port"
	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/entity"
	"github.com/garyjia/caredoc/internal/infrastructure/external/prompt"
)

// ProviderName identifies this extractor in configuration and logs
const ProviderName = "openai"

// logPrefixRunes bounds how much of an unparsable response is logged
const logPrefixRunes = 80

// Config configures the OpenAI extractor
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds one completion request; zero leaves it to ctx
	Timeout time.Duration
}

// Extractor implements port.Extractor using the OpenAI chat completion API
type Extractor struct {
	client *openai.Client
	model  string
	prompt prompt.Spec
	today  func() string
	logger *zap.Logger
}

var _ port.Extractor = (*Extractor)(nil)

// NewExtractor creates an OpenAI extractor. An empty API key is accepted;
// the missing credential is reported when Extract is called.
func NewExtractor(cfg Config, prompts *prompt.Config, today func() string, logger *zap.Logger) *Extractor {
	e := &Extractor{
		model:  cfg.Model,
		prompt: prompts.RecordExtraction,
		today:  today,
		logger: logger,
	}
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		if cfg.Timeout > 0 {
			clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
		}
		e.client = openai.NewClientWithConfig(clientCfg)
	}
	return e
}

// Name returns the provider name
func (e *Extractor) Name() string {
	return ProviderName
}

// Extract sends the text and optional image to the model and parses the
// JSON it returns.
func (e *Extractor) Extract(ctx context.Context, in port.ExtractionInput) (*entity.PartialRecord, error) {
	if e.client == nil {
		return nil, apperr.Configuration(apperr.MsgMissingAPIKey, "OPENAI_API_KEY")
	}

	userPrompt, err := e.prompt.RenderUser(prompt.Data{Text: in.Text, Today: e.today()})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if in.HasImage() {
		user.MultiContent = []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: userPrompt,
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    fmt.Sprintf("data:%s;base64,%s", in.MIMEType, base64.StdEncoding.EncodeToString(in.Image)),
					Detail: openai.ImageURLDetailHigh,
				},
			},
		}
	} else {
		user.Content = userPrompt
	}

	e.logger.Info("Extracting caregiver record",
		zap.String("model", e.model),
		zap.Bool("has_image", in.HasImage()),
		zap.Int("text_length", len(in.Text)))

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.prompt.Temperature,
		MaxTokens:   e.prompt.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: e.prompt.System,
			},
			user,
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Error("OpenAI API call failed", zap.Error(err))
		return nil, prompt.UpstreamError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperr.Upstream(nil, apperr.MsgUpstreamFailed, "no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	record, err := prompt.ParseRecord(content)
	if err != nil {
		e.logger.Error("Failed to parse OpenAI response",
			zap.Error(err),
			zap.Int("content_length", len(content)),
			zap.String("content_prefix", prompt.LogPrefix(content, logPrefixRunes)))
		return nil, err
	}

	e.logger.Info("Extraction completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	return record, nil
}
