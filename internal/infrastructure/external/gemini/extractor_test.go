package gemini

import (
	"context"
	"errors"
	"os"
	"testing"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/caredoc/internal/application/port"
	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/infrastructure/external/prompt"
)

func testPrompts() *prompt.Config {
	return &prompt.Config{RecordExtraction: prompt.Spec{
		Temperature:  0.1,
		System:       "extractor",
		UserTemplate: "입력 텍스트:\n{{.Text}}",
	}}
}

func today() string { return "2026-10-17" }

func TestExtractor_MissingKey(t *testing.T) {
	e, err := NewExtractor(context.Background(), Config{Model: "gemini-2.5-flash"}, testPrompts(), today, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	_, err = e.Extract(context.Background(), port.ExtractionInput{Text: "간병인 홍길동"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConfiguration))
	assert.Equal(t, "GEMINI_API_KEY 환경변수가 설정되지 않았습니다.", apperr.UserMessage(err, ""))
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"patientName":`), genai.Text(`"김철수"}`)}},
	}}}
	assert.Equal(t, `{"patientName":"김철수"}`, responseText(resp))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))
	assert.Equal(t, "", responseText(nil))
}

func TestExtractor_Live(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	e, err := NewExtractor(context.Background(), Config{APIKey: apiKey, Model: "gemini-2.5-flash"}, testPrompts(), today, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	p, err := e.Extract(context.Background(), port.ExtractionInput{Text: `JSON으로만 답하세요: {"patientName":"김철수"}`})
	require.NoError(t, err)
	require.NotNil(t, p.PatientName)
	assert.Equal(t, "김철수", *p.PatientName)
}
