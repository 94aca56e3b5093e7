package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/garyjia/caredoc/internal/application/port"
	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/infrastructure/external/prompt"
)

func testPrompts() *prompt.Config {
	return &prompt.Config{RecordExtraction: prompt.Spec{
		Temperature:  0.1,
		MaxTokens:    256,
		System:       "extractor",
		UserTemplate: "입력 텍스트:\n{{.Text}}",
	}}
}

func today() string { return "2026-10-17" }

func newTestServer(t *testing.T, status int, body string, seen *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]interface{}{
			{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": content}},
		},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(b)
}

func TestExtractor_MissingKey(t *testing.T) {
	e := NewExtractor(Config{Model: "gpt-4o-mini"}, testPrompts(), today, zap.NewNop())

	_, err := e.Extract(context.Background(), port.ExtractionInput{Text: "간병인 홍길동"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConfiguration))
	assert.Contains(t, apperr.UserMessage(err, ""), "OPENAI_API_KEY")
}

func TestExtractor_Text(t *testing.T) {
	var seen map[string]interface{}
	srv := newTestServer(t, http.StatusOK, completion(`{"caregiverName":"홍길동","dailyRate":80000}`), &seen)
	e := NewExtractor(Config{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"}, testPrompts(), today, zap.NewNop())

	p, err := e.Extract(context.Background(), port.ExtractionInput{Text: "간병인 홍길동, 일당 80000원"})
	require.NoError(t, err)
	require.NotNil(t, p.CaregiverName)
	assert.Equal(t, "홍길동", *p.CaregiverName)
	assert.Equal(t, int64(80000), *p.DailyRate)

	assert.Equal(t, "gpt-4o-mini", seen["model"])
	messages := seen["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Contains(t, messages[1].(map[string]interface{})["content"], "일당 80000원")
}

func TestExtractor_ImageIsSentAsDataURL(t *testing.T) {
	var seen map[string]interface{}
	srv := newTestServer(t, http.StatusOK, completion(`{}`), &seen)
	e := NewExtractor(Config{APIKey: "sk-test", Model: "gpt-4o", BaseURL: srv.URL + "/v1"}, testPrompts(), today, zap.NewNop())

	_, err := e.Extract(context.Background(), port.ExtractionInput{Image: []byte{0xff, 0xd8, 0xff}, MIMEType: "image/jpeg"})
	require.NoError(t, err)

	raw, _ := json.Marshal(seen["messages"])
	assert.Contains(t, string(raw), "data:image/jpeg;base64,/9j/")
}

func TestExtractor_InvalidKey(t *testing.T) {
	srv := newTestServer(t, http.StatusUnauthorized,
		`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`, nil)
	e := NewExtractor(Config{APIKey: "sk-bad", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"}, testPrompts(), today, zap.NewNop())

	_, err := e.Extract(context.Background(), port.ExtractionInput{Text: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUpstream))
	assert.Equal(t, apperr.MsgInvalidAPIKey, apperr.UserMessage(err, ""))
}

func TestExtractor_NonJSONAnswer(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, completion("정보가 부족합니다"), nil)
	e := NewExtractor(Config{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"}, testPrompts(), today, zap.NewNop())

	_, err := e.Extract(context.Background(), port.ExtractionInput{Text: "?"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrParse))
}

func TestExtractor_ParseFailureLogMasksDigits(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	srv := newTestServer(t, http.StatusOK, completion("보호자 주민번호 650505-2345678 입니다"), nil)
	e := NewExtractor(Config{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"}, testPrompts(), today, zap.New(core))

	_, err := e.Extract(context.Background(), port.ExtractionInput{Text: "?"})
	require.Error(t, err)

	entries := logs.FilterMessage("Failed to parse OpenAI response").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.NotContains(t, fields["content_prefix"], "650505")
	assert.NotContains(t, fields, "content")
	assert.EqualValues(t, len("보호자 주민번호 650505-2345678 입니다"), fields["content_length"])
}
