package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resumeadvisor/internal/config"
	"resumeadvisor/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

func TestGeminiProviderMissingAPIKey(t *testing.T) {
	provider, err := NewGeminiProvider(&config.OperationAIConfig{
		Provider: config.ProviderGemini,
		Model:    "gemini-2.0-flash",
		Timeout:  timePtr(time.Second),
	}, "Test", nil)
	require.NoError(t, err, "a missing key must not fail construction")

	_, err = provider.Complete(context.Background(), "prompt")
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingAPIKey))
	assert.NoError(t, provider.Close())
}

type geminiRequest struct {
	path   string
	apiKey string
}

func newGeminiServer(t *testing.T, status int, body string) (*httptest.Server, *geminiRequest) {
	t.Helper()
	captured := &geminiRequest{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.apiKey = r.Header.Get("x-goog-api-key")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, captured
}

func newGeminiProvider(t *testing.T, endpoint string) *GeminiProvider {
	t.Helper()
	provider, err := NewGeminiProvider(&config.OperationAIConfig{
		Provider: config.ProviderGemini,
		Endpoint: endpoint,
		Model:    config.GeminiModel,
		APIKey:   "gemini-test-key",
		Timeout:  timePtr(5 * time.Second),
	}, "Test", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })
	return provider
}

func TestGeminiProviderComplete(t *testing.T) {
	ts, captured := newGeminiServer(t, http.StatusOK, `{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "Rating: 8"}]}, "finishReason": "STOP"}],
		"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 2, "totalTokenCount": 5}
	}`)
	provider := newGeminiProvider(t, ts.URL)

	completion, err := provider.Complete(context.Background(), "review this resume")
	require.NoError(t, err)

	assert.Equal(t, "Rating: 8", completion.Text)
	assert.Equal(t, config.GeminiModel, completion.Model)
	require.NotNil(t, completion.Usage)
	assert.Equal(t, int64(3), completion.Usage.InputTokens)
	assert.Equal(t, int64(5), completion.Usage.TotalTokens)

	assert.Contains(t, captured.path, "models/"+config.GeminiModel+":generateContent")
	assert.Equal(t, "gemini-test-key", captured.apiKey)
}

func TestGeminiProviderNoCandidates(t *testing.T) {
	ts, _ := newGeminiServer(t, http.StatusOK, `{"candidates": []}`)
	provider := newGeminiProvider(t, ts.URL)

	_, err := provider.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAIMalformedResponse))
}

func TestGeminiProviderServerError(t *testing.T) {
	ts, _ := newGeminiServer(t, http.StatusInternalServerError,
		`{"error": {"code": 500, "message": "backend exploded", "status": "INTERNAL"}}`)
	provider := newGeminiProvider(t, ts.URL)

	_, err := provider.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAITransportFailed))
	assert.Equal(t, http.StatusInternalServerError, errors.StatusCode(err))
}

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{
			name:   "genai api error",
			err:    genai.APIError{Code: http.StatusTooManyRequests, Message: "quota exceeded"},
			status: http.StatusTooManyRequests,
		},
		{
			name:   "wrapped googleapi error",
			err:    fmt.Errorf("generate: %w", &googleapi.Error{Code: http.StatusForbidden, Body: "denied"}),
			status: http.StatusForbidden,
		},
		{
			name:   "network error",
			err:    fmt.Errorf("dial tcp: connection refused"),
			status: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyGeminiError(tt.err)
			assert.True(t, errors.HasCode(classified, errors.ErrCodeAITransportFailed))
			assert.Equal(t, tt.status, errors.StatusCode(classified))
			assert.NotNil(t, classified.(*errors.AppError).Cause)
		})
	}
}

func TestExtractTokenUsage(t *testing.T) {
	assert.Nil(t, extractTokenUsage(nil))
	assert.Nil(t, extractTokenUsage(&genai.GenerateContentResponse{}))

	usage := extractTokenUsage(&genai.GenerateContentResponse{
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 5,
			TotalTokenCount:      15,
		},
	})
	require.NotNil(t, usage)
	assert.Equal(t, int64(15), usage.TotalTokens)
}
