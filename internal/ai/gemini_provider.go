package ai

import (
	"context"
	stderrors "errors"
	"net/http"

	"resumeadvisor/internal/config"
	"resumeadvisor/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements CompletionProvider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	config         *config.OperationAIConfig
	circuitBreaker *AICircuitBreaker
	logger         *errors.Logger
}

var _ CompletionProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific
// operation. cfg.Endpoint, when set, overrides the API base URL.
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (*GeminiProvider, error) {
	provider := &GeminiProvider{
		config:         cfg,
		circuitBreaker: NewAICircuitBreaker(operationType, cfg, logger),
		logger:         logger,
	}

	// without a key the client cannot be built; Complete reports it per call
	if cfg.APIKey == "" {
		return provider, nil
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	if cfg.Endpoint != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create Gemini client", err)
	}
	provider.client = client
	return provider, nil
}

// Complete sends prompt as a single user turn.
func (g *GeminiProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	ctx, span := otel.Tracer("resumeadvisor.ai.gemini").Start(ctx, "gemini.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Int("ai.prompt_length", len(prompt)),
	)

	if g.client == nil {
		err := errors.NewConfigError(errors.ErrCodeMissingAPIKey, "no API key configured for the completion provider", nil).
			WithContext("provider", "gemini")
		span.RecordError(err)
		return nil, err
	}

	if timeout := g.config.AttemptTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	completion, err := g.circuitBreaker.Execute(func() (*Completion, error) {
		result, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), nil)
		if err != nil {
			return nil, classifyGeminiError(err)
		}
		if result == nil || len(result.Candidates) == 0 {
			return nil, errors.NewMalformedResponseError("response has no candidates")
		}
		return &Completion{
			Text:  result.Text(),
			Model: g.config.Model,
			Usage: extractTokenUsage(result),
		}, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, err
	}

	span.SetAttributes(attribute.Bool("success", true))
	return completion, nil
}

// classifyGeminiError maps SDK errors onto the transport error shape.
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		return errors.NewTransportError(apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if stderrors.As(err, &apiErrPtr) {
		return errors.NewTransportError(apiErrPtr.Code, apiErrPtr.Message, err)
	}
	var gErr *googleapi.Error
	if stderrors.As(err, &gErr) {
		return errors.NewTransportError(gErr.Code, gErr.Body, err)
	}
	return errors.NewTransportError(0, "", err)
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// GetCircuitBreakerStats returns circuit breaker statistics for this provider
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	return g.circuitBreaker.GetStats()
}

// Close is a no-op; the genai client holds no resources that need releasing.
func (g *GeminiProvider) Close() error {
	return nil
}
