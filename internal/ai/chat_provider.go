package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"resumeadvisor/internal/config"
	"resumeadvisor/internal/errors"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ChatProvider talks to an OpenAI-compatible chat completions endpoint such as Groq.
type ChatProvider struct {
	client         *resty.Client
	config         *config.OperationAIConfig
	circuitBreaker *AICircuitBreaker
	logger         *errors.Logger
}

var _ CompletionProvider = (*ChatProvider)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// NewChatProvider creates a provider for a specific operation. The API key is
// not required here; a missing key fails each Complete call instead.
func NewChatProvider(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (*ChatProvider, error) {
	if cfg.Endpoint == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "completion endpoint is not configured", nil)
	}

	client := resty.New().
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{logger})

	return &ChatProvider{
		client:         client,
		config:         cfg,
		circuitBreaker: NewAICircuitBreaker(operationType, cfg, logger),
		logger:         logger,
	}, nil
}

// Complete performs one chat completion bounded by the operation timeout.
func (c *ChatProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	ctx, span := otel.Tracer("resumeadvisor.ai.chat").Start(ctx, "chat.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", c.config.Provider),
		attribute.String("ai.model", c.config.Model),
		attribute.Int("ai.prompt_length", len(prompt)),
	)

	if c.config.APIKey == "" {
		err := errors.NewConfigError(errors.ErrCodeMissingAPIKey, "no API key configured for the completion provider", nil).
			WithContext("provider", c.config.Provider)
		span.RecordError(err)
		return nil, err
	}

	if timeout := c.config.AttemptTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	completion, err := c.circuitBreaker.Execute(func() (*Completion, error) {
		return c.send(ctx, prompt)
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, err
	}

	if completion.Usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", completion.Usage.InputTokens),
			attribute.Int64("ai.tokens.output", completion.Usage.OutputTokens),
			attribute.Int64("ai.tokens.total", completion.Usage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))
	return completion, nil
}

func (c *ChatProvider) send(ctx context.Context, prompt string) (*Completion, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.config.APIKey).
		SetBody(chatRequest{
			Model:    c.config.Model,
			Messages: []chatMessage{{Role: "user", Content: prompt}},
		}).
		Post(c.config.Endpoint)
	if err != nil {
		transportErr := errors.NewTransportError(0, "", err)
		if stderrors.Is(err, context.DeadlineExceeded) {
			transportErr.WithContext("timeout", c.config.AttemptTimeout().String())
		}
		return nil, transportErr
	}

	if !resp.IsSuccess() {
		return nil, errors.NewTransportError(resp.StatusCode(), resp.String(), nil)
	}

	body := resp.Body()
	content := gjson.GetBytes(body, "choices.0.message.content")
	if content.Type != gjson.String {
		detail := "choices[0].message.content is missing"
		if !gjson.ValidBytes(body) {
			detail = "response body is not valid JSON"
		} else if content.Exists() {
			detail = fmt.Sprintf("choices[0].message.content has type %s", content.Type)
		}
		return nil, errors.NewMalformedResponseError(detail).
			WithContext("status_code", resp.StatusCode())
	}

	model := c.config.Model
	if m := gjson.GetBytes(body, "model"); m.Type == gjson.String && m.Str != "" {
		model = m.Str
	}

	return &Completion{
		Text:  content.Str,
		Model: model,
		Usage: chatUsage(body),
	}, nil
}

func chatUsage(body []byte) *TokenUsage {
	usage := gjson.GetBytes(body, "usage")
	if !usage.IsObject() {
		return nil
	}
	return &TokenUsage{
		InputTokens:  usage.Get("prompt_tokens").Int(),
		OutputTokens: usage.Get("completion_tokens").Int(),
		TotalTokens:  usage.Get("total_tokens").Int(),
	}
}

// GetCircuitBreakerStats returns circuit breaker statistics for this provider
func (c *ChatProvider) GetCircuitBreakerStats() map[string]any {
	return c.circuitBreaker.GetStats()
}

// Close releases idle connections held by the HTTP client.
func (c *ChatProvider) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

// restyLogger routes resty's internal messages into the structured logger.
type restyLogger struct {
	logger *errors.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	if l.logger != nil {
		l.logger.Warn("http client error", "detail", fmt.Sprintf(format, v...))
	}
}

func (l restyLogger) Warnf(format string, v ...any) {
	if l.logger != nil {
		l.logger.Warn("http client warning", "detail", fmt.Sprintf(format, v...))
	}
}

func (l restyLogger) Debugf(format string, v ...any) {
	if l.logger != nil {
		l.logger.Debug("http client debug", "detail", fmt.Sprintf(format, v...))
	}
}
