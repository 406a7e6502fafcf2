package ai

import (
	"context"
	"fmt"

	"resumeadvisor/internal/config"
	"resumeadvisor/internal/errors"
)

// Service binds a completion provider to one operation's configuration
type Service struct {
	Provider  CompletionProvider
	config    *config.OperationAIConfig
	operation string
	logger    *errors.Logger
}

var _ CompletionProvider = (*Service)(nil)

// NewService creates a new AI service instance with configuration for a specific operation
func NewService(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (*Service, error) {
	if logger != nil {
		logger.Debug("Initializing AI service",
			"provider", cfg.Provider,
			"operation_type", operationType,
			"endpoint", cfg.Endpoint,
			"model", cfg.Model,
			"timeout", cfg.AttemptTimeout(),
			"max_attempts", cfg.Attempts(),
			"api_key_configured", cfg.APIKey != "")
	}

	var (
		provider CompletionProvider
		err      error
	)
	switch cfg.Provider {
	case config.ProviderGroq, config.ProviderOpenAI:
		provider, err = NewChatProvider(cfg, operationType, logger)
	case config.ProviderGemini:
		provider, err = NewGeminiProvider(cfg, operationType, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create AI provider", err)
	}

	return &Service{
		Provider:  provider,
		config:    cfg,
		operation: operationType,
		logger:    logger,
	}, nil
}

// Complete forwards one attempt to the provider.
func (s *Service) Complete(ctx context.Context, prompt string) (*Completion, error) {
	completion, err := s.Provider.Complete(ctx, prompt)
	if err != nil && s.logger != nil {
		s.logger.LogError(err, "Completion attempt failed", "operation", s.operation, "provider", s.config.Provider)
	}
	return completion, err
}

// Config returns the resolved operation configuration.
func (s *Service) Config() *config.OperationAIConfig {
	return s.config
}

func (s *Service) GetCircuitBreakerStats() map[string]any {
	return s.Provider.GetCircuitBreakerStats()
}

func (s *Service) Close() error {
	return s.Provider.Close()
}
