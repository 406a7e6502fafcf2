package ai

import "context"

// CompletionProvider sends one prompt to a remote model per call. Providers
// never retry; retry policy belongs to the caller.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (*Completion, error)
	GetCircuitBreakerStats() map[string]any
	Close() error
}

// Completion is the reply of a single completion attempt.
type Completion struct {
	Text  string
	Model string
	Usage *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// Add accumulates other into u. A nil other is ignored.
func (u *TokenUsage) Add(other *TokenUsage) {
	if other == nil {
		return
	}
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}
