package interfaces

import "context"

// LLMService generates a single completion for a prompt.
// Implementations return provider errors unmodified so callers can
// classify rate limits.
type LLMService interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
