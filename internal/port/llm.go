package port

import (
	"context"

	"ragctx/internal/domain"
)

// LLM is a chat-completion model.
type LLM interface {
	// Chat sends the conversation and returns the reply text.
	Chat(ctx context.Context, messages []domain.ChatMessage, temperature float64) (string, error)
}
