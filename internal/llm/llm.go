package llm

import (
	"context"

	"calorina/internal/config"
	"calorina/internal/shared"

	"github.com/google/generative-ai-go/genai"
)

// Role of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn of the conversation sent to the model.
type Message struct {
	Role Role
	Text string
}

// Request describes one completion call.
type Request struct {
	// Instruction is the system prompt / persona for the call.
	Instruction string
	// History is the conversation, oldest first. The last entry is the turn
	// being answered.
	History []Message
	// ResponseSchema constrains the reply to JSON of that shape. Nil means
	// free text.
	ResponseSchema *genai.Schema
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// Completer produces a reply for a conversation.
type Completer interface {
	Complete(ctx context.Context, req Request) (ContentResponse, error)
}

// NewCompleter returns the completer for the configured provider.
func NewCompleter(cfg *config.Config) Completer {
	if cfg.LLMProvider == config.ProviderGroq {
		return NewGroqClient(cfg)
	}
	return NewGeminiClient(cfg)
}
