package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrRateLimited indicates the gateway answered 429.
	ErrRateLimited = errors.New("ai gateway rate limit exceeded")
	// ErrQuotaExhausted indicates the gateway answered 402.
	ErrQuotaExhausted = errors.New("ai gateway credits exhausted")
	// ErrUnavailable covers every other gateway failure.
	ErrUnavailable = errors.New("ai gateway unavailable")
)

// Message roles accepted by the gateway.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a streaming chat completion request.
type ChatRequest struct {
	Messages  []Message
	MaxTokens int
}

// Chunk is one provider stream event, kept in the OpenAI chunk shape so it can be relayed as-is.
type Chunk = openai.ChatCompletionStreamResponse

// DeltaContent returns the text carried by the first choice of a chunk.
func DeltaContent(chunk Chunk) string {
	if len(chunk.Choices) == 0 {
		return ""
	}
	return chunk.Choices[0].Delta.Content
}

// Stream yields completion chunks. Recv returns io.EOF once the completion is finished.
type Stream interface {
	Recv() (Chunk, error)
	Close() error
}

// Gateway streams chat completions from an OpenAI-compatible provider.
type Gateway interface {
	StreamChat(ctx context.Context, req ChatRequest) (Stream, error)
}
