package output

import (
	"context"

	"browser-runner/internal/domain/entity"
)

// LLMPort is a chat model that can request tool calls.
type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages []entity.Message
	// Tools may be empty, in which case the model can only answer in text.
	Tools       []entity.ToolDefinition
	Temperature float32
}

type ChatResponse struct {
	Message entity.Message
	// FinishReason is the provider's stop reason, e.g. "stop" or "tool_calls".
	FinishReason string
}
