// Package langchain backs the model port with langchaingo, which lets the
// runner switch to any provider langchaingo supports without touching the
// agent.
package langchain

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"browser-runner/internal/application/port/output"
	"browser-runner/internal/domain/entity"
)

var _ output.LLMPort = (*Adapter)(nil)

type Adapter struct {
	model llms.Model
}

type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewOpenAI builds an adapter over langchaingo's OpenAI model.
func NewOpenAI(cfg Config) (*Adapter, error) {
	opts := []lcopenai.Option{
		lcopenai.WithToken(cfg.APIKey),
		lcopenai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, lcopenai.WithHTTPClient(cfg.HTTPClient))
	}

	model, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain openai model: %w", err)
	}
	return New(model), nil
}

func New(model llms.Model) *Adapter {
	return &Adapter{model: model}
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	opts := []llms.CallOption{llms.WithTemperature(float64(req.Temperature))}
	if len(req.Tools) > 0 {
		opts = append(opts, llms.WithTools(convertTools(req.Tools)))
	}

	resp, err := a.model.GenerateContent(ctx, convertMessages(req.Messages), opts...)
	if err != nil {
		return nil, fmt.Errorf("generate content failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, entity.ErrNoChoices
	}

	choice := resp.Choices[0]
	msg := entity.Message{
		Role:    entity.RoleAssistant,
		Content: choice.Content,
	}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		msg.ToolCalls = append(msg.ToolCalls, entity.ToolCall{
			ID:        tc.ID,
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		})
	}

	return &output.ChatResponse{Message: msg, FinishReason: choice.StopReason}, nil
}

func convertMessages(messages []entity.Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case entity.RoleSystem:
			result = append(result, llms.TextParts(llms.ChatMessageTypeSystem, msg.Content))
		case entity.RoleUser:
			content := llms.TextParts(llms.ChatMessageTypeHuman, msg.Content)
			for _, img := range msg.Images {
				content.Parts = append(content.Parts, llms.ImageURLPart(img.DataURL()))
			}
			result = append(result, content)
		case entity.RoleTool:
			result = append(result, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: msg.ToolCallID,
					Name:       msg.Name,
					Content:    msg.Content,
				}},
			})
		default:
			content := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if msg.Content != "" {
				content.Parts = append(content.Parts, llms.TextContent{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				content.Parts = append(content.Parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			result = append(result, content)
		}
	}
	return result
}

func convertTools(tools []entity.ToolDefinition) []llms.Tool {
	result := make([]llms.Tool, 0, len(tools))
	for _, t := range tools {
		result = append(result, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return result
}
