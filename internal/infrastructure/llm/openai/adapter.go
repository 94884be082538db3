package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"browser-runner/internal/application/port/output"
	"browser-runner/internal/domain/entity"
)

var _ output.LLMPort = (*Adapter)(nil)

type Adapter struct {
	client *goopenai.Client
	model  string
	logger output.LoggerPort
}

type Config struct {
	APIKey string
	Model  string
	// BaseURL points the client at an OpenAI compatible endpoint such as
	// OpenRouter. Empty keeps the OpenAI default.
	BaseURL string
	// Logger, when set, receives every HTTP request and response status.
	Logger     output.LoggerPort
	HTTPClient *http.Client
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey: apiKey,
		Model:  model,
	}
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var bodyBytes []byte
	if req.Body != nil {
		bodyBytes, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}

	var requestData map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &requestData)
	}

	t.logger.Debug("HTTP Request",
		"method", req.Method,
		"url", req.URL.String(),
		"body", requestData,
	)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Warn("HTTP Request failed", "error", err)
		return nil, err
	}

	t.logger.Debug("HTTP Response",
		"status", resp.Status,
		"statusCode", resp.StatusCode,
	)
	return resp, nil
}

// LoggingHTTPClient wraps base so that every request and response status is
// logged at debug level. A nil base uses http.DefaultTransport.
func LoggingHTTPClient(base *http.Client, logger output.LoggerPort) *http.Client {
	transport := http.DefaultTransport
	if base != nil && base.Transport != nil {
		transport = base.Transport
	}
	return &http.Client{
		Transport: &loggingTransport{base: transport, logger: logger},
	}
}

func NewAdapter(cfg Config) *Adapter {
	config := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	httpClient := cfg.HTTPClient
	if cfg.Logger != nil {
		httpClient = LoggingHTTPClient(httpClient, cfg.Logger)
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}

	return &Adapter{
		client: goopenai.NewClientWithConfig(config),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	request := goopenai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    convertMessages(req.Messages),
		Temperature: req.Temperature,
	}
	if len(req.Tools) > 0 {
		request.Tools = convertTools(req.Tools)
		request.ToolChoice = "auto"
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, entity.ErrNoChoices
	}

	return &output.ChatResponse{
		Message:      convertResponseMessage(resp.Choices[0].Message),
		FinishReason: string(resp.Choices[0].FinishReason),
	}, nil
}

func convertMessages(messages []entity.Message) []goopenai.ChatCompletionMessage {
	result := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		oaiMsg := goopenai.ChatCompletionMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			Name:       msg.Name,
		}
		if len(msg.Images) > 0 {
			// Content and MultiContent are mutually exclusive.
			oaiMsg.Content = ""
			oaiMsg.MultiContent = imageParts(msg)
		}

		for _, tc := range msg.ToolCalls {
			oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, goopenai.ToolCall{
				ID:   tc.ID,
				Type: goopenai.ToolTypeFunction,
				Function: goopenai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}

		result = append(result, oaiMsg)
	}
	return result
}

func imageParts(msg entity.Message) []goopenai.ChatMessagePart {
	parts := make([]goopenai.ChatMessagePart, 0, len(msg.Images)+1)
	if msg.Content != "" {
		parts = append(parts, goopenai.ChatMessagePart{Type: goopenai.ChatMessagePartTypeText, Text: msg.Content})
	}
	for _, img := range msg.Images {
		parts = append(parts, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL:    img.DataURL(),
				Detail: goopenai.ImageURLDetailAuto,
			},
		})
	}
	return parts
}

func convertTools(tools []entity.ToolDefinition) []goopenai.Tool {
	result := make([]goopenai.Tool, 0, len(tools))
	for _, t := range tools {
		result = append(result, goopenai.Tool{
			Type: goopenai.ToolTypeFunction,
			Function: &goopenai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return result
}

func convertResponseMessage(msg goopenai.ChatCompletionMessage) entity.Message {
	result := entity.Message{
		Role:    entity.MessageRole(msg.Role),
		Content: msg.Content,
	}
	if result.Role == "" {
		result.Role = entity.RoleAssistant
	}

	for _, tc := range msg.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, entity.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return result
}
