package evaluator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"browser-runner/internal/application/port/output"
	"browser-runner/internal/domain/entity"
	"browser-runner/internal/infrastructure/logger"
)

type fakeLLM struct {
	reply string
	err   error
	got   output.ChatRequest
}

func (f *fakeLLM) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &output.ChatResponse{Message: entity.Message{Role: entity.RoleAssistant, Content: f.reply}}, nil
}

func TestParseEvaluationResponse_ValidJSON(t *testing.T) {
	result, err := parseEvaluationResponse(`{
  "success": true,
  "confidence": 0.9,
  "issues": ["minor issue"],
  "feedback": "good job",
  "should_retry": false
}`)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Equal(t, []string{"minor issue"}, result.Issues)
	assert.Equal(t, "good job", result.Feedback)
	assert.False(t, result.ShouldRetry)
}

func TestParseEvaluationResponse_WithTextAround(t *testing.T) {
	result, err := parseEvaluationResponse(`Here's my evaluation:

{
  "success": false,
  "confidence": 0.3,
  "issues": ["cart is empty", "no confirmation"],
  "feedback": "Add the drink to the cart first",
  "should_retry": true
}

Hope this helps!`)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 0.3, result.Confidence)
	assert.Len(t, result.Issues, 2)
	assert.True(t, result.ShouldRetry)
}

func TestParseEvaluationResponse_Invalid(t *testing.T) {
	for _, in := range []string{"no json here", "} backwards {", `{"success": tru}`} {
		_, err := parseEvaluationResponse(in)
		assert.Error(t, err, in)
	}
}

func TestParseEvaluationResponse_ClampsConfidence(t *testing.T) {
	result, err := parseEvaluationResponse(`{"success":true,"confidence":7}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestEvaluate(t *testing.T) {
	llm := &fakeLLM{reply: `{"success":true,"confidence":0.8,"issues":[]}`}
	e := New(llm, logger.NewNop())

	result, err := e.Evaluate(context.Background(), entity.EvaluationCriteria{
		TaskDescription: "Buy the drink",
		ActualResult:    "Order #42 placed",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0.8, result.Confidence)

	require.Len(t, llm.got.Messages, 2)
	assert.Contains(t, llm.got.Messages[1].Content, "Task: Buy the drink")
	assert.Contains(t, llm.got.Messages[1].Content, "Order #42 placed")
	assert.Empty(t, llm.got.Tools)
}

func TestEvaluate_UnparsableDefaultsToSuccess(t *testing.T) {
	result, err := New(&fakeLLM{reply: "looks fine to me"}, logger.NewNop()).
		Evaluate(context.Background(), entity.EvaluationCriteria{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0.5, result.Confidence)
}

func TestEvaluate_LLMError(t *testing.T) {
	boom := errors.New("down")
	_, err := New(&fakeLLM{err: boom}, logger.NewNop()).Evaluate(context.Background(), entity.EvaluationCriteria{})
	assert.ErrorIs(t, err, boom)
}
