package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"browser-runner/internal/application/port/output"
	"browser-runner/internal/domain/entity"
)

const evaluationPrompt = `You are an Evaluator. Your job is to assess if a browser agent successfully completed its task.

Analyze the task description and the actual result, then provide evaluation in JSON format.

Response format (MUST be valid JSON):
{
  "success": true/false,
  "confidence": 0.0-1.0,
  "issues": ["issue1", "issue2"],
  "feedback": "specific feedback for improvement",
  "should_retry": true/false
}

Evaluation criteria:
- Was the requested task completed, not just started?
- Does the result contain concrete evidence (page reached, item found, order or confirmation shown)?
- Are there any obvious errors, blocked pages or missing steps?

IMPORTANT:
- Be strict but fair
- Confidence should reflect certainty (1.0 = definitely successful, 0.0 = definitely failed)
- Only suggest retry if improvement is likely with feedback
- Provide specific, actionable feedback`

type Evaluator struct {
	llm    output.LLMPort
	logger output.LoggerPort
}

func New(llm output.LLMPort, logger output.LoggerPort) *Evaluator {
	return &Evaluator{
		llm:    llm,
		logger: logger,
	}
}

// Evaluate asks the model for a verdict on criteria. A reply that carries
// no parsable verdict is treated as success with 0.5 confidence.
func (e *Evaluator) Evaluate(ctx context.Context, criteria entity.EvaluationCriteria) (*entity.EvaluationResult, error) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: evaluationPrompt},
		{Role: entity.RoleUser, Content: fmt.Sprintf("Task: %s\n\nActual Result:\n%s", criteria.TaskDescription, criteria.ActualResult)},
	}

	resp, err := e.llm.Chat(ctx, output.ChatRequest{
		Messages:    messages,
		Temperature: 0.0,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluation llm request failed: %w", err)
	}

	result, err := parseEvaluationResponse(resp.Message.Content)
	if err != nil {
		e.logger.Warn("Failed to parse evaluation response, assuming success", "error", err)
		return &entity.EvaluationResult{
			Success:    true,
			Confidence: 0.5,
			Issues:     []string{},
		}, nil
	}

	e.logger.Info("Evaluation completed",
		"success", result.Success,
		"confidence", result.Confidence,
		"should_retry", result.ShouldRetry,
		"issues_count", len(result.Issues),
	)

	return result, nil
}

func parseEvaluationResponse(response string) (*entity.EvaluationResult, error) {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end < start {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var result entity.EvaluationResult
	if err := json.Unmarshal([]byte(response[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	} else if result.Confidence > 1 {
		result.Confidence = 1
	}

	return &result, nil
}
