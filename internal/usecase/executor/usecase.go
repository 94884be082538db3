package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"browser-runner/internal/application/port/output"
	"browser-runner/internal/domain/entity"
)

var _ output.Agent = (*UseCase)(nil)

const (
	defaultMaxSteps          = 50
	defaultMaxFailures       = 3
	defaultMaxObservationLen = 20000
)

// Validator judges a finished run.
type Validator interface {
	Evaluate(ctx context.Context, criteria entity.EvaluationCriteria) (*entity.EvaluationResult, error)
}

type Options struct {
	MaxSteps          int
	MaxFailures       int
	MaxObservationLen int
	Temperature       float32
	SystemPrompt      string
	// Validator is optional. When set, the final answer is checked
	// against the task before Run returns.
	Validator Validator
}

// UseCase is a tool-calling agent bound to one task. Each step asks the
// model for the next action, runs the requested tools and feeds their
// output back, until the model calls done or answers without tools.
type UseCase struct {
	task     string
	llm      output.LLMPort
	tools    output.ToolRegistry
	logger   output.LoggerPort
	reporter output.ProgressReporter
	opts     Options
}

func New(
	task string,
	llm output.LLMPort,
	tools output.ToolRegistry,
	logger output.LoggerPort,
	reporter output.ProgressReporter,
	opts Options,
) *UseCase {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = defaultMaxSteps
	}
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = defaultMaxFailures
	}
	if opts.MaxObservationLen <= 0 {
		opts.MaxObservationLen = defaultMaxObservationLen
	}
	return &UseCase{
		task:     task,
		llm:      llm,
		tools:    tools,
		logger:   logger,
		reporter: reporter,
		opts:     opts,
	}
}

func (uc *UseCase) Task() string { return uc.task }

func (uc *UseCase) Run(ctx context.Context) (*entity.AgentResult, error) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: uc.opts.SystemPrompt},
		{Role: entity.RoleUser, Content: uc.task},
	}

	toolDefs := uc.tools.Definitions()
	failures := 0

	for step := 1; step <= uc.opts.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return &entity.AgentResult{Steps: step - 1}, err
		}

		uc.reporter.ShowStep(ctx, step, uc.opts.MaxSteps)
		uc.logger.Debug("Starting step", "step", step)

		resp, err := uc.llm.Chat(ctx, output.ChatRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Temperature: uc.opts.Temperature,
		})
		if err != nil {
			return &entity.AgentResult{Steps: step}, fmt.Errorf("llm request failed: %w", err)
		}

		messages = append(messages, resp.Message)
		uc.reporter.ShowThinking(ctx, resp.Message.Content)
		uc.logger.Debug("Model replied", "step", step, "finish_reason", resp.FinishReason, "tool_calls", len(resp.Message.ToolCalls))

		if !resp.Message.HasToolCalls() {
			uc.logger.Info("Model answered without tool calls", "step", step)
			return uc.finish(ctx, &entity.AgentResult{
				FinalAnswer: resp.Message.Content,
				Success:     true,
				Steps:       step,
			}), nil
		}

		var images []entity.Screenshot
		for _, tc := range resp.Message.ToolCalls {
			if tc.Name == entity.ToolDone {
				done, err := uc.parseDone(ctx, tc)
				if err == nil {
					return uc.finish(ctx, &entity.AgentResult{
						FinalAnswer: done.Text,
						Success:     done.Success,
						Steps:       step,
					}), nil
				}
				messages = append(messages, entity.ToolResult(tc, "Error: "+err.Error()))
				failures++
				continue
			}

			observation, image, err := uc.executeTool(ctx, tc)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return &entity.AgentResult{Steps: step}, ctxErr
				}
				failures++
				observation = "Error: " + err.Error()
			} else {
				failures = 0
			}
			if image != nil {
				images = append(images, *image)
			}
			messages = append(messages, entity.ToolResult(tc, observation))
		}
		// Tool results must directly follow the calls, so images go last.
		if len(images) > 0 {
			messages = append(messages, entity.ImageMessage("Screenshot of the current page:", images...))
		}

		if failures >= uc.opts.MaxFailures {
			uc.logger.Error("Aborting after consecutive tool failures", "failures", failures)
			return &entity.AgentResult{Steps: step}, fmt.Errorf("%w: %d", entity.ErrTooManyFailures, failures)
		}
	}

	return &entity.AgentResult{Steps: uc.opts.MaxSteps},
		fmt.Errorf("%w: %d", entity.ErrMaxStepsExceeded, uc.opts.MaxSteps)
}

func (uc *UseCase) parseDone(ctx context.Context, tc entity.ToolCall) (entity.DoneArgs, error) {
	uc.reporter.ShowToolStart(ctx, tc.Name, tc.Arguments)

	var done entity.DoneArgs
	if err := json.Unmarshal([]byte(tc.Arguments), &done); err != nil {
		err = fmt.Errorf("invalid arguments: %w", err)
		uc.reporter.ShowToolResult(ctx, tc.Name, err.Error(), true)
		return done, err
	}

	uc.reporter.ShowToolResult(ctx, tc.Name, done.Text, false)
	uc.logger.Info("Agent finished", "success", done.Success)
	return done, nil
}

func (uc *UseCase) executeTool(ctx context.Context, tc entity.ToolCall) (string, *entity.Screenshot, error) {
	uc.reporter.ShowToolStart(ctx, tc.Name, tc.Arguments)

	tool, ok := uc.tools.Get(tc.Name)
	if !ok {
		uc.logger.Warn("Unknown tool called", "name", tc.Name)
		err := fmt.Errorf("unknown tool '%s'", tc.Name)
		uc.reporter.ShowToolResult(ctx, tc.Name, err.Error(), true)
		return "", nil, err
	}

	uc.logger.Info("Executing tool", "name", tc.Name, "args", tc.Arguments)

	var (
		result string
		image  *entity.Screenshot
		err    error
	)
	if it, ok := tool.(output.ImageToolPort); ok {
		result, image, err = it.ExecuteImage(ctx, tc.Arguments)
	} else {
		result, err = tool.Execute(ctx, tc.Arguments)
	}
	if err != nil {
		uc.logger.Error("Tool execution failed", "name", tc.Name, "error", err)
		uc.reporter.ShowToolResult(ctx, tc.Name, err.Error(), true)
		return "", nil, err
	}

	result = truncate(result, uc.opts.MaxObservationLen)

	uc.reporter.ShowToolResult(ctx, tc.Name, result, false)
	uc.logger.Debug("Tool completed", "name", tc.Name, "resultLen", len(result), "image", image != nil)
	return result, image, nil
}

// truncate cuts s to at most n bytes, backing up to a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "\n... (truncated)"
}

// finish runs the optional validation. A validator error is logged and
// leaves the result as the agent reported it.
func (uc *UseCase) finish(ctx context.Context, result *entity.AgentResult) *entity.AgentResult {
	if uc.opts.Validator == nil {
		return result
	}

	eval, err := uc.opts.Validator.Evaluate(ctx, entity.EvaluationCriteria{
		TaskDescription: uc.task,
		ActualResult:    result.FinalAnswer,
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			uc.logger.Warn("Validation failed", "error", err)
		}
		return result
	}

	result.Evaluation = eval
	result.Success = result.Success && eval.Success
	return result
}
