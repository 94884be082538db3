package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"browser-runner/internal/application/port/input"
	"browser-runner/internal/application/port/output"
	"browser-runner/internal/config"
	"browser-runner/internal/domain/entity"
)

var _ input.Runner = (*RunTaskUseCase)(nil)

type (
	ConfigLoader   func() (config.Config, error)
	BrowserFactory func(ctx context.Context, cfg entity.BrowserConfig) (output.BrowserPort, error)
	LLMFactory     func(cfg config.LLMConfig) (output.LLMPort, error)
	AgentFactory   func(cfg config.Config, spec output.AgentSpec) (output.Agent, error)
)

type RunnerDeps struct {
	LoadConfig  ConfigLoader
	OpenBrowser BrowserFactory
	NewLLM      LLMFactory
	NewAgent    AgentFactory
	Logger      output.LoggerPort
}

// RunTaskUseCase performs one agent run: it loads the configuration, opens
// a browser, builds the model client and the agent, runs the agent and
// closes the browser. Once the browser is open it is closed exactly once,
// whatever happens afterwards, including a panic in the agent.
type RunTaskUseCase struct {
	deps RunnerDeps
}

func NewRunTaskUseCase(deps RunnerDeps) *RunTaskUseCase {
	return &RunTaskUseCase{deps: deps}
}

func (uc *RunTaskUseCase) Run(ctx context.Context) (result *entity.RunResult, err error) {
	start := time.Now()
	log := uc.deps.Logger

	cfg, err := uc.deps.LoadConfig()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		if !errors.Is(err, entity.ErrConfig) {
			err = fmt.Errorf("%w: %w", entity.ErrConfig, err)
		}
		return nil, err
	}
	log.Info("Configuration loaded",
		"driver", cfg.Browser.Driver,
		"browser", cfg.Browser.ExecutablePath,
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
	)

	result = &entity.RunResult{Task: cfg.Task, Status: entity.TaskStatusFailed}
	defer func() {
		result.Duration = time.Since(start)
	}()

	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	browser, err := uc.deps.OpenBrowser(ctx, cfg.BrowserConfig())
	if err != nil {
		return result, fmt.Errorf("%w: %w", entity.ErrBrowserLaunch, err)
	}
	log.Info("Browser started")

	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			log.Error("Failed to close browser", "error", closeErr)
			err = multierr.Append(err, fmt.Errorf("%w: %w", entity.ErrBrowserClose, closeErr))
			result.Status = entity.TaskStatusFailed
			return
		}
		log.Info("Browser closed")
	}()

	llm, err := uc.deps.NewLLM(cfg.LLM)
	if err != nil {
		return result, fmt.Errorf("%w: %w", entity.ErrModelInit, err)
	}

	agent, err := uc.deps.NewAgent(cfg, output.AgentSpec{
		Task:    cfg.Task,
		LLM:     llm,
		Browser: browser,
	})
	if err != nil {
		return result, fmt.Errorf("%w: %w", entity.ErrAgentInit, err)
	}

	log.Info("Running agent", "task", cfg.Task)
	agentResult, err := agent.Run(ctx)
	result.Agent = agentResult
	if err != nil {
		log.Error("Agent run failed", "error", err)
		return result, fmt.Errorf("%w: %w", entity.ErrAgentRun, err)
	}

	if agentResult != nil && agentResult.Success {
		result.Status = entity.TaskStatusCompleted
	}
	log.Info("Agent finished", "status", result.Status, "steps", stepsOf(agentResult))

	return result, nil
}

func stepsOf(r *entity.AgentResult) int {
	if r == nil {
		return 0
	}
	return r.Steps
}
