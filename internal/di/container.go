package di

import (
	"fmt"

	"browser-runner/internal/adapter/tool"
	"browser-runner/internal/application/port/input"
	"browser-runner/internal/application/port/output"
	"browser-runner/internal/application/service"
	"browser-runner/internal/application/usecase"
	"browser-runner/internal/config"
	"browser-runner/internal/domain/entity"
	"browser-runner/internal/infrastructure/browser"
	"browser-runner/internal/infrastructure/env"
	"browser-runner/internal/infrastructure/llm"
	"browser-runner/internal/infrastructure/logger"
	"browser-runner/internal/infrastructure/prompts"
	"browser-runner/internal/infrastructure/reporter"
	"browser-runner/internal/usecase/evaluator"
	"browser-runner/internal/usecase/executor"
)

type Container struct {
	Config config.Config
	Logger output.LoggerPort
	Runner input.Runner

	reporter    output.ProgressReporter
	openBrowser usecase.BrowserFactory
}

type Options struct {
	ConfigFile string
	// EnvFiles are dotenv files; empty means .env and .env.<APP_ENV>.
	EnvFiles []string
	// Lookup replaces os.LookupEnv.
	Lookup func(string) (string, bool)
	// Override is applied last, after file and environment values.
	Override func(*config.Config)
	Reporter output.ProgressReporter
	Logger   output.LoggerPort
	// OpenBrowser replaces the driver factory, mostly for tests.
	OpenBrowser usecase.BrowserFactory
}

// NewConfigLoader returns a loader that reads the same sources on every
// call and never writes to the process environment.
func NewConfigLoader(opts Options) usecase.ConfigLoader {
	return func() (config.Config, error) {
		src, err := env.Load(env.Options{Files: opts.EnvFiles, Lookup: opts.Lookup})
		if err != nil {
			return config.Config{}, err
		}
		cfg, err := config.Load(config.LoadOptions{ConfigFile: opts.ConfigFile, Env: src})
		if err != nil {
			return config.Config{}, err
		}
		if opts.Override != nil {
			opts.Override(&cfg)
			cfg.Normalize()
		}
		return cfg, nil
	}
}

// NewContainer wires the runner. The configuration is read once here to
// set up logging and read again by the runner itself; both reads see the
// same values.
func NewContainer(opts Options) (*Container, error) {
	loadConfig := NewConfigLoader(opts)

	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrConfig, err)
	}

	log := opts.Logger
	if log == nil {
		log, err = logger.NewLoggerAdapter(logger.Config{
			Dir:      cfg.Log.Dir,
			Level:    cfg.Log.Level,
			Console:  cfg.Log.Console,
			TaskName: cfg.Task,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	c := &Container{
		Config:      cfg,
		Logger:      log,
		reporter:    opts.Reporter,
		openBrowser: opts.OpenBrowser,
	}
	if c.reporter == nil {
		c.reporter = reporter.NewConsole()
	}
	if c.openBrowser == nil {
		c.openBrowser = browser.Open
	}

	c.Runner = usecase.NewRunTaskUseCase(usecase.RunnerDeps{
		LoadConfig:  loadConfig,
		OpenBrowser: c.openBrowser,
		NewLLM:      c.newLLM,
		NewAgent:    c.newAgent,
		Logger:      log,
	})

	return c, nil
}

func (c *Container) Close() error {
	if c.Logger != nil {
		return c.Logger.Close()
	}
	return nil
}

func (c *Container) newLLM(cfg config.LLMConfig) (output.LLMPort, error) {
	return llm.New(cfg, c.Logger.Named("llm"))
}

func (c *Container) newAgent(cfg config.Config, spec output.AgentSpec) (output.Agent, error) {
	agentLog := c.Logger.Named("agent")

	tools := service.NewToolRegistry(tool.NewBrowserTools(spec.Browser, agentLog, tool.Options{
		AllowedDomains: cfg.Agent.AllowedDomains,
		UseVision:      cfg.Agent.UseVision,
		MaxTextLen:     cfg.Agent.MaxObservationLen,
	})...)

	base := cfg.Agent.SystemPrompt
	if base == "" {
		base = prompts.DefaultSystemPrompt
	}
	systemPrompt, err := prompts.GenerateSystemPrompt(base, tools.Definitions(), cfg.Agent.AllowedDomains, cfg.Agent.UseVision)
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}

	opts := executor.Options{
		MaxSteps:          cfg.Agent.MaxSteps,
		MaxFailures:       cfg.Agent.MaxFailures,
		MaxObservationLen: cfg.Agent.MaxObservationLen,
		Temperature:       cfg.LLM.Temperature,
		SystemPrompt:      systemPrompt,
	}
	if cfg.Agent.Validate {
		opts.Validator = evaluator.New(spec.LLM, c.Logger.Named("evaluator"))
	}

	return executor.New(spec.Task, spec.LLM, tools, agentLog, c.reporter, opts), nil
}
