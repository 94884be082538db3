package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"browser-runner/internal/domain/entity"
	"browser-runner/internal/infrastructure/env"
)

const (
	DefaultTask           = "Go and buy the longjevity drink from brian johnson."
	DefaultExecutablePath = "/usr/bin/google-chrome"
	DefaultModel          = "gpt-4o"

	ProviderOpenAI    = "openai"
	ProviderLangchain = "langchain"
)

type Config struct {
	Task       string        `yaml:"task"`
	RunTimeout time.Duration `yaml:"run_timeout"`
	Browser    BrowserConfig `yaml:"browser"`
	LLM        LLMConfig     `yaml:"llm"`
	Agent      AgentConfig   `yaml:"agent"`
	Log        LogConfig     `yaml:"log"`
}

type BrowserConfig struct {
	Driver         string        `yaml:"driver"`
	ExecutablePath string        `yaml:"executable_path"`
	ExtraArgs      []string      `yaml:"extra_args"`
	Headless       bool          `yaml:"headless"`
	Timeout        time.Duration `yaml:"timeout"`
	SlowMotion     time.Duration `yaml:"slow_motion"`
	UserDataDir    string        `yaml:"user_data_dir"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"-"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float32 `yaml:"temperature"`
	LogHTTP     bool    `yaml:"log_http"`
}

type AgentConfig struct {
	MaxSteps          int      `yaml:"max_steps"`
	MaxFailures       int      `yaml:"max_failures"`
	MaxObservationLen int      `yaml:"max_observation_len"`
	AllowedDomains    []string `yaml:"allowed_domains"`
	UseVision         bool     `yaml:"use_vision"`
	Validate          bool     `yaml:"validate"`
	SystemPrompt      string   `yaml:"system_prompt"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Dir     string `yaml:"dir"`
	Console bool   `yaml:"console"`
}

func Default() Config {
	return Config{
		Task: DefaultTask,
		Browser: BrowserConfig{
			Driver:         string(entity.DriverRod),
			ExecutablePath: DefaultExecutablePath,
			Timeout:        10 * time.Second,
		},
		LLM: LLMConfig{
			Provider: ProviderOpenAI,
			Model:    DefaultModel,
		},
		Agent: AgentConfig{
			MaxSteps:          50,
			MaxFailures:       3,
			MaxObservationLen: 20000,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "log",
		},
	}
}

type LoadOptions struct {
	// ConfigFile is an optional YAML file applied over the defaults.
	ConfigFile string
	Env        *env.Source
}

// Load builds the configuration from defaults, the optional YAML file and
// the environment source, in that order. It has no side effects, so
// calling it twice with the same inputs yields equal values.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		if err := cfg.mergeFile(opts.ConfigFile); err != nil {
			return Config{}, err
		}
	}

	if opts.Env != nil {
		cfg.applyEnv(opts.Env)
	}

	cfg.Normalize()
	return cfg, nil
}

// Normalize fills choices left empty with their defaults: the rod driver
// and the openai provider.
func (c *Config) Normalize() {
	if strings.TrimSpace(c.Browser.Driver) == "" {
		c.Browser.Driver = string(entity.DriverRod)
	}
	if strings.TrimSpace(c.LLM.Provider) == "" {
		c.LLM.Provider = ProviderOpenAI
	}
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(src *env.Source) {
	c.Task = src.GetString("AGENT_TASK", c.Task)
	c.RunTimeout = src.GetDuration("RUN_TIMEOUT", c.RunTimeout)

	c.Browser.Driver = src.GetString("BROWSER_DRIVER", c.Browser.Driver)
	c.Browser.ExecutablePath = src.GetString("BROWSER_PATH", c.Browser.ExecutablePath)
	c.Browser.ExtraArgs = src.GetList("BROWSER_EXTRA_ARGS", c.Browser.ExtraArgs)
	c.Browser.Headless = src.GetBool("BROWSER_HEADLESS", c.Browser.Headless)
	c.Browser.Timeout = src.GetDuration("BROWSER_TIMEOUT", c.Browser.Timeout)
	c.Browser.UserDataDir = src.GetString("BROWSER_USER_DATA_DIR", c.Browser.UserDataDir)

	c.LLM.Provider = src.GetString("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = src.GetString("LLM_MODEL", c.LLM.Model)
	c.LLM.APIKey = src.GetString("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = src.GetString("OPENAI_BASE_URL", c.LLM.BaseURL)
	c.LLM.Temperature = float32(src.GetFloat("LLM_TEMPERATURE", float64(c.LLM.Temperature)))
	c.LLM.LogHTTP = src.GetBool("LLM_LOG_HTTP", c.LLM.LogHTTP)

	c.Agent.MaxSteps = src.GetInt("AGENT_MAX_STEPS", c.Agent.MaxSteps)
	c.Agent.MaxFailures = src.GetInt("AGENT_MAX_FAILURES", c.Agent.MaxFailures)
	c.Agent.AllowedDomains = src.GetList("AGENT_ALLOWED_DOMAINS", c.Agent.AllowedDomains)
	c.Agent.UseVision = src.GetBool("AGENT_USE_VISION", c.Agent.UseVision)
	c.Agent.Validate = src.GetBool("AGENT_VALIDATE", c.Agent.Validate)

	c.Log.Level = src.GetString("LOG_LEVEL", c.Log.Level)
	c.Log.Dir = src.GetString("LOG_DIR", c.Log.Dir)
	c.Log.Console = src.GetBool("LOG_CONSOLE", c.Log.Console)
}

func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Task) == "" {
		errs = append(errs, errors.New("task is empty"))
	}

	switch entity.BrowserDriver(c.Browser.Driver) {
	case entity.DriverRod, entity.DriverChromedp, entity.DriverPlaywright:
	default:
		errs = append(errs, fmt.Errorf("unknown browser driver %q", c.Browser.Driver))
	}

	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderLangchain:
		if c.LLM.APIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}

	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm model is empty"))
	}
	if c.Agent.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("max steps must be positive, got %d", c.Agent.MaxSteps))
	}
	if c.RunTimeout < 0 {
		errs = append(errs, fmt.Errorf("run timeout must not be negative, got %s", c.RunTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", entity.ErrConfig, errors.Join(errs...))
	}
	return nil
}

// BrowserConfig returns the launch description handed to a browser driver.
func (c Config) BrowserConfig() entity.BrowserConfig {
	return entity.BrowserConfig{
		Driver:         entity.BrowserDriver(c.Browser.Driver),
		ExecutablePath: c.Browser.ExecutablePath,
		ExtraArgs:      append([]string(nil), c.Browser.ExtraArgs...),
		Headless:       c.Browser.Headless,
		Timeout:        c.Browser.Timeout,
		SlowMotion:     c.Browser.SlowMotion,
		UserDataDir:    c.Browser.UserDataDir,
	}
}
