// Package llm picks the language model provider named in the configuration.
package llm

import (
	"fmt"

	"browser-runner/internal/application/port/output"
	"browser-runner/internal/config"
	"browser-runner/internal/infrastructure/llm/langchain"
	"browser-runner/internal/infrastructure/llm/openai"
)

// New builds the model client for cfg.Provider. When cfg.LogHTTP is set,
// HTTP traffic is logged through logger.
func New(cfg config.LLMConfig, logger output.LoggerPort) (output.LLMPort, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		oc := openai.DefaultConfig(cfg.APIKey, cfg.Model)
		oc.BaseURL = cfg.BaseURL
		if cfg.LogHTTP {
			oc.Logger = logger
		}
		return openai.NewAdapter(oc), nil

	case config.ProviderLangchain:
		lc := langchain.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		}
		if cfg.LogHTTP {
			lc.HTTPClient = openai.LoggingHTTPClient(nil, logger)
		}
		adapter, err := langchain.NewOpenAI(lc)
		if err != nil {
			return nil, err
		}
		return adapter, nil

	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
