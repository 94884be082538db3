package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"browser-runner/internal/config"
	"browser-runner/internal/infrastructure/llm/langchain"
	"browser-runner/internal/infrastructure/llm/openai"
	"browser-runner/internal/infrastructure/logger"
)

func TestNew_Providers(t *testing.T) {
	cfg := config.Default().LLM
	cfg.APIKey = "sk-test"

	client, err := New(cfg, logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &openai.Adapter{}, client)

	cfg.Provider = config.ProviderLangchain
	cfg.LogHTTP = true
	client, err = New(cfg, logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &langchain.Adapter{}, client)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(config.LLMConfig{Provider: "carrier-pigeon"}, logger.NewNop())
	assert.ErrorContains(t, err, "carrier-pigeon")
}
