package di

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"browser-runner/internal/application/port/output"
	"browser-runner/internal/config"
	"browser-runner/internal/domain/entity"
	"browser-runner/internal/infrastructure/logger"
	"browser-runner/internal/infrastructure/reporter"
)

type fakeBrowser struct {
	output.BrowserPort
	url    string
	closes int
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) error {
	b.url = url
	return nil
}

func (b *fakeBrowser) CurrentURL() string { return b.url }

func (b *fakeBrowser) Close() error {
	b.closes++
	return nil
}

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestConfigLoader_Idempotent(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LLM_MODEL=gpt-4o-mini\nAGENT_ALLOWED_DOMAINS=a.com,b.com\n"), 0o600))

	load := NewConfigLoader(Options{
		EnvFiles: []string{envFile},
		Lookup:   lookupFrom(map[string]string{"OPENAI_API_KEY": "sk-test"}),
		Override: func(c *config.Config) { c.Browser.Headless = true },
	})

	first, err := load()
	require.NoError(t, err)
	second, err := load()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "gpt-4o-mini", first.LLM.Model)
	assert.Equal(t, []string{"a.com", "b.com"}, first.Agent.AllowedDomains)
	assert.True(t, first.Browser.Headless)

	_, set := os.LookupEnv("LLM_MODEL")
	assert.False(t, set)
}

func TestContainer_RunsAgainstFakeModel(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req goopenai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		msg := goopenai.ChatCompletionMessage{Role: "assistant"}
		switch calls.Add(1) {
		case 1:
			assert.Equal(t, "Go and buy the longjevity drink from brian johnson.", req.Messages[1].Content)
			msg.ToolCalls = []goopenai.ToolCall{{
				ID: "c1", Type: goopenai.ToolTypeFunction,
				Function: goopenai.FunctionCall{Name: "navigate", Arguments: `{"url":"https://shop.example"}`},
			}}
		default:
			msg.ToolCalls = []goopenai.ToolCall{{
				ID: "c2", Type: goopenai.ToolTypeFunction,
				Function: goopenai.FunctionCall{Name: "done", Arguments: `{"text":"In the cart","success":true}`},
			}}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(goopenai.ChatCompletionResponse{
			Choices: []goopenai.ChatCompletionChoice{{Message: msg}},
		})
	}))
	defer server.Close()

	fb := &fakeBrowser{}
	var gotCfg entity.BrowserConfig
	c, err := NewContainer(Options{
		EnvFiles: []string{filepath.Join(t.TempDir(), "missing.env")},
		Lookup: lookupFrom(map[string]string{
			"OPENAI_API_KEY":  "sk-test",
			"OPENAI_BASE_URL": server.URL,
			"BROWSER_PATH":    "/opt/chrome/chrome",
		}),
		Reporter: reporter.Nop{},
		Logger:   logger.NewNop(),
		OpenBrowser: func(ctx context.Context, cfg entity.BrowserConfig) (output.BrowserPort, error) {
			gotCfg = cfg
			return fb, nil
		},
	})
	require.NoError(t, err)
	defer c.Close()

	res, err := c.Runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.TaskStatusCompleted, res.Status)
	assert.Equal(t, "In the cart", res.Agent.FinalAnswer)
	assert.Equal(t, "https://shop.example", fb.url)
	assert.Equal(t, 1, fb.closes)
	assert.Equal(t, "/opt/chrome/chrome", gotCfg.ExecutablePath)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewContainer_WritesLogFile(t *testing.T) {
	dir := t.TempDir()
	c, err := NewContainer(Options{
		EnvFiles: []string{filepath.Join(dir, "missing.env")},
		Lookup:   lookupFrom(map[string]string{"LOG_DIR": dir}),
		Reporter: reporter.Nop{},
	})
	require.NoError(t, err)

	c.Logger.Info("hello")
	require.NoError(t, c.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
