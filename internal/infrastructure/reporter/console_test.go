package reporter

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestConsole_PrintsProgress(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)
	ctx := context.Background()

	c.ShowStep(ctx, 2, 50)
	c.ShowThinking(ctx, "Looking for the shop")
	c.ShowToolStart(ctx, "navigate", `{"url":"https://shop.example"}`)
	c.ShowToolResult(ctx, "navigate", "Navigated to https://shop.example", false)
	c.ShowToolResult(ctx, "click", "element not found", true)

	out := buf.String()
	assert.Contains(t, out, "Step 2/50")
	assert.Contains(t, out, "Thinking: Looking for the shop")
	assert.Contains(t, out, "Navigate")
	assert.Contains(t, out, "URL: https://shop.example")
	assert.Contains(t, out, "✓ Navigated to https://shop.example")
	assert.Contains(t, out, "Error: element not found")
}

func TestConsole_SkipsEmptyThinking(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleWriter(&buf).ShowThinking(context.Background(), "")
	assert.Empty(t, buf.String())
}

func TestFormatToolArguments(t *testing.T) {
	assert.Equal(t, "Field: #q → blueprint", formatToolArguments("fill", `{"selector":"#q","text":"blueprint"}`))
	assert.Equal(t, "down", formatToolArguments("scroll", `{"direction":"down"}`))
	assert.Empty(t, formatToolArguments("click", `oops`))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcd", 2))
	assert.Equal(t, "Gr...", truncate("Größe", 3))
	assert.Equal(t, "П...", truncate("Привет", 3))
}
