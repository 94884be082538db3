package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"browser-runner/internal/application/port/output"
	"browser-runner/internal/domain/entity"
)

var (
	_ output.ProgressReporter = (*Console)(nil)
	_ output.ProgressReporter = Nop{}
)

// Console prints the agent loop to a terminal.
type Console struct {
	out io.Writer
}

func NewConsole() *Console {
	return &Console{out: color.Output}
}

func NewConsoleWriter(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{out: w}
}

func (c *Console) ShowStep(ctx context.Context, step, maxSteps int) {
	color.New(color.FgCyan, color.Bold).Fprintf(c.out, "\n━━━ Step %d/%d ━━━\n", step, maxSteps)
}

func (c *Console) ShowThinking(ctx context.Context, content string) {
	if content == "" {
		return
	}
	color.New(color.FgBlue).Fprint(c.out, "\n💭 Thinking: ")
	color.New(color.Faint).Fprintln(c.out, truncate(content, 500))
}

func (c *Console) ShowToolStart(ctx context.Context, toolName, arguments string) {
	icon, name := toolDisplay(toolName)
	color.New(color.FgYellow, color.Bold).Fprintf(c.out, "\n%s %s\n", icon, name)

	if summary := formatToolArguments(toolName, arguments); summary != "" {
		color.New(color.Faint).Fprintf(c.out, "   %s\n", summary)
	}
}

func (c *Console) ShowToolResult(ctx context.Context, toolName, result string, isError bool) {
	if isError {
		color.New(color.FgRed).Fprint(c.out, "❌ Error: ")
		color.New(color.Faint).Fprintln(c.out, truncate(result, 300))
		return
	}
	color.New(color.FgGreen).Fprintf(c.out, "✓ %s\n", formatToolResult(toolName, result))
}

// Nop discards progress.
type Nop struct{}

func (Nop) ShowStep(context.Context, int, int)                   {}
func (Nop) ShowThinking(context.Context, string)                 {}
func (Nop) ShowToolStart(context.Context, string, string)        {}
func (Nop) ShowToolResult(context.Context, string, string, bool) {}

func toolDisplay(toolName string) (string, string) {
	displays := map[string][2]string{
		entity.ToolNavigate:    {"🌐", "Navigate"},
		entity.ToolClick:       {"🖱️", "Click"},
		entity.ToolFill:        {"✏️", "Fill"},
		entity.ToolPressEnter:  {"⏎", "Enter"},
		entity.ToolScroll:      {"📜", "Scroll"},
		entity.ToolExtractText: {"📄", "Read page"},
		entity.ToolUISummary:   {"👁️", "UI summary"},
		entity.ToolScreenshot:  {"📸", "Screenshot"},
		entity.ToolDone:        {"🏁", "Done"},
	}
	if display, ok := displays[toolName]; ok {
		return display[0], display[1]
	}
	return "🔧", toolName
}

func formatToolArguments(toolName, arguments string) string {
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ""
	}

	switch toolName {
	case entity.ToolNavigate:
		if url, ok := args["url"].(string); ok {
			return fmt.Sprintf("URL: %s", url)
		}
	case entity.ToolClick:
		if selector, ok := args["selector"].(string); ok {
			return fmt.Sprintf("Selector: %s", truncate(selector, 60))
		}
	case entity.ToolFill:
		selector, _ := args["selector"].(string)
		text, _ := args["text"].(string)
		if selector != "" {
			return fmt.Sprintf("Field: %s → %s", truncate(selector, 40), truncate(text, 30))
		}
	case entity.ToolScroll:
		if direction, ok := args["direction"].(string); ok {
			return direction
		}
	case entity.ToolDone:
		if text, ok := args["text"].(string); ok {
			return truncate(text, 80)
		}
	}
	return ""
}

func formatToolResult(toolName, result string) string {
	switch toolName {
	case entity.ToolScreenshot:
		return "Screenshot taken"
	case entity.ToolExtractText, entity.ToolUISummary:
		if first, _, found := strings.Cut(result, "\n"); found {
			return fmt.Sprintf("%s (%d chars)", truncate(first, 80), len(result))
		}
	}
	return truncate(result, 100)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen] + "..."
}
