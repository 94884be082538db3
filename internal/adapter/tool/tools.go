package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"browser-runner/internal/application/port/output"
	"browser-runner/internal/domain/entity"
	"browser-runner/internal/infrastructure/browser/dom"
)

// Options control which tools are built and how they behave.
type Options struct {
	AllowedDomains []string
	UseVision      bool
	MaxTextLen     int
}

// NewBrowserTools returns the tool set an agent drives the browser with.
func NewBrowserTools(browser output.BrowserPort, logger output.LoggerPort, opts Options) []output.ToolPort {
	tools := []output.ToolPort{
		NewNavigateTool(browser, logger, opts.AllowedDomains),
		NewClickTool(browser, logger),
		NewFillTool(browser, logger),
		NewPressEnterTool(browser, logger),
		NewScrollTool(browser, logger),
		NewExtractTextTool(browser, logger, opts.MaxTextLen),
		NewUISummaryTool(browser, logger),
		NewDoneTool(),
	}
	if opts.UseVision {
		tools = append(tools, NewScreenshotTool(browser, logger))
	}
	return tools
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func decodeArgs(args string, v any) error {
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}
	if err := json.Unmarshal([]byte(args), v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

type NavigateTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
	allowed []string
}

func NewNavigateTool(browser output.BrowserPort, logger output.LoggerPort, allowedDomains []string) *NavigateTool {
	return &NavigateTool{browser: browser, logger: logger, allowed: allowedDomains}
}

func (t *NavigateTool) Name() entity.ToolName { return entity.ToolNavigate }
func (t *NavigateTool) Description() string   { return "Navigates browser to URL" }
func (t *NavigateTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"url": stringProp("URL to navigate to"),
	}, "url")
}

func (t *NavigateTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}

	target, err := NormalizeURL(input.URL)
	if err != nil {
		return "", err
	}
	if !DomainAllowed(target, t.allowed) {
		t.logger.Warn("Navigation blocked", "url", target)
		return "", fmt.Errorf("%w: %s", entity.ErrDomainNotAllowed, target)
	}

	if err := t.browser.Navigate(ctx, target); err != nil {
		return "", err
	}
	return fmt.Sprintf("Navigated to %s", t.browser.CurrentURL()), nil
}

// NormalizeURL adds an https scheme to bare hosts and rejects empty input.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("url is empty")
	}
	if !strings.Contains(raw, "://") && !strings.HasPrefix(raw, "about:") {
		raw = "https://" + raw
	}
	if _, err := url.Parse(raw); err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	return raw, nil
}

// DomainAllowed reports whether target's host is one of allowed or a
// subdomain of one. Entries may be written as "*.example.com". An empty
// list allows everything.
func DomainAllowed(target string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if u.Scheme == "about" {
		return true
	}

	host := strings.ToLower(u.Hostname())
	for _, domain := range allowed {
		domain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "*."))
		if domain == "" {
			continue
		}
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

type ClickTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewClickTool(browser output.BrowserPort, logger output.LoggerPort) *ClickTool {
	return &ClickTool{browser: browser, logger: logger}
}

func (t *ClickTool) Name() entity.ToolName { return entity.ToolClick }
func (t *ClickTool) Description() string   { return "Clicks element by selector" }
func (t *ClickTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"selector": stringProp("CSS or XPath selector"),
	}, "selector")
}

func (t *ClickTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Selector string `json:"selector"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	if err := t.browser.Click(ctx, input.Selector); err != nil {
		return "", err
	}
	return "Click successful", nil
}

type FillTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewFillTool(browser output.BrowserPort, logger output.LoggerPort) *FillTool {
	return &FillTool{browser: browser, logger: logger}
}

func (t *FillTool) Name() entity.ToolName { return entity.ToolFill }
func (t *FillTool) Description() string   { return "Fills input field with text" }
func (t *FillTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"selector": stringProp("CSS or XPath selector for input"),
		"text":     stringProp("Text to input"),
	}, "selector", "text")
}

func (t *FillTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Selector string `json:"selector"`
		Text     string `json:"text"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	if err := t.browser.Fill(ctx, input.Selector, input.Text); err != nil {
		return "", err
	}
	return fmt.Sprintf("Filled '%s' with text", input.Selector), nil
}

type PressEnterTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewPressEnterTool(browser output.BrowserPort, logger output.LoggerPort) *PressEnterTool {
	return &PressEnterTool{browser: browser, logger: logger}
}

func (t *PressEnterTool) Name() entity.ToolName { return entity.ToolPressEnter }
func (t *PressEnterTool) Description() string {
	return "Presses Enter in the focused element, e.g. to submit a search"
}
func (t *PressEnterTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{})
}

func (t *PressEnterTool) Execute(ctx context.Context, _ string) (string, error) {
	if err := t.browser.PressEnter(ctx); err != nil {
		return "", err
	}
	return "Enter pressed", nil
}

type ScrollTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewScrollTool(browser output.BrowserPort, logger output.LoggerPort) *ScrollTool {
	return &ScrollTool{browser: browser, logger: logger}
}

func (t *ScrollTool) Name() entity.ToolName { return entity.ToolScroll }
func (t *ScrollTool) Description() string   { return "Scrolls page in direction" }
func (t *ScrollTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"direction": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"up", "down", "top", "bottom"},
			"description": "Scroll direction",
		},
	}, "direction")
}

func (t *ScrollTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Direction string `json:"direction"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	if err := t.browser.Scroll(ctx, input.Direction); err != nil {
		return "", err
	}
	return fmt.Sprintf("Scrolled %s", input.Direction), nil
}

type ScreenshotTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewScreenshotTool(browser output.BrowserPort, logger output.LoggerPort) *ScreenshotTool {
	return &ScreenshotTool{browser: browser, logger: logger}
}

func (t *ScreenshotTool) Name() entity.ToolName { return entity.ToolScreenshot }
func (t *ScreenshotTool) Description() string   { return "Takes screenshot of page" }
func (t *ScreenshotTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{})
}

var _ output.ImageToolPort = (*ScreenshotTool)(nil)

func (t *ScreenshotTool) Execute(ctx context.Context, args string) (string, error) {
	note, _, err := t.ExecuteImage(ctx, args)
	return note, err
}

// ExecuteImage captures the viewport. The note answers the tool call and
// the screenshot is attached for the model to look at.
func (t *ScreenshotTool) ExecuteImage(ctx context.Context, _ string) (string, *entity.Screenshot, error) {
	shot, err := t.browser.Screenshot(ctx)
	if err != nil {
		return "", nil, err
	}
	t.logger.Debug("Screenshot taken", "width", shot.Width, "height", shot.Height, "bytes", len(shot.Data))
	note := fmt.Sprintf("Screenshot taken (%dx%d %s), attached below.", shot.Width, shot.Height, shot.Format)
	return note, shot, nil
}

type ExtractTextTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
	maxLen  int
}

func NewExtractTextTool(browser output.BrowserPort, logger output.LoggerPort, maxLen int) *ExtractTextTool {
	return &ExtractTextTool{browser: browser, logger: logger, maxLen: maxLen}
}

func (t *ExtractTextTool) Name() entity.ToolName { return entity.ToolExtractText }
func (t *ExtractTextTool) Description() string {
	return "Returns the page URL, title and visible text, or the cleaned HTML when format is html"
}
func (t *ExtractTextTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"format": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"text", "html"},
			"description": "Output format, text by default",
		},
	})
}

func (t *ExtractTextTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Format string `json:"format"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}

	content, err := t.browser.GetPageContent(ctx)
	if err != nil {
		return "", err
	}

	var body string
	switch input.Format {
	case "", "text":
		body = dom.VisibleText(content.HTML, t.maxLen)
	case "html":
		cfg := dom.DefaultCleanConfig
		if t.maxLen > 0 {
			cfg.MaxOutputSize = t.maxLen
		}
		body = dom.CleanHTML(content.HTML, &cfg)
	default:
		return "", fmt.Errorf("unknown format %q", input.Format)
	}
	return fmt.Sprintf("URL: %s\nTitle: %s\n\n%s", content.URL, content.Title, body), nil
}

type UISummaryTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewUISummaryTool(browser output.BrowserPort, logger output.LoggerPort) *UISummaryTool {
	return &UISummaryTool{browser: browser, logger: logger}
}

func (t *UISummaryTool) Name() entity.ToolName { return entity.ToolUISummary }
func (t *UISummaryTool) Description() string {
	return "Returns list of interactive UI elements with selectors"
}
func (t *UISummaryTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{})
}

func (t *UISummaryTool) Execute(ctx context.Context, _ string) (string, error) {
	elements, err := t.browser.GetUIElements(ctx)
	if err != nil {
		return "", err
	}
	if len(elements) == 0 {
		return "No interactive elements found", nil
	}
	data, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type DoneTool struct{}

func NewDoneTool() *DoneTool { return &DoneTool{} }

func (t *DoneTool) Name() entity.ToolName { return entity.ToolDone }
func (t *DoneTool) Description() string {
	return "Finishes the task. Call it once with the final answer and whether the task succeeded"
}
func (t *DoneTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"text":    stringProp("Final answer for the user"),
		"success": map[string]interface{}{"type": "boolean", "description": "Whether the task was completed"},
	}, "text", "success")
}

func (t *DoneTool) Execute(_ context.Context, args string) (string, error) {
	var input entity.DoneArgs
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	return input.Text, nil
}
