package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"browser-runner/internal/application/port/output"
	"browser-runner/internal/domain/entity"
	"browser-runner/internal/infrastructure/browser/capture"
	"browser-runner/internal/infrastructure/browser/chromeflags"
	"browser-runner/internal/infrastructure/browser/dom"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const (
	defaultTimeout    = 10 * time.Second
	navigateIdleWait  = 5 * time.Second
	actionIdleWait    = 2 * time.Second
	scrollIdleWait    = 800 * time.Millisecond
	screenshotQuality = 80
)

type BrowserAdapter struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	closed   bool
}

func NewBrowserAdapter(ctx context.Context, cfg entity.BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	l := newLauncher(cfg).Context(ctx)

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(url).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
	}, nil
}

func newLauncher(cfg entity.BrowserConfig) *launcher.Launcher {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(true).
		Delete("use-mock-keychain")

	if cfg.ExecutablePath != "" {
		l = l.Bin(cfg.ExecutablePath)
	}
	if cfg.UserDataDir != "" {
		l = l.UserDataDir(cfg.UserDataDir)
	}

	for _, f := range chromeflags.Parse(cfg.ExtraArgs) {
		if f.Value == "" {
			l = l.Set(flags.Flag(f.Name))
		} else {
			l = l.Set(flags.Flag(f.Name), f.Value)
		}
	}
	return l
}

func (b *BrowserAdapter) activePage(ctx context.Context) (*rod.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, entity.ErrBrowserClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return b.page.Context(ctx), nil
}

func (b *BrowserAdapter) element(page *rod.Page, selector string) (*rod.Element, error) {
	if dom.IsXPath(selector) {
		return page.Timeout(b.timeout).ElementX(dom.TrimXPath(selector))
	}
	return page.Timeout(b.timeout).Element(selector)
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.Timeout(b.timeout).WaitLoad(); err != nil {
		return fmt.Errorf("page load failed: %w", err)
	}
	_ = page.WaitIdle(navigateIdleWait)
	return nil
}

func (b *BrowserAdapter) Click(ctx context.Context, selector string) error {
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	el, err := b.element(page, selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	_ = page.WaitIdle(actionIdleWait)
	return nil
}

func (b *BrowserAdapter) Fill(ctx context.Context, selector, text string) error {
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	el, err := b.element(page, selector)
	if err != nil {
		return fmt.Errorf("field not found: %s: %w", selector, err)
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) PressEnter(ctx context.Context) error {
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if err := page.Keyboard.Type(input.Enter); err != nil {
		return fmt.Errorf("failed to press Enter: %w", err)
	}
	_ = page.WaitIdle(actionIdleWait)
	return nil
}

func (b *BrowserAdapter) Scroll(ctx context.Context, direction string) error {
	script, err := dom.ScrollScript(direction)
	if err != nil {
		return err
	}
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if _, err := page.Eval(script); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	_ = page.WaitIdle(scrollIdleWait)
	return nil
}

func (b *BrowserAdapter) GetPageContent(ctx context.Context) (*entity.PageContent, error) {
	page, err := b.activePage(ctx)
	if err != nil {
		return nil, err
	}
	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("page info failed: %w", err)
	}
	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTML: %w", err)
	}

	elements, err := b.GetUIElements(ctx)
	if err != nil {
		elements = nil
	}

	return &entity.PageContent{
		URL:        info.URL,
		Title:      info.Title,
		HTML:       html,
		UIElements: elements,
	}, nil
}

func (b *BrowserAdapter) GetUIElements(ctx context.Context) ([]entity.UIElement, error) {
	page, err := b.activePage(ctx)
	if err != nil {
		return nil, err
	}
	res, err := page.Eval(dom.UIElementsJS())
	if err != nil {
		return nil, fmt.Errorf("ui element scan failed: %w", err)
	}
	return dom.ParseUIElements(res.Value.Str())
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	page, err := b.activePage(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(screenshotQuality),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return capture.Normalize(raw)
}

func (b *BrowserAdapter) CurrentURL() string {
	page, err := b.activePage(context.Background())
	if err != nil {
		return ""
	}
	info, err := page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Close shuts the browser down and removes the launcher's temp profile.
// Calls after the first are no-ops.
func (b *BrowserAdapter) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
	return err
}

func (b *BrowserAdapter) IsClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
