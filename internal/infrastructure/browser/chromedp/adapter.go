package chromedp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"browser-runner/internal/application/port/output"
	"browser-runner/internal/domain/entity"
	"browser-runner/internal/infrastructure/browser/capture"
	"browser-runner/internal/infrastructure/browser/chromeflags"
	"browser-runner/internal/infrastructure/browser/dom"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const (
	defaultTimeout    = 10 * time.Second
	launchTimeout     = 30 * time.Second
	screenshotQuality = 80
)

type BrowserAdapter struct {
	mu          sync.Mutex
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	timeout     time.Duration
	closed      bool
}

func NewBrowserAdapter(ctx context.Context, cfg entity.BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	// The browser outlives the constructor's context, it is bound to Close.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocatorOptions(cfg)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	err := launch(ctx, tabCtx, tabCancel, launchTimeout, func(tabCtx context.Context) error {
		return chromedp.Run(tabCtx, chromedp.Navigate("about:blank"))
	})
	if err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &BrowserAdapter{
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		timeout:     cfg.Timeout,
	}, nil
}

// launch performs the first Run, which allocates the browser. chromedp ties
// the Chrome process to the context of that Run, so start receives tabCtx
// itself. The limit and ctx only abort the tab while start is in flight.
func launch(ctx, tabCtx context.Context, abort context.CancelFunc, limit time.Duration, start func(context.Context) error) error {
	timer := time.AfterFunc(limit, abort)
	stop := context.AfterFunc(ctx, abort)

	err := start(tabCtx)

	timerPending := timer.Stop()
	ctxPending := stop()
	switch {
	case err != nil:
		return err
	case !ctxPending:
		return ctx.Err()
	case !timerPending:
		return fmt.Errorf("browser did not start within %s: %w", limit, context.DeadlineExceeded)
	}
	return nil
}

func allocatorOptions(cfg entity.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", cfg.Headless))

	if cfg.ExecutablePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecutablePath))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}

	for _, f := range chromeflags.Parse(cfg.ExtraArgs) {
		if f.Value == "" {
			opts = append(opts, chromedp.Flag(f.Name, true))
		} else {
			opts = append(opts, chromedp.Flag(f.Name, f.Value))
		}
	}
	return opts
}

// run executes actions on the tab, bounded by the adapter timeout and the
// caller's context.
func (b *BrowserAdapter) run(ctx context.Context, actions ...chromedp.Action) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return entity.ErrBrowserClosed
	}
	tabCtx := b.tabCtx
	b.mu.Unlock()

	if ctx != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	callCtx, cancel := context.WithTimeout(tabCtx, b.timeout)
	defer cancel()
	if ctx != nil {
		stop := context.AfterFunc(ctx, cancel)
		defer stop()
	}

	return chromedp.Run(callCtx, actions...)
}

func by(selector string) (string, chromedp.QueryOption) {
	if dom.IsXPath(selector) {
		return dom.TrimXPath(selector), chromedp.BySearch
	}
	return selector, chromedp.ByQuery
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	if err := b.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) Click(ctx context.Context, selector string) error {
	sel, opt := by(selector)
	if err := b.run(ctx, chromedp.Click(sel, opt, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click failed: %s: %w", selector, err)
	}
	return nil
}

func (b *BrowserAdapter) Fill(ctx context.Context, selector, text string) error {
	sel, opt := by(selector)
	err := b.run(ctx,
		chromedp.WaitVisible(sel, opt),
		chromedp.SetValue(sel, "", opt),
		chromedp.SendKeys(sel, text, opt),
	)
	if err != nil {
		return fmt.Errorf("input failed: %s: %w", selector, err)
	}
	return nil
}

func (b *BrowserAdapter) PressEnter(ctx context.Context) error {
	if err := b.run(ctx, chromedp.KeyEvent(kb.Enter)); err != nil {
		return fmt.Errorf("failed to press Enter: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) Scroll(ctx context.Context, direction string) error {
	script, err := dom.ScrollScript(direction)
	if err != nil {
		return err
	}
	if err := b.run(ctx, chromedp.Evaluate(invoke(script), nil)); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) GetPageContent(ctx context.Context) (*entity.PageContent, error) {
	var url, title, html string
	err := b.run(ctx,
		chromedp.Location(&url),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get page content: %w", err)
	}

	elements, err := b.GetUIElements(ctx)
	if err != nil {
		elements = nil
	}

	return &entity.PageContent{
		URL:        url,
		Title:      title,
		HTML:       html,
		UIElements: elements,
	}, nil
}

func (b *BrowserAdapter) GetUIElements(ctx context.Context) ([]entity.UIElement, error) {
	var raw string
	if err := b.run(ctx, chromedp.Evaluate(invoke(dom.UIElementsJS()), &raw)); err != nil {
		return nil, fmt.Errorf("ui element scan failed: %w", err)
	}
	return dom.ParseUIElements(raw)
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	var raw []byte
	err := b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatJpeg).
			WithQuality(screenshotQuality).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return capture.Normalize(raw)
}

func (b *BrowserAdapter) CurrentURL() string {
	var url string
	if err := b.run(context.Background(), chromedp.Location(&url)); err != nil {
		return ""
	}
	return url
}

// Close cancels the tab and the allocator, which terminates the browser
// process. Calls after the first are no-ops.
func (b *BrowserAdapter) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	err := chromedp.Cancel(b.tabCtx)
	b.tabCancel()
	b.allocCancel()
	return err
}

func invoke(fn string) string {
	return "(" + fn + ")()"
}
