package playwright

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"browser-runner/internal/application/port/output"
	"browser-runner/internal/domain/entity"
	"browser-runner/internal/infrastructure/browser/capture"
	"browser-runner/internal/infrastructure/browser/chromeflags"
	"browser-runner/internal/infrastructure/browser/dom"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const (
	defaultTimeout    = 10 * time.Second
	screenshotQuality = 80
)

type BrowserAdapter struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	page    playwright.Page
	release func() error
	timeout time.Duration
	closed  bool
}

func NewBrowserAdapter(ctx context.Context, cfg entity.BrowserConfig) (*BrowserAdapter, error) {
	if ctx != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	// A local executable means only the driver is needed, not the bundled
	// browsers.
	runOpts := &playwright.RunOptions{SkipInstallBrowsers: cfg.ExecutablePath != ""}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("install playwright driver: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	page, release, err := openPage(pw, cfg)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	page.SetDefaultTimeout(float64(cfg.Timeout.Milliseconds()))

	return &BrowserAdapter{
		pw:      pw,
		page:    page,
		release: release,
		timeout: cfg.Timeout,
	}, nil
}

func launchArgs(cfg entity.BrowserConfig) []string {
	flags := chromeflags.Parse(cfg.ExtraArgs)
	args := make([]string, 0, len(flags))
	for _, f := range flags {
		args = append(args, f.String())
	}
	return args
}

func openPage(pw *playwright.Playwright, cfg entity.BrowserConfig) (playwright.Page, func() error, error) {
	var executable *string
	if cfg.ExecutablePath != "" {
		executable = playwright.String(cfg.ExecutablePath)
	}

	if cfg.UserDataDir != "" {
		bctx, err := pw.Chromium.LaunchPersistentContext(cfg.UserDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless:       playwright.Bool(cfg.Headless),
			ExecutablePath: executable,
			Args:           launchArgs(cfg),
			SlowMo:         playwright.Float(float64(cfg.SlowMotion.Milliseconds())),
		})
		if err != nil {
			return nil, nil, err
		}
		release := func() error { return bctx.Close() }
		if pages := bctx.Pages(); len(pages) > 0 {
			return pages[0], release, nil
		}
		page, err := bctx.NewPage()
		if err != nil {
			_ = release()
			return nil, nil, err
		}
		return page, release, nil
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless:       playwright.Bool(cfg.Headless),
		ExecutablePath: executable,
		Args:           launchArgs(cfg),
		SlowMo:         playwright.Float(float64(cfg.SlowMotion.Milliseconds())),
	})
	if err != nil {
		return nil, nil, err
	}
	page, err := browser.NewPage()
	if err != nil {
		_ = browser.Close()
		return nil, nil, err
	}
	return page, func() error { return browser.Close() }, nil
}

// activePage guards every call: playwright-go has no context support, so
// cancellation is only observed between calls.
func (b *BrowserAdapter) activePage(ctx context.Context) (playwright.Page, error) {
	if ctx != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, entity.ErrBrowserClosed
	}
	return b.page, nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if _, err := page.Goto(url, playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateLoad}); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) Click(ctx context.Context, selector string) error {
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if err := page.Locator(selector).First().Click(); err != nil {
		return fmt.Errorf("click failed: %s: %w", selector, err)
	}
	return nil
}

func (b *BrowserAdapter) Fill(ctx context.Context, selector, text string) error {
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if err := page.Locator(selector).First().Fill(text); err != nil {
		return fmt.Errorf("input failed: %s: %w", selector, err)
	}
	return nil
}

func (b *BrowserAdapter) PressEnter(ctx context.Context) error {
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if err := page.Keyboard().Press("Enter"); err != nil {
		return fmt.Errorf("failed to press Enter: %w", err)
	}
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
	if _, err := page.Evaluate(script); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) GetPageContent(ctx context.Context) (*entity.PageContent, error) {
	page, err := b.activePage(ctx)
	if err != nil {
		return nil, err
	}
	title, err := page.Title()
	if err != nil {
		return nil, fmt.Errorf("failed to get title: %w", err)
	}
	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTML: %w", err)
	}

	elements, err := b.GetUIElements(ctx)
	if err != nil {
		elements = nil
	}

	return &entity.PageContent{
		URL:        page.URL(),
		Title:      title,
		HTML:       html,
		UIElements: elements,
	}, nil
}

func (b *BrowserAdapter) GetUIElements(ctx context.Context) ([]entity.UIElement, error) {
	page, err := b.activePage(ctx)
	if err != nil {
		return nil, err
	}
	res, err := page.Evaluate(dom.UIElementsJS())
	if err != nil {
		return nil, fmt.Errorf("ui element scan failed: %w", err)
	}
	raw, _ := res.(string)
	return dom.ParseUIElements(raw)
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	page, err := b.activePage(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := page.Screenshot(playwright.PageScreenshotOptions{
		Type:    playwright.ScreenshotTypeJpeg,
		Quality: playwright.Int(screenshotQuality),
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
	return page.URL()
}

// Close closes the browser and stops the playwright driver. Calls after the
// first are no-ops.
func (b *BrowserAdapter) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var err error
	if b.release != nil {
		err = b.release()
	}
	if b.pw != nil {
		if stopErr := b.pw.Stop(); err == nil {
			err = stopErr
		}
	}
	return err
}
