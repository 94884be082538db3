// Package browser selects the driver that backs the browser handle.
package browser

import (
	"context"
	"fmt"

	"browser-runner/internal/application/port/output"
	"browser-runner/internal/domain/entity"
	"browser-runner/internal/infrastructure/browser/chromedp"
	"browser-runner/internal/infrastructure/browser/playwright"
	"browser-runner/internal/infrastructure/browser/rod"
)

// Open launches the browser described by cfg. An empty driver means rod.
func Open(ctx context.Context, cfg entity.BrowserConfig) (output.BrowserPort, error) {
	var (
		b   output.BrowserPort
		err error
	)

	switch cfg.Driver {
	case entity.DriverRod, "":
		var a *rod.BrowserAdapter
		if a, err = rod.NewBrowserAdapter(ctx, cfg); err == nil {
			b = a
		}
	case entity.DriverChromedp:
		var a *chromedp.BrowserAdapter
		if a, err = chromedp.NewBrowserAdapter(ctx, cfg); err == nil {
			b = a
		}
	case entity.DriverPlaywright:
		var a *playwright.BrowserAdapter
		if a, err = playwright.NewBrowserAdapter(ctx, cfg); err == nil {
			b = a
		}
	default:
		err = fmt.Errorf("unknown browser driver %q", cfg.Driver)
	}

	if err != nil {
		return nil, err
	}
	return b, nil
}
