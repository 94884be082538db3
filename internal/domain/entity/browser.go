package entity

import "time"

type BrowserDriver string

const (
	DriverRod        BrowserDriver = "rod"
	DriverChromedp   BrowserDriver = "chromedp"
	DriverPlaywright BrowserDriver = "playwright"
)

// BrowserConfig describes how the browser handle is launched. It is built
// once per run and never mutated after being handed to a driver.
type BrowserConfig struct {
	Driver         BrowserDriver
	ExecutablePath string
	ExtraArgs      []string
	Headless       bool
	Timeout        time.Duration
	SlowMotion     time.Duration
	UserDataDir    string
}
