package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hairizuan-noorazman/steprunner/logger"
	"github.com/playwright-community/playwright-go"
)

// Session types served by PlaywrightFactory.
const (
	TypeChromium = "chromium"
	TypeFirefox  = "firefox"
	TypeWebKit   = "webkit"
)

// PlaywrightConfig configures the browsers started by PlaywrightFactory.
type PlaywrightConfig struct {
	Headless bool
	Timeout  time.Duration
	SlowMo   time.Duration
	BaseURL  string
}

// PlaywrightFactory starts Playwright browsers. The Playwright driver process is started once,
// on the first Create, and shared by every scenario using the factory.
type PlaywrightFactory struct {
	config PlaywrightConfig
	logger logger.Logger

	mu sync.Mutex
	pw *playwright.Playwright
}

// NewPlaywrightFactory creates a factory. No process is started until Create is called.
func NewPlaywrightFactory(config PlaywrightConfig, log logger.Logger) *PlaywrightFactory {
	return &PlaywrightFactory{
		config: config,
		logger: log,
	}
}

// SupportedTypes returns the Playwright browser engines.
func (f *PlaywrightFactory) SupportedTypes() []string {
	return []string{TypeChromium, TypeFirefox, TypeWebKit}
}

func (f *PlaywrightFactory) driver() (*playwright.Playwright, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pw != nil {
		return f.pw, nil
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	f.pw = pw
	f.logger.Info(context.Background(), "playwright driver started", nil)
	return pw, nil
}

// Create launches a browser of the given type with a fresh context and page.
func (f *PlaywrightFactory) Create(typeName string) (Handle, error) {
	pw, err := f.driver()
	if err != nil {
		return nil, err
	}

	var browserType playwright.BrowserType
	switch typeName {
	case TypeChromium:
		browserType = pw.Chromium
	case TypeFirefox:
		browserType = pw.Firefox
	case TypeWebKit:
		browserType = pw.WebKit
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSessionType, typeName)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(f.config.Headless),
	}
	if f.config.SlowMo > 0 {
		launch.SlowMo = playwright.Float(float64(f.config.SlowMo.Milliseconds()))
	}
	browser, err := browserType.Launch(launch)
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", typeName, err)
	}

	var contextOpts playwright.BrowserNewContextOptions
	if f.config.BaseURL != "" {
		contextOpts.BaseURL = playwright.String(f.config.BaseURL)
	}
	browserCtx, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if f.config.Timeout > 0 {
		page.SetDefaultTimeout(float64(f.config.Timeout.Milliseconds()))
	}

	return &PlaywrightHandle{browser: browser, context: browserCtx, page: page}, nil
}

// Stop shuts the shared Playwright driver down. Browsers still open are killed with it.
func (f *PlaywrightFactory) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pw == nil {
		return nil
	}
	err := f.pw.Stop()
	f.pw = nil
	return err
}

// PlaywrightHandle is a Handle backed by one Playwright browser, context and page.
type PlaywrightHandle struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

// Page exposes the Playwright page for element locating.
func (h *PlaywrightHandle) Page() playwright.Page {
	return h.page
}

// Navigate loads url in the page.
func (h *PlaywrightHandle) Navigate(url string) error {
	_, err := h.page.Goto(url)
	return err
}

// CurrentURL returns the page URL.
func (h *PlaywrightHandle) CurrentURL() string {
	return h.page.URL()
}

// Title returns the page title.
func (h *PlaywrightHandle) Title() (string, error) {
	return h.page.Title()
}

// PageSource returns the page HTML.
func (h *PlaywrightHandle) PageSource() (string, error) {
	return h.page.Content()
}

// Screenshot captures the full page as PNG.
func (h *PlaywrightHandle) Screenshot() ([]byte, error) {
	return h.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
}

// Reset clears cookies and goes back to a blank page.
func (h *PlaywrightHandle) Reset() error {
	if err := h.context.ClearCookies(); err != nil {
		return err
	}
	_, err := h.page.Goto("about:blank")
	return err
}

// Close closes the browser context and its pages, then the browser itself.
func (h *PlaywrightHandle) Close() error {
	if err := h.context.Close(); err != nil {
		return err
	}
	return h.browser.Close()
}

// Quit closes the browser.
func (h *PlaywrightHandle) Quit() error {
	return h.browser.Close()
}

// Install downloads the browsers needed by the given session types.
func Install(types ...string) error {
	return playwright.Install(&playwright.RunOptions{Browsers: types})
}
