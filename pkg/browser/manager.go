// Package browser manages the single long-lived headless browser used for
// screenshot capture. The browser is lazily launched on first capture and
// reused for the process lifetime; it is torn down only at shutdown.
package browser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/uiscope/pkg/config"
	"github.com/entrhq/uiscope/pkg/logging"
)

// CaptureOptions configures one screenshot capture.
type CaptureOptions struct {
	// URL to navigate to (must include protocol)
	URL string

	// FullPage captures the whole scrollable page instead of the viewport
	FullPage bool

	// WaitForSelector optionally blocks until the selector is visible
	WaitForSelector string

	// WaitTimeMs optionally sleeps after load, for animation settling
	WaitTimeMs float64
}

// Manager owns the playwright runtime and the one browser page.
type Manager struct {
	mu          sync.Mutex
	cfg         config.Browser
	dir         string
	logger      *logging.Logger
	playwright  *playwright.Playwright
	browser     playwright.Browser
	context     playwright.BrowserContext
	page        playwright.Page
	initialized bool
}

// NewManager creates a manager. No browser is launched until the first
// capture.
func NewManager(cfg config.Browser, screenshotDir string, logger *logging.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		dir:    screenshotDir,
		logger: logger,
	}
}

// initialize installs and starts playwright and launches the browser.
// Must be called with the mutex held.
func (m *Manager) initialize() error {
	if m.initialized {
		return nil
	}

	// Discard driver output so it cannot interfere with the MCP stdio stream
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.cfg.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  m.cfg.ViewportWidth,
			Height: m.cfg.ViewportHeight,
		},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		_ = context.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(float64(m.cfg.NavigationTimeoutMs))

	m.playwright = pw
	m.browser = browser
	m.context = context
	m.page = page
	m.initialized = true

	if m.logger != nil {
		m.logger.Infof("browser launched (headless=%v viewport=%dx%d)",
			m.cfg.Headless, m.cfg.ViewportWidth, m.cfg.ViewportHeight)
	}
	return nil
}

// Capture navigates to the URL and writes a screenshot, returning its path.
func (m *Manager) Capture(opts CaptureOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if opts.URL == "" {
		return "", fmt.Errorf("url is required")
	}
	if err := m.initialize(); err != nil {
		return "", fmt.Errorf("browser initialization failed: %w", err)
	}

	if _, err := m.page.Goto(opts.URL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(m.cfg.NavigationTimeoutMs)),
	}); err != nil {
		return "", fmt.Errorf("navigation to %s failed: %w", opts.URL, err)
	}

	if opts.WaitForSelector != "" {
		if _, err := m.page.WaitForSelector(opts.WaitForSelector, playwright.PageWaitForSelectorOptions{
			State: playwright.WaitForSelectorStateVisible,
		}); err != nil {
			return "", fmt.Errorf("wait for selector %q failed: %w", opts.WaitForSelector, err)
		}
	}

	if opts.WaitTimeMs > 0 {
		time.Sleep(time.Duration(opts.WaitTimeMs) * time.Millisecond)
	}

	if err := os.MkdirAll(m.dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	path := filepath.Join(m.dir, fmt.Sprintf("screenshot_%d.png", time.Now().UnixMilli()))
	if _, err := m.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(opts.FullPage),
	}); err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}

	return path, nil
}

// PageHTML returns the current page's HTML, or an error when no page has
// been navigated yet.
func (m *Manager) PageHTML() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return "", fmt.Errorf("no page loaded yet")
	}

	html, err := m.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

// Outline returns a compact text outline of the current page for use as
// prompt context. Returns "" without error when no page is loaded.
func (m *Manager) Outline() string {
	html, err := m.PageHTML()
	if err != nil {
		return ""
	}

	outline, err := BuildOutline(html)
	if err != nil {
		if m.logger != nil {
			m.logger.Warnf("page outline failed: %v", err)
		}
		return ""
	}
	return outline
}

// Shutdown closes the page, context, browser, and playwright runtime.
// Safe to call when nothing was ever launched.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil
	}

	_ = m.page.Close()
	_ = m.context.Close()
	_ = m.browser.Close()

	if err := m.playwright.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	m.initialized = false
	return nil
}
