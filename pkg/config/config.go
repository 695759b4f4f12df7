// Package config loads uiscope server configuration from a YAML file with
// environment-variable overrides for provider credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultModel is used when neither config file nor environment set one.
	DefaultModel = "gpt-4o"

	// DefaultOutputDir is where report bundles are written.
	DefaultOutputDir = "ui-debug-reports"

	// DefaultNavigationTimeoutMs bounds page loads during capture.
	DefaultNavigationTimeoutMs = 30000

	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
)

// Provider configures the vision LLM endpoint.
type Provider struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Browser configures the managed browser instance.
type Browser struct {
	Headless            bool `yaml:"headless"`
	ViewportWidth       int  `yaml:"viewport_width"`
	ViewportHeight      int  `yaml:"viewport_height"`
	NavigationTimeoutMs int  `yaml:"navigation_timeout_ms"`
}

// Report configures report bundle output and the report index.
type Report struct {
	OutputDir string `yaml:"output_dir"`
	IndexPath string `yaml:"index_path"`
}

// Config is the full server configuration.
type Config struct {
	Provider Provider `yaml:"provider"`
	Browser  Browser  `yaml:"browser"`
	Report   Report   `yaml:"report"`

	// ReferenceScreenshot is an optional pre-existing screenshot used by
	// analyze when no capture has happened yet in this session.
	ReferenceScreenshot string `yaml:"reference_screenshot"`

	// ScreenshotDir is where captured screenshots are stored.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// Default returns a configuration where every field that has a sensible
// default is filled in. Provider credentials come from the environment.
func Default() *Config {
	return &Config{
		Provider: Provider{
			Model: DefaultModel,
		},
		Browser: Browser{
			Headless:            true,
			ViewportWidth:       DefaultViewportWidth,
			ViewportHeight:      DefaultViewportHeight,
			NavigationTimeoutMs: DefaultNavigationTimeoutMs,
		},
		Report: Report{
			OutputDir: DefaultOutputDir,
		},
		ScreenshotDir: "screenshots",
	}
}

// Load reads configuration from path. A missing file is not an error; the
// defaults are returned. Environment variables UISCOPE_API_KEY,
// UISCOPE_BASE_URL, and UISCOPE_MODEL override file values when set.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("UISCOPE_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("UISCOPE_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("UISCOPE_MODEL"); v != "" {
		c.Provider.Model = v
	}
}

// fillDefaults repairs zero values after a partial YAML file overwrote them.
func (c *Config) fillDefaults() {
	if c.Provider.Model == "" {
		c.Provider.Model = DefaultModel
	}
	if c.Browser.ViewportWidth <= 0 {
		c.Browser.ViewportWidth = DefaultViewportWidth
	}
	if c.Browser.ViewportHeight <= 0 {
		c.Browser.ViewportHeight = DefaultViewportHeight
	}
	if c.Browser.NavigationTimeoutMs <= 0 {
		c.Browser.NavigationTimeoutMs = DefaultNavigationTimeoutMs
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = DefaultOutputDir
	}
	if c.Report.IndexPath == "" {
		c.Report.IndexPath = filepath.Join(c.Report.OutputDir, "reports.db")
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "screenshots"
	}
}
