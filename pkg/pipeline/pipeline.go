// Package pipeline orchestrates the capture, analyze, and report stages
// against a single process-wide debug session.
package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/entrhq/uiscope/pkg/browser"
	"github.com/entrhq/uiscope/pkg/config"
	"github.com/entrhq/uiscope/pkg/llm"
	"github.com/entrhq/uiscope/pkg/logging"
	"github.com/entrhq/uiscope/pkg/report"
	"github.com/entrhq/uiscope/pkg/session"
	"github.com/entrhq/uiscope/pkg/store"
	"github.com/entrhq/uiscope/pkg/types"
	"github.com/entrhq/uiscope/pkg/vision"
)

// Capturer is the browser surface the pipeline depends on.
type Capturer interface {
	Capture(opts browser.CaptureOptions) (string, error)
	Outline() string
}

// Indexer records finished report bundles.
type Indexer interface {
	Add(url, appName, dir string, elementCount int) (string, error)
}

// CaptureResult reports a completed capture stage.
type CaptureResult struct {
	URL            string
	ScreenshotPath string
}

// ReportResult reports a completed report stage.
type ReportResult struct {
	Bundle       *report.Bundle
	ElementCount int
	IndexID      string
}

// Pipeline wires the stages together and owns the shared session.
type Pipeline struct {
	cfg       *config.Config
	capturer  Capturer
	provider  llm.Provider
	assembler *report.Assembler
	index     Indexer
	session   *session.DebugSession
	parser    *vision.Parser
	logger    *logging.Logger
}

// New creates a pipeline around the given collaborators. The index may be
// nil, in which case reports are not recorded.
func New(cfg *config.Config, capturer Capturer, provider llm.Provider, assembler *report.Assembler, index Indexer, logger *logging.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		capturer:  capturer,
		provider:  provider,
		assembler: assembler,
		index:     index,
		session:   session.New(),
		parser:    vision.NewParser(logger),
		logger:    logger,
	}
}

// Session exposes the shared debug session.
func (p *Pipeline) Session() *session.DebugSession {
	return p.session
}

// Capture navigates to the URL, takes a screenshot, and records both on the
// session.
func (p *Pipeline) Capture(ctx context.Context, opts browser.CaptureOptions) (*CaptureResult, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := p.capturer.Capture(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to capture %s: %w", opts.URL, err)
	}

	p.session.RecordCapture(opts.URL, path)
	if p.logger != nil {
		p.logger.Infof("captured %s to %s", opts.URL, path)
	}
	return &CaptureResult{URL: opts.URL, ScreenshotPath: path}, nil
}

// Analyze sends the session screenshot to the vision model and caches the
// parsed result on the session. When no capture has happened a configured
// reference screenshot is used instead.
func (p *Pipeline) Analyze(ctx context.Context) (*vision.AnalysisResult, error) {
	screenshot := p.session.LastScreenshotPath()
	if screenshot == "" {
		screenshot = p.cfg.ReferenceScreenshot
	}
	if screenshot == "" {
		return nil, fmt.Errorf("no screenshot available: capture a page or configure a reference screenshot")
	}

	data, err := os.ReadFile(screenshot)
	if err != nil {
		return nil, fmt.Errorf("failed to read screenshot %s: %w", screenshot, err)
	}

	prompt := vision.AnalysisPrompt
	if outline := p.capturer.Outline(); outline != "" {
		prompt = prompt + "\n\nPage structure for context:\n" + outline
	}

	msg := types.NewUserImageMessage(prompt, types.ImageAttachment{
		Data:      base64.StdEncoding.EncodeToString(data),
		MediaType: mediaTypeFor(screenshot),
	})

	reply, err := p.provider.Complete(ctx, []*types.Message{msg})
	if err != nil {
		return nil, fmt.Errorf("vision analysis failed: %w", err)
	}

	result := p.parser.Parse(reply.Content)
	p.session.RecordAnalysis(result)
	if p.logger != nil {
		p.logger.Infof("analysis complete: %d elements", len(result.Elements))
	}
	return result, nil
}

// Report derives styles from the cached analysis, annotates contrast, and
// writes a report bundle. It fails if no analysis has been run and never
// mutates the cached session state.
func (p *Pipeline) Report(ctx context.Context, testURL, appName string) (*ReportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := p.session.LastAnalysis()
	if analysis == nil {
		return nil, fmt.Errorf("no analysis available: run analyze_screen before generating a report")
	}
	screenshot := p.session.LastScreenshotPath()
	if screenshot == "" {
		screenshot = p.cfg.ReferenceScreenshot
	}
	if screenshot == "" {
		return nil, fmt.Errorf("no screenshot available: capture a page or configure a reference screenshot")
	}

	if testURL == "" {
		testURL = p.session.CurrentURL()
	}

	elements := p.session.Elements()
	palette, typography := vision.DeriveStyles(elements)
	vision.AnnotateContrast(elements, palette, p.logger)

	bundle, err := p.assembler.Assemble(report.Input{
		Title:            reportTitle(appName),
		TestURL:          testURL,
		AppName:          appName,
		ScreenshotPath:   screenshot,
		Description:      analysis.Description,
		Elements:         elements,
		ColorPalette:     palette,
		TypographySystem: typography,
		VisualAudit:      analysis.VisualAudit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assemble report: %w", err)
	}

	result := &ReportResult{Bundle: bundle, ElementCount: len(elements)}
	if p.index != nil {
		id, ierr := p.index.Add(testURL, appName, bundle.Dir, len(elements))
		if ierr != nil {
			if p.logger != nil {
				p.logger.Warnf("failed to index report: %v", ierr)
			}
		} else {
			result.IndexID = id
		}
	}

	p.session.AppendHistory(fmt.Sprintf("generated report at %s", bundle.Dir))
	if p.logger != nil {
		p.logger.Infof("report written to %s", bundle.Dir)
	}
	return result, nil
}

// FullReport runs capture, analyze, and report in strict order, stopping at
// the first failing stage.
func (p *Pipeline) FullReport(ctx context.Context, opts browser.CaptureOptions, appName string) (*ReportResult, error) {
	if _, err := p.Capture(ctx, opts); err != nil {
		return nil, err
	}
	if _, err := p.Analyze(ctx); err != nil {
		return nil, err
	}
	return p.Report(ctx, opts.URL, appName)
}

func reportTitle(appName string) string {
	if appName == "" {
		return "UI Debug Report"
	}
	return fmt.Sprintf("UI Debug Report: %s", appName)
}

func mediaTypeFor(path string) string {
	switch filepath.Ext(path) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

var _ Capturer = (*browser.Manager)(nil)
var _ Indexer = (*store.Store)(nil)
