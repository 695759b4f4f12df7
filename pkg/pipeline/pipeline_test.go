package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/uiscope/pkg/browser"
	"github.com/entrhq/uiscope/pkg/config"
	"github.com/entrhq/uiscope/pkg/report"
	"github.com/entrhq/uiscope/pkg/types"
)

const mockModelResponse = `--- Description Start ---
A landing page with one call to action.
--- Description End ---

--- Element Start ---
id: 1
type: button
label: "Sign up"
geometry: { x: 10, y: 20, width: 100, height: 40 }
typography: { fontFamily: Inter, fontSize: 16px, fontWeight: 600, color: #777777 }
appearance: { backgroundColor: #ffffff, borderColor: null, borderWidth: null, borderRadius: 4 }
state: active
--- Element End ---

--- Element Start ---
id: 2
type: heading
textContent: "Welcome"
geometry: { x: 10, y: 0, width: 300, height: 30 }
typography: { fontFamily: Inter, fontSize: 24px, fontWeight: 700, color: #101010 }
--- Element End ---

--- Color Palette Start ---
backgrounds: [#999999]
textColors: [#123456]
--- Color Palette End ---
`

type mockCapturer struct {
	capturedURL string
	path        string
	err         error
	outline     string
}

func (m *mockCapturer) Capture(opts browser.CaptureOptions) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.capturedURL = opts.URL
	return m.path, nil
}

func (m *mockCapturer) Outline() string { return m.outline }

type mockProvider struct {
	response string
	err      error
	calls    int
	lastMsgs []*types.Message
}

func (m *mockProvider) Complete(_ context.Context, msgs []*types.Message) (*types.Message, error) {
	m.calls++
	m.lastMsgs = msgs
	if m.err != nil {
		return nil, m.err
	}
	return types.NewAssistantMessage(m.response), nil
}

func (m *mockProvider) GetModelInfo() *types.ModelInfo {
	return &types.ModelInfo{Name: "mock", Provider: "test", SupportsVision: true}
}

func (m *mockProvider) GetModel() string   { return "mock" }
func (m *mockProvider) GetBaseURL() string { return "" }

type mockIndexer struct {
	added int
	url   string
	count int
	err   error
}

func (m *mockIndexer) Add(url, _, _ string, elementCount int) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.added++
	m.url = url
	m.count = elementCount
	return "idx-1", nil
}

func newTestPipeline(t *testing.T, cap *mockCapturer, prov *mockProvider, idx *mockIndexer) *Pipeline {
	t.Helper()
	cfg := config.Default()
	cfg.Report.OutputDir = t.TempDir()
	asm := report.NewAssembler(cfg.Report.OutputDir, nil)
	var indexer Indexer
	if idx != nil {
		indexer = idx
	}
	return New(cfg, cap, prov, asm, indexer, nil)
}

func readReportDoc(t *testing.T, path string) report.Document {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc report.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func fakeScreenshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "screenshot_1.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0640))
	return path
}

func TestCaptureRecordsSession(t *testing.T) {
	cap := &mockCapturer{path: fakeScreenshot(t)}
	p := newTestPipeline(t, cap, &mockProvider{}, nil)

	res, err := p.Capture(context.Background(), browser.CaptureOptions{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", res.URL)
	assert.Equal(t, cap.path, res.ScreenshotPath)
	assert.Equal(t, "https://example.com", p.Session().CurrentURL())
	assert.Equal(t, cap.path, p.Session().LastScreenshotPath())
}

func TestCaptureRequiresURL(t *testing.T) {
	p := newTestPipeline(t, &mockCapturer{}, &mockProvider{}, nil)
	_, err := p.Capture(context.Background(), browser.CaptureOptions{})
	assert.Error(t, err)
}

func TestCaptureFailureDoesNotTouchSession(t *testing.T) {
	cap := &mockCapturer{err: errors.New("boom")}
	p := newTestPipeline(t, cap, &mockProvider{}, nil)

	_, err := p.Capture(context.Background(), browser.CaptureOptions{URL: "https://example.com"})
	assert.Error(t, err)
	assert.Empty(t, p.Session().CurrentURL())
}

func TestAnalyzeParsesAndCaches(t *testing.T) {
	cap := &mockCapturer{path: fakeScreenshot(t), outline: "Title: Example"}
	prov := &mockProvider{response: mockModelResponse}
	p := newTestPipeline(t, cap, prov, nil)

	_, err := p.Capture(context.Background(), browser.CaptureOptions{URL: "https://example.com"})
	require.NoError(t, err)

	result, err := p.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A landing page with one call to action.", result.Description)
	assert.Len(t, result.Elements, 2)

	cached := p.Session().LastAnalysis()
	require.NotNil(t, cached)
	assert.Len(t, cached.Elements, 2)

	// the prompt must carry the screenshot and the outline context
	require.Len(t, prov.lastMsgs, 1)
	assert.True(t, prov.lastMsgs[0].HasImages())
	assert.Contains(t, prov.lastMsgs[0].Content, "Title: Example")
}

func TestAnalyzeWithoutScreenshot(t *testing.T) {
	p := newTestPipeline(t, &mockCapturer{}, &mockProvider{response: mockModelResponse}, nil)
	_, err := p.Analyze(context.Background())
	assert.Error(t, err)
}

func TestAnalyzeUsesReferenceScreenshot(t *testing.T) {
	prov := &mockProvider{response: mockModelResponse}
	p := newTestPipeline(t, &mockCapturer{}, prov, nil)
	p.cfg.ReferenceScreenshot = fakeScreenshot(t)

	result, err := p.Analyze(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Elements, 2)
}

func TestAnalyzeTwiceOverwrites(t *testing.T) {
	prov := &mockProvider{response: mockModelResponse}
	p := newTestPipeline(t, &mockCapturer{}, prov, nil)
	p.cfg.ReferenceScreenshot = fakeScreenshot(t)

	_, err := p.Analyze(context.Background())
	require.NoError(t, err)
	_, err = p.Analyze(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, prov.calls)
	assert.Len(t, p.Session().Elements(), 2)
}

func TestReportBeforeAnalyzeFails(t *testing.T) {
	p := newTestPipeline(t, &mockCapturer{}, &mockProvider{}, nil)
	_, err := p.Report(context.Background(), "https://example.com", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis")
}

func TestReportUsesDerivedStylesAndAnnotatesContrast(t *testing.T) {
	cap := &mockCapturer{path: fakeScreenshot(t)}
	prov := &mockProvider{response: mockModelResponse}
	idx := &mockIndexer{}
	p := newTestPipeline(t, cap, prov, idx)

	_, err := p.Capture(context.Background(), browser.CaptureOptions{URL: "https://example.com"})
	require.NoError(t, err)
	_, err = p.Analyze(context.Background())
	require.NoError(t, err)

	res, err := p.Report(context.Background(), "", "shop")
	require.NoError(t, err)
	assert.Equal(t, 2, res.ElementCount)
	assert.Equal(t, "idx-1", res.IndexID)
	assert.Equal(t, 1, idx.added)
	assert.Equal(t, "https://example.com", idx.url)
	assert.FileExists(t, res.Bundle.DataPath)

	// derived palette comes from element colors, not the model's palette list
	doc := readReportDoc(t, res.Bundle.DataPath)
	assert.NotContains(t, doc.ColorPalette.TextColors, "#123456")
	assert.NotContains(t, doc.ColorPalette.Backgrounds, "#999999")
	assert.Contains(t, doc.ColorPalette.TextColors, "#ffffff")
	assert.Contains(t, doc.ColorPalette.Backgrounds, "#777777")
	assert.Contains(t, doc.ColorPalette.Backgrounds, "#101010")

	require.Len(t, doc.Elements, 2)
	require.NotNil(t, doc.Elements[0].ContrastRatio)
	assert.InDelta(t, 4.48, *doc.Elements[0].ContrastRatio, 0.01)

	// contrast annotation stays out of the cached session
	for _, el := range p.Session().Elements() {
		assert.Nil(t, el.ContrastRatio)
	}
}

func TestReportIndexFailureDegrades(t *testing.T) {
	prov := &mockProvider{response: mockModelResponse}
	idx := &mockIndexer{err: errors.New("db locked")}
	p := newTestPipeline(t, &mockCapturer{}, prov, idx)
	p.cfg.ReferenceScreenshot = fakeScreenshot(t)

	_, err := p.Analyze(context.Background())
	require.NoError(t, err)

	res, err := p.Report(context.Background(), "https://example.com", "")
	require.NoError(t, err)
	assert.Empty(t, res.IndexID)
}

func TestHistoryHasOneEntryPerStep(t *testing.T) {
	cap := &mockCapturer{path: fakeScreenshot(t)}
	prov := &mockProvider{response: mockModelResponse}
	p := newTestPipeline(t, cap, prov, nil)

	_, err := p.Capture(context.Background(), browser.CaptureOptions{URL: "https://example.com"})
	require.NoError(t, err)
	_, err = p.Analyze(context.Background())
	require.NoError(t, err)
	_, err = p.Report(context.Background(), "", "")
	require.NoError(t, err)

	history := p.Session().History()
	require.Len(t, history, 3)
	assert.Contains(t, history[0], "captured")
	assert.Contains(t, history[1], "analyzed")
	assert.Contains(t, history[2], "report")
}

func TestReportWithoutAnyScreenshotFails(t *testing.T) {
	prov := &mockProvider{response: mockModelResponse}
	p := newTestPipeline(t, &mockCapturer{}, prov, nil)
	p.cfg.ReferenceScreenshot = fakeScreenshot(t)

	_, err := p.Analyze(context.Background())
	require.NoError(t, err)

	p.cfg.ReferenceScreenshot = ""
	_, err = p.Report(context.Background(), "https://example.com", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "screenshot")
}

func TestFullReportStopsAtFirstFailure(t *testing.T) {
	cap := &mockCapturer{err: errors.New("navigation failed")}
	prov := &mockProvider{response: mockModelResponse}
	p := newTestPipeline(t, cap, prov, nil)

	_, err := p.FullReport(context.Background(), browser.CaptureOptions{URL: "https://example.com"}, "")
	require.Error(t, err)
	assert.Equal(t, 0, prov.calls)
}

func TestFullReportHappyPath(t *testing.T) {
	cap := &mockCapturer{path: fakeScreenshot(t)}
	prov := &mockProvider{response: mockModelResponse}
	p := newTestPipeline(t, cap, prov, nil)

	res, err := p.FullReport(context.Background(), browser.CaptureOptions{URL: "https://example.com"}, "shop")
	require.NoError(t, err)
	assert.Equal(t, 2, res.ElementCount)
	assert.DirExists(t, res.Bundle.Dir)
}
