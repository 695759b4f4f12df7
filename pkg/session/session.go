// Package session holds the mutable state shared by sequential pipeline
// steps: the most recent screenshot, the most recent analysis, and a
// rolling history log. One DebugSession exists per server process.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/uiscope/pkg/vision"
)

// DebugSession tracks the latest capture/analysis across tool calls.
// Steps are not strictly sequenced; each stage checks only its own
// precondition, so any field may be nil or empty at any time.
type DebugSession struct {
	mu sync.RWMutex

	currentURL         string
	lastScreenshotPath string
	history            []string
	elements           []vision.UIElement
	lastAnalysis       *vision.AnalysisResult
	createdAt          time.Time
}

// New creates an empty session.
func New() *DebugSession {
	return &DebugSession{createdAt: time.Now()}
}

// RecordCapture stores the result of a screenshot capture.
func (s *DebugSession) RecordCapture(url, screenshotPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentURL = url
	s.lastScreenshotPath = screenshotPath
	s.appendHistoryLocked(fmt.Sprintf("captured %s -> %s", url, screenshotPath))
}

// RecordAnalysis stores the analysis result and duplicates its element list
// for direct access. The result is treated as immutable once stored.
func (s *DebugSession) RecordAnalysis(result *vision.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastAnalysis = result
	s.elements = make([]vision.UIElement, len(result.Elements))
	copy(s.elements, result.Elements)
	s.appendHistoryLocked(fmt.Sprintf("analyzed screenshot: %d elements", len(result.Elements)))
}

// AppendHistory adds a free-form entry to the session history.
func (s *DebugSession) AppendHistory(entry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendHistoryLocked(entry)
}

func (s *DebugSession) appendHistoryLocked(entry string) {
	s.history = append(s.history, fmt.Sprintf("[%s] %s", time.Now().Format(time.RFC3339), entry))
}

// CurrentURL returns the URL of the most recent capture, or "".
func (s *DebugSession) CurrentURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentURL
}

// LastScreenshotPath returns the path of the most recent capture, or "".
func (s *DebugSession) LastScreenshotPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastScreenshotPath
}

// LastAnalysis returns the most recent analysis result, or nil.
func (s *DebugSession) LastAnalysis() *vision.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAnalysis
}

// Elements returns a copy of the most recent analysis's element list.
func (s *DebugSession) Elements() []vision.UIElement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elements := make([]vision.UIElement, len(s.elements))
	copy(elements, s.elements)
	return elements
}

// History returns a copy of the session history log.
func (s *DebugSession) History() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]string, len(s.history))
	copy(history, s.history)
	return history
}
