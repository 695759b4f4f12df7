// Package report assembles self-contained report bundles from a cached
// analysis: one timestamped directory holding a JSON data file and a copy
// of the analyzed screenshot.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/entrhq/uiscope/pkg/logging"
	"github.com/entrhq/uiscope/pkg/vision"
)

// Input is everything the assembler needs. The analysis is read as-is and
// never recomputed; the palette and typography system must already be the
// derived values.
type Input struct {
	Title            string
	TestURL          string
	AppName          string
	ScreenshotPath   string
	Description      string
	Elements         []vision.UIElement
	ColorPalette     vision.ColorPalette
	TypographySystem []vision.TypographyStyle
	VisualAudit      vision.VisualAudit
}

// Bundle describes the files written for one report.
type Bundle struct {
	Dir            string
	DataPath       string
	ScreenshotPath string
}

// Document is the JSON schema of the report data file.
type Document struct {
	Title            string                   `json:"title"`
	GeneratedAt      string                   `json:"generatedAt"`
	TestURL          string                   `json:"testUrl"`
	AppName          string                   `json:"appName,omitempty"`
	Screenshot       string                   `json:"screenshot,omitempty"`
	Description      string                   `json:"description"`
	ColorPalette     vision.ColorPalette      `json:"colorPalette"`
	TypographySystem []vision.TypographyStyle `json:"typographySystem"`
	VisualAudit      vision.VisualAudit       `json:"visualAudit,omitempty"`
	Elements         []vision.UIElement       `json:"elements"`
}

// Assembler writes report bundles under a base output directory.
type Assembler struct {
	baseDir string
	logger  *logging.Logger
}

// NewAssembler creates an assembler writing under baseDir.
func NewAssembler(baseDir string, logger *logging.Logger) *Assembler {
	return &Assembler{baseDir: baseDir, logger: logger}
}

// Assemble writes one report bundle and returns its paths.
//
// The directory name is based on the current millisecond timestamp; two
// reports within the same millisecond would collide, which is accepted as
// negligible. A screenshot copy failure degrades to a report without an
// embedded image, not a hard failure.
func (a *Assembler) Assemble(input Input) (*Bundle, error) {
	now := time.Now()
	stamp := now.UnixMilli()

	dir := filepath.Join(a.baseDir, fmt.Sprintf("report_%d", stamp))
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	doc := Document{
		Title:            input.Title,
		GeneratedAt:      now.Format(time.RFC3339),
		TestURL:          input.TestURL,
		AppName:          input.AppName,
		Description:      input.Description,
		ColorPalette:     input.ColorPalette,
		TypographySystem: input.TypographySystem,
		VisualAudit:      input.VisualAudit,
		Elements:         input.Elements,
	}
	if doc.Title == "" {
		doc.Title = "UI Debug Report"
	}
	if doc.TypographySystem == nil {
		doc.TypographySystem = []vision.TypographyStyle{}
	}
	if doc.Elements == nil {
		doc.Elements = []vision.UIElement{}
	}

	bundle := &Bundle{Dir: dir}

	if input.ScreenshotPath != "" {
		name := filepath.Base(input.ScreenshotPath)
		dest := filepath.Join(dir, name)
		if err := copyFile(input.ScreenshotPath, dest); err != nil {
			if a.logger != nil {
				a.logger.Warnf("screenshot copy failed, report will have no image: %v", err)
			}
		} else {
			doc.Screenshot = name
			bundle.ScreenshotPath = dest
		}
	}

	dataPath := filepath.Join(dir, fmt.Sprintf("report_data_%d.json", stamp))
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report data: %w", err)
	}
	if err := os.WriteFile(dataPath, data, 0640); err != nil {
		return nil, fmt.Errorf("failed to write report data: %w", err)
	}

	bundle.DataPath = dataPath
	return bundle, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
