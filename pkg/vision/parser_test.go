package vision

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `Here is my analysis of the screenshot.

--- Description Start ---
A login form centered on a dark background.
--- Description End ---

--- Element Start ---
id: 1
type: button
label: Sign In
textContent: Sign In
state: active
description: Primary call to action
geometry: {x: 120, y: 340, width: ~200, height: 44}
typography: {fontFamily: "Inter", fontSize: 16px, fontWeight: "600", color: "#ffffff"}
appearance: {backgroundColor: "#1a73e8", borderColor: null, borderWidth: null, borderRadius: 8}
--- Element End ---

--- Element Start ---
id: 2
type: text
label: null
textContent: Welcome back
geometry: {x: 120, y: 120, width: 320, height: 32}
typography: {fontFamily: Inter, fontSize: 24, fontWeight: 700, color: #f0f0f0}
appearance: {backgroundColor: null, borderColor: null, borderWidth: null, borderRadius: null}
--- Element End ---

--- Color Palette Start ---
Backgrounds: #101010, "#1a73e8"
Text Colors: #ffffff, #f0f0f0
Accent Colors: null
--- Color Palette End ---

--- Typography Start ---
- {fontFamily: Inter, fontSize: 16, fontWeight: 600}
- {fontFamily: Inter, fontSize: 24, fontWeight: 700}
--- Typography End ---

--- Visual Audit Start ---
Accessibility:
- Color Contrast: { assessment: good, details: "Text is readable on the dark background" }
- Touch Targets: { assessment: adequate, details: null }
Layout:
- Alignment: { assessment: good, details: Elements share a left edge }
--- Visual Audit End ---
`

func TestParseWellFormedResponse(t *testing.T) {
	result := NewParser(nil).Parse(sampleResponse)

	assert.Equal(t, "A login form centered on a dark background.", result.Description)
	require.Len(t, result.Elements, 2)
}

func TestParseElementFields(t *testing.T) {
	result := NewParser(nil).Parse(sampleResponse)
	require.Len(t, result.Elements, 2)

	button := result.Elements[0]
	assert.Equal(t, 1, button.ID)
	assert.Equal(t, "button", button.Type)
	require.NotNil(t, button.Label)
	assert.Equal(t, "Sign In", *button.Label)
	assert.Equal(t, "active", button.State)

	// Estimation marker and unit suffixes are stripped during coercion
	assert.Equal(t, Geometry{X: 120, Y: 340, Width: 200, Height: 44}, button.Geometry)
	require.NotNil(t, button.Typography)
	require.NotNil(t, button.Typography.FontSize)
	assert.Equal(t, 16.0, *button.Typography.FontSize)
	require.NotNil(t, button.Typography.Color)
	assert.Equal(t, "#ffffff", *button.Typography.Color)

	require.NotNil(t, button.Appearance)
	require.NotNil(t, button.Appearance.BackgroundColor)
	assert.Equal(t, "#1a73e8", *button.Appearance.BackgroundColor)
	assert.Nil(t, button.Appearance.BorderColor)
	require.NotNil(t, button.Appearance.BorderRadius)
	assert.Equal(t, 8.0, *button.Appearance.BorderRadius)
}

func TestParseAllNullAppearanceCollapsesToAbsent(t *testing.T) {
	result := NewParser(nil).Parse(sampleResponse)
	require.Len(t, result.Elements, 2)

	text := result.Elements[1]
	assert.Nil(t, text.Appearance, "all-null appearance must collapse to absent")
	assert.Nil(t, text.Label, "literal null maps to absent")
	assert.Equal(t, DefaultElementState, text.State, "missing state defaults")
}

func TestParseDropsElementsWithInvalidID(t *testing.T) {
	corrupted := strings.Replace(sampleResponse, "id: 2", "id: not-a-number", 1)

	result := NewParser(nil).Parse(corrupted)
	require.Len(t, result.Elements, 1)
	assert.Equal(t, 1, result.Elements[0].ID)

	missing := strings.Replace(sampleResponse, "id: 2\n", "", 1)
	result = NewParser(nil).Parse(missing)
	assert.Len(t, result.Elements, 1)
}

func TestParseMissingGeometryDefaults(t *testing.T) {
	response := `--- Element Start ---
id: 7
type: container
--- Element End ---`

	result := NewParser(nil).Parse(response)
	require.Len(t, result.Elements, 1)

	element := result.Elements[0]
	assert.Equal(t, Geometry{}, element.Geometry)
	require.NotNil(t, element.Typography, "typography defaults to an empty object")
	assert.True(t, element.Typography.IsEmpty())
	assert.Nil(t, element.Appearance)
}

func TestParsePalette(t *testing.T) {
	result := NewParser(nil).Parse(sampleResponse)
	require.NotNil(t, result.ColorPalette)

	assert.Equal(t, []string{"#101010", "#1a73e8"}, result.ColorPalette.Backgrounds)
	assert.Equal(t, []string{"#ffffff", "#f0f0f0"}, result.ColorPalette.TextColors)
	assert.Empty(t, result.ColorPalette.AccentColors, "null entries are filtered out")
}

func TestParseTypographySummary(t *testing.T) {
	result := NewParser(nil).Parse(sampleResponse)
	require.Len(t, result.TypographySystem, 2)

	first := result.TypographySystem[0]
	require.NotNil(t, first.FontFamily)
	assert.Equal(t, "Inter", *first.FontFamily)
	require.NotNil(t, first.FontSize)
	assert.Equal(t, 16.0, *first.FontSize)
	require.NotNil(t, first.FontWeight)
	assert.Equal(t, "600", *first.FontWeight)
}

func TestParseVisualAudit(t *testing.T) {
	result := NewParser(nil).Parse(sampleResponse)
	audit := result.VisualAudit
	require.NotNil(t, audit)

	// All fixed categories exist even when the response omits some
	for _, category := range AuditCategories {
		assert.Contains(t, audit, category)
	}

	contrast, ok := audit["accessibility"]["colorContrast"]
	require.True(t, ok, "metric names are normalized to lowerCamel")
	require.NotNil(t, contrast.Assessment)
	assert.Equal(t, "good", *contrast.Assessment)
	require.NotNil(t, contrast.Details)
	assert.Equal(t, "Text is readable on the dark background", *contrast.Details)

	touch := audit["accessibility"]["touchTargets"]
	assert.Nil(t, touch.Details, "null details map to absent")

	alignment := audit["layout"]["alignment"]
	require.NotNil(t, alignment.Details)
	assert.Equal(t, "Elements share a left edge", *alignment.Details)

	assert.Empty(t, audit["consistency"])
	assert.Empty(t, audit["clarity"])
}

func TestParseAuditMetricBeforeCategoryIsDropped(t *testing.T) {
	response := `--- Visual Audit Start ---
- Orphan Metric: { assessment: bad, details: no category yet }
Accessibility:
- Color Contrast: { assessment: good, details: fine }
--- Visual Audit End ---`

	audit := NewParser(nil).Parse(response).VisualAudit

	assert.Len(t, audit["accessibility"], 1)
	for _, category := range AuditCategories {
		_, found := audit[category]["orphanMetric"]
		assert.False(t, found)
	}
}

func TestParseEmptyInputNeverFails(t *testing.T) {
	result := NewParser(nil).Parse("")

	assert.Equal(t, DescriptionFallback, result.Description)
	assert.Empty(t, result.Elements)
	assert.Nil(t, result.ColorPalette)
	assert.Nil(t, result.TypographySystem)
	require.NotNil(t, result.VisualAudit)
	assert.Len(t, result.VisualAudit, len(AuditCategories))
}

func TestParseMalformedElementDoesNotPoisonSiblings(t *testing.T) {
	response := `--- Element Start ---
this block has no key value pairs at all {{{
--- Element End ---
--- Element Start ---
id: 3
type: link
--- Element End ---`

	result := NewParser(nil).Parse(response)
	require.Len(t, result.Elements, 1)
	assert.Equal(t, 3, result.Elements[0].ID)
}

func TestParseElementWithoutEndMarkerIsTolerated(t *testing.T) {
	response := `--- Element Start ---
id: 9
type: input`

	result := NewParser(nil).Parse(response)
	require.Len(t, result.Elements, 1)
	assert.Equal(t, 9, result.Elements[0].ID)
}

func TestNormalizeMetricName(t *testing.T) {
	cases := map[string]string{
		"Color Contrast":   "colorContrast",
		"alignment":        "alignment",
		"Visual Hierarchy": "visualHierarchy",
		"ARIA Labels":      "ariaLabels",
		"  ":               "",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, normalizeMetricName(input), "input %q", input)
	}
}
