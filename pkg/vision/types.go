// Package vision interprets free-text vision model responses about UI
// screenshots. It converts a marker-delimited response into typed UI element
// records, derives canonical color and typography systems from those
// elements, and computes WCAG contrast ratios.
package vision

// Geometry is an element's bounding box in screenshot pixel space.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Typography describes an element's text styling. Every field is
// independently optional; nil means the value was not determinable from
// the model response.
type Typography struct {
	FontFamily *string  `json:"fontFamily,omitempty"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	FontWeight *string  `json:"fontWeight,omitempty"`
	Color      *string  `json:"color,omitempty"`
}

// IsEmpty reports whether no typography field is set.
func (t *Typography) IsEmpty() bool {
	return t == nil || (t.FontFamily == nil && t.FontSize == nil && t.FontWeight == nil && t.Color == nil)
}

// Appearance describes an element's surface styling. Same optionality rule
// as Typography.
type Appearance struct {
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
	BorderColor     *string  `json:"borderColor,omitempty"`
	BorderWidth     *float64 `json:"borderWidth,omitempty"`
	BorderRadius    *float64 `json:"borderRadius,omitempty"`
}

// IsEmpty reports whether no appearance field is set.
func (a *Appearance) IsEmpty() bool {
	return a == nil || (a.BackgroundColor == nil && a.BorderColor == nil && a.BorderWidth == nil && a.BorderRadius == nil)
}

// Normalize collapses an all-absent appearance to nil so downstream
// consumers see "no appearance data" instead of an object of nulls.
func (a *Appearance) Normalize() *Appearance {
	if a.IsEmpty() {
		return nil
	}
	return a
}

// DefaultElementState is assigned when the model omits an element's state.
const DefaultElementState = "active"

// UIElement is one UI element extracted from the model response. The ID is
// externally assigned by the model's enumeration and is unique within one
// analysis.
type UIElement struct {
	ID            int         `json:"id"`
	Type          string      `json:"type"`
	Label         *string     `json:"label,omitempty"`
	TextContent   *string     `json:"textContent,omitempty"`
	Geometry      Geometry    `json:"geometry"`
	Typography    *Typography `json:"typography,omitempty"`
	Appearance    *Appearance `json:"appearance,omitempty"`
	State         string      `json:"state"`
	Description   *string     `json:"description,omitempty"`
	ContrastRatio *float64    `json:"contrastRatio,omitempty"`
}

// ColorPalette categorizes the colors found on a screen.
type ColorPalette struct {
	Backgrounds  []string `json:"backgrounds"`
	TextColors   []string `json:"textColors"`
	AccentColors []string `json:"accentColors"`
}

// TypographyStyle is one deduplicated system-level text style. Color is
// intentionally excluded since it is a per-element attribute, not a
// system-level style.
type TypographyStyle struct {
	FontFamily *string  `json:"fontFamily,omitempty"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	FontWeight *string  `json:"fontWeight,omitempty"`
}

// AuditMetric is one qualitative assessment within a visual audit category.
type AuditMetric struct {
	Assessment *string `json:"assessment"`
	Details    *string `json:"details"`
}

// AuditCategories are the fixed visual audit categories.
var AuditCategories = []string{"accessibility", "consistency", "layout", "clarity"}

// VisualAudit maps category -> metric name -> assessment.
type VisualAudit map[string]map[string]AuditMetric

// NewVisualAudit returns an audit with every fixed category present and empty.
func NewVisualAudit() VisualAudit {
	audit := make(VisualAudit, len(AuditCategories))
	for _, category := range AuditCategories {
		audit[category] = make(map[string]AuditMetric)
	}
	return audit
}

// AnalysisResult is the parsed interpretation of one model response.
// It is immutable once stored on the session.
type AnalysisResult struct {
	Description      string            `json:"description"`
	Elements         []UIElement       `json:"elements"`
	ColorPalette     *ColorPalette     `json:"colorPalette,omitempty"`
	TypographySystem []TypographyStyle `json:"typographySystem,omitempty"`
	VisualAudit      VisualAudit       `json:"visualAudit,omitempty"`
}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}
