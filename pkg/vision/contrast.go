package vision

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/entrhq/uiscope/pkg/logging"
)

var rgbFuncRegex = regexp.MustCompile(`(?i)^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})`)

// AnnotateContrast computes a WCAG contrast ratio for each element in
// place. The foreground is the element's typography color; the background
// is the element's own background color when present, otherwise the first
// derived background from the palette. An element whose colors cannot be
// resolved or parsed keeps an absent ratio; annotation never fails the
// batch.
func AnnotateContrast(elements []UIElement, palette ColorPalette, logger *logging.Logger) {
	warnf := func(format string, v ...interface{}) {
		if logger != nil {
			logger.Warnf(format, v...)
		}
	}

	for i := range elements {
		element := &elements[i]
		element.ContrastRatio = nil

		if element.Typography == nil || element.Typography.Color == nil {
			warnf("element %d: no foreground color, skipping contrast", element.ID)
			continue
		}
		foreground := *element.Typography.Color

		var background string
		switch {
		case element.Appearance != nil && element.Appearance.BackgroundColor != nil:
			background = *element.Appearance.BackgroundColor
		case len(palette.Backgrounds) > 0:
			background = palette.Backgrounds[0]
			warnf("element %d: no background color, using palette fallback %s", element.ID, background)
		default:
			warnf("element %d: no background color available, skipping contrast", element.ID)
			continue
		}

		ratio, err := ContrastRatio(foreground, background)
		if err != nil {
			warnf("element %d: contrast computation failed: %v", element.ID, err)
			continue
		}
		element.ContrastRatio = floatPtr(ratio)
	}
}

// ContrastRatio computes the WCAG contrast ratio between two CSS color
// strings (hex or rgb()/rgba()), rounded to 2 decimal places. White on
// black yields 21.0.
func ContrastRatio(foreground, background string) (float64, error) {
	fg, err := parseCSSColor(foreground)
	if err != nil {
		return 0, fmt.Errorf("invalid foreground color %q: %w", foreground, err)
	}
	bg, err := parseCSSColor(background)
	if err != nil {
		return 0, fmt.Errorf("invalid background color %q: %w", background, err)
	}

	l1 := relativeLuminance(fg)
	l2 := relativeLuminance(bg)
	if l2 > l1 {
		l1, l2 = l2, l1
	}

	ratio := (l1 + 0.05) / (l2 + 0.05)
	return math.Round(ratio*100) / 100, nil
}

// parseCSSColor parses #rgb, #rrggbb, rgb(...) and rgba(...) strings.
func parseCSSColor(value string) (colorful.Color, error) {
	value = strings.TrimSpace(value)

	if strings.HasPrefix(value, "#") {
		return colorful.Hex(value)
	}

	if match := rgbFuncRegex.FindStringSubmatch(value); match != nil {
		r, _ := strconv.Atoi(match[1])
		g, _ := strconv.Atoi(match[2])
		b, _ := strconv.Atoi(match[3])
		if r > 255 || g > 255 || b > 255 {
			return colorful.Color{}, fmt.Errorf("rgb channel out of range in %q", value)
		}
		return colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}, nil
	}

	return colorful.Color{}, fmt.Errorf("unsupported color format %q", value)
}

// relativeLuminance implements the WCAG 2.x relative luminance definition
// with sRGB channel linearization.
func relativeLuminance(c colorful.Color) float64 {
	linearize := func(channel float64) float64 {
		if channel <= 0.03928 {
			return channel / 12.92
		}
		return math.Pow((channel+0.055)/1.055, 2.4)
	}
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}
