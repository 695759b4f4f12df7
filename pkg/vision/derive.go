package vision

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// FallbackBackground is injected when no background color can be derived,
// so contrast calculations always have a candidate.
const FallbackBackground = "#000000"

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// DeriveStyles recomputes a canonical color palette and typography system
// from the accepted elements. The result intentionally overrides whatever
// palette or typography summary the model's own sections stated.
//
// Hex colors are classified by luminance: dark (< 0.5) colors are treated
// as backgrounds, light ones as text colors. Non-hex color strings are
// classified as text colors unconditionally. No accent inference is
// performed, so AccentColors is always empty.
func DeriveStyles(elements []UIElement) (ColorPalette, []TypographyStyle) {
	return derivePalette(elements), deriveTypographySystem(elements)
}

func derivePalette(elements []UIElement) ColorPalette {
	palette := ColorPalette{
		Backgrounds:  []string{},
		TextColors:   []string{},
		AccentColors: []string{},
	}

	seen := make(map[string]bool)
	for _, element := range elements {
		for _, color := range elementColors(element) {
			if seen[color] {
				continue
			}
			seen[color] = true

			if isDarkHex(color) {
				palette.Backgrounds = append(palette.Backgrounds, color)
			} else {
				palette.TextColors = append(palette.TextColors, color)
			}
		}
	}

	if len(palette.Backgrounds) == 0 {
		palette.Backgrounds = append(palette.Backgrounds, FallbackBackground)
	}

	return palette
}

func elementColors(element UIElement) []string {
	var colors []string
	if element.Appearance != nil && element.Appearance.BackgroundColor != nil {
		colors = append(colors, *element.Appearance.BackgroundColor)
	}
	if element.Typography != nil && element.Typography.Color != nil {
		colors = append(colors, *element.Typography.Color)
	}
	return colors
}

// isDarkHex reports whether a #rrggbb color has perceived luminance below
// 0.5. Anything that is not a 6-digit hex color returns false.
func isDarkHex(color string) bool {
	if !hexColorRegex.MatchString(color) {
		return false
	}
	c, err := colorful.Hex(color)
	if err != nil {
		return false
	}
	luminance := 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
	return luminance < 0.5
}

// deriveTypographySystem deduplicates element typography on the
// {family, size, weight} triple, keeping the first occurrence of each
// unique combination in first-seen order. Color is excluded because it is
// a per-element attribute, not a system-level style.
func deriveTypographySystem(elements []UIElement) []TypographyStyle {
	seen := make(map[string]bool)
	styles := make([]TypographyStyle, 0)

	for _, element := range elements {
		if element.Typography == nil {
			continue
		}

		key := typographyKey(element.Typography)
		if seen[key] {
			continue
		}
		seen[key] = true

		styles = append(styles, TypographyStyle{
			FontFamily: element.Typography.FontFamily,
			FontSize:   element.Typography.FontSize,
			FontWeight: element.Typography.FontWeight,
		})
	}

	return styles
}

func typographyKey(t *Typography) string {
	family, size, weight := "unknown", "unknown", "unknown"
	if t.FontFamily != nil {
		family = *t.FontFamily
	}
	if t.FontSize != nil {
		size = strconv.FormatFloat(*t.FontSize, 'g', -1, 64)
	}
	if t.FontWeight != nil {
		weight = *t.FontWeight
	}
	return fmt.Sprintf("%s|%s|%s", family, size, weight)
}
