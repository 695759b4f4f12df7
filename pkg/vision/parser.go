package vision

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/entrhq/uiscope/pkg/logging"
)

// Section markers the model is instructed to emit. The parser tolerates
// any of them being absent.
const (
	descriptionStartMarker = "--- Description Start ---"
	descriptionEndMarker   = "--- Description End ---"
	elementStartMarker     = "--- Element Start ---"
	elementEndMarker       = "--- Element End ---"
	paletteStartMarker     = "--- Color Palette Start ---"
	paletteEndMarker       = "--- Color Palette End ---"
	typographyStartMarker  = "--- Typography Start ---"
	typographyEndMarker    = "--- Typography End ---"
	auditStartMarker       = "--- Visual Audit Start ---"
	auditEndMarker         = "--- Visual Audit End ---"
)

// DescriptionFallback is returned when the response has no description section.
const DescriptionFallback = "Failed to parse screen description from model response"

// Keys extracted from brace-delimited nested objects.
var nestedObjectKeys = []string{
	"x", "y", "width", "height",
	"fontFamily", "fontSize", "fontWeight", "color",
	"backgroundColor", "borderColor", "borderWidth", "borderRadius",
	"assessment",
}

var (
	// Per-key pattern: tolerant of quoted or bare values. Bare values are
	// cut at the next comma or closing brace.
	nestedKeyPatterns = buildNestedKeyPatterns()

	braceBodyRegex  = regexp.MustCompile(`(?s)\{(.*)\}`)
	unitSuffixRegex = regexp.MustCompile(`(?i)(px|pt|rem|em|%)\s*$`)
	auditMetricRe   = regexp.MustCompile(`^[-*]\s*([^:{]+):\s*\{(.*)\}`)
	detailsValueRe  = regexp.MustCompile(`(?i)"?\bdetails\b"?\s*:\s*("[^"]*"|'[^']*'|[^}]+)`)
)

func buildNestedKeyPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(nestedObjectKeys))
	for _, key := range nestedObjectKeys {
		patterns[key] = regexp.MustCompile(`(?i)"?\b` + key + `\b"?\s*:\s*("[^"]*"|'[^']*'|[^,}]+)`)
	}
	return patterns
}

// Parser converts one raw model response into an AnalysisResult.
//
// Parse is total: malformed elements, lines, or sections are skipped at the
// smallest possible granularity and replaced with safe defaults; the overall
// parse never fails. Skipped units leave a diagnostic in the log.
type Parser struct {
	logger *logging.Logger
}

// NewParser creates a parser. A nil logger disables diagnostics.
func NewParser(logger *logging.Logger) *Parser {
	return &Parser{logger: logger}
}

func (p *Parser) warnf(format string, v ...interface{}) {
	if p.logger != nil {
		p.logger.Warnf(format, v...)
	}
}

// Parse interprets a raw model response.
func (p *Parser) Parse(raw string) *AnalysisResult {
	return &AnalysisResult{
		Description:      p.parseDescription(raw),
		Elements:         p.parseElements(raw),
		ColorPalette:     p.parsePalette(raw),
		TypographySystem: p.parseTypographySummary(raw),
		VisualAudit:      p.parseVisualAudit(raw),
	}
}

// sectionBody returns the trimmed text between a section's start and end
// markers, or false if either marker is missing.
func sectionBody(raw, start, end string) (string, bool) {
	startIdx := strings.Index(raw, start)
	if startIdx < 0 {
		return "", false
	}
	rest := raw[startIdx+len(start):]
	endIdx := strings.Index(rest, end)
	if endIdx < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:endIdx]), true
}

func (p *Parser) parseDescription(raw string) string {
	body, ok := sectionBody(raw, descriptionStartMarker, descriptionEndMarker)
	if !ok {
		p.warnf("response has no description section, using fallback")
		return DescriptionFallback
	}
	return body
}

// parseElements splits the response on the element start marker and parses
// each block independently. A block that fails to produce a valid element
// is dropped without affecting its siblings.
func (p *Parser) parseElements(raw string) []UIElement {
	blocks := strings.Split(raw, elementStartMarker)
	elements := make([]UIElement, 0, len(blocks))

	for _, block := range blocks[1:] {
		if endIdx := strings.Index(block, elementEndMarker); endIdx >= 0 {
			block = block[:endIdx]
		}
		element, ok := p.parseElementBlock(block)
		if !ok {
			continue
		}
		elements = append(elements, *element)
	}

	return elements
}

// parseElementBlock tokenizes one element block line-by-line into key/value
// pairs. The element is accepted only if its id parses to an integer.
func (p *Parser) parseElementBlock(block string) (*UIElement, bool) {
	scalars := make(map[string]string)
	var geometryRaw, typographyRaw, appearanceRaw string

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		colonIdx := strings.Index(line, ":")
		if colonIdx < 0 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(strings.TrimLeft(line[:colonIdx], "-* ")))
		value := strings.TrimSpace(line[colonIdx+1:])

		switch key {
		case "id", "type", "label", "textcontent", "state", "description":
			scalars[key] = value
		case "geometry":
			geometryRaw = value
		case "typography":
			typographyRaw = value
		case "appearance":
			appearanceRaw = value
		}
	}

	id, ok := parseElementID(scalars["id"])
	if !ok {
		p.warnf("dropping element block without a parseable integer id (id=%q)", scalars["id"])
		return nil, false
	}

	element := &UIElement{
		ID:    id,
		Type:  scalarValue(scalars, "type"),
		State: scalarValue(scalars, "state"),
	}
	if element.State == "" {
		element.State = DefaultElementState
	}
	element.Label = optionalScalar(scalars, "label")
	element.TextContent = optionalScalar(scalars, "textcontent")
	element.Description = optionalScalar(scalars, "description")

	// Acceptance fills defaults for missing nested objects; an all-absent
	// appearance collapses back to absent.
	if geometry := p.parseGeometry(geometryRaw); geometry != nil {
		element.Geometry = *geometry
	}
	element.Typography = p.parseTypography(typographyRaw)
	if element.Typography == nil {
		element.Typography = &Typography{}
	}
	element.Appearance = p.parseAppearance(appearanceRaw).Normalize()

	return element, true
}

func parseElementID(raw string) (int, bool) {
	cleaned := cleanValue(raw)
	if cleaned == "" || isNullLiteral(cleaned) {
		return 0, false
	}
	id, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, false
	}
	return id, true
}

// scalarValue returns a scalar stored verbatim (trimmed), with the literal
// "null" mapped to empty.
func scalarValue(scalars map[string]string, key string) string {
	value := strings.TrimSpace(scalars[key])
	if isNullLiteral(value) {
		return ""
	}
	return value
}

func optionalScalar(scalars map[string]string, key string) *string {
	value, present := scalars[key]
	if !present {
		return nil
	}
	value = strings.TrimSpace(value)
	if value == "" || isNullLiteral(value) {
		return nil
	}
	return &value
}

// parseGeometry extracts the numeric sub-keys of a brace-delimited geometry
// object. Returns nil when no sub-key is present.
func (p *Parser) parseGeometry(raw string) *Geometry {
	body, ok := braceBody(raw)
	if !ok {
		return nil
	}

	geometry := &Geometry{}
	found := false
	assign := map[string]*int{
		"x": &geometry.X, "y": &geometry.Y,
		"width": &geometry.Width, "height": &geometry.Height,
	}
	for key, target := range assign {
		if num, ok := nestedNumber(body, key); ok {
			*target = int(num)
			found = true
		}
	}

	if !found {
		return nil
	}
	return geometry
}

// parseTypography extracts the sub-keys of a brace-delimited typography
// object. Returns nil when every sub-key is absent.
func (p *Parser) parseTypography(raw string) *Typography {
	body, ok := braceBody(raw)
	if !ok {
		return nil
	}

	typography := &Typography{
		FontFamily: nestedString(body, "fontFamily"),
		FontWeight: nestedString(body, "fontWeight"),
		Color:      nestedString(body, "color"),
	}
	if size, ok := nestedNumber(body, "fontSize"); ok {
		typography.FontSize = floatPtr(size)
	}

	if typography.IsEmpty() {
		return nil
	}
	return typography
}

// parseAppearance extracts the sub-keys of a brace-delimited appearance
// object. Returns nil when every sub-key is absent.
func (p *Parser) parseAppearance(raw string) *Appearance {
	body, ok := braceBody(raw)
	if !ok {
		return nil
	}

	appearance := &Appearance{
		BackgroundColor: nestedString(body, "backgroundColor"),
		BorderColor:     nestedString(body, "borderColor"),
	}
	if width, ok := nestedNumber(body, "borderWidth"); ok {
		appearance.BorderWidth = floatPtr(width)
	}
	if radius, ok := nestedNumber(body, "borderRadius"); ok {
		appearance.BorderRadius = floatPtr(radius)
	}

	return appearance.Normalize()
}

func braceBody(raw string) (string, bool) {
	match := braceBodyRegex.FindStringSubmatch(raw)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// nestedString extracts one sub-key as a cleaned string, mapping the
// literal "null" and empty values to nil.
func nestedString(body, key string) *string {
	match := nestedKeyPatterns[key].FindStringSubmatch(body)
	if match == nil {
		return nil
	}
	value := cleanValue(match[1])
	if value == "" || isNullLiteral(value) {
		return nil
	}
	return &value
}

// nestedNumber extracts one sub-key coerced to a number. A value that does
// not parse even after stripping a trailing unit suffix is treated as
// absent.
func nestedNumber(body, key string) (float64, bool) {
	match := nestedKeyPatterns[key].FindStringSubmatch(body)
	if match == nil {
		return 0, false
	}
	value := unitSuffixRegex.ReplaceAllString(cleanValue(match[1]), "")
	num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// cleanValue trims whitespace and quoting and strips the leading "~"
// estimation marker the model uses for approximate values.
func cleanValue(value string) string {
	value = strings.TrimSpace(value)
	value = strings.Trim(value, `"'`)
	value = strings.TrimPrefix(value, "~")
	return strings.TrimSpace(value)
}

func isNullLiteral(value string) bool {
	return strings.EqualFold(value, "null")
}

// parsePalette parses the color palette section into categorized color
// lists. Returns nil when the section is absent. Note that report assembly
// discards this palette in favor of the one derived from elements.
func (p *Parser) parsePalette(raw string) *ColorPalette {
	body, ok := sectionBody(raw, paletteStartMarker, paletteEndMarker)
	if !ok {
		p.warnf("response has no color palette section")
		return nil
	}

	palette := &ColorPalette{
		Backgrounds:  []string{},
		TextColors:   []string{},
		AccentColors: []string{},
	}

	for _, line := range strings.Split(body, "\n") {
		colonIdx := strings.Index(line, ":")
		if colonIdx < 0 {
			continue
		}

		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(strings.TrimLeft(line[:colonIdx], "-* ")), " ", ""))
		values := parseColorList(line[colonIdx+1:])

		switch key {
		case "backgrounds", "backgroundcolors":
			palette.Backgrounds = append(palette.Backgrounds, values...)
		case "textcolors", "text":
			palette.TextColors = append(palette.TextColors, values...)
		case "accentcolors", "accents":
			palette.AccentColors = append(palette.AccentColors, values...)
		default:
			p.warnf("skipping unknown palette line %q", strings.TrimSpace(line))
		}
	}

	return palette
}

func parseColorList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.Trim(strings.TrimSpace(part), `"'[]()`)
		if value == "" || isNullLiteral(value) {
			continue
		}
		values = append(values, value)
	}
	return values
}

// parseTypographySummary parses the typography section: one brace-delimited
// object per "-" line. Values are split naively on ":" and ",", so a value
// containing a bare comma is cut short.
func (p *Parser) parseTypographySummary(raw string) []TypographyStyle {
	body, ok := sectionBody(raw, typographyStartMarker, typographyEndMarker)
	if !ok {
		p.warnf("response has no typography section")
		return nil
	}

	var styles []TypographyStyle
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		inner, ok := braceBody(line)
		if !ok {
			p.warnf("skipping typography line without a brace object: %q", line)
			continue
		}

		style := TypographyStyle{}
		found := false
		for _, pair := range strings.Split(inner, ",") {
			colonIdx := strings.Index(pair, ":")
			if colonIdx < 0 {
				continue
			}
			key := strings.ToLower(strings.ReplaceAll(cleanValue(pair[:colonIdx]), " ", ""))
			value := cleanValue(pair[colonIdx+1:])
			if value == "" || isNullLiteral(value) {
				continue
			}

			switch key {
			case "fontfamily":
				style.FontFamily = strPtr(value)
				found = true
			case "fontsize":
				stripped := unitSuffixRegex.ReplaceAllString(value, "")
				if size, err := strconv.ParseFloat(strings.TrimSpace(stripped), 64); err == nil {
					style.FontSize = floatPtr(size)
					found = true
				}
			case "fontweight":
				style.FontWeight = strPtr(value)
				found = true
			}
		}

		if found {
			styles = append(styles, style)
		}
	}

	return styles
}

// parseVisualAudit scans the audit section for category headers and
// "- Metric Name: { assessment: ..., details: ... }" lines. A metric line
// before any category header is dropped.
func (p *Parser) parseVisualAudit(raw string) VisualAudit {
	audit := NewVisualAudit()

	body, ok := sectionBody(raw, auditStartMarker, auditEndMarker)
	if !ok {
		p.warnf("response has no visual audit section")
		return audit
	}

	currentCategory := ""
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if match := auditMetricRe.FindStringSubmatch(line); match != nil {
			if currentCategory == "" {
				p.warnf("dropping audit metric before any category header: %q", line)
				continue
			}
			name := normalizeMetricName(match[1])
			if name == "" {
				continue
			}
			audit[currentCategory][name] = AuditMetric{
				Assessment: auditFieldValue(match[2], nestedKeyPatterns["assessment"]),
				Details:    auditFieldValue(match[2], detailsValueRe),
			}
			continue
		}

		if category := matchAuditCategory(line); category != "" {
			currentCategory = category
		}
	}

	return audit
}

func matchAuditCategory(line string) string {
	cleaned := strings.ToLower(strings.TrimSpace(strings.Trim(line, "#*-: \t")))
	for _, category := range AuditCategories {
		if cleaned == category {
			return category
		}
	}
	return ""
}

func auditFieldValue(body string, pattern *regexp.Regexp) *string {
	match := pattern.FindStringSubmatch(body)
	if match == nil {
		return nil
	}
	value := cleanValue(match[1])
	if value == "" || isNullLiteral(value) {
		return nil
	}
	return &value
}

// normalizeMetricName converts a metric label to a lowerCamel key:
// "Color Contrast" -> "colorContrast".
func normalizeMetricName(name string) string {
	words := strings.Fields(strings.TrimSpace(name))
	if len(words) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(strings.ToLower(words[0]))
	for _, word := range words[1:] {
		builder.WriteString(strings.ToUpper(word[:1]))
		builder.WriteString(word[1:])
	}
	return builder.String()
}
