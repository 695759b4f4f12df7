package browser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkoukk/tiktoken-go"
)

const (
	// outlineTokenBudget caps how much page context is added to the
	// vision prompt; the screenshot carries most of the signal.
	outlineTokenBudget = 1500

	maxOutlineHeadings = 20

	outlineEncoding = "cl100k_base"
)

// BuildOutline reduces a page's HTML to a compact text outline: title,
// meta description, headings, and rough interactive-element counts. The
// outline is supplementary prompt context for the vision model, so it is
// truncated to a token budget rather than reproduced in full.
func BuildOutline(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse page HTML: %w", err)
	}

	var builder strings.Builder

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		fmt.Fprintf(&builder, "Title: %s\n", title)
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if desc = strings.TrimSpace(desc); desc != "" {
			fmt.Fprintf(&builder, "Description: %s\n", desc)
		}
	}

	headings := 0
	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text == "" {
			return true
		}
		fmt.Fprintf(&builder, "%s: %s\n", goquery.NodeName(sel), text)
		headings++
		return headings < maxOutlineHeadings
	})

	fmt.Fprintf(&builder, "Counts: %d links, %d buttons, %d inputs, %d forms, %d images\n",
		doc.Find("a").Length(),
		doc.Find("button").Length(),
		doc.Find("input, select, textarea").Length(),
		doc.Find("form").Length(),
		doc.Find("img").Length(),
	)

	return truncateToTokenBudget(builder.String(), outlineTokenBudget), nil
}

// truncateToTokenBudget trims text to at most budget tokens. When the
// tokenizer is unavailable (e.g. encoding files cannot be loaded) it falls
// back to a conservative rune-count heuristic.
func truncateToTokenBudget(text string, budget int) string {
	encoder, err := tiktoken.GetEncoding(outlineEncoding)
	if err != nil {
		// ~4 characters per token is a safe approximation for English text
		limit := budget * 4
		runes := []rune(text)
		if len(runes) <= limit {
			return text
		}
		return string(runes[:limit])
	}

	tokens := encoder.Encode(text, nil, nil)
	if len(tokens) <= budget {
		return text
	}
	return encoder.Decode(tokens[:budget])
}
