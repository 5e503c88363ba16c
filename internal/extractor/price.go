package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// priceStrategy produces whatever fields it can for one session. Strategies
// are pure: they never see what earlier strategies found.
type priceStrategy func(doc *goquery.Document, html string, symbol string, spec sessionSpec) Fields

// Cascade order. First strategy to yield a plausible value for a field wins
// that field; later strategies cannot overwrite it.
var priceStrategies = []priceStrategy{
	extractStreamerFields,
	extractTestIDFields,
	extractHeaderTextFields,
	extractStateFields,
	extractStateRegexFields,
}

func extractSessionFields(doc *goquery.Document, html string, symbol string, spec sessionSpec) Fields {
	var out Fields
	for _, strategy := range priceStrategies {
		out = out.merge(strategy(doc, html, symbol, spec))
		if out.complete() {
			break
		}
	}
	return out
}

// extractStreamerFields reads the live-price streamer elements keyed by
// symbol and field name. The machine-readable data-value attribute is
// preferred over the rendered text.
func extractStreamerFields(doc *goquery.Document, _ string, symbol string, spec sessionSpec) Fields {
	return Fields{
		Price:         streamerValue(doc, symbol, spec.priceField),
		Change:        streamerValue(doc, symbol, spec.changeField),
		ChangePercent: streamerValue(doc, symbol, spec.percentField),
	}
}

func streamerValue(doc *goquery.Document, symbol, field string) *float64 {
	sel := fmt.Sprintf(`fin-streamer[data-symbol=%q][data-field=%q]`, symbol, field)
	el := doc.Find(sel).First()
	if el.Length() == 0 {
		return nil
	}
	if v, ok := el.Attr("data-value"); ok && v != "" {
		if n := ParseNumber(CleanPercent(v)); n != nil {
			return n
		}
	}
	return ParseNumber(CleanPercent(strings.TrimSpace(el.Text())))
}

// extractTestIDFields falls back to stable semantic test-ids. Class names
// churn with every page redesign, test-ids rarely do.
func extractTestIDFields(doc *goquery.Document, _ string, _ string, spec sessionSpec) Fields {
	return Fields{
		Price:         testIDValue(doc, spec.priceTestID),
		Change:        testIDValue(doc, spec.changeTestID),
		ChangePercent: testIDValue(doc, spec.percentTestID),
	}
}

func testIDValue(doc *goquery.Document, testID string) *float64 {
	el := doc.Find(fmt.Sprintf(`[data-testid=%q]`, testID)).First()
	if el.Length() == 0 {
		return nil
	}
	if v, ok := el.Attr("data-value"); ok && v != "" {
		if n := ParseNumber(CleanPercent(v)); n != nil {
			return n
		}
	}
	return ParseNumber(CleanPercent(strings.TrimSpace(el.Text())))
}

// Shape: "150.00 +1.25 +(0.84%) At close: ..." with an optional trailing
// clause. All three numbers come out of one match so they cannot be mixed
// up across unrelated elements.
var compositeTextRegex = regexp.MustCompile(
	`(\d[\d,]*\.?\d*)\s+([+-]\d[\d,]*\.?\d*)\s+[+-]?\(?([+-]?\d[\d,]*\.?\d*)%\)?`)

var headerContainerSelectors = []string{
	`[data-testid="quote-hdr"]`,
	`[data-testid="quote-header"]`,
	"section.container h1 ~ div",
	`div[id="quote-header-info"]`,
}

// extractHeaderTextFields matches the rendered header text in one pass.
// Structured attributes vanish from time to time while the visible text
// still carries price, change and percent next to each other.
func extractHeaderTextFields(doc *goquery.Document, _ string, _ string, spec sessionSpec) Fields {
	for _, sel := range headerContainerSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		if f := matchCompositeText(flattenText(container), spec); !f.empty() {
			return f
		}
	}
	return matchCompositeText(flattenText(doc.Selection), spec)
}

// matchCompositeText extracts all three numbers from one regex match. The
// numbers immediately precede the session anchor phrase, so with an anchor
// present the closest match before it wins; that keeps post-market numbers
// from being read off the regular-market display and vice versa. The
// regular session additionally accepts an unanchored match anywhere in the
// text, covering layouts that separate the numbers from the trailing clause.
func matchCompositeText(text string, spec sessionSpec) Fields {
	var m []string
	if idx := strings.Index(text, spec.textAnchor); idx >= 0 {
		start := idx - 80
		if start < 0 {
			start = 0
		}
		all := compositeTextRegex.FindAllStringSubmatch(text[start:idx], -1)
		if len(all) > 0 {
			m = all[len(all)-1]
		}
	}
	if m == nil {
		if spec.anchorRequired {
			return Fields{}
		}
		m = compositeTextRegex.FindStringSubmatch(text)
	}

	if m == nil {
		return Fields{}
	}
	return Fields{
		Price:         ParseNumber(m[1]),
		Change:        ParseNumber(m[2]),
		ChangePercent: ParseNumber(CleanPercent(m[3])),
	}
}

func flattenText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
