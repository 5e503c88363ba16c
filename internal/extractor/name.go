package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const minNameLength = 3

// Candidate locations in priority order: test-id heading, semantically
// classed heading, any heading, page meta title.
var nameSelectors = []string{
	`[data-testid="quote-hdr"] h1`,
	`h1[data-testid]`,
	"h1.yf-quote-title",
	"div.quote-header h1",
	"h1",
	`meta[property="og:title"]`,
	"title",
}

// Consent-banner and similar boilerplate that sometimes ends up in the first
// heading of the served page.
var nameDenylist = []string{
	"cookie",
	"consent",
	"privacy",
	"verifying",
	"loading",
	"access denied",
}

var tickerSuffixRegex = regexp.MustCompile(`\s*\([A-Z0-9.\-=^]+\)\s*$`)

// ExtractName walks the candidate locations and returns the first usable
// company name, with a trailing "(TICKER)" suffix stripped.
func ExtractName(doc *goquery.Document) string {
	for _, sel := range nameSelectors {
		var text string
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		if el.Is("meta") {
			text, _ = el.Attr("content")
		} else {
			text = el.Text()
		}
		text = strings.TrimSpace(text)
		if len(text) <= minNameLength || isDenylistedName(text) {
			continue
		}
		name := strings.TrimSpace(tickerSuffixRegex.ReplaceAllString(text, ""))
		if len(name) <= minNameLength {
			continue
		}
		return name
	}
	return ""
}

func isDenylistedName(text string) bool {
	lower := strings.ToLower(text)
	for _, token := range nameDenylist {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
