package extractor

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// Month-name date with a clock time and timezone, e.g.
// "January 2 at 4:00:01 PM EST". Stored verbatim, no calendar parsing.
const timeExpr = `((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:,\s*\d{4})?\s+at\s+\d{1,2}:\d{2}(?::\d{2})?\s*[AP]M\s+[A-Z]{2,5})`

var (
	closeTimeRegex = regexp.MustCompile(`At close:\s*` + timeExpr)
	afterTimeRegex = regexp.MustCompile(`After hours:\s*` + timeExpr)
)

// ExtractCloseTime finds the regular-session close timestamp, container text
// first, then the whole flattened document.
func ExtractCloseTime(doc *goquery.Document) string {
	return extractAnchoredTime(doc, closeTimeRegex)
}

// ExtractAfterHoursTime finds the post-market timestamp.
func ExtractAfterHoursTime(doc *goquery.Document) string {
	return extractAnchoredTime(doc, afterTimeRegex)
}

func extractAnchoredTime(doc *goquery.Document, re *regexp.Regexp) string {
	for _, sel := range headerContainerSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		if m := re.FindStringSubmatch(flattenText(container)); m != nil {
			return m[1]
		}
	}
	if m := re.FindStringSubmatch(flattenText(doc.Selection)); m != nil {
		return m[1]
	}
	return ""
}
