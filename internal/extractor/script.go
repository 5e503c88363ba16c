package extractor

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// The page's serialized state has moved between root keys across redesigns.
// stateAssignRegex catches the classic assignment form; the fallback is any
// script that mentions the price key at all.
var stateAssignRegex = regexp.MustCompile(`(?s)root\.App\.main\s*=\s*(\{.*\});?`)

// Candidate key paths down to the price sub-object, tried in order. Numeric
// segments index into arrays.
var statePricePaths = [][]string{
	{"context", "dispatcher", "stores", "QuoteSummaryStore", "price"},
	{"context", "dispatcher", "stores", "StreamDataStore", "quoteData"},
	{"data", "quoteSummary", "result", "0", "price"},
	{"quoteSummary", "result", "0", "price"},
}

// extractStateFields decodes the embedded state and walks the known path
// shapes down to the price object. Decode failures are swallowed, the
// cascade just moves on.
func extractStateFields(doc *goquery.Document, _ string, symbol string, spec sessionSpec) Fields {
	for _, raw := range stateScripts(doc, spec) {
		root := decodeState(raw)
		if root == nil {
			continue
		}
		priceObj := findPriceObject(root, symbol)
		if priceObj == nil {
			continue
		}
		f := Fields{
			Price:         numValue(priceObj[spec.statePriceKey]),
			Change:        numValue(priceObj[spec.stateChangeKey]),
			ChangePercent: numValue(priceObj[spec.statePercentKey]),
		}
		if !f.empty() {
			return f
		}
	}
	return Fields{}
}

func stateScripts(doc *goquery.Document, spec sessionSpec) []string {
	var scripts []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if strings.Contains(text, "root.App.main") || strings.Contains(text, `"`+spec.statePriceKey+`"`) {
			scripts = append(scripts, text)
		}
	})
	return scripts
}

func decodeState(script string) map[string]any {
	payload := script
	if m := stateAssignRegex.FindStringSubmatch(script); m != nil {
		payload = m[1]
	} else {
		start := strings.Index(script, "{")
		end := strings.LastIndex(script, "}")
		if start < 0 || end <= start {
			return nil
		}
		payload = script[start : end+1]
	}

	var root map[string]any
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		return nil
	}
	return root
}

func findPriceObject(root map[string]any, symbol string) map[string]any {
	for _, path := range statePricePaths {
		node := walkPath(root, path)
		if node == nil {
			continue
		}
		obj, ok := node.(map[string]any)
		if !ok {
			continue
		}
		// the stream-data shape nests per-symbol objects one level deeper
		if bySymbol, ok := obj[symbol].(map[string]any); ok {
			obj = bySymbol
		}
		return obj
	}
	return nil
}

// walkPath descends a decoded JSON tree along path. Numeric segments index
// arrays, everything else is a map key.
func walkPath(node any, path []string) any {
	cur := node
	for _, key := range path {
		switch typed := cur.(type) {
		case map[string]any:
			next, ok := typed[key]
			if !ok {
				return nil
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil
			}
			cur = typed[idx]
		default:
			return nil
		}
	}
	return cur
}

// numValue reads a numeric leaf that may be either a raw number or an object
// carrying a "raw" sub-field; both forms appear in the wild.
func numValue(v any) *float64 {
	switch typed := v.(type) {
	case float64:
		n := typed
		return &n
	case map[string]any:
		if raw, ok := typed["raw"]; ok {
			return numValue(raw)
		}
	case string:
		return ParseNumber(CleanPercent(typed))
	}
	return nil
}

// Per-key regexes, {"raw":n} form before the bare numeric form.
var rawKeyRegexes = buildRawKeyRegexes(regularSession, postSession)

func buildRawKeyRegexes(specs ...sessionSpec) map[string][]*regexp.Regexp {
	m := make(map[string][]*regexp.Regexp)
	for _, s := range specs {
		for _, key := range []string{s.statePriceKey, s.stateChangeKey, s.statePercentKey} {
			quoted := regexp.QuoteMeta(key)
			m[key] = []*regexp.Regexp{
				regexp.MustCompile(`"` + quoted + `"\s*:\s*\{\s*"raw"\s*:\s*(-?[0-9.]+)`),
				regexp.MustCompile(`"` + quoted + `"\s*:\s*(-?[0-9.]+)`),
			}
		}
	}
	return m
}

// extractStateRegexFields is the last resort: regex straight over the
// unparsed script text. Works even when the payload is truncated or not
// valid JSON as long as the literal key-value substring survived. Only
// script bodies are searched, quoted keys in the visible page don't count.
func extractStateRegexFields(doc *goquery.Document, _ string, _ string, spec sessionSpec) Fields {
	var out Fields
	for _, script := range stateScripts(doc, spec) {
		out = out.merge(Fields{
			Price:         rawKeyValue(script, spec.statePriceKey),
			Change:        rawKeyValue(script, spec.stateChangeKey),
			ChangePercent: rawKeyValue(script, spec.statePercentKey),
		})
		if out.complete() {
			break
		}
	}
	return out
}

func rawKeyValue(text, key string) *float64 {
	for _, re := range rawKeyRegexes[key] {
		if m := re.FindStringSubmatch(text); m != nil {
			return ParseNumber(m[1])
		}
	}
	return nil
}
