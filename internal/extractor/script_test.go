package extractor

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestExtract_StateJSONFallback(t *testing.T) {
	// no structured markup at all, only the serialized state
	html := `<html><body><script>
root.App.main = {"context":{"dispatcher":{"stores":{"QuoteSummaryStore":{"price":{"regularMarketPrice":{"raw":193.42,"fmt":"193.42"},"regularMarketChange":{"raw":-1.05},"regularMarketChangePercent":{"raw":-0.54}}}}}}};
</script></body></html>`

	q, err := New().Extract(html, "AAPL")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	assertFloat(t, "Price", q.Price, 193.42)
	assertFloat(t, "Change", q.Change, -1.05)
	assertFloat(t, "ChangePercent", q.ChangePercent, -0.54)
}

func TestExtract_StateJSONBareNumbers(t *testing.T) {
	html := `<html><body><script>
root.App.main = {"context":{"dispatcher":{"stores":{"QuoteSummaryStore":{"price":{"regularMarketPrice":193.42,"regularMarketChange":1.1,"regularMarketChangePercent":0.57}}}}}};
</script></body></html>`

	q, err := New().Extract(html, "AAPL")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	assertFloat(t, "Price", q.Price, 193.42)
	assertFloat(t, "Change", q.Change, 1.1)
}

func TestExtract_TruncatedStateFallsThrough(t *testing.T) {
	// invalid JSON, but the literal key-value substring survived; the regex
	// strategy must pick it up and nothing may panic
	html := `<html><body><script>
root.App.main = {"context":{"dispatcher":{"stores":{"QuoteSummaryStore":{"price":{"regularMarketPrice":{"raw":187.50},"regularMarketChange":{"raw":2.2
</script></body></html>`

	q, err := New().Extract(html, "AAPL")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	assertFloat(t, "Price", q.Price, 187.50)
	assertFloat(t, "Change", q.Change, 2.2)
}

func TestExtract_RegexStrategyScopedToScripts(t *testing.T) {
	// a quoted key-value shape in the visible page must not shadow the one
	// inside the serialized state
	html := `<html><body>
<p>"regularMarketPrice":{"raw":250000.1} quoted in an article</p>
<script>root.App.main = {"stores":{"price":{"regularMarketPrice":{"raw":141.18</script>
</body></html>`

	q, err := New().Extract(html, "AAPL")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	assertFloat(t, "Price", q.Price, 141.18)
}

func TestWalkPath(t *testing.T) {
	root := map[string]any{
		"data": map[string]any{
			"quoteSummary": map[string]any{
				"result": []any{
					map[string]any{"price": map[string]any{"regularMarketPrice": 10.5}},
				},
			},
		},
	}

	node := walkPath(root, []string{"data", "quoteSummary", "result", "0", "price"})
	obj, ok := node.(map[string]any)
	if !ok {
		t.Fatalf("walkPath returned %T, expected object", node)
	}
	if obj["regularMarketPrice"] != 10.5 {
		t.Errorf("unexpected leaf: %v", obj)
	}

	if walkPath(root, []string{"data", "missing"}) != nil {
		t.Error("missing key should yield nil")
	}
	if walkPath(root, []string{"data", "quoteSummary", "result", "7"}) != nil {
		t.Error("out-of-range index should yield nil")
	}
	if walkPath(root, []string{"data", "quoteSummary", "result", "x"}) != nil {
		t.Error("non-numeric index into array should yield nil")
	}
}

func TestFindPriceObject_StreamDataShape(t *testing.T) {
	root := map[string]any{
		"context": map[string]any{
			"dispatcher": map[string]any{
				"stores": map[string]any{
					"StreamDataStore": map[string]any{
						"quoteData": map[string]any{
							"GOOG": map[string]any{"regularMarketPrice": map[string]any{"raw": 2801.12}},
						},
					},
				},
			},
		},
	}

	obj := findPriceObject(root, "GOOG")
	if obj == nil {
		t.Fatal("expected the per-symbol price object")
	}
	if got := numValue(obj["regularMarketPrice"]); got == nil || *got != 2801.12 {
		t.Errorf("regularMarketPrice = %v", got)
	}
}

func TestNumValue(t *testing.T) {
	raw := map[string]any{"raw": 42.5, "fmt": "42.50"}
	if got := numValue(raw); got == nil || *got != 42.5 {
		t.Errorf("raw-object form = %v", got)
	}
	if got := numValue(7.25); got == nil || *got != 7.25 {
		t.Errorf("bare form = %v", got)
	}
	if got := numValue("3.14"); got == nil || *got != 3.14 {
		t.Errorf("string form = %v", got)
	}
	if numValue(nil) != nil {
		t.Error("nil leaf should yield nil")
	}
	if numValue(map[string]any{"fmt": "n/a"}) != nil {
		t.Error("object without raw should yield nil")
	}
}

func TestRawKeyValue(t *testing.T) {
	html := `{"postMarketPrice":{"raw":151.1},"regularMarketPrice":98.41,"regularMarketChange":{"raw":-0.22}}`

	if got := rawKeyValue(html, "regularMarketPrice"); got == nil || *got != 98.41 {
		t.Errorf("bare form = %v", got)
	}
	if got := rawKeyValue(html, "postMarketPrice"); got == nil || *got != 151.1 {
		t.Errorf("raw form = %v", got)
	}
	if got := rawKeyValue(html, "regularMarketChange"); got == nil || *got != -0.22 {
		t.Errorf("negative raw form = %v", got)
	}
	if rawKeyValue(html, "postMarketChange") != nil {
		t.Error("absent key should yield nil")
	}
}

func TestDecodeState_Garbage(t *testing.T) {
	cases := []string{
		"",
		"root.App.main = ;",
		"window.whatever = [1,2,3];",
		`root.App.main = {"unterminated": `,
	}
	for _, script := range cases {
		if got := decodeState(script); got != nil && len(got) > 0 {
			t.Errorf("decodeState(%q) = %v, expected nil", script, got)
		}
	}
}

func TestStateScripts_SelectsRelevantOnly(t *testing.T) {
	html := `<html><body>
<script>var analytics = true;</script>
<script>root.App.main = {"a":1};</script>
<script>{"regularMarketPrice":{"raw":5.5}}</script>
</body></html>`

	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(html))
	scripts := stateScripts(doc, regularSession)
	if len(scripts) != 2 {
		t.Fatalf("got %d candidate scripts, expected 2", len(scripts))
	}
}
