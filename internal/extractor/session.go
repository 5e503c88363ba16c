package extractor

// sessionSpec parameterizes the price cascade for one trading session. The
// same strategies run for the regular and the post-market session, they just
// look for different markers.
type sessionSpec struct {
	// fin-streamer data-field names
	priceField   string
	changeField  string
	percentField string

	// stable test-ids, independent of class-name churn
	priceTestID   string
	changeTestID  string
	percentTestID string

	// anchor phrase for the composite free-text pattern; anchorRequired
	// rejects unanchored matches (the post-market numbers sit next to the
	// regular ones, an unanchored match would read the wrong session)
	textAnchor     string
	anchorRequired bool

	// key names inside the embedded serialized state
	statePriceKey   string
	stateChangeKey  string
	statePercentKey string
}

var regularSession = sessionSpec{
	priceField:      "regularMarketPrice",
	changeField:     "regularMarketChange",
	percentField:    "regularMarketChangePercent",
	priceTestID:     "qsp-price",
	changeTestID:    "qsp-price-change",
	percentTestID:   "qsp-price-change-percent",
	textAnchor:      "At close:",
	statePriceKey:   "regularMarketPrice",
	stateChangeKey:  "regularMarketChange",
	statePercentKey: "regularMarketChangePercent",
}

var postSession = sessionSpec{
	priceField:      "postMarketPrice",
	changeField:     "postMarketChange",
	percentField:    "postMarketChangePercent",
	priceTestID:     "qsp-post-price",
	changeTestID:    "qsp-post-price-change",
	percentTestID:   "qsp-post-price-change-percent",
	textAnchor:      "After hours:",
	anchorRequired:  true,
	statePriceKey:   "postMarketPrice",
	stateChangeKey:  "postMarketChange",
	statePercentKey: "postMarketChangePercent",
}

// Fields is the partial result one strategy produced for one session.
type Fields struct {
	Price         *float64
	Change        *float64
	ChangePercent *float64
}

// merge folds a later strategy's candidates into already-accepted fields.
// First non-nil wins; an already-set field is never overwritten. Price
// candidates must additionally pass the plausibility filter, an implausible
// candidate leaves the field open for later strategies.
func (f Fields) merge(next Fields) Fields {
	if f.Price == nil && next.Price != nil && IsPlausiblePrice(*next.Price) {
		f.Price = next.Price
	}
	if f.Change == nil && next.Change != nil {
		f.Change = next.Change
	}
	if f.ChangePercent == nil && next.ChangePercent != nil {
		f.ChangePercent = next.ChangePercent
	}
	return f
}

func (f Fields) complete() bool {
	return f.Price != nil && f.Change != nil && f.ChangePercent != nil
}

func (f Fields) empty() bool {
	return f.Price == nil && f.Change == nil && f.ChangePercent == nil
}
