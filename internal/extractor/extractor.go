package extractor

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Doc-Inf/Finanza/pkg/models"
)

// Extractor recovers a structured quote record from a quote page whose
// markup keeps changing. Independent strategies run in a fixed order per
// field; absence comes back as nil fields, never as an error. Stateless,
// safe for concurrent use.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract runs the full cascade. The only error case is a document that
// cannot be tokenized at all; "nothing found" is a success with empty
// fields and the caller tells the two apart by inspecting the record.
func (e *Extractor) Extract(html string, symbol string) (*models.Quote, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	quote := &models.Quote{Symbol: symbol}

	regular := extractSessionFields(doc, html, symbol, regularSession)
	quote.Price = regular.Price
	quote.Change = regular.Change
	quote.ChangePercent = regular.ChangePercent

	quote.Name = ExtractName(doc)
	quote.MarketCloseTime = ExtractCloseTime(doc)

	post := extractSessionFields(doc, html, symbol, postSession)
	postTime := ExtractAfterHoursTime(doc)
	if !post.empty() || postTime != "" {
		quote.AfterHours = &models.SessionQuote{
			Price:         post.Price,
			Change:        post.Change,
			ChangePercent: post.ChangePercent,
			Time:          postTime,
		}
	}

	quote.RawSnapshot = CollectSnapshot(doc)
	quote.FetchedAt = time.Now().UTC()

	return quote, nil
}
