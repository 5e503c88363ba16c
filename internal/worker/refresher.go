package worker

import (
	"context"
	"strings"
	"time"

	"github.com/Doc-Inf/Finanza/internal/cache"
	"github.com/Doc-Inf/Finanza/internal/extractor"
	"github.com/Doc-Inf/Finanza/internal/fetcher"
	"github.com/Doc-Inf/Finanza/internal/queue"
	"github.com/Doc-Inf/Finanza/internal/repo"
	"github.com/Doc-Inf/Finanza/pkg/logger"
)

// Refresher runs one fetch-extract-store cycle. Shared by the queue worker
// and the API's synchronous refresh path.
type Refresher struct {
	fetcher   *fetcher.Fetcher
	extractor *extractor.Extractor
	repo      *repo.QuoteRepo
	htmlCache *cache.HTMLCache
}

func NewRefresher(f *fetcher.Fetcher, r *repo.QuoteRepo, htmlCache *cache.HTMLCache) *Refresher {
	return &Refresher{
		fetcher:   f,
		extractor: extractor.New(),
		repo:      r,
		htmlCache: htmlCache,
	}
}

// Refresh fetches the page for symbol (cache first), extracts and persists.
// A reachable page with nothing extractable is a success with
// EmptyExtraction set; only transport and storage faults fail the task.
func (r *Refresher) Refresh(ctx context.Context, symbol string) queue.RefreshResult {
	log := logger.Log
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	result := queue.RefreshResult{Symbol: symbol}

	html, fromCache := r.cachedHTML(ctx, symbol)
	if !fromCache {
		fetched, err := r.fetcher.FetchQuotePage(ctx, symbol)
		if err != nil {
			result.Error = err.Error()
			result.FinishedAt = time.Now().UTC()
			return result
		}
		if !fetched.OK() {
			result.Error = fetched.Failure
			result.FinishedAt = time.Now().UTC()
			return result
		}
		html = fetched.HTML
		r.storeHTML(ctx, symbol, html)
	}
	result.FromCache = fromCache

	quote, err := r.extractor.Extract(html, symbol)
	if err != nil {
		result.Error = "parse document: " + err.Error()
		result.FinishedAt = time.Now().UTC()
		return result
	}

	if quote.IsEmpty() {
		// page reachable but format likely changed
		log.Warn().Str("symbol", symbol).Msg("extraction came back empty")
		result.EmptyExtraction = true
	}

	if err := r.repo.Upsert(ctx, quote); err != nil {
		result.Error = "store quote: " + err.Error()
		result.FinishedAt = time.Now().UTC()
		return result
	}

	result.Success = true
	result.FieldsFound = quote.FieldsFound()
	result.FinishedAt = time.Now().UTC()

	log.Info().
		Str("symbol", symbol).
		Int("fields", result.FieldsFound).
		Bool("from_cache", fromCache).
		Msg("quote refreshed")

	return result
}

func (r *Refresher) cachedHTML(ctx context.Context, symbol string) (string, bool) {
	if r.htmlCache == nil {
		return "", false
	}
	return r.htmlCache.Get(ctx, symbol)
}

func (r *Refresher) storeHTML(ctx context.Context, symbol, html string) {
	if r.htmlCache == nil {
		return
	}
	if err := r.htmlCache.Set(ctx, symbol, html); err != nil {
		logger.Log.Debug().Err(err).Str("symbol", symbol).Msg("html cache set error")
	}
}
