package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestHTMLCache_SetSkipsTinyPages(t *testing.T) {
	// nil client: a tiny body must be dropped before the cache is touched
	c := &HTMLCache{ttl: time.Minute}

	if err := c.Set(context.Background(), "AAPL", "<html>Access Denied</html>"); err != nil {
		t.Fatalf("Set returned error for skipped body: %v", err)
	}
	if err := c.Set(context.Background(), "AAPL", strings.Repeat("x", minCacheableHTMLLen-1)); err != nil {
		t.Fatalf("Set returned error at the size boundary: %v", err)
	}
}

func TestHTMLCache_KeyIsSymbolScoped(t *testing.T) {
	c := &HTMLCache{}

	if c.makeKey("AAPL") == c.makeKey("MSFT") {
		t.Error("different symbols must map to different keys")
	}
	if c.makeKey("AAPL") != c.makeKey("AAPL") {
		t.Error("key derivation must be deterministic")
	}
	if !strings.HasPrefix(c.makeKey("AAPL"), "quotehtml:") {
		t.Errorf("unexpected key shape: %q", c.makeKey("AAPL"))
	}
}
