package cache

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// SymbolBloomFilter dedupes refresh enqueues within a scheduler cycle. A
// false positive just delays a symbol to the next cycle, which is harmless.
type SymbolBloomFilter struct {
	filter *bloom.BloomFilter
	mu     sync.RWMutex
}

func NewSymbolBloomFilter(expectedItems uint, fpRate float64) *SymbolBloomFilter {
	return &SymbolBloomFilter{
		filter: bloom.NewWithEstimates(expectedItems, fpRate),
	}
}

func (b *SymbolBloomFilter) Add(symbol string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.AddString(symbol)
}

func (b *SymbolBloomFilter) MayContain(symbol string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.TestString(symbol)
}

func (b *SymbolBloomFilter) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.ClearAll()
}
