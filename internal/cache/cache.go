// Package cache holds the latest known price per symbol, independent of
// persistence. Entries are overwritten in arrival order and never deleted.
package cache

import (
	"sync"
	"time"
)

type Entry struct {
	Symbol    string
	Price     float64
	UpdatedAt time.Time
}

type PriceCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewPriceCache() *PriceCache {
	return &PriceCache{entries: make(map[string]Entry)}
}

func (c *PriceCache) Set(symbol string, price float64) {
	c.mu.Lock()
	c.entries[symbol] = Entry{Symbol: symbol, Price: price, UpdatedAt: time.Now()}
	c.mu.Unlock()
}

func (c *PriceCache) Get(symbol string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[symbol]
	return e, ok
}

func (c *PriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
