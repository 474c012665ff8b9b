package services

import "sync"

// PriceCache maps a market hash name to its resolved market price. Entries
// live for the whole process; there is no TTL and no eviction. A given name
// always resolves to the same upstream value within a run, so last-write-wins
// on a collision is harmless.
type PriceCache struct {
	mu     sync.RWMutex
	prices map[string]float64
}

func NewPriceCache() *PriceCache {
	return &PriceCache{
		prices: make(map[string]float64),
	}
}

func (c *PriceCache) Get(marketHashName string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	price, ok := c.prices[marketHashName]
	return price, ok
}

func (c *PriceCache) Put(marketHashName string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[marketHashName] = price
}

func (c *PriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.prices)
}
