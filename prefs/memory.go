package prefs

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/robertmeta/feedq/model"
)

// MemoryCache is an in-process LRU with per-entry expiry.
type MemoryCache struct {
	lru *expirable.LRU[int64, model.HiddenPreferenceSet]
}

// NewMemoryCache holds up to size sets for ttl each. A zero ttl never expires.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{lru: expirable.NewLRU[int64, model.HiddenPreferenceSet](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, userID int64) (model.HiddenPreferenceSet, bool, error) {
	set, ok := c.lru.Get(userID)
	return set, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, userID int64, set model.HiddenPreferenceSet) error {
	c.lru.Add(userID, set)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, userID int64) error {
	c.lru.Remove(userID)
	return nil
}

// Len reports how many sets are held.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}
