// Package cache holds small in-memory caches shared by feeds and the web daemon.
package cache

import (
	"fmt"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/mitchellh/hashstructure/v2"
)

// Dedupe remembers the hashes of recently seen values.
type Dedupe struct {
	mu    sync.Mutex
	cache *lru.Cache
}

func NewDedupe(size int) *Dedupe {
	return &Dedupe{cache: lru.New(size)}
}

// Pass returns true if v has not been seen recently (and remembers it),
// using a Least Recently Used (LRU) cache.
// Values that cannot be hashed never pass.
func (d *Dedupe) Pass(v any) bool {
	hash, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
	if err != nil {
		return false
	}
	key := fmt.Sprintf("%d", hash)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.cache.Get(key); ok {
		return false
	}
	d.cache.Add(key, true)
	return true
}

func (d *Dedupe) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cache.Len()
}
