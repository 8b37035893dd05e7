// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

// Package cache is a thread-safe in-memory TTL cache used to hold
// computed analytics payloads between collection runs. Entries expire
// after a fixed TTL; a background goroutine sweeps expired entries so
// the map does not grow without bound between reads.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

type entry struct {
	data      interface{}
	expiresAt time.Time
}

// Cache stores values with a shared time-to-live.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Keys      int
}

// sweepInterval paces the background cleanup of expired entries.
const sweepInterval = time.Minute

// New creates a cache whose entries expire after ttl and starts the
// cleanup goroutine. The goroutine lives for the process lifetime, which
// is fine for the handful of caches the server creates at startup.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
	go c.sweepLoop()
	return c
}

// Get returns the value stored under key, if present and not expired.
// An expired entry is deleted on the spot and counts as a miss.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.misses.Add(1)
		c.evictions.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return e.data, true
}

// Set stores value under key with the cache's TTL, replacing any
// existing entry.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = entry{data: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Delete removes one entry. No-op for absent keys.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()

	if ok {
		c.evictions.Add(1)
	}
}

// Clear drops every entry, e.g. after a new dataset lands.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]entry)
	c.mu.Unlock()

	c.evictions.Add(int64(n))
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	keys := len(c.entries)
	c.mu.RUnlock()

	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Keys:      keys,
	}
}

// HitRate returns the hit percentage over all lookups, 0 when idle.
func (c *Cache) HitRate() float64 {
	s := c.Stats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		c.sweep()
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			c.evictions.Add(1)
		}
	}
}

// Key derives a stable cache key from an operation name and its
// parameters. Parameters are JSON-encoded and hashed so arbitrarily
// large filter structs still produce compact keys.
func Key(op string, params interface{}) string {
	if params == nil {
		return op
	}
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", op, params)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", op, sum[:8])
}
