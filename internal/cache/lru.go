// Package cache provides the in-memory store for rendered map fragments.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// ErrMiss is returned by Get when a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

type entry struct {
	value     any
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// LRU is a size-bounded cache with per-entry expiry. It implements
// interfaces.CacheProvider and is safe for concurrent use.
type LRU struct {
	entries    *lru.Cache[string, entry]
	defaultTTL time.Duration
	now        func() time.Time
}

// Option configures an LRU.
type Option func(*LRU)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *LRU) {
		if now != nil {
			c.now = now
		}
	}
}

// NewLRU builds a cache holding at most size entries. defaultTTL applies to
// Set calls with a zero ttl; zero keeps such entries until evicted.
func NewLRU(size int, defaultTTL time.Duration, opts ...Option) (*LRU, error) {
	entries, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	c := &LRU{
		entries:    entries,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *LRU) Get(_ context.Context, key string) (any, error) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if e.expired(c.now()) {
		c.entries.Remove(key)
		return nil, ErrMiss
	}
	return e.value, nil
}

func (c *LRU) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries.Add(key, e)
	return nil
}

func (c *LRU) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

func (c *LRU) Clear(context.Context) error {
	c.entries.Purge()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *LRU) Len() int {
	return c.entries.Len()
}

var _ interfaces.CacheProvider = (*LRU)(nil)
