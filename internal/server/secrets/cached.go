package secrets

import (
	"context"
	"sync/atomic"
)

// Cached wraps a Provider with a process-lifetime cache. The bundle is
// fetched lazily on first use and retained until the process exits; there is
// no TTL and no refresh. Concurrent first calls may fetch more than once,
// which only duplicates work.
type Cached struct {
	inner Provider
	val   atomic.Pointer[Bundle]
}

func NewCached(inner Provider) *Cached {
	return &Cached{inner: inner}
}

func (c *Cached) Fetch(ctx context.Context) (*Bundle, error) {
	if b := c.val.Load(); b != nil {
		return b, nil
	}
	b, err := c.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.val.Store(b)
	return b, nil
}

// Reset drops the cached bundle. Intended for tests; nothing in the serving
// path calls it.
func (c *Cached) Reset() {
	c.val.Store(nil)
}
