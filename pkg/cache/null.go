package cache

import (
	"context"
	"time"
)

// NullCache backs `--no-cache` and the "none" backend: every manifest is
// parsed on each run and Clear has nothing to remove.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() *NullCache {
	return &NullCache{}
}

func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (c *NullCache) Delete(ctx context.Context, key string) error { return nil }
func (c *NullCache) Clear(ctx context.Context) error              { return nil }
func (c *NullCache) Close() error                                 { return nil }

var (
	_ Cache   = (*NullCache)(nil)
	_ Clearer = (*NullCache)(nil)
)
