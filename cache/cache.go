package cache

import (
	lru "github.com/hashicorp/golang-lru"
)

// SeenSet remembers the most recently added keys.
type SeenSet interface {
	// Seen reports whether key was already present, adding it if not.
	Seen(key string) bool
	Len() int
}

const DefaultCacheSize = 1024

type LocalCache struct {
	*lru.Cache
}

func NewLocalCache(size uint64) (SeenSet, error) {
	if size == 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(int(size))
	if err != nil {
		return nil, err
	}
	return &LocalCache{
		cache,
	}, nil
}

func (c *LocalCache) Seen(key string) bool {
	ok, _ := c.Cache.ContainsOrAdd(key, struct{}{})
	return ok
}

func (c *LocalCache) Len() int {
	return c.Cache.Len()
}
