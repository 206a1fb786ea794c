package utils

import (
	"crypto/md5"
	"encoding/hex"
	"log"
	"strings"

	"github.com/nci/gomemcache/memcache"
)

// StatsCache caches encoded chunk outputs in memcached so orchestrators
// that re-dispatch identical chunks skip recomputation. With an empty URI
// the cache is a no-op.
type StatsCache struct {
	mc      *memcache.Client
	verbose bool
}

func NewStatsCache(mcURI string, verbose bool) *StatsCache {
	cache := &StatsCache{verbose: verbose}
	if len(strings.TrimSpace(mcURI)) > 0 {
		// lazy connection; errors returned in Get
		cache.mc = memcache.New(mcURI)
	}
	return cache
}

// CacheKey hashes the chunk identity parts into a fixed-size key.
func CacheKey(parts ...string) string {
	buff := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(buff[:])
}

func (c *StatsCache) Get(key string) ([]byte, bool) {
	if c.mc == nil {
		return nil, false
	}
	cached, err := c.mc.Get(key)
	if err != nil {
		return nil, false
	}
	return cached.Value, true
}

func (c *StatsCache) Put(key string, value []byte) {
	if c.mc == nil {
		return
	}
	// don't care about errors; memcache may not necessarily retain this anyway
	err := c.mc.Set(&memcache.Item{Key: key, Value: value})
	if err != nil && c.verbose {
		log.Printf("StatsCache: set error: %v", err)
	}
}
