// Package cache provides sharedprefs.Cache implementations: an in-process
// map with TTLs and a Redis-backed cache for sharing reads across processes.
package cache

import "github.com/CreativeUnicorns/sharedprefs"

var (
	_ sharedprefs.Cache = (*MemoryCache)(nil)
	_ sharedprefs.Cache = (*RedisCache)(nil)
)
