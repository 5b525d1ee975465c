// Package cache implements the cache-aside layer in front of the remote
// metadata API. Values are JSON-encoded and stored under
// "{namespace}:{accountId}:{pathOrItemId}" keys with a TTL. Three stores are
// available: an in-process map, one file per key under StoragePath, and a
// single bbolt database. Resolve is the only way values enter the cache, and
// a failed computation always removes its key so errors are never served from
// cache.
package cache
