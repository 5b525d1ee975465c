package cache

import (
	"context"
	"errors"
	"time"
)

// Store 保存带过期时间的字节值。实现必须支持并发调用。
type Store interface {
	// Get 返回未过期的值，不存在或已过期时返回 ErrNotFound。
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入值，ttl <= 0 表示永不过期。
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete 删除条目，条目不存在时不报错。
	Delete(ctx context.Context, key string) error

	// Close 释放底层资源。
	Close() error
}

// ErrNotFound 表示缓存不存在。
var ErrNotFound = errors.New("cache entry not found")

func expiryFrom(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

func expired(now, expiresAt time.Time) bool {
	return !expiresAt.IsZero() && !now.Before(expiresAt)
}
