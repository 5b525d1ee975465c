package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/any-index/any-index/internal/logging"
	"github.com/any-index/any-index/internal/metrics"
)

// Gateway 在 Store 之上实现 cache-aside 协议。
type Gateway struct {
	store  Store
	group  singleflight.Group
	logger *logrus.Logger
}

// NewGateway 包装 store；logger 为空时丢弃日志。
func NewGateway(store Store, logger *logrus.Logger) *Gateway {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Gateway{store: store, logger: logger}
}

// Resolve 命中时直接返回缓存值；未命中时调用 compute，将 JSON 编码写入 key，
// 并返回从写入字节解码出的值。compute 失败时 key 会被删除后再返回错误。
//
// 同一 key 的并发未命中共享一次 compute。compute 运行在脱离取消的 ctx 上，
// 每个调用方只因自己的 ctx 取消而提前返回，不影响其他等待者。
func Resolve[T any](ctx context.Context, g *Gateway, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	var zero T
	ns := NamespaceOf(key)

	if raw, ok := g.lookup(ctx, key); ok {
		var cached T
		err := json.Unmarshal(raw, &cached)
		if err == nil {
			metrics.RecordCacheLookup(ns, true)
			g.logger.WithFields(logging.CacheFields(ns, key, true)).Debug("cache_hit")
			return cached, nil
		}
		g.logger.WithFields(logging.CacheFields(ns, key, true)).
			WithError(err).Warn("cache_decode_failed")
		g.Invalidate(ctx, key)
	}
	metrics.RecordCacheLookup(ns, false)
	g.logger.WithFields(logging.CacheFields(ns, key, false)).Debug("cache_miss")

	flightCtx := context.WithoutCancel(ctx)
	ch := g.group.DoChan(key, func() (interface{}, error) {
		value, err := compute(flightCtx)
		if err != nil {
			g.Invalidate(flightCtx, key)
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			g.Invalidate(flightCtx, key)
			return nil, fmt.Errorf("encode cache value %s: %w", key, err)
		}
		if err := g.store.Set(flightCtx, key, raw, ttl); err != nil {
			g.logger.WithFields(logging.CacheFields(ns, key, false)).
				WithError(err).Warn("cache_write_failed")
		}
		return raw, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if res.Err != nil {
		return zero, res.Err
	}

	var out T
	if err := json.Unmarshal(res.Val.([]byte), &out); err != nil {
		return zero, fmt.Errorf("decode cache value %s: %w", key, err)
	}
	return out, nil
}

// Invalidate 删除单个条目，失败只记录日志。
func (g *Gateway) Invalidate(ctx context.Context, key string) {
	ns := NamespaceOf(key)
	metrics.RecordCacheInvalidation(ns)
	if err := g.store.Delete(ctx, key); err != nil {
		g.logger.WithFields(logrus.Fields{
			"action":    "cache_invalidate",
			"namespace": ns,
			"cache_key": key,
		}).WithError(err).Warn("cache_delete_failed")
		return
	}
	g.logger.WithFields(logrus.Fields{
		"action":    "cache_invalidate",
		"namespace": ns,
		"cache_key": key,
	}).Warn("cache_invalidated")
}

func (g *Gateway) lookup(ctx context.Context, key string) ([]byte, bool) {
	raw, err := g.store.Get(ctx, key)
	if err == nil {
		return raw, true
	}
	if !errors.Is(err, ErrNotFound) {
		g.logger.WithFields(logging.CacheFields(NamespaceOf(key), key, false)).
			WithError(err).Warn("cache_read_failed")
	}
	return nil, false
}
