package provider

import (
	"context"
	"time"

	"github.com/any-index/any-index/internal/drive"
	"github.com/any-index/any-index/internal/metrics"
)

type instrumented struct {
	typ   string
	inner StorageProvider
}

// Instrument 包装 provider，为每次元数据调用记录耗时与结果。
func Instrument(typ string, p StorageProvider) StorageProvider {
	if p == nil {
		return nil
	}
	if _, ok := p.(*instrumented); ok {
		return p
	}
	return &instrumented{typ: typ, inner: p}
}

func (p *instrumented) FetchItem(ctx context.Context, path string) (drive.Item, error) {
	started := time.Now()
	item, err := p.inner.FetchItem(ctx, path)
	metrics.RecordUpstream(p.typ, "fetch_item", time.Since(started), err == nil)
	return item, err
}

func (p *instrumented) FetchList(ctx context.Context, path string) ([]drive.Item, error) {
	started := time.Now()
	items, err := p.inner.FetchList(ctx, path)
	metrics.RecordUpstream(p.typ, "fetch_list", time.Since(started), err == nil)
	return items, err
}
