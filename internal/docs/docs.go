// Package docs 从目录列表中提取 README.md 与 HEAD.md 的正文。
package docs

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/any-index/any-index/internal/cache"
	"github.com/any-index/any-index/internal/drive"
	"github.com/any-index/any-index/internal/logging"
	"github.com/any-index/any-index/internal/upstream"
)

const (
	ReadmeName = "README.md"
	HeadName   = "HEAD.md"
)

// Extractor 通过缓存网关读取说明文档正文。
type Extractor struct {
	gateway *cache.Gateway
	fetcher upstream.ContentFetcher
	ttl     time.Duration
	logger  *logrus.Logger
}

// NewExtractor 构造 Extractor。
func NewExtractor(gateway *cache.Gateway, fetcher upstream.ContentFetcher, ttl time.Duration, logger *logrus.Logger) *Extractor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Extractor{gateway: gateway, fetcher: fetcher, ttl: ttl, logger: logger}
}

// Extract 在未过滤的列表中查找首个精确同名的 README.md / HEAD.md 并读取正文。
// 读取失败时对应字段为空，并返回一条警告。
func (e *Extractor) Extract(ctx context.Context, accountID int, items []drive.Item) (drive.DocBundle, []string) {
	var (
		bundle   drive.DocBundle
		warnings []string
	)
	if item, ok := findFirst(items, ReadmeName); ok {
		content, err := e.fetch(ctx, accountID, item)
		if err != nil {
			warnings = append(warnings, err.Error())
		}
		bundle.Readme = content
	}
	if item, ok := findFirst(items, HeadName); ok {
		content, err := e.fetch(ctx, accountID, item)
		if err != nil {
			warnings = append(warnings, err.Error())
		}
		bundle.Head = content
	}
	return bundle, warnings
}

func (e *Extractor) fetch(ctx context.Context, accountID int, item drive.Item) (string, error) {
	key := cache.Key(cache.NamespaceContent, accountID, item.ID)
	content, err := cache.Resolve(ctx, e.gateway, key, e.ttl, func(ctx context.Context) (string, error) {
		return e.fetcher.FetchContent(ctx, item.DownloadURL)
	})
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"action":     "doc_extract",
			"account_id": accountID,
			"item":       item.Name,
		}).WithError(err).Warn("doc_fetch_failed")
		return "", drive.NewError(drive.KindContentFetch, fmt.Sprintf("%s: %v", item.Name, err), err)
	}
	return content, nil
}

func findFirst(items []drive.Item, name string) (drive.Item, bool) {
	for _, item := range items {
		if item.Name == name {
			return item, true
		}
	}
	return drive.Item{}, false
}
