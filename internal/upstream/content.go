package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/any-index/any-index/internal/metrics"
)

// ErrContentTooLarge 表示正文超过抓取上限，内容不会被截断返回。
var ErrContentTooLarge = errors.New("content exceeds size limit")

// ContentFetcher 读取文本预览与 README/HEAD 的正文。
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// HTTPFetcher 通过 GET 下载地址获取正文，超过 limit 字节时返回 ErrContentTooLarge。
type HTTPFetcher struct {
	client *http.Client
	limit  int64
}

// NewHTTPFetcher 构造正文抓取器；limit <= 0 表示不限制。
func NewHTTPFetcher(client *http.Client, limit int64) *HTTPFetcher {
	if client == nil {
		client = NewClient(0)
	}
	return &HTTPFetcher{client: client, limit: limit}
}

// FetchContent 实现 ContentFetcher。非 2xx 响应视为失败。
func (f *HTTPFetcher) FetchContent(ctx context.Context, url string) (content string, err error) {
	started := time.Now()
	defer func() {
		metrics.RecordUpstream("content", "fetch_content", time.Since(started), err == nil)
	}()

	if url == "" {
		return "", errors.New("download url is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("fetch content: unexpected status %d", resp.StatusCode)
	}

	if f.limit > 0 && resp.ContentLength > f.limit {
		return "", fmt.Errorf("%w: %d > %d bytes", ErrContentTooLarge, resp.ContentLength, f.limit)
	}
	var body io.Reader = resp.Body
	if f.limit > 0 {
		body = io.LimitReader(resp.Body, f.limit+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	if f.limit > 0 && int64(len(data)) > f.limit {
		return "", fmt.Errorf("%w: more than %d bytes", ErrContentTooLarge, f.limit)
	}
	return string(data), nil
}
