// Package resolver 串联一次浏览请求：解析账号与路径，经缓存读取条目，
// 再分派到单文件展示或目录列表流程。
package resolver

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/any-index/any-index/internal/account"
	"github.com/any-index/any-index/internal/cache"
	"github.com/any-index/any-index/internal/classify"
	"github.com/any-index/any-index/internal/docs"
	"github.com/any-index/any-index/internal/drive"
	"github.com/any-index/any-index/internal/guard"
	"github.com/any-index/any-index/internal/listing"
	"github.com/any-index/any-index/internal/logging"
	"github.com/any-index/any-index/internal/preview"
	"github.com/any-index/any-index/internal/provider"
)

// Accounts 根据 hash 查找账号，返回实际生效的 hash。
type Accounts interface {
	Resolve(hash string) (*account.Account, string, error)
}

// Request 是一次浏览请求的输入。
type Request struct {
	Hash     string
	Query    string
	Download bool
	SortBy   string
	Page     int
}

// Result 是一次浏览请求的输出，IsFile 决定 Preview 或 Listing/Docs 有效。
type Result struct {
	IsFile   bool
	Account  *account.Account
	Hash     string
	Path     string
	Segments []string
	Item     drive.Item
	Preview  *preview.Presentation
	Listing  *drive.ListingPage
	Docs     *drive.DocBundle
	Warnings []string
}

// Deps 汇总 Resolver 依赖的组件。
type Deps struct {
	Accounts  Accounts
	Gateway   *cache.Gateway
	Guard     *guard.Guard
	Presenter *preview.Presenter
	Extractor *docs.Extractor
	CacheTTL  time.Duration
	Logger    *logrus.Logger
}

// Resolver 实现路径解析主流程。
type Resolver struct {
	deps Deps
}

// New 构造 Resolver。
func New(deps Deps) *Resolver {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	return &Resolver{deps: deps}
}

// Resolve 执行一次请求。返回的错误均为 *drive.Error。
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	acc, hash, err := r.deps.Accounts.Resolve(req.Hash)
	if err != nil {
		return nil, err
	}

	segments := NormalizeQuery(req.Query)
	path := JoinRoot(acc.Root, segments)
	res := &Result{
		Account:  acc,
		Hash:     hash,
		Path:     path,
		Segments: segments,
	}
	log := r.deps.Logger.WithFields(logging.RequestFields(acc.ID, hash, path))

	item, err := cache.Resolve(ctx, r.deps.Gateway, cache.Key(cache.NamespaceItem, acc.ID, path), r.deps.CacheTTL,
		func(ctx context.Context) (drive.Item, error) {
			return acc.Provider.FetchItem(ctx, path)
		})
	if err != nil {
		log.WithError(err).Warn("fetch_item_failed")
		return nil, translate(err)
	}
	res.Item = item

	if !item.IsFolder {
		return r.resolveFile(ctx, res, req)
	}
	return r.resolveFolder(ctx, res, req, log)
}

func (r *Resolver) resolveFile(ctx context.Context, res *Result, req Request) (*Result, error) {
	if err := r.deps.Guard.GuardItem(res.Item, res.Hash); err != nil {
		return nil, err
	}
	res.IsFile = true
	res.Item = classify.Annotate(res.Item)
	presentation, warnings := r.deps.Presenter.Present(ctx, res.Account.ID, res.Item, req.Download)
	res.Preview = &presentation
	res.Warnings = append(res.Warnings, warnings...)
	return res, nil
}

func (r *Resolver) resolveFolder(ctx context.Context, res *Result, req Request, log *logrus.Entry) (*Result, error) {
	acc := res.Account
	items, err := cache.Resolve(ctx, r.deps.Gateway, cache.Key(cache.NamespaceList, acc.ID, res.Path), r.deps.CacheTTL,
		func(ctx context.Context) ([]drive.Item, error) {
			return acc.Provider.FetchList(ctx, res.Path)
		})
	if err != nil {
		log.WithError(err).Warn("fetch_list_failed")
		return nil, translate(err)
	}

	bundle, warnings := r.deps.Extractor.Extract(ctx, acc.ID, items)
	res.Docs = &bundle
	res.Warnings = append(res.Warnings, warnings...)

	visible := r.deps.Guard.GuardList(items, res.Hash)
	for i := range visible {
		visible[i] = classify.Annotate(visible[i])
	}

	field, descending := listing.ParseSortBy(req.SortBy)
	page := listing.Process(visible, listing.Options{
		SortField:  field,
		Descending: descending,
		PageSize:   acc.ListLimit,
		Page:       req.Page,
	})
	res.Listing = &page
	return res, nil
}

// ParentPath 返回查询路径的上一级，用于 TooLarge 时的回退跳转。
func ParentPath(segments []string) string {
	if len(segments) <= 1 {
		return ""
	}
	return strings.Join(segments[:len(segments)-1], "/")
}

func translate(err error) error {
	if env, ok := provider.AsEnvelope(err); ok {
		return drive.NewError(drive.KindUpstream, provider.Describe(env), err)
	}
	return drive.NewError(drive.KindUpstream, err.Error(), err)
}
