package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/any-index/any-index/internal/account"
	"github.com/any-index/any-index/internal/cache"
	"github.com/any-index/any-index/internal/classify"
	"github.com/any-index/any-index/internal/docs"
	"github.com/any-index/any-index/internal/drive"
	"github.com/any-index/any-index/internal/guard"
	"github.com/any-index/any-index/internal/preview"
	"github.com/any-index/any-index/internal/provider"
)

type fakeProvider struct {
	items     map[string]drive.Item
	lists     map[string][]drive.Item
	itemErr   error
	listErr   error
	itemCalls int
	listCalls int
}

func (f *fakeProvider) FetchItem(ctx context.Context, path string) (drive.Item, error) {
	f.itemCalls++
	if f.itemErr != nil {
		return drive.Item{}, f.itemErr
	}
	item, ok := f.items[path]
	if !ok {
		return drive.Item{}, &provider.ErrorEnvelope{Code: "itemNotFound", Message: "gone"}
	}
	return item, nil
}

func (f *fakeProvider) FetchList(ctx context.Context, path string) ([]drive.Item, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.lists[path], nil
}

type fakeFetcher map[string]string

func (f fakeFetcher) FetchContent(ctx context.Context, url string) (string, error) {
	if body, ok := f[url]; ok {
		return body, nil
	}
	return "", errors.New("unreachable")
}

type fixture struct {
	resolver *Resolver
	provider *fakeProvider
	store    cache.Store
	dir      *account.Directory
}

func newFixture(t *testing.T, hidden map[string]map[string]struct{}) *fixture {
	t.Helper()
	fp := &fakeProvider{
		items: map[string]drive.Item{
			"":                  {ID: "root", Name: "root", IsFolder: true},
			"Public":            {ID: "pub", Name: "Public", IsFolder: true},
			"Public/empty":      {ID: "empty", Name: "empty", IsFolder: true},
			"Public/pic.PNG":    {ID: "pic", Name: "pic.PNG", DownloadURL: "https://dl/pic", Thumbnails: []drive.ThumbnailSet{{Large: &drive.Thumbnail{URL: "T"}}}},
			"Public/.password":  {ID: "pw", Name: ".password"},
			"Public/secret.txt": {ID: "X", Name: "secret.txt"},
		},
		lists: map[string][]drive.Item{
			"Public": {
				{ID: "f2", Name: "b.txt", Size: 2},
				{ID: "d1", Name: "A", IsFolder: true},
				{ID: "f1", Name: "a.txt", Size: 1},
				{ID: "rd", Name: "README.md", DownloadURL: "https://dl/readme"},
				{ID: "nb", Name: "Notes", PackageType: "oneNote"},
			},
			"Public/empty": nil,
		},
	}

	codec, err := account.NewCodec("salt", 6)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	dir, err := account.NewDirectory(codec, []*account.Account{
		{ID: 1, Name: "personal", Root: "/Public", ListLimit: 2, Provider: fp},
	}, 1)
	if err != nil {
		t.Fatalf("directory: %v", err)
	}

	store := cache.NewMemoryStore()
	gw := cache.NewGateway(store, nil)
	fetcher := fakeFetcher{"https://dl/readme": "# Public"}
	classifier := classify.New(map[string][]string{"image": {"png"}, "code": {"txt"}})

	r := New(Deps{
		Accounts:  dir,
		Gateway:   gw,
		Guard:     guard.New(hidden, false),
		Presenter: preview.NewPresenter(classifier, gw, fetcher, preview.Options{MaxPreviewSize: 1 << 20, CacheTTL: time.Minute}, nil),
		Extractor: docs.NewExtractor(gw, fetcher, time.Minute, nil),
		CacheTTL:  time.Minute,
	})
	return &fixture{resolver: r, provider: fp, store: store, dir: dir}
}

func TestResolveFolderListing(t *testing.T) {
	f := newFixture(t, nil)
	res, err := f.resolver.Resolve(context.Background(), Request{SortBy: "name,asc"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.IsFile || res.Path != "Public" || res.Hash != f.dir.HashOf(1) {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Docs.Readme != "# Public" {
		t.Fatalf("readme should be extracted from the unfiltered list, got %q", res.Docs.Readme)
	}
	page := res.Listing
	if page.Total != 3 || page.TotalPages != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Items[0].Name != "A" || page.Items[0].Ext != drive.FolderExt || page.Items[1].Name != "a.txt" || page.Items[1].Ext != "txt" {
		t.Fatalf("folder first then natural order expected, got %+v", page.Items)
	}
}

func TestResolveUsesCacheOnSecondCall(t *testing.T) {
	f := newFixture(t, nil)
	for i := 0; i < 2; i++ {
		if _, err := f.resolver.Resolve(context.Background(), Request{Query: "/"}); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}
	if f.provider.itemCalls != 1 || f.provider.listCalls != 1 {
		t.Fatalf("provider should be hit once each, got item=%d list=%d", f.provider.itemCalls, f.provider.listCalls)
	}
}

func TestResolveImageFile(t *testing.T) {
	f := newFixture(t, nil)
	res, err := f.resolver.Resolve(context.Background(), Request{Query: "pic.PNG"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.IsFile || res.Preview.Show != classify.CategoryImage || res.Preview.Thumb != "T" {
		t.Fatalf("unexpected file result %+v %+v", res, res.Preview)
	}
	if res.Item.Ext != "png" {
		t.Fatalf("item should be annotated, got ext %q", res.Item.Ext)
	}
}

func TestResolveReservedFileForbidden(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.resolver.Resolve(context.Background(), Request{Query: ".password"})
	if drive.KindOf(err) != drive.KindForbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestResolveHiddenFilePerHash(t *testing.T) {
	codec, _ := account.NewCodec("salt", 6)
	hash, _ := codec.Encode(1)
	f := newFixture(t, map[string]map[string]struct{}{hash: {"X": {}}})

	_, err := f.resolver.Resolve(context.Background(), Request{Hash: hash, Query: "secret.txt"})
	if drive.KindOf(err) != drive.KindNotFound {
		t.Fatalf("hidden file should be NotFound, got %v", err)
	}
	_, err = f.resolver.Resolve(context.Background(), Request{Query: "secret.txt"})
	if drive.KindOf(err) != drive.KindNotFound {
		t.Fatalf("primary fallback re-encodes the hash so hidden still applies, got %v", err)
	}
}

func TestResolveProviderErrorInvalidates(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.resolver.Resolve(context.Background(), Request{Query: "missing"})
	if drive.KindOf(err) != drive.KindUpstream {
		t.Fatalf("expected Upstream, got %v", err)
	}
	if drive.MessageOf(err) != "the resource could not be found" {
		t.Fatalf("message should come from the code table, got %q", drive.MessageOf(err))
	}
	if _, err := f.store.Get(context.Background(), cache.Key(cache.NamespaceItem, 1, "Public/missing")); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("error must not be cached, got %v", err)
	}

	f.provider.itemErr = errors.New("dial tcp: timeout")
	_, err = f.resolver.Resolve(context.Background(), Request{Query: "other"})
	if drive.KindOf(err) != drive.KindUpstream || drive.MessageOf(err) != "dial tcp: timeout" {
		t.Fatalf("transient errors should surface as Upstream with text, got %v", err)
	}
}

func TestResolveListErrorInvalidates(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	listKey := cache.Key(cache.NamespaceList, 1, "Public")
	if err := f.store.Set(ctx, listKey, []byte("{stale"), time.Minute); err != nil {
		t.Fatalf("seed: %v", err)
	}

	f.provider.listErr = &provider.ErrorEnvelope{Code: "activityLimitReached"}
	_, err := f.resolver.Resolve(ctx, Request{})
	if drive.KindOf(err) != drive.KindUpstream {
		t.Fatalf("expected Upstream, got %v", err)
	}
	if drive.MessageOf(err) != "the app or user has been throttled" {
		t.Fatalf("unexpected message %q", drive.MessageOf(err))
	}
	if _, err := f.store.Get(ctx, listKey); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("list entry must be dropped after an upstream error, got %v", err)
	}

	f.provider.listErr = nil
	res, err := f.resolver.Resolve(ctx, Request{})
	if err != nil || res.Listing == nil || res.Listing.Total != 3 {
		t.Fatalf("listing should recover once the provider does: %+v %v", res, err)
	}
}

func TestResolveEmptyDirectory(t *testing.T) {
	f := newFixture(t, nil)
	res, err := f.resolver.Resolve(context.Background(), Request{Query: "empty", SortBy: "size,desc", Page: 1})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Listing.Items) != 0 || res.Listing.Page != 1 || res.Listing.TotalPages != 0 {
		t.Fatalf("unexpected empty listing %+v", res.Listing)
	}
}

func TestResolveUnknownAccount(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.resolver.Resolve(context.Background(), Request{Hash: "zzzzzzzz"})
	if drive.KindOf(err) != drive.KindAccountNotFound {
		t.Fatalf("expected AccountNotFound, got %v", err)
	}
}

func TestNormalizeQuery(t *testing.T) {
	cases := []struct {
		query string
		root  string
		want  string
	}{
		{"/a//b/", "/", "a/b"},
		{"a/./b/../c", "/Public", "Public/a/c"},
		{"../../etc", "/Public", "Public/etc"},
		{"", "/Public/", "Public"},
	}
	for _, tc := range cases {
		if got := JoinRoot(tc.root, NormalizeQuery(tc.query)); got != tc.want {
			t.Fatalf("JoinRoot(%q, %q) = %q, want %q", tc.root, tc.query, got, tc.want)
		}
	}
	if ParentPath([]string{"a", "b"}) != "a" || ParentPath([]string{"a"}) != "" {
		t.Fatalf("unexpected parent path")
	}
}
