// Package preview decides how a single file is presented: rendered inline,
// redirected to its download URL or an external viewer, or refused as too
// large to preview.
package preview

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/any-index/any-index/internal/cache"
	"github.com/any-index/any-index/internal/classify"
	"github.com/any-index/any-index/internal/drive"
	"github.com/any-index/any-index/internal/logging"
	"github.com/any-index/any-index/internal/upstream"
)

// Mode is the outcome kind of Present.
type Mode string

const (
	ModeRender   Mode = "render"
	ModeRedirect Mode = "redirect"
	ModeTooLarge Mode = "too_large"
)

// TooLargeNotice is shown when a text file exceeds the preview limit.
const TooLargeNotice = "file too large, please download to view"

// Presentation describes how to show a file.
type Presentation struct {
	Mode        Mode              `json:"-"`
	RedirectURL string            `json:"-"`
	Notice      string            `json:"-"`
	Category    classify.Category `json:"category"`
	Show        classify.Category `json:"show"`
	Download    string            `json:"download"`
	Content     string            `json:"content,omitempty"`
	Thumb       string            `json:"thumb,omitempty"`
	Dash        string            `json:"dash,omitempty"`
}

// Options configures a Presenter.
type Options struct {
	MaxPreviewSize int64
	CacheTTL       time.Duration
	Adapters       Adapters
}

// Presenter applies the per-category presentation rules.
type Presenter struct {
	classifier *classify.Classifier
	gateway    *cache.Gateway
	fetcher    upstream.ContentFetcher
	opts       Options
	logger     *logrus.Logger
}

// NewPresenter builds a Presenter.
func NewPresenter(classifier *classify.Classifier, gateway *cache.Gateway, fetcher upstream.ContentFetcher, opts Options, logger *logrus.Logger) *Presenter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Presenter{
		classifier: classifier,
		gateway:    gateway,
		fetcher:    fetcher,
		opts:       opts,
		logger:     logger,
	}
}

// Present returns the presentation for item. Content fetch failures are
// reported as warnings and never fail the call.
func (p *Presenter) Present(ctx context.Context, accountID int, item drive.Item, download bool) (Presentation, []string) {
	out := Presentation{Download: item.DownloadURL}
	if download {
		return redirect(out, item.DownloadURL), nil
	}

	cat := p.classifier.Classify(item)
	out.Category = cat
	out.Show = cat

	var warnings []string
	switch cat {
	case classify.CategoryStream, classify.CategoryCode:
		if item.Size > p.opts.MaxPreviewSize {
			out.Mode = ModeTooLarge
			out.Notice = TooLargeNotice
			return out, nil
		}
		content, err := p.content(ctx, accountID, item)
		if err != nil {
			warnings = append(warnings, err.Error())
		}
		out.Content = content
		out.Show = classify.CategoryCode
	case classify.CategoryImage, classify.CategoryVideo:
		out.Thumb = item.LargeThumbnail()
	case classify.CategoryDash:
		out.Thumb = item.LargeThumbnail()
		manifest, ok := p.opts.Adapters.DashManifest(item.DownloadURL, out.Thumb)
		if !ok {
			return redirect(out, item.DownloadURL), nil
		}
		out.Dash = manifest
	case classify.CategoryAudio:
	case classify.CategoryDoc:
		return redirect(out, p.opts.Adapters.OfficeViewerURL(item.DownloadURL)), nil
	default:
		return redirect(out, item.DownloadURL), nil
	}

	out.Mode = ModeRender
	return out, warnings
}

func (p *Presenter) content(ctx context.Context, accountID int, item drive.Item) (string, error) {
	key := cache.Key(cache.NamespaceContent, accountID, item.ID)
	content, err := cache.Resolve(ctx, p.gateway, key, p.opts.CacheTTL, func(ctx context.Context) (string, error) {
		return p.fetcher.FetchContent(ctx, item.DownloadURL)
	})
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"action":     "preview_content",
			"account_id": accountID,
			"item":       item.Name,
		}).WithError(err).Warn("content_fetch_failed")
		return "", drive.NewError(drive.KindContentFetch, err.Error(), err)
	}
	return content, nil
}

func redirect(out Presentation, target string) Presentation {
	out.Mode = ModeRedirect
	out.RedirectURL = target
	return out
}
