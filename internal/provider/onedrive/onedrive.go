// Package onedrive 通过 Microsoft Graph 读取 OneDrive / SharePoint 驱动器的元数据。
package onedrive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/any-index/any-index/internal/drive"
	"github.com/any-index/any-index/internal/provider"
)

const (
	// Type 是配置中 Account.Type 的取值。
	Type = "onedrive"

	DefaultEndpoint  = "https://graph.microsoft.com/v1.0"
	DefaultDrivePath = "/me/drive"

	maxErrorBody = 64 * 1024
)

func init() {
	provider.MustRegister(provider.Metadata{
		Type:        Type,
		Description: "Microsoft Graph drive (OneDrive / SharePoint document library)",
		New: func(ctx context.Context, opts provider.Options) (provider.StorageProvider, error) {
			return New(opts)
		},
	})
}

// Client 实现 provider.StorageProvider。
type Client struct {
	endpoint  string
	drivePath string
	token     string
	http      *http.Client
	logger    *logrus.Logger
}

// New 根据账号参数构造 Graph 客户端。
func New(opts provider.Options) (*Client, error) {
	if opts.HTTPClient == nil {
		return nil, errors.New("http client is required")
	}
	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	drivePath := strings.TrimRight(strings.TrimSpace(opts.DrivePath), "/")
	if drivePath == "" {
		drivePath = DefaultDrivePath
	}
	if !strings.HasPrefix(drivePath, "/") {
		drivePath = "/" + drivePath
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		endpoint:  endpoint,
		drivePath: drivePath,
		token:     opts.AccessToken,
		http:      opts.HTTPClient,
		logger:    logger,
	}, nil
}

type graphItem struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Size                 int64     `json:"size"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`
	File                 *struct {
		MimeType string `json:"mimeType"`
	} `json:"file"`
	Folder *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder"`
	Package *struct {
		Type string `json:"type"`
	} `json:"package"`
	DownloadURL string               `json:"@microsoft.graph.downloadUrl"`
	Thumbnails  []drive.ThumbnailSet `json:"thumbnails"`
}

type graphList struct {
	Value    []graphItem `json:"value"`
	NextLink string      `json:"@odata.nextLink"`
}

type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FetchItem 读取单个条目，path 为空时返回驱动器根目录。
func (c *Client) FetchItem(ctx context.Context, p string) (drive.Item, error) {
	var raw graphItem
	if err := c.getJSON(ctx, c.itemURL(p, false), &raw); err != nil {
		return drive.Item{}, err
	}
	return raw.toItem(), nil
}

// FetchList 读取目录下全部子条目，自动跟随 @odata.nextLink 分页。
func (c *Client) FetchList(ctx context.Context, p string) ([]drive.Item, error) {
	next := c.itemURL(p, true)
	items := make([]drive.Item, 0)
	for next != "" {
		var page graphList
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		for _, raw := range page.Value {
			items = append(items, raw.toItem())
		}
		next = page.NextLink
	}
	return items, nil
}

func (c *Client) itemURL(p string, children bool) string {
	base := c.endpoint + c.drivePath + "/root"
	p = strings.Trim(p, "/")
	switch {
	case p == "" && children:
		base += "/children"
	case p == "":
	case children:
		base += ":/" + escapePath(p) + ":/children"
	default:
		base += ":/" + escapePath(p)
	}
	return base + "?$expand=thumbnails"
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func (c *Client) getJSON(ctx context.Context, target string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("graph request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode graph response: %w", err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	env := &provider.ErrorEnvelope{Status: resp.StatusCode}

	var ge graphError
	if err := json.Unmarshal(body, &ge); err == nil && ge.Error.Code != "" {
		env.Code = ge.Error.Code
		env.Message = ge.Error.Message
	} else {
		env.Message = http.StatusText(resp.StatusCode)
	}

	c.logger.WithFields(logrus.Fields{
		"action":      "graph_request",
		"status":      resp.StatusCode,
		"code":        env.Code,
		"request_url": resp.Request.URL.Path,
	}).Warn("graph_error")
	return env
}

func (g graphItem) toItem() drive.Item {
	item := drive.Item{
		ID:           g.ID,
		Name:         g.Name,
		Size:         g.Size,
		LastModified: g.LastModifiedDateTime,
		IsFolder:     g.File == nil,
		DownloadURL:  g.DownloadURL,
		Thumbnails:   g.Thumbnails,
	}
	if g.File != nil {
		item.MimeType = g.File.MimeType
	}
	if g.Folder != nil {
		item.ChildCount = g.Folder.ChildCount
	}
	if g.Package != nil {
		item.PackageType = g.Package.Type
	}
	return item
}
