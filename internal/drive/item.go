// Package drive 定义跨组件共享的网盘领域模型：条目元数据、分页结果、
// 说明文档集合以及统一的错误类型。各组件只依赖本包，互不引用。
package drive

import (
	"path"
	"strings"
	"time"
)

// FolderExt 是目录条目的固定 ext 取值。
const FolderExt = "folder"

// Thumbnail 描述单个尺寸的缩略图地址。
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// ThumbnailSet 对应 provider 返回的一组缩略图（small/medium/large）。
type ThumbnailSet struct {
	Small  *Thumbnail `json:"small,omitempty"`
	Medium *Thumbnail `json:"medium,omitempty"`
	Large  *Thumbnail `json:"large,omitempty"`
}

// Item 是远端元数据记录。Ext 由分类阶段派生，其余字段来自 provider。
type Item struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Size         int64          `json:"size"`
	LastModified time.Time      `json:"lastModifiedDateTime"`
	IsFolder     bool           `json:"isFolder"`
	ChildCount   int            `json:"childCount,omitempty"`
	MimeType     string         `json:"mimeType,omitempty"`
	PackageType  string         `json:"packageType,omitempty"`
	DownloadURL  string         `json:"downloadUrl,omitempty"`
	Thumbnails   []ThumbnailSet `json:"thumbnails,omitempty"`
	Ext          string         `json:"ext,omitempty"`
}

// IsPackage 表示 provider 无法按单文件读取的复合对象（如 OneNote 笔记本）。
func (i Item) IsPackage() bool {
	return i.PackageType != ""
}

// LargeThumbnail 返回第一组缩略图中的大图地址，不存在时为空串。
func (i Item) LargeThumbnail() string {
	if len(i.Thumbnails) == 0 || i.Thumbnails[0].Large == nil {
		return ""
	}
	return i.Thumbnails[0].Large.URL
}

// Extension 返回文件名的小写扩展名（不含点），目录返回 FolderExt。
func (i Item) Extension() string {
	if i.IsFolder {
		return FolderExt
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(i.Name), "."))
}

// ListingPage 是单页目录列表，每次请求重新构造，不进入缓存。
type ListingPage struct {
	Items      []Item `json:"items"`
	PageSize   int    `json:"per_page"`
	Page       int    `json:"current_page"`
	Total      int    `json:"total"`
	TotalPages int    `json:"last_page"`
	SortField  string `json:"sort_field"`
	Descending bool   `json:"descending"`
}

// DocBundle 保存目录下 README.md 与 HEAD.md 的正文。
type DocBundle struct {
	Readme string `json:"readme"`
	Head   string `json:"head"`
}
