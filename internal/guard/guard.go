// Package guard 拦截保留文件与隐藏条目，保证它们不会被直接预览或列出。
package guard

import (
	"strings"

	"github.com/any-index/any-index/internal/drive"
)

// ReservedNames 是不可直接访问的文件名。
var ReservedNames = []string{"README.md", "HEAD.md", ".password", ".deny"}

// Guard 持有按账号 hash 划分的隐藏 ID 集合。
type Guard struct {
	hidden         map[string]map[string]struct{}
	hideInListings bool
}

// New 构造 Guard；hidden 为 hash -> 条目 ID 集合。
func New(hidden map[string]map[string]struct{}, hideInListings bool) *Guard {
	if hidden == nil {
		hidden = map[string]map[string]struct{}{}
	}
	return &Guard{hidden: hidden, hideInListings: hideInListings}
}

// GuardItem 校验单个文件：保留名（含前缀匹配）返回 Forbidden，隐藏条目返回 NotFound。
func (g *Guard) GuardItem(item drive.Item, hash string) error {
	if isReservedPrefix(item.Name) {
		return drive.NewError(drive.KindForbidden, "illegal request", nil)
	}
	if g.isHidden(hash, item.ID) {
		return drive.ErrItemNotFound()
	}
	return nil
}

// GuardList 返回过滤后的新切片：去掉复合对象与精确匹配保留名的条目。
// 开启 hideInListings 时同时去掉隐藏条目。
func (g *Guard) GuardList(items []drive.Item, hash string) []drive.Item {
	out := make([]drive.Item, 0, len(items))
	for _, item := range items {
		if item.IsPackage() || isReserved(item.Name) {
			continue
		}
		if g.hideInListings && g.isHidden(hash, item.ID) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (g *Guard) isHidden(hash, id string) bool {
	set, ok := g.hidden[hash]
	if !ok {
		return false
	}
	_, hidden := set[id]
	return hidden
}

func isReserved(name string) bool {
	for _, r := range ReservedNames {
		if name == r {
			return true
		}
	}
	return false
}

func isReservedPrefix(name string) bool {
	for _, r := range ReservedNames {
		if strings.HasPrefix(name, r) {
			return true
		}
	}
	return false
}
