package cache

import (
	"strconv"
	"strings"
)

// Namespace 区分缓存值的类别。
type Namespace string

const (
	NamespaceItem    Namespace = "item"
	NamespaceList    Namespace = "list"
	NamespaceContent Namespace = "content"
)

// Key 生成 {namespace}:{accountId}:{pathOrItemId} 形式的缓存键。
func Key(ns Namespace, accountID int, suffix string) string {
	return string(ns) + ":" + strconv.Itoa(accountID) + ":" + suffix
}

// NamespaceOf 返回键所属的 namespace，无法识别时返回 "unknown"。
func NamespaceOf(key string) string {
	if idx := strings.IndexByte(key, ':'); idx > 0 {
		return key[:idx]
	}
	return "unknown"
}
