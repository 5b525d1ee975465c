package cache

import (
	"fmt"
	"strings"
)

// NewStore 按配置的 CacheBackend 构造存储。
func NewStore(backend, storagePath string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "disk":
		return NewDiskStore(storagePath)
	case "bolt":
		return NewBoltStore(storagePath)
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", backend)
	}
}
