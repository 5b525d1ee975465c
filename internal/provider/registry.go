package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Metadata 记录一个 provider 类型的静态信息与工厂。
type Metadata struct {
	Type        string
	Description string
	New         Factory
}

var globalRegistry = newRegistry()

type registry struct {
	mu        sync.RWMutex
	providers map[string]Metadata
}

func newRegistry() *registry {
	return &registry{providers: make(map[string]Metadata)}
}

// Register 将 provider 加入全局注册表，重复类型会返回错误。
func Register(meta Metadata) error {
	return globalRegistry.register(meta)
}

// MustRegister 在注册失败时 panic，适合 provider 的 init() 中调用。
func MustRegister(meta Metadata) {
	if err := Register(meta); err != nil {
		panic(err)
	}
}

// Resolve 返回指定类型的 provider 元数据，大小写不敏感。
func Resolve(typ string) (Metadata, bool) {
	return globalRegistry.resolve(typ)
}

// Types 返回所有已注册类型（按字母序），供配置校验与诊断输出使用。
func Types() []string {
	return globalRegistry.types()
}

// Open 按类型构建 provider，并套上指标采集。
func Open(ctx context.Context, typ string, opts Options) (StorageProvider, error) {
	meta, ok := Resolve(typ)
	if !ok {
		return nil, fmt.Errorf("provider %q not registered", typ)
	}
	p, err := meta.New(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s provider for account %d: %w", meta.Type, opts.AccountID, err)
	}
	return Instrument(meta.Type, p), nil
}

func normalizeType(typ string) string {
	return strings.ToLower(strings.TrimSpace(typ))
}

func (r *registry) register(meta Metadata) error {
	key := normalizeType(meta.Type)
	if key == "" {
		return fmt.Errorf("provider type is required")
	}
	if meta.New == nil {
		return fmt.Errorf("provider %s: factory is required", key)
	}
	meta.Type = key

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[key]; exists {
		return fmt.Errorf("provider %s already registered", key)
	}
	r.providers[key] = meta
	return nil
}

func (r *registry) resolve(typ string) (Metadata, bool) {
	key := normalizeType(typ)
	if key == "" {
		return Metadata{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.providers[key]
	return meta, ok
}

func (r *registry) types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.providers))
	for key := range r.providers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
