package account

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/any-index/any-index/internal/config"
	"github.com/any-index/any-index/internal/drive"
	"github.com/any-index/any-index/internal/provider"
)

// Account 是核心只读使用的账号记录。
type Account struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Root      string `json:"root"`
	ListLimit int    `json:"list_limit"`
	Hash      string `json:"hash"`

	Provider provider.StorageProvider `json:"-"`
}

// Directory 按 ID 保存账号，并处理 hash 到账号的解析。
type Directory struct {
	codec    *Codec
	accounts map[int]*Account
	primary  int
}

// NewDirectory 使用给定账号构造目录，accounts 的 Hash 字段会被重新计算。
func NewDirectory(codec *Codec, accounts []*Account, primary int) (*Directory, error) {
	d := &Directory{
		codec:    codec,
		accounts: make(map[int]*Account, len(accounts)),
		primary:  primary,
	}
	for _, acc := range accounts {
		hash, err := codec.Encode(acc.ID)
		if err != nil {
			return nil, fmt.Errorf("encode account %d: %w", acc.ID, err)
		}
		acc.Hash = hash
		d.accounts[acc.ID] = acc
	}
	return d, nil
}

// FromConfig 为每个账号打开 provider 并构造目录。
func FromConfig(ctx context.Context, cfg *config.Config, client *http.Client, logger *logrus.Logger) (*Directory, error) {
	codec, err := NewCodec(cfg.Global.HashSalt, cfg.Global.HashMinLength)
	if err != nil {
		return nil, err
	}

	accounts := make([]*Account, 0, len(cfg.Accounts))
	for _, ac := range cfg.Accounts {
		opts := ac.ProviderOptions()
		opts.HTTPClient = client
		opts.Logger = logger
		p, err := provider.Open(ctx, ac.Type, opts)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, &Account{
			ID:        ac.ID,
			Name:      ac.Name,
			Type:      ac.Type,
			Root:      ac.Root,
			ListLimit: ac.ListLimit,
			Provider:  p,
		})
	}
	return NewDirectory(codec, accounts, cfg.Global.PrimaryAccount)
}

// Resolve 将 hash 解析为账号；hash 为空时使用主账号，并返回重新编码后的 hash。
func (d *Directory) Resolve(hash string) (*Account, string, error) {
	id := 0
	if hash == "" {
		id = d.primary
	} else if decoded, ok := d.codec.Decode(hash); ok {
		id = decoded
	}
	if id == 0 {
		return nil, hash, drive.NewError(drive.KindAccountNotFound, "account not found", nil)
	}
	acc, ok := d.accounts[id]
	if !ok {
		return nil, hash, drive.NewError(drive.KindAccountNotFound, "account not found", nil)
	}
	return acc, acc.Hash, nil
}

// List 返回按 ID 排序的账号。
func (d *Directory) List() []*Account {
	out := make([]*Account, 0, len(d.accounts))
	for _, acc := range d.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HashOf 返回账号 ID 的 hash，未知账号返回空串。
func (d *Directory) HashOf(id int) string {
	if acc, ok := d.accounts[id]; ok {
		return acc.Hash
	}
	return ""
}
