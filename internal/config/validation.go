package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/any-index/any-index/internal/provider"
	s3provider "github.com/any-index/any-index/internal/provider/s3"
)

var supportedCacheBackends = map[string]struct{}{
	"memory": {},
	"disk":   {},
	"bolt":   {},
}

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if g.CacheExpires.DurationValue() <= 0 {
		return newFieldError("Global.CacheExpires", "必须大于 0")
	}
	if _, ok := supportedCacheBackends[g.CacheBackend]; !ok {
		return newFieldError("Global.CacheBackend", "仅支持 memory|disk|bolt")
	}
	if g.CacheBackend != "memory" && g.StoragePath == "" {
		return newFieldError("Global.StoragePath", "disk/bolt 缓存需要存储目录")
	}
	if g.UpstreamTimeout.DurationValue() <= 0 {
		return newFieldError("Global.UpstreamTimeout", "必须大于 0")
	}
	if g.HashMinLength < 0 {
		return newFieldError("Global.HashMinLength", "不能为负数")
	}
	if err := validateURL(g.OfficeViewer); err != nil {
		return fmt.Errorf("Global.OfficeViewer: %w", err)
	}

	if len(c.Accounts) == 0 {
		return errors.New("至少需要配置一个 Account")
	}

	seenIDs := map[int]struct{}{}
	for i := range c.Accounts {
		acc := &c.Accounts[i]
		if acc.ID <= 0 {
			return newFieldError(accountField(acc.Name, "ID"), "必须为正整数")
		}
		if _, exists := seenIDs[acc.ID]; exists {
			return newFieldError(accountField(acc.Name, "ID"), "重复")
		}
		seenIDs[acc.ID] = struct{}{}

		if acc.Type == "" {
			return newFieldError(accountField(acc.Name, "Type"), "不能为空")
		}
		if _, ok := provider.Resolve(acc.Type); !ok {
			return newFieldError(accountField(acc.Name, "Type"),
				fmt.Sprintf("未注册 provider: %s（可选 %s）", acc.Type, strings.Join(provider.Types(), "|")))
		}
		if (acc.AccessKey == "") != (acc.SecretKey == "") {
			return newFieldError(accountField(acc.Name, "AccessKey/SecretKey"), "必须同时提供或同时留空")
		}
		if acc.Type == s3provider.Type {
			if acc.Bucket == "" {
				return newFieldError(accountField(acc.Name, "Bucket"), "不能为空")
			}
			// 条目与列表缓存中保存预签名 URL，签名不能早于缓存过期。
			presign := acc.PresignExpires.DurationValue()
			if presign <= 0 {
				presign = s3provider.DefaultPresignExpires
			}
			if presign < g.CacheExpires.DurationValue() {
				return newFieldError(accountField(acc.Name, "PresignExpires"),
					fmt.Sprintf("%s 短于 Global.CacheExpires %s", presign, g.CacheExpires.DurationValue()))
			}
		}
		if acc.Endpoint != "" {
			if err := validateURL(acc.Endpoint); err != nil {
				return fmt.Errorf("%s: %w", accountField(acc.Name, "Endpoint"), err)
			}
		}
	}

	if g.PrimaryAccount != 0 {
		if _, ok := seenIDs[g.PrimaryAccount]; !ok {
			return newFieldError("Global.PrimaryAccount", fmt.Sprintf("账号 %d 不存在", g.PrimaryAccount))
		}
	}

	for _, h := range c.Hidden {
		if strings.TrimSpace(h.Hash) == "" {
			return newFieldError("Hidden[].Hash", "不能为空")
		}
	}

	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("缺少地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("缺少 Host: %s", raw)
	}
	return nil
}
