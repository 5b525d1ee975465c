package config

import (
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(fixture(t, "valid.toml"))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.CacheExpires.DurationValue() != 10*time.Minute {
		t.Fatalf("CacheExpires 应解析为 600 秒, got %s", cfg.Global.CacheExpires.DurationValue())
	}
	if cfg.Global.CacheBackend != "memory" {
		t.Fatalf("CacheBackend 默认应为 memory, got %s", cfg.Global.CacheBackend)
	}
	if cfg.Global.DashHost != DefaultDashHost || cfg.Global.OfficeViewer != DefaultOfficeViewer {
		t.Fatalf("预览相关默认值缺失: %+v", cfg.Global)
	}
	if cfg.Global.MaxPreviewSize != DefaultMaxPreviewSize {
		t.Fatalf("MaxPreviewSize 默认应为 5MiB")
	}
	if len(cfg.Accounts) != 2 {
		t.Fatalf("应解析两个账号, got %d", len(cfg.Accounts))
	}
	if cfg.Accounts[0].ListLimit != DefaultListLimit {
		t.Fatalf("ListLimit 应自动填充默认值")
	}
	if cfg.Accounts[1].Root != "/" {
		t.Fatalf("Root 默认应为 /")
	}
	if got := cfg.Accounts[1].ProviderOptions().PresignExpires; got != 15*time.Minute {
		t.Fatalf("PresignExpires 应解析为 15m, got %s", got)
	}
}

func TestShowOverridesAndDefaults(t *testing.T) {
	cfg, err := Load(fixture(t, "valid.toml"))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	ext := cfg.Show.Extensions()
	if got := ext["image"]; len(got) != 2 || got[0] != "png" || got[1] != "jpg" {
		t.Fatalf("Image 覆盖值应被小写拆分, got %v", got)
	}
	if len(ext["doc"]) == 0 {
		t.Fatalf("未覆盖的分类应保留默认扩展名")
	}
}

func TestHiddenIDsMergesHashes(t *testing.T) {
	cfg := &Config{Hidden: []HiddenConfig{
		{Hash: "h1", IDs: []string{"a"}},
		{Hash: "h1", IDs: []string{"b"}},
		{Hash: "h2", IDs: []string{"c"}},
	}}
	hidden := cfg.HiddenIDs()
	if len(hidden["h1"]) != 2 || len(hidden["h2"]) != 1 {
		t.Fatalf("unexpected hidden map %v", hidden)
	}
}

func TestValidateRejectsBadAccount(t *testing.T) {
	if _, err := Load(fixture(t, "missing.toml")); err == nil {
		t.Fatalf("不合法的配置应返回错误")
	}
}

func TestValidateEnforcesListenPortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Global.ListenPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatalf("ListenPort 超出范围应当报错")
	}
}

func TestAccountTypeValidation(t *testing.T) {
	testCases := []struct {
		name      string
		typ       string
		bucket    string
		shouldErr bool
	}{
		{"onedrive ok", "onedrive", "", false},
		{"s3 ok", "s3", "media", false},
		{"s3 without bucket", "s3", "", true},
		{"missing type", "", "", true},
		{"unsupported type", "dropbox", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Accounts[0].Type = tc.typ
			cfg.Accounts[0].Bucket = tc.bucket
			err := cfg.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error for type %q", tc.typ)
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("unexpected error for type %q: %v", tc.typ, err)
			}
		})
	}
}

func TestValidateRequiresCredentialPairs(t *testing.T) {
	cfg := validConfig()
	cfg.Accounts[0].AccessKey = "foo"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("仅提供 AccessKey 时应报错")
	}
}

func TestValidateRejectsDuplicateIDsAndUnknownPrimary(t *testing.T) {
	cfg := validConfig()
	cfg.Accounts = append(cfg.Accounts, cfg.Accounts[0])
	if err := cfg.Validate(); err == nil {
		t.Fatalf("重复账号 ID 应报错")
	}

	cfg = validConfig()
	cfg.Global.PrimaryAccount = 9
	err := cfg.Validate()
	fe, ok := err.(FieldError)
	if !ok || fe.Field != "Global.PrimaryAccount" {
		t.Fatalf("expected PrimaryAccount field error, got %v", err)
	}
}

func TestValidateRejectsPresignShorterThanCache(t *testing.T) {
	cfg := validConfig()
	cfg.Global.CacheExpires = Duration(2 * time.Hour)
	cfg.Accounts = append(cfg.Accounts, AccountConfig{
		ID: 2, Name: "archive", Type: "s3", Bucket: "archive", Root: "/", ListLimit: 10,
	})
	err := cfg.Validate()
	fe, ok := err.(FieldError)
	if !ok || fe.Field != "Account[archive].PresignExpires" {
		t.Fatalf("默认 1h 签名短于 2h 缓存应报错，得到 %v", err)
	}

	cfg.Accounts[1].PresignExpires = Duration(3 * time.Hour)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("签名有效期足够时不应报错: %v", err)
	}

	cfg.Global.CacheExpires = Duration(30 * time.Minute)
	cfg.Accounts[1].PresignExpires = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("默认签名有效期覆盖 30m 缓存: %v", err)
	}
}

func TestValidateRejectsUnknownCacheBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Global.CacheBackend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("未知缓存后端应报错")
	}
}

func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			ListenPort:      8080,
			StoragePath:     "./data",
			CacheExpires:    Duration(time.Hour),
			CacheBackend:    "memory",
			UpstreamTimeout: Duration(time.Second),
			PrimaryAccount:  1,
			OfficeViewer:    DefaultOfficeViewer,
		},
		Accounts: []AccountConfig{
			{ID: 1, Name: "personal", Type: "onedrive", Root: "/", ListLimit: 10},
		},
	}
}
