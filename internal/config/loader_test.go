package config

import (
	"testing"
	"time"
)

func TestLoadFailsWithMissingFields(t *testing.T) {
	if _, err := Load(fixture(t, "missing.toml")); err == nil {
		t.Fatalf("缺失字段的配置应返回错误")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	cfg := `
StoragePath = "./data"
CacheExpires = "boom"

[[Account]]
ID = 1
Name = "personal"
Type = "onedrive"
`
	path := writeConfig(t, cfg)
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestLoadAcceptsDurationStrings(t *testing.T) {
	cfg := `
StoragePath = "./data"
CacheExpires = "2h"
UpstreamTimeout = 5

[[Account]]
ID = 3
Name = "work"
Type = "ONEDRIVE"
ListLimit = 25
`
	loaded, err := Load(writeConfig(t, cfg))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if loaded.Global.CacheExpires.DurationValue() != 2*time.Hour {
		t.Fatalf("CacheExpires 应为 2h")
	}
	if loaded.Global.UpstreamTimeout.DurationValue() != 5*time.Second {
		t.Fatalf("整数 UpstreamTimeout 应按秒解析")
	}
	if loaded.Accounts[0].Type != "onedrive" || loaded.Accounts[0].ListLimit != 25 {
		t.Fatalf("账号字段未正确归一化: %+v", loaded.Accounts[0])
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90")); err != nil || d.DurationValue() != 90*time.Second {
		t.Fatalf("纯数字应按秒解析: %v %s", err, d.DurationValue())
	}
	if err := d.UnmarshalText([]byte("1m30s")); err != nil || d.DurationValue() != 90*time.Second {
		t.Fatalf("Go duration 字符串解析失败: %v", err)
	}
	if err := d.UnmarshalText([]byte("later")); err == nil {
		t.Fatalf("非法值应报错")
	}
}
