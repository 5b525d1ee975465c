package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/any-index/any-index/internal/provider"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// GlobalConfig 描述全局运行时行为，所有账号共享同一份参数。
type GlobalConfig struct {
	ListenPort      int      `mapstructure:"ListenPort"`
	LogLevel        string   `mapstructure:"LogLevel"`
	LogFilePath     string   `mapstructure:"LogFilePath"`
	LogMaxSize      int      `mapstructure:"LogMaxSize"`
	LogMaxBackups   int      `mapstructure:"LogMaxBackups"`
	LogCompress     bool     `mapstructure:"LogCompress"`
	CacheExpires    Duration `mapstructure:"CacheExpires"`
	CacheBackend    string   `mapstructure:"CacheBackend"`
	StoragePath     string   `mapstructure:"StoragePath"`
	UpstreamTimeout Duration `mapstructure:"UpstreamTimeout"`
	PrimaryAccount  int      `mapstructure:"PrimaryAccount"`
	HashSalt        string   `mapstructure:"HashSalt"`
	HashMinLength   int      `mapstructure:"HashMinLength"`
	HideInListings  bool     `mapstructure:"HideInListings"`
	MaxPreviewSize  int64    `mapstructure:"MaxPreviewSize"`
	DashHost        string   `mapstructure:"DashHost"`
	OfficeViewer    string   `mapstructure:"OfficeViewer"`
}

// ShowConfig 对应 show_* 设置，每项为空格分隔的扩展名列表。
type ShowConfig struct {
	Stream string `mapstructure:"Stream"`
	Image  string `mapstructure:"Image"`
	Video  string `mapstructure:"Video"`
	Dash   string `mapstructure:"Dash"`
	Audio  string `mapstructure:"Audio"`
	Code   string `mapstructure:"Code"`
	Doc    string `mapstructure:"Doc"`
}

// Extensions 将各分类拆分为小写扩展名切片，键为分类名。
func (s ShowConfig) Extensions() map[string][]string {
	return map[string][]string{
		"stream": splitExtensions(s.Stream),
		"image":  splitExtensions(s.Image),
		"video":  splitExtensions(s.Video),
		"dash":   splitExtensions(s.Dash),
		"audio":  splitExtensions(s.Audio),
		"code":   splitExtensions(s.Code),
		"doc":    splitExtensions(s.Doc),
	}
}

func splitExtensions(raw string) []string {
	fields := strings.Fields(strings.ToLower(raw))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.TrimPrefix(f, "."))
	}
	return out
}

// HiddenConfig 列出某个账号 hash 下需要隐藏的条目 ID。
type HiddenConfig struct {
	Hash string   `mapstructure:"Hash"`
	IDs  []string `mapstructure:"IDs"`
}

// AccountConfig 描述一个远端存储账号。
type AccountConfig struct {
	ID        int    `mapstructure:"ID"`
	Name      string `mapstructure:"Name"`
	Type      string `mapstructure:"Type"`
	Root      string `mapstructure:"Root"`
	ListLimit int    `mapstructure:"ListLimit"`

	Endpoint    string `mapstructure:"Endpoint"`
	DrivePath   string `mapstructure:"DrivePath"`
	AccessToken string `mapstructure:"AccessToken"`

	Bucket         string   `mapstructure:"Bucket"`
	Region         string   `mapstructure:"Region"`
	AccessKey      string   `mapstructure:"AccessKey"`
	SecretKey      string   `mapstructure:"SecretKey"`
	PresignExpires Duration `mapstructure:"PresignExpires"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global   GlobalConfig    `mapstructure:",squash"`
	Show     ShowConfig      `mapstructure:"Show"`
	Hidden   []HiddenConfig  `mapstructure:"Hidden"`
	Accounts []AccountConfig `mapstructure:"Account"`
}

// ProviderOptions 将账号配置映射为 provider 构造参数（HTTP 客户端与 logger 由调用方补齐）。
func (a AccountConfig) ProviderOptions() provider.Options {
	return provider.Options{
		AccountID:      a.ID,
		Name:           a.Name,
		Endpoint:       a.Endpoint,
		DrivePath:      a.DrivePath,
		AccessToken:    a.AccessToken,
		Bucket:         a.Bucket,
		Region:         a.Region,
		AccessKey:      a.AccessKey,
		SecretKey:      a.SecretKey,
		PresignExpires: a.PresignExpires.DurationValue(),
	}
}

// HiddenIDs 返回 hash -> 隐藏 ID 集合，重复的 hash 会被合并。
func (c *Config) HiddenIDs() map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(c.Hidden))
	for _, h := range c.Hidden {
		set, ok := out[h.Hash]
		if !ok {
			set = make(map[string]struct{}, len(h.IDs))
			out[h.Hash] = set
		}
		for _, id := range h.IDs {
			set[id] = struct{}{}
		}
	}
	return out
}

// AccountSummaries 返回 "name:type" 摘要列表，供启动日志使用。
func AccountSummaries(accounts []AccountConfig) []string {
	if len(accounts) == 0 {
		return nil
	}
	result := make([]string, len(accounts))
	for i, acc := range accounts {
		result[i] = fmt.Sprintf("%s:%s", acc.Name, acc.Type)
	}
	return result
}
