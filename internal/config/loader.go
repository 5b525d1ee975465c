package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	DefaultListenPort     = 8080
	DefaultCacheExpires   = 30 * time.Minute
	DefaultListLimit      = 10
	DefaultHashMinLength  = 6
	DefaultMaxPreviewSize = 5 * 1024 * 1024
	DefaultDashHost       = "sharepoint.com"
	DefaultOfficeViewer   = "https://view.officeapps.live.com/op/view.aspx"
	DefaultCacheBackend   = "memory"
)

var defaultShow = map[string]string{
	"Show.Stream": "txt log",
	"Show.Image":  "ico bmp gif jpg jpeg jpe jfif tif tiff png heic webp",
	"Show.Video":  "mp4 webm",
	"Show.Dash":   "avi mpg mpeg rm rmvb mov wmv mkv asf flv m4v",
	"Show.Audio":  "ogg mp3 wav opus m4a flac",
	"Show.Code":   "html htm css go java js json sh md php py toml yaml yml",
	"Show.Doc":    "csv doc docx odp ods odt pot potm potx pps ppsx ppt pptm pptx rtf xls xlsx",
}

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	for i := range cfg.Accounts {
		applyAccountDefaults(&cfg.Accounts[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absStorage, err := filepath.Abs(cfg.Global.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	cfg.Global.StoragePath = absStorage

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", DefaultListenPort)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("CacheExpires", int(DefaultCacheExpires/time.Second))
	v.SetDefault("CacheBackend", DefaultCacheBackend)
	v.SetDefault("StoragePath", "./storage")
	v.SetDefault("UpstreamTimeout", "30s")
	v.SetDefault("HashMinLength", DefaultHashMinLength)
	v.SetDefault("MaxPreviewSize", DefaultMaxPreviewSize)
	v.SetDefault("DashHost", DefaultDashHost)
	v.SetDefault("OfficeViewer", DefaultOfficeViewer)
	for key, value := range defaultShow {
		v.SetDefault(key, value)
	}
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = DefaultListenPort
	}
	if g.CacheExpires.DurationValue() == 0 {
		g.CacheExpires = Duration(DefaultCacheExpires)
	}
	if g.UpstreamTimeout.DurationValue() == 0 {
		g.UpstreamTimeout = Duration(30 * time.Second)
	}
	g.CacheBackend = strings.ToLower(strings.TrimSpace(g.CacheBackend))
	if g.CacheBackend == "" {
		g.CacheBackend = DefaultCacheBackend
	}
	if g.MaxPreviewSize <= 0 {
		g.MaxPreviewSize = DefaultMaxPreviewSize
	}
}

func applyAccountDefaults(a *AccountConfig) {
	a.Type = strings.ToLower(strings.TrimSpace(a.Type))
	if strings.TrimSpace(a.Root) == "" {
		a.Root = "/"
	}
	if a.ListLimit <= 0 {
		a.ListLimit = DefaultListLimit
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
