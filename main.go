package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/any-index/any-index/internal/account"
	"github.com/any-index/any-index/internal/browse"
	"github.com/any-index/any-index/internal/cache"
	"github.com/any-index/any-index/internal/classify"
	"github.com/any-index/any-index/internal/config"
	"github.com/any-index/any-index/internal/docs"
	"github.com/any-index/any-index/internal/guard"
	"github.com/any-index/any-index/internal/logging"
	"github.com/any-index/any-index/internal/preview"
	"github.com/any-index/any-index/internal/provider"
	"github.com/any-index/any-index/internal/resolver"
	"github.com/any-index/any-index/internal/server"
	"github.com/any-index/any-index/internal/server/routes"
	"github.com/any-index/any-index/internal/upstream"
	"github.com/any-index/any-index/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["accounts"] = config.AccountSummaries(cfg.Accounts)
		fields["providers"] = provider.Types()
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序：配置 → 账号目录（provider）→ 缓存 → 处理链 → Fiber server。
	httpClient := upstream.NewClient(cfg.Global.UpstreamTimeout.DurationValue())
	directory, err := account.FromConfig(context.Background(), cfg, httpClient, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化账号失败: %v\n", err)
		return 1
	}

	store, err := cache.NewStore(cfg.Global.CacheBackend, cfg.Global.StoragePath)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化缓存失败: %v\n", err)
		return 1
	}
	defer store.Close()

	app, err := buildApp(cfg, directory, store, httpClient, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "构建 HTTP 服务失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["accounts"] = config.AccountSummaries(cfg.Accounts)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["cache_backend"] = cfg.Global.CacheBackend
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   cfg.Global.ListenPort,
	}).Info("Fiber 服务启动")

	if err := app.Listen(fmt.Sprintf(":%d", cfg.Global.ListenPort)); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// buildApp 组装浏览处理链并注册全部路由。
func buildApp(cfg *config.Config, directory *account.Directory, store cache.Store, httpClient *http.Client, logger *logrus.Logger) (*fiber.App, error) {
	ttl := cfg.Global.CacheExpires.DurationValue()
	gateway := cache.NewGateway(store, logger)
	fetcher := upstream.NewHTTPFetcher(httpClient, cfg.Global.MaxPreviewSize)

	presenter := preview.NewPresenter(classify.New(cfg.Show.Extensions()), gateway, fetcher, preview.Options{
		MaxPreviewSize: cfg.Global.MaxPreviewSize,
		CacheTTL:       ttl,
		Adapters: preview.Adapters{
			DashHost:     cfg.Global.DashHost,
			OfficeViewer: cfg.Global.OfficeViewer,
		},
	}, logger)

	r := resolver.New(resolver.Deps{
		Accounts:  directory,
		Gateway:   gateway,
		Guard:     guard.New(cfg.HiddenIDs(), cfg.Global.HideInListings),
		Presenter: presenter,
		Extractor: docs.NewExtractor(gateway, fetcher, ttl, logger),
		CacheTTL:  ttl,
		Logger:    logger,
	})

	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		Browser:    browse.NewHandler(r, logger),
		ListenPort: cfg.Global.ListenPort,
	})
	if err != nil {
		return nil, err
	}
	routes.RegisterDiagnostics(app, directory)
	server.RegisterFallback(app, logger)
	return app, nil
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("any-index", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 ANY_INDEX_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("ANY_INDEX_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}
