package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/RecoveryAshes/webmirror/internal/config"
	"github.com/RecoveryAshes/webmirror/internal/core"
	"github.com/RecoveryAshes/webmirror/internal/crawlers"
	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/RecoveryAshes/webmirror/internal/utils"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

const (
	// exitUsage 参数错误或显示帮助
	exitUsage = 1
	// exitInterrupted 用户中断 (128 + SIGINT)
	exitInterrupted = 130
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// HTTP头部参数
	headers        []string // 自定义HTTP请求头
	headerFile     string   // 额外头部YAML文件
	cookieFile     string   // Netscape格式cookie文件
	validateConfig bool     // 验证头部配置

	// 爬取参数
	regex      string
	urlFile    string
	outputDir  string
	reportFile string
	timeout    int
	insecure   bool
)

// appConfig 由 PersistentPreRunE 加载
var appConfig *core.Config

// exitError 携带进程退出码的错误
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("退出码 %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

var rootCmd = &cobra.Command{
	Use:   "webmirror [flags] url1 [url2 ...]",
	Short: "网站镜像工具",
	Long: `webmirror - 将网站下载为本地目录树

从种子URL开始抓取页面,按 "主机/路径" 的结构保存到本地。
提供 -r 正则时,页面中匹配该正则 (从URL开头匹配) 的链接会被继续抓取;
不提供时只抓取种子URL本身。已存在的本地文件不会被覆盖。

示例:
  # 只下载首页
  webmirror http://example.com/

  # 递归镜像整个站点
  webmirror -r 'http://example\.com/' http://example.com/

  # 携带cookie与自定义头部
  webmirror -c cookies.txt -H "User-Agent: MyBot/1.0" -r 'http://example\.com/docs/' http://example.com/docs/

版本: ` + Version + `
构建时间: ` + BuildTime,
	Args: cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		cfg, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		appConfig = cfg

		// 初始化日志系统,命令行参数覆盖配置文件
		logConfig := cfg.LogConfig()
		if verbose {
			logConfig.Level = "debug"
		}
		if logLevel != "" {
			logConfig.Level = logLevel
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Debug("详细模式已启用")
		}
		return nil
	},
	RunE: runMirror,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("webmirror %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

var flattenDryRun bool

var flattenCmd = &cobra.Command{
	Use:   "flatten <dir>",
	Short: "将只含 _root_ 的目录折叠为同名文件",
	Long: `镜像完成后整理目录树: 目录中只有 _root_ 文件时,
用该文件替换目录本身 (example.com/docs/_root_ -> example.com/docs)。
目录中还有其他文件时保持不变。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		results, err := crawlers.FlattenRootFiles(args[0], flattenDryRun)
		if err != nil {
			return err
		}

		flattened := 0
		for _, r := range results {
			if r.Skipped {
				utils.Debugf("跳过 %s: %s", r.RootFile, r.Reason)
				continue
			}
			flattened++
			fmt.Printf("%s -> %s\n", r.RootFile, color.GreenString("%s", r.Target))
		}

		if flattenDryRun {
			utils.Infof("预演: 可折叠 %d 个, 跳过 %d 个", flattened, len(results)-flattened)
		} else {
			utils.Infof("已折叠 %d 个, 跳过 %d 个", flattened, len(results)-flattened)
		}
		return nil
	},
}

// runMirror 根命令: 组装配置并执行一次镜像
func runMirror(cmd *cobra.Command, args []string) error {
	flags := core.CLIFlags{
		Regex:      regex,
		CookieFile: cookieFile,
		HeaderFile: headerFile,
		OutputDir:  outputDir,
		ReportFile: reportFile,
		Timeout:    timeout,
		Insecure:   insecure,
		Verbose:    verbose,
	}

	if validateConfig {
		return runValidateConfig(appConfig.GetCrawlConfig(flags))
	}

	seeds, err := collectSeeds(args, urlFile)
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		cmd.Usage()
		return &exitError{code: exitUsage}
	}
	flags.Seeds = seeds

	if err := ValidateFlags(flags, headers); err != nil {
		cmd.Usage()
		return &exitError{code: exitUsage, err: err}
	}

	crawlConfig := appConfig.GetCrawlConfig(flags)
	if err := crawlConfig.Validate(); err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	// 参数已通过校验,后续错误不再打印用法
	cmd.SilenceUsage = true

	// Ctrl+C 取消爬取,循环立即停止
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress utils.ProgressSink
	if crawlConfig.Verbose {
		progress = utils.NewTerminalProgress(os.Stderr)
	}

	crawler, err := core.NewHTTPCrawler(crawlConfig, headers, progress)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	report, runErr := crawler.Run(ctx)

	if reporter := utils.NewReporter(crawlConfig.ReportFile); reporter.Enabled() && report != nil {
		if err := reporter.GenerateReport(report); err != nil {
			utils.Warnf("生成报告失败: %v", err)
		}
	}

	if report != nil {
		printSummary(report.Stats)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return &exitError{code: exitInterrupted, err: fmt.Errorf("爬取被中断")}
		}
		return fmt.Errorf("爬取失败: %w", runErr)
	}

	utils.Info("镜像任务完成")
	return nil
}

// runValidateConfig 只加载并校验头部配置,打印脱敏后的有效头部
func runValidateConfig(crawlConfig models.CrawlConfig) error {
	utils.Info("验证HTTP头部配置...")

	var cookies *models.CookieTable
	if crawlConfig.CookieFile != "" {
		table, err := config.NewCookieFileLoader(crawlConfig.CookieFile).Load()
		if err != nil {
			return err
		}
		cookies = table
	}

	headerManager, err := core.NewHeaderManager(crawlConfig.HeaderFile, headers, cookies)
	if err != nil {
		return err
	}
	if err := headerManager.LoadConfig(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	safeHeaders := headerManager.GetSafeHeaders()
	utils.Info("配置验证通过")
	utils.Infof("当前有效的HTTP头部 (%d个):", len(safeHeaders))
	for name, value := range safeHeaders {
		utils.Infof("  %s: %s", name, value)
	}
	return nil
}

// collectSeeds 合并位置参数与URL文件中的种子
func collectSeeds(args []string, urlFile string) ([]string, error) {
	seeds := append([]string(nil), args...)
	if urlFile == "" {
		return seeds, nil
	}

	urls, err := utils.ReadURLsFromFile(urlFile)
	if err != nil {
		return nil, &exitError{code: exitUsage, err: &models.ConfigError{Source: urlFile, Cause: err}}
	}
	return append(seeds, urls...), nil
}

// printSummary 输出统计结果
func printSummary(stats models.TaskStats) {
	title := color.New(color.Bold)
	line := strings.Repeat("=", 50)

	fmt.Println()
	fmt.Println(line)
	title.Println("镜像统计")
	fmt.Println(line)
	fmt.Printf("访问URL数:   %s\n", color.GreenString("%d", stats.VisitedURLs))
	fmt.Printf("保存文件:    %s\n", color.GreenString("%d", stats.SavedFiles))
	fmt.Printf("已存在跳过:  %s\n", color.YellowString("%d", stats.SkippedFiles))
	fmt.Printf("失败URL:     %s\n", color.RedString("%d", stats.FailedURLs))
	if stats.DecodeErrors > 0 {
		fmt.Printf("解码失败:    %s\n", color.YellowString("%d", stats.DecodeErrors))
	}
	fmt.Printf("入队链接:    %d (未通过过滤 %d)\n", stats.QueuedLinks, stats.FilteredLinks)
	fmt.Printf("总大小:      %s\n", humanize.Bytes(uint64(stats.TotalSize)))
	fmt.Printf("总耗时:      %.2f秒\n", stats.Duration)
	fmt.Println(line)
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式 (显示下载进度)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// HTTP头部参数
	rootCmd.Flags().StringArrayVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.Flags().StringVar(&headerFile, "header-file", "", "额外头部YAML文件 (默认 "+config.DefaultHeaderFile+")")
	rootCmd.Flags().StringVarP(&cookieFile, "cookiefile", "c", "", "Netscape格式cookie文件")
	rootCmd.Flags().BoolVar(&validateConfig, "validate-config", false, "验证头部配置后退出")

	// 爬取参数
	rootCmd.Flags().StringVarP(&regex, "regex", "r", "", "递归过滤正则,从URL开头匹配 (不指定时只抓取种子)")
	rootCmd.Flags().StringVarP(&urlFile, "url-file", "f", "", "包含种子URL列表的文件路径")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "镜像根目录 (默认当前目录)")
	rootCmd.Flags().StringVar(&reportFile, "report", "", "JSON报告输出路径")
	rootCmd.Flags().IntVar(&timeout, "timeout", 0, "请求超时(秒) (默认30)")
	rootCmd.Flags().BoolVar(&insecure, "insecure", false, "跳过TLS证书验证")

	// 帮助信息输出后以状态1退出
	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		defaultHelp(cmd, args)
		os.Exit(exitUsage)
	})

	rootCmd.SilenceErrors = true

	// 添加子命令
	flattenCmd.Flags().BoolVar(&flattenDryRun, "dry-run", false, "只显示将要折叠的目录")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(flattenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		code := exitUsage
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			code = exitErr.code
			if exitErr.err == nil {
				os.Exit(code)
			}
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("错误:"), err)
		os.Exit(code)
	}
}
