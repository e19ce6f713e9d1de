package models

import (
	"fmt"
	"os"
	"regexp"
)

const (
	// DefaultChunkSize 默认分块读取大小 8KiB
	DefaultChunkSize = 8 * 1024

	// DefaultTimeout 默认请求超时(秒)
	DefaultTimeout = 30
)

// CrawlState 爬取循环状态
type CrawlState string

const (
	StateRunning  CrawlState = "running"  // 待爬集合非空
	StateDraining CrawlState = "draining" // 正在处理一个URL
	StateDone     CrawlState = "done"     // 待爬集合为空,终止
)

// TaskStats 任务统计
type TaskStats struct {
	VisitedURLs   int     `json:"visited_urls"`   // 成功抓取的URL数
	SavedFiles    int     `json:"saved_files"`    // 写入的文件数
	SkippedFiles  int     `json:"skipped_files"`  // 已存在而跳过的文件数
	FailedURLs    int     `json:"failed_urls"`    // 抓取失败的URL数
	DecodeErrors  int     `json:"decode_errors"`  // 解码失败的页面数
	QueuedLinks   int     `json:"queued_links"`   // 加入待爬集合的链接数
	FilteredLinks int     `json:"filtered_links"` // 未通过过滤的链接数
	TotalSize     int64   `json:"total_size"`     // 写入总字节数
	Duration      float64 `json:"duration"`       // 总耗时(秒)
}

// CrawlConfig 爬取配置
// 构造爬取器时传入,之后只读
type CrawlConfig struct {
	Seeds              []string `json:"seeds" mapstructure:"-"`                                   // 种子URL (只来自命令行)
	Regex              string   `json:"regex" mapstructure:"regex"`                               // 递归过滤正则,从URL开头匹配
	CookieFile         string   `json:"cookie_file" mapstructure:"cookie_file"`                   // Netscape格式cookie文件
	HeaderFile         string   `json:"header_file" mapstructure:"header_file"`                   // 额外头部YAML文件
	Timeout            int      `json:"timeout" mapstructure:"timeout"`                           // 请求超时(秒) (默认:30)
	ChunkSize          int      `json:"chunk_size" mapstructure:"chunk_size"`                     // 分块读取大小 (默认:8192)
	InsecureSkipVerify bool     `json:"insecure_skip_verify" mapstructure:"insecure_skip_verify"` // 跳过TLS证书验证
	Verbose            bool     `json:"verbose" mapstructure:"verbose"`                           // 详细输出

	OutputDir  string `json:"output_dir" mapstructure:"-"`  // 镜像根目录
	ReportFile string `json:"report_file" mapstructure:"-"` // JSON报告路径(为空不生成)
}

// Validate 验证配置
func (c *CrawlConfig) Validate() error {
	if len(c.Seeds) == 0 {
		return &ConfigError{Source: "seeds", Cause: ErrNoSeeds}
	}
	for _, seed := range c.Seeds {
		if err := ValidateURL(seed); err != nil {
			return &ConfigError{Source: seed, Cause: err}
		}
	}

	if _, err := c.FilterPattern(); err != nil {
		return &ConfigError{Source: "--regex", Cause: err}
	}

	if c.CookieFile != "" {
		if _, err := os.Stat(c.CookieFile); err != nil {
			return &ConfigError{Source: c.CookieFile, Cause: fmt.Errorf("cookie文件不可用: %w", err)}
		}
	}

	if c.Timeout < 1 || c.Timeout > 600 {
		return &ConfigError{Source: "timeout", Cause: fmt.Errorf("超时必须在1-600秒之间,当前值: %d", c.Timeout)}
	}
	if c.ChunkSize < 512 || c.ChunkSize > 4*1024*1024 {
		return &ConfigError{Source: "chunk_size", Cause: fmt.Errorf("分块大小必须在512B-4MB之间,当前值: %d", c.ChunkSize)}
	}
	return nil
}

// FilterPattern 编译递归过滤正则
// 匹配锚定在URL开头 (不是子串搜索);未配置时返回nil
// 先单独编译用户正则,括号不配对的输入不能跳出外层分组
func (c *CrawlConfig) FilterPattern() (*regexp.Regexp, error) {
	if c.Regex == "" {
		return nil, nil
	}
	if _, err := regexp.Compile(c.Regex); err != nil {
		return nil, fmt.Errorf("正则表达式无效: %w", err)
	}
	re, err := regexp.Compile(`^(?:` + c.Regex + `)`)
	if err != nil {
		return nil, fmt.Errorf("正则表达式无效: %w", err)
	}
	return re, nil
}
