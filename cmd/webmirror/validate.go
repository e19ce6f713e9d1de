package main

import (
	"fmt"

	"github.com/RecoveryAshes/webmirror/internal/core"
	"github.com/RecoveryAshes/webmirror/internal/models"
)

// ValidateFlags 验证命令行标志
// 只检查命令行本身给出的值,配置文件合并后的结果由 CrawlConfig.Validate 检查
func ValidateFlags(flags core.CLIFlags, cliHeaders []string) error {
	// 验证种子URL
	for _, seed := range flags.Seeds {
		if err := models.ValidateURL(seed); err != nil {
			return &models.ConfigError{Source: seed, Cause: fmt.Errorf("无效的种子URL: %w", err)}
		}
	}

	// 验证超时 (0 表示使用配置文件的值)
	if flags.Timeout < 0 || flags.Timeout > 600 {
		return &models.ConfigError{Source: "--timeout", Cause: fmt.Errorf("超时必须在1-600秒之间,当前值: %d", flags.Timeout)}
	}

	// 验证过滤正则
	filterOnly := models.CrawlConfig{Regex: flags.Regex}
	if _, err := filterOnly.FilterPattern(); err != nil {
		return &models.ConfigError{Source: "--regex", Cause: err}
	}

	// 验证头部格式
	if _, err := models.CliHeaders(cliHeaders).Parse(); err != nil {
		return &models.ConfigError{Source: "--header", Cause: err}
	}

	return nil
}
