package core

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/RecoveryAshes/webmirror/internal/utils"
	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	Crawl   models.CrawlConfig `mapstructure:"crawl"`
	Logging LoggingConfig      `mapstructure:"logging"`
	Output  OutputConfig       `mapstructure:"output"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	BaseDir    string `mapstructure:"base_dir"`
	ReportFile string `mapstructure:"report_file"`
}

// LoadConfig 加载配置文件
// configPath 为空时依次搜索 ./configs、当前目录、$XDG_CONFIG_HOME/webmirror 下的 config.yaml,
// 找不到则只使用默认值。未知的配置键视为错误
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, "webmirror"))
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &models.ConfigError{Source: configSource(v, configPath), Cause: fmt.Errorf("读取配置文件失败: %w", err)}
		}
	} else {
		utils.Debugf("使用配置文件: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.UnmarshalExact(&config); err != nil {
		return nil, &models.ConfigError{Source: configSource(v, configPath), Cause: fmt.Errorf("解析配置文件失败: %w", err)}
	}

	return &config, nil
}

// configSource 返回用于错误信息的配置来源
func configSource(v *viper.Viper, configPath string) string {
	if used := v.ConfigFileUsed(); used != "" {
		return used
	}
	if configPath != "" {
		return configPath
	}
	return "config.yaml"
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 爬取配置默认值
	v.SetDefault("crawl.regex", "")
	v.SetDefault("crawl.cookie_file", "")
	v.SetDefault("crawl.header_file", "")
	v.SetDefault("crawl.timeout", models.DefaultTimeout)
	v.SetDefault("crawl.chunk_size", models.DefaultChunkSize)
	v.SetDefault("crawl.insecure_skip_verify", false)
	v.SetDefault("crawl.verbose", false)

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", utils.DefaultLogDir())
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	// 输出配置默认值
	v.SetDefault("output.base_dir", ".")
	v.SetDefault("output.report_file", "")
}

// LogConfig 转换为日志系统配置
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}

// CLIFlags 命令行参数 (零值表示未设置)
type CLIFlags struct {
	Seeds      []string
	Regex      string
	CookieFile string
	HeaderFile string
	OutputDir  string
	ReportFile string
	Timeout    int
	Insecure   bool
	Verbose    bool
}

// GetCrawlConfig 合并命令行参数,生成最终的爬取配置
// 命令行参数优先于配置文件
func (c *Config) GetCrawlConfig(flags CLIFlags) models.CrawlConfig {
	crawl := c.Crawl
	crawl.Seeds = append([]string(nil), flags.Seeds...)

	if flags.Regex != "" {
		crawl.Regex = flags.Regex
	}
	if flags.CookieFile != "" {
		crawl.CookieFile = flags.CookieFile
	}
	if flags.HeaderFile != "" {
		crawl.HeaderFile = flags.HeaderFile
	}
	if flags.Timeout > 0 {
		crawl.Timeout = flags.Timeout
	}
	if flags.Insecure {
		crawl.InsecureSkipVerify = true
	}
	if flags.Verbose {
		crawl.Verbose = true
	}

	crawl.OutputDir = c.Output.BaseDir
	if flags.OutputDir != "" {
		crawl.OutputDir = flags.OutputDir
	}
	crawl.ReportFile = c.Output.ReportFile
	if flags.ReportFile != "" {
		crawl.ReportFile = flags.ReportFile
	}

	return crawl
}
