package config

import (
	"fmt"
	"os"

	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/RecoveryAshes/webmirror/internal/utils"
	"github.com/spf13/viper"
)

const (
	// DefaultHeaderFile 默认额外头部文件路径
	DefaultHeaderFile = "configs/headers.yaml"

	// MaxConfigFileSize 配置文件最大大小 (1MB)
	MaxConfigFileSize = 1 * 1024 * 1024
)

// HeaderConfigLoader 额外头部文件加载器
// 负责验证和解析YAML格式的HTTP头部文件
type HeaderConfigLoader struct {
	configPath string

	// explicit 路径由用户显式指定 (此时文件必须存在)
	explicit bool
}

// NewHeaderConfigLoader 创建头部文件加载器
// 路径为空时使用默认路径,默认文件不存在不算错误
func NewHeaderConfigLoader(configPath string) *HeaderConfigLoader {
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultHeaderFile
	}
	return &HeaderConfigLoader{
		configPath: configPath,
		explicit:   explicit,
	}
}

// Path 返回加载器使用的文件路径
func (hcl *HeaderConfigLoader) Path() string {
	return hcl.configPath
}

// ValidateFileSize 验证配置文件大小是否在限制内
func (hcl *HeaderConfigLoader) ValidateFileSize() error {
	info, err := os.Stat(hcl.configPath)
	if err != nil {
		return fmt.Errorf("无法读取配置文件信息 [%s]: %w", hcl.configPath, err)
	}

	if info.Size() > MaxConfigFileSize {
		return &models.ConfigError{
			Source: hcl.configPath,
			Cause: fmt.Errorf("配置文件过大: %d 字节 (最大 %d 字节)",
				info.Size(), MaxConfigFileSize),
		}
	}

	return nil
}

// LoadConfig 加载头部文件并解析为HeaderConfig
// 执行流程:
//  1. 默认路径下文件不存在时返回空配置
//  2. 验证文件大小是否在限制内
//  3. 使用Viper解析YAML并绑定到HeaderConfig
func (hcl *HeaderConfigLoader) LoadConfig() (*models.HeaderConfig, error) {
	if _, err := os.Stat(hcl.configPath); os.IsNotExist(err) {
		if hcl.explicit {
			return nil, &models.ConfigError{Source: hcl.configPath, Cause: err}
		}
		utils.Debugf("未找到头部文件 [%s], 仅使用默认头部", hcl.configPath)
		return &models.HeaderConfig{Headers: make(map[string]string)}, nil
	}

	if err := hcl.ValidateFileSize(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(hcl.configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, &models.ConfigError{
			Source: hcl.configPath,
			Cause:  err,
		}
	}

	var config models.HeaderConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, &models.ConfigError{
			Source: hcl.configPath,
			Cause:  fmt.Errorf("配置绑定失败: %w", err),
		}
	}

	// 文件存在但headers为空
	if config.Headers == nil {
		config.Headers = make(map[string]string)
	}

	return &config, nil
}
