package core

import (
	"net/http"

	"github.com/RecoveryAshes/webmirror/internal/config"
	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/RecoveryAshes/webmirror/internal/utils"
)

const (
	// DefaultUserAgent 默认User-Agent
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
)

// HeaderManager 管理HTTP请求头部
// 实现 HeaderProvider 接口,按目标主机注入cookie文件中匹配的Cookie
type HeaderManager struct {
	// defaults 系统默认头部 (硬编码)
	defaults http.Header

	// config 从头部文件加载的头部
	config http.Header

	// cli 从命令行参数解析的头部
	cli http.Header

	// cookies cookie文件内容 (可为nil)
	cookies *models.CookieTable

	// validator 头部验证器
	validator *utils.HeaderValidator

	// redactor 头部脱敏器
	redactor *utils.HeaderRedactor

	// configLoader 头部文件加载器
	configLoader *config.HeaderConfigLoader

	// loaded 标记头部文件是否已加载并通过验证
	loaded bool
}

// NewHeaderManager 创建头部管理器
// 参数:
//   - headerFile: 额外头部文件路径 (为空则尝试默认路径,不存在时忽略)
//   - cliHeaders: 命令行传递的头部字符串列表
//   - cookies: cookie表,为nil时不注入Cookie
//
// 返回:
//   - *HeaderManager: 头部管理器实例
//   - error: 如果命令行参数解析失败
func NewHeaderManager(headerFile string, cliHeaders []string, cookies *models.CookieTable) (*HeaderManager, error) {
	hm := &HeaderManager{
		defaults:     getDefaultHeaders(),
		cookies:      cookies,
		validator:    utils.NewHeaderValidator(),
		redactor:     utils.NewHeaderRedactor(),
		configLoader: config.NewHeaderConfigLoader(headerFile),
		config:       make(http.Header),
	}

	if len(cliHeaders) > 0 {
		cliHeadersParsed, err := models.CliHeaders(cliHeaders).Parse()
		if err != nil {
			return nil, &models.ConfigError{Source: "--header", Cause: err}
		}
		hm.cli = cliHeadersParsed
	} else {
		hm.cli = make(http.Header)
	}

	return hm, nil
}

// getDefaultHeaders 返回系统默认头部
func getDefaultHeaders() http.Header {
	return http.Header{
		"User-Agent":      []string{DefaultUserAgent},
		"Accept":          []string{"*/*"},
		"Accept-Encoding": []string{"gzip, deflate, br"},
	}
}

// LoadConfig 加载头部文件并验证全部头部
// 如果已加载则跳过
func (hm *HeaderManager) LoadConfig() error {
	if hm.loaded {
		return nil
	}

	headerConfig, err := hm.configLoader.LoadConfig()
	if err != nil {
		utils.Errorf("加载HTTP头部文件失败: %v", err)
		return err
	}

	hm.config = make(http.Header)
	for name, value := range headerConfig.Headers {
		hm.config.Set(name, value)
	}

	if err := hm.Validate(); err != nil {
		return err
	}
	hm.loaded = true

	if len(headerConfig.Headers) > 0 {
		utils.Debugf("成功加载%d个HTTP头部配置: %v", len(headerConfig.Headers), hm.redactor.Redact(hm.config))
	}
	return nil
}

// Validate 验证所有头部的合法性
// 验证顺序: 默认 → 配置 → 命令行
func (hm *HeaderManager) Validate() error {
	if err := hm.validator.Validate(hm.defaults); err != nil {
		utils.Errorf("默认头部验证失败: %v", err)
		return err
	}

	if err := hm.validator.Validate(hm.config); err != nil {
		utils.Errorf("头部文件验证失败: %v", err)
		return err
	}

	if err := hm.validator.Validate(hm.cli); err != nil {
		utils.Errorf("命令行头部验证失败: %v", err)
		return err
	}

	utils.Debugf("所有HTTP头部验证通过")
	return nil
}

// GetMergedHeaders 按优先级合并头部 (default < config < cli)
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)

	for name, values := range hm.defaults {
		result[name] = values
	}
	for name, values := range hm.config {
		result[name] = values
	}
	for name, values := range hm.cli {
		result[name] = values
	}

	return result
}

// GetSafeHeaders 返回脱敏后的头部 (用于日志)
func (hm *HeaderManager) GetSafeHeaders() map[string]string {
	return hm.redactor.Redact(hm.GetMergedHeaders())
}

// GetHeaders 实现 HeaderProvider 接口
// 合并后的头部加上cookie表中与host匹配的Cookie;命令行显式设置的Cookie优先
func (hm *HeaderManager) GetHeaders(host string) (http.Header, error) {
	if err := hm.LoadConfig(); err != nil {
		return nil, err
	}

	headers := hm.GetMergedHeaders()
	if hm.cli.Get("Cookie") != "" {
		return headers, nil
	}

	if cookie := hm.cookies.HeaderFor(host); cookie != "" {
		headers.Set("Cookie", cookie)
		utils.Debugf("注入Cookie [%s]: %s", host, hm.redactor.RedactHeaderValue("Cookie", cookie))
	}
	return headers, nil
}
