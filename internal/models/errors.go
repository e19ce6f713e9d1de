package models

import (
	"errors"
	"fmt"
)

// ErrNoSeeds 没有提供任何种子URL
var ErrNoSeeds = errors.New("至少需要一个种子URL")

// ConfigError 配置错误 (命令行参数、配置文件、cookie文件)
// 在爬取开始前报告,进程以非零状态退出
type ConfigError struct {
	// Source 出错的来源 (文件路径或参数名)
	Source string
	// Cause 底层错误 (如viper.ConfigParseError)
	Cause error
}

// Error 实现error接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置错误 [%s]: %v", e.Source, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// FetchError 抓取失败 (连接拒绝、超时、非2xx状态)
// 单个URL可恢复: 记录日志后放弃该URL,循环继续
type FetchError struct {
	URL        string
	StatusCode int // 传输层失败时为0
	Cause      error
}

// Error 实现error接口
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("抓取失败 [%s]: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("抓取失败 [%s]: %v", e.URL, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// DecodeError 声明的字符集无法解码响应体
// 可恢复: 跳过该页的链接提取,原始字节仍然保存
type DecodeError struct {
	URL     string
	Charset string
	Cause   error
}

// Error 实现error接口
func (e *DecodeError) Error() string {
	return fmt.Sprintf("解码失败 [%s] (charset=%s): %v", e.URL, e.Charset, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// DirectoryCreationError 无法创建上级目录 ("已存在"除外)
// 致命错误: 没有目标位置就无法安全继续,终止整个爬取
type DirectoryCreationError struct {
	Dir   string
	Cause error
}

// Error 实现error接口
func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("创建目录失败 [%s]: %v", e.Dir, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *DirectoryCreationError) Unwrap() error {
	return e.Cause
}

// ReadError 读取响应体中途失败 (连接重置、超时)
// 按单个URL可恢复处理;已写入的部分文件保留在磁盘上
type ReadError struct {
	URL     string
	Written int64 // 失败前已写入的字节数
	Cause   error
}

// Error 实现error接口
func (e *ReadError) Error() string {
	return fmt.Sprintf("读取响应失败 [%s] (已写入 %d 字节): %v", e.URL, e.Written, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ReadError) Unwrap() error {
	return e.Cause
}
