package models

import (
	"io"
	"net/http"
)

// DefaultCharset 响应未声明字符集时使用
const DefaultCharset = "utf-8"

// FetchResult 一次HTTP GET的结果
// Body 长度事先未知,调用方分块读取并负责关闭
type FetchResult struct {
	URL         string
	StatusCode  int
	Header      http.Header
	ContentType string // 媒体类型 (已转小写,不含参数)
	Charset     string // 声明的字符集,缺省为 DefaultCharset
	Body        io.ReadCloser
}

// IsHTML 判断是否为 text/html 内容
func (r *FetchResult) IsHTML() bool {
	return len(r.ContentType) >= len("text/html") && r.ContentType[:len("text/html")] == "text/html"
}

// StepKind 单次迭代的结果类别
type StepKind int

const (
	StepSuccess   StepKind = iota // 已抓取并保存
	StepTransient                 // 可恢复失败,放弃该URL,继续循环
	StepFatal                     // 致命错误,终止循环
)

// String 实现fmt.Stringer
func (k StepKind) String() string {
	switch k {
	case StepSuccess:
		return "success"
	case StepTransient:
		return "transient"
	case StepFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// StepOutcome 单次迭代的结果
type StepOutcome struct {
	Kind StepKind
	URL  string
	Err  error // Kind为Success时为nil
}
