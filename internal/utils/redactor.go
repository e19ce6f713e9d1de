package utils

import (
	"net/http"
	"sort"
	"strings"
)

// sensitiveKeywords 头部名称包含任一关键字即视为敏感 (小写)
var sensitiveKeywords = []string{
	"authorization",
	"cookie",
	"token",
	"secret",
	"password",
	"credential",
	"key",
}

// HeaderRedactor 在头部写入日志前隐藏敏感值
type HeaderRedactor struct {
	keywords []string
}

// NewHeaderRedactor 创建头部脱敏器
func NewHeaderRedactor() *HeaderRedactor {
	return &HeaderRedactor{keywords: sensitiveKeywords}
}

// IsSensitiveHeader 按名称关键字判断头部是否敏感
func (hr *HeaderRedactor) IsSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range hr.keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// RedactHeaderValue 脱敏单个头部值,非敏感头部原样返回
//
// 策略:
//  1. Cookie 保留每个cookie的名称,隐藏值 ("sid=***; lang=***")
//  2. "Bearer xxx" 只保留前缀
//  3. 长于8字节的值保留首尾各4字节
//  4. 其他完全隐藏
func (hr *HeaderRedactor) RedactHeaderValue(name, value string) string {
	if !hr.IsSensitiveHeader(name) {
		return value
	}
	if strings.EqualFold(name, "Cookie") {
		return redactCookieLine(value)
	}
	if strings.HasPrefix(value, "Bearer ") {
		return "Bearer ***"
	}
	if len(value) > 8 {
		return value[:4] + "***" + value[len(value)-4:]
	}
	return "***"
}

// redactCookieLine 隐藏 "a=1; b=2" 中每个cookie的值
func redactCookieLine(line string) string {
	pairs := strings.Split(line, ";")
	for i, pair := range pairs {
		name, _, _ := strings.Cut(strings.TrimSpace(pair), "=")
		pairs[i] = name + "=***"
	}
	return strings.Join(pairs, "; ")
}

// Redact 返回脱敏后的头部 (每个头部只取第一个值),用于日志
func (hr *HeaderRedactor) Redact(headers http.Header) map[string]string {
	result := make(map[string]string, len(headers))
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		result[name] = hr.RedactHeaderValue(name, values[0])
	}
	return result
}

// RedactToString 按名称排序输出 "Name: value, ..." 形式的脱敏头部
func (hr *HeaderRedactor) RedactToString(headers http.Header) string {
	redacted := hr.Redact(headers)
	names := make([]string, 0, len(redacted))
	for name := range redacted {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+redacted[name])
	}
	return strings.Join(parts, ", ")
}
