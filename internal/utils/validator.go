package utils

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/RecoveryAshes/webmirror/internal/models"
)

// MaxHeaderValueLength 单个头部值或cookie值的最大长度 (8KB)
const MaxHeaderValueLength = 8192

// managedHeaders 由HTTP客户端维护的头部,不允许通过配置、-H或cookie文件设置
var managedHeaders = map[string]bool{
	"host":              true,
	"content-length":    true,
	"transfer-encoding": true,
	"connection":        true,
}

// HeaderValidator 校验即将写入请求的头部与cookie
// 头部名称只允许字母、数字和连字符;值只允许可打印ASCII、空格和制表符
// cookie名称为RFC 6265 token,值中不能出现分隔符 ";" 和制表符以外的控制字符
type HeaderValidator struct {
	maxValueLength int
}

// NewHeaderValidator 创建验证器
func NewHeaderValidator() *HeaderValidator {
	return &HeaderValidator{maxValueLength: MaxHeaderValueLength}
}

// IsForbidden 头部是否由HTTP客户端维护 (不区分大小写)
func (hv *HeaderValidator) IsForbidden(name string) bool {
	return managedHeaders[strings.ToLower(name)]
}

// ValidateName 验证头部名称
func (hv *HeaderValidator) ValidateName(name string) error {
	if name == "" {
		return &models.ValidationError{Field: "name", HeaderName: name, Reason: "头部名称不能为空"}
	}
	for i := 0; i < len(name); i++ {
		if !isHeaderNameByte(name[i]) {
			return &models.ValidationError{
				Field:      "name",
				HeaderName: name,
				Reason:     fmt.Sprintf("头部名称包含非法字符 %q (仅允许字母、数字和连字符)", name[i]),
				Suggestion: "使用如 'User-Agent', 'X-Custom-Header' 的名称",
			}
		}
	}
	return nil
}

// ValidateValue 验证头部值
func (hv *HeaderValidator) ValidateValue(name, value string) error {
	if err := hv.checkLength(name, "value", value); err != nil {
		return err
	}
	if i := strings.IndexFunc(value, func(r rune) bool { return !isFieldValueRune(r) }); i >= 0 {
		return &models.ValidationError{
			Field:      "value",
			HeaderName: name,
			Reason:     fmt.Sprintf("头部值第%d字节包含非法字符 (仅允许可打印ASCII字符)", i+1),
			Suggestion: "移除控制字符和非ASCII字符",
		}
	}
	return nil
}

// ValidateHeader 验证头部名称和值,客户端维护的头部直接拒绝
func (hv *HeaderValidator) ValidateHeader(name, value string) error {
	if hv.IsForbidden(name) {
		return &models.ValidationError{
			Field:      "name",
			HeaderName: name,
			Reason:     "此头部由HTTP客户端自动管理,不允许自定义",
			Suggestion: fmt.Sprintf("移除 '%s' 头部配置", name),
		}
	}
	if err := hv.ValidateName(name); err != nil {
		return err
	}
	return hv.ValidateValue(name, value)
}

// Validate 按名称顺序验证所有头部,返回第一个错误
func (hv *HeaderValidator) Validate(headers http.Header) error {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range headers[name] {
			if err := hv.ValidateHeader(name, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateCookie 验证cookie文件中的一条cookie
// 合并后的 "Cookie:" 头部必须能被HTTP客户端发送
func (hv *HeaderValidator) ValidateCookie(name, value string) error {
	if name == "" {
		return &models.ValidationError{Field: "cookie", HeaderName: "Cookie", Reason: "cookie名称不能为空"}
	}
	for i := 0; i < len(name); i++ {
		if !isTokenByte(name[i]) {
			return &models.ValidationError{
				Field:      "cookie",
				HeaderName: "Cookie",
				Reason:     fmt.Sprintf("cookie名称 %q 包含非法字符 %q", name, name[i]),
			}
		}
	}

	if err := hv.checkLength("Cookie", "cookie", value); err != nil {
		return err
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == ';' || (c < 0x20 && c != '\t') || c >= 0x7F {
			return &models.ValidationError{
				Field:      "cookie",
				HeaderName: "Cookie",
				Reason:     fmt.Sprintf("cookie %s 的值第%d字节非法 (不允许控制字符、非ASCII字符或 ';')", name, i+1),
				Suggestion: "重新导出cookie文件",
			}
		}
	}
	return nil
}

func (hv *HeaderValidator) checkLength(name, field, value string) error {
	if len(value) <= hv.maxValueLength {
		return nil
	}
	return &models.ValidationError{
		Field:      field,
		HeaderName: name,
		Reason:     fmt.Sprintf("值过长: %d 字节 (最大 %d)", len(value), hv.maxValueLength),
		Suggestion: fmt.Sprintf("将值缩短至 %d 字节以内", hv.maxValueLength),
	}
}

func isHeaderNameByte(c byte) bool {
	return c == '-' || isAlnum(c)
}

// isTokenByte RFC 7230 tchar
func isTokenByte(c byte) bool {
	return isAlnum(c) || strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0
}

func isFieldValueRune(r rune) bool {
	return r == '\t' || (r >= 0x20 && r <= 0x7E)
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
