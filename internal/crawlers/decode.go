package crawlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/RecoveryAshes/webmirror/internal/models"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// DecodeBody 按声明的字符集把响应体解码为UTF-8文本
// 字符集未知或内容无法按该字符集解码时返回 DecodeError
func DecodeBody(pageURL, charsetName string, body []byte) (string, error) {
	name := strings.ToLower(strings.TrimSpace(charsetName))
	if name == "" {
		name = models.DefaultCharset
	}

	enc, canonical := charset.Lookup(name)
	if enc == nil {
		return "", &models.DecodeError{
			URL:     pageURL,
			Charset: charsetName,
			Cause:   fmt.Errorf("不支持的字符集"),
		}
	}

	// UTF-8 查到的是不做转换的编码,需要单独校验
	if canonical == "utf-8" {
		if !utf8.Valid(body) {
			return "", &models.DecodeError{
				URL:     pageURL,
				Charset: charsetName,
				Cause:   fmt.Errorf("内容不是有效的UTF-8"),
			}
		}
		return string(body), nil
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", &models.DecodeError{URL: pageURL, Charset: charsetName, Cause: err}
	}
	return string(decoded), nil
}
