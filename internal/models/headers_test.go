package models

import (
	"strings"
	"testing"
)

func TestCliHeaders_Parse(t *testing.T) {
	tests := []struct {
		name      string
		input     []string
		header    string
		want      string
		wantError bool
	}{
		{"nil的CLI头部数组", nil, "", "", false},
		{"头部名称前后空格", []string{"  User-Agent  : Mozilla/5.0"}, "User-Agent", "Mozilla/5.0", false},
		{"头部值前后空格", []string{"User-Agent:  Mozilla/5.0  "}, "User-Agent", "Mozilla/5.0", false},
		{"值中间的空格保留", []string{"X-Custom: value with spaces"}, "X-Custom", "value with spaces", false},
		{"值中包含冒号", []string{"X-URL: https://example.com:8080/path"}, "X-URL", "https://example.com:8080/path", false},
		{"多个冒号按第一个分割", []string{"Authorization: Bearer: token"}, "Authorization", "Bearer: token", false},
		{"只有冒号没有值", []string{"User-Agent:"}, "User-Agent", "", false},
		{"名称规范化", []string{"x-test: a"}, "X-Test", "a", false},
		{"后出现的覆盖先出现的", []string{"Cookie: a=1", "cookie: b=2"}, "Cookie", "b=2", false},
		{"缺少冒号分隔符", []string{"User-Agent Mozilla/5.0"}, "", "", true},
		{"只有冒号没有名称", []string{":value"}, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers, err := CliHeaders(tt.input).Parse()
			if tt.wantError {
				if err == nil {
					t.Fatal("期望错误, 但没有返回错误")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if tt.header == "" {
				if len(headers) != 0 {
					t.Errorf("期望空头部, 得到 %v", headers)
				}
				return
			}
			if got := headers.Get(tt.header); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestCliHeaders_ParseErrorPosition(t *testing.T) {
	_, err := CliHeaders{"X-Ok: 1", "bad"}.Parse()
	if err == nil || !strings.Contains(err.Error(), "第2项") {
		t.Errorf("错误信息应包含出错位置, 得到: %v", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{HeaderName: "Host", Reason: "禁止设置", Suggestion: "移除该头部"}
	msg := err.Error()
	if !strings.Contains(msg, "Host") || !strings.Contains(msg, "建议") {
		t.Errorf("Error() = %q", msg)
	}

	err.Suggestion = ""
	if strings.Contains(err.Error(), "建议") {
		t.Errorf("无建议时不应输出建议: %q", err.Error())
	}
}
