package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RecoveryAshes/webmirror/internal/models"
)

const sampleCookies = "# Netscape HTTP Cookie File\n" +
	"\n" +
	".example.com\tTRUE\t/\tFALSE\t0\tsession\tabc123\n" +
	"www.example.com\tFALSE\t/\tFALSE\t0\tlang\tzh\n" +
	"other.test\tFALSE\t/\tFALSE\t0\tflag\n" +
	"broken line without tabs\n" +
	"short\tTRUE\t/\n" +
	"tabbed.test\tFALSE\t/\tFALSE\t0\tdata\ta\tb\n"

func TestParseCookies(t *testing.T) {
	table, err := ParseCookies(strings.NewReader(sampleCookies))
	if err != nil {
		t.Fatalf("ParseCookies() error = %v", err)
	}

	tests := []struct {
		name      string
		domain    string
		cookie    string
		wantValue string
		wantOK    bool
	}{
		{"完整7列", ".example.com", "session", "abc123", true},
		{"无前导点域名", "www.example.com", "lang", "zh", true},
		{"只有6列记录空值", "other.test", "flag", "", true},
		{"值中包含制表符", "tabbed.test", "data", "a\tb", true},
		{"字段不足的行被跳过", "short", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := table.Get(tt.domain, tt.cookie)
			if ok != tt.wantOK {
				t.Fatalf("Get(%q, %q) ok = %v, want %v", tt.domain, tt.cookie, ok, tt.wantOK)
			}
			if value != tt.wantValue {
				t.Errorf("Get(%q, %q) = %q, want %q", tt.domain, tt.cookie, value, tt.wantValue)
			}
		})
	}

	if table.Len() != 4 {
		t.Errorf("Len() = %d, want 4", table.Len())
	}
}

func TestParseCookies_HostMatching(t *testing.T) {
	table, err := ParseCookies(strings.NewReader(sampleCookies))
	if err != nil {
		t.Fatalf("ParseCookies() error = %v", err)
	}

	tests := []struct {
		host string
		want string
	}{
		{"example.com", "session=abc123"},
		{"www.example.com", "session=abc123; lang=zh"},
		{"www.example.com:8443", "session=abc123; lang=zh"},
		{"notexample.com", ""},
		{"other.test", "flag="},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := table.HeaderFor(tt.host); got != tt.want {
				t.Errorf("HeaderFor(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}

func TestCookieFileLoader_Load(t *testing.T) {
	t.Run("加载存在的文件", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cookies.txt")
		if err := os.WriteFile(path, []byte(sampleCookies), 0644); err != nil {
			t.Fatalf("写入cookie文件失败: %v", err)
		}

		table, err := NewCookieFileLoader(path).Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(table.Domains()) != 4 {
			t.Errorf("Domains() = %v", table.Domains())
		}
	})

	t.Run("文件不存在返回配置错误", func(t *testing.T) {
		_, err := NewCookieFileLoader(filepath.Join(t.TempDir(), "missing.txt")).Load()
		var cfgErr *models.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("期望ConfigError, 得到 %v", err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("错误链中应包含ErrNotExist: %v", err)
		}
	})

	t.Run("Windows换行", func(t *testing.T) {
		table, err := ParseCookies(strings.NewReader(".a.test\tTRUE\t/\tFALSE\t0\tk\tv\r\n"))
		if err != nil {
			t.Fatalf("ParseCookies() error = %v", err)
		}
		if v, _ := table.Get(".a.test", "k"); v != "v" {
			t.Errorf("值不应包含回车: %q", v)
		}
	})
}

func TestParseCookies_SkipsUnsendableRows(t *testing.T) {
	content := "127.0.0.1\tFALSE\t/\tFALSE\t0\tsid\tab\x01c\n" +
		"127.0.0.1\tFALSE\t/\tFALSE\t0\tbad name\tv\n" +
		"127.0.0.1\tFALSE\t/\tFALSE\t0\tsplit\ta;b\n" +
		"127.0.0.1\tFALSE\t/\tFALSE\t0\tlang\t中文\n" +
		"127.0.0.1\tFALSE\t/\tFALSE\t0\tok\tfine\n"

	table, err := ParseCookies(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseCookies() error = %v", err)
	}

	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
	for _, name := range []string{"sid", "bad name", "split", "lang"} {
		if _, ok := table.Get("127.0.0.1", name); ok {
			t.Errorf("非法cookie %q 应被跳过", name)
		}
	}
	if got := table.HeaderFor("127.0.0.1:8080"); got != "ok=fine" {
		t.Errorf("HeaderFor() = %q, want ok=fine", got)
	}
}
