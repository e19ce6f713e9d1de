package crawlers

import (
	"errors"
	"testing"

	"github.com/RecoveryAshes/webmirror/internal/models"
)

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name    string
		charset string
		body    []byte
		want    string
		wantErr bool
	}{
		{"UTF-8", "utf-8", []byte("中文页面"), "中文页面", false},
		{"未声明按UTF-8", "", []byte("plain"), "plain", false},
		{"大写字符集", "UTF-8", []byte("ok"), "ok", false},
		{"GBK", "gbk", []byte{0xd6, 0xd0, 0xce, 0xc4}, "中文", false},
		{"Latin-1", "iso-8859-1", []byte{0x63, 0x61, 0x66, 0xe9}, "café", false},
		{"无效UTF-8", "utf-8", []byte{0xff, 0xfe, 0x41}, "", true},
		{"未知字符集", "x-no-such-charset", []byte("x"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeBody("http://example.test/", tt.charset, tt.body)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeBody() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var decodeErr *models.DecodeError
				if !errors.As(err, &decodeErr) {
					t.Errorf("期望DecodeError, 得到 %T", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("DecodeBody() = %q, want %q", got, tt.want)
			}
		})
	}
}
