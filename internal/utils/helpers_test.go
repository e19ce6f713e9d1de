package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadURLsFromFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("跳过注释和无效行", func(t *testing.T) {
		path := filepath.Join(tmpDir, "urls.txt")
		content := "# 种子列表\n\nhttp://a.test/\n  https://b.test/docs/  \nftp://c.test/\nnot a url\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("写入URL文件失败: %v", err)
		}

		urls, err := ReadURLsFromFile(path)
		if err != nil {
			t.Fatalf("ReadURLsFromFile() error = %v", err)
		}
		want := []string{"http://a.test/", "https://b.test/docs/"}
		if !reflect.DeepEqual(urls, want) {
			t.Errorf("ReadURLsFromFile() = %v, want %v", urls, want)
		}
	})

	t.Run("没有有效URL", func(t *testing.T) {
		path := filepath.Join(tmpDir, "empty.txt")
		if err := os.WriteFile(path, []byte("# 空\n"), 0644); err != nil {
			t.Fatalf("写入URL文件失败: %v", err)
		}
		if _, err := ReadURLsFromFile(path); err == nil {
			t.Error("没有有效URL时应返回错误")
		}
	})

	t.Run("文件不存在", func(t *testing.T) {
		if _, err := ReadURLsFromFile(filepath.Join(tmpDir, "missing.txt")); err == nil {
			t.Error("文件不存在时应返回错误")
		}
	})
}
