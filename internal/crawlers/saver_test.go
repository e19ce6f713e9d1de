package crawlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RecoveryAshes/webmirror/internal/models"
)

// recordingProgress 记录进度更新
type recordingProgress struct {
	updates []int64
	labels  []string
}

func (p *recordingProgress) Update(bytesDone int64, message string) {
	p.updates = append(p.updates, bytesDone)
	p.labels = append(p.labels, message)
}

func (p *recordingProgress) Finish() {}

// failingReader 读出部分数据后返回错误
type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestSaver_Save(t *testing.T) {
	base := t.TempDir()
	progress := &recordingProgress{}
	saver := NewSaver(NewLocalPathMapper(base), 512, progress)
	content := bytes.Repeat([]byte("x"), 1300)

	saved, err := saver.Save(context.Background(), "http://example.test/", "text/html", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.Status != models.SaveWritten || saved.Size != int64(len(content)) {
		t.Errorf("saved = %+v", saved)
	}

	path := filepath.Join(base, "example.test", RootFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取文件失败: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Error("文件内容不一致")
	}

	// 512 + 512 + 276
	want := []int64{512, 1024, 1300}
	if len(progress.updates) != len(want) {
		t.Fatalf("进度更新 = %v, want %v", progress.updates, want)
	}
	for i := range want {
		if progress.updates[i] != want[i] {
			t.Errorf("进度更新[%d] = %d, want %d", i, progress.updates[i], want[i])
		}
	}
}

func TestSaver_ExistingFileUntouched(t *testing.T) {
	base := t.TempDir()
	saver := NewSaver(NewLocalPathMapper(base), 0, nil)

	path := filepath.Join(base, "example.test", "page.html")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.WriteFile(path, []byte("previous"), 0644); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}

	saved, err := saver.Save(context.Background(), "http://example.test/page.html", "text/html", strings.NewReader("replacement"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.Status != models.SaveSkipped {
		t.Errorf("Status = %s, want skipped", saved.Status)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "previous" {
		t.Errorf("已存在的文件被修改: %q", data)
	}
}

func TestSaver_ReadErrorKeepsPartialFile(t *testing.T) {
	base := t.TempDir()
	saver := NewSaver(NewLocalPathMapper(base), 512, nil)
	reader := &failingReader{data: []byte("partial"), err: io.ErrUnexpectedEOF}

	_, err := saver.Save(context.Background(), "http://example.test/big.bin", "application/octet-stream", reader)
	var readErr *models.ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("期望ReadError, 得到 %v", err)
	}
	if readErr.URL != "http://example.test/big.bin" || readErr.Written != 7 {
		t.Errorf("readErr = %+v", readErr)
	}

	data, _ := os.ReadFile(filepath.Join(base, "example.test", "big.bin"))
	if string(data) != "partial" {
		t.Errorf("部分内容应保留: %q", data)
	}
}

func TestSaver_DirectoryCreationError(t *testing.T) {
	base := t.TempDir()
	saver := NewSaver(NewLocalPathMapper(base), 0, nil)

	// 用普通文件占住目录位置
	if err := os.WriteFile(filepath.Join(base, "example.test"), []byte("file"), 0644); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}

	_, err := saver.Save(context.Background(), "http://example.test/a/b.html", "text/html", strings.NewReader("x"))
	var dirErr *models.DirectoryCreationError
	if !errors.As(err, &dirErr) {
		t.Fatalf("期望DirectoryCreationError, 得到 %v", err)
	}
}

func TestSaver_EscapingPathSkipped(t *testing.T) {
	base := t.TempDir()
	saver := NewSaver(NewLocalPathMapper(base), 0, nil)

	saved, err := saver.Save(context.Background(), "http://example.test/../../escape.txt", "text/plain", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.Status != models.SaveSkipped {
		t.Errorf("Status = %s, want skipped", saved.Status)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(base), "escape.txt")); !os.IsNotExist(err) {
		t.Error("不应在输出目录外写入文件")
	}
}

func TestSaver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	saver := NewSaver(NewLocalPathMapper(t.TempDir()), 0, nil)
	_, err := saver.Save(ctx, "http://example.test/x", "text/plain", strings.NewReader("x"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("期望context.Canceled, 得到 %v", err)
	}
}
