package crawlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/RecoveryAshes/webmirror/internal/utils"
)

// Saver 分块写入抓取内容
// 每个本地路径至多写一次: 目标已存在时跳过,不覆盖
type Saver struct {
	mapper    *LocalPathMapper
	chunkSize int
	progress  utils.ProgressSink
}

// NewSaver 创建保存器
func NewSaver(mapper *LocalPathMapper, chunkSize int, progress utils.ProgressSink) *Saver {
	if chunkSize <= 0 {
		chunkSize = models.DefaultChunkSize
	}
	if progress == nil {
		progress = utils.NopProgress{}
	}
	return &Saver{
		mapper:    mapper,
		chunkSize: chunkSize,
		progress:  progress,
	}
}

// Save 将内容写入URL对应的本地文件
// 返回的错误:
//   - *models.DirectoryCreationError: 无法创建上级目录
//   - *models.ReadError: 读取源数据中途失败,部分内容已留在磁盘上
//   - 其它: 创建或写入文件失败
//   - ctx.Err(): 写入过程中被取消
//
// 目标已存在或路径超出输出目录时不是错误,返回状态为 SaveSkipped 的记录
func (s *Saver) Save(ctx context.Context, rawURL, contentType string, r io.Reader) (*models.SavedFile, error) {
	localPath, err := s.mapper.LocalPath(rawURL)
	if err != nil {
		if errors.Is(err, ErrPathEscapesBase) {
			utils.Warnf("拒绝写入 [%s]: %v", rawURL, err)
			return s.skipped(rawURL, "", contentType, err.Error()), nil
		}
		return nil, err
	}

	if _, err := os.Stat(localPath); err == nil {
		utils.Warnf("文件已存在,跳过: %s", localPath)
		return s.skipped(rawURL, localPath, contentType, "文件已存在"), nil
	}

	dir := filepath.Dir(localPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &models.DirectoryCreationError{Dir: dir, Cause: err}
	}

	file, err := os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			utils.Warnf("文件已存在,跳过: %s", localPath)
			return s.skipped(rawURL, localPath, contentType, "文件已存在"), nil
		}
		return nil, fmt.Errorf("创建文件失败 [%s]: %w", localPath, err)
	}
	defer file.Close()

	written, err := s.copyChunks(ctx, file, r, localPath)
	if err != nil {
		var readErr *models.ReadError
		if errors.As(err, &readErr) {
			readErr.URL = rawURL
		}
		return nil, err
	}

	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("关闭文件失败 [%s]: %w", localPath, err)
	}

	saved := models.NewSavedFile(rawURL, localPath, contentType)
	saved.Size = written
	saved.Status = models.SaveWritten
	utils.Debugf("已保存: %s (%d 字节)", localPath, written)
	return saved, nil
}

// copyChunks 按固定大小分块复制,每块更新一次进度
func (s *Saver) copyChunks(ctx context.Context, dst io.Writer, src io.Reader, label string) (int64, error) {
	buf := make([]byte, s.chunkSize)
	var written int64

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, fmt.Errorf("写入文件失败 [%s]: %w", label, err)
			}
			written += int64(n)
			s.progress.Update(written, label)
		}

		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return written, ctxErr
			}
			return written, &models.ReadError{Written: written, Cause: readErr}
		}
	}
}

// skipped 构造跳过记录
func (s *Saver) skipped(rawURL, localPath, contentType, reason string) *models.SavedFile {
	saved := models.NewSavedFile(rawURL, localPath, contentType)
	saved.Status = models.SaveSkipped
	saved.Reason = reason
	return saved
}
