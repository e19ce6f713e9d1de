package crawlers

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/webmirror/internal/models"
)

// RootFileName 站点根路径文档使用的文件名
const RootFileName = "_root_"

// ErrPathEscapesBase 映射后的路径位于输出目录之外
var ErrPathEscapesBase = errors.New("本地路径超出输出目录")

// LocalPathMapper URL到本地文件路径的映射
type LocalPathMapper struct {
	baseDir string
}

// NewLocalPathMapper 创建映射器,baseDir为镜像根目录
func NewLocalPathMapper(baseDir string) *LocalPathMapper {
	if baseDir == "" {
		baseDir = "."
	}
	return &LocalPathMapper{baseDir: baseDir}
}

// BaseDir 返回镜像根目录
func (m *LocalPathMapper) BaseDir() string {
	return m.baseDir
}

// RelativePath 计算URL对应的相对路径 (以 "/" 分隔)
// 形式为 authority/解码后的路径,查询串与片段作为文件名的字面后缀;
// 文件名部分为空时使用 RootFileName
func (m *LocalPathMapper) RelativePath(rawURL string) (string, error) {
	parts, err := models.SplitURL(rawURL)
	if err != nil {
		return "", err
	}

	p := strings.TrimPrefix(parts.Path, "/")
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}

	name := parts.Authority + "/" + p
	if parts.HasQuery {
		name += "?" + parts.RawQuery
	}
	if parts.Fragment != "" {
		fragment := parts.Fragment
		if decoded, err := url.PathUnescape(fragment); err == nil {
			fragment = decoded
		}
		name += "#" + fragment
	}

	dir, file := name[:strings.LastIndex(name, "/")+1], name[strings.LastIndex(name, "/")+1:]
	if file == "" {
		file = RootFileName
	}
	return dir + file, nil
}

// LocalPath 返回URL在镜像根目录下的完整文件路径
// 路径经 filepath.Join 清理后若离开根目录,返回 ErrPathEscapesBase
func (m *LocalPathMapper) LocalPath(rawURL string) (string, error) {
	rel, err := m.RelativePath(rawURL)
	if err != nil {
		return "", err
	}

	full := filepath.Join(m.baseDir, filepath.FromSlash(rel))
	within, err := filepath.Rel(m.baseDir, full)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) || within == "." {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesBase, rel)
	}
	return full, nil
}
