package crawlers

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FlattenResult 一个 _root_ 文件的折叠结果
type FlattenResult struct {
	RootFile string // 原 _root_ 文件路径
	Target   string // 折叠后的文件路径 (即原目录路径)
	Skipped  bool
	Reason   string // 跳过原因
}

// FlattenRootFiles 将镜像树中只包含 _root_ 的目录折叠为同名文件
// 例如 base/example.test/docs/_root_ 变为文件 base/example.test/docs
//
// 规则:
//  1. 以 "." 开头的目录不进入
//  2. 镜像根目录自身的 _root_ 不处理
//  3. 目录中还有其他条目时跳过,不删除任何内容
//  4. 深层目录先处理
//
// dryRun 为true时只返回计划,不修改文件
func FlattenRootFiles(baseDir string, dryRun bool) ([]FlattenResult, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("读取镜像目录失败: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: 不是目录", baseDir)
	}

	base := filepath.Clean(baseDir)
	var rootFiles []string
	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != base && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == RootFileName && filepath.Dir(path) != base {
			rootFiles = append(rootFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("遍历镜像目录失败: %w", err)
	}

	sort.SliceStable(rootFiles, func(i, j int) bool {
		return pathDepth(rootFiles[i]) > pathDepth(rootFiles[j])
	})

	results := make([]FlattenResult, 0, len(rootFiles))
	for _, rootFile := range rootFiles {
		result, err := flattenRootFile(rootFile, dryRun)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// flattenRootFile 折叠单个 _root_ 文件
// 先移到临时名,删除已空的目录,再移到目录原来的路径
func flattenRootFile(rootFile string, dryRun bool) (FlattenResult, error) {
	dir := filepath.Dir(rootFile)
	result := FlattenResult{RootFile: rootFile, Target: dir}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return result, fmt.Errorf("读取目录失败 [%s]: %w", dir, err)
	}
	if len(entries) != 1 {
		result.Skipped = true
		result.Reason = fmt.Sprintf("目录中还有 %d 个其他条目", len(entries)-1)
		return result, nil
	}
	if dryRun {
		return result, nil
	}

	tmp := filepath.Join(filepath.Dir(dir), ".webmirror-flatten-"+uuid.NewString())
	if err := os.Rename(rootFile, tmp); err != nil {
		return result, fmt.Errorf("移动文件失败 [%s]: %w", rootFile, err)
	}
	if err := os.Remove(dir); err != nil {
		// 目录删不掉时放回原处
		if restoreErr := os.Rename(tmp, rootFile); restoreErr != nil {
			return result, fmt.Errorf("删除目录失败 [%s]: %w (恢复失败: %v, 文件位于 %s)", dir, err, restoreErr, tmp)
		}
		return result, fmt.Errorf("删除目录失败 [%s]: %w", dir, err)
	}
	if err := os.Rename(tmp, dir); err != nil {
		return result, fmt.Errorf("移动文件失败 [%s]: %w (文件位于 %s)", dir, err, tmp)
	}
	return result, nil
}

func pathDepth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}
